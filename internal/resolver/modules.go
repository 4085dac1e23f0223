// # internal/resolver/modules.go
package resolver

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/LordOfPolls/BlackDwarf/internal/errors"
)

// Locator maps module references, as written in import statements, to Python
// source files on disk.
type Locator struct {
	root string
}

func NewLocator(root string) *Locator {
	return &Locator{root: root}
}

// Locate resolves the module imported by fromFile. Relative references walk
// up from the importing file's directory, one level per dot past the first.
// Absolute references are tried against the importing file's directory first
// and the project root second; each candidate may be a plain module file or a
// package __init__.py.
func (l *Locator) Locate(fromFile, module string) (string, error) {
	var candidates []string

	if strings.HasPrefix(module, ".") {
		dots := 0
		for dots < len(module) && module[dots] == '.' {
			dots++
		}
		rest := module[dots:]

		dir := filepath.Dir(fromFile)
		for i := 1; i < dots; i++ {
			dir = filepath.Dir(dir)
		}

		if rest == "" {
			candidates = []string{filepath.Join(dir, "__init__.py")}
		} else {
			relPath := filepath.Join(strings.Split(rest, ".")...)
			candidates = []string{
				filepath.Join(dir, relPath+".py"),
				filepath.Join(dir, relPath, "__init__.py"),
			}
		}
	} else {
		modPath := filepath.Join(strings.Split(module, ".")...)
		dir := filepath.Dir(fromFile)
		candidates = []string{
			filepath.Join(dir, modPath+".py"),
			filepath.Join(dir, modPath, "__init__.py"),
		}
		if l.root != "" && l.root != dir {
			candidates = append(candidates,
				filepath.Join(l.root, modPath+".py"),
				filepath.Join(l.root, modPath, "__init__.py"),
			)
		}
	}

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	if IsStdlib(module) {
		return "", errors.AddContext(
			errors.New(errors.CodeModuleNotFound, "standard library module has no local source"),
			errors.CtxModule, module)
	}
	err := errors.New(errors.CodeModuleNotFound, "module not found under project root")
	err = errors.AddContext(err, errors.CtxModule, module)
	return "", errors.AddContext(err, errors.CtxPath, fromFile)
}
