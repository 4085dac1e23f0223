// # internal/resolver/stdlib.go
package resolver

import (
	_ "embed"
	"strings"
)

//go:embed stdlib/python.txt
var pythonStdlibData string

var pythonStdlib = map[string]bool{}

func init() {
	for _, line := range strings.Split(pythonStdlibData, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			pythonStdlib[line] = true
		}
	}
}

// IsStdlib reports whether a module reference points into the Python standard
// library. Submodules count through their top-level package, e.g.
// urllib.request through urllib.
func IsStdlib(module string) bool {
	base, _, _ := strings.Cut(module, ".")
	return pythonStdlib[base]
}
