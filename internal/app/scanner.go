package app

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// ScanTarget lists the Python files one pass will process. A file target is
// returned as-is; a directory is walked with the configured excludes applied.
func (a *App) ScanTarget() ([]string, error) {
	info, err := os.Stat(a.Target)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{a.Target}, nil
	}

	dirGlobs := make([]glob.Glob, 0, len(a.Config.Exclude.Dirs))
	for _, p := range a.Config.Exclude.Dirs {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude dir pattern %q: %w", p, err)
		}
		dirGlobs = append(dirGlobs, g)
	}

	fileGlobs := make([]glob.Glob, 0, len(a.Config.Exclude.Files))
	for _, p := range a.Config.Exclude.Files {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude file pattern %q: %w", p, err)
		}
		fileGlobs = append(fileGlobs, g)
	}

	var files []string
	err = filepath.WalkDir(a.Target, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		base := filepath.Base(path)
		if d.IsDir() {
			for _, g := range dirGlobs {
				if g.Match(base) {
					return filepath.SkipDir
				}
			}
			return nil
		}

		if filepath.Ext(path) != ".py" {
			return nil
		}

		for _, g := range fileGlobs {
			if g.Match(base) {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortDeepestFirst(files)
	return files, nil
}

// sortDeepestFirst orders files by directory depth, deepest first. Package
// internals are then narrowed before the modules that wildcard-import them,
// so the later rewrites read already-cleaned dependency surfaces. Ties break
// lexicographically for stable output.
func sortDeepestFirst(files []string) {
	sort.SliceStable(files, func(i, j int) bool {
		di := strings.Count(filepath.Dir(files[i]), string(os.PathSeparator))
		dj := strings.Count(filepath.Dir(files[j]), string(os.PathSeparator))
		if di != dj {
			return di > dj
		}
		return files[i] < files[j]
	})
}
