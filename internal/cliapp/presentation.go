package cliapp

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"

	"github.com/LordOfPolls/BlackDwarf/internal/app"
)

const banner = `
______ _            _   ______                     __
| ___ \ |          | |  |  _  \                   / _|
| |_/ / | __ _  ___| | _| | | |_      ____ _ _ __| |_
| ___ \ |/ _` + "`" + ` |/ __| |/ / | | \ \ /\ / / _` + "`" + ` | '__|  _|
| |_/ / | (_| | (__|   <| |/ / \ V  V / (_| | |  | |
\____/|_|\__,_|\___|_|\_\___/   \_/\_/ \__,_|_|  |_|`

func printBanner() {
	fmt.Println(banner)
}

// printSummary renders one pass over the target: per-file outcomes first,
// then a totals line.
func printSummary(s *app.Summary) {
	for i := range s.Reports {
		r := &s.Reports[i]
		path := displayPath(r.Path)

		if r.Err != nil {
			color.New(color.FgRed).Fprintf(os.Stdout, "failed %s: %v\n", path, r.Err)
			continue
		}
		if r.Diff != "" {
			fmt.Print(r.Diff)
		}
		for _, d := range r.Diagnostics {
			if d.Kind.Warning() {
				color.New(color.FgYellow).Fprintf(os.Stdout, "%s\n", d)
			} else {
				color.New(color.Faint).Fprintf(os.Stdout, "%s\n", d)
			}
		}
		if r.Changed && r.Written {
			color.New(color.FgGreen).Fprintf(os.Stdout, "rewrote %s (replaced %d, removed %d, kept %d)\n",
				path, r.Replaced, r.Removed, r.Kept)
		}
	}

	fmt.Printf("%d files processed, %d changed, %d failed, %d __all__ lists written in %s\n",
		s.FilesProcessed, s.FilesChanged, s.FilesFailed, s.ExportListsWritten,
		s.Duration.Round(time.Millisecond))
}

// displayPath shortens absolute report paths for terminal output.
func displayPath(path string) string {
	cwd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(cwd, path)
	if err != nil || len(rel) > len(path) {
		return path
	}
	return rel
}
