package app

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
)

const diffContextLines = 3

// renderDiff produces a unified-style preview of one rewrite for dry runs.
// Long runs of unchanged lines collapse to their edges so the preview of a
// large file stays readable.
func renderDiff(path string, original, output []byte) string {
	dmp := diffmatchpatch.New()
	src, dst, lineArray := dmp.DiffLinesToRunes(string(original), string(output))
	diffs := dmp.DiffCleanupMerge(dmp.DiffMainRunes(src, dst, false))
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	header := color.New(color.Bold)
	del := color.New(color.FgRed)
	ins := color.New(color.FgGreen)

	var b strings.Builder
	header.Fprintf(&b, "--- a/%s\n", path)
	header.Fprintf(&b, "+++ b/%s\n", path)
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			for _, line := range splitLines(d.Text) {
				del.Fprintf(&b, "-%s\n", line)
			}
		case diffmatchpatch.DiffInsert:
			for _, line := range splitLines(d.Text) {
				ins.Fprintf(&b, "+%s\n", line)
			}
		default:
			for _, line := range collapseContext(splitLines(d.Text)) {
				fmt.Fprintf(&b, " %s\n", line)
			}
		}
	}
	return b.String()
}

func splitLines(text string) []string {
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

func collapseContext(lines []string) []string {
	if len(lines) <= 2*diffContextLines {
		return lines
	}
	out := append([]string{}, lines[:diffContextLines]...)
	out = append(out, fmt.Sprintf("... %d unchanged lines ...", len(lines)-2*diffContextLines))
	return append(out, lines[len(lines)-diffContextLines:]...)
}
