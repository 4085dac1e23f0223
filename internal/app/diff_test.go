package app

import (
	"fmt"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestRenderDiff(t *testing.T) {
	color.NoColor = true
	got := renderDiff("demo.py", []byte("a\nb\nc\n"), []byte("a\nB\nc\n"))

	for _, want := range []string{
		"--- a/demo.py",
		"+++ b/demo.py",
		" a",
		"-b",
		"+B",
		" c",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Diff missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "unchanged lines") {
		t.Errorf("Short context must not collapse:\n%s", got)
	}
}

func TestRenderDiffCollapsesContext(t *testing.T) {
	color.NoColor = true
	var orig, out strings.Builder
	orig.WriteString("from colors import *\n")
	out.WriteString("from colors import red\n")
	for i := 1; i <= 8; i++ {
		fmt.Fprintf(&orig, "line%d\n", i)
		fmt.Fprintf(&out, "line%d\n", i)
	}

	got := renderDiff("demo.py", []byte(orig.String()), []byte(out.String()))
	for _, want := range []string{
		"-from colors import *",
		"+from colors import red",
		" line3",
		"... 2 unchanged lines ...",
		" line6",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Diff missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, " line4") {
		t.Errorf("Expected line4 to be collapsed:\n%s", got)
	}
}
