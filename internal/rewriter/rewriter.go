// # internal/rewriter/rewriter.go
package rewriter

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/LordOfPolls/BlackDwarf/internal/parser"
	"github.com/LordOfPolls/BlackDwarf/internal/resolver"
)

// RewriteResult is the rewritten file text plus everything the caller needs
// to report: the resolution diagnostics and any degradations applied here.
type RewriteResult struct {
	Path        string
	Original    []byte
	Output      []byte
	Changed     bool
	Diagnostics []resolver.Diagnostic
}

type edit struct {
	start, end int
	text       string
}

// Rewrite applies a ResolutionMap to the original text. Replacements swap
// exactly the import statement's span, so indentation and trailing comments
// survive; removals take the whole line. Everything else is byte-identical.
// A removal that cannot be applied is recorded back into the map as a keep.
func Rewrite(m *resolver.ResolutionMap) *RewriteResult {
	source := m.File.Source
	result := &RewriteResult{
		Path:        m.File.Path,
		Original:    source,
		Output:      source,
		Diagnostics: append([]resolver.Diagnostic(nil), m.Diagnostics...),
	}

	var edits []edit
	for i := range m.Resolutions {
		res := &m.Resolutions[i]
		switch res.Outcome {
		case resolver.OutcomeReplace:
			edits = append(edits, edit{
				start: int(res.Import.Span.StartByte),
				end:   int(res.Import.Span.EndByte),
				text:  ImportStatement(res.Import.Module, res.Names),
			})
		case resolver.OutcomeRemove:
			start := lineStart(source, int(res.Import.Span.StartByte))
			if start != int(res.Import.Span.StartByte) {
				// removing an indented or inline statement would leave a
				// hole in its block; keep it instead
				res.Outcome = resolver.OutcomeKeep
				result.Diagnostics = append(result.Diagnostics, resolver.Diagnostic{
					Kind:    resolver.DiagWildcardKept,
					Module:  res.Import.Module,
					Message: "unused wildcard import is not at top level; left unchanged",
				})
				continue
			}
			edits = append(edits, edit{
				start: start,
				end:   lineEnd(source, int(res.Import.Span.EndByte)),
			})
		}
	}
	if len(edits) == 0 {
		return result
	}

	// apply bottom-up so earlier offsets stay valid
	sort.Slice(edits, func(i, j int) bool { return edits[i].start > edits[j].start })
	out := append([]byte(nil), source...)
	for _, e := range edits {
		out = append(out[:e.start], append([]byte(e.text), out[e.end:]...)...)
	}
	result.Output = out
	result.Changed = true
	return result
}

// ImportStatement renders the explicit replacement for one wildcard import.
// The module is emitted exactly as written, so relative dots survive; names
// are sorted case-insensitively for diff-stable output.
func ImportStatement(module string, names []string) string {
	return fmt.Sprintf("from %s import %s",
		module, strings.Join(parser.SortNames(names), ", "))
}

func lineStart(source []byte, offset int) int {
	if i := bytes.LastIndexByte(source[:offset], '\n'); i >= 0 {
		return i + 1
	}
	return 0
}

func lineEnd(source []byte, offset int) int {
	if i := bytes.IndexByte(source[offset:], '\n'); i >= 0 {
		return offset + i + 1
	}
	return len(source)
}
