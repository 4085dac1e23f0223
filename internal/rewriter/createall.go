// # internal/rewriter/createall.go
package rewriter

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/LordOfPolls/BlackDwarf/internal/parser"
)

// FormatExportList renders an __all__ binding as a multi-line tuple, one
// name per line with trailing commas.
func FormatExportList(names []string) string {
	var b strings.Builder
	b.WriteString("__all__ = (\n")
	for _, name := range parser.SortNames(names) {
		fmt.Fprintf(&b, "    %q,\n", name)
	}
	b.WriteString(")")
	return b.String()
}

// InsertExportList places a materialized __all__ after the 1-based line
// afterLine; zero inserts at the top of the file.
func InsertExportList(source []byte, afterLine int, names []string) []byte {
	block := FormatExportList(names)
	var out bytes.Buffer
	if afterLine <= 0 {
		out.WriteString(block)
		out.WriteString("\n\n")
		out.Write(source)
		return out.Bytes()
	}
	offset := offsetAfterLine(source, afterLine)
	out.Write(source[:offset])
	if offset > 0 && source[offset-1] != '\n' {
		out.WriteByte('\n')
	}
	out.WriteByte('\n')
	out.WriteString(block)
	out.WriteByte('\n')
	out.Write(source[offset:])
	return out.Bytes()
}

// offsetAfterLine returns the byte offset just past the newline ending the
// given 1-based line, or the end of the file when it runs out first.
func offsetAfterLine(source []byte, line int) int {
	offset := 0
	for i := 0; i < line; i++ {
		next := bytes.IndexByte(source[offset:], '\n')
		if next < 0 {
			return len(source)
		}
		offset += next + 1
	}
	return offset
}
