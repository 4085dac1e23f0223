// # internal/parser/types.go
package parser

import (
	"sort"
	"strings"
	"time"
)

// SourceFile is an immutable snapshot of one parsed Python file. All syntactic
// facts the pipeline needs are extracted at parse time so no tree-sitter
// objects outlive the parse call.
type SourceFile struct {
	Path     string
	Source   []byte
	Imports  []Import
	Usage    *UsageSet
	ParsedAt time.Time

	surface moduleSurface
}

// Import is a single import binding site. Plain imports ("import a.b as c")
// produce one Import per module; from-imports produce one Import carrying the
// full name list or the wildcard marker.
type Import struct {
	Module     string // module as written in source; leading dots preserved
	Alias      string // alias for plain imports ("import m as alias")
	Names      []ImportedName
	Wildcard   bool
	Relative   bool
	FromImport bool
	Span       Span
}

type ImportedName struct {
	Name  string
	Alias string
}

// Span locates a statement in the original text. Lines are 1-based.
type Span struct {
	StartByte uint
	EndByte   uint
	StartLine int
	EndLine   int
}

type Location struct {
	File   string
	Line   int
	Column int
}

// BoundNames returns the names this import binds in the module namespace.
// A wildcard import binds an unknown set and returns nil.
func (i Import) BoundNames() []string {
	if i.Wildcard {
		return nil
	}
	if i.FromImport {
		names := make([]string, 0, len(i.Names))
		for _, n := range i.Names {
			if n.Alias != "" {
				names = append(names, n.Alias)
				continue
			}
			names = append(names, n.Name)
		}
		return names
	}
	if i.Alias != "" {
		return []string{i.Alias}
	}
	if i.Module == "" {
		return nil
	}
	// "import a.b" binds the top-level package name only.
	base, _, _ := strings.Cut(i.Module, ".")
	return []string{base}
}

// WildcardImports returns the file's wildcard imports in source order.
func (f *SourceFile) WildcardImports() []Import {
	var wildcards []Import
	for _, imp := range f.Imports {
		if imp.Wildcard {
			wildcards = append(wildcards, imp)
		}
	}
	return wildcards
}

// UsageSet is the set of free names referenced by a file: names not bound by
// any enclosing scope, not bound by a non-wildcard import, and not builtins.
type UsageSet struct {
	names map[string]Location
}

func (u *UsageSet) Has(name string) bool {
	_, ok := u.names[name]
	return ok
}

func (u *UsageSet) Len() int {
	return len(u.names)
}

// Names returns the free names in sorted order.
func (u *UsageSet) Names() []string {
	names := make([]string, 0, len(u.names))
	for name := range u.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Location returns where a free name was first referenced.
func (u *UsageSet) Location(name string) Location {
	return u.names[name]
}

type Provenance int

const (
	ProvenanceDeclared Provenance = iota
	ProvenanceInferred
)

func (p Provenance) String() string {
	if p == ProvenanceDeclared {
		return "declared"
	}
	return "inferred"
}

// ExportSet is the set of names a module makes available to a wildcard import,
// either read from an explicit __all__ binding or inferred from top-level
// bindings.
type ExportSet struct {
	Module     string
	Names      []string
	Provenance Provenance
	// Indeterminate marks an inferred set known to be incomplete because the
	// module re-exports a wildcard import of its own; those names are not
	// resolved transitively.
	Indeterminate bool
}

func (e *ExportSet) Contains(name string) bool {
	for _, n := range e.Names {
		if n == name {
			return true
		}
	}
	return false
}

// SortNames orders names case-insensitively with a case-sensitive tiebreak,
// the order used for rewritten import lists and materialized __all__ bindings.
func SortNames(names []string) []string {
	out := append([]string(nil), names...)
	sort.Slice(out, func(i, j int) bool {
		li, lj := strings.ToLower(out[i]), strings.ToLower(out[j])
		if li != lj {
			return li < lj
		}
		return out[i] < out[j]
	})
	return out
}
