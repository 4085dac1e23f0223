// # internal/resolver/resolver.go
package resolver

import (
	"fmt"
	"strings"

	"github.com/LordOfPolls/BlackDwarf/internal/errors"
	"github.com/LordOfPolls/BlackDwarf/internal/observability"
	"github.com/LordOfPolls/BlackDwarf/internal/parser"
)

type DiagnosticKind string

const (
	DiagUnresolvedName       DiagnosticKind = "unresolved-name"
	DiagAmbiguousAttribution DiagnosticKind = "ambiguous-attribution"
	DiagIndeterminateExports DiagnosticKind = "indeterminate-exports"
	DiagWildcardRemoved      DiagnosticKind = "wildcard-removed"
	DiagWildcardKept         DiagnosticKind = "wildcard-kept"
)

// Warning reports whether the kind flags something the user should review.
// A removal notice records a successful rewrite and stays informational.
func (k DiagnosticKind) Warning() bool {
	return k != DiagWildcardRemoved
}

type Diagnostic struct {
	Kind     DiagnosticKind
	Module   string
	Name     string
	Location parser.Location
	Message  string
}

func (d Diagnostic) String() string {
	var b strings.Builder
	b.WriteString(string(d.Kind))
	if d.Name != "" {
		fmt.Fprintf(&b, " %q", d.Name)
	}
	if d.Module != "" {
		fmt.Fprintf(&b, " [%s]", d.Module)
	}
	if d.Location.Line > 0 {
		fmt.Fprintf(&b, " at %s:%d", d.Location.File, d.Location.Line)
	}
	if d.Message != "" {
		b.WriteString(": ")
		b.WriteString(d.Message)
	}
	return b.String()
}

// Outcome tells the rewriter what to do with one wildcard import.
type Outcome int

const (
	// OutcomeKeep leaves the statement untouched.
	OutcomeKeep Outcome = iota
	// OutcomeReplace swaps the wildcard for an explicit name list.
	OutcomeReplace
	// OutcomeRemove deletes the statement.
	OutcomeRemove
)

// Resolution is the fate of a single wildcard import.
type Resolution struct {
	Import  parser.Import
	Exports *parser.ExportSet // nil when the export set could not be computed
	Names   []string          // names attributed to this wildcard, sorted
	Outcome Outcome
}

// ResolutionMap carries everything the rewriter and the caller need: one
// Resolution per wildcard in source order, the diagnostics the pass emitted,
// and any export-list writes requested by create-all. The resolver itself
// never mutates other files; writes are applied by the caller.
type ResolutionMap struct {
	File         *parser.SourceFile
	Resolutions  []Resolution
	Diagnostics  []Diagnostic
	ExportWrites []ExportListWrite
}

// Changed reports whether any wildcard import will be rewritten or removed.
func (m *ResolutionMap) Changed() bool {
	for _, res := range m.Resolutions {
		if res.Outcome != OutcomeKeep {
			return true
		}
	}
	return false
}

// ExportListWrite asks the caller to materialize an inferred export list as
// an __all__ binding in the named module file.
type ExportListWrite struct {
	Path  string
	Names []string
}

type Options struct {
	// Infer enables computing export sets from top-level bindings for
	// modules without __all__.
	Infer bool
	// CreateAll requests an ExportListWrite for every module whose exports
	// were successfully inferred.
	CreateAll bool
	// Module restricts narrowing to wildcards importing the named module.
	// Other wildcard imports are left untouched, and free names they may
	// provide are absorbed without diagnostics.
	Module string
}

type Resolver struct {
	parser  *parser.Parser
	locator *Locator
	opts    Options
	cache   map[string]*moduleEntry
}

type moduleEntry struct {
	file    *parser.SourceFile
	exports *parser.ExportSet
	err     error
	wrote   bool
}

func NewResolver(p *parser.Parser, locator *Locator, opts Options) *Resolver {
	return &Resolver{
		parser:  p,
		locator: locator,
		opts:    opts,
		cache:   map[string]*moduleEntry{},
	}
}

// Resolve attributes the target file's free names to its wildcard imports,
// in source order, first import wins. Names claimed by no module freeze the
// whole file: every wildcard is kept verbatim rather than guessing which one
// was supplying the name. A dependent module that fails to parse is fatal for
// the target file and returns an error.
func (r *Resolver) Resolve(file *parser.SourceFile) (*ResolutionMap, error) {
	m := &ResolutionMap{File: file}
	wildcards := file.WildcardImports()
	if len(wildcards) == 0 {
		return m, nil
	}

	m.Resolutions = make([]Resolution, len(wildcards))
	for i, imp := range wildcards {
		m.Resolutions[i] = Resolution{Import: imp, Outcome: OutcomeKeep}

		if r.opts.Module != "" && !moduleMatches(imp.Module, r.opts.Module) {
			continue
		}

		entry := r.load(file.Path, imp)
		if entry.err != nil {
			if errors.IsCode(entry.err, errors.CodeParseFailure) {
				return nil, entry.err
			}
			m.Diagnostics = append(m.Diagnostics, Diagnostic{
				Kind:     DiagIndeterminateExports,
				Module:   imp.Module,
				Location: parser.Location{File: file.Path, Line: imp.Span.StartLine},
				Message:  entry.err.Error(),
			})
			continue
		}
		m.Resolutions[i].Exports = entry.exports

		if r.opts.CreateAll && !entry.wrote &&
			entry.exports.Provenance == parser.ProvenanceInferred &&
			!entry.exports.Indeterminate {
			entry.wrote = true
			m.ExportWrites = append(m.ExportWrites, ExportListWrite{
				Path:  entry.file.Path,
				Names: entry.exports.Names,
			})
		}
	}

	// Attribute each free name to the first wildcard exporting it.
	var leftovers []string
	for _, name := range file.Usage.Names() {
		owner := -1
		var also []string
		for i := range m.Resolutions {
			exp := m.Resolutions[i].Exports
			if exp == nil || !exp.Contains(name) {
				continue
			}
			if owner == -1 {
				owner = i
			} else {
				also = append(also, m.Resolutions[i].Import.Module)
			}
		}
		if owner == -1 {
			leftovers = append(leftovers, name)
			continue
		}
		m.Resolutions[owner].Names = append(m.Resolutions[owner].Names, name)
		if len(also) > 0 {
			m.Diagnostics = append(m.Diagnostics, Diagnostic{
				Kind:     DiagAmbiguousAttribution,
				Module:   m.Resolutions[owner].Import.Module,
				Name:     name,
				Location: file.Usage.Location(name),
				Message: fmt.Sprintf("also exported by %s; first import wins",
					strings.Join(also, ", ")),
			})
		}
	}

	if len(leftovers) > 0 && !r.hasUnknownSets(m) {
		// Every export set is known and none claims these names. Narrowing
		// any import now would be a guess, so the file stays as it is.
		for _, name := range leftovers {
			m.Diagnostics = append(m.Diagnostics, Diagnostic{
				Kind:     DiagUnresolvedName,
				Name:     name,
				Location: file.Usage.Location(name),
				Message:  "name is not exported by any wildcard-imported module",
			})
		}
		return m, nil
	}

	for i := range m.Resolutions {
		res := &m.Resolutions[i]
		if res.Exports == nil {
			continue
		}
		if len(leftovers) > 0 && res.Exports.Indeterminate {
			m.Diagnostics = append(m.Diagnostics, Diagnostic{
				Kind:   DiagWildcardKept,
				Module: res.Import.Module,
				Message: "incomplete export set may provide unattributed names; " +
					"wildcard left unchanged",
			})
			continue
		}
		if len(res.Names) > 0 {
			res.Outcome = OutcomeReplace
			continue
		}
		if res.Exports.Provenance == parser.ProvenanceInferred {
			res.Outcome = OutcomeRemove
			m.Diagnostics = append(m.Diagnostics, Diagnostic{
				Kind:    DiagWildcardRemoved,
				Module:  res.Import.Module,
				Message: "wildcard import removed, no used names found",
			})
			continue
		}
		m.Diagnostics = append(m.Diagnostics, Diagnostic{
			Kind:    DiagWildcardKept,
			Module:  res.Import.Module,
			Message: "no used names from declared exports; wildcard left unchanged",
		})
	}
	return m, nil
}

// moduleMatches ignores relative-import dots and accepts either the full
// dotted name or its trailing segment path, so -m colors covers both
// "from colors import *" and "from pkg.colors import *".
func moduleMatches(module, filter string) bool {
	trimmed := strings.TrimLeft(module, ".")
	return trimmed == filter || strings.HasSuffix(trimmed, "."+filter)
}

// hasUnknownSets reports whether any wildcard's exports failed to compute or
// are flagged incomplete; leftover names are then presumed to be theirs.
func (r *Resolver) hasUnknownSets(m *ResolutionMap) bool {
	for _, res := range m.Resolutions {
		if res.Exports == nil || res.Exports.Indeterminate {
			return true
		}
	}
	return false
}

// load parses and caches the exporting module behind one wildcard import.
// Relative references are resolved per importing file, so only the resolved
// path is used as the cache key.
func (r *Resolver) load(fromFile string, imp parser.Import) *moduleEntry {
	path, err := r.locator.Locate(fromFile, imp.Module)
	if err != nil {
		return &moduleEntry{err: err}
	}
	if entry, ok := r.cache[path]; ok {
		return entry
	}
	entry := &moduleEntry{}
	r.cache[path] = entry

	file, err := r.parser.ParseFile(path)
	if err != nil {
		entry.err = err
		return entry
	}
	entry.file = file
	observability.ModulesLoadedTotal.Inc()

	exports, err := parser.Exports(file, r.opts.Infer)
	if err != nil {
		entry.err = err
		return entry
	}
	entry.exports = exports
	return entry
}
