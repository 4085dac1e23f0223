// # internal/parser/exports.go
package parser

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/LordOfPolls/BlackDwarf/internal/errors"
)

// moduleSurface is what a module shows to a wildcard importer: its __all__
// binding if one exists, and every name bound at module level.
type moduleSurface struct {
	declared         []string
	declaredFound    bool
	declaredOpaque   bool
	bindings         []string
	wildcardReexport bool
	insertLine       int
}

// Exports computes the names f provides to a wildcard import.
//
// A literal __all__ wins and is returned verbatim. An __all__ that is
// assembled at runtime cannot be trusted and fails with
// CodeIndeterminateExports, as does a module with no __all__ when inference
// is disabled. Inferred sets drop underscore-prefixed names, matching what a
// star import binds.
func Exports(f *SourceFile, infer bool) (*ExportSet, error) {
	s := f.surface
	if s.declaredFound {
		if s.declaredOpaque {
			return nil, errors.AddContext(errors.New(errors.CodeIndeterminateExports,
				"__all__ is not a literal list of strings"), errors.CtxPath, f.Path)
		}
		return &ExportSet{
			Module:     f.Path,
			Names:      append([]string(nil), s.declared...),
			Provenance: ProvenanceDeclared,
		}, nil
	}
	if !infer {
		return nil, errors.AddContext(errors.New(errors.CodeIndeterminateExports,
			"module has no __all__ and inference is disabled"), errors.CtxPath, f.Path)
	}
	var names []string
	for _, name := range s.bindings {
		if strings.HasPrefix(name, "_") {
			continue
		}
		names = append(names, name)
	}
	return &ExportSet{
		Module:        f.Path,
		Names:         SortNames(names),
		Provenance:    ProvenanceInferred,
		Indeterminate: s.wildcardReexport,
	}, nil
}

// HasDeclaredAll reports whether the module binds __all__ in any form.
func (f *SourceFile) HasDeclaredAll() bool {
	return f.surface.declaredFound
}

// ExportInsertLine is the 1-based line after which a materialized __all__
// binding belongs: after the last top-level import, or failing that after the
// module docstring or leading comment block. Zero means insert at the very
// top.
func (f *SourceFile) ExportInsertLine() int {
	return f.surface.insertLine
}

type surfaceScanner struct {
	source  []byte
	surface moduleSurface
	seen    map[string]bool
}

func collectSurface(root *sitter.Node, source []byte) moduleSurface {
	sc := &surfaceScanner{source: source, seen: map[string]bool{}}
	sc.scanTop(root)
	return sc.surface
}

func (sc *surfaceScanner) scanTop(root *sitter.Node) {
	leading := true
	for i := uint(0); i < root.NamedChildCount(); i++ {
		child := root.NamedChild(i)
		kind := child.Kind()
		if kind == "comment" {
			if leading {
				sc.surface.insertLine = spanOf(child).EndLine
			}
			continue
		}
		if leading && kind == "expression_statement" && isDocstring(child) {
			sc.surface.insertLine = spanOf(child).EndLine
			leading = false
			continue
		}
		leading = false
		switch kind {
		case "import_statement", "import_from_statement", "future_import_statement":
			sc.surface.insertLine = spanOf(child).EndLine
			sc.imports(child)
		default:
			sc.stmt(child)
		}
	}
}

// stmt records the bindings a top-level statement makes. Conditional and
// guarded blocks still bind at module level, so if/try/for/while bodies are
// descended; def and class bodies are not.
func (sc *surfaceScanner) stmt(node *sitter.Node) {
	switch node.Kind() {
	case "import_statement", "import_from_statement", "future_import_statement":
		sc.imports(node)
	case "expression_statement":
		for i := uint(0); i < node.NamedChildCount(); i++ {
			sc.expression(node.NamedChild(i))
		}
	case "function_definition", "class_definition":
		if name := node.ChildByFieldName("name"); name != nil {
			sc.bind(nodeText(name, sc.source))
		}
	case "decorated_definition":
		if def := node.ChildByFieldName("definition"); def != nil {
			sc.stmt(def)
		}
	case "for_statement":
		if left := node.ChildByFieldName("left"); left != nil {
			sc.bindTargets(left)
		}
		sc.blocks(node)
	case "if_statement", "while_statement", "try_statement", "with_statement",
		"match_statement":
		sc.blocks(node)
	}
}

func (sc *surfaceScanner) blocks(node *sitter.Node) {
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		switch child.Kind() {
		case "block":
			for j := uint(0); j < child.NamedChildCount(); j++ {
				sc.stmt(child.NamedChild(j))
			}
		case "elif_clause", "else_clause", "except_clause",
			"except_group_clause", "finally_clause", "case_clause":
			sc.blocks(child)
		}
	}
}

func (sc *surfaceScanner) expression(node *sitter.Node) {
	switch node.Kind() {
	case "assignment":
		sc.assignment(node)
	case "augmented_assignment":
		if isDunderAll(node.ChildByFieldName("left"), sc.source) {
			sc.surface.declaredFound = true
			sc.surface.declaredOpaque = true
		}
	case "call":
		// __all__.append(...) and friends defeat static reading
		if fn := node.ChildByFieldName("function"); fn != nil && fn.Kind() == "attribute" {
			if isDunderAll(fn.ChildByFieldName("object"), sc.source) {
				sc.surface.declaredFound = true
				sc.surface.declaredOpaque = true
			}
		}
	case "named_expression":
		if name := node.ChildByFieldName("name"); name != nil {
			sc.bindTargets(name)
		}
	}
}

func (sc *surfaceScanner) assignment(node *sitter.Node) {
	left := node.ChildByFieldName("left")
	right := node.ChildByFieldName("right")
	if left == nil || right == nil {
		return
	}
	if isDunderAll(left, sc.source) {
		sc.surface.declaredFound = true
		names, ok := literalStrings(right, sc.source)
		if !ok {
			sc.surface.declaredOpaque = true
			return
		}
		// later literal assignments win; a runtime-mutated __all__ stays
		// opaque regardless
		if !sc.surface.declaredOpaque {
			sc.surface.declared = names
		}
		return
	}
	sc.bindTargets(left)
	if right.Kind() == "assignment" {
		sc.assignment(right)
	}
}

func (sc *surfaceScanner) bindTargets(node *sitter.Node) {
	switch node.Kind() {
	case "identifier":
		sc.bind(nodeText(node, sc.source))
	case "tuple", "list", "pattern_list", "tuple_pattern", "list_pattern",
		"parenthesized_expression", "expression_list", "list_splat_pattern",
		"list_splat":
		for i := uint(0); i < node.NamedChildCount(); i++ {
			sc.bindTargets(node.NamedChild(i))
		}
	}
}

func (sc *surfaceScanner) imports(node *sitter.Node) {
	var imports []Import
	if node.Kind() == "import_statement" {
		imports = plainImports(node, sc.source)
	} else {
		imports = []Import{fromImport(node, sc.source)}
	}
	for _, imp := range imports {
		if imp.Wildcard {
			sc.surface.wildcardReexport = true
			continue
		}
		for _, name := range imp.BoundNames() {
			sc.bind(name)
		}
	}
}

func (sc *surfaceScanner) bind(name string) {
	if sc.seen[name] {
		return
	}
	sc.seen[name] = true
	sc.surface.bindings = append(sc.surface.bindings, name)
}

func isDunderAll(node *sitter.Node, source []byte) bool {
	return node != nil && node.Kind() == "identifier" && nodeText(node, source) == "__all__"
}

func isDocstring(exprStmt *sitter.Node) bool {
	return exprStmt.NamedChildCount() == 1 && exprStmt.NamedChild(0).Kind() == "string"
}

// literalStrings reads a list or tuple of plain string literals. ok is false
// for anything else: names, calls, comprehensions, f-strings, concatenation.
func literalStrings(node *sitter.Node, source []byte) ([]string, bool) {
	switch node.Kind() {
	case "list", "tuple", "set", "parenthesized_expression":
	default:
		return nil, false
	}
	names := []string{}
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child.Kind() != "string" {
			return nil, false
		}
		value, ok := stringValue(child, source)
		if !ok {
			return nil, false
		}
		names = append(names, value)
	}
	return names, true
}

// stringValue unquotes a simple string literal. Prefixed f- and b-strings,
// interpolations and escape sequences make the value non-literal.
func stringValue(node *sitter.Node, source []byte) (string, bool) {
	var value strings.Builder
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		switch child.Kind() {
		case "string_start":
			prefix := strings.ToLower(nodeText(child, source))
			if strings.ContainsAny(prefix, "fb") {
				return "", false
			}
		case "string_content":
			value.WriteString(nodeText(child, source))
		case "interpolation", "escape_sequence":
			return "", false
		}
	}
	return value.String(), true
}
