// # internal/parser/imports.go
package parser

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// extractImports collects every import statement in the file, at any nesting
// depth: imports guarded by try/if blocks still bind names at runtime.
func extractImports(root *sitter.Node, source []byte) []Import {
	var imports []Import
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Kind() {
		case "import_statement":
			imports = append(imports, plainImports(n, source)...)
		case "import_from_statement", "future_import_statement":
			imports = append(imports, fromImport(n, source))
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return imports
}

// plainImports splits "import a.b, c as d" into one Import per module.
func plainImports(node *sitter.Node, source []byte) []Import {
	var imports []Import
	span := spanOf(node)
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "dotted_name", "identifier":
			imports = append(imports, Import{
				Module: nodeText(child, source),
				Span:   span,
			})
		case "aliased_import":
			module, alias := aliasedParts(child, source)
			imports = append(imports, Import{
				Module: module,
				Alias:  alias,
				Span:   span,
			})
		}
	}
	return imports
}

// fromImport reads "from M import ..." including the wildcard form. The
// module is kept exactly as written so leading dots of relative imports
// survive into rewrites.
func fromImport(node *sitter.Node, source []byte) Import {
	imp := Import{
		FromImport: true,
		Span:       spanOf(node),
	}

	if module := node.ChildByFieldName("module_name"); module != nil {
		imp.Module = nodeText(module, source)
	} else if node.Kind() == "future_import_statement" {
		imp.Module = "__future__"
	}
	imp.Relative = strings.HasPrefix(imp.Module, ".")

	seenImport := false
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.Kind() == "import" {
			seenImport = true
			continue
		}
		if !seenImport {
			continue
		}
		switch child.Kind() {
		case "wildcard_import":
			imp.Wildcard = true
		case "dotted_name", "identifier":
			imp.Names = append(imp.Names, ImportedName{Name: nodeText(child, source)})
		case "aliased_import":
			name, alias := aliasedParts(child, source)
			imp.Names = append(imp.Names, ImportedName{Name: name, Alias: alias})
		}
	}
	return imp
}

func aliasedParts(node *sitter.Node, source []byte) (string, string) {
	var name, alias string
	if n := node.ChildByFieldName("name"); n != nil {
		name = nodeText(n, source)
	}
	if a := node.ChildByFieldName("alias"); a != nil {
		alias = nodeText(a, source)
	}
	return name, alias
}
