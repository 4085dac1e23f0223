// # internal/parser/usage.go
package parser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// collectUsage walks the whole file and records every free name reference:
// names read somewhere without a binding in any enclosing scope. These are
// exactly the names a wildcard import may be supplying. When in doubt the
// walk reports a name as free; an extra name in an import list is harmless
// while a missed one can break the rewritten file.
//
// Module and class bodies bind as they execute, top to bottom. Function
// bodies bind scope-wide, so a local assigned late in the body still shadows
// from the first reference.
func collectUsage(root *sitter.Node, source []byte, path string) *UsageSet {
	c := &usageCollector{
		source: source,
		path:   path,
		usage:  map[string]Location{},
	}
	c.suite(root, NewScope(ScopeModule, nil))
	return &UsageSet{names: c.usage}
}

type usageCollector struct {
	source []byte
	path   string
	usage  map[string]Location
}

func (c *usageCollector) suite(node *sitter.Node, s *Scope) {
	for i := uint(0); i < node.NamedChildCount(); i++ {
		c.statement(node.NamedChild(i), s)
	}
}

func (c *usageCollector) statement(node *sitter.Node, s *Scope) {
	switch node.Kind() {
	case "import_statement", "import_from_statement", "future_import_statement":
		c.bindImport(node, s)

	case "global_statement":
		for i := uint(0); i < node.NamedChildCount(); i++ {
			if child := node.NamedChild(i); child.Kind() == "identifier" {
				s.DeclareGlobal(nodeText(child, c.source))
			}
		}
	case "nonlocal_statement":
		for i := uint(0); i < node.NamedChildCount(); i++ {
			if child := node.NamedChild(i); child.Kind() == "identifier" {
				s.DeclareNonlocal(nodeText(child, c.source))
			}
		}

	case "function_definition":
		c.functionDef(node, s)
	case "class_definition":
		c.classDef(node, s)
	case "decorated_definition":
		for i := uint(0); i < node.NamedChildCount(); i++ {
			child := node.NamedChild(i)
			switch child.Kind() {
			case "decorator":
				c.exprChildren(child, s)
			case "function_definition":
				c.functionDef(child, s)
			case "class_definition":
				c.classDef(child, s)
			}
		}

	case "for_statement":
		// The iterable evaluates before the targets bind.
		if right := node.ChildByFieldName("right"); right != nil {
			c.expr(right, s)
		}
		if left := node.ChildByFieldName("left"); left != nil {
			c.bindTargets(left, s)
		}
		if body := node.ChildByFieldName("body"); body != nil {
			c.suite(body, s)
		}
		if alt := node.ChildByFieldName("alternative"); alt != nil {
			c.statement(alt, s)
		}

	case "while_statement":
		if cond := node.ChildByFieldName("condition"); cond != nil {
			c.expr(cond, s)
		}
		if body := node.ChildByFieldName("body"); body != nil {
			c.suite(body, s)
		}
		if alt := node.ChildByFieldName("alternative"); alt != nil {
			c.statement(alt, s)
		}

	case "if_statement":
		if cond := node.ChildByFieldName("condition"); cond != nil {
			c.expr(cond, s)
		}
		if body := node.ChildByFieldName("consequence"); body != nil {
			c.suite(body, s)
		}
		for i := uint(0); i < node.NamedChildCount(); i++ {
			child := node.NamedChild(i)
			if kind := child.Kind(); kind == "elif_clause" || kind == "else_clause" {
				c.statement(child, s)
			}
		}
	case "elif_clause":
		if cond := node.ChildByFieldName("condition"); cond != nil {
			c.expr(cond, s)
		}
		if body := node.ChildByFieldName("consequence"); body != nil {
			c.suite(body, s)
		}
	case "else_clause":
		if body := node.ChildByFieldName("body"); body != nil {
			c.suite(body, s)
		}

	case "try_statement":
		if body := node.ChildByFieldName("body"); body != nil {
			c.suite(body, s)
		}
		for i := uint(0); i < node.NamedChildCount(); i++ {
			child := node.NamedChild(i)
			switch child.Kind() {
			case "except_clause", "except_group_clause":
				c.exceptClause(child, s)
			case "else_clause", "finally_clause":
				c.statement(child, s)
			}
		}
	case "finally_clause":
		for i := uint(0); i < node.NamedChildCount(); i++ {
			if child := node.NamedChild(i); child.Kind() == "block" {
				c.suite(child, s)
			}
		}

	case "with_statement":
		for i := uint(0); i < node.NamedChildCount(); i++ {
			if child := node.NamedChild(i); child.Kind() == "with_clause" {
				c.exprChildren(child, s)
			}
		}
		if body := node.ChildByFieldName("body"); body != nil {
			c.suite(body, s)
		}

	case "match_statement":
		c.matchStatement(node, s)

	case "pass_statement", "break_statement", "continue_statement", "comment":

	default:
		// expression_statement, return, delete, raise, assert and friends:
		// every named child is expression-shaped.
		c.exprChildren(node, s)
	}
}

func (c *usageCollector) functionDef(node *sitter.Node, s *Scope) {
	// Defaults, annotations and the return type evaluate in the defining
	// scope, before the function name is bound.
	fnScope := NewScope(ScopeFunction, s)
	if params := node.ChildByFieldName("parameters"); params != nil {
		c.parameters(params, fnScope, s)
	}
	if ret := node.ChildByFieldName("return_type"); ret != nil {
		c.expr(ret, s)
	}
	if name := node.ChildByFieldName("name"); name != nil {
		s.Bind(nodeText(name, c.source))
	}
	if body := node.ChildByFieldName("body"); body != nil {
		c.functionBody(body, fnScope)
	}
}

func (c *usageCollector) classDef(node *sitter.Node, s *Scope) {
	if sup := node.ChildByFieldName("superclasses"); sup != nil {
		c.exprChildren(sup, s)
	}
	clsScope := NewScope(ScopeClass, s)
	if body := node.ChildByFieldName("body"); body != nil {
		c.suite(body, clsScope)
	}
	// The class name binds only after its body has run.
	if name := node.ChildByFieldName("name"); name != nil {
		s.Bind(nodeText(name, c.source))
	}
}

// functionBody resolves a function scope: one pass to register everything the
// body binds anywhere, then the reference walk.
func (c *usageCollector) functionBody(body *sitter.Node, s *Scope) {
	c.declarations(body, s)
	c.prebindWalk(body, s)
	c.suite(body, s)
}

// declarations registers global and nonlocal statements ahead of binding
// collection; a declared name never becomes a local.
func (c *usageCollector) declarations(node *sitter.Node, s *Scope) {
	switch node.Kind() {
	case "global_statement":
		for i := uint(0); i < node.NamedChildCount(); i++ {
			if child := node.NamedChild(i); child.Kind() == "identifier" {
				s.DeclareGlobal(nodeText(child, c.source))
			}
		}
		return
	case "nonlocal_statement":
		for i := uint(0); i < node.NamedChildCount(); i++ {
			if child := node.NamedChild(i); child.Kind() == "identifier" {
				s.DeclareNonlocal(nodeText(child, c.source))
			}
		}
		return
	case "function_definition", "class_definition", "lambda",
		"list_comprehension", "set_comprehension",
		"dictionary_comprehension", "generator_expression":
		return
	}
	for i := uint(0); i < node.NamedChildCount(); i++ {
		c.declarations(node.NamedChild(i), s)
	}
}

// prebindWalk registers every binding the scope makes, without recording
// references. Nested defs, lambdas and comprehensions own their bindings and
// are not descended into.
func (c *usageCollector) prebindWalk(node *sitter.Node, s *Scope) {
	switch node.Kind() {
	case "function_definition", "class_definition":
		if name := node.ChildByFieldName("name"); name != nil {
			s.Bind(nodeText(name, c.source))
		}
		return
	case "decorated_definition":
		if def := node.ChildByFieldName("definition"); def != nil {
			c.prebindWalk(def, s)
		}
		return
	case "lambda", "list_comprehension", "set_comprehension",
		"dictionary_comprehension", "generator_expression":
		return
	case "import_statement", "import_from_statement", "future_import_statement":
		c.bindImport(node, s)
		return
	case "assignment":
		if node.ChildByFieldName("right") != nil {
			if left := node.ChildByFieldName("left"); left != nil {
				c.prebindTargets(left, s)
			}
		}
		if right := node.ChildByFieldName("right"); right != nil {
			c.prebindWalk(right, s)
		}
		return
	case "augmented_assignment":
		if left := node.ChildByFieldName("left"); left != nil {
			c.prebindTargets(left, s)
		}
		if right := node.ChildByFieldName("right"); right != nil {
			c.prebindWalk(right, s)
		}
		return
	case "named_expression":
		if name := node.ChildByFieldName("name"); name != nil {
			c.prebindTargets(name, s)
		}
		if value := node.ChildByFieldName("value"); value != nil {
			c.prebindWalk(value, s)
		}
		return
	case "for_statement":
		if left := node.ChildByFieldName("left"); left != nil {
			c.prebindTargets(left, s)
		}
	case "as_pattern":
		if alias := node.ChildByFieldName("alias"); alias != nil {
			c.prebindTargets(alias, s)
		}
	}
	for i := uint(0); i < node.NamedChildCount(); i++ {
		c.prebindWalk(node.NamedChild(i), s)
	}
}

func (c *usageCollector) prebindTargets(node *sitter.Node, s *Scope) {
	switch node.Kind() {
	case "identifier":
		s.Bind(nodeText(node, c.source))
	case "attribute", "subscript":
		// assigning through an object creates no new name
	default:
		for i := uint(0); i < node.NamedChildCount(); i++ {
			c.prebindTargets(node.NamedChild(i), s)
		}
	}
}

func (c *usageCollector) parameters(node *sitter.Node, fnScope, outer *Scope) {
	for i := uint(0); i < node.NamedChildCount(); i++ {
		p := node.NamedChild(i)
		switch p.Kind() {
		case "identifier":
			fnScope.Bind(nodeText(p, c.source))
		case "typed_parameter":
			if t := p.ChildByFieldName("type"); t != nil {
				c.expr(t, outer)
			}
			if p.NamedChildCount() > 0 {
				c.bindTargets(p.NamedChild(0), fnScope)
			}
		case "default_parameter", "typed_default_parameter":
			if v := p.ChildByFieldName("value"); v != nil {
				c.expr(v, outer)
			}
			if t := p.ChildByFieldName("type"); t != nil {
				c.expr(t, outer)
			}
			if n := p.ChildByFieldName("name"); n != nil {
				c.bindTargets(n, fnScope)
			}
		case "list_splat_pattern", "dictionary_splat_pattern", "tuple_pattern":
			c.bindTargets(p, fnScope)
		}
	}
}

func (c *usageCollector) expr(node *sitter.Node, s *Scope) {
	switch node.Kind() {
	case "identifier":
		c.reference(node, s)

	case "attribute":
		// only the base of obj.attr is a name reference
		if obj := node.ChildByFieldName("object"); obj != nil {
			c.expr(obj, s)
		}
	case "keyword_argument":
		if v := node.ChildByFieldName("value"); v != nil {
			c.expr(v, s)
		}

	case "assignment":
		c.assignment(node, s)
	case "augmented_assignment":
		if right := node.ChildByFieldName("right"); right != nil {
			c.expr(right, s)
		}
		// an augmented target reads its old value before writing
		if left := node.ChildByFieldName("left"); left != nil {
			c.expr(left, s)
			c.bindTargets(left, s)
		}
	case "named_expression":
		if v := node.ChildByFieldName("value"); v != nil {
			c.expr(v, s)
		}
		if n := node.ChildByFieldName("name"); n != nil {
			c.bindTargets(n, s)
		}

	case "lambda":
		lamScope := NewScope(ScopeFunction, s)
		if params := node.ChildByFieldName("parameters"); params != nil {
			c.parameters(params, lamScope, s)
		}
		if body := node.ChildByFieldName("body"); body != nil {
			c.expr(body, lamScope)
		}

	case "list_comprehension", "set_comprehension",
		"dictionary_comprehension", "generator_expression":
		c.comprehension(node, s)

	case "as_pattern":
		if node.NamedChildCount() > 0 {
			c.expr(node.NamedChild(0), s)
		}
		if alias := node.ChildByFieldName("alias"); alias != nil {
			c.bindTargets(alias, s)
		}

	case "comment", "string_content", "string_start", "string_end",
		"escape_sequence", "integer", "float", "true", "false", "none",
		"ellipsis", "line_continuation":

	default:
		c.exprChildren(node, s)
	}
}

func (c *usageCollector) exprChildren(node *sitter.Node, s *Scope) {
	for i := uint(0); i < node.NamedChildCount(); i++ {
		c.expr(node.NamedChild(i), s)
	}
}

func (c *usageCollector) assignment(node *sitter.Node, s *Scope) {
	right := node.ChildByFieldName("right")
	if right != nil {
		c.expr(right, s)
	}
	if typ := node.ChildByFieldName("type"); typ != nil {
		c.expr(typ, s)
	}
	left := node.ChildByFieldName("left")
	if left == nil {
		return
	}
	if right == nil {
		// a bare annotation binds nothing, but attribute and subscript
		// targets still reference their bases
		c.targetRefs(left, s)
		return
	}
	c.bindTargets(left, s)
}

// targetRefs walks an unassigned annotation target for references without
// binding anything.
func (c *usageCollector) targetRefs(node *sitter.Node, s *Scope) {
	switch node.Kind() {
	case "identifier":
	case "attribute", "subscript":
		c.expr(node, s)
	default:
		for i := uint(0); i < node.NamedChildCount(); i++ {
			c.targetRefs(node.NamedChild(i), s)
		}
	}
}

func (c *usageCollector) bindTargets(node *sitter.Node, s *Scope) {
	switch node.Kind() {
	case "identifier":
		s.Bind(nodeText(node, c.source))
	case "tuple", "list", "tuple_pattern", "list_pattern", "pattern_list",
		"expression_list", "parenthesized_expression", "list_splat_pattern",
		"dictionary_splat_pattern", "list_splat", "as_pattern_target":
		for i := uint(0); i < node.NamedChildCount(); i++ {
			c.bindTargets(node.NamedChild(i), s)
		}
	case "attribute", "subscript":
		// obj.attr = v and seq[i] = v reference their bases
		c.expr(node, s)
	default:
		c.expr(node, s)
	}
}

func (c *usageCollector) comprehension(node *sitter.Node, s *Scope) {
	// A comprehension is its own scope; only the first iterable evaluates in
	// the enclosing one.
	comp := NewScope(ScopeComprehension, s)
	first := true
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		switch child.Kind() {
		case "for_in_clause":
			if right := child.ChildByFieldName("right"); right != nil {
				if first {
					c.expr(right, s)
				} else {
					c.expr(right, comp)
				}
			}
			first = false
			if left := child.ChildByFieldName("left"); left != nil {
				c.bindTargets(left, comp)
			}
		case "if_clause":
			c.exprChildren(child, comp)
		}
	}
	if body := node.ChildByFieldName("body"); body != nil {
		c.expr(body, comp)
	}
}

// exceptClause handles both grammar shapes of "except E as e": the alias may
// arrive as an as_pattern inside the value or as a bare identifier after an
// "as" token.
func (c *usageCollector) exceptClause(node *sitter.Node, s *Scope) {
	binding := false
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch {
		case child.Kind() == "as":
			binding = true
		case child.Kind() == "block":
			c.suite(child, s)
		case !child.IsNamed():
		case binding:
			c.bindTargets(child, s)
			binding = false
		default:
			c.expr(child, s)
		}
	}
}

func (c *usageCollector) matchStatement(node *sitter.Node, s *Scope) {
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		switch child.Kind() {
		case "case_clause":
			c.caseClause(child, s)
		case "block":
			for j := uint(0); j < child.NamedChildCount(); j++ {
				if cc := child.NamedChild(j); cc.Kind() == "case_clause" {
					c.caseClause(cc, s)
				}
			}
		default:
			c.expr(child, s)
		}
	}
}

func (c *usageCollector) caseClause(node *sitter.Node, s *Scope) {
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		switch child.Kind() {
		case "case_pattern":
			c.casePattern(child, s)
		case "if_clause":
			c.exprChildren(child, s)
		case "block":
			c.suite(child, s)
		}
	}
}

// casePattern separates match-pattern captures, which bind, from value and
// class patterns, which reference.
func (c *usageCollector) casePattern(node *sitter.Node, s *Scope) {
	switch node.Kind() {
	case "identifier":
		if name := nodeText(node, c.source); name != "_" {
			s.Bind(name)
		}
	case "dotted_name":
		if node.NamedChildCount() > 0 {
			c.reference(node.NamedChild(0), s)
		}
	case "class_pattern":
		for i := uint(0); i < node.NamedChildCount(); i++ {
			child := node.NamedChild(i)
			if i == 0 {
				c.expr(child, s)
				continue
			}
			c.casePattern(child, s)
		}
	case "keyword_pattern":
		if n := node.NamedChildCount(); n > 1 {
			c.casePattern(node.NamedChild(n-1), s)
		}
	case "as_pattern":
		if node.NamedChildCount() > 0 {
			c.casePattern(node.NamedChild(0), s)
		}
		if alias := node.ChildByFieldName("alias"); alias != nil {
			c.bindTargets(alias, s)
		}
	case "string", "concatenated_string", "integer", "float", "true",
		"false", "none":
	default:
		for i := uint(0); i < node.NamedChildCount(); i++ {
			c.casePattern(node.NamedChild(i), s)
		}
	}
}

func (c *usageCollector) bindImport(node *sitter.Node, s *Scope) {
	var imports []Import
	if node.Kind() == "import_statement" {
		imports = plainImports(node, c.source)
	} else {
		imports = []Import{fromImport(node, c.source)}
	}
	for _, imp := range imports {
		for _, name := range imp.BoundNames() {
			s.Bind(name)
		}
	}
}

func (c *usageCollector) reference(node *sitter.Node, s *Scope) {
	name := nodeText(node, c.source)
	if s.Resolves(name) || IsBuiltin(name) {
		return
	}
	if _, seen := c.usage[name]; seen {
		return
	}
	c.usage[name] = Location{
		File:   c.path,
		Line:   int(node.StartPosition().Row) + 1,
		Column: int(node.StartPosition().Column) + 1,
	}
}
