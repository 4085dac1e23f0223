// # internal/parser/scope.go
package parser

type ScopeKind int

const (
	ScopeModule ScopeKind = iota
	ScopeFunction
	ScopeClass
	ScopeComprehension
)

// Scope is one level of Python's lexical scope chain. Class scopes take part
// in lookups from their own body but are skipped when a nested function or
// comprehension resolves upward.
type Scope struct {
	Kind     ScopeKind
	Parent   *Scope
	bound    map[string]bool
	globals  map[string]bool
	nonlocal map[string]bool
}

func NewScope(kind ScopeKind, parent *Scope) *Scope {
	return &Scope{
		Kind:     kind,
		Parent:   parent,
		bound:    map[string]bool{},
		globals:  map[string]bool{},
		nonlocal: map[string]bool{},
	}
}

// Bind records a name as bound in this scope. Names declared global or
// nonlocal here never become local bindings: references to them keep resolving
// through outer scopes.
func (s *Scope) Bind(name string) {
	if s.globals[name] || s.nonlocal[name] {
		return
	}
	s.bound[name] = true
}

func (s *Scope) DeclareGlobal(name string) {
	s.globals[name] = true
}

func (s *Scope) DeclareNonlocal(name string) {
	s.nonlocal[name] = true
}

func (s *Scope) module() *Scope {
	cur := s
	for cur.Parent != nil {
		cur = cur.Parent
	}
	return cur
}

// Resolves reports whether a reference to name made in this scope finds a
// binding somewhere on the chain. Builtins are not consulted here.
func (s *Scope) Resolves(name string) bool {
	if s.globals[name] {
		return s.module().bound[name]
	}
	cur := s
	for cur != nil {
		// A class body sees its own names, but scopes nested inside the
		// class do not.
		if cur.Kind == ScopeClass && cur != s {
			cur = cur.Parent
			continue
		}
		if cur.bound[name] {
			return true
		}
		cur = cur.Parent
	}
	return false
}
