// Package check infers the types of host expressions embedded in a view.
package check

import "viewc/internal/types"

// Scope is one level of a lexical scope chain.
type Scope struct {
	parent *Scope
	names  map[string]*types.Type
}

func NewScope(parent *Scope) *Scope {
	return &Scope{parent: parent}
}

// Define binds name in this scope, shadowing outer bindings.
func (s *Scope) Define(name string, t *types.Type) {
	if name == "" || name == "_" {
		return
	}
	if s.names == nil {
		s.names = make(map[string]*types.Type)
	}
	s.names[name] = t
}

func (s *Scope) Lookup(name string) (*types.Type, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if t, ok := sc.names[name]; ok {
			return t, true
		}
	}
	return nil, false
}
