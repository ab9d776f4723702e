// # internal/sema/scope.go
package sema

import (
	"jounce/internal/ast"
	"jounce/internal/token"
	"jounce/internal/types"
)

type SymbolKind int

const (
	SymVar SymbolKind = iota
	SymParam
	SymFunc
	SymComponent
	SymStruct
	SymEnum
	SymSignal
	SymComputed
	SymBuiltin
)

func (k SymbolKind) String() string {
	switch k {
	case SymVar:
		return "variable"
	case SymParam:
		return "parameter"
	case SymFunc:
		return "function"
	case SymComponent:
		return "component"
	case SymStruct:
		return "struct"
	case SymEnum:
		return "enum"
	case SymSignal:
		return "signal"
	case SymComputed:
		return "computed"
	case SymBuiltin:
		return "builtin"
	}
	return "symbol"
}

// Symbol is one named declaration. IDs are unique per analysis and double as
// reactive-graph node keys.
type Symbol struct {
	ID      int
	Name    string
	Kind    SymbolKind
	Type    *types.Type
	Mutable bool
	Order   int // declaration order, breaks suggestion ties
	Sp      token.Span
	Used    bool

	// Init is the defining expression for signals (initial value) and
	// computeds (the computation); nil for everything else.
	Init ast.Expr

	Fn     *ast.FunctionDecl
	Comp   *ast.ComponentDecl
	Struct *ast.StructDecl
	Enum   *ast.EnumDecl
}

// IsReactive reports whether the symbol is a reactive declaration.
func (s *Symbol) IsReactive() bool { return s.Kind == SymSignal || s.Kind == SymComputed }

// scope is one link in the lexical scope chain. Names shadow outward.
type scope struct {
	parent *scope
	names  map[string]*Symbol
	order  []*Symbol
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, names: map[string]*Symbol{}}
}

func (s *scope) define(sym *Symbol) {
	s.names[sym.Name] = sym
	s.order = append(s.order, sym)
}

func (s *scope) lookup(name string) *Symbol {
	for sc := s; sc != nil; sc = sc.parent {
		if sym, ok := sc.names[name]; ok {
			return sym
		}
	}
	return nil
}

// visible collects every symbol reachable through the chain, innermost first,
// skipping shadowed outer names. Suggestion candidates come from here.
func (s *scope) visible() []*Symbol {
	seen := map[string]bool{}
	var out []*Symbol
	for sc := s; sc != nil; sc = sc.parent {
		for _, sym := range sc.order {
			if !seen[sym.Name] {
				seen[sym.Name] = true
				out = append(out, sym)
			}
		}
	}
	return out
}
