// # internal/reactive/transform.go
//
// The reactivity transformer. It builds the dependency graph over signal and
// computed declarations, rejects cycles, and computes the read set of every
// dynamic markup slot. Slots with a non-empty read set become effect-bound
// updaters in the generator; slots with an empty read set stay static and
// never re-evaluate after initial render. Event handlers are left untouched.
package reactive

import (
	"strings"

	"jounce/internal/ast"
	"jounce/internal/diag"
	"jounce/internal/sema"
)

// Slot is one dynamic position in a markup tree: an embedded child expression
// or a non-handler attribute value.
type Slot struct {
	Expr ast.Expr
	// Attr is the attribute name for attribute slots, "" for child slots.
	Attr string
	// ReadSet is every reactive symbol the slot's expression reads,
	// transitively, in symbol-id order. Empty means the slot is static.
	ReadSet []*sema.Symbol
}

// Dynamic reports whether the slot needs an effect-bound updater.
func (s *Slot) Dynamic() bool { return len(s.ReadSet) > 0 }

// Result is the transformed view of a module: the graph plus per-slot read
// sets, keyed by the slot's expression node.
type Result struct {
	Graph *Graph
	Slots map[ast.Expr]*Slot
}

// SlotFor returns the slot for an expression node, or nil for static content.
func (r *Result) SlotFor(e ast.Expr) *Slot { return r.Slots[e] }

// Transform analyzes reactivity for an analyzed module. A cyclic computed
// definition yields one diagnostic per cycle, naming the members in cycle
// order; cycles abort code generation but not the rest of the transform.
func Transform(m *ast.Module, info *sema.Info) (*Result, []diag.Diagnostic) {
	t := &transformer{
		info:  info,
		graph: newGraph(),
		res:   &Result{Slots: map[ast.Expr]*Slot{}},
	}
	t.res.Graph = t.graph

	for _, sym := range info.Reactives {
		t.graph.addNode(sym)
	}
	for _, sym := range info.Reactives {
		if sym.Kind != sema.SymComputed || sym.Init == nil {
			continue
		}
		for _, read := range t.directReads(sym.Init) {
			t.graph.addRead(sym.ID, read.ID)
		}
	}

	for _, cycle := range t.graph.DetectCycles() {
		names := make([]string, len(cycle))
		for i, sym := range cycle {
			names[i] = sym.Name
		}
		t.diags = append(t.diags, diag.Errorf(diag.CodeReactiveCycle, cycle[0].Sp,
			"cyclic reactive dependency: %s", strings.Join(names, " -> ")))
	}

	for _, d := range m.Decls {
		if comp, ok := d.(*ast.ComponentDecl); ok {
			t.walkBlock(comp.Body)
		}
	}
	return t.res, t.diags
}

type transformer struct {
	info  *sema.Info
	graph *Graph
	res   *Result
	diags []diag.Diagnostic
}

// directReads collects the reactive symbols an expression reads directly,
// including reads inside closures (a computed defined as a closure tracks its
// body's reads).
func (t *transformer) directReads(e ast.Expr) []*sema.Symbol {
	var out []*sema.Symbol
	seen := map[int]bool{}
	walkExpr(e, func(id *ast.Identifier) {
		sym := t.info.Uses[id]
		if sym != nil && sym.IsReactive() && !seen[sym.ID] {
			seen[sym.ID] = true
			out = append(out, sym)
		}
	})
	return out
}

func (t *transformer) slotFor(e ast.Expr, attr string) {
	direct := t.directReads(e)
	slot := &Slot{Expr: e, Attr: attr}
	if len(direct) > 0 {
		slot.ReadSet = t.graph.closure(direct)
	}
	t.res.Slots[e] = slot
}

func (t *transformer) walkBlock(b *ast.Block) {
	for _, s := range b.Stmts {
		t.walkStmt(s)
	}
}

func (t *transformer) walkStmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.LetStmt:
		t.scanEmbedded(s.Value)
	case *ast.AssignStmt:
		t.scanEmbedded(s.Value)
	case *ast.ReturnStmt:
		if s.Value != nil {
			t.scanEmbedded(s.Value)
		}
	case *ast.ExprStmt:
		if isMarkup(s.X) {
			t.walkMarkup(s.X)
		} else {
			t.scanEmbedded(s.X)
		}
	case *ast.IfStmt:
		t.walkBlock(s.Then)
		switch e := s.Else.(type) {
		case *ast.Block:
			t.walkBlock(e)
		case *ast.IfStmt:
			t.walkStmt(e)
		}
	case *ast.MatchStmt:
		for _, arm := range s.Arms {
			t.walkArmBody(arm.Body)
		}
	case *ast.Block:
		t.walkBlock(s)
	}
}

// walkArmBody registers slots for a match arm: markup renders into the
// enclosing element, block bodies are ordinary statement lists.
func (t *transformer) walkArmBody(body ast.Expr) {
	switch b := body.(type) {
	case *ast.BlockExpr:
		t.walkBlock(b.Block)
	default:
		if isMarkup(body) {
			t.walkMarkup(body)
		} else {
			t.scanEmbedded(body)
		}
	}
}

// scanEmbedded finds markup trees in expression position (let values,
// returns, call arguments, closure bodies) and registers their slots. The
// generator renders those trees exactly like statement-position markup, so
// they need the same read-set bookkeeping.
func (t *transformer) scanEmbedded(e ast.Expr) {
	switch e := e.(type) {
	case *ast.MarkupElement, *ast.MarkupFragment:
		t.walkMarkup(e)
	case *ast.BinaryExpr:
		t.scanEmbedded(e.Left)
		t.scanEmbedded(e.Right)
	case *ast.UnaryExpr:
		t.scanEmbedded(e.X)
	case *ast.CallExpr:
		t.scanEmbedded(e.Callee)
		for _, a := range e.Args {
			t.scanEmbedded(a)
		}
	case *ast.FieldAccess:
		t.scanEmbedded(e.X)
	case *ast.Closure:
		t.scanEmbedded(e.Body)
	case *ast.BlockExpr:
		t.walkBlock(e.Block)
	case *ast.StructLit:
		for _, f := range e.Fields {
			t.scanEmbedded(f.Value)
		}
	}
}

// walkMarkup registers a slot for every dynamic position in the tree. Static
// text and nested elements are structure, not slots; handler attributes are
// deliberately skipped.
func (t *transformer) walkMarkup(e ast.Expr) {
	switch e := e.(type) {
	case *ast.MarkupElement:
		for _, attr := range e.Attrs {
			if attr.IsEventHandler() || attr.Quoted {
				continue
			}
			t.slotFor(attr.Value, attr.Name)
		}
		for _, child := range e.Children {
			switch child.(type) {
			case *ast.MarkupElement, *ast.MarkupFragment, *ast.MarkupText:
				t.walkMarkup(child)
			default:
				t.slotFor(child, "")
			}
		}
	case *ast.MarkupFragment:
		for _, child := range e.Children {
			t.walkMarkup(child)
		}
	}
}

func isMarkup(e ast.Expr) bool {
	switch e.(type) {
	case *ast.MarkupElement, *ast.MarkupFragment:
		return true
	}
	return false
}
