// # internal/sema/analyzer.go
//
// Semantic analysis: declaration hoisting, scope-chain resolution, bottom-up
// type inference, markup and annotation validation. Analysis never stops at
// the first error; every declaration is visited and diagnostics accumulate.
// Unknown absorbs type errors so one mistake yields one diagnostic.
package sema

import (
	"strings"

	"jounce/internal/ast"
	"jounce/internal/diag"
	"jounce/internal/token"
	"jounce/internal/types"
)

// DefaultSuggestionThreshold is the edit-distance cap for "did you mean".
const DefaultSuggestionThreshold = 2

type Options struct {
	// SuggestionThreshold overrides the did-you-mean edit distance when > 0.
	SuggestionThreshold int
}

// Info is the analysis result consumed by the reactivity transformer and the
// generators.
type Info struct {
	// Uses maps each resolved identifier node to its symbol.
	Uses map[*ast.Identifier]*Symbol
	// Defs maps let statements and params to the symbols they introduce.
	Defs map[ast.Node]*Symbol
	// Types records the inferred type of every expression.
	Types map[ast.Expr]*types.Type
	// Reactives lists signal and computed symbols in declaration order.
	Reactives []*Symbol
	// Components lists component declarations in source order.
	Components []*Symbol
}

// Annotation names recognized on functions. server and client are mutually
// exclusive.
const (
	AnnotServer = "server"
	AnnotClient = "client"
)

// Analyze resolves and type-checks the module.
func Analyze(m *ast.Module, opts Options) (*Info, []diag.Diagnostic) {
	threshold := opts.SuggestionThreshold
	if threshold <= 0 {
		threshold = DefaultSuggestionThreshold
	}
	a := &analyzer{
		info: &Info{
			Uses:  map[*ast.Identifier]*Symbol{},
			Defs:  map[ast.Node]*Symbol{},
			Types: map[ast.Expr]*types.Type{},
		},
		threshold: threshold,
	}
	a.global = newScope(nil)
	a.cur = a.global
	a.declareBuiltins()
	a.hoist(m)
	a.checkBodies(m)
	a.flagDeadDecls()
	return a.info, a.diags
}

type analyzer struct {
	diags     []diag.Diagnostic
	info      *Info
	global    *scope
	cur       *scope
	nextID    int
	order     int
	threshold int

	// Per-body state.
	curRet    *types.Type
	curTarget string // server, client, or "" for the enclosing declaration
}

func (a *analyzer) errorf(code string, span token.Span, format string, args ...any) {
	a.diags = append(a.diags, diag.Errorf(code, span, format, args...))
}

func (a *analyzer) warnf(code string, span token.Span, format string, args ...any) {
	a.diags = append(a.diags, diag.Warnf(code, span, format, args...))
}

func (a *analyzer) newSymbol(name string, kind SymbolKind, t *types.Type, sp token.Span) *Symbol {
	a.nextID++
	a.order++
	return &Symbol{ID: a.nextID, Name: name, Kind: kind, Type: t, Order: a.order, Sp: sp}
}

func (a *analyzer) declareBuiltins() {
	for name, sig := range builtinSignatures() {
		sym := a.newSymbol(name, SymBuiltin, sig, token.Span{})
		sym.Used = true
		a.global.define(sym)
	}
}

// ─────────────────────────────── hoisting ────────────────────────────────────

// hoist registers every top-level name before any body is checked, so
// declarations can reference each other regardless of order. Type names go in
// first, then callable signatures, which may reference the type names.
func (a *analyzer) hoist(m *ast.Module) {
	for _, d := range m.Decls {
		switch d := d.(type) {
		case *ast.StructDecl:
			sym := a.declareTop(d.Name, SymStruct, d.Sp)
			if sym != nil {
				sym.Struct = d
				sym.Type = types.Named(d.Name)
			}
		case *ast.EnumDecl:
			sym := a.declareTop(d.Name, SymEnum, d.Sp)
			if sym != nil {
				sym.Enum = d
				sym.Type = types.Named(d.Name)
			}
		}
	}
	for _, d := range m.Decls {
		switch d := d.(type) {
		case *ast.FunctionDecl:
			a.checkAnnotations(d.Annotations)
			sym := a.declareTop(d.Name, SymFunc, d.Sp)
			if sym != nil {
				sym.Fn = d
				sym.Type = a.signatureOf(d.Params, d.ReturnType)
			}
		case *ast.ComponentDecl:
			a.checkAnnotations(d.Annotations)
			sym := a.declareTop(d.Name, SymComponent, d.Sp)
			if sym != nil {
				sym.Comp = d
				sym.Type = types.Component()
				a.info.Components = append(a.info.Components, sym)
			}
		}
	}
}

func (a *analyzer) declareTop(name string, kind SymbolKind, sp token.Span) *Symbol {
	if prev, ok := a.global.names[name]; ok {
		a.diags = append(a.diags, diag.Errorf(diag.CodeSyntax, sp,
			"duplicate declaration of `%s`", name).WithRelated(prev.Sp))
		return nil
	}
	sym := a.newSymbol(name, kind, types.Unknown, sp)
	a.global.define(sym)
	return sym
}

func (a *analyzer) checkAnnotations(annots []ast.Annotation) {
	var server, client *ast.Annotation
	for i := range annots {
		an := &annots[i]
		switch an.Name {
		case AnnotServer:
			server = an
		case AnnotClient:
			client = an
		default:
			a.errorf(diag.CodeSyntax, an.Sp, "unknown annotation `@%s`", an.Name)
		}
	}
	if server != nil && client != nil {
		a.diags = append(a.diags, diag.Errorf(diag.CodeConflictingAnnots, client.Sp,
			"`@server` and `@client` are mutually exclusive").WithRelated(server.Sp))
	}
}

func (a *analyzer) signatureOf(params []ast.Param, ret ast.TypeExpr) *types.Type {
	pts := make([]*types.Type, len(params))
	for i, p := range params {
		if p.Type == nil {
			pts[i] = types.Unknown
			continue
		}
		pts[i] = a.resolveType(p.Type)
	}
	rt := types.Unit
	if ret != nil {
		rt = a.resolveType(ret)
	}
	return types.Function(pts, rt)
}

// ───────────────────────────── body checking ─────────────────────────────────

func (a *analyzer) checkBodies(m *ast.Module) {
	for _, d := range m.Decls {
		switch d := d.(type) {
		case *ast.FunctionDecl:
			a.checkFunction(d)
		case *ast.ComponentDecl:
			a.checkComponent(d)
		case *ast.StructDecl:
			for _, f := range d.Fields {
				a.resolveType(f.Type)
			}
		case *ast.EnumDecl:
			for _, v := range d.Variants {
				for _, f := range v.Fields {
					a.resolveType(f)
				}
			}
		}
	}
}

func annotationTarget(annots []ast.Annotation) string {
	for _, an := range annots {
		if an.Name == AnnotServer || an.Name == AnnotClient {
			return an.Name
		}
	}
	return ""
}

func (a *analyzer) checkFunction(d *ast.FunctionDecl) {
	prevRet, prevTarget := a.curRet, a.curTarget
	a.curTarget = annotationTarget(d.Annotations)
	a.curRet = types.Unit
	if d.ReturnType != nil {
		a.curRet = a.resolveType(d.ReturnType)
	}
	body := newScope(a.global)
	a.bindParams(body, d.Params)
	a.checkBlock(d.Body, body)
	a.curRet, a.curTarget = prevRet, prevTarget
}

func (a *analyzer) checkComponent(d *ast.ComponentDecl) {
	prevRet, prevTarget := a.curRet, a.curTarget
	a.curTarget = annotationTarget(d.Annotations)
	a.curRet = types.Unit
	body := newScope(a.global)
	a.bindParams(body, d.Params)
	a.checkBlock(d.Body, body)
	a.curRet, a.curTarget = prevRet, prevTarget
}

func (a *analyzer) bindParams(sc *scope, params []ast.Param) {
	for _, p := range params {
		t := types.Unknown
		if p.Type != nil {
			t = a.resolveType(p.Type)
		}
		sym := a.newSymbol(p.Name, SymParam, t, p.Sp)
		sym.Used = true // params are part of the signature, never "unused"
		sc.define(sym)
	}
}

// checkBlock checks statements in a fresh child scope and reports unused
// locals when the scope closes.
func (a *analyzer) checkBlock(b *ast.Block, sc *scope) {
	prev := a.cur
	a.cur = sc
	a.checkStmts(b.Stmts)
	for _, sym := range sc.order {
		if sym.Kind == SymVar && !sym.Used && !strings.HasPrefix(sym.Name, "_") {
			a.warnf(diag.CodeUnusedVariable, sym.Sp, "unused variable `%s`", sym.Name)
		}
	}
	a.cur = prev
}

func (a *analyzer) checkStmts(stmts []ast.Stmt) {
	returned := false
	for _, s := range stmts {
		if returned {
			a.warnf(diag.CodeUnreachableCode, s.Span(), "unreachable code")
			returned = false // one warning per return, not per statement
		}
		a.checkStmt(s)
		if _, isRet := s.(*ast.ReturnStmt); isRet {
			returned = true
		}
	}
}

func (a *analyzer) checkStmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.LetStmt:
		a.checkLet(s)
	case *ast.AssignStmt:
		a.checkAssign(s)
	case *ast.ReturnStmt:
		t := types.Unit
		if s.Value != nil {
			t = a.exprType(s.Value)
		}
		if a.curRet != nil && !types.Unifies(a.curRet, t) {
			a.errorf(diag.CodeTypeMismatch, s.Sp,
				"cannot return %s, function returns %s", t, a.curRet)
		}
	case *ast.IfStmt:
		ct := a.exprType(s.Cond)
		if !types.Unifies(types.Bool, ct) {
			a.errorf(diag.CodeTypeMismatch, s.Cond.Span(), "if condition must be Bool, found %s", ct)
		}
		a.checkBlock(s.Then, newScope(a.cur))
		switch e := s.Else.(type) {
		case *ast.Block:
			a.checkBlock(e, newScope(a.cur))
		case *ast.IfStmt:
			a.checkStmt(e)
		}
	case *ast.MatchStmt:
		a.checkMatch(s)
	case *ast.ExprStmt:
		if el, ok := s.X.(*ast.MarkupElement); ok {
			a.checkMarkup(el)
			a.info.Types[el] = types.Component()
			return
		}
		a.exprType(s.X)
	case *ast.StyleStmt:
		// Validated by the parser and rendered by the CSS generator.
	case *ast.Block:
		a.checkBlock(s, newScope(a.cur))
	}
}

// checkLet infers the bound value's type and registers the new name. A
// signal(...) or computed(...) initializer makes the binding reactive.
func (a *analyzer) checkLet(s *ast.LetStmt) {
	kind := SymVar
	var init ast.Expr
	t := a.exprType(s.Value)

	if call, ok := s.Value.(*ast.CallExpr); ok {
		if callee, ok := call.Callee.(*ast.Identifier); ok && len(call.Args) == 1 {
			switch callee.Name {
			case "signal":
				kind = SymSignal
				init = call.Args[0]
			case "computed":
				kind = SymComputed
				init = call.Args[0]
			}
		}
	}

	if s.Type != nil {
		declared := a.resolveType(s.Type)
		if !types.Unifies(declared, t) {
			a.errorf(diag.CodeTypeMismatch, s.Value.Span(),
				"cannot assign %s to `%s` declared as %s", t, s.Name, declared)
		}
		if !declared.IsUnknown() {
			t = declared
		}
	}

	sym := a.newSymbol(s.Name, kind, t, s.NameSp)
	sym.Mutable = s.Mutable
	sym.Init = init
	a.cur.define(sym)
	a.info.Defs[s] = sym
	if sym.IsReactive() {
		a.info.Reactives = append(a.info.Reactives, sym)
	}
}

func (a *analyzer) checkAssign(s *ast.AssignStmt) {
	vt := a.exprType(s.Value)
	switch target := s.Target.(type) {
	case *ast.Identifier:
		sym := a.resolveIdent(target, false)
		if sym == nil {
			return
		}
		switch {
		case sym.Kind == SymSignal:
			a.diags = append(a.diags, diag.Errorf(diag.CodeInvalidAssignment, target.Sp,
				"cannot assign to signal `%s` directly", sym.Name).
				WithSuggestion(sym.Name+".value"))
			return
		case sym.Kind == SymComputed:
			a.errorf(diag.CodeInvalidAssignment, target.Sp,
				"cannot assign to computed value `%s`", sym.Name)
			return
		case sym.Kind != SymVar && sym.Kind != SymParam:
			a.errorf(diag.CodeInvalidAssignment, target.Sp,
				"cannot assign to %s `%s`", sym.Kind, sym.Name)
			return
		case !sym.Mutable:
			a.diags = append(a.diags, diag.Errorf(diag.CodeInvalidAssignment, target.Sp,
				"cannot assign to immutable variable `%s`", sym.Name).
				WithNote("declare it with `let mut`").WithRelated(sym.Sp))
			return
		}
		if !types.Unifies(sym.Type, vt) {
			a.errorf(diag.CodeTypeMismatch, s.Value.Span(),
				"cannot assign %s to `%s` of type %s", vt, sym.Name, sym.Type)
		}
	case *ast.FieldAccess:
		base := a.exprType(target.X)
		if base.IsReactive() && target.Field == "value" {
			if base.Kind == types.KindComputed {
				a.errorf(diag.CodeInvalidAssignment, target.Sp, "computed values are read-only")
				return
			}
			if !types.Unifies(base.Inner, vt) {
				a.errorf(diag.CodeTypeMismatch, s.Value.Span(),
					"cannot assign %s to signal of %s", vt, base.Inner)
			}
			return
		}
		ft := a.fieldType(base, target)
		if !types.Unifies(ft, vt) {
			a.errorf(diag.CodeTypeMismatch, s.Value.Span(),
				"cannot assign %s to field `%s` of type %s", vt, target.Field, ft)
		}
	default:
		a.errorf(diag.CodeInvalidAssignment, s.Target.Span(), "invalid assignment target")
	}
}

func (a *analyzer) checkMatch(s *ast.MatchStmt) {
	st := a.exprType(s.Subject)
	for _, arm := range s.Arms {
		armScope := newScope(a.cur)
		a.bindPattern(arm.Pattern, st, armScope)
		prev := a.cur
		a.cur = armScope
		a.exprType(arm.Body)
		a.cur = prev
	}
}

// bindPattern checks a pattern against the subject type and introduces its
// bindings into the arm scope.
func (a *analyzer) bindPattern(pat ast.Pattern, subject *types.Type, sc *scope) {
	switch pat := pat.(type) {
	case *ast.WildcardPattern:
	case *ast.BindingPattern:
		sym := a.newSymbol(pat.Name, SymVar, subject, pat.Sp)
		sym.Used = true // match bindings are intentional even when unused
		sc.define(sym)
	case *ast.LiteralPattern:
		lt := a.exprType(pat.Value)
		if !types.Unifies(subject, lt) {
			a.errorf(diag.CodeTypeMismatch, pat.Sp,
				"pattern of type %s cannot match %s", lt, subject)
		}
	case *ast.VariantPattern:
		enumSym := a.cur.lookup(pat.Enum)
		if enumSym == nil || enumSym.Kind != SymEnum {
			a.errorf(diag.CodeUnresolvedVariable, pat.Sp, "unresolved enum `%s`", pat.Enum)
			return
		}
		enumSym.Used = true
		variant := findVariant(enumSym.Enum, pat.Variant)
		if variant == nil {
			d := diag.Errorf(diag.CodeUnresolvedVariable, pat.Sp,
				"enum `%s` has no variant `%s`", pat.Enum, pat.Variant)
			names := make([]string, len(enumSym.Enum.Variants))
			for i, v := range enumSym.Enum.Variants {
				names[i] = v.Name
			}
			if s := closestName(pat.Variant, names, a.threshold); s != "" {
				d = d.WithSuggestion(s)
			}
			a.diags = append(a.diags, d)
			return
		}
		if len(pat.Binds) != len(variant.Fields) {
			a.errorf(diag.CodeBadCall, pat.Sp,
				"variant `%s::%s` has %d field(s), pattern binds %d",
				pat.Enum, pat.Variant, len(variant.Fields), len(pat.Binds))
		}
		for i, b := range pat.Binds {
			ft := types.Unknown
			if i < len(variant.Fields) {
				ft = a.resolveType(variant.Fields[i])
			}
			a.bindPattern(b, ft, sc)
		}
	}
}

func findVariant(e *ast.EnumDecl, name string) *ast.EnumVariant {
	for i := range e.Variants {
		if e.Variants[i].Name == name {
			return &e.Variants[i]
		}
	}
	return nil
}

// flagDeadDecls warns about top-level declarations nothing references.
// main and components are entry points and exempt.
func (a *analyzer) flagDeadDecls() {
	for _, sym := range a.global.order {
		if sym.Used || sym.Kind == SymBuiltin || sym.Kind == SymComponent {
			continue
		}
		if sym.Kind == SymFunc && sym.Name == "main" {
			continue
		}
		a.warnf(diag.CodeDeadCode, sym.Sp, "%s `%s` is never used", sym.Kind, sym.Name)
	}
}
