// # internal/sema/expr.go
package sema

import (
	"strings"

	"jounce/internal/ast"
	"jounce/internal/diag"
	"jounce/internal/token"
	"jounce/internal/types"
)

func opText(k token.Kind) string {
	switch k {
	case token.Plus:
		return "+"
	case token.Minus:
		return "-"
	case token.Star:
		return "*"
	case token.Slash:
		return "/"
	case token.Percent:
		return "%"
	case token.Less:
		return "<"
	case token.LessEq:
		return "<="
	case token.Greater:
		return ">"
	case token.GreaterEq:
		return ">="
	case token.Eq:
		return "=="
	case token.NotEq:
		return "!="
	case token.AndAnd:
		return "&&"
	case token.OrOr:
		return "||"
	case token.Bang:
		return "!"
	}
	return k.String()
}

// exprType infers and records the type of an expression. Errors produce a
// diagnostic and Unknown, which downstream checks absorb silently.
func (a *analyzer) exprType(e ast.Expr) *types.Type {
	t := a.inferExpr(e)
	a.info.Types[e] = t
	return t
}

func (a *analyzer) inferExpr(e ast.Expr) *types.Type {
	switch e := e.(type) {
	case *ast.IntLit:
		return types.Int
	case *ast.FloatLit:
		return types.Float
	case *ast.StringLit:
		return types.String
	case *ast.BoolLit:
		return types.Bool
	case *ast.Identifier:
		return a.identType(e)
	case *ast.BinaryExpr:
		return a.binaryType(e)
	case *ast.UnaryExpr:
		return a.unaryType(e)
	case *ast.CallExpr:
		return a.callType(e)
	case *ast.FieldAccess:
		base := a.exprType(e.X)
		return a.fieldType(base, e)
	case *ast.Closure:
		return a.closureType(e)
	case *ast.BlockExpr:
		return a.blockType(e)
	case *ast.StructLit:
		return a.structLitType(e)
	case *ast.MarkupElement:
		a.checkMarkup(e)
		return types.Component()
	case *ast.MarkupFragment:
		for _, c := range e.Children {
			a.exprType(c)
		}
		return types.Component()
	case *ast.MarkupText:
		return types.String
	}
	return types.Unknown
}

func (a *analyzer) identType(e *ast.Identifier) *types.Type {
	if strings.Contains(e.Name, "::") {
		return a.variantRefType(e)
	}
	sym := a.resolveIdent(e, false)
	if sym == nil {
		return types.Unknown
	}
	return sym.Type
}

// resolveIdent looks up a plain identifier, marking the symbol used and
// recording the use edge. asCall switches the unresolved diagnostic to the
// function flavor.
func (a *analyzer) resolveIdent(e *ast.Identifier, asCall bool) *Symbol {
	sym := a.cur.lookup(e.Name)
	if sym != nil {
		sym.Used = true
		a.info.Uses[e] = sym
		return sym
	}
	code, noun := diag.CodeUnresolvedVariable, "variable"
	if asCall {
		code, noun = diag.CodeUnresolvedFunction, "function"
	}
	d := diag.Errorf(code, e.Sp, "unresolved %s `%s`", noun, e.Name)
	if s := closest(e.Name, a.cur.visible(), a.threshold); s != nil {
		d = d.WithSuggestion(s.Name)
	}
	a.diags = append(a.diags, d)
	return nil
}

// variantRefType types an Enum::Variant reference. A variant with payload
// fields is a constructor function; a bare variant is a value of the enum.
func (a *analyzer) variantRefType(e *ast.Identifier) *types.Type {
	enumName, variantName, _ := strings.Cut(e.Name, "::")
	sym := a.cur.lookup(enumName)
	if sym == nil || sym.Kind != SymEnum {
		a.errorf(diag.CodeUnresolvedVariable, e.Sp, "unresolved enum `%s`", enumName)
		return types.Unknown
	}
	sym.Used = true
	a.info.Uses[e] = sym
	variant := findVariant(sym.Enum, variantName)
	if variant == nil {
		d := diag.Errorf(diag.CodeUnresolvedVariable, e.Sp,
			"enum `%s` has no variant `%s`", enumName, variantName)
		names := make([]string, len(sym.Enum.Variants))
		for i, v := range sym.Enum.Variants {
			names[i] = v.Name
		}
		if s := closestName(variantName, names, a.threshold); s != "" {
			d = d.WithSuggestion(s)
		}
		a.diags = append(a.diags, d)
		return types.Unknown
	}
	if len(variant.Fields) == 0 {
		return types.Named(enumName)
	}
	params := make([]*types.Type, len(variant.Fields))
	for i, f := range variant.Fields {
		params[i] = a.resolveType(f)
	}
	return types.Function(params, types.Named(enumName))
}

func (a *analyzer) binaryType(e *ast.BinaryExpr) *types.Type {
	lt := a.exprType(e.Left)
	rt := a.exprType(e.Right)
	op := opText(e.Op)
	switch op {
	case "+", "-", "*", "/", "%":
		if op == "+" && types.Unifies(types.String, lt) && types.Unifies(types.String, rt) {
			return types.String
		}
		if !types.Unifies(lt, rt) || !(read(lt).IsNumeric() || lt.IsUnknown() || rt.IsUnknown()) {
			a.errorf(diag.CodeTypeMismatch, e.Sp, "operator `%s` cannot combine %s and %s", op, lt, rt)
			return types.Unknown
		}
		return read(lt)
	case "<", "<=", ">", ">=":
		if !types.Unifies(lt, rt) {
			a.errorf(diag.CodeTypeMismatch, e.Sp, "cannot compare %s with %s", lt, rt)
		}
		return types.Bool
	case "==", "!=":
		if !types.Unifies(lt, rt) {
			a.errorf(diag.CodeTypeMismatch, e.Sp, "cannot compare %s with %s", lt, rt)
		}
		return types.Bool
	case "&&", "||":
		if !types.Unifies(types.Bool, lt) || !types.Unifies(types.Bool, rt) {
			a.errorf(diag.CodeTypeMismatch, e.Sp, "operator `%s` requires Bool operands", op)
		}
		return types.Bool
	}
	return types.Unknown
}

// read strips one layer of reactive container; expressions always see the
// tracked value.
func read(t *types.Type) *types.Type {
	if t.IsReactive() {
		return t.Inner
	}
	return t
}

func (a *analyzer) unaryType(e *ast.UnaryExpr) *types.Type {
	xt := a.exprType(e.X)
	if opText(e.Op) == "!" {
		if !types.Unifies(types.Bool, xt) {
			a.errorf(diag.CodeTypeMismatch, e.Sp, "operator `!` requires Bool, found %s", xt)
		}
		return types.Bool
	}
	if !read(xt).IsNumeric() && !xt.IsUnknown() {
		a.errorf(diag.CodeTypeMismatch, e.Sp, "operator `-` requires a numeric operand, found %s", xt)
		return types.Unknown
	}
	return read(xt)
}

func (a *analyzer) callType(e *ast.CallExpr) *types.Type {
	// The reactive builtins have bespoke typing rules.
	if id, ok := e.Callee.(*ast.Identifier); ok {
		switch id.Name {
		case "signal", "computed", "effect":
			if sym := a.cur.lookup(id.Name); sym != nil && sym.Kind == SymBuiltin {
				a.info.Uses[id] = sym
				return a.reactiveCallType(id.Name, e)
			}
		}
	}

	var calleeT *types.Type
	if id, ok := e.Callee.(*ast.Identifier); ok && !strings.Contains(id.Name, "::") {
		sym := a.resolveIdent(id, true)
		if sym == nil {
			for _, arg := range e.Args {
				a.exprType(arg)
			}
			return types.Unknown
		}
		a.checkCapability(sym, e)
		if sym.Kind == SymComponent {
			a.errorf(diag.CodeBadCall, e.Sp,
				"component `%s` cannot be called; use `<%s />`", sym.Name, sym.Name)
			return types.Unknown
		}
		calleeT = sym.Type
		a.info.Types[id] = calleeT
	} else {
		calleeT = a.exprType(e.Callee)
	}

	if calleeT.IsUnknown() {
		for _, arg := range e.Args {
			a.exprType(arg)
		}
		return types.Unknown
	}
	if calleeT.Kind != types.KindFunction {
		a.errorf(diag.CodeBadCall, e.Sp, "%s is not callable", calleeT)
		for _, arg := range e.Args {
			a.exprType(arg)
		}
		return types.Unknown
	}
	if len(e.Args) != len(calleeT.Params) {
		a.errorf(diag.CodeBadCall, e.Sp,
			"expected %d argument(s), found %d", len(calleeT.Params), len(e.Args))
	}
	for i, arg := range e.Args {
		at := a.exprType(arg)
		if i < len(calleeT.Params) && !types.Unifies(calleeT.Params[i], at) {
			a.errorf(diag.CodeBadCall, arg.Span(),
				"argument %d has type %s, expected %s", i+1, at, calleeT.Params[i])
		}
	}
	if calleeT.Return == nil {
		return types.Unit
	}
	return calleeT.Return
}

func (a *analyzer) reactiveCallType(name string, e *ast.CallExpr) *types.Type {
	if len(e.Args) != 1 {
		a.errorf(diag.CodeBadCall, e.Sp, "`%s` takes exactly one argument", name)
		for _, arg := range e.Args {
			a.exprType(arg)
		}
		return types.Unknown
	}
	argT := a.exprType(e.Args[0])
	switch name {
	case "signal":
		return types.Signal(argT)
	case "computed":
		// computed(() => expr) tracks the closure result; computed(expr)
		// tracks the expression itself.
		if argT.Kind == types.KindFunction {
			ret := argT.Return
			if ret == nil {
				ret = types.Unit
			}
			return types.Computed(ret)
		}
		return types.Computed(read(argT))
	default: // effect
		if argT.Kind != types.KindFunction && !argT.IsUnknown() {
			a.errorf(diag.CodeBadCall, e.Args[0].Span(), "`effect` takes a closure")
		}
		return types.Unit
	}
}

// checkCapability enforces the fixed API capability table against the
// enclosing declaration's annotation.
func (a *analyzer) checkCapability(sym *Symbol, e *ast.CallExpr) {
	if sym.Kind == SymBuiltin {
		if a.curTarget == AnnotClient && serverOnlyAPIs[sym.Name] {
			a.errorf(diag.CodeCapabilityViolation, e.Sp,
				"`%s` is server-only and cannot be called from `@client` code", sym.Name)
		}
		if a.curTarget == AnnotServer && clientOnlyAPIs[sym.Name] {
			a.errorf(diag.CodeCapabilityViolation, e.Sp,
				"`%s` is client-only and cannot be called from `@server` code", sym.Name)
		}
		return
	}
	// Calling an annotated function from the opposite side is legal: the
	// generator replaces the call site with a remote-invocation stub.
}

func (a *analyzer) fieldType(base *types.Type, e *ast.FieldAccess) *types.Type {
	if base.IsUnknown() {
		return types.Unknown
	}
	if base.IsReactive() {
		if e.Field == "value" {
			return base.Inner
		}
		a.diags = append(a.diags, diag.Errorf(diag.CodeUnknownField, e.Sp,
			"%s has no field `%s`", base, e.Field).WithSuggestion("value"))
		return types.Unknown
	}
	if base.Kind != types.KindNamed {
		a.errorf(diag.CodeUnknownField, e.Sp, "%s has no field `%s`", base, e.Field)
		return types.Unknown
	}
	sym := a.global.lookup(base.Name)
	if sym == nil || sym.Kind != SymStruct {
		// Enums and opaque named types have no projectable fields.
		a.errorf(diag.CodeUnknownField, e.Sp, "%s has no field `%s`", base, e.Field)
		return types.Unknown
	}
	for _, f := range sym.Struct.Fields {
		if f.Name == e.Field {
			return a.resolveType(f.Type)
		}
	}
	d := diag.Errorf(diag.CodeUnknownField, e.Sp,
		"struct `%s` has no field `%s`", base.Name, e.Field)
	names := make([]string, len(sym.Struct.Fields))
	for i, f := range sym.Struct.Fields {
		names[i] = f.Name
	}
	if s := closestName(e.Field, names, a.threshold); s != "" {
		d = d.WithSuggestion(s)
	}
	a.diags = append(a.diags, d)
	return types.Unknown
}

func (a *analyzer) closureType(e *ast.Closure) *types.Type {
	sc := newScope(a.cur)
	params := make([]*types.Type, len(e.Params))
	for i, p := range e.Params {
		t := types.Unknown
		if p.Type != nil {
			t = a.resolveType(p.Type)
		}
		params[i] = t
		sym := a.newSymbol(p.Name, SymParam, t, p.Sp)
		sym.Used = true
		sc.define(sym)
	}
	prev := a.cur
	a.cur = sc
	ret := a.exprType(e.Body)
	a.cur = prev
	return types.Function(params, ret)
}

// blockType checks a block in expression position; its value is the trailing
// expression statement, or Unit.
func (a *analyzer) blockType(e *ast.BlockExpr) *types.Type {
	sc := newScope(a.cur)
	prev := a.cur
	a.cur = sc
	a.checkStmts(e.Block.Stmts)
	t := types.Unit
	if n := len(e.Block.Stmts); n > 0 {
		if last, ok := e.Block.Stmts[n-1].(*ast.ExprStmt); ok {
			if lt, ok := a.info.Types[last.X]; ok {
				t = lt
			}
		}
	}
	for _, sym := range sc.order {
		if sym.Kind == SymVar && !sym.Used && !strings.HasPrefix(sym.Name, "_") {
			a.warnf(diag.CodeUnusedVariable, sym.Sp, "unused variable `%s`", sym.Name)
		}
	}
	a.cur = prev
	return t
}

func (a *analyzer) structLitType(e *ast.StructLit) *types.Type {
	sym := a.cur.lookup(e.Name)
	if sym == nil || sym.Kind != SymStruct {
		d := diag.Errorf(diag.CodeUnresolvedVariable, e.Sp, "unresolved struct `%s`", e.Name)
		if s := closest(e.Name, a.cur.visible(), a.threshold); s != nil && s.Kind == SymStruct {
			d = d.WithSuggestion(s.Name)
		}
		a.diags = append(a.diags, d)
		for _, f := range e.Fields {
			a.exprType(f.Value)
		}
		return types.Unknown
	}
	sym.Used = true

	declared := map[string]ast.TypeExpr{}
	names := make([]string, len(sym.Struct.Fields))
	for i, f := range sym.Struct.Fields {
		declared[f.Name] = f.Type
		names[i] = f.Name
	}
	seen := map[string]bool{}
	for _, f := range e.Fields {
		ft, ok := declared[f.Name]
		if !ok {
			d := diag.Errorf(diag.CodeUnknownField, f.Sp,
				"struct `%s` has no field `%s`", e.Name, f.Name)
			if s := closestName(f.Name, names, a.threshold); s != "" {
				d = d.WithSuggestion(s)
			}
			a.diags = append(a.diags, d)
			a.exprType(f.Value)
			continue
		}
		seen[f.Name] = true
		vt := a.exprType(f.Value)
		want := a.resolveType(ft)
		if !types.Unifies(want, vt) {
			a.errorf(diag.CodeTypeMismatch, f.Value.Span(),
				"field `%s` has type %s, cannot assign %s", f.Name, want, vt)
		}
	}
	for _, f := range sym.Struct.Fields {
		if !seen[f.Name] {
			a.errorf(diag.CodeMissingField, e.Sp,
				"missing field `%s` in `%s` literal", f.Name, e.Name)
		}
	}
	return types.Named(e.Name)
}

// resolveType maps written type syntax to a resolved type.
func (a *analyzer) resolveType(t ast.TypeExpr) *types.Type {
	switch t := t.(type) {
	case *ast.NamedType:
		return a.resolveNamed(t)
	case *ast.FunctionType:
		params := make([]*types.Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = a.resolveType(p)
		}
		ret := types.Unit
		if t.Return != nil {
			ret = a.resolveType(t.Return)
		}
		return types.Function(params, ret)
	}
	return types.Unknown
}

func (a *analyzer) resolveNamed(t *ast.NamedType) *types.Type {
	arity := func(n int) bool {
		if len(t.Args) != n {
			a.errorf(diag.CodeTypeMismatch, t.Sp,
				"`%s` takes %d type argument(s), found %d", t.Name, n, len(t.Args))
			return false
		}
		return true
	}
	switch t.Name {
	case "Int":
		return types.Int
	case "Float":
		return types.Float
	case "Bool":
		return types.Bool
	case "String":
		return types.String
	case "Unit":
		return types.Unit
	case "Option":
		if !arity(1) {
			return types.Unknown
		}
		return types.Option(a.resolveType(t.Args[0]))
	case "Result":
		if !arity(2) {
			return types.Unknown
		}
		return types.Result(a.resolveType(t.Args[0]), a.resolveType(t.Args[1]))
	case "Array":
		if !arity(1) {
			return types.Unknown
		}
		return types.Array(a.resolveType(t.Args[0]))
	case "Signal":
		if !arity(1) {
			return types.Unknown
		}
		return types.Signal(a.resolveType(t.Args[0]))
	case "Computed":
		if !arity(1) {
			return types.Unknown
		}
		return types.Computed(a.resolveType(t.Args[0]))
	}
	sym := a.global.lookup(t.Name)
	if sym == nil || (sym.Kind != SymStruct && sym.Kind != SymEnum) {
		d := diag.Errorf(diag.CodeUnresolvedVariable, t.Sp, "unresolved type `%s`", t.Name)
		if s := closest(t.Name, a.global.visible(), a.threshold); s != nil &&
			(s.Kind == SymStruct || s.Kind == SymEnum) {
			d = d.WithSuggestion(s.Name)
		}
		a.diags = append(a.diags, d)
		return types.Unknown
	}
	sym.Used = true
	return types.Named(t.Name)
}
