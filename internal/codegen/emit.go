// # internal/codegen/emit.go
package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"jounce/internal/ast"
	"jounce/internal/sema"
	"jounce/internal/token"
)

// stmts lowers a statement list. parent is the DOM variable markup statements
// append to; it is empty inside plain functions, where markup cannot occur.
func (e *emitter) stmts(stmts []ast.Stmt, parent string) {
	for _, s := range stmts {
		e.stmt(s, parent)
	}
}

func (e *emitter) stmt(s ast.Stmt, parent string) {
	switch s := s.(type) {
	case *ast.LetStmt:
		kw := "const"
		if s.Mutable {
			kw = "let"
		}
		e.linef("%s %s = %s;", kw, s.Name, e.expr(s.Value))
	case *ast.AssignStmt:
		e.linef("%s = %s;", e.expr(s.Target), e.expr(s.Value))
	case *ast.ReturnStmt:
		if s.Value == nil {
			e.line("return;")
		} else {
			e.linef("return %s;", e.expr(s.Value))
		}
	case *ast.IfStmt:
		e.linef("if (%s) {", e.expr(s.Cond))
		e.indent++
		e.stmts(s.Then.Stmts, parent)
		e.indent--
		switch el := s.Else.(type) {
		case *ast.Block:
			e.line("} else {")
			e.indent++
			e.stmts(el.Stmts, parent)
			e.indent--
			e.line("}")
		case *ast.IfStmt:
			e.line("} else {")
			e.indent++
			e.stmt(el, parent)
			e.indent--
			e.line("}")
		default:
			e.line("}")
		}
	case *ast.MatchStmt:
		e.match(s, parent)
	case *ast.ExprStmt:
		if isMarkupNode(s.X) && parent != "" {
			e.markup(parent, s.X)
			return
		}
		e.linef("%s;", e.expr(s.X))
	case *ast.StyleStmt:
		// Style blocks live in the stylesheet, not the script.
	case *ast.Block:
		e.line("{")
		e.indent++
		e.stmts(s.Stmts, parent)
		e.indent--
		e.line("}")
	}
}

// match lowers a match statement to an if/else chain over the runtime
// variant representation.
func (e *emitter) match(s *ast.MatchStmt, parent string) {
	subj := e.fresh("m")
	e.linef("const %s = %s;", subj, e.expr(s.Subject))
	for i, arm := range s.Arms {
		cond, binds := e.armCond(subj, arm.Pattern)
		switch {
		case cond == "": // wildcard or binding matches everything
			if i == 0 {
				e.line("{")
			} else {
				e.line("else {")
			}
		case i == 0:
			e.linef("if (%s) {", cond)
		default:
			e.linef("else if (%s) {", cond)
		}
		e.indent++
		for _, b := range binds {
			e.line(b)
		}
		e.armBody(arm.Body, parent)
		e.indent--
		e.line("}")
		if cond == "" {
			break
		}
	}
}

// armCond renders a pattern's test and its binding statements. An empty
// condition means the arm always matches.
func (e *emitter) armCond(subj string, pat ast.Pattern) (string, []string) {
	switch pat := pat.(type) {
	case *ast.WildcardPattern:
		return "", nil
	case *ast.BindingPattern:
		return "", []string{fmt.Sprintf("const %s = %s;", pat.Name, subj)}
	case *ast.LiteralPattern:
		return fmt.Sprintf("%s === %s", subj, e.expr(pat.Value)), nil
	case *ast.VariantPattern:
		cond := fmt.Sprintf("__j.isVariant(%s, %q, %q)", subj, pat.Enum, pat.Variant)
		var binds []string
		for i, b := range pat.Binds {
			if bp, ok := b.(*ast.BindingPattern); ok {
				binds = append(binds, fmt.Sprintf("const %s = %s.$fields[%d];", bp.Name, subj, i))
			}
		}
		return cond, binds
	}
	return "", nil
}

func (e *emitter) armBody(body ast.Expr, parent string) {
	if blk, ok := body.(*ast.BlockExpr); ok {
		e.stmts(blk.Block.Stmts, parent)
		return
	}
	if isMarkupNode(body) && parent != "" {
		e.markup(parent, body)
		return
	}
	e.linef("%s;", e.expr(body))
}

// ─────────────────────────────── expressions ─────────────────────────────────

func (e *emitter) expr(x ast.Expr) string {
	switch x := x.(type) {
	case *ast.IntLit:
		return strconv.FormatInt(x.Value, 10)
	case *ast.FloatLit:
		return x.Text
	case *ast.StringLit:
		return strconv.Quote(x.Value)
	case *ast.BoolLit:
		return strconv.FormatBool(x.Value)
	case *ast.Identifier:
		return e.ident(x)
	case *ast.BinaryExpr:
		return fmt.Sprintf("(%s %s %s)", e.expr(x.Left), jsOp(x.Op), e.expr(x.Right))
	case *ast.UnaryExpr:
		return fmt.Sprintf("(%s%s)", jsOp(x.Op), e.expr(x.X))
	case *ast.CallExpr:
		return e.call(x)
	case *ast.FieldAccess:
		return fmt.Sprintf("%s.%s", e.expr(x.X), x.Field)
	case *ast.Closure:
		return e.closure(x)
	case *ast.BlockExpr:
		return fmt.Sprintf("(() => {\n%s})()", e.capture(func() {
			e.indent++
			e.blockValue(x.Block)
			e.indent--
		}))
	case *ast.StructLit:
		fields := make([]string, len(x.Fields))
		for i, f := range x.Fields {
			fields[i] = fmt.Sprintf("%s: %s", f.Name, e.expr(f.Value))
		}
		return "{ " + strings.Join(fields, ", ") + " }"
	case *ast.MarkupElement, *ast.MarkupFragment:
		// Markup in expression position becomes a fragment factory.
		return fmt.Sprintf("(() => {\n%s})()", e.capture(func() {
			e.indent++
			frag := e.fresh("f")
			e.linef("const %s = __j.fragment();", frag)
			e.markup(frag, x)
			e.linef("return %s;", frag)
			e.indent--
		}))
	case *ast.MarkupText:
		return strconv.Quote(x.Text)
	}
	return "undefined"
}

func (e *emitter) ident(x *ast.Identifier) string {
	if enum, variant, ok := strings.Cut(x.Name, "::"); ok {
		return fmt.Sprintf("__j.variant(%q, %q)", enum, variant)
	}
	if sym := e.info.Uses[x]; sym != nil && sym.Kind == sema.SymBuiltin {
		return "__j." + x.Name
	}
	return x.Name
}

func (e *emitter) call(x *ast.CallExpr) string {
	args := make([]string, len(x.Args))
	for i, a := range x.Args {
		args[i] = e.expr(a)
	}
	argList := strings.Join(args, ", ")

	id, isIdent := x.Callee.(*ast.Identifier)
	if !isIdent {
		return fmt.Sprintf("%s(%s)", e.expr(x.Callee), argList)
	}

	if enum, variant, ok := strings.Cut(id.Name, "::"); ok {
		if argList == "" {
			return fmt.Sprintf("__j.variant(%q, %q)", enum, variant)
		}
		return fmt.Sprintf("__j.variant(%q, %q, %s)", enum, variant, argList)
	}

	switch id.Name {
	case "signal":
		return fmt.Sprintf("__j.signal(%s)", argList)
	case "computed", "effect":
		// Both take a thunk; a bare expression argument is wrapped.
		if len(x.Args) == 1 {
			if _, isClosure := x.Args[0].(*ast.Closure); !isClosure {
				return fmt.Sprintf("__j.%s(() => %s)", id.Name, args[0])
			}
		}
		return fmt.Sprintf("__j.%s(%s)", id.Name, argList)
	}

	if sym := e.info.Uses[id]; sym != nil {
		switch {
		case sym.Kind == sema.SymBuiltin:
			return fmt.Sprintf("__j.%s(%s)", id.Name, argList)
		case sym.Kind == sema.SymFunc && e.crossTarget(sym.Fn):
			return fmt.Sprintf("__j.rpc(%q, [%s])", id.Name, argList)
		}
	}
	return fmt.Sprintf("%s(%s)", id.Name, argList)
}

// crossTarget reports whether the function body lives on the other side of
// the client/server split, making its call sites remote invocations.
func (e *emitter) crossTarget(fn *ast.FunctionDecl) bool {
	if fn == nil {
		return false
	}
	if e.target == TargetClient {
		return fn.HasAnnotation(sema.AnnotServer)
	}
	return fn.HasAnnotation(sema.AnnotClient)
}

func (e *emitter) closure(x *ast.Closure) string {
	names := make([]string, len(x.Params))
	for i, p := range x.Params {
		names[i] = p.Name
	}
	params := "(" + strings.Join(names, ", ") + ")"
	if blk, ok := x.Body.(*ast.BlockExpr); ok {
		return fmt.Sprintf("%s => {\n%s%s}", params, e.capture(func() {
			e.indent++
			e.blockValue(blk.Block)
			e.indent--
		}), strings.Repeat("  ", e.indent))
	}
	return fmt.Sprintf("%s => %s", params, e.expr(x.Body))
}

// blockValue emits a block whose trailing expression statement is its value.
func (e *emitter) blockValue(b *ast.Block) {
	n := len(b.Stmts)
	for i, s := range b.Stmts {
		if i == n-1 {
			if es, ok := s.(*ast.ExprStmt); ok && !isMarkupNode(es.X) {
				e.linef("return %s;", e.expr(es.X))
				return
			}
		}
		e.stmt(s, "")
	}
}

// capture runs fn against a scratch builder and returns what it wrote.
func (e *emitter) capture(fn func()) string {
	saved := e.b
	e.b = strings.Builder{}
	fn()
	out := e.b.String()
	e.b = saved
	return out
}

func jsOp(k token.Kind) string {
	switch k {
	case token.Eq:
		return "==="
	case token.NotEq:
		return "!=="
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
	case token.AndAnd:
		return "&&"
	case token.OrOr:
		return "||"
	case token.Bang:
		return "!"
	}
	return "?"
}

func isMarkupNode(x ast.Expr) bool {
	switch x.(type) {
	case *ast.MarkupElement, *ast.MarkupFragment:
		return true
	}
	return false
}
