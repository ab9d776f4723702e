// # internal/parser/parser.go
//
// Recursive-descent parser with one token of lookahead and precedence
// climbing for expressions. Recovery is local: on an unexpected token the
// parser emits one diagnostic and skips to the next statement boundary, so a
// single mistake costs a single diagnostic rather than a cascade.
package parser

import (
	"strconv"
	"strings"

	"jounce/internal/ast"
	"jounce/internal/diag"
	"jounce/internal/token"
)

// Parse builds a module from tokens. The token slice must be terminated by an
// EOF token, which lexer.Lex guarantees. Parse always returns a module; parse
// errors are reported through the diagnostic list and the affected
// declarations are dropped or truncated.
func Parse(toks []token.Token) (*ast.Module, []diag.Diagnostic) {
	p := &parser{toks: toks}
	m := p.module()
	return m, p.diags
}

type parser struct {
	toks  []token.Token
	i     int
	diags []diag.Diagnostic
}

func (p *parser) peek() token.Token {
	if p.i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.i]
}

func (p *parser) peekAt(n int) token.Token {
	if p.i+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.i+n]
}

func (p *parser) next() token.Token {
	t := p.peek()
	if p.i < len(p.toks)-1 {
		p.i++
	} else if p.i == len(p.toks)-1 && t.Kind != token.EOF {
		p.i++
	}
	return t
}

func (p *parser) at(k token.Kind) bool { return p.peek().Kind == k }

func (p *parser) accept(k token.Kind) (token.Token, bool) {
	if p.at(k) {
		return p.next(), true
	}
	return token.Token{}, false
}

// expect consumes a token of kind k or reports a syntax error. The bool
// result tells the caller whether to bail into recovery.
func (p *parser) expect(k token.Kind) (token.Token, bool) {
	if p.at(k) {
		return p.next(), true
	}
	got := p.peek()
	p.errorf(got.Span, "expected %s, found %s", k, describe(got))
	return got, false
}

func (p *parser) errorf(span token.Span, format string, args ...any) {
	p.diags = append(p.diags, diag.Errorf(diag.CodeSyntax, span, format, args...))
}

func describe(t token.Token) string {
	switch t.Kind {
	case token.Ident, token.Int, token.Float:
		return "`" + t.Lexeme + "`"
	case token.String:
		return "string literal"
	default:
		return t.Kind.String()
	}
}

// syncStmt skips to the next statement boundary: past a semicolon, or up to a
// closing brace or a token that can begin a new statement or declaration.
func (p *parser) syncStmt() {
	for !p.at(token.EOF) {
		switch p.peek().Kind {
		case token.Semicolon:
			p.next()
			return
		case token.RBrace, token.KwLet, token.KwReturn, token.KwIf, token.KwMatch,
			token.KwStyle, token.KwFn, token.KwComponent, token.KwStruct, token.KwEnum:
			return
		}
		p.next()
	}
}

// syncDecl skips to the next token that can begin a top-level declaration.
func (p *parser) syncDecl() {
	for !p.at(token.EOF) {
		switch p.peek().Kind {
		case token.KwFn, token.KwComponent, token.KwStruct, token.KwEnum, token.At:
			return
		}
		p.next()
	}
}

// ───────────────────────────── declarations ──────────────────────────────────

func (p *parser) module() *ast.Module {
	start := p.peek().Span
	m := &ast.Module{}
	for !p.at(token.EOF) {
		before := p.i
		annots := p.annotations()
		switch p.peek().Kind {
		case token.KwFn:
			if d := p.functionDecl(annots); d != nil {
				m.Decls = append(m.Decls, d)
			}
		case token.KwComponent:
			if d := p.componentDecl(annots); d != nil {
				m.Decls = append(m.Decls, d)
			}
		case token.KwStruct:
			if d := p.structDecl(); d != nil {
				m.Decls = append(m.Decls, d)
			}
		case token.KwEnum:
			if d := p.enumDecl(); d != nil {
				m.Decls = append(m.Decls, d)
			}
		default:
			p.errorf(p.peek().Span, "expected declaration, found %s", describe(p.peek()))
			p.next()
			p.syncDecl()
		}
		if p.i == before {
			p.next()
		}
	}
	m.Sp = start.Merge(p.peek().Span)
	return m
}

// annotations parses a prefix list of @name markers. They belong to the
// declaration that follows, not to the module.
func (p *parser) annotations() []ast.Annotation {
	var out []ast.Annotation
	for p.at(token.At) {
		atTok := p.next()
		name, ok := p.expect(token.Ident)
		if !ok {
			p.syncDecl()
			return out
		}
		out = append(out, ast.Annotation{Name: name.Lexeme, Sp: atTok.Span.Merge(name.Span)})
	}
	return out
}

func (p *parser) functionDecl(annots []ast.Annotation) *ast.FunctionDecl {
	kw := p.next() // fn
	name, ok := p.expect(token.Ident)
	if !ok {
		p.syncDecl()
		return nil
	}
	params, ok := p.paramList()
	if !ok {
		p.syncDecl()
		return nil
	}
	var ret ast.TypeExpr
	if _, arrow := p.accept(token.Arrow); arrow {
		ret = p.typeExpr()
	}
	body := p.block()
	if body == nil {
		p.syncDecl()
		return nil
	}
	return &ast.FunctionDecl{
		Name:        name.Lexeme,
		Annotations: annots,
		Params:      params,
		ReturnType:  ret,
		Body:        body,
		Sp:          kw.Span.Merge(body.Sp),
	}
}

func (p *parser) componentDecl(annots []ast.Annotation) *ast.ComponentDecl {
	kw := p.next() // component
	name, ok := p.expect(token.Ident)
	if !ok {
		p.syncDecl()
		return nil
	}
	params, ok := p.paramList()
	if !ok {
		p.syncDecl()
		return nil
	}
	body := p.block()
	if body == nil {
		p.syncDecl()
		return nil
	}
	return &ast.ComponentDecl{
		Name:        name.Lexeme,
		Annotations: annots,
		Params:      params,
		Body:        body,
		Sp:          kw.Span.Merge(body.Sp),
	}
}

func (p *parser) paramList() ([]ast.Param, bool) {
	if _, ok := p.expect(token.LParen); !ok {
		return nil, false
	}
	var params []ast.Param
	for !p.at(token.RParen) && !p.at(token.EOF) {
		name, ok := p.expect(token.Ident)
		if !ok {
			return params, false
		}
		prm := ast.Param{Name: name.Lexeme, Sp: name.Span}
		if _, ok := p.accept(token.Colon); ok {
			prm.Type = p.typeExpr()
		}
		params = append(params, prm)
		if _, ok := p.accept(token.Comma); !ok {
			break
		}
	}
	_, ok := p.expect(token.RParen)
	return params, ok
}

func (p *parser) structDecl() *ast.StructDecl {
	kw := p.next() // struct
	name, ok := p.expect(token.Ident)
	if !ok {
		p.syncDecl()
		return nil
	}
	if _, ok := p.expect(token.LBrace); !ok {
		p.syncDecl()
		return nil
	}
	var fields []ast.Param
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		fname, ok := p.expect(token.Ident)
		if !ok {
			p.syncDecl()
			return nil
		}
		if _, ok := p.expect(token.Colon); !ok {
			p.syncDecl()
			return nil
		}
		fields = append(fields, ast.Param{Name: fname.Lexeme, Type: p.typeExpr(), Sp: fname.Span})
		if _, ok := p.accept(token.Comma); !ok {
			break
		}
	}
	closing, ok := p.expect(token.RBrace)
	if !ok {
		p.syncDecl()
		return nil
	}
	return &ast.StructDecl{Name: name.Lexeme, Fields: fields, Sp: kw.Span.Merge(closing.Span)}
}

func (p *parser) enumDecl() *ast.EnumDecl {
	kw := p.next() // enum
	name, ok := p.expect(token.Ident)
	if !ok {
		p.syncDecl()
		return nil
	}
	if _, ok := p.expect(token.LBrace); !ok {
		p.syncDecl()
		return nil
	}
	var variants []ast.EnumVariant
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		vname, ok := p.expect(token.Ident)
		if !ok {
			p.syncDecl()
			return nil
		}
		v := ast.EnumVariant{Name: vname.Lexeme, Sp: vname.Span}
		if _, ok := p.accept(token.LParen); ok {
			for !p.at(token.RParen) && !p.at(token.EOF) {
				v.Fields = append(v.Fields, p.typeExpr())
				if _, ok := p.accept(token.Comma); !ok {
					break
				}
			}
			if _, ok := p.expect(token.RParen); !ok {
				p.syncDecl()
				return nil
			}
		}
		variants = append(variants, v)
		if _, ok := p.accept(token.Comma); !ok {
			break
		}
	}
	closing, ok := p.expect(token.RBrace)
	if !ok {
		p.syncDecl()
		return nil
	}
	return &ast.EnumDecl{Name: name.Lexeme, Variants: variants, Sp: kw.Span.Merge(closing.Span)}
}

func (p *parser) typeExpr() ast.TypeExpr {
	if p.at(token.KwFn) {
		kw := p.next()
		t := &ast.FunctionType{Sp: kw.Span}
		if _, ok := p.expect(token.LParen); ok {
			for !p.at(token.RParen) && !p.at(token.EOF) {
				t.Params = append(t.Params, p.typeExpr())
				if _, ok := p.accept(token.Comma); !ok {
					break
				}
			}
			p.expect(token.RParen)
		}
		if _, ok := p.accept(token.Arrow); ok {
			t.Return = p.typeExpr()
		}
		return t
	}
	name, ok := p.expect(token.Ident)
	if !ok {
		return &ast.NamedType{Name: "Unit", Sp: p.peek().Span}
	}
	t := &ast.NamedType{Name: name.Lexeme, Sp: name.Span}
	if p.at(token.Less) {
		p.next()
		for !p.at(token.Greater) && !p.at(token.EOF) {
			t.Args = append(t.Args, p.typeExpr())
			if _, ok := p.accept(token.Comma); !ok {
				break
			}
		}
		p.expect(token.Greater)
	}
	return t
}

// ─────────────────────────────── statements ──────────────────────────────────

func (p *parser) block() *ast.Block {
	open, ok := p.expect(token.LBrace)
	if !ok {
		return nil
	}
	b := &ast.Block{Sp: open.Span}
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		before := p.i
		if s := p.stmt(); s != nil {
			b.Stmts = append(b.Stmts, s)
		}
		if p.i == before {
			// No progress: drop the offending token so the loop terminates.
			p.next()
		}
	}
	closing, ok := p.expect(token.RBrace)
	if ok {
		b.Sp = open.Span.Merge(closing.Span)
	}
	return b
}

func (p *parser) stmt() ast.Stmt {
	switch p.peek().Kind {
	case token.KwLet:
		return p.letStmt()
	case token.KwReturn:
		return p.returnStmt()
	case token.KwIf:
		return p.ifStmt()
	case token.KwMatch:
		return p.matchStmt()
	case token.KwStyle:
		return p.styleStmt()
	}

	start := p.peek().Span
	x := p.expr()
	if x == nil {
		p.syncStmt()
		return nil
	}
	if _, ok := p.accept(token.Assign); ok {
		switch x.(type) {
		case *ast.Identifier, *ast.FieldAccess:
		default:
			p.diags = append(p.diags, diag.Errorf(diag.CodeInvalidAssignment, x.Span(),
				"invalid assignment target"))
		}
		val := p.expr()
		if val == nil {
			p.syncStmt()
			return nil
		}
		end := p.semicolon(val.Span())
		return &ast.AssignStmt{Target: x, Value: val, Sp: start.Merge(end)}
	}
	end := x.Span()
	if !isMarkupExpr(x) {
		end = p.semicolon(end)
	}
	return &ast.ExprStmt{X: x, Sp: start.Merge(end)}
}

func (p *parser) semicolon(end token.Span) token.Span {
	if t, ok := p.accept(token.Semicolon); ok {
		return t.Span
	}
	p.errorf(p.peek().Span, "expected ';', found %s", describe(p.peek()))
	p.syncStmt()
	return end
}

func (p *parser) letStmt() ast.Stmt {
	kw := p.next() // let
	_, mutable := p.accept(token.KwMut)
	name, ok := p.expect(token.Ident)
	if !ok {
		p.syncStmt()
		return nil
	}
	s := &ast.LetStmt{Name: name.Lexeme, Mutable: mutable, NameSp: name.Span}
	if _, ok := p.accept(token.Colon); ok {
		s.Type = p.typeExpr()
	}
	if _, ok := p.expect(token.Assign); !ok {
		p.syncStmt()
		return nil
	}
	s.Value = p.expr()
	if s.Value == nil {
		p.syncStmt()
		return nil
	}
	end := p.semicolon(s.Value.Span())
	s.Sp = kw.Span.Merge(end)
	return s
}

func (p *parser) returnStmt() ast.Stmt {
	kw := p.next() // return
	s := &ast.ReturnStmt{Sp: kw.Span}
	if !p.at(token.Semicolon) && !p.at(token.RBrace) {
		s.Value = p.expr()
		if s.Value == nil {
			p.syncStmt()
			return nil
		}
	}
	end := kw.Span
	if s.Value != nil {
		end = s.Value.Span()
	}
	s.Sp = kw.Span.Merge(p.semicolon(end))
	return s
}

func (p *parser) ifStmt() ast.Stmt {
	kw := p.next() // if
	cond := p.expr()
	if cond == nil {
		p.syncStmt()
		return nil
	}
	then := p.block()
	if then == nil {
		p.syncStmt()
		return nil
	}
	s := &ast.IfStmt{Cond: cond, Then: then, Sp: kw.Span.Merge(then.Sp)}
	if _, ok := p.accept(token.KwElse); ok {
		if p.at(token.KwIf) {
			s.Else = p.ifStmt()
		} else {
			s.Else = p.block()
		}
		if s.Else != nil {
			s.Sp = s.Sp.Merge(s.Else.Span())
		}
	}
	return s
}

func (p *parser) matchStmt() ast.Stmt {
	kw := p.next() // match
	subject := p.expr()
	if subject == nil {
		p.syncStmt()
		return nil
	}
	if _, ok := p.expect(token.LBrace); !ok {
		p.syncStmt()
		return nil
	}
	s := &ast.MatchStmt{Subject: subject, Sp: kw.Span}
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		pat := p.pattern()
		if pat == nil {
			p.syncStmt()
			return s
		}
		if _, ok := p.expect(token.FatArrow); !ok {
			p.syncStmt()
			return s
		}
		var body ast.Expr
		if p.at(token.LBrace) {
			blk := p.block()
			if blk == nil {
				p.syncStmt()
				return s
			}
			body = &ast.BlockExpr{Block: blk, Sp: blk.Sp}
		} else {
			body = p.expr()
			if body == nil {
				p.syncStmt()
				return s
			}
		}
		s.Arms = append(s.Arms, ast.MatchArm{Pattern: pat, Body: body, Sp: pat.Span().Merge(body.Span())})
		if _, ok := p.accept(token.Comma); !ok {
			break
		}
	}
	closing, ok := p.expect(token.RBrace)
	if !ok {
		p.syncStmt()
		return s
	}
	s.Sp = kw.Span.Merge(closing.Span)
	return s
}

func (p *parser) pattern() ast.Pattern {
	switch p.peek().Kind {
	case token.Underscore:
		t := p.next()
		return &ast.WildcardPattern{Sp: t.Span}
	case token.Int, token.Float, token.String, token.KwTrue, token.KwFalse:
		lit := p.primary()
		if lit == nil {
			return nil
		}
		return &ast.LiteralPattern{Value: lit, Sp: lit.Span()}
	case token.Ident:
		name := p.next()
		if _, ok := p.accept(token.DoubleColon); ok {
			variant, ok := p.expect(token.Ident)
			if !ok {
				return nil
			}
			vp := &ast.VariantPattern{Enum: name.Lexeme, Variant: variant.Lexeme, Sp: name.Span.Merge(variant.Span)}
			if _, ok := p.accept(token.LParen); ok {
				for !p.at(token.RParen) && !p.at(token.EOF) {
					b := p.pattern()
					if b == nil {
						return nil
					}
					vp.Binds = append(vp.Binds, b)
					if _, ok := p.accept(token.Comma); !ok {
						break
					}
				}
				closing, ok := p.expect(token.RParen)
				if !ok {
					return nil
				}
				vp.Sp = vp.Sp.Merge(closing.Span)
			}
			return vp
		}
		return &ast.BindingPattern{Name: name.Lexeme, Sp: name.Span}
	}
	p.errorf(p.peek().Span, "expected pattern, found %s", describe(p.peek()))
	return nil
}

// ─────────────────────────────── expressions ─────────────────────────────────

// Binding powers for infix operators, tightest first.
func infixPrec(k token.Kind) int {
	switch k {
	case token.Star, token.Slash, token.Percent:
		return 60
	case token.Plus, token.Minus:
		return 50
	case token.Less, token.LessEq, token.Greater, token.GreaterEq:
		return 40
	case token.Eq, token.NotEq:
		return 30
	case token.AndAnd:
		return 20
	case token.OrOr:
		return 10
	}
	return 0
}

func (p *parser) expr() ast.Expr { return p.binaryExpr(1) }

func (p *parser) binaryExpr(minPrec int) ast.Expr {
	left := p.unaryExpr()
	if left == nil {
		return nil
	}
	for {
		prec := infixPrec(p.peek().Kind)
		if prec < minPrec {
			return left
		}
		op := p.next()
		right := p.binaryExpr(prec + 1)
		if right == nil {
			return left
		}
		left = &ast.BinaryExpr{
			Op: op.Kind, Left: left, Right: right,
			Sp: left.Span().Merge(right.Span()),
		}
	}
}

func (p *parser) unaryExpr() ast.Expr {
	if p.at(token.Minus) || p.at(token.Bang) {
		op := p.next()
		x := p.unaryExpr()
		if x == nil {
			return nil
		}
		return &ast.UnaryExpr{Op: op.Kind, X: x, Sp: op.Span.Merge(x.Span())}
	}
	return p.postfixExpr()
}

func (p *parser) postfixExpr() ast.Expr {
	x := p.primary()
	if x == nil {
		return nil
	}
	for {
		switch p.peek().Kind {
		case token.LParen:
			p.next()
			call := &ast.CallExpr{Callee: x}
			for !p.at(token.RParen) && !p.at(token.EOF) {
				arg := p.expr()
				if arg == nil {
					return x
				}
				call.Args = append(call.Args, arg)
				if _, ok := p.accept(token.Comma); !ok {
					break
				}
			}
			closing, ok := p.expect(token.RParen)
			if !ok {
				return x
			}
			call.Sp = x.Span().Merge(closing.Span)
			x = call
		case token.Dot:
			p.next()
			field, ok := p.expect(token.Ident)
			if !ok {
				return x
			}
			x = &ast.FieldAccess{X: x, Field: field.Lexeme, Sp: x.Span().Merge(field.Span)}
		default:
			return x
		}
	}
}

func (p *parser) primary() ast.Expr {
	t := p.peek()
	switch t.Kind {
	case token.Int:
		p.next()
		v, err := strconv.ParseInt(strings.ReplaceAll(t.Lexeme, "_", ""), 10, 64)
		if err != nil {
			p.errorf(t.Span, "integer literal out of range")
			v = 0
		}
		return &ast.IntLit{Value: v, Sp: t.Span}
	case token.Float:
		p.next()
		return &ast.FloatLit{Text: strings.ReplaceAll(t.Lexeme, "_", ""), Sp: t.Span}
	case token.String:
		p.next()
		return &ast.StringLit{Value: t.Lexeme, Sp: t.Span}
	case token.KwTrue:
		p.next()
		return &ast.BoolLit{Value: true, Sp: t.Span}
	case token.KwFalse:
		p.next()
		return &ast.BoolLit{Value: false, Sp: t.Span}
	case token.Ident:
		p.next()
		// `Name { field: ... }` is a struct literal; the field colon is what
		// distinguishes it from an identifier followed by a block.
		if p.at(token.LBrace) && p.peekAt(1).Kind == token.Ident && p.peekAt(2).Kind == token.Colon {
			return p.structLit(t)
		}
		if p.at(token.DoubleColon) {
			p.next()
			variant, ok := p.expect(token.Ident)
			if !ok {
				return nil
			}
			return &ast.Identifier{Name: t.Lexeme + "::" + variant.Lexeme, Sp: t.Span.Merge(variant.Span)}
		}
		return &ast.Identifier{Name: t.Lexeme, Sp: t.Span}
	case token.LParen:
		if p.closureAhead() {
			return p.closure()
		}
		p.next()
		x := p.expr()
		if x == nil {
			return nil
		}
		p.expect(token.RParen)
		return x
	case token.LBrace:
		blk := p.block()
		if blk == nil {
			return nil
		}
		return &ast.BlockExpr{Block: blk, Sp: blk.Sp}
	case token.Less:
		return p.markupElement()
	}
	p.errorf(t.Span, "expected expression, found %s", describe(t))
	return nil
}

func (p *parser) structLit(name token.Token) ast.Expr {
	p.next() // '{'
	lit := &ast.StructLit{Name: name.Lexeme}
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		fname, ok := p.expect(token.Ident)
		if !ok {
			p.syncStmt()
			return lit
		}
		if _, ok := p.expect(token.Colon); !ok {
			p.syncStmt()
			return lit
		}
		val := p.expr()
		if val == nil {
			p.syncStmt()
			return lit
		}
		lit.Fields = append(lit.Fields, ast.StructLitField{
			Name: fname.Lexeme, Value: val, Sp: fname.Span.Merge(val.Span()),
		})
		if _, ok := p.accept(token.Comma); !ok {
			break
		}
	}
	closing, ok := p.expect(token.RBrace)
	if !ok {
		lit.Sp = name.Span
		return lit
	}
	lit.Sp = name.Span.Merge(closing.Span)
	return lit
}

// closureAhead peeks past a balanced parenthesis group for a fat arrow; that
// is what distinguishes `(a, b) => ...` from a parenthesized expression.
func (p *parser) closureAhead() bool {
	depth := 0
	for n := 0; ; n++ {
		t := p.peekAt(n)
		switch t.Kind {
		case token.LParen:
			depth++
		case token.RParen:
			depth--
			if depth == 0 {
				return p.peekAt(n + 1).Kind == token.FatArrow
			}
		case token.EOF:
			return false
		}
	}
}

func (p *parser) closure() ast.Expr {
	open := p.peek()
	params, ok := p.paramList()
	if !ok {
		return nil
	}
	if _, ok := p.expect(token.FatArrow); !ok {
		return nil
	}
	var body ast.Expr
	if p.at(token.LBrace) {
		blk := p.block()
		if blk == nil {
			return nil
		}
		body = &ast.BlockExpr{Block: blk, Sp: blk.Sp}
	} else {
		body = p.expr()
		if body == nil {
			return nil
		}
	}
	return &ast.Closure{Params: params, Body: body, Sp: open.Span.Merge(body.Span())}
}

func isMarkupExpr(e ast.Expr) bool {
	switch e.(type) {
	case *ast.MarkupElement, *ast.MarkupFragment:
		return true
	}
	return false
}
