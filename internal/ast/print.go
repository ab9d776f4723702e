// # internal/ast/print.go
package ast

import (
	"fmt"
	"strconv"
	"strings"

	"jounce/internal/token"
)

// Print renders the module back to canonical Jounce source. Re-parsing the
// output of Print yields a tree equal to the input modulo spans, which is the
// round-trip property the formatter and tests rely on.
func Print(m *Module) string {
	p := &printer{}
	for i, d := range m.Decls {
		if i > 0 {
			p.nl()
		}
		p.decl(d)
	}
	return p.b.String()
}

type printer struct {
	b      strings.Builder
	indent int
}

func (p *printer) w(s string)               { p.b.WriteString(s) }
func (p *printer) f(f string, args ...any)  { fmt.Fprintf(&p.b, f, args...) }
func (p *printer) nl()                      { p.b.WriteByte('\n') }
func (p *printer) pad()                     { p.w(strings.Repeat("    ", p.indent)) }

func (p *printer) decl(d Decl) {
	switch d := d.(type) {
	case *FunctionDecl:
		for _, a := range d.Annotations {
			p.f("@%s\n", a.Name)
		}
		p.f("fn %s(", d.Name)
		p.params(d.Params)
		p.w(")")
		if d.ReturnType != nil {
			p.w(" -> ")
			p.typeExpr(d.ReturnType)
		}
		p.w(" ")
		p.block(d.Body)
		p.nl()
	case *ComponentDecl:
		for _, a := range d.Annotations {
			p.f("@%s\n", a.Name)
		}
		p.f("component %s(", d.Name)
		p.params(d.Params)
		p.w(") ")
		p.block(d.Body)
		p.nl()
	case *StructDecl:
		p.f("struct %s {\n", d.Name)
		p.indent++
		for _, f := range d.Fields {
			p.pad()
			p.f("%s: ", f.Name)
			p.typeExpr(f.Type)
			p.w(",\n")
		}
		p.indent--
		p.w("}\n")
	case *EnumDecl:
		p.f("enum %s {\n", d.Name)
		p.indent++
		for _, v := range d.Variants {
			p.pad()
			p.w(v.Name)
			if len(v.Fields) > 0 {
				p.w("(")
				for i, f := range v.Fields {
					if i > 0 {
						p.w(", ")
					}
					p.typeExpr(f)
				}
				p.w(")")
			}
			p.w(",\n")
		}
		p.indent--
		p.w("}\n")
	}
}

func (p *printer) params(params []Param) {
	for i, prm := range params {
		if i > 0 {
			p.w(", ")
		}
		p.w(prm.Name)
		if prm.Type != nil {
			p.w(": ")
			p.typeExpr(prm.Type)
		}
	}
}

func (p *printer) typeExpr(t TypeExpr) {
	switch t := t.(type) {
	case *NamedType:
		p.w(t.Name)
		if len(t.Args) > 0 {
			p.w("<")
			for i, a := range t.Args {
				if i > 0 {
					p.w(", ")
				}
				p.typeExpr(a)
			}
			p.w(">")
		}
	case *FunctionType:
		p.w("fn(")
		for i, a := range t.Params {
			if i > 0 {
				p.w(", ")
			}
			p.typeExpr(a)
		}
		p.w(")")
		if t.Return != nil {
			p.w(" -> ")
			p.typeExpr(t.Return)
		}
	}
}

func (p *printer) block(b *Block) {
	p.w("{\n")
	p.indent++
	for _, s := range b.Stmts {
		p.pad()
		p.stmt(s)
		p.nl()
	}
	p.indent--
	p.pad()
	p.w("}")
}

func (p *printer) stmt(s Stmt) {
	switch s := s.(type) {
	case *LetStmt:
		p.w("let ")
		if s.Mutable {
			p.w("mut ")
		}
		p.w(s.Name)
		if s.Type != nil {
			p.w(": ")
			p.typeExpr(s.Type)
		}
		p.w(" = ")
		p.expr(s.Value)
		p.w(";")
	case *AssignStmt:
		p.expr(s.Target)
		p.w(" = ")
		p.expr(s.Value)
		p.w(";")
	case *ReturnStmt:
		p.w("return")
		if s.Value != nil {
			p.w(" ")
			p.expr(s.Value)
		}
		p.w(";")
	case *IfStmt:
		p.w("if ")
		p.expr(s.Cond)
		p.w(" ")
		p.block(s.Then)
		if s.Else != nil {
			p.w(" else ")
			switch e := s.Else.(type) {
			case *Block:
				p.block(e)
			case *IfStmt:
				p.stmt(e)
			}
		}
	case *MatchStmt:
		p.w("match ")
		p.expr(s.Subject)
		p.w(" {\n")
		p.indent++
		for _, arm := range s.Arms {
			p.pad()
			p.pattern(arm.Pattern)
			p.w(" => ")
			p.expr(arm.Body)
			p.w(",\n")
		}
		p.indent--
		p.pad()
		p.w("}")
	case *ExprStmt:
		p.expr(s.X)
		if !isMarkup(s.X) {
			p.w(";")
		}
	case *StyleStmt:
		p.f("style %s {\n", s.Name)
		p.indent++
		for _, prop := range s.Props {
			p.pad()
			p.f("%s: %s;\n", prop.Property, prop.Value)
		}
		for _, rule := range s.Nested {
			p.pad()
			p.f("%s {\n", rule.Selector)
			p.indent++
			for _, prop := range rule.Props {
				p.pad()
				p.f("%s: %s;\n", prop.Property, prop.Value)
			}
			p.indent--
			p.pad()
			p.w("}\n")
		}
		p.indent--
		p.pad()
		p.w("}")
	case *Block:
		p.block(s)
	}
}

func (p *printer) pattern(pat Pattern) {
	switch pat := pat.(type) {
	case *WildcardPattern:
		p.w("_")
	case *BindingPattern:
		p.w(pat.Name)
	case *LiteralPattern:
		p.expr(pat.Value)
	case *VariantPattern:
		p.f("%s::%s", pat.Enum, pat.Variant)
		if len(pat.Binds) > 0 {
			p.w("(")
			for i, b := range pat.Binds {
				if i > 0 {
					p.w(", ")
				}
				p.pattern(b)
			}
			p.w(")")
		}
	}
}

func (p *printer) expr(e Expr) {
	switch e := e.(type) {
	case *IntLit:
		p.w(strconv.FormatInt(e.Value, 10))
	case *FloatLit:
		p.w(e.Text)
	case *StringLit:
		p.w(strconv.Quote(e.Value))
	case *BoolLit:
		if e.Value {
			p.w("true")
		} else {
			p.w("false")
		}
	case *Identifier:
		p.w(e.Name)
	case *BinaryExpr:
		p.w("(")
		p.expr(e.Left)
		p.f(" %s ", opText(e.Op))
		p.expr(e.Right)
		p.w(")")
	case *UnaryExpr:
		p.w(opText(e.Op))
		p.expr(e.X)
	case *CallExpr:
		p.expr(e.Callee)
		p.w("(")
		for i, a := range e.Args {
			if i > 0 {
				p.w(", ")
			}
			p.expr(a)
		}
		p.w(")")
	case *FieldAccess:
		p.expr(e.X)
		p.f(".%s", e.Field)
	case *Closure:
		p.w("(")
		p.params(e.Params)
		p.w(") => ")
		p.expr(e.Body)
	case *StructLit:
		p.f("%s { ", e.Name)
		for i, fld := range e.Fields {
			if i > 0 {
				p.w(", ")
			}
			p.f("%s: ", fld.Name)
			p.expr(fld.Value)
		}
		p.w(" }")
	case *BlockExpr:
		p.block(e.Block)
	case *MarkupElement:
		p.markup(e)
	case *MarkupFragment:
		for _, c := range e.Children {
			p.expr(c)
		}
	case *MarkupText:
		p.w(e.Text)
	}
}

func (p *printer) markup(e *MarkupElement) {
	p.f("<%s", e.Tag)
	for _, a := range e.Attrs {
		p.f(" %s", a.Name)
		if lit, ok := a.Value.(*BoolLit); ok && lit.Value && a.Quoted {
			continue // bare boolean attribute
		}
		if lit, ok := a.Value.(*StringLit); ok && a.Quoted {
			p.f("=%s", strconv.Quote(lit.Value))
			continue
		}
		p.w("={")
		p.expr(a.Value)
		p.w("}")
	}
	if e.SelfClosed {
		p.w(" />")
		return
	}
	p.w(">")
	for _, c := range e.Children {
		switch c := c.(type) {
		case *MarkupElement, *MarkupText:
			p.expr(c)
		default:
			p.w("{")
			p.expr(c)
			p.w("}")
		}
	}
	p.f("</%s>", e.Tag)
}

func isMarkup(e Expr) bool {
	switch e.(type) {
	case *MarkupElement, *MarkupFragment:
		return true
	}
	return false
}

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
	case token.Eq:
		return "=="
	case token.NotEq:
		return "!="
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
