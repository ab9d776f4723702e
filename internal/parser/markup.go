// # internal/parser/markup.go
package parser

import (
	"jounce/internal/ast"
	"jounce/internal/diag"
	"jounce/internal/token"
)

// markupElement parses <tag attr=value ...>children</tag> or <tag ... />.
// The caller sits on the opening '<'. Mismatched closing tags are reported at
// the closing tag with the opening tag's span attached for context.
func (p *parser) markupElement() ast.Expr {
	open := p.next() // '<'
	tag, ok := p.expect(token.Ident)
	if !ok {
		p.recoverMarkup()
		return nil
	}
	el := &ast.MarkupElement{Tag: tag.Lexeme}

	// Attributes.
	for p.at(token.Ident) {
		name := p.next()
		attr := ast.MarkupAttr{Name: name.Lexeme, Sp: name.Span}
		if _, ok := p.accept(token.Assign); ok {
			switch p.peek().Kind {
			case token.String:
				v := p.next()
				attr.Value = &ast.StringLit{Value: v.Lexeme, Sp: v.Span}
				attr.Quoted = true
				attr.Sp = name.Span.Merge(v.Span)
			case token.LBrace:
				p.next()
				x := p.expr()
				if x == nil {
					p.recoverMarkup()
					return el
				}
				closing, ok := p.expect(token.RBrace)
				if !ok {
					p.recoverMarkup()
					return el
				}
				attr.Value = x
				attr.Sp = name.Span.Merge(closing.Span)
			default:
				p.diags = append(p.diags, diag.Errorf(diag.CodeMalformedMarkup, p.peek().Span,
					"expected attribute value, found %s", describe(p.peek())))
				p.recoverMarkup()
				return el
			}
		} else {
			// Bare attribute is shorthand for ={true}.
			attr.Value = &ast.BoolLit{Value: true, Sp: name.Span}
			attr.Quoted = true
		}
		el.Attrs = append(el.Attrs, attr)
	}

	if closeTok, ok := p.accept(token.MarkupSelfClose); ok {
		el.SelfClosed = true
		el.Sp = open.Span.Merge(closeTok.Span)
		return el
	}
	if _, ok := p.expect(token.Greater); !ok {
		p.recoverMarkup()
		return el
	}

	// Children until the matching closing tag.
	for {
		switch p.peek().Kind {
		case token.MarkupText:
			t := p.next()
			el.Children = append(el.Children, &ast.MarkupText{Text: t.Lexeme, Sp: t.Span})
		case token.Less:
			child := p.markupElement()
			if child == nil {
				p.recoverMarkup()
				return el
			}
			el.Children = append(el.Children, child)
		case token.LBrace:
			p.next()
			x := p.expr()
			if x == nil {
				p.recoverMarkup()
				return el
			}
			if _, ok := p.expect(token.RBrace); !ok {
				p.recoverMarkup()
				return el
			}
			el.Children = append(el.Children, x)
		case token.MarkupCloseOpen:
			p.next()
			closeName, ok := p.expect(token.Ident)
			if !ok {
				p.recoverMarkup()
				return el
			}
			closeGt, gtOK := p.expect(token.Greater)
			if closeName.Lexeme != el.Tag {
				p.diags = append(p.diags, diag.Errorf(diag.CodeMismatchedTags, closeName.Span,
					"mismatched closing tag: expected `</%s>`, found `</%s>`", el.Tag, closeName.Lexeme).
					WithRelated(open.Span.Merge(tag.Span)).
					WithFix(closeName.Span, el.Tag))
			}
			if gtOK {
				el.Sp = open.Span.Merge(closeGt.Span)
			} else {
				el.Sp = open.Span.Merge(closeName.Span)
			}
			return el
		case token.EOF:
			p.diags = append(p.diags, diag.Errorf(diag.CodeUnclosedElement, open.Span.Merge(tag.Span),
				"unclosed element `<%s>`", el.Tag))
			el.Sp = open.Span.Merge(p.peek().Span)
			return el
		default:
			p.diags = append(p.diags, diag.Errorf(diag.CodeMalformedMarkup, p.peek().Span,
				"unexpected %s inside `<%s>`", describe(p.peek()), el.Tag))
			p.next()
		}
	}
}

// recoverMarkup skips tokens until something that can resume parsing after a
// broken markup tree: a closing-tag sequence end, a statement boundary, or a
// declaration keyword.
func (p *parser) recoverMarkup() {
	for !p.at(token.EOF) {
		switch p.peek().Kind {
		case token.Semicolon, token.RBrace, token.KwFn, token.KwComponent,
			token.KwStruct, token.KwEnum, token.KwLet, token.KwReturn:
			return
		}
		p.next()
	}
}
