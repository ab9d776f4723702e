// # internal/parser/style.go
package parser

import (
	"strings"

	"jounce/internal/ast"
	"jounce/internal/diag"
	"jounce/internal/token"
)

// styleStmt parses `style <name> { ... }`. The lexer hands the body over as a
// single raw token; the body grammar is CSS declarations plus one level of
// nested rules (`&:hover { ... }`, `&.active { ... }`).
func (p *parser) styleStmt() ast.Stmt {
	kw := p.next() // style
	name, ok := p.expect(token.Ident)
	if !ok {
		p.syncStmt()
		return nil
	}
	if _, ok := p.expect(token.LBrace); !ok {
		p.syncStmt()
		return nil
	}
	body, ok := p.expect(token.StyleBody)
	if !ok {
		p.syncStmt()
		return nil
	}
	closing, ok := p.expect(token.RBrace)
	if !ok {
		p.syncStmt()
		return nil
	}

	s := &ast.StyleStmt{Name: name.Lexeme, Sp: kw.Span.Merge(closing.Span)}
	s.Props, s.Nested = p.styleBody(body)

	if len(s.Props) == 0 && len(s.Nested) == 0 {
		p.diags = append(p.diags, diag.Warnf(diag.CodeEmptyStyleBlock, s.Sp,
			"style block `%s` is empty", s.Name))
	}
	return s
}

// styleBody splits a raw style body into top-level property declarations and
// nested rules. Malformed pieces produce one diagnostic each and are skipped.
func (p *parser) styleBody(body token.Token) ([]ast.StyleProp, []ast.StyleRule) {
	var props []ast.StyleProp
	var nested []ast.StyleRule

	raw := body.Lexeme
	pos := 0
	for pos < len(raw) {
		// Next interesting boundary: ';' ends a declaration, '{' opens a
		// nested rule.
		semi := indexFrom(raw, pos, ';')
		brace := indexFrom(raw, pos, '{')

		if brace >= 0 && (semi < 0 || brace < semi) {
			selector := strings.TrimSpace(raw[pos:brace])
			end := matchBrace(raw, brace)
			if end < 0 {
				p.diags = append(p.diags, diag.Errorf(diag.CodeUnterminatedToken, body.Span,
					"unterminated nested rule in style block"))
				return props, nested
			}
			rule := ast.StyleRule{Selector: selector}
			for _, decl := range strings.Split(raw[brace+1:end], ";") {
				if prop, ok := p.styleProp(decl, body.Span); ok {
					rule.Props = append(rule.Props, prop)
				}
			}
			nested = append(nested, rule)
			pos = end + 1
			continue
		}

		if semi < 0 {
			if prop, ok := p.styleProp(raw[pos:], body.Span); ok {
				props = append(props, prop)
			}
			break
		}
		if prop, ok := p.styleProp(raw[pos:semi], body.Span); ok {
			props = append(props, prop)
		}
		pos = semi + 1
	}
	return props, nested
}

func (p *parser) styleProp(decl string, span token.Span) (ast.StyleProp, bool) {
	decl = strings.TrimSpace(decl)
	if decl == "" {
		return ast.StyleProp{}, false
	}
	name, value, found := strings.Cut(decl, ":")
	if !found || strings.TrimSpace(name) == "" || strings.TrimSpace(value) == "" {
		p.diags = append(p.diags, diag.Errorf(diag.CodeSyntax, span,
			"malformed style declaration `%s`", decl))
		return ast.StyleProp{}, false
	}
	return ast.StyleProp{
		Property: strings.TrimSpace(name),
		Value:    strings.TrimSpace(value),
	}, true
}

func indexFrom(s string, from int, c byte) int {
	idx := strings.IndexByte(s[from:], c)
	if idx < 0 {
		return -1
	}
	return from + idx
}

// matchBrace returns the index of the '}' matching the '{' at open.
func matchBrace(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
