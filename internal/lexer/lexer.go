// # internal/lexer/lexer.go
package lexer

import (
	"strings"

	"jounce/internal/diag"
	"jounce/internal/token"
)

// mode tracks which sub-grammar the lexer is currently inside. Markup tags,
// markup children and embedded expressions each tokenize differently, so the
// lexer keeps a mode stack that mirrors the nesting of the source.
type mode int

const (
	modeCode     mode = iota // ordinary statements and expressions
	modeTag                  // inside <name ... > or </name ... >
	modeChildren             // between an opening tag and its closing tag
	modeExpr                 // inside a {...} embedded in markup
)

type frame struct {
	mode       mode
	braceDepth int // for modeExpr: nested braces opened inside the expression
}

// Lexer scans Jounce source into tokens. Re-lexing the same text always
// produces the same stream; the lexer has no external state.
type Lexer struct {
	src   string
	pos   int
	line  int
	col   int
	stack []frame

	tokens []token.Token
	diags  []diag.Diagnostic
}

// Lex tokenizes src. It always returns the full token stream (terminated by
// an EOF token); lexical problems are reported as diagnostics and scanning
// continues so one bad token does not hide the rest of the file.
func Lex(src string) ([]token.Token, []diag.Diagnostic) {
	l := &Lexer{src: src, line: 1, col: 1, stack: []frame{{mode: modeCode}}}
	l.run()
	return l.tokens, l.diags
}

func (l *Lexer) run() {
	for l.pos < len(l.src) {
		switch l.top().mode {
		case modeChildren:
			l.scanChildren()
		case modeTag:
			l.scanTag()
		default:
			l.scanCode()
		}
	}
	l.emit(token.EOF, l.span(l.pos, l.pos), "")
}

func (l *Lexer) top() *frame { return &l.stack[len(l.stack)-1] }

func (l *Lexer) push(m mode) { l.stack = append(l.stack, frame{mode: m}) }

func (l *Lexer) pop() {
	if len(l.stack) > 1 {
		l.stack = l.stack[:len(l.stack)-1]
	}
}

// ───────────────────────────── code / expression mode ─────────────────────────

func (l *Lexer) scanCode() {
	l.skipSpaceAndComments()
	if l.pos >= len(l.src) {
		return
	}

	start, startLine, startCol := l.pos, l.line, l.col
	c := l.src[l.pos]

	switch {
	case isIdentStart(c):
		l.scanIdent()
		return
	case c >= '0' && c <= '9':
		l.scanNumber()
		return
	case c == '"':
		l.scanString()
		return
	}

	mk := func(k token.Kind, n int) {
		l.advance(n)
		l.emit(k, token.Span{Start: start, End: l.pos, Line: startLine, Col: startCol}, l.src[start:l.pos])
	}

	switch c {
	case '(':
		mk(token.LParen, 1)
	case ')':
		mk(token.RParen, 1)
	case '[':
		mk(token.LBracket, 1)
	case ']':
		mk(token.RBracket, 1)
	case '{':
		if l.top().mode == modeExpr {
			l.top().braceDepth++
		}
		mk(token.LBrace, 1)
		l.maybeStyleBody()
	case '}':
		if f := l.top(); f.mode == modeExpr {
			if f.braceDepth == 0 {
				mk(token.RBrace, 1)
				l.pop() // back into the surrounding markup
				return
			}
			f.braceDepth--
		}
		mk(token.RBrace, 1)
	case ',':
		mk(token.Comma, 1)
	case '.':
		mk(token.Dot, 1)
	case ';':
		mk(token.Semicolon, 1)
	case '@':
		mk(token.At, 1)
	case ':':
		if l.peekAt(1) == ':' {
			mk(token.DoubleColon, 2)
		} else {
			mk(token.Colon, 1)
		}
	case '+':
		mk(token.Plus, 1)
	case '-':
		if l.peekAt(1) == '>' {
			mk(token.Arrow, 2)
		} else {
			mk(token.Minus, 1)
		}
	case '*':
		mk(token.Star, 1)
	case '/':
		mk(token.Slash, 1)
	case '%':
		mk(token.Percent, 1)
	case '=':
		switch l.peekAt(1) {
		case '=':
			mk(token.Eq, 2)
		case '>':
			mk(token.FatArrow, 2)
		default:
			mk(token.Assign, 1)
		}
	case '!':
		if l.peekAt(1) == '=' {
			mk(token.NotEq, 2)
		} else {
			mk(token.Bang, 1)
		}
	case '&':
		if l.peekAt(1) == '&' {
			mk(token.AndAnd, 2)
		} else {
			l.illegal(start, startLine, startCol, c)
		}
	case '|':
		if l.peekAt(1) == '|' {
			mk(token.OrOr, 2)
		} else {
			l.illegal(start, startLine, startCol, c)
		}
	case '<':
		if l.startsMarkup() {
			mk(token.Less, 1)
			l.push(modeTag)
		} else if l.peekAt(1) == '=' {
			mk(token.LessEq, 2)
		} else {
			mk(token.Less, 1)
		}
	case '>':
		if l.peekAt(1) == '=' {
			mk(token.GreaterEq, 2)
		} else {
			mk(token.Greater, 1)
		}
	default:
		l.illegal(start, startLine, startCol, c)
	}
}

// startsMarkup decides whether '<' opens a markup element rather than a
// comparison. Markup only appears in expression position, so the previous
// significant token must be one that an expression can follow, and the next
// character must begin a tag name.
func (l *Lexer) startsMarkup() bool {
	if l.pos+1 >= len(l.src) || !isIdentStart(l.src[l.pos+1]) {
		return false
	}
	if len(l.tokens) == 0 {
		return true
	}
	switch l.tokens[len(l.tokens)-1].Kind {
	case token.Assign, token.LParen, token.LBrace, token.RBrace, token.Comma, token.KwReturn,
		token.FatArrow, token.Arrow, token.Semicolon, token.KwElse, token.AndAnd, token.OrOr:
		return true
	}
	return false
}

// ─────────────────────────────── tag mode ────────────────────────────────────

func (l *Lexer) scanTag() {
	l.skipSpaceAndComments()
	if l.pos >= len(l.src) {
		return
	}

	start, startLine, startCol := l.pos, l.line, l.col
	c := l.src[l.pos]

	mk := func(k token.Kind, n int) {
		l.advance(n)
		l.emit(k, token.Span{Start: start, End: l.pos, Line: startLine, Col: startCol}, l.src[start:l.pos])
	}

	switch {
	case isIdentStart(c):
		l.scanIdent()
	case c == '"':
		l.scanString()
	case c == '=':
		mk(token.Assign, 1)
	case c == '{':
		mk(token.LBrace, 1)
		l.push(modeExpr)
	case c == '/':
		if l.peekAt(1) == '>' {
			mk(token.MarkupSelfClose, 2)
			l.pop() // tag done, element has no children
		} else {
			l.illegal(start, startLine, startCol, c)
		}
	case c == '>':
		mk(token.Greater, 1)
		// An opening tag's children follow; a closing tag ends the element.
		if l.closingTag() {
			l.pop() // the closing tag's own frame
			l.pop() // the children frame it terminates
		} else {
			l.top().mode = modeChildren
		}
	default:
		l.illegal(start, startLine, startCol, c)
	}
}

// closingTag reports whether the tag being lexed began with '</'.
func (l *Lexer) closingTag() bool {
	for i := len(l.tokens) - 1; i >= 0; i-- {
		switch l.tokens[i].Kind {
		case token.MarkupCloseOpen:
			return true
		case token.Less:
			return false
		}
	}
	return false
}

// ───────────────────────────── children mode ─────────────────────────────────

func (l *Lexer) scanChildren() {
	start, startLine, startCol := l.pos, l.line, l.col

	if strings.HasPrefix(l.src[l.pos:], "</") {
		l.advance(2)
		l.emit(token.MarkupCloseOpen, token.Span{Start: start, End: l.pos, Line: startLine, Col: startCol}, "</")
		l.push(modeTag)
		return
	}
	if c := l.src[l.pos]; c == '<' {
		l.advance(1)
		l.emit(token.Less, token.Span{Start: start, End: l.pos, Line: startLine, Col: startCol}, "<")
		l.push(modeTag)
		return
	} else if c == '{' {
		l.advance(1)
		l.emit(token.LBrace, token.Span{Start: start, End: l.pos, Line: startLine, Col: startCol}, "{")
		l.push(modeExpr)
		return
	}

	// Raw text up to the next tag or embedded expression.
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '<' || c == '{' {
			break
		}
		l.advance(1)
	}
	text := l.src[start:l.pos]
	if strings.TrimSpace(text) != "" {
		l.emit(token.MarkupText, token.Span{Start: start, End: l.pos, Line: startLine, Col: startCol}, text)
	}
}

// maybeStyleBody captures the raw body of `style <name> { ... }` as a single
// StyleBody token. Style bodies are CSS, not Jounce code; the style sub-parser
// takes them apart later. Nested rules are kept by balancing braces.
func (l *Lexer) maybeStyleBody() {
	n := len(l.tokens)
	if n < 3 || l.tokens[n-2].Kind != token.Ident || l.tokens[n-3].Kind != token.KwStyle {
		return
	}
	start, startLine, startCol := l.pos, l.line, l.col
	depth := 0
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '{' {
			depth++
		} else if c == '}' {
			if depth == 0 {
				break
			}
			depth--
		}
		l.advance(1)
	}
	body := l.src[start:l.pos]
	l.emit(token.StyleBody, token.Span{Start: start, End: l.pos, Line: startLine, Col: startCol}, body)
	if l.pos >= len(l.src) {
		span := token.Span{Start: start, End: start + 1, Line: startLine, Col: startCol}
		l.diags = append(l.diags, diag.Errorf(diag.CodeUnterminatedToken, span, "unterminated style block"))
	}
}

// ───────────────────────────── shared scanners ───────────────────────────────

func (l *Lexer) scanIdent() {
	start, startLine, startCol := l.pos, l.line, l.col
	for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
		l.advance(1)
	}
	text := l.src[start:l.pos]
	span := token.Span{Start: start, End: l.pos, Line: startLine, Col: startCol}
	if text == "_" {
		l.emit(token.Underscore, span, text)
		return
	}
	if kw, ok := token.Keywords[text]; ok {
		l.emit(kw, span, text)
		return
	}
	l.emit(token.Ident, span, text)
}

// scanNumber lexes integer and float literals. Underscores are legal digit
// separators and carry no meaning: 1_000_000 lexes as one Int token.
func (l *Lexer) scanNumber() {
	start, startLine, startCol := l.pos, l.line, l.col
	kind := token.Int
	digits := func() {
		for l.pos < len(l.src) && (isDigit(l.src[l.pos]) || l.src[l.pos] == '_') {
			l.advance(1)
		}
	}
	digits()
	if l.pos+1 < len(l.src) && l.src[l.pos] == '.' && isDigit(l.src[l.pos+1]) {
		kind = token.Float
		l.advance(1)
		digits()
	}
	l.emit(kind, token.Span{Start: start, End: l.pos, Line: startLine, Col: startCol}, l.src[start:l.pos])
}

// scanString lexes a double-quoted string with escapes. An unterminated
// string is reported at its opening quote and scanning resumes on the next
// line so later errors still surface.
func (l *Lexer) scanString() {
	start, startLine, startCol := l.pos, l.line, l.col
	l.advance(1) // opening quote
	var b strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '"' {
			l.advance(1)
			l.emit(token.String, token.Span{Start: start, End: l.pos, Line: startLine, Col: startCol}, b.String())
			return
		}
		if c == '\n' {
			break
		}
		if c == '\\' && l.pos+1 < len(l.src) {
			l.advance(1)
			switch l.src[l.pos] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '\\':
				b.WriteByte('\\')
			case '"':
				b.WriteByte('"')
			case '{':
				b.WriteByte('{')
			case '}':
				b.WriteByte('}')
			default:
				b.WriteByte(l.src[l.pos])
			}
			l.advance(1)
			continue
		}
		b.WriteByte(c)
		l.advance(1)
	}
	span := token.Span{Start: start, End: start + 1, Line: startLine, Col: startCol}
	l.diags = append(l.diags, diag.Errorf(diag.CodeUnterminatedToken, span, "unterminated string literal"))
	l.skipToNextLine()
}

func (l *Lexer) skipSpaceAndComments() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.advance(1)
		case strings.HasPrefix(l.src[l.pos:], "//"):
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.advance(1)
			}
		case strings.HasPrefix(l.src[l.pos:], "/*"):
			start, startLine, startCol := l.pos, l.line, l.col
			l.advance(2)
			closed := false
			for l.pos < len(l.src) {
				if strings.HasPrefix(l.src[l.pos:], "*/") {
					l.advance(2)
					closed = true
					break
				}
				l.advance(1)
			}
			if !closed {
				span := token.Span{Start: start, End: start + 2, Line: startLine, Col: startCol}
				l.diags = append(l.diags, diag.Errorf(diag.CodeUnterminatedToken, span, "unterminated block comment"))
			}
		default:
			return
		}
	}
}

func (l *Lexer) illegal(start, line, col int, c byte) {
	l.advance(1)
	span := token.Span{Start: start, End: l.pos, Line: line, Col: col}
	l.diags = append(l.diags, diag.Errorf(diag.CodeInvalidCharacter, span, "invalid character %q", string(c)))
	l.emit(token.Illegal, span, string(c))
}

func (l *Lexer) skipToNextLine() {
	for l.pos < len(l.src) && l.src[l.pos] != '\n' {
		l.advance(1)
	}
	if l.pos < len(l.src) {
		l.advance(1)
	}
}

func (l *Lexer) advance(n int) {
	for i := 0; i < n && l.pos < len(l.src); i++ {
		if l.src[l.pos] == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
		l.pos++
	}
}

func (l *Lexer) emit(k token.Kind, span token.Span, lexeme string) {
	l.tokens = append(l.tokens, token.Token{Kind: k, Lexeme: lexeme, Span: span})
}

func (l *Lexer) span(start, end int) token.Span {
	return token.Span{Start: start, End: end, Line: l.line, Col: l.col}
}

func (l *Lexer) peekAt(n int) byte {
	if l.pos+n >= len(l.src) {
		return 0
	}
	return l.src[l.pos+n]
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
