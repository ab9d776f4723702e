// # internal/lexer/lexer_test.go
package lexer

import (
	"strings"
	"testing"

	"jounce/internal/diag"
	"jounce/internal/token"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func expectKinds(t *testing.T, got []token.Token, want []token.Kind) {
	t.Helper()
	gk := kinds(got)
	if len(gk) != len(want) {
		t.Fatalf("Expected %d tokens, got %d: %v", len(want), len(gk), got)
	}
	for i := range want {
		if gk[i] != want[i] {
			t.Errorf("Token %d: expected %s, got %s (%q)", i, want[i], gk[i], got[i].Lexeme)
		}
	}
}

func TestLex_LetStatement(t *testing.T) {
	toks, diags := Lex("let mut x = 42;")
	if len(diags) != 0 {
		t.Fatalf("Unexpected diagnostics: %v", diags)
	}
	expectKinds(t, toks, []token.Kind{
		token.KwLet, token.KwMut, token.Ident, token.Assign, token.Int,
		token.Semicolon, token.EOF,
	})
	if toks[2].Lexeme != "x" {
		t.Errorf("Expected identifier x, got %q", toks[2].Lexeme)
	}
	if toks[4].Lexeme != "42" {
		t.Errorf("Expected integer 42, got %q", toks[4].Lexeme)
	}
}

func TestLex_NumberSeparators(t *testing.T) {
	toks, diags := Lex("1_000_000 3.14")
	if len(diags) != 0 {
		t.Fatalf("Unexpected diagnostics: %v", diags)
	}
	expectKinds(t, toks, []token.Kind{token.Int, token.Float, token.EOF})
	if toks[0].Lexeme != "1_000_000" {
		t.Errorf("Expected 1_000_000, got %q", toks[0].Lexeme)
	}
	if toks[1].Lexeme != "3.14" {
		t.Errorf("Expected 3.14, got %q", toks[1].Lexeme)
	}
}

func TestLex_StringEscapes(t *testing.T) {
	toks, diags := Lex(`let s = "a\nb\"c";`)
	if len(diags) != 0 {
		t.Fatalf("Unexpected diagnostics: %v", diags)
	}
	if toks[3].Kind != token.String {
		t.Fatalf("Expected string token, got %s", toks[3].Kind)
	}
	if toks[3].Lexeme != "a\nb\"c" {
		t.Errorf("Escapes not decoded: %q", toks[3].Lexeme)
	}
}

func TestLex_UnterminatedString(t *testing.T) {
	_, diags := Lex(`let s = "abc`)
	if len(diags) != 1 {
		t.Fatalf("Expected 1 diagnostic, got %d: %v", len(diags), diags)
	}
	if diags[0].Code != diag.CodeUnterminatedToken {
		t.Errorf("Expected %s, got %s", diag.CodeUnterminatedToken, diags[0].Code)
	}
}

func TestLex_UnterminatedStringResumesNextLine(t *testing.T) {
	// The error on line 1 must not hide the tokens on line 2.
	toks, diags := Lex("let s = \"abc\nlet y = 1;")
	if len(diags) != 1 {
		t.Fatalf("Expected 1 diagnostic, got %d", len(diags))
	}
	found := false
	for _, tok := range toks {
		if tok.Kind == token.Ident && tok.Lexeme == "y" {
			found = true
		}
	}
	if !found {
		t.Error("Expected lexing to resume on the next line")
	}
}

func TestLex_InvalidCharacter(t *testing.T) {
	toks, diags := Lex("let x = $;")
	if len(diags) != 1 || diags[0].Code != diag.CodeInvalidCharacter {
		t.Fatalf("Expected one %s, got %v", diag.CodeInvalidCharacter, diags)
	}
	hasIllegal := false
	for _, tok := range toks {
		if tok.Kind == token.Illegal {
			hasIllegal = true
		}
	}
	if !hasIllegal {
		t.Error("Expected an Illegal token in the stream")
	}
}

func TestLex_MarkupModes(t *testing.T) {
	toks, diags := Lex(`let v = <div class="box">Hi {name}</div>;`)
	if len(diags) != 0 {
		t.Fatalf("Unexpected diagnostics: %v", diags)
	}
	expectKinds(t, toks, []token.Kind{
		token.KwLet, token.Ident, token.Assign,
		token.Less, token.Ident, token.Ident, token.Assign, token.String, token.Greater,
		token.MarkupText, token.LBrace, token.Ident, token.RBrace,
		token.MarkupCloseOpen, token.Ident, token.Greater,
		token.Semicolon, token.EOF,
	})
	if toks[9].Lexeme != "Hi " {
		t.Errorf("Expected markup text %q, got %q", "Hi ", toks[9].Lexeme)
	}
}

func TestLex_ComparisonIsNotMarkup(t *testing.T) {
	toks, diags := Lex("let ok = a < b;")
	if len(diags) != 0 {
		t.Fatalf("Unexpected diagnostics: %v", diags)
	}
	expectKinds(t, toks, []token.Kind{
		token.KwLet, token.Ident, token.Assign, token.Ident, token.Less,
		token.Ident, token.Semicolon, token.EOF,
	})
}

func TestLex_NestedMarkup(t *testing.T) {
	toks, diags := Lex(`let v = <ul><li>one</li><li>two</li></ul>;`)
	if len(diags) != 0 {
		t.Fatalf("Unexpected diagnostics: %v", diags)
	}
	texts := 0
	for _, tok := range toks {
		if tok.Kind == token.MarkupText {
			texts++
		}
	}
	if texts != 2 {
		t.Errorf("Expected 2 text tokens, got %d", texts)
	}
	if toks[len(toks)-2].Kind != token.Semicolon {
		t.Errorf("Expected lexer to return to code mode after markup")
	}
}

func TestLex_StyleBody(t *testing.T) {
	toks, diags := Lex("style box { color: red; &:hover { color: blue; } }")
	if len(diags) != 0 {
		t.Fatalf("Unexpected diagnostics: %v", diags)
	}
	expectKinds(t, toks, []token.Kind{
		token.KwStyle, token.Ident, token.LBrace, token.StyleBody, token.RBrace, token.EOF,
	})
	body := toks[3].Lexeme
	if !strings.Contains(body, "color: red;") || !strings.Contains(body, "&:hover") {
		t.Errorf("Style body not captured: %q", body)
	}
}

func TestLex_UnterminatedBlockComment(t *testing.T) {
	_, diags := Lex("let x = 1; /* never closed")
	if len(diags) != 1 || diags[0].Code != diag.CodeUnterminatedToken {
		t.Fatalf("Expected one %s, got %v", diag.CodeUnterminatedToken, diags)
	}
}

func TestLex_CommentsSkipped(t *testing.T) {
	toks, diags := Lex("// note\nlet x = 1; /* block */ let y = 2;")
	if len(diags) != 0 {
		t.Fatalf("Unexpected diagnostics: %v", diags)
	}
	idents := 0
	for _, tok := range toks {
		if tok.Kind == token.Ident {
			idents++
		}
	}
	if idents != 2 {
		t.Errorf("Expected 2 identifiers, got %d", idents)
	}
}

func TestLex_LineAndColumnTracking(t *testing.T) {
	toks, _ := Lex("let a = 1;\nlet b = 2;")
	var second token.Token
	for _, tok := range toks {
		if tok.Kind == token.Ident && tok.Lexeme == "b" {
			second = tok
		}
	}
	if second.Span.Line != 2 {
		t.Errorf("Expected line 2, got %d", second.Span.Line)
	}
	if second.Span.Col != 5 {
		t.Errorf("Expected column 5, got %d", second.Span.Col)
	}
}
