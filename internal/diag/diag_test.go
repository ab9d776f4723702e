// # internal/diag/diag_test.go
package diag

import (
	"strings"
	"testing"

	"jounce/internal/token"
)

func TestList_Counts(t *testing.T) {
	var l List
	l.Add(Errorf(CodeTypeMismatch, token.Span{}, "boom"))
	l.Add(Warnf(CodeUnusedVariable, token.Span{}, "meh"))

	if !l.HasErrors() {
		t.Error("Expected HasErrors")
	}
	if l.ErrorCount() != 1 || l.WarnCount() != 1 {
		t.Errorf("Expected 1 error and 1 warning, got %d/%d", l.ErrorCount(), l.WarnCount())
	}
	if l.Len() != 2 {
		t.Errorf("Expected 2 diagnostics, got %d", l.Len())
	}
}

func TestList_AllSortedBySpan(t *testing.T) {
	var l List
	l.Add(Errorf(CodeSyntax, token.Span{Start: 40, Line: 3, Col: 1}, "second"))
	l.Add(Errorf(CodeSyntax, token.Span{Start: 5, Line: 1, Col: 6}, "first"))

	all := l.All()
	if all[0].Message != "first" || all[1].Message != "second" {
		t.Errorf("Diagnostics not in source order: %v", all)
	}
}

func TestDiagnostic_Builders(t *testing.T) {
	related := token.Span{Start: 1, End: 4, Line: 1, Col: 2}
	d := Errorf(CodeUnresolvedVariable, token.Span{Start: 10, End: 15, Line: 2, Col: 3}, "cannot find `cuont`").
		WithSuggestion("count").
		WithRelated(related).
		WithNote("declared above").
		WithFix(token.Span{Start: 10, End: 15}, "count")

	if d.DidYouMean != "count" {
		t.Errorf("Expected suggestion count, got %q", d.DidYouMean)
	}
	if d.Related == nil || d.Related.Start != 1 {
		t.Error("Expected related span")
	}
	if len(d.Notes) != 1 || len(d.Fixes) != 1 {
		t.Errorf("Expected one note and one fix, got %d/%d", len(d.Notes), len(d.Fixes))
	}
}

func TestRender_SnippetAndSuggestion(t *testing.T) {
	src := "component Counter() {\n    let x = cuont;\n}"
	d := Errorf(CodeUnresolvedVariable,
		token.Span{Start: 34, End: 39, Line: 2, Col: 13}, "unresolved variable `cuont`").
		WithSuggestion("count")

	out := Render(d, src)
	if !strings.Contains(out, "E002") {
		t.Errorf("Expected code in output: %s", out)
	}
	if !strings.Contains(out, "let x = cuont;") {
		t.Errorf("Expected source line in output: %s", out)
	}
	if !strings.Contains(out, "^^^^^") {
		t.Errorf("Expected caret underline: %s", out)
	}
	if !strings.Contains(out, "did you mean `count`?") {
		t.Errorf("Expected suggestion line: %s", out)
	}
}

func TestRenderAll_Summary(t *testing.T) {
	var l List
	l.Add(Errorf(CodeSyntax, token.Span{Line: 1, Col: 1}, "bad"))
	l.Add(Warnf(CodeUnusedVariable, token.Span{Line: 1, Col: 1}, "unused"))

	out := RenderAll(&l, "let x = 1;")
	if !strings.Contains(out, "1 error(s), 1 warning(s)") {
		t.Errorf("Expected summary line: %s", out)
	}
}
