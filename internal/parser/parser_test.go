// # internal/parser/parser_test.go
package parser

import (
	"testing"

	"jounce/internal/ast"
	"jounce/internal/diag"
	"jounce/internal/lexer"
)

func parse(t *testing.T, src string) (*ast.Module, []diag.Diagnostic) {
	t.Helper()
	toks, lexDiags := lexer.Lex(src)
	if len(lexDiags) != 0 {
		t.Fatalf("Unexpected lex diagnostics: %v", lexDiags)
	}
	return Parse(toks)
}

func parseClean(t *testing.T, src string) *ast.Module {
	t.Helper()
	m, diags := parse(t, src)
	if len(diags) != 0 {
		t.Fatalf("Unexpected parse diagnostics: %v", diags)
	}
	return m
}

func codes(diags []diag.Diagnostic) []string {
	out := make([]string, len(diags))
	for i, d := range diags {
		out[i] = d.Code
	}
	return out
}

func TestParse_Function(t *testing.T) {
	m := parseClean(t, "fn add(a: Int, b: Int) -> Int { return a + b; }")
	if len(m.Decls) != 1 {
		t.Fatalf("Expected 1 declaration, got %d", len(m.Decls))
	}
	fn, ok := m.Decls[0].(*ast.FunctionDecl)
	if !ok {
		t.Fatalf("Expected FunctionDecl, got %T", m.Decls[0])
	}
	if fn.Name != "add" || len(fn.Params) != 2 {
		t.Errorf("Unexpected signature: %s/%d", fn.Name, len(fn.Params))
	}
	if fn.ReturnType == nil {
		t.Error("Expected a return type")
	}
	if len(fn.Body.Stmts) != 1 {
		t.Errorf("Expected 1 body statement, got %d", len(fn.Body.Stmts))
	}
}

func TestParse_Annotations(t *testing.T) {
	m := parseClean(t, "@server\nfn save(data: String) { write_file(\"out\", data); }")
	fn := m.Decls[0].(*ast.FunctionDecl)
	if len(fn.Annotations) != 1 || fn.Annotations[0].Name != "server" {
		t.Errorf("Expected @server annotation, got %v", fn.Annotations)
	}
	if !fn.HasAnnotation("server") {
		t.Error("HasAnnotation failed")
	}
}

func TestParse_StructLiteral(t *testing.T) {
	m := parseClean(t, "fn f() { let p = Point { x: 1, y: 2 }; }")
	fn := m.Decls[0].(*ast.FunctionDecl)
	let := fn.Body.Stmts[0].(*ast.LetStmt)
	lit, ok := let.Value.(*ast.StructLit)
	if !ok {
		t.Fatalf("Expected StructLit, got %T", let.Value)
	}
	if lit.Name != "Point" || len(lit.Fields) != 2 {
		t.Errorf("Unexpected literal: %s/%d", lit.Name, len(lit.Fields))
	}
	if lit.Fields[1].Name != "y" {
		t.Errorf("Expected field y, got %s", lit.Fields[1].Name)
	}
}

func TestParse_IdentifierBeforeBlockIsNotStructLiteral(t *testing.T) {
	// `s` is a match subject, not a struct literal, because no field colon
	// follows the brace.
	m := parseClean(t, "fn f(s: Shape) { match s { _ => 0, } }")
	fn := m.Decls[0].(*ast.FunctionDecl)
	if _, ok := fn.Body.Stmts[0].(*ast.MatchStmt); !ok {
		t.Fatalf("Expected MatchStmt, got %T", fn.Body.Stmts[0])
	}
}

func TestParse_MatchArms(t *testing.T) {
	m := parseClean(t, `fn f(s: Shape) -> Int {
    match s {
        Shape::Circle(r) => r * r,
        Shape::Dot => 1,
        _ => 0,
    }
    return 0;
}`)
	fn := m.Decls[0].(*ast.FunctionDecl)
	match := fn.Body.Stmts[0].(*ast.MatchStmt)
	if len(match.Arms) != 3 {
		t.Fatalf("Expected 3 arms, got %d", len(match.Arms))
	}
	vp, ok := match.Arms[0].Pattern.(*ast.VariantPattern)
	if !ok {
		t.Fatalf("Expected VariantPattern, got %T", match.Arms[0].Pattern)
	}
	if vp.Enum != "Shape" || vp.Variant != "Circle" || len(vp.Binds) != 1 {
		t.Errorf("Unexpected pattern: %s::%s/%d", vp.Enum, vp.Variant, len(vp.Binds))
	}
	if _, ok := match.Arms[2].Pattern.(*ast.WildcardPattern); !ok {
		t.Errorf("Expected wildcard arm, got %T", match.Arms[2].Pattern)
	}
}

func TestParse_ClosureVersusGrouping(t *testing.T) {
	m := parseClean(t, "fn f() { let g = (a, b) => a + b; let x = (1 + 2) * 3; }")
	fn := m.Decls[0].(*ast.FunctionDecl)
	if _, ok := fn.Body.Stmts[0].(*ast.LetStmt).Value.(*ast.Closure); !ok {
		t.Errorf("Expected Closure, got %T", fn.Body.Stmts[0].(*ast.LetStmt).Value)
	}
	if _, ok := fn.Body.Stmts[1].(*ast.LetStmt).Value.(*ast.BinaryExpr); !ok {
		t.Errorf("Expected BinaryExpr, got %T", fn.Body.Stmts[1].(*ast.LetStmt).Value)
	}
}

func TestParse_MarkupElement(t *testing.T) {
	m := parseClean(t, `component C() {
    <div id={name} class="box" disabled>
        Hello
        <span>{count}</span>
    </div>
}`)
	comp := m.Decls[0].(*ast.ComponentDecl)
	el := comp.Body.Stmts[0].(*ast.ExprStmt).X.(*ast.MarkupElement)
	if el.Tag != "div" || len(el.Attrs) != 3 {
		t.Fatalf("Unexpected element: %s/%d attrs", el.Tag, len(el.Attrs))
	}
	if el.Attrs[0].Quoted {
		t.Error("Expression attribute must not be quoted")
	}
	if !el.Attrs[1].Quoted {
		t.Error("String attribute must be quoted")
	}
	if b, ok := el.Attrs[2].Value.(*ast.BoolLit); !ok || !b.Value {
		t.Error("Bare attribute should default to true")
	}
	if len(el.Children) != 2 {
		t.Fatalf("Expected 2 children, got %d", len(el.Children))
	}
	if _, ok := el.Children[0].(*ast.MarkupText); !ok {
		t.Errorf("Expected text child, got %T", el.Children[0])
	}
}

func TestParse_SelfClosingElement(t *testing.T) {
	m := parseClean(t, `component C() { <img src="x.png" alt="x" /> }`)
	comp := m.Decls[0].(*ast.ComponentDecl)
	el := comp.Body.Stmts[0].(*ast.ExprStmt).X.(*ast.MarkupElement)
	if !el.SelfClosed || len(el.Children) != 0 {
		t.Error("Expected a self-closed element with no children")
	}
}

func TestParse_MismatchedTags(t *testing.T) {
	_, diags := parse(t, "component C() { <div>text</span> }")
	if len(diags) != 1 {
		t.Fatalf("Expected 1 diagnostic, got %d: %v", len(diags), diags)
	}
	d := diags[0]
	if d.Code != diag.CodeMismatchedTags {
		t.Errorf("Expected %s, got %s", diag.CodeMismatchedTags, d.Code)
	}
	if d.Related == nil {
		t.Error("Expected the opening tag as related span")
	}
	if len(d.Fixes) != 1 || d.Fixes[0].Text != "div" {
		t.Errorf("Expected a rename fix to div, got %v", d.Fixes)
	}
}

func TestParse_UnclosedElement(t *testing.T) {
	_, diags := parse(t, "component C() { <div>text")
	found := false
	for _, d := range diags {
		if d.Code == diag.CodeUnclosedElement {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected %s, got %v", diag.CodeUnclosedElement, codes(diags))
	}
}

func TestParse_TwoIndependentErrors(t *testing.T) {
	// Recovery must contain each mistake to one diagnostic.
	_, diags := parse(t, "fn a() { let = 1; }\nfn b() { let = 2; }")
	if len(diags) != 2 {
		t.Fatalf("Expected exactly 2 diagnostics, got %d: %v", len(diags), diags)
	}
	for _, d := range diags {
		if d.Code != diag.CodeSyntax {
			t.Errorf("Expected %s, got %s", diag.CodeSyntax, d.Code)
		}
	}
}

func TestParse_StyleBlock(t *testing.T) {
	m := parseClean(t, `component C() {
    style box {
        color: red;
        padding: 1rem;
        &:hover {
            color: blue;
        }
    }
    <div class="box">x</div>
}`)
	comp := m.Decls[0].(*ast.ComponentDecl)
	st := comp.Body.Stmts[0].(*ast.StyleStmt)
	if st.Name != "box" || len(st.Props) != 2 {
		t.Fatalf("Unexpected style block: %s/%d props", st.Name, len(st.Props))
	}
	if st.Props[0].Property != "color" || st.Props[0].Value != "red" {
		t.Errorf("Unexpected first prop: %+v", st.Props[0])
	}
	if len(st.Nested) != 1 || st.Nested[0].Selector != "&:hover" {
		t.Fatalf("Unexpected nested rules: %+v", st.Nested)
	}
}

func TestParse_EmptyStyleBlockWarns(t *testing.T) {
	_, diags := parse(t, "component C() { style box { } <div>x</div> }")
	if len(diags) != 1 || diags[0].Code != diag.CodeEmptyStyleBlock {
		t.Fatalf("Expected one %s, got %v", diag.CodeEmptyStyleBlock, diags)
	}
	if diags[0].Severity != diag.Warning {
		t.Error("Empty style block is a warning, not an error")
	}
}

func TestParse_RoundTrip(t *testing.T) {
	src := `enum Shape {
    Circle(Int),
    Dot,
}

struct Point {
    x: Int,
    y: Int,
}

fn area(s: Shape) -> Int {
    match s {
        Shape::Circle(r) => (r * r),
        _ => 0,
    }
    return 0;
}

component App() {
    let mut total = 0;
    let p = Point { x: 1, y: 2 };
    if (total < 10) {
        total = (total + p.x);
    }
    <div class="box">Total</div>
}`
	m1 := parseClean(t, src)
	s1 := ast.Print(m1)
	m2 := parseClean(t, s1)
	s2 := ast.Print(m2)
	if s1 != s2 {
		t.Errorf("Round trip not stable:\n--- first ---\n%s\n--- second ---\n%s", s1, s2)
	}
}
