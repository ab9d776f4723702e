// # internal/sema/analyzer_test.go
package sema

import (
	"testing"

	"jounce/internal/diag"
	"jounce/internal/lexer"
	"jounce/internal/parser"
	"jounce/internal/types"
)

func analyze(t *testing.T, src string) (*Info, []diag.Diagnostic) {
	return analyzeOpts(t, src, Options{})
}

func analyzeOpts(t *testing.T, src string, opts Options) (*Info, []diag.Diagnostic) {
	t.Helper()
	toks, lexDiags := lexer.Lex(src)
	if len(lexDiags) != 0 {
		t.Fatalf("Unexpected lex diagnostics: %v", lexDiags)
	}
	m, parseDiags := parser.Parse(toks)
	if len(parseDiags) != 0 {
		t.Fatalf("Unexpected parse diagnostics: %v", parseDiags)
	}
	return Analyze(m, opts)
}

func errorsOf(diags []diag.Diagnostic) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, d := range diags {
		if d.Severity == diag.Error {
			out = append(out, d)
		}
	}
	return out
}

func hasCode(diags []diag.Diagnostic, code string) bool {
	for _, d := range diags {
		if d.Code == code {
			return true
		}
	}
	return false
}

func TestAnalyze_CleanProgram(t *testing.T) {
	info, diags := analyze(t, `
fn add(a: Int, b: Int) -> Int { return a + b; }

component App() {
    let count = signal(0);
    let doubled = computed(count.value * 2);
    <div>
        <span>{doubled.value}</span>
        <button onClick={() => { count.value = count.value + 1; }}>inc</button>
    </div>
}`)
	if len(errorsOf(diags)) != 0 {
		t.Fatalf("Unexpected errors: %v", diags)
	}
	if len(info.Reactives) != 2 {
		t.Fatalf("Expected 2 reactive symbols, got %d", len(info.Reactives))
	}
	if info.Reactives[0].Name != "count" || info.Reactives[0].Kind != SymSignal {
		t.Errorf("Expected signal count first, got %s/%s", info.Reactives[0].Name, info.Reactives[0].Kind)
	}
	if info.Reactives[1].Kind != SymComputed {
		t.Errorf("Expected computed second, got %s", info.Reactives[1].Kind)
	}
	if len(info.Components) != 1 || info.Components[0].Name != "App" {
		t.Errorf("Expected component App, got %v", info.Components)
	}
}

func TestAnalyze_DidYouMean(t *testing.T) {
	_, diags := analyze(t, `
component Counter() {
    let count = signal(0);
    <div>{cuont.value}</div>
}`)
	errs := errorsOf(diags)
	if len(errs) != 1 {
		t.Fatalf("Expected exactly 1 error, got %d: %v", len(errs), errs)
	}
	if errs[0].Code != diag.CodeUnresolvedVariable {
		t.Errorf("Expected %s, got %s", diag.CodeUnresolvedVariable, errs[0].Code)
	}
	if errs[0].DidYouMean != "count" {
		t.Errorf("Expected suggestion count, got %q", errs[0].DidYouMean)
	}
}

func TestAnalyze_SuggestionThresholdConfigurable(t *testing.T) {
	src := `
component Counter() {
    let count = signal(0);
    <div>{cuont.value}</div>
}`
	_, diags := analyzeOpts(t, src, Options{SuggestionThreshold: 1})
	errs := errorsOf(diags)
	if len(errs) != 1 {
		t.Fatalf("Expected 1 error, got %v", errs)
	}
	if errs[0].DidYouMean != "" {
		t.Errorf("Distance 2 must be over a threshold of 1, got %q", errs[0].DidYouMean)
	}
}

func TestAnalyze_SignalDirectAssignment(t *testing.T) {
	_, diags := analyze(t, `
component App() {
    let count = signal(0);
    count = 5;
    <div>{count.value}</div>
}`)
	errs := errorsOf(diags)
	if len(errs) != 1 || errs[0].Code != diag.CodeInvalidAssignment {
		t.Fatalf("Expected one %s, got %v", diag.CodeInvalidAssignment, errs)
	}
	if errs[0].DidYouMean != "count.value" {
		t.Errorf("Expected suggestion count.value, got %q", errs[0].DidYouMean)
	}
}

func TestAnalyze_ImmutableAssignment(t *testing.T) {
	_, diags := analyze(t, `
fn main() {
    let x = 1;
    x = 2;
    println(to_string(x));
}`)
	errs := errorsOf(diags)
	if len(errs) != 1 || errs[0].Code != diag.CodeInvalidAssignment {
		t.Fatalf("Expected one %s, got %v", diag.CodeInvalidAssignment, errs)
	}
	if len(errs[0].Notes) == 0 {
		t.Error("Expected a `let mut` note")
	}
}

func TestAnalyze_ConflictingAnnotations(t *testing.T) {
	_, diags := analyze(t, "@server\n@client\nfn f() { }")
	errs := errorsOf(diags)
	if len(errs) != 1 || errs[0].Code != diag.CodeConflictingAnnots {
		t.Fatalf("Expected one %s, got %v", diag.CodeConflictingAnnots, errs)
	}
	if errs[0].Related == nil {
		t.Error("Expected the first annotation as related span")
	}
}

func TestAnalyze_CapabilityViolations(t *testing.T) {
	_, diags := analyze(t, `
@client
fn bad1() {
    db_query("select 1");
}

@server
fn bad2() {
    alert("hi");
}`)
	errs := errorsOf(diags)
	if len(errs) != 2 {
		t.Fatalf("Expected 2 errors, got %d: %v", len(errs), errs)
	}
	for _, e := range errs {
		if e.Code != diag.CodeCapabilityViolation {
			t.Errorf("Expected %s, got %s", diag.CodeCapabilityViolation, e.Code)
		}
	}
}

func TestAnalyze_CapabilityAllowedWhenUnannotated(t *testing.T) {
	_, diags := analyze(t, `
fn anywhere() {
    db_query("select 1");
    alert("hi");
}`)
	if hasCode(errorsOf(diags), diag.CodeCapabilityViolation) {
		t.Errorf("Unannotated code may call any API: %v", diags)
	}
}

func TestAnalyze_CallArity(t *testing.T) {
	_, diags := analyze(t, `
fn add(a: Int, b: Int) -> Int { return a + b; }
fn main() {
    let x = add(1);
    println(to_string(x));
}`)
	errs := errorsOf(diags)
	if len(errs) != 1 || errs[0].Code != diag.CodeBadCall {
		t.Fatalf("Expected one %s, got %v", diag.CodeBadCall, errs)
	}
}

func TestAnalyze_ArgumentTypeMismatch(t *testing.T) {
	_, diags := analyze(t, `
fn add(a: Int, b: Int) -> Int { return a + b; }
fn main() {
    let x = add(1, "two");
    println(to_string(x));
}`)
	errs := errorsOf(diags)
	if len(errs) != 1 || errs[0].Code != diag.CodeBadCall {
		t.Fatalf("Expected one %s, got %v", diag.CodeBadCall, errs)
	}
}

func TestAnalyze_ComponentCannotBeCalled(t *testing.T) {
	_, diags := analyze(t, `
component Card() { <div>x</div> }
fn main() {
    Card();
}`)
	errs := errorsOf(diags)
	if len(errs) != 1 || errs[0].Code != diag.CodeBadCall {
		t.Fatalf("Expected one %s, got %v", diag.CodeBadCall, errs)
	}
}

func TestAnalyze_StructLiteralFields(t *testing.T) {
	_, diags := analyze(t, `
struct Point {
    x: Int,
    y: Int,
}
fn main() {
    let p = Point { x: 1, z: 2 };
    println(to_string(p.x));
}`)
	errs := errorsOf(diags)
	if len(errs) != 2 {
		t.Fatalf("Expected 2 errors, got %d: %v", len(errs), errs)
	}
	if !hasCode(errs, diag.CodeUnknownField) {
		t.Error("Expected an unknown-field error for z")
	}
	if !hasCode(errs, diag.CodeMissingField) {
		t.Error("Expected a missing-field error for y")
	}
}

func TestAnalyze_FieldAccessSuggestion(t *testing.T) {
	_, diags := analyze(t, `
struct Point {
    x: Int,
    y: Int,
}
fn main() {
    let p = Point { x: 1, y: 2 };
    println(to_string(p.z));
}`)
	errs := errorsOf(diags)
	if len(errs) != 1 || errs[0].Code != diag.CodeUnknownField {
		t.Fatalf("Expected one %s, got %v", diag.CodeUnknownField, errs)
	}
}

func TestAnalyze_ReactiveValueAccess(t *testing.T) {
	info, diags := analyze(t, `
component App() {
    let count = signal(0);
    let text = computed(to_string(count.value));
    <div>{text.value}</div>
}`)
	if len(errorsOf(diags)) != 0 {
		t.Fatalf("Unexpected errors: %v", diags)
	}
	var countSym *Symbol
	for _, sym := range info.Reactives {
		if sym.Name == "count" {
			countSym = sym
		}
	}
	if countSym == nil {
		t.Fatal("count symbol not recorded")
	}
	if countSym.Type.Kind != types.KindSignal || countSym.Type.Inner.Kind != types.KindInt {
		t.Errorf("Expected Signal<Int>, got %s", countSym.Type)
	}
}

func TestAnalyze_ReactiveWrongFieldSuggestsValue(t *testing.T) {
	_, diags := analyze(t, `
component App() {
    let count = signal(0);
    <div>{count.val}</div>
}`)
	errs := errorsOf(diags)
	if len(errs) != 1 || errs[0].Code != diag.CodeUnknownField {
		t.Fatalf("Expected one %s, got %v", diag.CodeUnknownField, errs)
	}
	if errs[0].DidYouMean != "value" {
		t.Errorf("Expected suggestion value, got %q", errs[0].DidYouMean)
	}
}

func TestAnalyze_InvalidAttributeSuggestion(t *testing.T) {
	_, diags := analyze(t, `
component C() {
    <a herf="https://example.com">link</a>
}`)
	errs := errorsOf(diags)
	if len(errs) != 1 || errs[0].Code != diag.CodeInvalidAttribute {
		t.Fatalf("Expected one %s, got %v", diag.CodeInvalidAttribute, errs)
	}
	if errs[0].DidYouMean != "href" {
		t.Errorf("Expected suggestion href, got %q", errs[0].DidYouMean)
	}
}

func TestAnalyze_AttributeSuggestionTieIsStable(t *testing.T) {
	// `ref` is distance 1 from both `href` and `rel`; the suggestion must
	// not flap between runs. Alphabetical order breaks the tie.
	for i := 0; i < 8; i++ {
		_, diags := analyze(t, `
component C() {
    <a ref="https://example.com">link</a>
}`)
		errs := errorsOf(diags)
		if len(errs) != 1 || errs[0].Code != diag.CodeInvalidAttribute {
			t.Fatalf("Expected one %s, got %v", diag.CodeInvalidAttribute, errs)
		}
		if errs[0].DidYouMean != "href" {
			t.Fatalf("Run %d: expected suggestion href, got %q", i, errs[0].DidYouMean)
		}
	}
}

func TestAnalyze_DeprecatedAttribute(t *testing.T) {
	_, diags := analyze(t, `
component C() {
    <td align="center">x</td>
}`)
	if len(errorsOf(diags)) != 0 {
		t.Fatalf("Deprecated attributes must not be errors: %v", diags)
	}
	if !hasCode(diags, diag.CodeDeprecatedAttribute) {
		t.Errorf("Expected %s, got %v", diag.CodeDeprecatedAttribute, diags)
	}
}

func TestAnalyze_ComponentRefParams(t *testing.T) {
	_, diags := analyze(t, `
component Badge(label: String) {
    <span>{label}</span>
}
component App() {
    <div>
        <Badge labl="hi" />
    </div>
}`)
	errs := errorsOf(diags)
	if len(errs) != 1 || errs[0].Code != diag.CodeInvalidAttribute {
		t.Fatalf("Expected one %s, got %v", diag.CodeInvalidAttribute, errs)
	}
	if errs[0].DidYouMean != "label" {
		t.Errorf("Expected suggestion label, got %q", errs[0].DidYouMean)
	}
}

func TestAnalyze_UnresolvedComponentSuggestion(t *testing.T) {
	_, diags := analyze(t, `
component Badge(label: String) {
    <span>{label}</span>
}
component App() {
    <div>
        <Bagde label="hi" />
    </div>
}`)
	errs := errorsOf(diags)
	if len(errs) != 1 || errs[0].Code != diag.CodeUnresolvedVariable {
		t.Fatalf("Expected one %s, got %v", diag.CodeUnresolvedVariable, errs)
	}
	if errs[0].DidYouMean != "Badge" {
		t.Errorf("Expected suggestion Badge, got %q", errs[0].DidYouMean)
	}
}

func TestAnalyze_EnumVariants(t *testing.T) {
	_, diags := analyze(t, `
enum Color {
    Red,
    Green,
    Blue,
}
fn main() {
    let c = Color::Red;
    match c {
        Color::Red => println("red"),
        Color::Geen => println("green"),
        _ => println("other"),
    }
}`)
	errs := errorsOf(diags)
	if len(errs) != 1 || errs[0].Code != diag.CodeUnresolvedVariable {
		t.Fatalf("Expected one %s, got %v", diag.CodeUnresolvedVariable, errs)
	}
	if errs[0].DidYouMean != "Green" {
		t.Errorf("Expected suggestion Green, got %q", errs[0].DidYouMean)
	}
}

func TestAnalyze_VariantPatternArity(t *testing.T) {
	_, diags := analyze(t, `
enum Shape {
    Circle(Int),
}
fn main() {
    let s = Shape::Circle(3);
    match s {
        Shape::Circle(a, b) => println(to_string(a)),
        _ => println("other"),
    }
}`)
	errs := errorsOf(diags)
	if len(errs) != 1 || errs[0].Code != diag.CodeBadCall {
		t.Fatalf("Expected one %s, got %v", diag.CodeBadCall, errs)
	}
}

func TestAnalyze_Warnings(t *testing.T) {
	_, diags := analyze(t, `
fn helper() -> Int {
    return 1;
    let dead = 2;
}
fn main() {
    let unused = 1;
    println("hi");
}`)
	if len(errorsOf(diags)) != 0 {
		t.Fatalf("Unexpected errors: %v", diags)
	}
	if !hasCode(diags, diag.CodeUnreachableCode) {
		t.Error("Expected unreachable-code warning")
	}
	if !hasCode(diags, diag.CodeUnusedVariable) {
		t.Error("Expected unused-variable warning")
	}
	if !hasCode(diags, diag.CodeDeadCode) {
		t.Error("Expected dead-code warning for helper")
	}
}

func TestAnalyze_UnderscorePrefixSilencesUnused(t *testing.T) {
	_, diags := analyze(t, `
fn main() {
    let _scratch = 1;
    println("hi");
}`)
	if hasCode(diags, diag.CodeUnusedVariable) {
		t.Errorf("Underscore-prefixed locals must not warn: %v", diags)
	}
}

func TestAnalyze_DuplicateDeclaration(t *testing.T) {
	_, diags := analyze(t, "fn f() { }\nfn f() { }")
	errs := errorsOf(diags)
	if len(errs) != 1 || errs[0].Code != diag.CodeSyntax {
		t.Fatalf("Expected one duplicate-declaration error, got %v", errs)
	}
	if errs[0].Related == nil {
		t.Error("Expected the first declaration as related span")
	}
}

func TestAnalyze_ReturnTypeMismatch(t *testing.T) {
	_, diags := analyze(t, `fn f() -> Int { return "no"; }`)
	errs := errorsOf(diags)
	if len(errs) != 1 || errs[0].Code != diag.CodeTypeMismatch {
		t.Fatalf("Expected one %s, got %v", diag.CodeTypeMismatch, errs)
	}
}

func TestAnalyze_IfConditionMustBeBool(t *testing.T) {
	_, diags := analyze(t, `
fn main() {
    if 1 {
        println("yes");
    }
}`)
	errs := errorsOf(diags)
	if len(errs) != 1 || errs[0].Code != diag.CodeTypeMismatch {
		t.Fatalf("Expected one %s, got %v", diag.CodeTypeMismatch, errs)
	}
}

func TestAnalyze_UnknownAbsorbsCascade(t *testing.T) {
	// One unresolved name must produce one error, not a chain from every
	// expression it flows into.
	_, diags := analyze(t, `
fn main() {
    let a = missing;
    let b = a + 1;
    let c = b * 2;
    println(to_string(c));
}`)
	errs := errorsOf(diags)
	if len(errs) != 1 {
		t.Fatalf("Expected exactly 1 error, got %d: %v", len(errs), errs)
	}
}

func TestEditDistance(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"count", "count", 0},
		{"cuont", "count", 2},
		{"kitten", "sitting", 3},
		{"", "abc", 3},
	}
	for _, c := range cases {
		if got := editDistance(c.a, c.b); got != c.want {
			t.Errorf("editDistance(%q, %q): expected %d, got %d", c.a, c.b, c.want, got)
		}
	}
}
