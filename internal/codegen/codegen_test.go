// # internal/codegen/codegen_test.go
package codegen

import (
	"strings"
	"testing"

	"jounce/internal/diag"
	"jounce/internal/lexer"
	"jounce/internal/parser"
	"jounce/internal/reactive"
	"jounce/internal/sema"
)

const appSrc = `@server
fn getCount() -> Int {
    return 41;
}

@client
fn showAlert(msg: String) {
    alert(msg);
}

fn refresh() -> Int {
    return getCount();
}

component App() {
    let count = signal(0);
    let doubled = computed(count.value * 2);
    style box {
        color: red;
        padding: 1rem;
    }
    <div class="box p-4">
        <span>{doubled.value}</span>
        <button onClick={() => { count.value = count.value + 1; }}>inc</button>
    </div>
}`

func generate(t *testing.T, src string) (client, server, css string) {
	t.Helper()
	toks, lexDiags := lexer.Lex(src)
	if len(lexDiags) != 0 {
		t.Fatalf("Unexpected lex diagnostics: %v", lexDiags)
	}
	m, parseDiags := parser.Parse(toks)
	if len(parseDiags) != 0 {
		t.Fatalf("Unexpected parse diagnostics: %v", parseDiags)
	}
	info, semaDiags := sema.Analyze(m, sema.Options{})
	for _, d := range semaDiags {
		if d.Severity == diag.Error {
			t.Fatalf("Unexpected sema error: %v", d)
		}
	}
	res, trDiags := reactive.Transform(m, info)
	if len(trDiags) != 0 {
		t.Fatalf("Unexpected transform diagnostics: %v", trDiags)
	}
	styles, cssDiags := BuildStyles(m)
	if len(cssDiags) != 0 {
		t.Fatalf("Unexpected style diagnostics: %v", cssDiags)
	}
	return Generate(m, info, res, styles, TargetClient),
		Generate(m, info, res, styles, TargetServer),
		styles.CSS()
}

func TestGenerate_ClientScript(t *testing.T) {
	client, _, _ := generate(t, appSrc)

	for _, want := range []string{
		`const getCount = (...args) => __j.rpc("getCount", args);`,
		"function showAlert(msg) {",
		"__j.alert(msg)",
		"function refresh() {",
		`__j.rpc("getCount", [])`,
		"function App(props) {",
		"__j.signal(0)",
		"__j.computed(() => ",
		"__j.effect(() => __j.setText(",
		`__j.on(`,
		`"click"`,
		"__j.mount(App);",
	} {
		if !strings.Contains(client, want) {
			t.Errorf("Client script missing %q:\n%s", want, client)
		}
	}

	if strings.Contains(client, "return 41;") {
		t.Error("Server function body must not appear in the client script")
	}
	if strings.Contains(client, "__j.expose(") {
		t.Error("Client script must not expose functions")
	}
}

func TestGenerate_ServerScript(t *testing.T) {
	_, server, _ := generate(t, appSrc)

	for _, want := range []string{
		"function getCount() {",
		"return 41;",
		`__j.expose("getCount", getCount);`,
		`const showAlert = (...args) => __j.rpc("showAlert", args);`,
		"function refresh() {",
		"return getCount();",
	} {
		if !strings.Contains(server, want) {
			t.Errorf("Server script missing %q:\n%s", want, server)
		}
	}

	if strings.Contains(server, "function App(props)") {
		t.Error("Components must not appear in the server script")
	}
	if strings.Contains(server, "__j.mount(") {
		t.Error("Server script must not mount a component")
	}
}

func TestGenerate_ScopedClassInAttr(t *testing.T) {
	client, _, css := generate(t, appSrc)
	if !strings.Contains(client, "App_box_") {
		t.Errorf("Expected rewritten scoped class in client script:\n%s", client)
	}
	if !strings.Contains(client, "p-4") {
		t.Error("Utility token must survive class rewriting")
	}
	if !strings.Contains(css, ".p-4 {") {
		t.Errorf("Expected referenced utility rule:\n%s", css)
	}
}

func TestGenerate_Idempotent(t *testing.T) {
	c1, s1, css1 := generate(t, appSrc)
	c2, s2, css2 := generate(t, appSrc)
	if c1 != c2 || s1 != s2 || css1 != css2 {
		t.Error("Generation must be deterministic for identical input")
	}
}

func TestGenerate_MountFallsBackToFirstComponent(t *testing.T) {
	client, _, _ := generate(t, `component Hello() {
    <div>hi</div>
}`)
	if !strings.Contains(client, "__j.mount(Hello);") {
		t.Errorf("Expected first component as mount root:\n%s", client)
	}
}

func TestGenerate_EnumsAndMatch(t *testing.T) {
	client, _, _ := generate(t, `enum Shape {
    Circle(Int),
    Dot,
}

fn describe(s: Shape) -> String {
    match s {
        Shape::Circle(r) => "circle",
        Shape::Dot => "dot",
        _ => "other",
    }
    return "other";
}

component App() {
    <div>{describe(Shape::Dot)}</div>
}`)
	for _, want := range []string{
		`__j.variant("Shape", "Dot")`,
		`__j.isVariant(`,
	} {
		if !strings.Contains(client, want) {
			t.Errorf("Client script missing %q:\n%s", want, client)
		}
	}
}

func TestGenerate_MatchArmSlotsAreReactive(t *testing.T) {
	client, _, _ := generate(t, `component App() {
    let count = signal(0);
    let mode = signal(0);
    match mode.value {
        0 => <div>{count.value}</div>,
        _ => <div>static</div>,
    }
}`)
	if !strings.Contains(client, "=== 0") {
		t.Errorf("Expected literal arm condition:\n%s", client)
	}
	if !strings.Contains(client, "__j.effect(() => __j.setText(") {
		t.Errorf("Signal read inside a match arm must be effect-bound:\n%s", client)
	}
}

func TestEventName(t *testing.T) {
	cases := map[string]string{
		"onClick":  "click",
		"onInput":  "input",
		"onSubmit": "submit",
	}
	for attr, want := range cases {
		if got := eventName(attr); got != want {
			t.Errorf("eventName(%q): expected %q, got %q", attr, want, got)
		}
	}
}
