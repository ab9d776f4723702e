// # internal/codegen/codegen.go
//
// Script generation. The module is walked once per target: the client pass
// omits @server function bodies and replaces their call sites with
// remote-invocation stubs, the server pass does the inverse. Components are
// client-side constructs; the server sees only their exposed functions.
package codegen

import (
	"fmt"
	"strings"

	"jounce/internal/ast"
	"jounce/internal/reactive"
	"jounce/internal/sema"
)

type Target int

const (
	TargetClient Target = iota
	TargetServer
)

func (t Target) String() string {
	if t == TargetServer {
		return "server"
	}
	return "client"
}

// Generate emits the script for one target from a fully analyzed and
// transformed module.
func Generate(m *ast.Module, info *sema.Info, res *reactive.Result, styles *Styles, target Target) string {
	e := &emitter{info: info, res: res, styles: styles, target: target}
	if target == TargetServer {
		e.w(serverRuntime)
	} else {
		e.w(clientRuntime)
	}
	e.nl()

	var exposed []string
	for _, d := range m.Decls {
		switch d := d.(type) {
		case *ast.FunctionDecl:
			switch {
			case target == TargetClient && d.HasAnnotation(sema.AnnotServer):
				e.rpcStub(d)
			case target == TargetServer && d.HasAnnotation(sema.AnnotClient):
				e.rpcStub(d)
			default:
				e.function(d)
				if target == TargetServer && d.HasAnnotation(sema.AnnotServer) {
					exposed = append(exposed, d.Name)
				}
			}
		case *ast.ComponentDecl:
			if target == TargetClient {
				e.component(d)
			}
		}
	}

	if target == TargetServer {
		for _, name := range exposed {
			e.linef("__j.expose(%q, %s);", name, name)
		}
	}
	if target == TargetClient {
		if root := rootComponent(m); root != "" {
			e.linef("__j.mount(%s);", root)
		}
	}
	return e.b.String()
}

// rootComponent picks the mount entry: a component named App, or the first
// one declared.
func rootComponent(m *ast.Module) string {
	first := ""
	for _, d := range m.Decls {
		if c, ok := d.(*ast.ComponentDecl); ok {
			if c.Name == "App" {
				return c.Name
			}
			if first == "" {
				first = c.Name
			}
		}
	}
	return first
}

type emitter struct {
	b      strings.Builder
	indent int
	tmp    int
	target Target
	info   *sema.Info
	res    *reactive.Result
	styles *Styles
	comp   string // enclosing component name, "" inside plain functions
}

func (e *emitter) w(s string) { e.b.WriteString(s) }
func (e *emitter) nl()        { e.b.WriteByte('\n') }

func (e *emitter) line(s string) {
	e.w(strings.Repeat("  ", e.indent))
	e.w(s)
	e.nl()
}

func (e *emitter) linef(format string, args ...any) {
	e.line(fmt.Sprintf(format, args...))
}

func (e *emitter) fresh(prefix string) string {
	e.tmp++
	return fmt.Sprintf("__%s%d", prefix, e.tmp)
}

// rpcStub replaces an out-of-target function with a remote invocation
// carrying the same call shape.
func (e *emitter) rpcStub(d *ast.FunctionDecl) {
	e.linef("const %s = (...args) => __j.rpc(%q, args);", d.Name, d.Name)
}

func (e *emitter) function(d *ast.FunctionDecl) {
	names := make([]string, len(d.Params))
	for i, p := range d.Params {
		names[i] = p.Name
	}
	e.linef("function %s(%s) {", d.Name, strings.Join(names, ", "))
	e.indent++
	e.stmts(d.Body.Stmts, "")
	e.indent--
	e.line("}")
}

// component lowers a component to a factory returning a DOM fragment. Props
// arrive as one object and are destructured into the parameter names.
func (e *emitter) component(d *ast.ComponentDecl) {
	prevComp := e.comp
	e.comp = d.Name
	e.linef("function %s(props) {", d.Name)
	e.indent++
	if len(d.Params) > 0 {
		names := make([]string, len(d.Params))
		for i, p := range d.Params {
			names[i] = p.Name
		}
		e.linef("const { %s } = props;", strings.Join(names, ", "))
	}
	e.line("const __root = __j.fragment();")
	e.stmts(d.Body.Stmts, "__root")
	e.line("return __root;")
	e.indent--
	e.line("}")
	e.comp = prevComp
}
