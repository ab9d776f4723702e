// # internal/codegen/css.go
package codegen

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"jounce/internal/ast"
	"jounce/internal/diag"
)

// Styles is the stylesheet side of generation: scoped rules for every style
// block plus the referenced subset of the utility table. Class names are
// content-addressed, so identical property lists always hash to the same
// name and regeneration is byte-stable.
type Styles struct {
	classes map[string]map[string]string // component → style name → scoped class
	rules   []string
	used    map[string]bool
}

// BuildStyles renders every style block in the module and validates utility
// tokens in static class attributes. Unknown utility tokens are E018.
func BuildStyles(m *ast.Module) (*Styles, []diag.Diagnostic) {
	s := &Styles{classes: map[string]map[string]string{}, used: map[string]bool{}}
	var diags []diag.Diagnostic

	for _, d := range m.Decls {
		comp, ok := d.(*ast.ComponentDecl)
		if !ok {
			continue
		}
		s.classes[comp.Name] = map[string]string{}
		collectStyles(comp.Body, func(st *ast.StyleStmt) {
			class := scopedClass(comp.Name, st)
			s.classes[comp.Name][st.Name] = class
			s.rules = append(s.rules, renderRule(class, st)...)
		})
	}

	// Utility tokens referenced in static class attributes.
	for _, d := range m.Decls {
		comp, ok := d.(*ast.ComponentDecl)
		if !ok {
			continue
		}
		walkMarkupAttrs(comp.Body, func(attr *ast.MarkupAttr) {
			if attr.Name != "class" {
				return
			}
			lit, ok := attr.Value.(*ast.StringLit)
			if !ok || !attr.Quoted {
				return
			}
			for _, tok := range strings.Fields(lit.Value) {
				if _, isStyle := s.classes[comp.Name][tok]; isStyle {
					continue
				}
				if _, inTable := utilityTable[tok]; inTable {
					s.used[tok] = true
					continue
				}
				if isUtilityToken(tok) {
					diags = append(diags, diag.Errorf(diag.CodeUnknownUtility, attr.Sp,
						"unknown utility class `%s`", tok))
				}
				// Anything else is an ordinary CSS class and passes through.
			}
		})
	}
	return s, diags
}

// ClassFor resolves a component's style-block name to its scoped class.
func (s *Styles) ClassFor(component, name string) (string, bool) {
	c, ok := s.classes[component][name]
	return c, ok
}

// RewriteClass maps a static class attribute value: style-block names become
// scoped classes, everything else is kept as written.
func (s *Styles) RewriteClass(component, value string) string {
	toks := strings.Fields(value)
	for i, tok := range toks {
		if scoped, ok := s.classes[component][tok]; ok {
			toks[i] = scoped
		}
	}
	return strings.Join(toks, " ")
}

// CSS renders the full stylesheet: referenced utilities first, then scoped
// component rules in declaration order.
func (s *Styles) CSS() string {
	var b strings.Builder
	if len(s.used) > 0 {
		toks := make([]string, 0, len(s.used))
		for tok := range s.used {
			toks = append(toks, tok)
		}
		sort.Strings(toks)
		b.WriteString("/* utilities */\n")
		for _, tok := range toks {
			fmt.Fprintf(&b, ".%s { %s }\n", tok, utilityTable[tok])
		}
		b.WriteString("\n")
	}
	for _, rule := range s.rules {
		b.WriteString(rule)
	}
	return b.String()
}

// scopedClass builds `<Component>_<name>_<hash6>` where the hash digests the
// serialized property list. Same properties, same class; different
// components never collide because the component name participates.
func scopedClass(component string, st *ast.StyleStmt) string {
	h := sha256.New()
	for _, p := range st.Props {
		fmt.Fprintf(h, "%s:%s;", p.Property, p.Value)
	}
	for _, r := range st.Nested {
		fmt.Fprintf(h, "%s{", r.Selector)
		for _, p := range r.Props {
			fmt.Fprintf(h, "%s:%s;", p.Property, p.Value)
		}
		fmt.Fprint(h, "}")
	}
	digest := hex.EncodeToString(h.Sum(nil))[:6]
	return fmt.Sprintf("%s_%s_%s", component, st.Name, digest)
}

// renderRule renders the base rule and the expanded nested selectors.
func renderRule(class string, st *ast.StyleStmt) []string {
	var rules []string
	var b strings.Builder
	fmt.Fprintf(&b, ".%s {\n", class)
	for _, p := range st.Props {
		fmt.Fprintf(&b, "  %s: %s;\n", p.Property, p.Value)
	}
	b.WriteString("}\n")
	rules = append(rules, b.String())

	for _, r := range st.Nested {
		sel := expandSelector(class, r.Selector)
		var nb strings.Builder
		fmt.Fprintf(&nb, "%s {\n", sel)
		for _, p := range r.Props {
			fmt.Fprintf(&nb, "  %s: %s;\n", p.Property, p.Value)
		}
		nb.WriteString("}\n")
		rules = append(rules, nb.String())
	}
	return rules
}

// expandSelector substitutes the parent marker with the scoped class:
// `&:hover` → `.C_x_ab12cd:hover`, `&.active` → `.C_x_ab12cd.active`. A
// selector without the marker becomes a descendant selector.
func expandSelector(class, selector string) string {
	if strings.Contains(selector, "&") {
		return strings.ReplaceAll(selector, "&", "."+class)
	}
	return "." + class + " " + selector
}

func collectStyles(b *ast.Block, visit func(*ast.StyleStmt)) {
	for _, s := range b.Stmts {
		switch s := s.(type) {
		case *ast.StyleStmt:
			visit(s)
		case *ast.IfStmt:
			collectStyles(s.Then, visit)
			switch e := s.Else.(type) {
			case *ast.Block:
				collectStyles(e, visit)
			case *ast.IfStmt:
				collectStyles(&ast.Block{Stmts: []ast.Stmt{e}}, visit)
			}
		case *ast.Block:
			collectStyles(s, visit)
		}
	}
}

func walkMarkupAttrs(b *ast.Block, visit func(*ast.MarkupAttr)) {
	var walkExpr func(e ast.Expr)
	walkExpr = func(e ast.Expr) {
		switch e := e.(type) {
		case *ast.MarkupElement:
			for i := range e.Attrs {
				visit(&e.Attrs[i])
				walkExpr(e.Attrs[i].Value)
			}
			for _, c := range e.Children {
				walkExpr(c)
			}
		case *ast.MarkupFragment:
			for _, c := range e.Children {
				walkExpr(c)
			}
		}
	}
	var walkStmt func(s ast.Stmt)
	walkStmt = func(s ast.Stmt) {
		switch s := s.(type) {
		case *ast.ExprStmt:
			walkExpr(s.X)
		case *ast.IfStmt:
			for _, st := range s.Then.Stmts {
				walkStmt(st)
			}
			switch e := s.Else.(type) {
			case *ast.Block:
				for _, st := range e.Stmts {
					walkStmt(st)
				}
			case *ast.IfStmt:
				walkStmt(e)
			}
		case *ast.Block:
			for _, st := range s.Stmts {
				walkStmt(st)
			}
		}
	}
	for _, s := range b.Stmts {
		walkStmt(s)
	}
}
