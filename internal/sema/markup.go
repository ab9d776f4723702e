// # internal/sema/markup.go
package sema

import (
	"sort"

	"jounce/internal/ast"
	"jounce/internal/diag"
	"jounce/internal/types"
)

// Lowercase tags are built-in elements; attribute names on them must come
// from the tables below or follow the on* handler convention. Capitalized
// tags are component references, validated against the component's params.
var builtinTags = map[string]bool{
	"a": true, "article": true, "br": true, "button": true, "code": true,
	"div": true, "em": true, "footer": true, "form": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hr": true, "img": true, "input": true, "label": true,
	"li": true, "main": true, "nav": true, "ol": true, "option": true,
	"p": true, "pre": true, "section": true, "select": true, "span": true,
	"strong": true, "table": true, "tbody": true, "td": true,
	"textarea": true, "th": true, "thead": true, "tr": true, "ul": true,
}

var globalAttrs = map[string]bool{
	"class": true, "id": true, "style": true, "title": true,
	"hidden": true, "tabindex": true,
}

var tagAttrs = map[string]map[string]bool{
	"a":        {"href": true, "target": true, "rel": true},
	"button":   {"type": true, "disabled": true},
	"form":     {"action": true, "method": true},
	"img":      {"src": true, "alt": true, "width": true, "height": true},
	"input":    {"type": true, "value": true, "placeholder": true, "disabled": true, "checked": true, "name": true},
	"label":    {"for": true},
	"option":   {"value": true, "selected": true},
	"select":   {"value": true, "disabled": true, "name": true},
	"textarea": {"value": true, "placeholder": true, "rows": true, "cols": true, "name": true},
	"td":       {"colspan": true, "rowspan": true},
	"th":       {"colspan": true, "rowspan": true},
}

// Attributes that still parse but should be migrated to style blocks.
var deprecatedAttrs = map[string]string{
	"align":   "use a style block with text-align",
	"bgcolor": "use a style block with background-color",
	"border":  "use a style block with border",
	"valign":  "use a style block with vertical-align",
}

func validAttr(tag, name string) bool {
	if globalAttrs[name] {
		return true
	}
	if extra, ok := tagAttrs[tag]; ok && extra[name] {
		return true
	}
	return false
}

func isComponentTag(tag string) bool {
	return tag != "" && tag[0] >= 'A' && tag[0] <= 'Z'
}

// checkMarkup validates one markup element and types its attribute values
// and children. Returns diagnostics through the analyzer.
func (a *analyzer) checkMarkup(el *ast.MarkupElement) {
	if isComponentTag(el.Tag) {
		a.checkComponentRef(el)
	} else {
		a.checkBuiltinElement(el)
	}
	for _, child := range el.Children {
		switch c := child.(type) {
		case *ast.MarkupElement:
			a.checkMarkup(c)
		case *ast.MarkupText:
			// static text
		default:
			a.exprType(c)
		}
	}
}

func (a *analyzer) checkBuiltinElement(el *ast.MarkupElement) {
	known := builtinTags[el.Tag]
	for _, attr := range el.Attrs {
		if attr.IsEventHandler() {
			a.checkHandler(el.Tag, attr)
			continue
		}
		if hint, ok := deprecatedAttrs[attr.Name]; ok {
			a.warnf(diag.CodeDeprecatedAttribute, attr.Sp,
				"attribute `%s` is deprecated: %s", attr.Name, hint)
			a.exprType(attr.Value)
			continue
		}
		if known && !validAttr(el.Tag, attr.Name) {
			d := diag.Errorf(diag.CodeInvalidAttribute, attr.Sp,
				"invalid attribute `%s` on `<%s>`", attr.Name, el.Tag)
			candidates := make([]string, 0, len(globalAttrs)+8)
			for n := range globalAttrs {
				candidates = append(candidates, n)
			}
			for n := range tagAttrs[el.Tag] {
				candidates = append(candidates, n)
			}
			// Map order is random; ties on edit distance must not flap
			// between runs.
			sort.Strings(candidates)
			if s := closestName(attr.Name, candidates, a.threshold); s != "" {
				d = d.WithSuggestion(s)
			}
			a.diags = append(a.diags, d)
		}
		a.exprType(attr.Value)
	}
}

// checkHandler enforces the event-handler contract: the value must be a
// closure taking zero or one argument.
func (a *analyzer) checkHandler(tag string, attr ast.MarkupAttr) {
	cl, ok := attr.Value.(*ast.Closure)
	if !ok {
		// An identifier bound to a function value is also acceptable.
		if id, isIdent := attr.Value.(*ast.Identifier); isIdent {
			t := a.exprType(id)
			if t.Kind == types.KindFunction || t.IsUnknown() {
				return
			}
		}
		a.errorf(diag.CodeInvalidAttribute, attr.Sp,
			"handler `%s` on `<%s>` must be a closure", attr.Name, tag)
		a.exprType(attr.Value)
		return
	}
	if len(cl.Params) > 1 {
		a.errorf(diag.CodeInvalidAttribute, attr.Sp,
			"handler `%s` takes at most one argument, closure has %d", attr.Name, len(cl.Params))
	}
	a.exprType(cl)
}

func (a *analyzer) checkComponentRef(el *ast.MarkupElement) {
	sym := a.cur.lookup(el.Tag)
	if sym == nil {
		d := diag.Errorf(diag.CodeUnresolvedVariable, el.Sp,
			"unresolved component `%s`", el.Tag)
		if s := closest(el.Tag, a.cur.visible(), a.threshold); s != nil && s.Kind == SymComponent {
			d = d.WithSuggestion(s.Name)
		}
		a.diags = append(a.diags, d)
		for _, attr := range el.Attrs {
			a.exprType(attr.Value)
		}
		return
	}
	sym.Used = true
	if sym.Kind != SymComponent {
		a.errorf(diag.CodeMalformedMarkup, el.Sp,
			"`%s` is a %s, not a component", el.Tag, sym.Kind)
		return
	}
	params := map[string]bool{}
	names := make([]string, 0, len(sym.Comp.Params))
	for _, p := range sym.Comp.Params {
		params[p.Name] = true
		names = append(names, p.Name)
	}
	for _, attr := range el.Attrs {
		if !params[attr.Name] && !attr.IsEventHandler() {
			d := diag.Errorf(diag.CodeInvalidAttribute, attr.Sp,
				"component `%s` has no parameter `%s`", el.Tag, attr.Name)
			if s := closestName(attr.Name, names, a.threshold); s != "" {
				d = d.WithSuggestion(s)
			}
			a.diags = append(a.diags, d)
		}
		a.exprType(attr.Value)
	}
}
