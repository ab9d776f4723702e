// # internal/codegen/markup.go
package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"jounce/internal/ast"
)

// markup lowers a markup tree into element-construction calls appended to
// parent. Static content is evaluated once at construction; dynamic slots
// (non-empty read set) are wrapped in effects so they re-run when any
// dependency changes.
func (e *emitter) markup(parent string, x ast.Expr) {
	switch x := x.(type) {
	case *ast.MarkupElement:
		if isComponentTag(x.Tag) {
			e.componentRef(parent, x)
			return
		}
		e.builtinElement(parent, x)
	case *ast.MarkupFragment:
		for _, c := range x.Children {
			e.markup(parent, c)
		}
	case *ast.MarkupText:
		e.linef("__j.append(%s, __j.text(%s));", parent, strconv.Quote(x.Text))
	default:
		e.exprChild(parent, x)
	}
}

func (e *emitter) builtinElement(parent string, x *ast.MarkupElement) {
	el := e.fresh("e")
	e.linef("const %s = __j.element(%q);", el, x.Tag)

	for _, attr := range x.Attrs {
		switch {
		case attr.IsEventHandler():
			e.linef("__j.on(%s, %q, %s);", el, eventName(attr.Name), e.expr(attr.Value))
		case attr.Quoted:
			e.staticAttr(el, attr)
		default:
			e.dynamicAttr(el, attr)
		}
	}

	for _, child := range x.Children {
		switch c := child.(type) {
		case *ast.MarkupElement, *ast.MarkupFragment, *ast.MarkupText:
			e.markup(el, c)
		default:
			e.exprChild(el, c)
		}
	}
	e.linef("__j.append(%s, %s);", parent, el)
}

func (e *emitter) staticAttr(el string, attr ast.MarkupAttr) {
	if lit, ok := attr.Value.(*ast.StringLit); ok {
		value := lit.Value
		if attr.Name == "class" && e.comp != "" {
			value = e.styles.RewriteClass(e.comp, value)
		}
		e.linef("__j.setAttr(%s, %q, %s);", el, attr.Name, strconv.Quote(value))
		return
	}
	e.linef("__j.setAttr(%s, %q, %s);", el, attr.Name, e.expr(attr.Value))
}

func (e *emitter) dynamicAttr(el string, attr ast.MarkupAttr) {
	slot := e.res.SlotFor(attr.Value)
	if slot != nil && slot.Dynamic() {
		e.linef("__j.effect(() => __j.setAttr(%s, %q, %s));", el, attr.Name, e.expr(attr.Value))
		return
	}
	e.linef("__j.setAttr(%s, %q, %s);", el, attr.Name, e.expr(attr.Value))
}

// exprChild lowers an embedded child expression into a text node, effect-
// bound when its read set is non-empty.
func (e *emitter) exprChild(parent string, x ast.Expr) {
	slot := e.res.SlotFor(x)
	if slot != nil && slot.Dynamic() {
		t := e.fresh("t")
		e.linef("const %s = __j.text(\"\");", t)
		e.linef("__j.effect(() => __j.setText(%s, %s));", t, e.expr(x))
		e.linef("__j.append(%s, %s);", parent, t)
		return
	}
	e.linef("__j.append(%s, __j.text(%s));", parent, e.expr(x))
}

// componentRef instantiates a child component with a props object.
func (e *emitter) componentRef(parent string, x *ast.MarkupElement) {
	props := make([]string, 0, len(x.Attrs))
	for _, attr := range x.Attrs {
		props = append(props, fmt.Sprintf("%s: %s", attr.Name, e.expr(attr.Value)))
	}
	e.linef("__j.append(%s, %s({ %s }));", parent, x.Tag, strings.Join(props, ", "))
}

// eventName maps the on* attribute convention to a DOM event name:
// onClick → click, onInput → input.
func eventName(attr string) string {
	return strings.ToLower(attr[2:])
}

func isComponentTag(tag string) bool {
	return tag != "" && tag[0] >= 'A' && tag[0] <= 'Z'
}
