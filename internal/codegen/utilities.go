// # internal/codegen/utilities.go
package codegen

import (
	"fmt"
	"strings"
)

// The fixed utility-class table. Tokens map to complete declaration lists;
// only tokens actually referenced by a compiled component are emitted into
// the stylesheet. A token that looks like a utility but is not in the table
// is a generation-time diagnostic, never a silent no-op.
var utilityTable = buildUtilityTable()

// utilityPrefixes marks the namespaces the table owns. A class token outside
// these prefixes is an ordinary CSS class and passes through untouched.
var utilityPrefixes = []string{
	"p-", "px-", "py-", "pt-", "pb-", "pl-", "pr-",
	"m-", "mx-", "my-", "mt-", "mb-", "ml-", "mr-",
	"text-", "bg-", "font-", "flex-", "justify-", "items-", "self-",
	"gap-", "rounded", "shadow", "w-", "h-", "border",
}

var utilityStandalone = map[string]bool{
	"block": true, "inline-block": true, "inline": true, "flex": true,
	"inline-flex": true, "grid": true, "hidden": true,
	"static": true, "relative": true, "absolute": true, "fixed": true,
	"sticky": true, "flex-wrap": true, "flex-nowrap": true,
}

func isUtilityToken(tok string) bool {
	if utilityStandalone[tok] {
		return true
	}
	for _, p := range utilityPrefixes {
		if strings.HasPrefix(tok, p) {
			return true
		}
	}
	return false
}

func buildUtilityTable() map[string]string {
	t := map[string]string{}

	for _, d := range []string{"block", "inline-block", "inline", "flex", "inline-flex", "grid"} {
		t[d] = "display: " + d + ";"
	}
	t["hidden"] = "display: none;"
	for _, p := range []string{"static", "relative", "absolute", "fixed", "sticky"} {
		t[p] = "position: " + p + ";"
	}

	t["flex-row"] = "flex-direction: row;"
	t["flex-col"] = "flex-direction: column;"
	t["flex-wrap"] = "flex-wrap: wrap;"
	t["flex-nowrap"] = "flex-wrap: nowrap;"
	t["flex-1"] = "flex: 1 1 0%;"
	for token, v := range map[string]string{
		"justify-start": "flex-start", "justify-end": "flex-end",
		"justify-center": "center", "justify-between": "space-between",
		"justify-around": "space-around", "justify-evenly": "space-evenly",
	} {
		t[token] = "justify-content: " + v + ";"
	}
	for token, v := range map[string]string{
		"items-start": "flex-start", "items-end": "flex-end",
		"items-center": "center", "items-baseline": "baseline",
		"items-stretch": "stretch",
	} {
		t[token] = "align-items: " + v + ";"
	}

	// Spacing scale in quarter-rem steps.
	scale := []int{0, 1, 2, 3, 4, 5, 6, 8, 10, 12, 16}
	sides := map[string]string{
		"p": "padding", "m": "margin",
	}
	for short, prop := range sides {
		for _, n := range scale {
			rem := fmt.Sprintf("%.2frem", float64(n)*0.25)
			t[fmt.Sprintf("%s-%d", short, n)] = fmt.Sprintf("%s: %s;", prop, rem)
			t[fmt.Sprintf("%sx-%d", short, n)] = fmt.Sprintf("%s-left: %s; %s-right: %s;", prop, rem, prop, rem)
			t[fmt.Sprintf("%sy-%d", short, n)] = fmt.Sprintf("%s-top: %s; %s-bottom: %s;", prop, rem, prop, rem)
			t[fmt.Sprintf("%st-%d", short, n)] = fmt.Sprintf("%s-top: %s;", prop, rem)
			t[fmt.Sprintf("%sb-%d", short, n)] = fmt.Sprintf("%s-bottom: %s;", prop, rem)
			t[fmt.Sprintf("%sl-%d", short, n)] = fmt.Sprintf("%s-left: %s;", prop, rem)
			t[fmt.Sprintf("%sr-%d", short, n)] = fmt.Sprintf("%s-right: %s;", prop, rem)
		}
		t[short+"-auto"] = prop + ": auto;"
	}
	for _, n := range scale {
		t[fmt.Sprintf("gap-%d", n)] = fmt.Sprintf("gap: %.2frem;", float64(n)*0.25)
	}

	for token, size := range map[string]string{
		"text-xs": "0.75rem", "text-sm": "0.875rem", "text-base": "1rem",
		"text-lg": "1.125rem", "text-xl": "1.25rem", "text-2xl": "1.5rem",
		"text-3xl": "1.875rem",
	} {
		t[token] = "font-size: " + size + ";"
	}
	for token, v := range map[string]string{
		"text-left": "left", "text-center": "center", "text-right": "right",
	} {
		t[token] = "text-align: " + v + ";"
	}
	t["font-bold"] = "font-weight: 700;"
	t["font-semibold"] = "font-weight: 600;"
	t["font-medium"] = "font-weight: 500;"
	t["font-normal"] = "font-weight: 400;"
	t["font-mono"] = "font-family: ui-monospace, monospace;"

	colors := map[string]string{
		"white": "#ffffff", "black": "#000000",
		"gray-100": "#f3f4f6", "gray-300": "#d1d5db", "gray-500": "#6b7280",
		"gray-700": "#374151", "gray-900": "#111827",
		"red-500": "#ef4444", "green-500": "#22c55e", "blue-500": "#3b82f6",
		"blue-600": "#2563eb", "yellow-500": "#eab308",
	}
	for name, hex := range colors {
		t["text-"+name] = "color: " + hex + ";"
		t["bg-"+name] = "background-color: " + hex + ";"
	}

	t["rounded"] = "border-radius: 0.25rem;"
	t["rounded-md"] = "border-radius: 0.375rem;"
	t["rounded-lg"] = "border-radius: 0.5rem;"
	t["rounded-full"] = "border-radius: 9999px;"
	t["border"] = "border: 1px solid #d1d5db;"
	t["shadow"] = "box-shadow: 0 1px 3px rgba(0,0,0,0.1);"
	t["shadow-md"] = "box-shadow: 0 4px 6px rgba(0,0,0,0.1);"
	t["shadow-lg"] = "box-shadow: 0 10px 15px rgba(0,0,0,0.1);"

	t["w-full"] = "width: 100%;"
	t["h-full"] = "height: 100%;"
	t["w-screen"] = "width: 100vw;"
	t["h-screen"] = "height: 100vh;"

	return t
}
