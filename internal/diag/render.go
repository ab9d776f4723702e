// # internal/diag/render.go
package diag

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	gutterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B"))

	caretStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true)

	noteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981"))
)

// Render formats a diagnostic as a caret-annotated snippet of src:
//
//	error[E002] 3:9: cannot find `cuont` in this scope
//	  2 | component Counter() {
//	  3 |     let x = cuont;
//	    |             ^^^^^
//	  4 | }
//	  help: did you mean `count`?
//
// Colors degrade gracefully when the terminal does not support them.
func Render(d Diagnostic, src string) string {
	var b strings.Builder

	head := fmt.Sprintf("%s[%s]", d.Severity, d.Code)
	if d.Severity == Error {
		head = errorStyle.Render(head)
	} else {
		head = warnStyle.Render(head)
	}
	fmt.Fprintf(&b, "%s %d:%d: %s\n", head, d.Span.Line, d.Span.Col, d.Message)

	writeSnippet(&b, src, d)

	if d.DidYouMean != "" {
		fmt.Fprintf(&b, "  %s\n", noteStyle.Render(fmt.Sprintf("help: did you mean `%s`?", d.DidYouMean)))
	}
	for _, note := range d.Notes {
		fmt.Fprintf(&b, "  %s\n", noteStyle.Render("note: "+note))
	}
	return b.String()
}

// RenderAll renders every diagnostic followed by a one-line summary.
func RenderAll(l *List, src string) string {
	var b strings.Builder
	for _, d := range l.All() {
		b.WriteString(Render(d, src))
	}
	if l.HasErrors() {
		fmt.Fprintf(&b, "%s\n", errorStyle.Render(
			fmt.Sprintf("%d error(s), %d warning(s)", l.ErrorCount(), l.WarnCount())))
	} else if l.WarnCount() > 0 {
		fmt.Fprintf(&b, "%s\n", warnStyle.Render(fmt.Sprintf("%d warning(s)", l.WarnCount())))
	}
	return b.String()
}

func writeSnippet(b *strings.Builder, src string, d Diagnostic) {
	if src == "" || d.Span.Line < 1 {
		return
	}
	lines := strings.Split(src, "\n")
	line := d.Span.Line
	if line > len(lines) {
		line = len(lines)
	}

	width := len(fmt.Sprintf("%d", min(line+1, len(lines))))
	writeLine := func(n int) {
		fmt.Fprintf(b, "  %s | %s\n", gutterStyle.Render(fmt.Sprintf("%*d", width, n)), lines[n-1])
	}

	if line > 1 {
		writeLine(line - 1)
	}
	writeLine(line)

	col := d.Span.Col
	if col < 1 {
		col = 1
	}
	carets := d.Span.Len()
	if carets < 1 {
		carets = 1
	}
	if col-1+carets > len(lines[line-1])+1 {
		carets = 1
	}
	fmt.Fprintf(b, "  %s | %s%s\n",
		strings.Repeat(" ", width),
		strings.Repeat(" ", col-1),
		caretStyle.Render(strings.Repeat("^", carets)))

	if line < len(lines) {
		writeLine(line + 1)
	}
}
