// # internal/diag/diag.go
package diag

import (
	"fmt"
	"sort"

	"jounce/internal/token"
)

type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	if s == Warning {
		return "warning"
	}
	return "error"
}

// Stable diagnostic codes. Errors are E001-E018, warnings W001-W005; the
// numbering is part of the tool-facing contract and must not be reshuffled.
const (
	CodeTypeMismatch        = "E001"
	CodeUnresolvedVariable  = "E002"
	CodeUnresolvedFunction  = "E003"
	CodeSyntax              = "E004"
	CodeInvalidAssignment   = "E005"
	CodeMalformedMarkup     = "E006"
	CodeUnterminatedToken   = "E007"
	CodeInvalidCharacter    = "E008"
	CodeReactiveCycle       = "E009"
	CodeUnclosedElement     = "E010"
	CodeMismatchedTags      = "E011"
	CodeInvalidAttribute    = "E012"
	CodeConflictingAnnots   = "E013"
	CodeCapabilityViolation = "E014"
	CodeBadCall             = "E015"
	CodeMissingField        = "E016"
	CodeUnknownField        = "E017"
	CodeUnknownUtility      = "E018"

	CodeUnusedVariable      = "W001"
	CodeUnreachableCode     = "W002"
	CodeEmptyStyleBlock     = "W003"
	CodeDeadCode            = "W004"
	CodeDeprecatedAttribute = "W005"
)

// Fix is a suggested replacement for the diagnostic's span.
type Fix struct {
	Span token.Span
	Text string
}

// Diagnostic is one reported problem. DidYouMean carries the closest in-scope
// candidate for unresolved-name errors; Related points back at a second span
// (e.g. the opening tag of a mismatched closing tag).
type Diagnostic struct {
	Code       string
	Severity   Severity
	Message    string
	Span       token.Span
	DidYouMean string
	Fixes      []Fix
	Related    *token.Span
	Notes      []string
}

func Errorf(code string, span token.Span, format string, args ...any) Diagnostic {
	return Diagnostic{Code: code, Severity: Error, Span: span, Message: fmt.Sprintf(format, args...)}
}

func Warnf(code string, span token.Span, format string, args ...any) Diagnostic {
	return Diagnostic{Code: code, Severity: Warning, Span: span, Message: fmt.Sprintf(format, args...)}
}

func (d Diagnostic) WithSuggestion(name string) Diagnostic {
	d.DidYouMean = name
	return d
}

func (d Diagnostic) WithRelated(span token.Span) Diagnostic {
	d.Related = &span
	return d
}

func (d Diagnostic) WithNote(note string) Diagnostic {
	d.Notes = append(d.Notes, note)
	return d
}

func (d Diagnostic) WithFix(span token.Span, text string) Diagnostic {
	d.Fixes = append(d.Fixes, Fix{Span: span, Text: text})
	return d
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s[%s] %d:%d: %s", d.Severity, d.Code, d.Span.Line, d.Span.Col, d.Message)
}

// List accumulates diagnostics across a single compilation. The zero value is
// ready to use. Not safe for concurrent use; each file compilation owns one.
type List struct {
	all      []Diagnostic
	errors   int
	warnings int
}

func (l *List) Add(d Diagnostic) {
	l.all = append(l.all, d)
	if d.Severity == Error {
		l.errors++
	} else {
		l.warnings++
	}
}

func (l *List) Extend(ds []Diagnostic) {
	for _, d := range ds {
		l.Add(d)
	}
}

func (l *List) HasErrors() bool  { return l.errors > 0 }
func (l *List) ErrorCount() int  { return l.errors }
func (l *List) WarnCount() int   { return l.warnings }
func (l *List) Len() int         { return len(l.all) }

// All returns the diagnostics in source order (by span start, stable).
func (l *List) All() []Diagnostic {
	out := make([]Diagnostic, len(l.all))
	copy(out, l.all)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Span.Start < out[j].Span.Start
	})
	return out
}
