// # internal/token/token.go
package token

import "fmt"

// Kind classifies a lexical token.
type Kind int

const (
	EOF Kind = iota
	Illegal

	// Literals and identifiers
	Ident
	Int
	Float
	String

	// Keywords
	KwLet
	KwMut
	KwFn
	KwComponent
	KwStruct
	KwEnum
	KwReturn
	KwIf
	KwElse
	KwMatch
	KwStyle
	KwTrue
	KwFalse

	// Punctuation
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Comma
	Dot
	Colon
	DoubleColon
	Semicolon
	Arrow    // ->
	FatArrow // =>
	At       // @ (annotation prefix)

	// Operators
	Assign  // =
	Plus
	Minus
	Star
	Slash
	Percent
	Bang
	Eq      // ==
	NotEq   // !=
	Less    // < (also opens a markup tag, disambiguated by the lexer)
	LessEq
	Greater // > (also closes a markup tag)
	GreaterEq
	AndAnd
	OrOr
	Underscore // _ (wildcard pattern)

	// Markup
	MarkupText      // raw text between tags
	MarkupSelfClose // />
	MarkupCloseOpen // </

	// Style
	StyleBody // raw body of a style block, parsed by the style sub-parser
)

var kindNames = map[Kind]string{
	EOF:             "end of file",
	Illegal:         "illegal character",
	Ident:           "identifier",
	Int:             "integer literal",
	Float:           "float literal",
	String:          "string literal",
	KwLet:           "'let'",
	KwMut:           "'mut'",
	KwFn:            "'fn'",
	KwComponent:     "'component'",
	KwStruct:        "'struct'",
	KwEnum:          "'enum'",
	KwReturn:        "'return'",
	KwIf:            "'if'",
	KwElse:          "'else'",
	KwMatch:         "'match'",
	KwStyle:         "'style'",
	KwTrue:          "'true'",
	KwFalse:         "'false'",
	LParen:          "'('",
	RParen:          "')'",
	LBrace:          "'{'",
	RBrace:          "'}'",
	LBracket:        "'['",
	RBracket:        "']'",
	Comma:           "','",
	Dot:             "'.'",
	Colon:           "':'",
	DoubleColon:     "'::'",
	Semicolon:       "';'",
	Arrow:           "'->'",
	FatArrow:        "'=>'",
	At:              "'@'",
	Assign:          "'='",
	Plus:            "'+'",
	Minus:           "'-'",
	Star:            "'*'",
	Slash:           "'/'",
	Percent:         "'%'",
	Bang:            "'!'",
	Eq:              "'=='",
	NotEq:           "'!='",
	Less:            "'<'",
	LessEq:          "'<='",
	Greater:         "'>'",
	GreaterEq:       "'>='",
	AndAnd:          "'&&'",
	OrOr:            "'||'",
	Underscore:      "'_'",
	MarkupText:      "markup text",
	MarkupSelfClose: "'/>'",
	MarkupCloseOpen: "'</'",
	StyleBody:       "style body",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Keywords maps reserved words to their token kinds.
var Keywords = map[string]Kind{
	"let":       KwLet,
	"mut":       KwMut,
	"fn":        KwFn,
	"component": KwComponent,
	"struct":    KwStruct,
	"enum":      KwEnum,
	"return":    KwReturn,
	"if":        KwIf,
	"else":      KwElse,
	"match":     KwMatch,
	"style":     KwStyle,
	"true":      KwTrue,
	"false":     KwFalse,
}

// Span is a half-open byte interval [Start, End) into the source, plus the
// 1-based line/column of its first byte.
type Span struct {
	Start int
	End   int
	Line  int
	Col   int
}

func (s Span) Len() int {
	if s.End < s.Start {
		return 0
	}
	return s.End - s.Start
}

// Merge returns the smallest span covering both s and other.
func (s Span) Merge(other Span) Span {
	out := s
	if other.Start < out.Start {
		out.Start = other.Start
		out.Line = other.Line
		out.Col = other.Col
	}
	if other.End > out.End {
		out.End = other.End
	}
	return out
}

// Token is one lexical token. Tokens are immutable once produced.
type Token struct {
	Kind   Kind
	Lexeme string
	Span   Span
}

func (t Token) Is(k Kind) bool { return t.Kind == k }

func (t Token) String() string {
	return fmt.Sprintf("%s %q @%d:%d", t.Kind, t.Lexeme, t.Span.Line, t.Span.Col)
}
