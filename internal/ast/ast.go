// # internal/ast/ast.go
//
// The Jounce syntax tree. Node kinds form a closed set: every pipeline stage
// switches exhaustively over the concrete types below, so adding a node kind
// surfaces every site that needs updating. Nodes own their children
// exclusively (a tree, never a DAG) and every node carries the source span it
// was parsed from.
package ast

import "jounce/internal/token"

type Node interface {
	Span() token.Span
}

// Decl is a top-level declaration.
type Decl interface {
	Node
	declNode()
}

// Stmt is a statement inside a function, component or block body.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression.
type Expr interface {
	Node
	exprNode()
}

// Module is the root of one source file.
type Module struct {
	Decls []Decl
	Sp    token.Span
}

func (m *Module) Span() token.Span { return m.Sp }

// ───────────────────────────── declarations ──────────────────────────────────

// Annotation is an @-prefixed marker attached to the following declaration,
// e.g. @server or @client.
type Annotation struct {
	Name string
	Sp   token.Span
}

func (a *Annotation) Span() token.Span { return a.Sp }

type Param struct {
	Name string
	Type TypeExpr
	Sp   token.Span
}

type FunctionDecl struct {
	Name        string
	Annotations []Annotation
	Params      []Param
	ReturnType  TypeExpr // nil means Unit
	Body        *Block
	Sp          token.Span
}

type ComponentDecl struct {
	Name        string
	Annotations []Annotation
	Params      []Param
	Body        *Block // statements, style blocks, then the rendered markup
	Sp          token.Span
}

type StructDecl struct {
	Name   string
	Fields []Param
	Sp     token.Span
}

type EnumVariant struct {
	Name   string
	Fields []TypeExpr
	Sp     token.Span
}

type EnumDecl struct {
	Name     string
	Variants []EnumVariant
	Sp       token.Span
}

func (d *FunctionDecl) Span() token.Span  { return d.Sp }
func (d *ComponentDecl) Span() token.Span { return d.Sp }
func (d *StructDecl) Span() token.Span    { return d.Sp }
func (d *EnumDecl) Span() token.Span      { return d.Sp }

func (*FunctionDecl) declNode()  {}
func (*ComponentDecl) declNode() {}
func (*StructDecl) declNode()    {}
func (*EnumDecl) declNode()      {}

// HasAnnotation reports whether the declaration carries @name.
func (d *FunctionDecl) HasAnnotation(name string) bool {
	for _, a := range d.Annotations {
		if a.Name == name {
			return true
		}
	}
	return false
}

// ─────────────────────────────── type syntax ─────────────────────────────────

// TypeExpr is the written form of a type, resolved during semantic analysis.
type TypeExpr interface {
	Node
	typeNode()
}

type NamedType struct {
	Name string
	Args []TypeExpr // generic arguments: Array<Int>, Option<String>, ...
	Sp   token.Span
}

type FunctionType struct {
	Params []TypeExpr
	Return TypeExpr
	Sp     token.Span
}

func (t *NamedType) Span() token.Span    { return t.Sp }
func (t *FunctionType) Span() token.Span { return t.Sp }

func (*NamedType) typeNode()    {}
func (*FunctionType) typeNode() {}

// ─────────────────────────────── statements ──────────────────────────────────

type Block struct {
	Stmts []Stmt
	Sp    token.Span
}

func (b *Block) Span() token.Span { return b.Sp }

type LetStmt struct {
	Name    string
	Mutable bool
	Type    TypeExpr // optional annotation
	Value   Expr
	Sp      token.Span
	NameSp  token.Span
}

type AssignStmt struct {
	Target Expr // Identifier or FieldAccess
	Value  Expr
	Sp     token.Span
}

type ReturnStmt struct {
	Value Expr // nil for bare return
	Sp    token.Span
}

type IfStmt struct {
	Cond Expr
	Then *Block
	Else Stmt // *Block, *IfStmt, or nil
	Sp   token.Span
}

type MatchArm struct {
	Pattern Pattern
	Body    Expr
	Sp      token.Span
}

type MatchStmt struct {
	Subject Expr
	Arms    []MatchArm
	Sp      token.Span
}

type ExprStmt struct {
	X  Expr
	Sp token.Span
}

// StyleStmt is a named style block inside a component body. The raw CSS body
// is split into declarations and nested rules by the style sub-parser.
type StyleStmt struct {
	Name   string
	Props  []StyleProp
	Nested []StyleRule
	Sp     token.Span
}

type StyleProp struct {
	Property string
	Value    string
}

// StyleRule is a nested selector inside a style block, e.g. `&:hover { ... }`.
type StyleRule struct {
	Selector string // as written, with the leading parent marker
	Props    []StyleProp
}

func (s *LetStmt) Span() token.Span    { return s.Sp }
func (s *AssignStmt) Span() token.Span { return s.Sp }
func (s *ReturnStmt) Span() token.Span { return s.Sp }
func (s *IfStmt) Span() token.Span     { return s.Sp }
func (s *MatchStmt) Span() token.Span  { return s.Sp }
func (s *ExprStmt) Span() token.Span   { return s.Sp }
func (s *StyleStmt) Span() token.Span  { return s.Sp }

func (*LetStmt) stmtNode()    {}
func (*AssignStmt) stmtNode() {}
func (*ReturnStmt) stmtNode() {}
func (*IfStmt) stmtNode()     {}
func (*MatchStmt) stmtNode()  {}
func (*ExprStmt) stmtNode()   {}
func (*StyleStmt) stmtNode()  {}
func (*Block) stmtNode()      {}

// ──────────────────────────────── patterns ───────────────────────────────────

type Pattern interface {
	Node
	patternNode()
}

type WildcardPattern struct {
	Sp token.Span
}

type BindingPattern struct {
	Name string
	Sp   token.Span
}

type LiteralPattern struct {
	Value Expr // IntLit, FloatLit, StringLit or BoolLit
	Sp    token.Span
}

// VariantPattern matches an enum variant: Color::Red or Shape::Circle(r).
type VariantPattern struct {
	Enum    string
	Variant string
	Binds   []Pattern
	Sp      token.Span
}

func (p *WildcardPattern) Span() token.Span { return p.Sp }
func (p *BindingPattern) Span() token.Span  { return p.Sp }
func (p *LiteralPattern) Span() token.Span  { return p.Sp }
func (p *VariantPattern) Span() token.Span  { return p.Sp }

func (*WildcardPattern) patternNode() {}
func (*BindingPattern) patternNode()  {}
func (*LiteralPattern) patternNode()  {}
func (*VariantPattern) patternNode()  {}

// ─────────────────────────────── expressions ─────────────────────────────────

type IntLit struct {
	Value int64
	Sp    token.Span
}

type FloatLit struct {
	Text string // kept verbatim to preserve precision in output
	Sp   token.Span
}

type StringLit struct {
	Value string
	Sp    token.Span
}

type BoolLit struct {
	Value bool
	Sp    token.Span
}

type Identifier struct {
	Name string
	Sp   token.Span
}

type BinaryExpr struct {
	Op    token.Kind
	Left  Expr
	Right Expr
	Sp    token.Span
}

type UnaryExpr struct {
	Op token.Kind // Minus or Bang
	X  Expr
	Sp token.Span
}

type CallExpr struct {
	Callee Expr
	Args   []Expr
	Sp     token.Span
}

type FieldAccess struct {
	X     Expr
	Field string
	Sp    token.Span
}

type Closure struct {
	Params []Param // types optional on closure params
	Body   Expr    // expression body; a *BlockExpr for statement bodies
	Sp     token.Span
}

// BlockExpr wraps a block in expression position (closure bodies, match arms).
type BlockExpr struct {
	Block *Block
	Sp    token.Span
}

// StructLit constructs a struct value: Point { x: 1, y: 2 }.
type StructLit struct {
	Name   string
	Fields []StructLitField
	Sp     token.Span
}

type StructLitField struct {
	Name  string
	Value Expr
	Sp    token.Span
}

// MarkupAttr is one name=value pair on a markup element. A bare name has a
// BoolLit(true) value; Quoted reports whether the value was a plain string.
type MarkupAttr struct {
	Name   string
	Value  Expr
	Quoted bool
	Sp     token.Span
}

// MarkupElement is <tag attr=...>children</tag> or <tag ... />.
type MarkupElement struct {
	Tag        string
	Attrs      []MarkupAttr
	Children   []Expr // MarkupElement, MarkupText, or embedded expressions
	SelfClosed bool
	Sp         token.Span
}

// MarkupFragment is a sequence of sibling markup nodes with no enclosing tag.
type MarkupFragment struct {
	Children []Expr
	Sp       token.Span
}

// MarkupText is literal text between tags.
type MarkupText struct {
	Text string
	Sp   token.Span
}

func (e *IntLit) Span() token.Span         { return e.Sp }
func (e *FloatLit) Span() token.Span       { return e.Sp }
func (e *StringLit) Span() token.Span      { return e.Sp }
func (e *BoolLit) Span() token.Span        { return e.Sp }
func (e *Identifier) Span() token.Span     { return e.Sp }
func (e *BinaryExpr) Span() token.Span     { return e.Sp }
func (e *UnaryExpr) Span() token.Span      { return e.Sp }
func (e *CallExpr) Span() token.Span       { return e.Sp }
func (e *FieldAccess) Span() token.Span    { return e.Sp }
func (e *Closure) Span() token.Span        { return e.Sp }
func (e *StructLit) Span() token.Span      { return e.Sp }
func (e *BlockExpr) Span() token.Span      { return e.Sp }
func (e *MarkupElement) Span() token.Span  { return e.Sp }
func (e *MarkupFragment) Span() token.Span { return e.Sp }
func (e *MarkupText) Span() token.Span     { return e.Sp }

func (*IntLit) exprNode()         {}
func (*FloatLit) exprNode()       {}
func (*StringLit) exprNode()      {}
func (*BoolLit) exprNode()        {}
func (*Identifier) exprNode()     {}
func (*BinaryExpr) exprNode()     {}
func (*UnaryExpr) exprNode()      {}
func (*CallExpr) exprNode()       {}
func (*FieldAccess) exprNode()    {}
func (*Closure) exprNode()        {}
func (*StructLit) exprNode()      {}
func (*BlockExpr) exprNode()      {}
func (*MarkupElement) exprNode()  {}
func (*MarkupFragment) exprNode() {}
func (*MarkupText) exprNode()     {}

// IsEventHandler reports whether the attribute follows the on* handler naming
// convention (onClick, onInput, ...).
func (a MarkupAttr) IsEventHandler() bool {
	return len(a.Name) > 2 && a.Name[0] == 'o' && a.Name[1] == 'n' && a.Name[2] >= 'A' && a.Name[2] <= 'Z'
}
