// # internal/types/types.go
//
// The resolved type lattice. Types are structural: two types are equal iff
// their shapes match after resolving named references. Unknown is the
// error-recovery sentinel; it unifies with everything so one type error does
// not fan out into dozens, and it must never survive into generated code.
package types

import "strings"

type Kind int

const (
	KindUnknown Kind = iota
	KindInt
	KindFloat
	KindBool
	KindString
	KindUnit
	KindNamed
	KindFunction
	KindOption
	KindResult
	KindArray
	KindSignal
	KindComputed
	KindComponent
)

type Type struct {
	Kind   Kind
	Name   string  // KindNamed: struct/enum name
	Args   []*Type // KindNamed generic args; KindOption/KindResult/KindArray element(s)
	Params []*Type // KindFunction
	Return *Type   // KindFunction
	Inner  *Type   // KindSignal/KindComputed: the tracked value type
}

var (
	Unknown = &Type{Kind: KindUnknown}
	Int     = &Type{Kind: KindInt}
	Float   = &Type{Kind: KindFloat}
	Bool    = &Type{Kind: KindBool}
	String  = &Type{Kind: KindString}
	Unit    = &Type{Kind: KindUnit}
)

func Named(name string, args ...*Type) *Type {
	return &Type{Kind: KindNamed, Name: name, Args: args}
}

func Function(params []*Type, ret *Type) *Type {
	return &Type{Kind: KindFunction, Params: params, Return: ret}
}

func Option(t *Type) *Type { return &Type{Kind: KindOption, Args: []*Type{t}} }

func Result(ok, err *Type) *Type { return &Type{Kind: KindResult, Args: []*Type{ok, err}} }

func Array(t *Type) *Type { return &Type{Kind: KindArray, Args: []*Type{t}} }

func Signal(t *Type) *Type { return &Type{Kind: KindSignal, Inner: t} }

func Computed(t *Type) *Type { return &Type{Kind: KindComputed, Inner: t} }

func Component() *Type { return &Type{Kind: KindComponent} }

func (t *Type) IsUnknown() bool { return t == nil || t.Kind == KindUnknown }

func (t *Type) IsNumeric() bool { return t.Kind == KindInt || t.Kind == KindFloat }

// IsReactive reports whether reads of the type are tracked.
func (t *Type) IsReactive() bool { return t.Kind == KindSignal || t.Kind == KindComputed }

// Equal is structural equality. Unknown is equal to nothing, including
// itself; use Unifies for error-tolerant comparison.
func Equal(a, b *Type) bool {
	if a == nil || b == nil || a.IsUnknown() || b.IsUnknown() {
		return false
	}
	if a.Kind != b.Kind || a.Name != b.Name {
		return false
	}
	if len(a.Args) != len(b.Args) || len(a.Params) != len(b.Params) {
		return false
	}
	for i := range a.Args {
		if !Equal(a.Args[i], b.Args[i]) {
			return false
		}
	}
	for i := range a.Params {
		if !Equal(a.Params[i], b.Params[i]) {
			return false
		}
	}
	if (a.Return == nil) != (b.Return == nil) {
		return false
	}
	if a.Return != nil && !Equal(a.Return, b.Return) {
		return false
	}
	if (a.Inner == nil) != (b.Inner == nil) {
		return false
	}
	if a.Inner != nil && !Equal(a.Inner, b.Inner) {
		return false
	}
	return true
}

// Unifies reports whether a value of type b can stand where a is expected.
// Unknown absorbs both sides so diagnostics do not cascade.
func Unifies(a, b *Type) bool {
	if a.IsUnknown() || b.IsUnknown() {
		return true
	}
	// A signal or computed read unifies with its inner type: markup slots and
	// expressions read the tracked value, not the container.
	if a.IsReactive() {
		return Unifies(a.Inner, b)
	}
	if b.IsReactive() {
		return Unifies(a, b.Inner)
	}
	return Equal(a, b)
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case KindUnknown:
		return "?"
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	case KindBool:
		return "Bool"
	case KindString:
		return "String"
	case KindUnit:
		return "Unit"
	case KindNamed:
		if len(t.Args) == 0 {
			return t.Name
		}
		parts := make([]string, len(t.Args))
		for i, a := range t.Args {
			parts[i] = a.String()
		}
		return t.Name + "<" + strings.Join(parts, ", ") + ">"
	case KindFunction:
		parts := make([]string, len(t.Params))
		for i, p := range t.Params {
			parts[i] = p.String()
		}
		ret := "Unit"
		if t.Return != nil {
			ret = t.Return.String()
		}
		return "fn(" + strings.Join(parts, ", ") + ") -> " + ret
	case KindOption:
		return "Option<" + t.Args[0].String() + ">"
	case KindResult:
		return "Result<" + t.Args[0].String() + ", " + t.Args[1].String() + ">"
	case KindArray:
		return "Array<" + t.Args[0].String() + ">"
	case KindSignal:
		return "Signal<" + t.Inner.String() + ">"
	case KindComputed:
		return "Computed<" + t.Inner.String() + ">"
	case KindComponent:
		return "Component"
	}
	return "?"
}
