// # internal/types/types_test.go
package types

import "testing"

func TestEqual_Structural(t *testing.T) {
	if !Equal(Signal(Int), Signal(Int)) {
		t.Error("Signal<Int> should equal Signal<Int>")
	}
	if Equal(Signal(Int), Signal(Float)) {
		t.Error("Signal<Int> should not equal Signal<Float>")
	}
	if !Equal(Result(Int, String), Result(Int, String)) {
		t.Error("Result<Int, String> should equal itself structurally")
	}
	if Equal(Named("Point"), Named("Shape")) {
		t.Error("Distinct named types should not be equal")
	}
	if !Equal(Function([]*Type{Int, Int}, Int), Function([]*Type{Int, Int}, Int)) {
		t.Error("Identical function shapes should be equal")
	}
	if Equal(Function([]*Type{Int}, Int), Function([]*Type{Int, Int}, Int)) {
		t.Error("Different arities should not be equal")
	}
}

func TestEqual_UnknownEqualsNothing(t *testing.T) {
	if Equal(Unknown, Unknown) {
		t.Error("Unknown must not equal itself")
	}
	if Equal(Unknown, Int) || Equal(Int, Unknown) {
		t.Error("Unknown must not equal a concrete type")
	}
}

func TestUnifies_UnknownAbsorbs(t *testing.T) {
	if !Unifies(Unknown, Int) || !Unifies(Int, Unknown) {
		t.Error("Unknown must unify with anything")
	}
	if !Unifies(Unknown, Unknown) {
		t.Error("Unknown must unify with Unknown")
	}
	if Unifies(Int, String) {
		t.Error("Int must not unify with String")
	}
}

func TestUnifies_ReactiveReads(t *testing.T) {
	// Reads of a signal or computed see the tracked value.
	if !Unifies(Int, Signal(Int)) {
		t.Error("Signal<Int> should stand where Int is expected")
	}
	if !Unifies(Signal(Int), Int) {
		t.Error("Int should satisfy an expected Signal<Int> read")
	}
	if !Unifies(Int, Computed(Int)) {
		t.Error("Computed<Int> should stand where Int is expected")
	}
	if Unifies(Int, Signal(String)) {
		t.Error("Signal<String> must not satisfy Int")
	}
}

func TestString_Rendering(t *testing.T) {
	cases := []struct {
		in   *Type
		want string
	}{
		{Int, "Int"},
		{Unknown, "?"},
		{Signal(Int), "Signal<Int>"},
		{Computed(Bool), "Computed<Bool>"},
		{Option(String), "Option<String>"},
		{Result(Int, String), "Result<Int, String>"},
		{Array(Float), "Array<Float>"},
		{Function([]*Type{Int, String}, Bool), "fn(Int, String) -> Bool"},
		{Named("Point"), "Point"},
	}
	for _, c := range cases {
		if got := c.in.String(); got != c.want {
			t.Errorf("Expected %q, got %q", c.want, got)
		}
	}
}

func TestPredicates(t *testing.T) {
	if !Signal(Int).IsReactive() || !Computed(Int).IsReactive() {
		t.Error("Signal and Computed are reactive")
	}
	if Int.IsReactive() {
		t.Error("Int is not reactive")
	}
	if !Int.IsNumeric() || !Float.IsNumeric() {
		t.Error("Int and Float are numeric")
	}
	if Bool.IsNumeric() {
		t.Error("Bool is not numeric")
	}
	var nilType *Type
	if !nilType.IsUnknown() {
		t.Error("nil type counts as Unknown")
	}
}
