package interpreter

import (
	"reflect"
	"testing"

	"github.com/kartiknair/math/pkg/parser"
)

func run(t *testing.T, source string, inputs []int64) ([]int64, error) {
	t.Helper()

	program, err := parser.Parse([]byte(source))
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", source, err)
	}
	return Execute(program, inputs)
}

func expectOutputs(t *testing.T, source string, inputs []int64, want []int64) {
	t.Helper()

	got, err := run(t, source, inputs)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Execute = %v, want %v", got, want)
	}
}

func expectError(t *testing.T, source string, inputs []int64, kind ErrorKind) {
	t.Helper()

	_, err := run(t, source, inputs)
	if err == nil {
		t.Fatal("Execute succeeded, expected an error")
	}
	ierr, ok := err.(*Error)
	if !ok {
		t.Fatalf("got %T, want *Error", err)
	}
	if ierr.Kind != kind {
		t.Errorf("got kind %d (%s), want %d", ierr.Kind, ierr.Message, kind)
	}
}

func TestAssignment(t *testing.T) {
	expectOutputs(t, "inputs a; b = a + 2; outputs b;", []int64{3}, []int64{5})
}

func TestFunctionApplication(t *testing.T) {
	expectOutputs(t, "inputs; f(x) = x * x; a = f(4); outputs a;", nil, []int64{16})
}

func TestRecursion(t *testing.T) {
	expectOutputs(
		t,
		"inputs n; fact(x) = match x { 0 => 1, _ => x * fact(x - 1), }; r = fact(n); outputs r;",
		[]int64{5},
		[]int64{120},
	)
}

// function resolution happens at the moment of the call, so mutually
// recursive definitions work regardless of their order.
func TestMutualRecursion(t *testing.T) {
	expectOutputs(
		t,
		`inputs n;
		is_even(x) = match x { 0 => 1, _ => is_odd(x - 1), };
		is_odd(x) = match x { 0 => 0, _ => is_even(x - 1), };
		r = is_even(n);
		outputs r;`,
		[]int64{7},
		[]int64{0},
	)
}

func TestPassthroughOrdering(t *testing.T) {
	expectOutputs(t, "inputs a, b; outputs a, b;", []int64{7, -2}, []int64{7, -2})
	expectOutputs(t, "inputs a, b; outputs b, a;", []int64{7, -2}, []int64{-2, 7})
}

func TestNoOutputs(t *testing.T) {
	expectOutputs(t, "inputs a; outputs;", []int64{1}, []int64{})
}

func TestMatchFirstMatchWins(t *testing.T) {
	expectOutputs(t, "inputs; r = match 5 { 5 => 1, 5 => 2, _ => 3, }; outputs r;", nil, []int64{1})
	expectOutputs(t, "inputs; r = match 6 { 5 => 1, _ => 3, }; outputs r;", nil, []int64{3})
}

// only the chosen clause's result is evaluated; an error in a clause
// that does not match never surfaces.
func TestMatchLaziness(t *testing.T) {
	expectOutputs(t, "inputs; r = match 1 { 1 => 2, 1 => 1 / 0, _ => 1 / 0, }; outputs r;", nil, []int64{2})
}

func TestVariableShadowing(t *testing.T) {
	expectOutputs(t, "inputs; a = 1; a = a + 1; outputs a;", nil, []int64{2})
}

// each application resolves the function table at call time, so a
// redefinition shadows for every later call but not earlier ones.
func TestFunctionShadowing(t *testing.T) {
	expectOutputs(
		t,
		"inputs; f(x) = x; a = f(1); f(x) = x + 1; b = f(1); outputs a, b;",
		nil,
		[]int64{1, 2},
	)
}

func TestOperatorSemantics(t *testing.T) {
	expectOutputs(t, "inputs; r = 7 / 2; outputs r;", nil, []int64{3})
	expectOutputs(t, "inputs; r = -7 / 2; outputs r;", nil, []int64{-3})
	expectOutputs(t, "inputs; r = 1 - 2 * 3; outputs r;", nil, []int64{-5})
	// + binds tighter than -.
	expectOutputs(t, "inputs; r = 10 - 2 + 3; outputs r;", nil, []int64{5})
}

func TestInputArity(t *testing.T) {
	expectError(t, "inputs a, b; outputs;", []int64{1}, InputArity)
	expectError(t, "inputs; outputs;", []int64{1}, InputArity)
}

func TestCallArity(t *testing.T) {
	expectError(t, "inputs; f(x) = x; a = f(1, 2); outputs a;", nil, CallArity)
}

func TestUndefinedNames(t *testing.T) {
	expectError(t, "inputs; a = b; outputs a;", nil, UndefinedVariable)
	expectError(t, "inputs; a = f(1); outputs a;", nil, UndefinedFunction)
	expectError(t, "inputs; a = 1; outputs b;", nil, UndefinedOutput)
}

// function bodies see their parameters and nothing else.
func TestFunctionScopeIsolation(t *testing.T) {
	expectError(t, "inputs a; f(x) = x + a; r = f(1); outputs r;", []int64{1}, UndefinedVariable)
}

func TestDivisionByZero(t *testing.T) {
	expectError(t, "inputs; r = 1 / 0; outputs r;", nil, DivisionByZero)
}

func TestDeterminism(t *testing.T) {
	source := "inputs n; fact(x) = match x { 0 => 1, _ => x * fact(x - 1), }; r = fact(n); outputs r;"

	first, err := run(t, source, []int64{10})
	if err != nil {
		t.Fatal(err)
	}
	second, err := run(t, source, []int64{10})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated runs disagree: %v vs %v", first, second)
	}
}
