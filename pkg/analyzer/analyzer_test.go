package analyzer

import (
	"strings"
	"testing"

	"github.com/kartiknair/math/pkg/parser"
)

func analyze(t *testing.T, source string) error {
	t.Helper()

	program, err := parser.Parse([]byte(source))
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", source, err)
	}
	return Analyze(program)
}

func expectValid(t *testing.T, source string) {
	t.Helper()

	if err := analyze(t, source); err != nil {
		t.Errorf("Analyze(%q) failed: %v", source, err)
	}
}

func expectInvalid(t *testing.T, source string, fragment string) {
	t.Helper()

	err := analyze(t, source)
	if err == nil {
		t.Errorf("Analyze(%q) succeeded, expected an error", source)
		return
	}
	if !strings.Contains(err.Error(), fragment) {
		t.Errorf("Analyze(%q) = %q, want mention of %q", source, err, fragment)
	}
}

func TestValidPrograms(t *testing.T) {
	expectValid(t, "inputs a; b = a + 2; outputs b;")
	expectValid(t, "inputs; f(x) = x * x; a = f(4); outputs a;")
	expectValid(t, "inputs a, b; outputs a, b;")
	expectValid(t, "inputs; outputs;")

	// recursion: a function is visible inside its own body.
	expectValid(t, "inputs n; fact(x) = match x { 0 => 1, _ => x * fact(x - 1), }; r = fact(n); outputs r;")
}

func TestUndefinedVariable(t *testing.T) {
	expectInvalid(t, "inputs; a = b; outputs a;", "Undefined variable `b`")
	expectInvalid(t, "inputs; a = b; b = 1; outputs a;", "Undefined variable `b`")
}

// function bodies are checked against their parameters only.
func TestFunctionScopeIsolation(t *testing.T) {
	expectInvalid(t, "inputs a; f(x) = x + a; r = f(1); outputs r;", "Undefined variable `a`")
}

// a call binds to the definition visible at its textual position, so
// calling forward is an error even though the interpreter would accept
// it when the call runs late enough.
func TestUndefinedFunction(t *testing.T) {
	expectInvalid(t, "inputs; a = f(1); outputs a;", "Undefined function `f`")
	expectInvalid(t, "inputs; a = f(1); f(x) = x; outputs a;", "Undefined function `f`")
}

func TestCallArity(t *testing.T) {
	expectInvalid(t, "inputs; f(x) = x; a = f(1, 2); outputs a;", "expects 1 arguments but got 2")
	expectInvalid(t, "inputs; f(x, y) = x + y; a = f(1); outputs a;", "expects 2 arguments but got 1")
}

func TestUndefinedOutput(t *testing.T) {
	expectInvalid(t, "inputs; a = 1; outputs b;", "Output `b` is never assigned")
	expectInvalid(t, "inputs; f(x) = x; outputs f;", "Output `f` is never assigned")
}
