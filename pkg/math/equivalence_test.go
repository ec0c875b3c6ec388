package math

import (
	"fmt"
	"math/rand"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/kartiknair/math/pkg/mathtest"
)

func requireCC(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath("clang"); err != nil {
		t.Skip("clang is not installed")
	}
}

func compileToBinary(t *testing.T, source []byte) string {
	t.Helper()

	bin := filepath.Join(t.TempDir(), "program")
	if _, err := Compile(source, bin); err != nil {
		t.Fatalf("compile failed: %v\nprogram:\n%s", err, source)
	}
	return bin
}

func runBinary(bin string, inputs []int64) (string, error) {
	args := make([]string, len(inputs))
	for i, value := range inputs {
		args[i] = strconv.FormatInt(value, 10)
	}

	out, err := exec.Command(bin, args...).Output()
	return string(out), err
}

func renderOutputs(outputs []int64) string {
	var b strings.Builder
	for _, value := range outputs {
		fmt.Fprintf(&b, "%d\n", value)
	}
	return b.String()
}

func TestCompiledScenarios(t *testing.T) {
	requireCC(t)

	scenarios := []struct {
		source string
		inputs []int64
		want   []int64
	}{
		{"inputs a; b = a + 2; outputs b;", []int64{3}, []int64{5}},
		{"inputs; f(x) = x * x; a = f(4); outputs a;", nil, []int64{16}},
		{
			"inputs n; fact(x) = match x { 0 => 1, _ => x * fact(x - 1), }; r = fact(n); outputs r;",
			[]int64{5},
			[]int64{120},
		},
		{"inputs a, b; outputs a, b;", []int64{7, -2}, []int64{7, -2}},
	}

	for _, scenario := range scenarios {
		bin := compileToBinary(t, []byte(scenario.source))

		out, err := runBinary(bin, scenario.inputs)
		if err != nil {
			t.Errorf("%q failed: %v", scenario.source, err)
			continue
		}
		if out != renderOutputs(scenario.want) {
			t.Errorf("%q printed %q, want %q", scenario.source, out, renderOutputs(scenario.want))
		}
	}
}

// malformed or miscounted arguments exit non-zero with no output.
func TestCompiledArgumentErrors(t *testing.T) {
	requireCC(t)

	bin := compileToBinary(t, []byte("inputs a; outputs a;"))

	for _, args := range [][]string{{}, {"1", "2"}, {"abc"}, {"12x"}, {""}} {
		out, err := exec.Command(bin, args...).Output()
		if err == nil {
			t.Errorf("args %q: expected a non-zero exit", args)
		}
		if len(out) != 0 {
			t.Errorf("args %q: expected no output, got %q", args, out)
		}
	}
}

func TestCompiledDivisionByZero(t *testing.T) {
	requireCC(t)

	bin := compileToBinary(t, []byte("inputs; r = 1 / 0; outputs r;"))

	out, err := exec.Command(bin).Output()
	if err == nil {
		t.Error("expected abnormal termination")
	}
	if len(out) != 0 {
		t.Errorf("expected no output, got %q", out)
	}
}

func TestCompiledDeterminism(t *testing.T) {
	requireCC(t)

	bin := compileToBinary(
		t,
		[]byte("inputs n; fact(x) = match x { 0 => 1, _ => x * fact(x - 1), }; r = fact(n); outputs r;"),
	)

	first, err := runBinary(bin, []int64{10})
	if err != nil {
		t.Fatal(err)
	}
	second, err := runBinary(bin, []int64{10})
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("repeated runs disagree: %q vs %q", first, second)
	}
}

// generated programs must behave identically under interpretation and
// native execution: same outputs, or failure on both paths.
func TestInterpreterCompilerEquivalence(t *testing.T) {
	requireCC(t)

	inputRand := rand.New(rand.NewSource(42))

	for size := 1; size <= 10; size++ {
		g := mathtest.NewGenerator(int64(size), size)

		for trial := 0; trial < 5; trial++ {
			program := g.Program()
			source := []byte(program.String())

			inputs := make([]int64, len(program.Inputs))
			for i := range inputs {
				inputs[i] = inputRand.Int63n(2001) - 1000
			}

			bin := compileToBinary(t, source)
			out, runErr := runBinary(bin, inputs)
			want, interpErr := Interpret(source, inputs)

			if interpErr != nil {
				if runErr == nil {
					t.Errorf(
						"interpreter failed (%v) but the compiled program succeeded\ninputs: %v\nprogram:\n%s",
						interpErr, inputs, source,
					)
				}
				continue
			}
			if runErr != nil {
				t.Errorf(
					"compiled program failed (%v) but interpretation succeeded\ninputs: %v\nprogram:\n%s",
					runErr, inputs, source,
				)
				continue
			}

			if out != renderOutputs(want) {
				t.Errorf(
					"outputs disagree for inputs %v\ninterpreter: %q\ncompiled:    %q\nprogram:\n%s",
					inputs, renderOutputs(want), out, source,
				)
			}
		}
	}
}
