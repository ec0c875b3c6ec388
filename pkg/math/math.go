package math

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/kartiknair/math/pkg/analyzer"
	"github.com/kartiknair/math/pkg/gen"
	"github.com/kartiknair/math/pkg/interpreter"
	"github.com/kartiknair/math/pkg/parser"
)

// Domain names the stage an error was raised in.
type Domain int

const (
	DomainParse Domain = iota
	DomainInterpreter
	DomainCompiler
)

func (d Domain) String() string {
	switch d {
	case DomainParse:
		return "parse"
	case DomainInterpreter:
		return "interpreter"
	case DomainCompiler:
		return "compiler"
	}

	panic("Invalid domain.")
}

// Error wraps a stage error with the domain that raised it.
type Error struct {
	Domain Domain
	Err    error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Interpret parses the source and evaluates it over the given inputs.
func Interpret(source []byte, inputs []int64) ([]int64, error) {
	program, err := parser.Parse(source)
	if err != nil {
		return nil, &Error{Domain: DomainParse, Err: err}
	}

	outputs, err := interpreter.Execute(program, inputs)
	if err != nil {
		return nil, &Error{Domain: DomainInterpreter, Err: err}
	}

	return outputs, nil
}

// Compile parses, analyzes, and lowers the source to LLVM IR. The IR
// text is always returned; when outPath is non-empty it is also linked
// into a native executable with the system C compiler (clang, or
// whatever MATHC_CC names).
func Compile(source []byte, outPath string) (string, error) {
	program, err := parser.Parse(source)
	if err != nil {
		return "", &Error{Domain: DomainParse, Err: err}
	}

	if err := analyzer.Analyze(program); err != nil {
		return "", &Error{Domain: DomainCompiler, Err: err}
	}

	ir := gen.LLVM(program)

	if outPath != "" {
		if err := linkExecutable(ir, outPath); err != nil {
			return ir, &Error{Domain: DomainCompiler, Err: err}
		}
	}

	return ir, nil
}

func linkExecutable(ir string, outPath string) error {
	cc := os.Getenv("MATHC_CC")
	if cc == "" {
		cc = "clang"
	}

	cmd := exec.Command(cc, "-x", "ir", "-o", outPath, "-")
	cmd.Stdin = strings.NewReader(ir)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("`%s` failed: %v\n%s", cc, err, stderr.String())
	}

	return nil
}
