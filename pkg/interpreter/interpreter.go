package interpreter

import (
	"fmt"

	"github.com/kartiknair/math/pkg/ast"
)

type ErrorKind int

const (
	InputArity ErrorKind = iota
	UndefinedVariable
	UndefinedFunction
	CallArity
	DivisionByZero
	UndefinedOutput
)

// Error is a runtime evaluation failure. Kind tags which rule of the
// language was violated so callers can branch without string matching.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func errorf(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

type machine struct {
	fns map[ast.Name]*ast.FnDefinition
}

// Execute runs the program over the given input values and returns the
// output values in declaration order. Statements evaluate top to
// bottom; a function application resolves its callee at the moment of
// the call, so redefinition shadows for every later call.
func Execute(program *ast.Program, inputs []int64) ([]int64, error) {
	if len(inputs) != len(program.Inputs) {
		return nil, errorf(
			InputArity,
			"Expected %d inputs but got %d.",
			len(program.Inputs), len(inputs),
		)
	}

	env := make(map[ast.Name]int64, len(program.Inputs))
	for i, name := range program.Inputs {
		env[name] = inputs[i]
	}

	m := &machine{fns: make(map[ast.Name]*ast.FnDefinition)}

	for _, statement := range program.Statements {
		switch s := statement.(type) {
		case *ast.VarAssignment:
			value, err := m.evaluate(s.Value, env)
			if err != nil {
				return nil, err
			}
			env[s.Name] = value
		case *ast.FnDefinition:
			m.fns[s.Name] = s
		}
	}

	outputs := make([]int64, len(program.Outputs))
	for i, name := range program.Outputs {
		value, ok := env[name]
		if !ok {
			return nil, errorf(UndefinedOutput, "Output `%s` is never assigned.", name)
		}
		outputs[i] = value
	}

	return outputs, nil
}

func (m *machine) evaluate(e ast.Expression, env map[ast.Name]int64) (int64, error) {
	switch e := e.(type) {
	case *ast.I64:
		return e.Value, nil
	case *ast.Group:
		return m.evaluate(e.Expression, env)
	case *ast.VarSubstitution:
		value, ok := env[e.Name]
		if !ok {
			return 0, errorf(UndefinedVariable, "Undefined variable `%s`.", e.Name)
		}
		return value, nil
	case *ast.Operation:
		return m.evaluateOperation(e, env)
	case *ast.FnApplication:
		return m.apply(e, env)
	case *ast.Match:
		return m.evaluateMatch(e, env)
	}

	panic("Invalid expression.")
}

func (m *machine) evaluateOperation(o *ast.Operation, env map[ast.Name]int64) (int64, error) {
	left, err := m.evaluate(o.Left, env)
	if err != nil {
		return 0, err
	}
	right, err := m.evaluate(o.Right, env)
	if err != nil {
		return 0, err
	}

	switch o.Operator {
	case ast.Subtract:
		return left - right, nil
	case ast.Add:
		return left + right, nil
	case ast.Divide:
		if right == 0 {
			return 0, errorf(DivisionByZero, "Division by zero.")
		}
		return left / right, nil
	case ast.Multiply:
		return left * right, nil
	}

	panic("Invalid operator.")
}

// apply evaluates the arguments in the caller's environment and the
// body in a fresh environment holding only the parameters. Function
// bodies never see caller variables.
func (m *machine) apply(app *ast.FnApplication, env map[ast.Name]int64) (int64, error) {
	fn, ok := m.fns[app.Name]
	if !ok {
		return 0, errorf(UndefinedFunction, "Undefined function `%s`.", app.Name)
	}
	if len(app.Arguments) != len(fn.Parameters) {
		return 0, errorf(
			CallArity,
			"Function `%s` expects %d arguments but got %d.",
			fn.Name, len(fn.Parameters), len(app.Arguments),
		)
	}

	callEnv := make(map[ast.Name]int64, len(fn.Parameters))
	for i, param := range fn.Parameters {
		value, err := m.evaluate(app.Arguments[i], env)
		if err != nil {
			return 0, err
		}
		callEnv[param] = value
	}

	return m.evaluate(fn.Body, callEnv)
}

// evaluateMatch evaluates the subject once, then each matcher in
// clause order until one is equal. Only the chosen clause's result
// expression is evaluated.
func (m *machine) evaluateMatch(match *ast.Match, env map[ast.Name]int64) (int64, error) {
	with, err := m.evaluate(match.With, env)
	if err != nil {
		return 0, err
	}

	for _, clause := range match.Clauses {
		matcher, err := m.evaluate(clause.Matcher.Value, env)
		if err != nil {
			return 0, err
		}
		if matcher == with {
			return m.evaluate(clause.Expression, env)
		}
	}

	return m.evaluate(match.Default, env)
}
