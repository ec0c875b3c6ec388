package analyzer

import (
	"fmt"

	"github.com/kartiknair/math/pkg/ast"
)

// Error is a semantic problem found before code generation.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("analysis-error: %s", e.Message)
}

func errorf(format string, args ...interface{}) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

type analyzer struct {
	vars map[ast.Name]bool
	fns  map[ast.Name]*ast.FnDefinition
}

// Analyze checks name resolution and call arity against the scoping
// rules the generated code relies on: a name must be assigned before
// use, a call site binds to the function definition visible at its
// textual position, and function bodies see only their parameters.
func Analyze(program *ast.Program) error {
	a := &analyzer{
		vars: make(map[ast.Name]bool),
		fns:  make(map[ast.Name]*ast.FnDefinition),
	}

	for _, name := range program.Inputs {
		a.vars[name] = true
	}

	for _, statement := range program.Statements {
		switch s := statement.(type) {
		case *ast.VarAssignment:
			if err := a.checkExpression(s.Value, a.vars); err != nil {
				return err
			}
			a.vars[s.Name] = true
		case *ast.FnDefinition:
			// registered before the body is checked so the
			// function may call itself.
			a.fns[s.Name] = s

			scope := make(map[ast.Name]bool, len(s.Parameters))
			for _, param := range s.Parameters {
				scope[param] = true
			}
			if err := a.checkExpression(s.Body, scope); err != nil {
				return err
			}
		}
	}

	for _, name := range program.Outputs {
		if !a.vars[name] {
			return errorf("Output `%s` is never assigned.", name)
		}
	}

	return nil
}

func (a *analyzer) checkExpression(e ast.Expression, scope map[ast.Name]bool) error {
	switch e := e.(type) {
	case *ast.I64:
		return nil
	case *ast.Group:
		return a.checkExpression(e.Expression, scope)
	case *ast.VarSubstitution:
		if !scope[e.Name] {
			return errorf("Undefined variable `%s`.", e.Name)
		}
		return nil
	case *ast.Operation:
		if err := a.checkExpression(e.Left, scope); err != nil {
			return err
		}
		return a.checkExpression(e.Right, scope)
	case *ast.FnApplication:
		fn, ok := a.fns[e.Name]
		if !ok {
			return errorf("Undefined function `%s`.", e.Name)
		}
		if len(e.Arguments) != len(fn.Parameters) {
			return errorf(
				"Function `%s` expects %d arguments but got %d.",
				fn.Name, len(fn.Parameters), len(e.Arguments),
			)
		}
		for _, arg := range e.Arguments {
			if err := a.checkExpression(arg, scope); err != nil {
				return err
			}
		}
		return nil
	case *ast.Match:
		if err := a.checkExpression(e.With, scope); err != nil {
			return err
		}
		for _, clause := range e.Clauses {
			if err := a.checkExpression(clause.Matcher.Value, scope); err != nil {
				return err
			}
			if err := a.checkExpression(clause.Expression, scope); err != nil {
				return err
			}
		}
		return a.checkExpression(e.Default, scope)
	}

	panic("Invalid expression.")
}
