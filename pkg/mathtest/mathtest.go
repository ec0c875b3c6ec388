// Package mathtest generates random valid programs for property
// tests. Generated trees always satisfy the render/parse round trip:
// an operation child that rendering would need to parenthesize is
// wrapped in an explicit Group instead.
package mathtest

import (
	"math/rand"

	"github.com/kartiknair/math/pkg/ast"
)

const maxLevel = 3

type fnInfo struct {
	name  ast.Name
	arity int
}

type Generator struct {
	rand *rand.Rand
	size int

	scope []ast.Name
	fns   []fnInfo
	used  map[ast.Name]bool
}

// NewGenerator returns a deterministic generator. size bounds the
// number of inputs and statements and the breadth of expressions.
func NewGenerator(seed int64, size int) *Generator {
	return &Generator{
		rand: rand.New(rand.NewSource(seed)),
		size: size,
	}
}

// Program generates a fresh valid program: every referenced variable
// is assigned beforehand, every called function is defined beforehand
// with matching arity, and no function calls itself.
func (g *Generator) Program() *ast.Program {
	g.scope = nil
	g.fns = nil
	g.used = make(map[ast.Name]bool)

	program := &ast.Program{}

	for i := g.rand.Intn(g.size + 1); i > 0; i-- {
		name := g.freshName()
		program.Inputs = append(program.Inputs, name)
		g.scope = append(g.scope, name)
	}

	for i := 1 + g.rand.Intn(g.size); i > 0; i-- {
		program.Statements = append(program.Statements, g.statement())
	}

	outputs := make([]ast.Name, len(g.scope))
	copy(outputs, g.scope)
	g.rand.Shuffle(len(outputs), func(i, j int) {
		outputs[i], outputs[j] = outputs[j], outputs[i]
	})
	if n := g.rand.Intn(len(outputs) + 1); n > 0 {
		program.Outputs = outputs[:n]
	}

	return program
}

func (g *Generator) statement() ast.Statement {
	if g.rand.Intn(4) == 0 {
		return g.fnDefinition()
	}
	return g.varAssignment()
}

func (g *Generator) varAssignment() ast.Statement {
	value := g.expression(0)

	// reuse an existing name now and then so shadowing is covered.
	if len(g.scope) > 0 && g.rand.Intn(4) == 0 {
		return &ast.VarAssignment{
			Name:  g.scope[g.rand.Intn(len(g.scope))],
			Value: value,
		}
	}

	name := g.freshName()
	g.scope = append(g.scope, name)
	return &ast.VarAssignment{Name: name, Value: value}
}

// fnDefinition generates the body in a scope holding only the
// parameters, with the function itself not yet callable, so generated
// programs never recurse.
func (g *Generator) fnDefinition() ast.Statement {
	name := g.freshName()

	params := make([]ast.Name, 1+g.rand.Intn(3))
	for i := range params {
		params[i] = g.freshName()
	}

	outerScope := g.scope
	g.scope = params
	body := g.expression(0)
	g.scope = outerScope

	g.fns = append(g.fns, fnInfo{name: name, arity: len(params)})
	return &ast.FnDefinition{Name: name, Parameters: params, Body: body}
}

func (g *Generator) expression(level int) ast.Expression {
	if level >= maxLevel || g.rand.Intn(2) == 0 {
		return g.leaf()
	}

	switch g.rand.Intn(4) {
	case 0:
		return g.operation(level)
	case 1:
		return &ast.Group{Expression: g.expression(level + 1)}
	case 2:
		if len(g.fns) > 0 {
			return g.application(level)
		}
		return g.leaf()
	default:
		return g.match(level)
	}
}

func (g *Generator) leaf() ast.Expression {
	if len(g.scope) > 0 && g.rand.Intn(2) == 0 {
		return &ast.VarSubstitution{Name: g.scope[g.rand.Intn(len(g.scope))]}
	}
	return &ast.I64{Value: int64(g.rand.Intn(201) - 100)}
}

// operation wraps a child in a Group whenever rendering would have to
// parenthesize it (left child binding looser, right child binding no
// tighter), keeping the tree a fixed point of render-then-parse.
func (g *Generator) operation(level int) ast.Expression {
	op := ast.Operator(g.rand.Intn(4))
	left := g.expression(level + 1)
	right := g.expression(level + 1)

	if inner, ok := left.(*ast.Operation); ok && inner.Operator < op {
		left = &ast.Group{Expression: left}
	}
	if inner, ok := right.(*ast.Operation); ok && inner.Operator <= op {
		right = &ast.Group{Expression: right}
	}

	return &ast.Operation{Operator: op, Left: left, Right: right}
}

func (g *Generator) application(level int) ast.Expression {
	fn := g.fns[g.rand.Intn(len(g.fns))]

	args := make([]ast.Expression, fn.arity)
	for i := range args {
		args[i] = g.expression(level + 1)
	}

	return &ast.FnApplication{Name: fn.name, Arguments: args}
}

func (g *Generator) match(level int) ast.Expression {
	clauses := make([]ast.MatchClause, 1+g.rand.Intn(3))
	for i := range clauses {
		clauses[i] = ast.MatchClause{
			Matcher:    ast.Matcher{Value: g.expression(level + 1)},
			Expression: g.expression(level + 1),
		}
	}

	return &ast.Match{
		With:    g.expression(level + 1),
		Clauses: clauses,
		Default: g.expression(level + 1),
	}
}

func (g *Generator) freshName() ast.Name {
	letters := "abcdefghijklmnopqrstuvwxyz"

	for {
		b := make([]byte, 1+g.rand.Intn(4))
		for i := range b {
			b[i] = letters[g.rand.Intn(len(letters))]
		}

		name := ast.Name(b)
		if name.Valid() && !g.used[name] {
			g.used[name] = true
			return name
		}
	}
}
