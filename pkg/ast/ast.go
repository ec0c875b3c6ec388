package ast

import (
	"fmt"
	"strings"
)

// ReservedNames are the identifiers that can never be used as a
// variable or function name. ReservedNameBytes are the bytes that can
// never appear inside a name. The lexer consumes both when validating
// identifiers.
var ReservedNames = [...]string{"inputs", "outputs", "if", "match", "_"}

var ReservedNameBytes = [...]byte{'=', '(', ')', '{', '}', ',', ';'}

// Name is an identifier: a lowercase letter followed by lowercase
// letters and underscores.
type Name string

func (n Name) Valid() bool {
	if len(n) == 0 {
		return false
	}

	for _, r := range ReservedNames {
		if string(n) == r {
			return false
		}
	}

	for i := 0; i < len(n); i++ {
		c := n[i]
		if c >= 'a' && c <= 'z' {
			continue
		}
		if c == '_' && i > 0 {
			continue
		}
		return false
	}

	return true
}

func (n Name) String() string {
	return string(n)
}

// Program is the root of the tree: named inputs, a statement sequence,
// and named outputs. The order of Inputs defines positional binding to
// runtime argument values; the order of Outputs defines the order
// values are returned or printed. A Program is built once by the
// parser (or a generator) and never mutated.
type Program struct {
	Inputs     []Name
	Statements []Statement
	Outputs    []Name
}

func (p *Program) String() string {
	var b strings.Builder

	b.WriteString("inputs")
	if len(p.Inputs) > 0 {
		b.WriteString(" " + joinNames(p.Inputs))
	}
	b.WriteString(";\n")

	for _, s := range p.Statements {
		b.WriteString(s.String())
		b.WriteString("\n")
	}

	b.WriteString("outputs")
	if len(p.Outputs) > 0 {
		b.WriteString(" " + joinNames(p.Outputs))
	}
	b.WriteString(";")

	return b.String()
}

func joinNames(names []Name) string {
	strs := make([]string, len(names))
	for i, n := range names {
		strs[i] = string(n)
	}
	return strings.Join(strs, ", ")
}

type Statement interface {
	isStatement()
	String() string
}

// VarAssignment binds the value of an expression to a name in the
// enclosing scope. Later statements may reference or shadow it.
type VarAssignment struct {
	Name  Name
	Value Expression
}

// FnDefinition declares a named function. The body may reference only
// the function's own parameters (and other functions); it never sees
// assignment-scope variables.
type FnDefinition struct {
	Name       Name
	Parameters []Name
	Body       Expression
}

func (*VarAssignment) isStatement() {}
func (*FnDefinition) isStatement()  {}

func (v *VarAssignment) String() string {
	return fmt.Sprintf("%s = %s;", v.Name, v.Value)
}

func (f *FnDefinition) String() string {
	params := make([]string, len(f.Parameters))
	for i, p := range f.Parameters {
		params[i] = string(p)
	}
	return fmt.Sprintf("%s(%s) = %s;", f.Name, strings.Join(params, ", "), f.Body)
}

// Expression is either an Operand or a binary Operation. Expressions
// are owned trees; no sharing or cycles.
type Expression interface {
	isExpression()
	String() string
}

// Operand is the leaf category of Expression: an integer literal, a
// parenthesized group, a variable read, a function application, or a
// match.
type Operand interface {
	Expression
	isOperand()
}

type Operation struct {
	Operator Operator
	Left     Expression
	Right    Expression
}

type I64 struct {
	Value int64
}

// Group is a parenthesized sub-expression. It is semantically
// transparent and exists only so rendering round-trips.
type Group struct {
	Expression Expression
}

type VarSubstitution struct {
	Name Name
}

type FnApplication struct {
	Name      Name
	Arguments []Expression
}

// Match evaluates With once, scans Clauses in order, and produces the
// expression paired with the first matcher equal to With's value, or
// Default if none match. Exactly one default arm exists; the parser
// enforces that.
type Match struct {
	With    Expression
	Clauses []MatchClause
	Default Expression
}

type MatchClause struct {
	Matcher    Matcher
	Expression Expression
}

// Matcher is a single comparison arm of a match: an expression
// compared by value equality against the match subject.
type Matcher struct {
	Value Expression
}

func (*Operation) isExpression()       {}
func (*I64) isExpression()             {}
func (*Group) isExpression()           {}
func (*VarSubstitution) isExpression() {}
func (*FnApplication) isExpression()   {}
func (*Match) isExpression()           {}

func (*I64) isOperand()             {}
func (*Group) isOperand()           {}
func (*VarSubstitution) isOperand() {}
func (*FnApplication) isOperand()   {}
func (*Match) isOperand()           {}

func (o *Operation) String() string {
	return fmt.Sprintf(
		"%s %s %s",
		renderSide(o.Left, o.Operator),
		o.Operator,
		renderSide(o.Right, o.Operator),
	)
}

// A nested operation is parenthesized only when its operator binds
// strictly looser than its parent's. This is the inverse of the
// parser's precedence resolution, which makes String a parse-inverse.
func renderSide(e Expression, parent Operator) string {
	if inner, ok := e.(*Operation); ok && inner.Operator < parent {
		return "(" + inner.String() + ")"
	}
	return e.String()
}

func (i *I64) String() string {
	return fmt.Sprintf("%d", i.Value)
}

func (g *Group) String() string {
	return fmt.Sprintf("(%s)", g.Expression)
}

func (v *VarSubstitution) String() string {
	return string(v.Name)
}

func (f *FnApplication) String() string {
	args := make([]string, len(f.Arguments))
	for i, a := range f.Arguments {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", f.Name, strings.Join(args, ", "))
}

func (m *Match) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "match %s { ", m.With)
	for _, c := range m.Clauses {
		fmt.Fprintf(&b, "%s => %s, ", c.Matcher.Value, c.Expression)
	}
	fmt.Fprintf(&b, "_ => %s, }", m.Default)
	return b.String()
}

// Operator is the closed set of binary operators. The declaration
// order is the total precedence order used by both parsing and
// rendering: Subtract binds loosest, Multiply tightest. The order is a
// property of the language, not conventional arithmetic.
type Operator int

const (
	Subtract Operator = iota
	Add
	Divide
	Multiply
)

func (o Operator) Precedence() int {
	return int(o)
}

func (o Operator) String() string {
	switch o {
	case Subtract:
		return "-"
	case Add:
		return "+"
	case Divide:
		return "/"
	case Multiply:
		return "*"
	}

	panic("Invalid operator.")
}
