package parser

import (
	"fmt"
	"strconv"

	"github.com/kartiknair/math/pkg/ast"
	"github.com/kartiknair/math/pkg/lexer"
	"github.com/kartiknair/math/pkg/token"
)

// Error is a grammar violation at a source position.
type Error struct {
	Pos     token.Pos
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("parse-error: %d:%d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

type parser struct {
	tokens  []token.Token
	current int
}

func (p *parser) errorf(format string, args ...interface{}) *Error {
	return &Error{Pos: p.peek(0).Pos, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) peek(distance int) token.Token {
	if p.current+distance >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}

	return p.tokens[p.current+distance]
}

func (p *parser) isAtEnd() bool {
	return p.peek(0).Type == token.EOF
}

func (p *parser) advance() token.Token {
	if !p.isAtEnd() {
		p.current++
	}

	return p.tokens[p.current-1]
}

func (p *parser) check(typ token.TokenType) bool {
	return p.peek(0).Type == typ
}

func (p *parser) match(typ token.TokenType) bool {
	if p.check(typ) {
		p.advance()
		return true
	}

	return false
}

func (p *parser) expect(typ token.TokenType, message string) (token.Token, error) {
	if p.check(typ) {
		return p.advance(), nil
	}

	return token.Token{}, p.errorf("%s", message)
}

// shuntingYard resolves a flat operand/operator run into a tree using
// the operator total order. Reduction happens whenever the operator on
// top of the stack binds at least as tightly as the incoming one, which
// also makes equal operators left-associative.
type shuntingYard struct {
	operands  []ast.Expression
	operators []ast.Operator
}

func (y *shuntingYard) pushOperand(e ast.Expression) {
	y.operands = append(y.operands, e)
}

func (y *shuntingYard) pushOperator(op ast.Operator) {
	for len(y.operators) > 0 &&
		y.operators[len(y.operators)-1].Precedence() >= op.Precedence() {
		y.reduce()
	}

	y.operators = append(y.operators, op)
}

func (y *shuntingYard) reduce() {
	op := y.operators[len(y.operators)-1]
	y.operators = y.operators[:len(y.operators)-1]

	right := y.operands[len(y.operands)-1]
	left := y.operands[len(y.operands)-2]
	y.operands = y.operands[:len(y.operands)-2]

	y.operands = append(y.operands, &ast.Operation{
		Operator: op,
		Left:     left,
		Right:    right,
	})
}

func (y *shuntingYard) finish() ast.Expression {
	for len(y.operators) > 0 {
		y.reduce()
	}

	return y.operands[0]
}

func operatorForToken(typ token.TokenType) ast.Operator {
	switch typ {
	case token.MINUS:
		return ast.Subtract
	case token.PLUS:
		return ast.Add
	case token.SLASH:
		return ast.Divide
	case token.STAR:
		return ast.Multiply
	}

	panic("Invalid binary operator token.")
}

func (p *parser) expression() (ast.Expression, error) {
	var yard shuntingYard

	operand, err := p.operand()
	if err != nil {
		return nil, err
	}
	yard.pushOperand(operand)

	for p.peek(0).Type.IsBinaryOperator() {
		op := operatorForToken(p.advance().Type)

		operand, err := p.operand()
		if err != nil {
			return nil, err
		}

		yard.pushOperator(op)
		yard.pushOperand(operand)
	}

	return yard.finish(), nil
}

func (p *parser) operand() (ast.Expression, error) {
	switch p.peek(0).Type {
	case token.INT:
		lit := p.advance()
		value, err := strconv.ParseInt(lit.Lexeme, 10, 64)
		if err != nil {
			return nil, &Error{Pos: lit.Pos, Message: "Integer literal out of range."}
		}
		return &ast.I64{Value: value}, nil
	case token.MATCH:
		return p.matchExpression()
	case token.NAME:
		if p.peek(1).Type == token.LEFT_PAREN {
			return p.fnApplication()
		}
		return &ast.VarSubstitution{Name: ast.Name(p.advance().Lexeme)}, nil
	case token.LEFT_PAREN:
		p.advance()
		inner, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RIGHT_PAREN, "Expect `)` after expression."); err != nil {
			return nil, err
		}
		return &ast.Group{Expression: inner}, nil
	}

	return nil, p.errorf("Expect expression.")
}

func (p *parser) fnApplication() (ast.Expression, error) {
	name := p.advance()
	p.advance() // the `(`

	var args []ast.Expression
	if !p.check(token.RIGHT_PAREN) {
		for {
			arg, err := p.expression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)

			if !p.match(token.COMMA) {
				break
			}
		}
	}

	if _, err := p.expect(token.RIGHT_PAREN, "Expect `)` after arguments."); err != nil {
		return nil, err
	}

	return &ast.FnApplication{Name: ast.Name(name.Lexeme), Arguments: args}, nil
}

// matchExpression parses `match <expr> { <clauses> }`. The `_` clause
// may appear anywhere in the clause list but must appear exactly once.
func (p *parser) matchExpression() (ast.Expression, error) {
	p.advance() // the `match` keyword

	with, err := p.expression()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.LEFT_BRACE, "Expect `{` after match subject."); err != nil {
		return nil, err
	}

	var clauses []ast.MatchClause
	var def ast.Expression

	for !p.check(token.RIGHT_BRACE) && !p.isAtEnd() {
		if p.check(token.UNDERSCORE) {
			underscore := p.advance()
			if def != nil {
				return nil, &Error{
					Pos:     underscore.Pos,
					Message: "Expect a single `_` clause in a match.",
				}
			}
			if _, err := p.expect(token.FAT_ARROW, "Expect `=>` after matcher."); err != nil {
				return nil, err
			}
			if def, err = p.expression(); err != nil {
				return nil, err
			}
		} else {
			matcher, err := p.expression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.FAT_ARROW, "Expect `=>` after matcher."); err != nil {
				return nil, err
			}
			result, err := p.expression()
			if err != nil {
				return nil, err
			}
			clauses = append(clauses, ast.MatchClause{
				Matcher:    ast.Matcher{Value: matcher},
				Expression: result,
			})
		}

		if !p.match(token.COMMA) {
			break
		}
	}

	if _, err := p.expect(token.RIGHT_BRACE, "Expect `}` after match clauses."); err != nil {
		return nil, err
	}
	if def == nil {
		return nil, p.errorf("Expect a `_` clause in a match.")
	}

	return &ast.Match{With: with, Clauses: clauses, Default: def}, nil
}

func (p *parser) nameList() ([]ast.Name, error) {
	var names []ast.Name

	for {
		name, err := p.expect(token.NAME, "Expect a name.")
		if err != nil {
			return nil, err
		}
		names = append(names, ast.Name(name.Lexeme))

		if !p.match(token.COMMA) {
			return names, nil
		}
	}
}

func (p *parser) statement() (ast.Statement, error) {
	name := ast.Name(p.advance().Lexeme)

	if p.match(token.LEFT_PAREN) {
		var params []ast.Name
		if p.check(token.NAME) {
			var err error
			if params, err = p.nameList(); err != nil {
				return nil, err
			}
		}
		if _, err := p.expect(token.RIGHT_PAREN, "Expect `)` after parameters."); err != nil {
			return nil, err
		}
		if _, err := p.expect(token.EQUAL, "Expect `=` after function parameters."); err != nil {
			return nil, err
		}
		body, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.SEMICOLON, "Expect `;` after statement."); err != nil {
			return nil, err
		}
		return &ast.FnDefinition{Name: name, Parameters: params, Body: body}, nil
	}

	if _, err := p.expect(token.EQUAL, "Expect `=` after variable name."); err != nil {
		return nil, err
	}
	value, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON, "Expect `;` after statement."); err != nil {
		return nil, err
	}

	return &ast.VarAssignment{Name: name, Value: value}, nil
}

func (p *parser) program() (*ast.Program, error) {
	program := &ast.Program{}

	if _, err := p.expect(token.INPUTS, "Expect `inputs` at the start of a program."); err != nil {
		return nil, err
	}
	if p.check(token.NAME) {
		var err error
		if program.Inputs, err = p.nameList(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.SEMICOLON, "Expect `;` after inputs."); err != nil {
		return nil, err
	}

	for p.check(token.NAME) {
		statement, err := p.statement()
		if err != nil {
			return nil, err
		}
		program.Statements = append(program.Statements, statement)
	}

	if _, err := p.expect(token.OUTPUTS, "Expect `outputs` after statements."); err != nil {
		return nil, err
	}
	if p.check(token.NAME) {
		var err error
		if program.Outputs, err = p.nameList(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.SEMICOLON, "Expect `;` after outputs."); err != nil {
		return nil, err
	}
	if !p.isAtEnd() {
		return nil, p.errorf("Expect end of program after outputs.")
	}

	return program, nil
}

// Parse tokenizes and parses a complete program.
func Parse(source []byte) (*ast.Program, error) {
	tokens, err := lexer.Lex(string(source))
	if err != nil {
		return nil, err
	}

	p := parser{tokens: tokens}
	return p.program()
}

// ParseExpression parses a single expression, requiring that it spans
// the whole source.
func ParseExpression(source []byte) (ast.Expression, error) {
	tokens, err := lexer.Lex(string(source))
	if err != nil {
		return nil, err
	}

	p := parser{tokens: tokens}
	e, err := p.expression()
	if err != nil {
		return nil, err
	}
	if !p.isAtEnd() {
		return nil, p.errorf("Expect end of expression.")
	}

	return e, nil
}
