package token

type TokenType int

const (
	INT TokenType = iota
	NAME
	EOF

	KEYWORD_BEGIN
	INPUTS
	OUTPUTS
	IF
	MATCH
	UNDERSCORE
	KEYWORD_END

	EQUAL
	LEFT_PAREN
	RIGHT_PAREN
	LEFT_BRACE
	RIGHT_BRACE
	COMMA
	SEMICOLON
	FAT_ARROW

	binaryop_begin
	MINUS
	PLUS
	SLASH
	STAR
	binaryop_end
)

func (t TokenType) IsBinaryOperator() bool {
	return t > binaryop_begin && t < binaryop_end
}

// CanEndOperand reports whether a token of this type may be the final
// token of an operand. The lexer uses this to decide whether a `-`
// starts a negative integer literal or is the subtraction operator.
func (t TokenType) CanEndOperand() bool {
	return t == INT || t == NAME || t == RIGHT_PAREN || t == RIGHT_BRACE
}

type Token struct {
	Lexeme string
	Type   TokenType
	Pos    Pos
}

type Pos struct {
	Line   int
	Column int
}

var Keywords = [...]string{
	"inputs",
	"outputs",
	"if",
	"match",
	"_",
}
