package lexer

import (
	"fmt"

	"github.com/kartiknair/math/pkg/token"
)

// Error is a tokenization failure at a source position.
type Error struct {
	Pos     token.Pos
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("parse-error: %d:%d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

type Lexer struct {
	source    string
	start     int
	current   int
	line      int
	lineBegin int
	tokens    []token.Token
}

func (l *Lexer) errorf(format string, args ...interface{}) *Error {
	return &Error{
		Pos:     token.Pos{Line: l.line, Column: l.current - l.lineBegin},
		Message: fmt.Sprintf(format, args...),
	}
}

func (l *Lexer) isAtEnd() bool {
	return l.current >= len(l.source)
}

func (l *Lexer) advance() byte {
	l.current++
	return l.source[l.current-1]
}

func (l *Lexer) match(c byte) bool {
	if l.isAtEnd() {
		return false
	} else if l.source[l.current] == c {
		l.current++
		return true
	} else {
		return false
	}
}

func (l *Lexer) peek() byte {
	if l.isAtEnd() {
		return 0
	}

	return l.source[l.current]
}

func (l *Lexer) addToken(typ token.TokenType, lexeme string) {
	if lexeme == "" {
		lexeme = l.source[l.start:l.current]
	}

	l.tokens = append(l.tokens, token.Token{
		Lexeme: lexeme,
		Type:   typ,
		Pos:    token.Pos{Line: l.line, Column: l.current - l.lineBegin},
	})
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isNameStart(b byte) bool {
	return b >= 'a' && b <= 'z'
}

func isNameByte(b byte) bool {
	return isNameStart(b) || b == '_'
}

// lastCanEndOperand reports whether the previously emitted token could
// be the end of an operand. If it could, a following `-` is the
// subtraction operator; otherwise it starts a negative literal.
func (l *Lexer) lastCanEndOperand() bool {
	if len(l.tokens) == 0 {
		return false
	}
	return l.tokens[len(l.tokens)-1].Type.CanEndOperand()
}

func (l *Lexer) lexNumber() {
	for isDigit(l.peek()) {
		l.advance()
	}

	l.addToken(token.INT, "")
}

func (l *Lexer) lexIdent() {
	for isNameByte(l.peek()) {
		l.advance()
	}

	text := l.source[l.start:l.current]

	for i, kw := range token.Keywords {
		if kw == text {
			l.addToken(token.TokenType(int(token.KEYWORD_BEGIN)+i+1), text)
			return
		}
	}

	l.addToken(token.NAME, text)
}

func (l *Lexer) scanToken() error {
	c := l.advance()

	switch c {
	case '(':
		l.addToken(token.LEFT_PAREN, "")
	case ')':
		l.addToken(token.RIGHT_PAREN, "")
	case '{':
		l.addToken(token.LEFT_BRACE, "")
	case '}':
		l.addToken(token.RIGHT_BRACE, "")
	case ',':
		l.addToken(token.COMMA, "")
	case ';':
		l.addToken(token.SEMICOLON, "")
	case '+':
		l.addToken(token.PLUS, "")
	case '*':
		l.addToken(token.STAR, "")
	case '/':
		l.addToken(token.SLASH, "")
	case '_':
		l.addToken(token.UNDERSCORE, "")
	case '=':
		if l.match('>') {
			l.addToken(token.FAT_ARROW, "")
		} else {
			l.addToken(token.EQUAL, "")
		}
	case '-':
		if isDigit(l.peek()) && !l.lastCanEndOperand() {
			l.lexNumber()
		} else {
			l.addToken(token.MINUS, "")
		}
	case ' ', '\r', '\t':
		// ignore whitespace.
	case '\n':
		l.line++
		l.lineBegin = l.current
	default:
		if isDigit(c) {
			l.lexNumber()
		} else if isNameStart(c) {
			l.lexIdent()
		} else {
			return l.errorf("Unexpected character: %c", c)
		}
	}

	return nil
}

func Lex(source string) ([]token.Token, error) {
	l := Lexer{source: source, line: 1}

	for !l.isAtEnd() {
		// we are at the beginning of the next lexeme.
		l.start = l.current
		if err := l.scanToken(); err != nil {
			return nil, err
		}
	}

	l.addToken(token.EOF, "\x00")
	return l.tokens, nil
}
