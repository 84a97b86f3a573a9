package syntax

import (
	"fmt"
	"unicode"
)

// TokenType defines the type of a token
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIdent
	TokenInt
	TokenDot
	TokenComma
	TokenSemicolon
	TokenLBracket // '['
	TokenRBracket // ']'
	TokenLBrace   // '{'
	TokenRBrace   // '}'
	TokenLParen   // '('
	TokenRParen   // ')'
	TokenEq       // '=='
	TokenNeq      // '!='
	TokenBang     // '!'
	TokenAndAnd   // '&&'
	TokenOrOr     // '||'
)

func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenIdent:
		return "identifier"
	case TokenInt:
		return "integer"
	case TokenDot:
		return "'.'"
	case TokenComma:
		return "','"
	case TokenSemicolon:
		return "';'"
	case TokenLBracket:
		return "'['"
	case TokenRBracket:
		return "']'"
	case TokenLBrace:
		return "'{'"
	case TokenRBrace:
		return "'}'"
	case TokenLParen:
		return "'('"
	case TokenRParen:
		return "')'"
	case TokenEq:
		return "'=='"
	case TokenNeq:
		return "'!='"
	case TokenBang:
		return "'!'"
	case TokenAndAnd:
		return "'&&'"
	case TokenOrOr:
		return "'||'"
	default:
		return "Unknown"
	}
}

// Token represents a lexical token
type Token struct {
	Type   TokenType
	Value  string
	Line   int
	Col    int
	Offset int // byte offset of the first character
}

// End returns the byte offset just past the token.
func (t Token) End() int {
	return t.Offset + len(t.Value)
}

var punctuation = map[byte]TokenType{
	'.': TokenDot,
	',': TokenComma,
	';': TokenSemicolon,
	'[': TokenLBracket,
	']': TokenRBracket,
	'{': TokenLBrace,
	'}': TokenRBrace,
	'(': TokenLParen,
	')': TokenRParen,
}

// Lex performs lexical analysis on the input string
// and returns a sequence of tokens.
// Comments run from "//" to the end of the line.
func Lex(input string) ([]Token, error) {
	var tokens []Token

	line, col := 1, 1
	i := 0

	emit := func(tt TokenType, start, startCol, end int) {
		tokens = append(tokens, Token{
			Type:   tt,
			Value:  input[start:end],
			Line:   line,
			Col:    startCol,
			Offset: start,
		})
	}

	for i < len(input) {
		c := input[i]

		switch {
		case c == '\n':
			line++
			col = 1
			i++

		case isWhitespace(c):
			col++
			i++

		case c == '/' && i+1 < len(input) && input[i+1] == '/':
			for i < len(input) && input[i] != '\n' {
				i++
				col++
			}

		case isIdentifierStart(c):
			start, startCol := i, col
			for i < len(input) && isIdentifierChar(input[i]) {
				i++
				col++
			}
			emit(TokenIdent, start, startCol, i)

		case isDigit(c) || (c == '-' && i+1 < len(input) && isDigit(input[i+1])):
			start, startCol := i, col
			i++
			col++
			for i < len(input) && isDigit(input[i]) {
				i++
				col++
			}
			emit(TokenInt, start, startCol, i)

		case c == '=' || c == '!' || c == '&' || c == '|':
			start, startCol := i, col
			var next byte
			if i+1 < len(input) {
				next = input[i+1]
			}
			switch {
			case c == '=' && next == '=':
				i += 2
				col += 2
				emit(TokenEq, start, startCol, i)
			case c == '!' && next == '=':
				i += 2
				col += 2
				emit(TokenNeq, start, startCol, i)
			case c == '!':
				i++
				col++
				emit(TokenBang, start, startCol, i)
			case c == '&' && next == '&':
				i += 2
				col += 2
				emit(TokenAndAnd, start, startCol, i)
			case c == '|' && next == '|':
				i += 2
				col += 2
				emit(TokenOrOr, start, startCol, i)
			default:
				return nil, &Error{Line: line, Col: col, Msg: fmt.Sprintf("unexpected character %q", c)}
			}

		default:
			tt, ok := punctuation[c]
			if !ok {
				return nil, &Error{Line: line, Col: col, Msg: fmt.Sprintf("unexpected character %q", c)}
			}
			start, startCol := i, col
			i++
			col++
			emit(tt, start, startCol, i)
		}
	}

	tokens = append(tokens, Token{
		Type:   TokenEOF,
		Value:  "",
		Line:   line,
		Col:    col,
		Offset: len(input),
	})

	return tokens, nil
}

func isIdentifierStart(c byte) bool {
	return unicode.IsLetter(rune(c)) || c == '_'
}

func isIdentifierChar(c byte) bool {
	return isIdentifierStart(c) || isDigit(c)
}

func isWhitespace(c byte) bool {
	return unicode.IsSpace(rune(c))
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}
