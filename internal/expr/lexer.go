package expr

import "unicode"

// TokenType represents the type of a lexer token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIdent
	TokenInt
	TokenFloat
	TokenString
	TokenLParen   // (
	TokenRParen   // )
	TokenDot      // .
	TokenComma    // ,
	TokenQuestion // ?
	TokenColon    // :
	TokenBang     // !
	TokenEq       // =
	TokenPlus     // +
	TokenMinus    // -
	TokenStar     // *
	TokenSlash    // /
	TokenPercent  // %
	TokenCaret    // ^
	TokenLt       // <
	TokenLe       // <=
	TokenGt       // >
	TokenGe       // >=
	TokenError
)

// Token represents a lexer token.
type Token struct {
	Type  TokenType
	Value string
	Pos   int
}

// Lexer tokenizes an expression string.
type Lexer struct {
	input string
	pos   int
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// NextToken returns the next token from the input.
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF, Pos: l.pos}
	}

	start := l.pos
	ch := l.input[l.pos]

	switch ch {
	case '(':
		l.pos++
		return Token{Type: TokenLParen, Value: "(", Pos: start}
	case ')':
		l.pos++
		return Token{Type: TokenRParen, Value: ")", Pos: start}
	case '.':
		l.pos++
		return Token{Type: TokenDot, Value: ".", Pos: start}
	case ',':
		l.pos++
		return Token{Type: TokenComma, Value: ",", Pos: start}
	case '?':
		l.pos++
		return Token{Type: TokenQuestion, Value: "?", Pos: start}
	case ':':
		l.pos++
		return Token{Type: TokenColon, Value: ":", Pos: start}
	case '!':
		l.pos++
		return Token{Type: TokenBang, Value: "!", Pos: start}
	case '=':
		l.pos++
		return Token{Type: TokenEq, Value: "=", Pos: start}
	case '+':
		l.pos++
		return Token{Type: TokenPlus, Value: "+", Pos: start}
	case '-':
		l.pos++
		return Token{Type: TokenMinus, Value: "-", Pos: start}
	case '*':
		l.pos++
		return Token{Type: TokenStar, Value: "*", Pos: start}
	case '/':
		l.pos++
		return Token{Type: TokenSlash, Value: "/", Pos: start}
	case '%':
		l.pos++
		return Token{Type: TokenPercent, Value: "%", Pos: start}
	case '^':
		l.pos++
		return Token{Type: TokenCaret, Value: "^", Pos: start}
	case '<':
		l.pos++
		if l.pos < len(l.input) && l.input[l.pos] == '=' {
			l.pos++
			return Token{Type: TokenLe, Value: "<=", Pos: start}
		}
		return Token{Type: TokenLt, Value: "<", Pos: start}
	case '>':
		l.pos++
		if l.pos < len(l.input) && l.input[l.pos] == '=' {
			l.pos++
			return Token{Type: TokenGe, Value: ">=", Pos: start}
		}
		return Token{Type: TokenGt, Value: ">", Pos: start}
	case '"', '\'':
		return l.scanString(ch)
	default:
		if isDigit(ch) {
			return l.scanNumber()
		}
		if isIdentStart(ch) {
			return l.scanIdent()
		}
		l.pos++
		return Token{Type: TokenError, Value: string(ch), Pos: start}
	}
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) && unicode.IsSpace(rune(l.input[l.pos])) {
		l.pos++
	}
}

func (l *Lexer) scanIdent() Token {
	start := l.pos
	for l.pos < len(l.input) && isIdentChar(l.input[l.pos]) {
		l.pos++
	}
	return Token{Type: TokenIdent, Value: l.input[start:l.pos], Pos: start}
}

func (l *Lexer) scanNumber() Token {
	start := l.pos
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}
	// Decimal part only when a digit follows the dot; a bare dot is member
	// access on an integer literal receiver.
	if l.pos+1 < len(l.input) && l.input[l.pos] == '.' && isDigit(l.input[l.pos+1]) {
		l.pos++
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
		return Token{Type: TokenFloat, Value: l.input[start:l.pos], Pos: start}
	}
	return Token{Type: TokenInt, Value: l.input[start:l.pos], Pos: start}
}

func (l *Lexer) scanString(quote byte) Token {
	start := l.pos
	l.pos++ // opening quote
	var out []byte
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == '\\' && l.pos+1 < len(l.input) {
			next := l.input[l.pos+1]
			switch next {
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			default:
				out = append(out, next)
			}
			l.pos += 2
			continue
		}
		if ch == quote {
			l.pos++
			return Token{Type: TokenString, Value: string(out), Pos: start}
		}
		out = append(out, ch)
		l.pos++
	}
	return Token{Type: TokenError, Value: "unterminated string", Pos: start}
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isIdentChar(ch byte) bool { return isIdentStart(ch) || isDigit(ch) }
