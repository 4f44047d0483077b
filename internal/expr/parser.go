package expr

import (
	"fmt"
	"strconv"
)

// Parser turns expression source into a Node tree. Precedence, loosest
// first: conditional, or, and, comparison, additive, multiplicative, power
// (right-associative), unary, postfix member/call.
type Parser struct {
	lexer *Lexer
	tok   Token
	src   string
}

// Parse parses a complete expression; trailing input is an error.
func Parse(source string) (Node, error) {
	p := &Parser{lexer: NewLexer(source), src: source}
	p.next()
	n, err := p.parseConditional()
	if err != nil {
		return nil, err
	}
	if p.tok.Type != TokenEOF {
		return nil, syntaxErrorf(p.tok.Pos, "unexpected '%s' in expression '%s'", p.tok.Value, source)
	}
	return n, nil
}

func (p *Parser) next() { p.tok = p.lexer.NextToken() }

func (p *Parser) expect(tt TokenType, what string) (Token, error) {
	if p.tok.Type != tt {
		return Token{}, syntaxErrorf(p.tok.Pos, "expected %s, found '%s'", what, p.tok.Value)
	}
	t := p.tok
	p.next()
	return t, nil
}

func (p *Parser) parseConditional() (Node, error) {
	cond, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.tok.Type != TokenQuestion {
		return cond, nil
	}
	at := p.tok.Pos
	p.next()
	thenN, err := p.parseConditional()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenColon, "':'"); err != nil {
		return nil, err
	}
	elseN, err := p.parseConditional()
	if err != nil {
		return nil, err
	}
	return &ConditionalNode{Cond: cond, Then: thenN, Else: elseN, At: at}, nil
}

func (p *Parser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.tok.Type == TokenIdent && p.tok.Value == "or" {
		at := p.tok.Pos
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &BinaryNode{Op: "or", L: left, R: right, At: at}
	}
	return left, nil
}

func (p *Parser) parseAnd() (Node, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.tok.Type == TokenIdent && p.tok.Value == "and" {
		at := p.tok.Pos
		p.next()
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = &BinaryNode{Op: "and", L: left, R: right, At: at}
	}
	return left, nil
}

func (p *Parser) parseComparison() (Node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		var op string
		switch p.tok.Type {
		case TokenEq:
			op = "="
		case TokenLt:
			op = "<"
		case TokenLe:
			op = "<="
		case TokenGt:
			op = ">"
		case TokenGe:
			op = ">="
		default:
			return left, nil
		}
		at := p.tok.Pos
		p.next()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &BinaryNode{Op: op, L: left, R: right, At: at}
	}
}

func (p *Parser) parseAdditive() (Node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.tok.Type == TokenPlus || p.tok.Type == TokenMinus {
		op := p.tok.Value
		at := p.tok.Pos
		p.next()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &BinaryNode{Op: op, L: left, R: right, At: at}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (Node, error) {
	left, err := p.parsePower()
	if err != nil {
		return nil, err
	}
	for p.tok.Type == TokenStar || p.tok.Type == TokenSlash || p.tok.Type == TokenPercent {
		op := p.tok.Value
		at := p.tok.Pos
		p.next()
		right, err := p.parsePower()
		if err != nil {
			return nil, err
		}
		left = &BinaryNode{Op: op, L: left, R: right, At: at}
	}
	return left, nil
}

func (p *Parser) parsePower() (Node, error) {
	base, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if p.tok.Type != TokenCaret {
		return base, nil
	}
	at := p.tok.Pos
	p.next()
	exp, err := p.parsePower() // right-associative
	if err != nil {
		return nil, err
	}
	return &BinaryNode{Op: "^", L: base, R: exp, At: at}, nil
}

func (p *Parser) parseUnary() (Node, error) {
	switch {
	case p.tok.Type == TokenBang:
		at := p.tok.Pos
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryNode{Op: "!", X: x, At: at}, nil
	case p.tok.Type == TokenIdent && p.tok.Value == "not":
		at := p.tok.Pos
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryNode{Op: "not", X: x, At: at}, nil
	case p.tok.Type == TokenMinus:
		at := p.tok.Pos
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryNode{Op: "-", X: x, At: at}, nil
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (Node, error) {
	n, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.tok.Type == TokenDot {
		p.next()
		name, err := p.expect(TokenIdent, "member name")
		if err != nil {
			return nil, err
		}
		if p.tok.Type == TokenLParen {
			args, err := p.parseCallArgs()
			if err != nil {
				return nil, err
			}
			n = &CallNode{Recv: n, Name: name.Value, Args: args, At: name.Pos}
			continue
		}
		n = &MemberNode{Recv: n, Name: name.Value, At: name.Pos}
	}
	return n, nil
}

func (p *Parser) parseCallArgs() ([]Node, error) {
	if _, err := p.expect(TokenLParen, "'('"); err != nil {
		return nil, err
	}
	var args []Node
	if p.tok.Type == TokenRParen {
		p.next()
		return args, nil
	}
	for {
		arg, err := p.parseConditional()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.tok.Type == TokenComma {
			p.next()
			continue
		}
		break
	}
	if _, err := p.expect(TokenRParen, "')'"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parsePrimary() (Node, error) {
	tok := p.tok
	switch tok.Type {
	case TokenInt:
		p.next()
		v, err := strconv.ParseInt(tok.Value, 10, 64)
		if err != nil {
			return nil, syntaxErrorf(tok.Pos, "invalid integer literal '%s'", tok.Value)
		}
		return &LiteralNode{Kind: LitInt, IntVal: v, At: tok.Pos}, nil
	case TokenFloat:
		p.next()
		v, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, syntaxErrorf(tok.Pos, "invalid decimal literal '%s'", tok.Value)
		}
		return &LiteralNode{Kind: LitFloat, FloatVal: v, At: tok.Pos}, nil
	case TokenString:
		p.next()
		return &LiteralNode{Kind: LitString, StrVal: tok.Value, At: tok.Pos}, nil
	case TokenLParen:
		p.next()
		n, err := p.parseConditional()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRParen, "')'"); err != nil {
			return nil, err
		}
		return n, nil
	case TokenIdent:
		switch tok.Value {
		case "true", "false":
			p.next()
			return &LiteralNode{Kind: LitBool, BoolVal: tok.Value == "true", At: tok.Pos}, nil
		case "if":
			return p.parseIf()
		}
		p.next()
		if p.tok.Type == TokenLParen {
			args, err := p.parseCallArgs()
			if err != nil {
				return nil, err
			}
			return &CallNode{Name: tok.Value, Args: args, At: tok.Pos}, nil
		}
		return &IdentNode{Name: tok.Value, At: tok.Pos}, nil
	case TokenEOF:
		return nil, syntaxErrorf(tok.Pos, "unexpected end of expression")
	default:
		return nil, syntaxErrorf(tok.Pos, "unexpected '%s'", tok.Value)
	}
}

// parseIf handles the keyword form `if cond then a else b`.
func (p *Parser) parseIf() (Node, error) {
	at := p.tok.Pos
	p.next() // if
	cond, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.tok.Type != TokenIdent || p.tok.Value != "then" {
		return nil, syntaxErrorf(p.tok.Pos, "expected 'then', found '%s'", p.tok.Value)
	}
	p.next()
	thenN, err := p.parseConditional()
	if err != nil {
		return nil, err
	}
	if p.tok.Type != TokenIdent || p.tok.Value != "else" {
		return nil, syntaxErrorf(p.tok.Pos, "expected 'else', found '%s'", p.tok.Value)
	}
	p.next()
	elseN, err := p.parseConditional()
	if err != nil {
		return nil, err
	}
	return &ConditionalNode{Cond: cond, Then: thenN, Else: elseN, At: at}, nil
}

func syntaxErrorf(pos int, format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...), Pos: pos}
}
