package expr

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func lexAll(input string) []Token {
	l := NewLexer(input)
	var out []Token
	for {
		tok := l.NextToken()
		out = append(out, tok)
		if tok.Type == TokenEOF || tok.Type == TokenError {
			return out
		}
	}
}

func TestLexerOperators(t *testing.T) {
	got := lexAll("a <= b >= c = d")
	want := []Token{
		{Type: TokenIdent, Value: "a", Pos: 0},
		{Type: TokenLe, Value: "<=", Pos: 2},
		{Type: TokenIdent, Value: "b", Pos: 5},
		{Type: TokenGe, Value: ">=", Pos: 7},
		{Type: TokenIdent, Value: "c", Pos: 10},
		{Type: TokenEq, Value: "=", Pos: 12},
		{Type: TokenIdent, Value: "d", Pos: 14},
		{Type: TokenEOF, Pos: 15},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestLexerNumbers(t *testing.T) {
	got := lexAll("12 3.5 7.")
	require.Equal(t, TokenInt, got[0].Type)
	require.Equal(t, "12", got[0].Value)
	require.Equal(t, TokenFloat, got[1].Type)
	require.Equal(t, "3.5", got[1].Value)
	// A trailing dot is member access, not a decimal point.
	require.Equal(t, TokenInt, got[2].Type)
	require.Equal(t, "7", got[2].Value)
	require.Equal(t, TokenDot, got[3].Type)
}

func TestLexerStrings(t *testing.T) {
	got := lexAll(`"hello" 'world' "a\nb"`)
	require.Equal(t, TokenString, got[0].Type)
	require.Equal(t, "hello", got[0].Value)
	require.Equal(t, TokenString, got[1].Type)
	require.Equal(t, "world", got[1].Value)
	require.Equal(t, "a\nb", got[2].Value)
}

func TestLexerUnterminatedString(t *testing.T) {
	got := lexAll(`"oops`)
	require.Equal(t, TokenError, got[len(got)-1].Type)
}

func TestLexerCallSyntax(t *testing.T) {
	got := lexAll("items.filter(done)")
	types := make([]TokenType, len(got))
	for i, tok := range got {
		types[i] = tok.Type
	}
	want := []TokenType{TokenIdent, TokenDot, TokenIdent, TokenLParen, TokenIdent, TokenRParen, TokenEOF}
	require.Equal(t, want, types)
}
