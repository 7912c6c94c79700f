package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gos/token"
)

func kinds(toks []token.Token) []token.Kind {
	ks := make([]token.Kind, len(toks))
	for i, t := range toks {
		ks[i] = t.Kind
	}
	return ks
}

func scan(t *testing.T, src string) []token.Token {
	t.Helper()
	toks, err := New(src).Scan()
	require.NoError(t, err)
	return toks
}

func TestSimpleArithmetic(t *testing.T) {
	toks := scan(t, "1 + 2 * 3")
	assert.Equal(t, []token.Kind{token.NUMBER, token.ADD, token.NUMBER, token.MUL, token.NUMBER, token.EOF}, kinds(toks))
}

func TestUnaryVsBinaryDisambiguation(t *testing.T) {
	toks := scan(t, "-1 + -2")
	assert.Equal(t, []token.Kind{token.NEG, token.NUMBER, token.ADD, token.NEG, token.NUMBER, token.EOF}, kinds(toks))
}

func TestUnaryAfterParenAndAssign(t *testing.T) {
	toks := scan(t, "let x = -(-1)")
	assert.Equal(t, []token.Kind{
		token.LET, token.IDENT, token.ASSIGN, token.NEG, token.LPAREN, token.NEG, token.NUMBER, token.RPAREN, token.EOF,
	}, kinds(toks))
}

func TestIncDec(t *testing.T) {
	toks := scan(t, "x++ --y")
	assert.Equal(t, []token.Kind{token.IDENT, token.INC, token.DEC, token.IDENT, token.EOF}, kinds(toks))
}

func TestComparisonAndEquality(t *testing.T) {
	toks := scan(t, "a == b != c >= d <= e > f < g")
	assert.Equal(t, []token.Kind{
		token.IDENT, token.EQ, token.IDENT, token.NE, token.IDENT, token.GE, token.IDENT,
		token.LE, token.IDENT, token.GT, token.IDENT, token.LT, token.IDENT, token.EOF,
	}, kinds(toks))
}

func TestLogicalAndBitwise(t *testing.T) {
	toks := scan(t, "a && b || c & d | e ^ f !g")
	assert.Equal(t, []token.Kind{
		token.IDENT, token.AND, token.IDENT, token.OR, token.IDENT, token.BAND, token.IDENT,
		token.BOR, token.IDENT, token.BXOR, token.IDENT, token.NOT, token.IDENT, token.EOF,
	}, kinds(toks))
}

func TestStringLiteralBothQuotes(t *testing.T) {
	toks := scan(t, `"hi" 'there'`)
	require.Len(t, toks, 3)
	assert.Equal(t, token.STRING, toks[0].Kind)
	assert.Equal(t, "hi", toks[0].Lexeme)
	assert.Equal(t, token.STRING, toks[1].Kind)
	assert.Equal(t, "there", toks[1].Lexeme)
}

func TestUnterminatedString(t *testing.T) {
	_, err := New(`"oops`).Scan()
	assert.Error(t, err)
}

func TestNumberRequiresDigitAfterDot(t *testing.T) {
	_, err := New("1.").Scan()
	assert.Error(t, err)
}

func TestFractionalNumber(t *testing.T) {
	toks := scan(t, "3.14")
	require.Len(t, toks, 2)
	assert.Equal(t, "3.14", toks[0].Lexeme)
}

func TestCommentsAreSkipped(t *testing.T) {
	toks := scan(t, "1 # this is a comment\n+ 2")
	assert.Equal(t, []token.Kind{token.NUMBER, token.ADD, token.NUMBER, token.EOF}, kinds(toks))
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	toks := scan(t, "let foo_bar if while fun return eval goto del exit out in true false null else")
	want := []token.Kind{
		token.LET, token.IDENT, token.IF, token.WHILE, token.FUN, token.RETURN, token.EVAL,
		token.GOTO, token.DEL, token.EXIT, token.OUT, token.IN, token.TRUE, token.FALSE, token.NULL, token.ELSE, token.EOF,
	}
	assert.Equal(t, want, kinds(toks))
}

func TestIdentifierWithBackslash(t *testing.T) {
	toks := scan(t, `foo\bar`)
	require.Len(t, toks, 2)
	assert.Equal(t, token.IDENT, toks[0].Kind)
	assert.Equal(t, `foo\bar`, toks[0].Lexeme)
}

func TestLabelColon(t *testing.T) {
	toks := scan(t, "top: goto top")
	assert.Equal(t, []token.Kind{token.IDENT, token.COLON, token.GOTO, token.IDENT, token.EOF}, kinds(toks))
}

func TestUnexpectedCharacter(t *testing.T) {
	_, err := New("@").Scan()
	assert.Error(t, err)
}
