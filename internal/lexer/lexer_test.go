package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allTokens(src string) []Token {
	l := New(src)
	var toks []Token
	for {
		tok := l.Next()
		toks = append(toks, tok)
		if tok.Kind == TokEOF {
			return toks
		}
	}
}

func kinds(toks []Token) []TokenKind {
	out := make([]TokenKind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestLexerTokenizesKernelSignature(t *testing.T) {
	toks := allTokens("__kernel void foo(__global float* a){}")
	require.True(t, len(toks) > 5)
	assert.Equal(t, TokIdent, toks[0].Kind)
	assert.Equal(t, "__kernel", toks[0].Text)
	assert.Equal(t, TokRBrace, toks[len(toks)-2].Kind)
}

func TestLexerSkipsLineAndBlockComments(t *testing.T) {
	toks := allTokens("a // comment\n/* block */ b")
	assert.Equal(t, []TokenKind{TokIdent, TokIdent, TokEOF}, kinds(toks))
	assert.Equal(t, "a", toks[0].Text)
	assert.Equal(t, "b", toks[1].Text)
}

func TestLexerScansHexAndFloatLiterals(t *testing.T) {
	toks := allTokens("0x1F 3.14 2.0e-5f 42")
	require.Len(t, toks, 5)
	assert.Equal(t, TokIntLiteral, toks[0].Kind)
	assert.Equal(t, "0x1F", toks[0].Text)
	assert.Equal(t, TokFloatLiteral, toks[1].Kind)
	assert.Equal(t, TokFloatLiteral, toks[2].Kind)
	assert.Equal(t, TokIntLiteral, toks[3].Kind)
}

func TestLexerDisambiguatesMultiCharOperators(t *testing.T) {
	toks := allTokens("a<<=b>>c--d++e<=f>=g==h!=i&&j||k")
	gotKinds := kinds(toks)
	want := []TokenKind{
		TokIdent, TokShlEq, TokIdent, TokShr, TokIdent, TokDecr, TokIdent,
		TokIncr, TokIdent, TokLe, TokIdent, TokGe, TokIdent, TokEqEq,
		TokIdent, TokNe, TokIdent, TokAndAnd, TokIdent, TokOrOr, TokIdent, TokEOF,
	}
	assert.Equal(t, want, gotKinds)
}

func TestLexerScansStringAndCharLiteralsWithEscapes(t *testing.T) {
	toks := allTokens(`"a\"b" 'x' '\''`)
	require.Len(t, toks, 4)
	assert.Equal(t, TokStringLiteral, toks[0].Kind)
	assert.Equal(t, `"a\"b"`, toks[0].Text)
	assert.Equal(t, TokCharLiteral, toks[1].Kind)
	assert.Equal(t, TokCharLiteral, toks[2].Kind)
	assert.Equal(t, `'\''`, toks[2].Text)
}

func TestLexerTracksLineAndColumn(t *testing.T) {
	toks := allTokens("a\nb")
	require.Len(t, toks, 3)
	assert.Equal(t, 1, toks[0].Line)
	assert.Equal(t, 2, toks[1].Line)
}

func TestLexerEmitsErrorTokenForUnknownByte(t *testing.T) {
	toks := allTokens("@")
	require.Len(t, toks, 2)
	assert.Equal(t, TokError, toks[0].Kind)
}
