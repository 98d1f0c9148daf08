package lp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExpr(t *testing.T) {
	terms, err := parseExpr("3x + 2y - z", 1)
	require.NoError(t, err)
	assert.Equal(t, []Term{{3, "x"}, {2, "y"}, {-1, "z"}}, terms)
}

func TestParseExprSpacingLeniency(t *testing.T) {
	// "3 x" and "3x" parse identically: embedded whitespace within a
	// matched token is stripped before term parsing.
	spaced, err := parseExpr("3 x + 2 y", 1)
	require.NoError(t, err)
	tight, err := parseExpr("3x+2y", 1)
	require.NoError(t, err)
	assert.Equal(t, tight, spaced)
	assert.Equal(t, []Term{{3, "x"}, {2, "y"}}, spaced)
}

func TestParseExprSignSpacing(t *testing.T) {
	terms, err := parseExpr("- x +  3.5y", 1)
	require.NoError(t, err)
	assert.Equal(t, []Term{{-1, "x"}, {3.5, "y"}}, terms)
}

func TestParseExprDuplicateVariablesNotMerged(t *testing.T) {
	terms, err := parseExpr("x + x + 2x", 1)
	require.NoError(t, err)
	assert.Equal(t, []Term{{1, "x"}, {1, "x"}, {2, "x"}}, terms)
}

func TestParseExprOrderPreserved(t *testing.T) {
	terms, err := parseExpr("c - a + b", 1)
	require.NoError(t, err)
	require.Len(t, terms, 3)
	assert.Equal(t, "c", terms[0].Var)
	assert.Equal(t, "a", terms[1].Var)
	assert.Equal(t, "b", terms[2].Var)
}

func TestParseExprEmpty(t *testing.T) {
	for _, input := range []string{"", "   ", "10", "10 + 20", "+ -"} {
		t.Run(input, func(t *testing.T) {
			_, err := parseExpr(input, 4)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrFormat)

			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, 4, pe.Line)
		})
	}
}

func TestParseExprMalformedCoefficient(t *testing.T) {
	_, err := parseExpr("3.5.2x + y", 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFormat)
}
