package lp

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTerm(t *testing.T) {
	tests := []struct {
		token string
		coeff float64
		name  string
	}{
		{"3x", 3, "x"},
		{"+3.5x2", 3.5, "x2"},
		{"-z", -1, "z"},
		{"x", 1, "x"},
		{"+x", 1, "x"},
		{"-2.5foo_bar", -2.5, "foo_bar"},
		{".5x", 0.5, "x"},
		{"+.25y", 0.25, "y"},
		{"3.x", 3, "x"},
		{"-0.125w", -0.125, "w"},
		{"_a1", 1, "_a1"},
		{"100longName_2", 100, "longName_2"},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			term, err := ParseTerm(tt.token, 1)
			require.NoError(t, err)
			assert.Equal(t, tt.coeff, term.Coeff)
			assert.Equal(t, tt.name, term.Var)
		})
	}
}

func TestParseTermErrors(t *testing.T) {
	tests := []string{
		"",
		"42",
		"+",
		"-",
		"3.5",
		"3x$",
		"x+y",
		"..x",
	}

	for _, token := range tests {
		t.Run(token, func(t *testing.T) {
			_, err := ParseTerm(token, 7)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrFormat)

			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, 7, pe.Line)
		})
	}
}

func TestParseTermErrorColumn(t *testing.T) {
	_, err := ParseTerm("42", 3)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	// The scanner consumed both digits and then found no identifier.
	assert.Equal(t, 3, pe.Line)
	assert.Equal(t, 3, pe.Column)

	_, err = ParseTerm("3x$", 3)
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 3, pe.Column)
}

func TestParseTermDuplicateSignRejected(t *testing.T) {
	_, err := ParseTerm("--x", 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFormat))
}

func TestIsIdentifier(t *testing.T) {
	assert.True(t, isIdentifier("x"))
	assert.True(t, isIdentifier("_a1"))
	assert.True(t, isIdentifier("longName_2"))
	assert.False(t, isIdentifier(""))
	assert.False(t, isIdentifier("1x"))
	assert.False(t, isIdentifier("a-b"))
	assert.False(t, isIdentifier("a b"))
}
