package pickle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPyquoteBasic(t *testing.T) {
	assert.Equal(t, `"hello"`, pyquote("hello"))
	assert.Equal(t, `"a\"b"`, pyquote(`a"b`))
	assert.Equal(t, `"a\\b"`, pyquote(`a\b`))
}

func TestPyquoteControlCharacter(t *testing.T) {
	got := pyquote("a\nb")
	assert.Contains(t, got, `\n`)
}

func TestStripStringQuotes(t *testing.T) {
	inner, err := stripStringQuotes(`"hello"`)
	require.NoError(t, err)
	assert.Equal(t, "hello", inner)

	inner, err = stripStringQuotes(`'hello'`)
	require.NoError(t, err)
	assert.Equal(t, "hello", inner)

	_, err = stripStringQuotes(`"mismatched'`)
	require.Error(t, err)

	_, err = stripStringQuotes(`x`)
	require.Error(t, err)
}

func TestPyUnquoteStringRoundTrip(t *testing.T) {
	quoted := pyquote("hi\nthere\\\"quoted\"")
	inner, err := stripStringQuotes(quoted)
	require.NoError(t, err)
	got, err := pyUnquoteString(inner)
	require.NoError(t, err)
	assert.Equal(t, "hi\nthere\\\"quoted\"", got)
}

func TestPyUnquoteStringSimpleEscapes(t *testing.T) {
	got, err := pyUnquoteString(`a\nb`)
	require.NoError(t, err)
	assert.Equal(t, "a\nb", got)

	got, err = pyUnquoteString(`a\\b`)
	require.NoError(t, err)
	assert.Equal(t, `a\b`, got)
}

func TestPyUnquoteStringTruncatedEscape(t *testing.T) {
	_, err := pyUnquoteString(`abc\`)
	require.Error(t, err)

	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, ErrInvalidLiteral, perr.Kind)
}
