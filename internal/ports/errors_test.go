package ports

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseError(t *testing.T) {
	_, convErr := strconv.ParseFloat("abc", 64)
	err := error(&ParseError{Path: "run1.csv", Line: 4, Field: "NetPnL", Value: "abc", Err: convErr})

	assert.True(t, errors.Is(err, ErrParse))
	assert.True(t, errors.Is(err, strconv.ErrSyntax))
	assert.False(t, errors.Is(err, ErrFileAccess))
	assert.Equal(t, `run1.csv:4: field NetPnL="abc": strconv.ParseFloat: parsing "abc": invalid syntax`, err.Error())

	var pe *ParseError
	assert.True(t, errors.As(err, &pe))
	assert.Equal(t, 4, pe.Line)
}

func TestParseErrorWithoutField(t *testing.T) {
	err := &ParseError{Path: "run1.csv", Line: 1, Err: errors.New("missing column NetPnL")}
	assert.Equal(t, "run1.csv:1: missing column NetPnL", err.Error())
}
