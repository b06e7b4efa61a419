package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ErrTypeValidation, "query rejected")

	assert.Equal(t, ErrTypeValidation, err.Type)
	assert.Equal(t, "validation: query rejected", err.Error())
	assert.Nil(t, err.Cause)
}

func TestNewf(t *testing.T) {
	err := Newf(ErrTypeConfig, "unsupported provider: %s", "bedrock")
	assert.Equal(t, "config: unsupported provider: bedrock", err.Error())
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(cause, ErrTypeDatabase, "query execution failed")

	assert.Equal(t, "database: query execution failed (caused by: connection refused)", err.Error())
	assert.Equal(t, cause, stderrors.Unwrap(err))
	assert.True(t, stderrors.Is(err, cause))
}

func TestIsType(t *testing.T) {
	err := New(ErrTypeCompletion, "no completion returned")

	assert.True(t, IsType(err, ErrTypeCompletion))
	assert.False(t, IsType(err, ErrTypeDatabase))
	assert.False(t, IsType(stderrors.New("plain"), ErrTypeCompletion))
	assert.False(t, IsType(nil, ErrTypeCompletion))

	// Detection works through wrapping
	wrapped := fmt.Errorf("context: %w", err)
	assert.True(t, IsType(wrapped, ErrTypeCompletion))
}

func TestGetType(t *testing.T) {
	assert.Equal(t, ErrTypeContextStore, GetType(New(ErrTypeContextStore, "x")))
	assert.Equal(t, ErrTypeInternal, GetType(stderrors.New("plain")))
}

func TestAsError(t *testing.T) {
	original := New(ErrTypeValidation, "rejected").WithSuggestion("rephrase the question")
	wrapped := fmt.Errorf("outer: %w", original)

	var structured *Error
	require.True(t, AsError(wrapped, &structured))
	assert.Equal(t, ErrTypeValidation, structured.Type)
	assert.Equal(t, []string{"rephrase the question"}, structured.Suggestions)

	assert.False(t, AsError(stderrors.New("plain"), &structured))
}

func TestNewCompletionError(t *testing.T) {
	err := NewCompletionError("request timed out")

	assert.Equal(t, ErrTypeCompletion, err.Type)
	require.Len(t, err.Suggestions, 2)
	assert.Contains(t, err.Suggestions[0], "ASKDB_LLM_API_KEY")
}
