package core

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError(errors.New("bad input"), FieldError{Field: "email", Error: "invalid"})

	var vErr *ValidationError
	assert.True(t, errors.As(err, &vErr))
	assert.Equal(t, "bad input", vErr.Error())
	assert.Len(t, vErr.Fields, 1)
	assert.Equal(t, "email", vErr.Fields[0].Field)
}

func TestIsShutdown(t *testing.T) {
	err := NewShutdownError("database connection lost")
	assert.True(t, IsShutdown(err))
	assert.Equal(t, "database connection lost", err.Error())

	// wrapping must not mask the shutdown condition
	assert.True(t, IsShutdown(errors.Wrap(err, "reading visitor state")))

	assert.False(t, IsShutdown(errors.New("transient failure")))
	assert.False(t, IsShutdown(ErrKeyNotFound))
}
