package errors

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	typed := Clone(ErrNotFound, "Student does not exist.")
	wrapped := fmt.Errorf("suspend: %w", typed)

	got := FromError(wrapped)
	assert.Same(t, typed, got)
	assert.True(t, got.Benign())
}

func TestFromErrorHidesBackendFailures(t *testing.T) {
	got := FromError(sql.ErrConnDone)
	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.Equal(t, ErrInternal.Message, got.Message)
	assert.False(t, got.Benign())
	assert.ErrorIs(t, got, sql.ErrConnDone)
}

func TestIsMatchesByCode(t *testing.T) {
	err := Clone(ErrAlreadySuspended, "Student was in suspended status.")
	assert.True(t, errors.Is(err, ErrAlreadySuspended))
	assert.False(t, errors.Is(err, ErrNotFound))
}
