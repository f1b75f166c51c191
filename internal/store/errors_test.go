package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "generic error", err: errors.New("some error"), expected: false},
		{name: "ErrNotFound", err: ErrNotFound, expected: true},
		{name: "wrapped ErrNotFound", err: fmt.Errorf("get progress: %w", ErrNotFound), expected: true},
		{
			name:     "StoreError wrapping ErrNotFound",
			err:      NewStoreError("sqlite", "get", "no row", ErrNotFound),
			expected: true,
		},
		{name: "ErrInvalidKey", err: ErrInvalidKey, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsNotFoundError(tt.err))
		})
	}
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	cause := errors.New("disk I/O error")
	err := NewStoreError("file", "set", "failed to write temp file", cause)

	assert.Equal(t, "set operation on file failed: failed to write temp file: disk I/O error", err.Error())
	assert.ErrorIs(t, err, cause)

	var se *StoreError
	assert.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &se))
	assert.Equal(t, "file", se.Entity)

	bare := NewStoreError("memory", "get", "closed", nil)
	assert.Equal(t, "get operation on memory failed: closed", bare.Error())
}

func TestValidateKey(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, ValidateKey(""), ErrInvalidKey)
	assert.NoError(t, ValidateKey("flashcard-progress"))
}
