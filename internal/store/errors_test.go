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
		{"nil error", nil, false},
		{"generic error", errors.New("some error"), false},
		{"ErrNotFound", ErrNotFound, true},
		{"study not found", ErrStudyNotFound, true},
		{"wrapped session not found", fmt.Errorf("loading: %w", ErrSessionNotFound), true},
		{"store error wrapping user not found", NewStoreError("user", "get", "missing", ErrUserNotFound), true},
		{"duplicate", ErrEmailExists, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, IsNotFoundError(tt.err))
		})
	}
}

func TestIsDuplicateError(t *testing.T) {
	t.Parallel()

	assert.True(t, IsDuplicateError(ErrEmailExists))
	assert.True(t, IsDuplicateError(fmt.Errorf("create: %w", ErrDuplicate)))
	assert.False(t, IsDuplicateError(ErrStudyNotFound))
	assert.False(t, IsDuplicateError(nil))
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	err := NewStoreError("study", "update", "could not save", cause)
	assert.Equal(t, "update operation on study failed: could not save: boom", err.Error())
	assert.ErrorIs(t, err, cause)

	bare := NewStoreError("session", "delete", "nothing deleted", nil)
	assert.Equal(t, "delete operation on session failed: nothing deleted", bare.Error())
}
