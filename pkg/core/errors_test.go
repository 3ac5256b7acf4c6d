package core_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentmem-labs/agentmem-go/pkg/core"
)

func TestErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "ErrNotFound",
			err:      core.ErrNotFound,
			expected: "memory not found",
		},
		{
			name:     "ErrInvalidConfig",
			err:      core.ErrInvalidConfig,
			expected: "invalid configuration",
		},
		{
			name:     "ErrEmptyContent",
			err:      core.ErrEmptyContent,
			expected: "memory content is empty",
		},
		{
			name:     "ErrEmptyQuery",
			err:      core.ErrEmptyQuery,
			expected: "recall query is empty",
		},
		{
			name:     "ErrInvalidMemoryType",
			err:      core.ErrInvalidMemoryType,
			expected: "invalid memory type",
		},
		{
			name:     "ErrInvalidImportance",
			err:      core.ErrInvalidImportance,
			expected: "invalid importance level",
		},
		{
			name:     "ErrStorageOperation",
			err:      core.ErrStorageOperation,
			expected: "storage operation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestMemoryError(t *testing.T) {
	originalErr := errors.New("original error")
	memErr := core.NewMemoryError("Recall", originalErr)

	assert.Error(t, memErr)
	assert.Equal(t, "agentmem: Recall: original error", memErr.Error())

	var target *core.MemoryError
	assert.True(t, errors.As(memErr, &target))
	assert.Equal(t, "Recall", target.Op)
	assert.Equal(t, originalErr, target.Err)
}

func TestMemoryErrorUnwrap(t *testing.T) {
	originalErr := errors.New("original error")
	memErr := core.NewMemoryError("Forget", originalErr)

	assert.Equal(t, originalErr, errors.Unwrap(memErr))
	assert.True(t, errors.Is(memErr, originalErr))
}

func TestNewMemoryErrorNil(t *testing.T) {
	assert.Nil(t, core.NewMemoryError("Remember", nil))
}
