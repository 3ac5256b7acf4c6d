package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentmem-labs/agentmem-go/pkg/core"
)

func TestMemoryTypeValid(t *testing.T) {
	tests := []struct {
		memoryType core.MemoryType
		valid      bool
	}{
		{core.TypeEpisodic, true},
		{core.TypeSemantic, true},
		{core.TypeProcedural, true},
		{core.TypeWorking, true},
		{core.MemoryType(""), false},
		{core.MemoryType("emotional"), false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.valid, tt.memoryType.Valid(), "type %q", tt.memoryType)
	}
}

func TestImportanceValid(t *testing.T) {
	tests := []struct {
		importance core.Importance
		valid      bool
	}{
		{core.ImportanceLow, true},
		{core.ImportanceMedium, true},
		{core.ImportanceHigh, true},
		{core.ImportanceCritical, true},
		{core.Importance(0), false},
		{core.Importance(5), false},
		{core.Importance(-1), false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.valid, tt.importance.Valid(), "importance %d", tt.importance)
	}
}

func TestImportanceString(t *testing.T) {
	tests := []struct {
		importance core.Importance
		expected   string
	}{
		{core.ImportanceLow, "low"},
		{core.ImportanceMedium, "medium"},
		{core.ImportanceHigh, "high"},
		{core.ImportanceCritical, "critical"},
		{core.Importance(7), "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.importance.String())
	}
}

func TestImportanceOrdering(t *testing.T) {
	assert.True(t, core.ImportanceLow < core.ImportanceMedium)
	assert.True(t, core.ImportanceMedium < core.ImportanceHigh)
	assert.True(t, core.ImportanceHigh < core.ImportanceCritical)
}
