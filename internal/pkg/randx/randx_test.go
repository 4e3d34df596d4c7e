package randx

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileID_IsValidAndUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for range 100 {
		id, err := ProfileID()
		require.NoError(t, err)
		require.True(t, IsValidProfileID(id), id)
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, 100)
}

func TestIsValidProfileID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"prf_abcdefABCDEF", true},
		{"prf_012345678901", true},
		{"prf_abc", false},
		{"prf_abcdefABCDEF0", false},
		{"usr_abcdefABCDEF", false},
		{"prf_abcdef-BCDEF", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsValidProfileID(tt.id), tt.id)
	}
}

func TestIsValidTabID(t *testing.T) {
	assert.True(t, IsValidTabID(TabID()))
	assert.True(t, IsValidTabID("tab-1"))
	assert.False(t, IsValidTabID(""))
	assert.False(t, IsValidTabID("has space"))
	assert.False(t, IsValidTabID(strings.Repeat("x", 65)))
}
