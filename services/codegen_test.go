package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTeamCodeShape(t *testing.T) {
	gen := NewRandomCodeGenerator()

	for i := 0; i < 100; i++ {
		code, err := gen.GenerateTeamCode()
		require.NoError(t, err)
		assert.Len(t, code, teamCodeLength)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(teamCodeCharset, r),
				"code %q contains %q outside the allowed alphabet", code, r)
		}
	}
}

func TestGenerateTeamCodeVaries(t *testing.T) {
	gen := NewRandomCodeGenerator()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := gen.GenerateTeamCode()
		require.NoError(t, err)
		seen[code] = true
	}
	// 50 draws from a 31^6 space collapsing to one value means a broken
	// generator, not bad luck.
	assert.Greater(t, len(seen), 1)
}
