package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_HasPrefix(t *testing.T) {
	got, err := Generate(PrefixProject)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "proj-"))
}

func TestGenerate_Length(t *testing.T) {
	got, err := Generate(PrefixChapter)
	require.NoError(t, err)
	// prefix + "-" + 21-char nanoid
	assert.Len(t, got, len(PrefixChapter)+1+21)
}

func TestGenerate_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for range 1000 {
		got, err := Generate(PrefixProject)
		require.NoError(t, err)
		assert.False(t, seen[got], "duplicate ID generated: %s", got)
		seen[got] = true
	}
}

func TestMustGenerate_DoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		_ = MustGenerate(PrefixChapter)
	})
}
