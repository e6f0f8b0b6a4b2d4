package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	got, err := Generate("book")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "book-"))
	assert.Greater(t, len(got), len("book-"))
}

func TestGenerate_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		got, err := Generate("loan")
		require.NoError(t, err)
		assert.False(t, seen[got], "duplicate id %s", got)
		seen[got] = true
	}
}

func TestMustGenerate(t *testing.T) {
	assert.NotPanics(t, func() {
		got := MustGenerate("mem")
		assert.True(t, strings.HasPrefix(got, "mem-"))
	})
}
