package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.True(t, CheckPassword("s3cret-pass", hash))
	assert.False(t, CheckPassword("wrong", hash))
	assert.False(t, CheckPassword("s3cret-pass", "not-a-hash"))
}

func TestHashesAreSalted(t *testing.T) {
	h1, err := HashPassword("12345")
	require.NoError(t, err)
	h2, err := HashPassword("12345")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}
