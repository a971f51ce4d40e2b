package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	h, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", h)
	assert.True(t, CheckPassword("s3cret", h))
	assert.False(t, CheckPassword("wrong", h))

	h2, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, h, h2, "salt must differ per hash")
}

func TestValidID(t *testing.T) {
	assert.True(t, ValidID(NewID()))
	assert.False(t, ValidID(""))
	assert.False(t, ValidID("123"))
	assert.False(t, ValidID("zzzzzzzz-zzzz-zzzz-zzzz-zzzzzzzzzzzz"))
	assert.False(t, ValidID("{"+NewID()[:34]+"}"))
}
