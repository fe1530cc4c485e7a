package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("Changemenow@1234")
	require.NoError(t, err)
	assert.NotEqual(t, "Changemenow@1234", hash)

	assert.True(t, h.Verify(hash, "Changemenow@1234"))
	assert.False(t, h.Verify(hash, "changemenow@1234"))
}

func TestNewBcryptHasherFallsBackOnBadCost(t *testing.T) {
	assert.Equal(t, BcryptCost, NewBcryptHasher(0).Cost)
	assert.Equal(t, BcryptCost, NewBcryptHasher(99).Cost)
}
