package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBcryptHasher_HashAndVerify(t *testing.T) {
	hasher := NewBcryptHasher()

	digest, err := hasher.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", digest)

	assert.True(t, hasher.Verify("correct horse battery staple", digest))
	assert.False(t, hasher.Verify("wrong password", digest))
}

func TestBcryptHasher_HashesAreSalted(t *testing.T) {
	hasher := NewBcryptHasher()

	digest1, err := hasher.Hash("password123")
	require.NoError(t, err)
	digest2, err := hasher.Hash("password123")
	require.NoError(t, err)

	assert.NotEqual(t, digest1, digest2)
	assert.True(t, hasher.Verify("password123", digest1))
	assert.True(t, hasher.Verify("password123", digest2))
}

func TestBcryptHasher_MalformedDigest(t *testing.T) {
	hasher := NewBcryptHasher()

	assert.False(t, hasher.Verify("anything", "not-a-bcrypt-digest"))
	assert.False(t, hasher.Verify("anything", ""))
}
