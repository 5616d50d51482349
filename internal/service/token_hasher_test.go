package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgon2TokenHasher_HashAndVerify(t *testing.T) {
	hasher := NewArgon2TokenHasher()

	token := "042187"
	hash, err := hasher.Hash(token)
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	// Format check
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v="), "hash should start with $argon2id$v=")

	// Verify correct token
	match, err := hasher.Verify(token, hash)
	require.NoError(t, err)
	assert.True(t, match, "correct token should verify")
}

func TestArgon2TokenHasher_VerifyWrongToken(t *testing.T) {
	hasher := NewArgon2TokenHasher()

	hash, err := hasher.Hash("123456")
	require.NoError(t, err)

	match, err := hasher.Verify("654321", hash)
	require.NoError(t, err)
	assert.False(t, match, "wrong token should not verify")
}

func TestArgon2TokenHasher_UniqueSalts(t *testing.T) {
	hasher := NewArgon2TokenHasher()

	hash1, err := hasher.Hash("000000")
	require.NoError(t, err)

	hash2, err := hasher.Hash("000000")
	require.NoError(t, err)

	assert.NotEqual(t, hash1, hash2, "same token should produce different hashes (different salts)")
}

func TestArgon2TokenHasher_LeadingZerosPreserved(t *testing.T) {
	hasher := NewArgon2TokenHasher()

	hash, err := hasher.Hash("000042")
	require.NoError(t, err)

	// A numerically equal token with different padding must not verify.
	match, err := hasher.Verify("42", hash)
	require.NoError(t, err)
	assert.False(t, match)

	match, err = hasher.Verify("000042", hash)
	require.NoError(t, err)
	assert.True(t, match)
}

func TestArgon2TokenHasher_VerifyInvalidFormat(t *testing.T) {
	hasher := NewArgon2TokenHasher()

	_, err := hasher.Verify("123456", "not-a-valid-hash")
	assert.Error(t, err)
}

func TestArgon2TokenHasher_HashContainsParams(t *testing.T) {
	hasher := NewArgon2TokenHasher()

	hash, err := hasher.Hash("123456")
	require.NoError(t, err)

	assert.Contains(t, hash, "m=65536,t=1,p=4", "hash should contain Argon2id params")
}
