package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// Cheap parameters keep the suite fast; the encoding is what is under test.
func fastArgon2() *Argon2Hasher {
	return NewArgon2Hasher(Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
}

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("123123")
	require.NoError(t, err)
	assert.True(t, IsBcryptHash(hash))
	assert.True(t, h.Verify("123123", hash))
	assert.False(t, h.Verify("123124", hash))
	assert.False(t, h.Verify("123123", "not-a-hash"))
}

func TestBcryptHasher_LongPasswords(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	longest := strings.Repeat("x", BcryptMaxPasswordBytes)

	hash, err := h.Hash(longest)
	require.NoError(t, err)
	assert.True(t, h.Verify(longest, hash))
	assert.False(t, h.Verify(longest+"-not-the-password", hash))

	_, err = h.Hash(longest + "y")
	assert.ErrorIs(t, err, bcrypt.ErrPasswordTooLong)
}

func TestArgon2Hasher(t *testing.T) {
	h := fastArgon2()

	hash, err := h.Hash("secret-password")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$"))
	assert.True(t, IsArgon2Hash(hash))

	t.Run("verifies matching password", func(t *testing.T) {
		assert.True(t, h.Verify("secret-password", hash))
	})

	t.Run("rejects other password", func(t *testing.T) {
		assert.False(t, h.Verify("secret-passwore", hash))
	})

	t.Run("salts every hash", func(t *testing.T) {
		again, err := h.Hash("secret-password")
		require.NoError(t, err)
		assert.NotEqual(t, hash, again)
	})

	t.Run("rejects malformed encodings", func(t *testing.T) {
		assert.False(t, h.Verify("x", "$argon2id$v=19$m=1024$salt"))
		assert.False(t, h.Verify("x", "$argon2i$v=19$m=1024,t=1,p=1$c2FsdA$aGFzaA"))
		assert.False(t, IsArgon2Hash("$2a$10$abcdefghijklmnopqrstuu"))
	})
}

func TestMultiHasher(t *testing.T) {
	bcryptHash, err := NewBcryptHasher(bcrypt.MinCost).Hash("pw-bcrypt")
	require.NoError(t, err)
	argonHash, err := fastArgon2().Hash("pw-argon")
	require.NoError(t, err)

	h, err := NewPasswordHasher("argon2id")
	require.NoError(t, err)

	t.Run("verifies either encoding", func(t *testing.T) {
		assert.True(t, h.Verify("pw-bcrypt", bcryptHash))
		assert.True(t, h.Verify("pw-argon", argonHash))
		assert.False(t, h.Verify("pw-argon", bcryptHash))
		assert.False(t, h.Verify("pw-bcrypt", argonHash))
	})

	t.Run("rejects unknown encodings", func(t *testing.T) {
		assert.False(t, h.Verify("MTIzMTIz", "MTIzMTIz"))
	})

	t.Run("rejects unknown algorithm", func(t *testing.T) {
		_, err := NewPasswordHasher("md5")
		assert.Error(t, err)
	})

	t.Run("defaults to bcrypt", func(t *testing.T) {
		def, err := NewPasswordHasher("")
		require.NoError(t, err)
		assert.Same(t, def.bcrypt, def.primary)
	})
}
