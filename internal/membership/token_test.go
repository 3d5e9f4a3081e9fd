package membership

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenHasher_RoundTrip(t *testing.T) {
	hasher := testHasher()

	token, err := NewToken()
	require.NoError(t, err)

	encoded, err := hasher.Hash(token)
	require.NoError(t, err)
	assert.Contains(t, encoded, "$argon2id$")
	assert.NotContains(t, encoded, token, "the raw token must never appear in the stored hash")

	ok, err := hasher.Verify(token, encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = hasher.Verify("wrong-token", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTokenHasher_RejectsMalformedHash(t *testing.T) {
	hasher := testHasher()

	for _, malformed := range []string{"", "plaintext", "$bcrypt$whatever", "$argon2id$v=19$bad"} {
		_, err := hasher.Verify("token", malformed)
		assert.Error(t, err, "input %q", malformed)
	}
}

func TestNewToken_Unique(t *testing.T) {
	a, err := NewToken()
	require.NoError(t, err)
	b, err := NewToken()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
