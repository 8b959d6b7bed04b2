package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash_ProducesPHCString(t *testing.T) {
	h, err := Hash("Aa1!aaaa")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(h, "$argon2id$v="))
	assert.Len(t, strings.Split(h, "$"), 6)
}

func TestHash_SaltIsRandom(t *testing.T) {
	h1, err := Hash("same-password")
	require.NoError(t, err)
	h2, err := Hash("same-password")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestVerify_Match(t *testing.T) {
	h, err := Hash("correct horse battery staple")
	require.NoError(t, err)

	ok, err := Verify("correct horse battery staple", h)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerify_Mismatch_ReturnsFalseNotError(t *testing.T) {
	h, err := Hash("password-one")
	require.NoError(t, err)

	ok, err := Verify("password-two", h)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerify_MalformedHash(t *testing.T) {
	_, err := Verify("whatever", "not-a-phc-string")
	assert.Error(t, err)

	_, err = Verify("whatever", "$bcrypt$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA")
	assert.Error(t, err)
}
