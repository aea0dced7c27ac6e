package helpers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	for _, plain := range []string{"secret", "   spaced   ", "unicode-пароль", strings.Repeat("x", 72)} {
		t.Run(plain, func(t *testing.T) {
			hash, err := HashPassword(plain)
			require.NoError(t, err)
			assert.NotEqual(t, plain, hash)
			assert.True(t, CompareHashAndPassword(hash, plain))

			cost, err := bcrypt.Cost([]byte(hash))
			require.NoError(t, err)
			assert.Equal(t, PasswordCost, cost)
		})
	}
}

func TestHashPassword_Salted(t *testing.T) {
	h1, err := HashPassword("secret")
	require.NoError(t, err)
	h2, err := HashPassword("secret")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
	assert.True(t, CompareHashAndPassword(h1, "secret"))
	assert.True(t, CompareHashAndPassword(h2, "secret"))
}

func TestCompareHashAndPassword_Mismatch(t *testing.T) {
	hash, err := HashPassword("secret")
	require.NoError(t, err)

	cases := map[string]string{
		"different":      "secreT",
		"trailing space": "secret ",
		"empty":          "",
	}
	for name, plain := range cases {
		t.Run(name, func(t *testing.T) {
			assert.False(t, CompareHashAndPassword(hash, plain))
		})
	}
}

func TestCompareHashAndPassword_MalformedHash(t *testing.T) {
	for _, hash := range []string{"", "not-a-hash", "$2a$10$short"} {
		assert.NotPanics(t, func() {
			assert.False(t, CompareHashAndPassword(hash, "secret"))
		})
	}
}
