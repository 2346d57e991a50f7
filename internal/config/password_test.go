package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordConfig_Normalize(t *testing.T) {
	for _, cost := range []int{10, 12, 14} {
		assert.NoError(t, (&PasswordConfig{BcryptCost: cost}).normalize())
	}
	for _, cost := range []int{0, 9, 15} {
		assert.Error(t, (&PasswordConfig{BcryptCost: cost}).normalize())
	}
}

func TestPasswordConfig_HashAndVerify(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: 10}

	hash, err := cfg.HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2"))
	assert.NotEqual(t, "correct horse", hash)

	assert.True(t, cfg.VerifyPassword("correct horse", hash))
	assert.False(t, cfg.VerifyPassword("wrong horse", hash))
	assert.False(t, cfg.VerifyPassword("correct horse", ""))
}

func TestPasswordConfig_Pepper(t *testing.T) {
	peppered := &PasswordConfig{BcryptCost: 10, Pepper: "pepper"}
	plain := &PasswordConfig{BcryptCost: 10}

	hash, err := peppered.HashPassword("secret-password")
	require.NoError(t, err)

	assert.True(t, peppered.VerifyPassword("secret-password", hash))
	assert.False(t, plain.VerifyPassword("secret-password", hash), "hash must depend on the pepper")
}

func TestPasswordConfig_UniqueSalts(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: 10}
	h1, err := cfg.HashPassword("same")
	require.NoError(t, err)
	h2, err := cfg.HashPassword("same")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}
