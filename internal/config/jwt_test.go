package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJWTConfig_Normalize(t *testing.T) {
	assert.NoError(t, (&JWTConfig{Secret: testSecret, ExpirationHours: 1}).normalize())
	assert.Error(t, (&JWTConfig{Secret: "", ExpirationHours: 24}).normalize())
	assert.Error(t, (&JWTConfig{Secret: testSecret, ExpirationHours: -1}).normalize())
}
