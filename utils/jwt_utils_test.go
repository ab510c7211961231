package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateToken("507f1f77bcf86cd799439011", "ana@example.com", "user")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "507f1f77bcf86cd799439011", claims.UserID)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, "user", claims.Role)
}

// Ključ se čita iz okruženja pri svakoj operaciji, ne jednom pri startu;
// token potpisan starim ključem ne prolazi posle rotacije.
func TestTokenUsesCurrentSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "prvi-kljuc")
	token, err := GenerateToken("507f1f77bcf86cd799439011", "ana@example.com", "user")
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "drugi-kljuc")
	_, err = ValidateToken(token)
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "prvi-kljuc")
	_, err = ValidateToken(token)
	assert.NoError(t, err)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	_, err := ValidateToken("nije-token")
	assert.Error(t, err)
}
