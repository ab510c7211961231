package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Lozinka123!")
	require.NoError(t, err)
	assert.NotEqual(t, "Lozinka123!", hash)

	assert.True(t, CheckPassword(hash, "Lozinka123!"))
	assert.False(t, CheckPassword(hash, "pogresna"))
}

func TestValidatePassword(t *testing.T) {
	blackList := map[string]bool{"Password123!": true}

	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{name: "valid password", password: "Lozinka123!", wantErr: false},
		{name: "too short", password: "Lo1!", wantErr: true},
		{name: "no uppercase", password: "lozinka123!", wantErr: true},
		{name: "no digit", password: "Lozinkaaa!", wantErr: true},
		{name: "no special character", password: "Lozinka123", wantErr: true},
		{name: "blacklisted", password: "Password123!", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password, blackList)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGenerateRandomPassword(t *testing.T) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%"

	password := GenerateRandomPassword()
	assert.Len(t, password, 12)
	for _, char := range password {
		assert.Contains(t, charset, string(char))
	}

	// Dve uzastopne lozinke ne smeju biti iste.
	assert.NotEqual(t, password, GenerateRandomPassword())
}
