package auth

import (
	"testing"
	"time"

	"github.com/karthikdoguparthi/KisaanGrow/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestGenerateAndValidateToken(t *testing.T) {
	secret := "test-secret"
	sessionID := "session-123"
	role := models.RoleFarmer

	token, err := GenerateToken(sessionID, role, secret)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := ValidateToken(token, secret)
	assert.NoError(t, err)
	assert.Equal(t, sessionID, claims.SessionID)
	assert.Equal(t, role, claims.Role)
}

func TestGenerateTokenWithExpiry(t *testing.T) {
	tests := []struct {
		name          string
		sessionID     string
		role          models.Role
		secret        string
		expiry        time.Duration
		wantErr       bool
		expectedError string
	}{
		{
			name:      "Success - farmer token",
			sessionID: "s1",
			role:      models.RoleFarmer,
			secret:    "test-secret",
			expiry:    time.Hour,
		},
		{
			name:      "Success - corporate token",
			sessionID: "s2",
			role:      models.RoleCorporate,
			secret:    "test-secret",
			expiry:    time.Hour,
		},
		{
			name:      "Success - already expired token",
			sessionID: "s3",
			role:      models.RoleCorporate,
			secret:    "test-secret",
			expiry:    -time.Hour,
		},
		{
			name:          "Empty session ID",
			sessionID:     "",
			role:          models.RoleFarmer,
			secret:        "test-secret",
			expiry:        time.Hour,
			wantErr:       true,
			expectedError: "session ID cannot be empty",
		},
		{
			name:          "Empty secret",
			sessionID:     "s1",
			role:          models.RoleFarmer,
			secret:        "",
			expiry:        time.Hour,
			wantErr:       true,
			expectedError: "secret cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := GenerateTokenWithExpiry(tt.sessionID, tt.role, tt.secret, tt.expiry)

			if tt.wantErr {
				assert.Error(t, err)
				if tt.expectedError != "" {
					assert.Contains(t, err.Error(), tt.expectedError)
				}
				return
			}

			assert.NoError(t, err)
			assert.NotEmpty(t, token)

			if tt.expiry > 0 {
				claims, err := ValidateToken(token, tt.secret)
				assert.NoError(t, err)
				assert.Equal(t, tt.sessionID, claims.SessionID)
				assert.Equal(t, tt.role, claims.Role)
			}
		})
	}
}

func TestTokenExpiry(t *testing.T) {
	secret := "test-secret"

	t.Run("Token should be valid before expiry", func(t *testing.T) {
		token, err := GenerateTokenWithExpiry("s1", models.RoleFarmer, secret, time.Hour)
		assert.NoError(t, err)

		claims, err := ValidateToken(token, secret)
		assert.NoError(t, err)
		assert.Equal(t, "s1", claims.SessionID)
	})

	t.Run("Token should be invalid after expiry", func(t *testing.T) {
		token, err := GenerateTokenWithExpiry("s2", models.RoleCorporate, secret, -time.Hour)
		assert.NoError(t, err)

		_, err = ValidateToken(token, secret)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "expired")
	})
}

func TestTokenSignature(t *testing.T) {
	t.Run("Valid signature", func(t *testing.T) {
		token, err := GenerateTokenWithExpiry("s1", models.RoleFarmer, "correct-secret", time.Hour)
		assert.NoError(t, err)

		_, err = ValidateToken(token, "correct-secret")
		assert.NoError(t, err)
	})

	t.Run("Invalid signature", func(t *testing.T) {
		token, err := GenerateTokenWithExpiry("s1", models.RoleFarmer, "correct-secret", time.Hour)
		assert.NoError(t, err)

		_, err = ValidateToken(token, "wrong-secret")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "signature")
	})
}

func TestUnknownRoleRejected(t *testing.T) {
	token, err := GenerateToken("s1", models.Role("admin"), "secret")
	assert.NoError(t, err)

	_, err = ValidateToken(token, "secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
