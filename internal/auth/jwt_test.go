package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/models"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	token, err := m.Generate(&models.Member{ID: 42, Email: "priya@example.com"})
	require.NoError(t, err)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "priya@example.com", claims.Email)
	assert.Equal(t, "42", claims.Subject)
}

func TestJWTManager_Rejects(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	good, err := m.Generate(&models.Member{ID: 7})
	require.NoError(t, err)

	expired, err := NewJWTManager("test-secret", -time.Minute).Generate(&models.Member{ID: 7})
	require.NoError(t, err)

	otherSecret, err := NewJWTManager("other-secret", time.Hour).Generate(&models.Member{ID: 7})
	require.NoError(t, err)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		UserID:           7,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"garbage":      "not-a-token",
		"expired":      expired,
		"wrong secret": otherSecret,
		"alg none":     noneAlg,
		"truncated":    good[:len(good)-4],
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := m.Validate(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestJWTManager_GenerateRequiresPositiveID(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	_, err := m.Generate(&models.Member{ID: 0})
	assert.Error(t, err)
}
