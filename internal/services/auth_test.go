package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthService_LoginAndValidate(t *testing.T) {
	svc, err := NewAuthService("", "admin123", "test-secret", time.Hour)
	require.NoError(t, err)

	token, err := svc.Login("admin123")
	require.NoError(t, err)
	assert.NoError(t, svc.ValidateToken(token))

	_, err = svc.Login("wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_AcceptsPrecomputedHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	svc, err := NewAuthService(string(hash), "", "test-secret", time.Hour)
	require.NoError(t, err)

	_, err = svc.Login("s3cret")
	assert.NoError(t, err)
}

func TestAuthService_RejectsBadTokens(t *testing.T) {
	svc, err := NewAuthService("", "admin123", "test-secret", time.Hour)
	require.NoError(t, err)

	other, err := NewAuthService("", "admin123", "other-secret", time.Hour)
	require.NoError(t, err)
	foreign, err := other.Login("admin123")
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Issuer: tokenIssuer}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":        "not-a-token",
		"foreign secret": foreign,
		"unsigned":       none,
	} {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, svc.ValidateToken(token), ErrUnauthorized)
		})
	}
}

func TestAuthService_RejectsExpiredToken(t *testing.T) {
	svc, err := NewAuthService("", "admin123", "test-secret", time.Minute)
	require.NoError(t, err)

	issued := time.Now().Add(-time.Hour)
	svc.now = func() time.Time { return issued }
	token, err := svc.Login("admin123")
	require.NoError(t, err)

	svc.now = time.Now
	assert.ErrorIs(t, svc.ValidateToken(token), ErrUnauthorized)
}

func TestNewAuthService_RequiresSecrets(t *testing.T) {
	_, err := NewAuthService("", "admin123", "", time.Hour)
	assert.Error(t, err)

	_, err = NewAuthService("", "", "secret", time.Hour)
	assert.Error(t, err)
}
