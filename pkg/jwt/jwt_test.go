package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *Service {
	return NewService("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	service := newTestService()

	token, err := service.GenerateAccessToken("user-1", "ana@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, AccessToken, claims.TokenType)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestTokenTypeMismatch(t *testing.T) {
	service := newTestService()

	refresh, err := service.GenerateRefreshToken("user-1", "ana@example.com")
	require.NoError(t, err)

	_, err = service.ValidateAccessToken(refresh)
	assert.Error(t, err)
}

func TestWrongSecretRejected(t *testing.T) {
	service := newTestService()
	other := NewService("other-secret", "other-refresh", time.Hour, 24*time.Hour)

	token, err := service.GenerateAccessToken("user-1", "ana@example.com")
	require.NoError(t, err)

	_, err = other.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestExpiredToken(t *testing.T) {
	service := NewService("access-secret", "refresh-secret", -time.Minute, 24*time.Hour)

	token, err := service.GenerateAccessToken("user-1", "ana@example.com")
	require.NoError(t, err)

	_, err = service.ValidateAccessToken(token)
	assert.Error(t, err)
	assert.True(t, service.IsTokenExpired(token))
}

func TestIsTokenExpiredOnGarbage(t *testing.T) {
	service := newTestService()
	assert.True(t, service.IsTokenExpired("not-a-token"))
}
