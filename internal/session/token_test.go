package session

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager(TokenConfig{Secret: []byte("test-secret")})
	sessionID := uuid.New()

	signed, err := tm.Issue(sessionID)
	require.NoError(t, err)

	got, err := tm.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, sessionID, got)
}

func TestTokenWrongSecret(t *testing.T) {
	tm := NewTokenManager(TokenConfig{Secret: []byte("test-secret")})
	other := NewTokenManager(TokenConfig{Secret: []byte("other-secret")})

	signed, err := tm.Issue(uuid.New())
	require.NoError(t, err)

	_, err = other.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenExpired(t *testing.T) {
	tm := NewTokenManager(TokenConfig{Secret: []byte("test-secret"), TTL: -time.Minute})

	signed, err := tm.Issue(uuid.New())
	require.NoError(t, err)

	_, err = tm.Verify(signed)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenGarbage(t *testing.T) {
	tm := NewTokenManager(TokenConfig{Secret: []byte("test-secret")})

	_, err := tm.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenDefaults(t *testing.T) {
	tm := NewTokenManager(TokenConfig{Secret: []byte("test-secret")})
	assert.Equal(t, 12*time.Hour, tm.TTL())
}
