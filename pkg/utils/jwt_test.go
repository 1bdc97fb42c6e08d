package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m, err := NewJWTManager("access", "refresh", time.Minute, time.Hour)
	require.NoError(t, err)

	pair, err := m.GenerateTokens(7, "ali", "owner")
	require.NoError(t, err)
	require.NotEmpty(t, pair.RefreshID)

	claims, err := m.ValidateToken(pair.AccessToken, false)
	require.NoError(t, err)
	require.Equal(t, int64(7), claims.UserID)
	require.Equal(t, "owner", claims.Role)

	refresh, err := m.ValidateToken(pair.RefreshToken, true)
	require.NoError(t, err)
	require.Equal(t, pair.RefreshID, refresh.ID)
}

func TestJWTManager_WrongSecret(t *testing.T) {
	m, err := NewJWTManager("access", "refresh", time.Minute, time.Hour)
	require.NoError(t, err)

	pair, err := m.GenerateTokens(1, "ali", "student")
	require.NoError(t, err)

	_, err = m.ValidateToken(pair.AccessToken, true)
	require.True(t, errors.Is(err, ErrInvalidToken))
}

func TestJWTManager_Expired(t *testing.T) {
	m, err := NewJWTManager("access", "refresh", -time.Minute, time.Hour)
	require.NoError(t, err)

	pair, err := m.GenerateTokens(1, "ali", "student")
	require.NoError(t, err)

	_, err = m.ValidateToken(pair.AccessToken, false)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewJWTManager_MissingSecrets(t *testing.T) {
	_, err := NewJWTManager("", "refresh", time.Minute, time.Hour)
	require.Error(t, err)
}
