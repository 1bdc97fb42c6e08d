package validator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	v := NewValidator()

	require.ErrorIs(t, v.ValidatePassword("a1"), ErrPasswordTooShort)
	require.ErrorIs(t, v.ValidatePassword("abcdefgh"), ErrPasswordTooWeak)
	require.ErrorIs(t, v.ValidatePassword("12345678"), ErrPasswordTooWeak)
	require.NoError(t, v.ValidatePassword("campus2024"))
}

func TestValidateUsername(t *testing.T) {
	v := NewValidator()

	require.NoError(t, v.ValidateUsername("u2021_ali"))
	require.ErrorIs(t, v.ValidateUsername("ab"), ErrUsernameMalformed)
	require.ErrorIs(t, v.ValidateUsername("ali khan"), ErrUsernameMalformed)
}
