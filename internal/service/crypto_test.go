package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSealer_RoundTrip(t *testing.T) {
	t.Parallel()

	s, err := NewSealer("credentials-key")
	require.NoError(t, err)

	a, err := s.Seal([]byte("db-password"))
	require.NoError(t, err)
	b, err := s.Seal([]byte("db-password"))
	require.NoError(t, err)
	require.NotEqual(t, a, b)
	require.NotContains(t, string(a), "db-password")

	plain, err := s.Open(a)
	require.NoError(t, err)
	require.Equal(t, "db-password", string(plain))

	empty, err := s.Seal(nil)
	require.NoError(t, err)
	plain, err = s.Open(empty)
	require.NoError(t, err)
	require.Empty(t, plain)
}

func TestSealer_Rejects(t *testing.T) {
	t.Parallel()

	s, err := NewSealer("credentials-key")
	require.NoError(t, err)
	other, err := NewSealer("another-key")
	require.NoError(t, err)

	sealed, err := s.Seal([]byte("secret"))
	require.NoError(t, err)

	_, err = other.Open(sealed)
	require.Error(t, err)

	sealed[len(sealed)-1] ^= 0xFF
	_, err = s.Open(sealed)
	require.Error(t, err)

	_, err = s.Open([]byte{1, 2, 3})
	require.ErrorIs(t, err, errCiphertextTooShort)

	_, err = NewSealer("")
	require.Error(t, err)
}
