package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestVerifierRoundTrip(t *testing.T) {
	v := NewVerifier("secreto")
	token, err := v.Sign(Claims{UserID: 7, Usuario: "mvillalba", NombreRol: "Contador"})
	require.NoError(t, err)

	user, err := v.Parse(token)
	require.NoError(t, err)
	require.Equal(t, int64(7), user.ID)
	require.Equal(t, "mvillalba", user.Name)
	require.Equal(t, "Contador", user.Role)
}

func TestVerifierRejectsTamperedSignature(t *testing.T) {
	v := NewVerifier("secreto")
	token, err := v.Sign(Claims{UserID: 7, Usuario: "mvillalba"})
	require.NoError(t, err)

	other := NewVerifier("otro-secreto")
	_, err = other.Parse(token)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifierRejectsExpiredToken(t *testing.T) {
	v := NewVerifier("secreto")
	token, err := v.Sign(Claims{UserID: 7, Exp: time.Now().Add(-time.Minute).Unix()})
	require.NoError(t, err)

	_, err = v.Parse(token)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifierRejectsMalformedToken(t *testing.T) {
	v := NewVerifier("secreto")
	for _, token := range []string{"", "abc", "a.b", "a.b.c.d"} {
		_, err := v.Parse(token)
		require.Error(t, err)
	}
}

func TestFromAuthorizationHeader(t *testing.T) {
	_, err := FromAuthorizationHeader("")
	require.ErrorIs(t, err, ErrTokenMissing)

	_, err = FromAuthorizationHeader("Basic abc")
	require.ErrorIs(t, err, ErrTokenMissing)

	_, err = FromAuthorizationHeader("Bearer ")
	require.ErrorIs(t, err, ErrTokenMissing)

	token, err := FromAuthorizationHeader("Bearer abc.def.ghi")
	require.NoError(t, err)
	require.Equal(t, "abc.def.ghi", token)
}
