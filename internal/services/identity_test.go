package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testIdentitySecret = "test-provider-secret-0123456789abcdef"

func signIdentity(t *testing.T, secret string, claims IdentityClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validClaims() IdentityClaims {
	return IdentityClaims{
		Name:    "Alice",
		Picture: "https://example.com/alice.png",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-alice",
			Issuer:    "dailymoji-auth",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func TestIdentityVerifier_Verify(t *testing.T) {
	t.Parallel()
	v := NewIdentityVerifier(testIdentitySecret, "dailymoji-auth")

	sess, err := v.Verify(signIdentity(t, testIdentitySecret, validClaims()))
	require.NoError(t, err)
	assert.Equal(t, "user-alice", sess.UserID)
	assert.Equal(t, "Alice", sess.DisplayName)
	assert.Equal(t, "https://example.com/alice.png", sess.PhotoURL)
}

func TestIdentityVerifier_Rejects(t *testing.T) {
	t.Parallel()

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	noExp := validClaims()
	noExp.ExpiresAt = nil

	noSubject := validClaims()
	noSubject.Subject = ""

	otherIssuer := validClaims()
	otherIssuer.Issuer = "someone-else"

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not-a-jwt"},
		{name: "wrong secret", token: signIdentity(t, "another-secret-0123456789abcdef", validClaims())},
		{name: "expired", token: signIdentity(t, testIdentitySecret, expired)},
		{name: "no expiry", token: signIdentity(t, testIdentitySecret, noExp)},
		{name: "no subject", token: signIdentity(t, testIdentitySecret, noSubject)},
		{name: "other issuer", token: signIdentity(t, testIdentitySecret, otherIssuer)},
	}

	v := NewIdentityVerifier(testIdentitySecret, "dailymoji-auth")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := v.Verify(tt.token)
			require.ErrorIs(t, err, ErrInvalidIdentityToken)
		})
	}
}

func TestIdentityVerifier_Unconfigured(t *testing.T) {
	t.Parallel()
	v := NewIdentityVerifier("", "")

	_, err := v.Verify(signIdentity(t, testIdentitySecret, validClaims()))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidIdentityToken)
}
