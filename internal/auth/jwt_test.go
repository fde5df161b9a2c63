package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizmaker-service/internal/domain"
)

func TestIssueAndVerify_Success(t *testing.T) {
	t.Parallel()

	issuer := NewIssuer("super-secret", time.Hour)

	tok, err := issuer.Issue("user-123", "alice")
	require.NoError(t, err)

	id, err := issuer.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", id.ID)
	assert.Equal(t, "alice", id.Username)
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	issuer := NewIssuer("secret", 24*time.Hour)
	issued := time.Now().Add(-25 * time.Hour)
	issuer.now = func() time.Time { return issued }

	tok, err := issuer.Issue("u1", "bob")
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.Verify(tok)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewIssuer("right-secret", time.Hour).Issue("u2", "carol")
	require.NoError(t, err)

	_, err = NewIssuer("wrong-secret", time.Hour).Verify(tok)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestVerify_EmptySecretRejectsEverything(t *testing.T) {
	t.Parallel()

	tok, err := NewIssuer("k", time.Hour).Issue("u3", "dave")
	require.NoError(t, err)

	_, err = NewIssuer("", time.Hour).Verify(tok)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = NewIssuer("", time.Hour).Issue("u3", "dave")
	assert.Error(t, err)
}

func TestVerify_NoneAlgorithm(t *testing.T) {
	t.Parallel()

	claims := Claims{
		User: UserClaim{ID: "u4", Username: "eve"},
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewIssuer("k", time.Hour).Verify(tok)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestVerify_MalformedAndMissing(t *testing.T) {
	t.Parallel()

	issuer := NewIssuer("k", time.Hour)

	for _, tok := range []string{"", "not.a.jwt", "garbage"} {
		_, err := issuer.Verify(tok)
		if !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("token %q: expected ErrUnauthorized, got %v", tok, err)
		}
	}
}

func TestVerify_MissingUserID(t *testing.T) {
	t.Parallel()

	issuer := NewIssuer("k", time.Hour)
	tok, err := issuer.Issue("", "nobody")
	require.NoError(t, err)

	_, err = issuer.Verify(tok)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
