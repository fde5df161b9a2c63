// Package auth issues and verifies the HS256 access tokens carried in the
// x-auth-token header.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"quizmaker-service/internal/domain"
)

// ErrTokenExpired is returned for a well-formed token past its expiry.
var ErrTokenExpired = fmt.Errorf("token expired: %w", domain.ErrUnauthorized)

// UserClaim is the identity embedded in every token.
type UserClaim struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Claims mirrors the {user: {id, username}} payload plus the registered claims.
type Claims struct {
	User UserClaim `json:"user"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies tokens with a single shared secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a signed token for the user that expires after the configured TTL.
func (i *Issuer) Issue(userID, username string) (string, error) {
	if len(i.secret) == 0 {
		return "", errors.New("token secret is empty")
	}
	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		User: UserClaim{ID: userID, Username: username},
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses the token and returns the caller identity. Every failure
// wraps domain.ErrUnauthorized.
func (i *Issuer) Verify(tokenString string) (domain.Identity, error) {
	if tokenString == "" || len(i.secret) == 0 {
		return domain.Identity{}, domain.ErrUnauthorized
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Identity{}, ErrTokenExpired
		}
		return domain.Identity{}, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}

	if claims.User.ID == "" {
		return domain.Identity{}, fmt.Errorf("%w: token has no user id", domain.ErrUnauthorized)
	}

	return domain.Identity{ID: claims.User.ID, Username: claims.User.Username}, nil
}
