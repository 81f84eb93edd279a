// Package auth verifies the bearer credentials subscribers and API callers
// present. Tokens are HMAC-signed JWTs carrying the user id, username, and
// an admin flag.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mrmateussiilva/api-sgp/internal/domain"
)

// Claims is the token payload. Subject carries the username.
type Claims struct {
	UserID int64 `json:"user_id"`
	Admin  bool  `json:"admin"`
	jwt.RegisteredClaims
}

// Identity is a verified caller.
type Identity struct {
	UserID   int64
	Username string
	Admin    bool
}

// Actor converts the identity into the actor attached to broadcast events.
func (i *Identity) Actor() *domain.Actor {
	if i == nil {
		return nil
	}
	return &domain.Actor{UserID: i.UserID, Username: i.Username}
}

// Verifier validates bearer tokens against a shared HMAC secret.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify parses and validates a token string. Any failure maps to
// domain.ErrInvalidToken so callers get one rejection path.
func (v *Verifier) Verify(tokenString string) (*Identity, error) {
	if tokenString == "" {
		return nil, domain.ErrInvalidToken
	}

	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, domain.ErrInvalidToken
	}
	if claims.UserID == 0 {
		return nil, domain.ErrInvalidToken
	}

	return &Identity{
		UserID:   claims.UserID,
		Username: claims.Subject,
		Admin:    claims.Admin,
	}, nil
}

// Sign issues a token for the given identity. Used by tests and by the
// external auth service that shares the secret.
func (v *Verifier) Sign(identity Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: identity.UserID,
		Admin:  identity.Admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}
