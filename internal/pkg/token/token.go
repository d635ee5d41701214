// Package token mints and verifies the HS256 bearer tokens returned by the
// credential exchange. Tokens are stateless: the role is captured at mint
// time and stays in force until the token expires.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yamdb/review-api/internal/core/domain"
)

const DefaultTTL = 24 * time.Hour

// Claims is the token payload.
type Claims struct {
	Username  string `json:"username"`
	Role      string `json:"role"`
	Superuser bool   `json:"superuser,omitempty"`
	jwt.RegisteredClaims
}

// Signer mints and parses tokens with a shared secret.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSigner(secret string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Signer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Mint signs a token bound to the user's identity and current role.
func (s *Signer) Mint(user *domain.User) (string, error) {
	now := s.now()
	claims := Claims{
		Username:  user.Username,
		Role:      string(user.Role),
		Superuser: user.Superuser,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies signature, algorithm and expiry. Any failure is reported
// as domain.ErrInvalidToken.
func (s *Signer) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !tkn.Valid {
		return nil, errors.Join(domain.ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}
