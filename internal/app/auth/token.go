package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultSessionTTL = 7 * 24 * time.Hour

var ErrMissingSecret = errors.New("session token secret is required")

// TokenIssuer signs and verifies the dashboard session token.
type TokenIssuer struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

type sessionClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

func (t TokenIssuer) now() time.Time {
	if t.Now == nil {
		return time.Now()
	}
	return t.Now()
}

// Issue returns the signed token and its expiry.
func (t TokenIssuer) Issue(id Identity) (string, time.Time, error) {
	if len(t.Secret) == 0 {
		return "", time.Time{}, ErrMissingSecret
	}
	ttl := t.TTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	issued := t.now().UTC().Truncate(time.Second)
	expires := issued.Add(ttl)
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		Email: id.Email,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

func (t TokenIssuer) Parse(token string) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" || len(t.Secret) == 0 {
		return Identity{}, ErrInvalidToken
	}
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return t.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || claims.Subject == "" {
		return Identity{}, ErrInvalidToken
	}
	return Identity{UserID: claims.Subject, Email: claims.Email}, nil
}
