// Package jwtmw issues and verifies the bearer tokens that guard the signals API.
package jwtmw

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// EnvKeyJWTSecret is the environment variable holding the HMAC secret.
	EnvKeyJWTSecret = "JWT_SECRET"

	Issuer = "pattern-scanner"

	ScopeRead = "signals:read"
	ScopeScan = "signals:scan"
)

var ErrEmptySubject = errors.New("token subject is empty")

// Claims are the registered claims plus the API scopes granted to a client.
type Claims struct {
	Scopes []string `json:"scopes,omitempty"`
	jwt.RegisteredClaims
}

// HasScope reports whether scope was granted.
func (c *Claims) HasScope(scope string) bool {
	return slices.Contains(c.Scopes, scope)
}

// Generator defines the interface for JWT token generation.
type Generator interface {
	// GenerateToken creates a signed JWT for an API client.
	GenerateToken(subject string, scopes []string) (string, error)
}

// generator implements the Generator interface.
type generator struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

// NewGenerator creates a new JWT generator with the provided secret and expiration duration.
func NewGenerator(secret string, expiration time.Duration) Generator {
	return &generator{
		secret:     []byte(secret),
		expiration: expiration,
		now:        time.Now,
	}
}

// GenerateToken creates an HS256 token for subject with the given scopes.
func (g *generator) GenerateToken(subject string, scopes []string) (string, error) {
	if subject == "" {
		return "", ErrEmptySubject
	}
	now := g.now()
	claims := Claims{
		Scopes: scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}
