package jwtmw

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer is the "iss" claim of every access token. Tokens from other issuers are rejected.
const Issuer = "watchlist_backend"

var errEmptySecret = errors.New("jwt secret is not configured")

// Claims are the claims of an access token. Subject holds the decimal user id.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Generator defines the interface for JWT token generation.
type Generator interface {
	// GenerateToken creates a signed JWT token for the given user.
	GenerateToken(userID uint, email string) (string, error)
}

type generator struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

var _ Generator = (*generator)(nil)

// NewGenerator creates an HS256 token generator. Tokens expire ttl after issue.
func NewGenerator(secret string, ttl time.Duration) *generator {
	return &generator{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// GenerateToken signs a token whose subject is userID.
func (g *generator) GenerateToken(userID uint, email string) (string, error) {
	if len(g.secret) == 0 {
		return "", errEmptySecret
	}
	now := g.now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
