// Package jwtmw はJWTの発行と、リクエストの利用者を識別するGinミドルウェアを提供します。
package jwtmw

import (
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// EnvKeyJWTSecret is the environment variable holding the HMAC signing secret.
	EnvKeyJWTSecret = "JWT_SECRET"

	ContextUserID = "userID"

	bearerPrefix = "Bearer "
)

var errInvalidToken = errors.New("invalid token")

// AuthRequired returns a Gin middleware that restricts access to signed-in users.
// Requests already identified by Identify pass through; others need a valid bearer token.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(ContextUserID); ok {
			c.Next()
			return
		}
		if !strings.HasPrefix(c.GetHeader("Authorization"), bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		if authenticate(c) {
			c.Next()
		}
	}
}

// authenticate verifies the bearer token and stores its user id under ContextUserID.
// It aborts the request and returns false when the token cannot be accepted.
func authenticate(c *gin.Context) bool {
	secret := os.Getenv(EnvKeyJWTSecret)
	if secret == "" {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "server misconfigured"})
		return false
	}
	userID, err := parseUserID(strings.TrimPrefix(c.GetHeader("Authorization"), bearerPrefix), secret)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return false
	}
	c.Set(ContextUserID, userID)
	return true
}

// parseUserID verifies an HS256 token issued by this service and returns its subject as a user id.
func parseUserID(tokenStr, secret string) (uint, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return 0, errInvalidToken
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, errInvalidToken
	}
	return uint(id), nil
}
