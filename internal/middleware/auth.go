// Package middleware provides HTTP middleware for the API.
//
// Go Pattern: Middleware in Go is a function that wraps an HTTP handler.
// In Gin, middleware is a gin.HandlerFunc that calls c.Next() to continue
// the chain, or c.Abort() to stop processing. This is similar to Express.js
// middleware, but with explicit control flow.
package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/Shimizu-Technology/storyboard-api/internal/models"
)

// contextKey is a custom type for context keys to avoid collisions.
// Go Pattern: Use unexported types for context keys so other packages
// can't accidentally overwrite your values.
type contextKey string

const ownerContextKey contextKey = "owner_id"

// errNoSubject rejects tokens that do not name an owner.
var errNoSubject = errors.New("token has no subject")

// ParseOwnerToken validates an HS256 token and returns its subject, which
// is the owner id every document is scoped to. Tokens are issued by the
// identity provider in front of this service; we only verify them.
func ParseOwnerToken(tokenString, secret string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", jwt.ErrSignatureInvalid
	}

	owner := strings.TrimSpace(claims.Subject)
	if owner == "" {
		return "", errNoSubject
	}
	return owner, nil
}

// GenerateOwnerToken signs a token for ownerID. The server only uses it for
// local development tokens and tests.
func GenerateOwnerToken(ownerID, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   ownerID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// OwnerAuth returns middleware that requires a valid Bearer token and stores
// the owner id in the context.
func OwnerAuth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "unauthorized",
				Message: "Missing or invalid Authorization header. Use 'Bearer <token>'",
				Code:    http.StatusUnauthorized,
			})
			c.Abort() // Stop the middleware chain — don't call the handler
			return
		}

		owner, err := ParseOwnerToken(strings.TrimPrefix(authHeader, "Bearer "), jwtSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "unauthorized",
				Message: "Invalid or expired token",
				Code:    http.StatusUnauthorized,
			})
			c.Abort()
			return
		}

		// Go Pattern: Gin uses its own context (different from context.Context).
		// c.Set() stores values that handlers can retrieve with c.Get().
		c.Set(string(ownerContextKey), owner)
		c.Next()
	}
}

// GetOwnerID returns the owner id set by OwnerAuth, or "".
func GetOwnerID(c *gin.Context) string {
	// Go Pattern: The comma-ok idiom won't panic if the value is missing.
	owner, _ := c.Get(string(ownerContextKey))
	id, _ := owner.(string)
	return id
}
