// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements bearer-token authentication. Token validation is
// delegated to a narrow SessionValidator function so the middleware stays
// decoupled from the auth service and its storage.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Context keys used to stash the authenticated identity.
const (
	ctxKeyUserID   = "userID"
	ctxKeyUserRole = "userRole"
)

// AuthIdentity is the resolved owner of a validated session token.
type AuthIdentity struct {
	// UserID is the account's primary key.
	UserID string
	// Role is the account's role (user, admin).
	Role string
}

// SessionValidator resolves a bearer token to its identity. Implementations
// must return an error for any token that is unknown, expired, or owned by a
// deactivated account; the middleware treats every error as 401.
type SessionValidator func(ctx context.Context, token string) (AuthIdentity, error)

// UserIDFrom returns the authenticated user ID stored by RequireAuth.
// The second return value indicates presence.
func UserIDFrom(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyUserID)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// RoleFrom returns the authenticated user's role, or "" when absent.
func RoleFrom(c *gin.Context) string {
	v, ok := c.Get(ctxKeyUserRole)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// RequireAuth enforces a valid "Authorization: Bearer <token>" header on
// every request it guards. On success it stashes the identity in the context
// for handlers; on failure it aborts with a uniform 401 envelope that never
// distinguishes missing, malformed, expired, or revoked credentials.
func RequireAuth(validate SessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			unauthorized(c)
			return
		}
		id, err := validate(c.Request.Context(), token)
		if err != nil {
			unauthorized(c)
			return
		}
		c.Set(ctxKeyUserID, id.UserID)
		c.Set(ctxKeyUserRole, id.Role)
		c.Next()
	}
}

// RequireRole aborts with 403 unless the authenticated identity carries the
// given role. Must run after RequireAuth.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if RoleFrom(c) != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code":    "forbidden",
				"message": "insufficient privileges",
			})
			return
		}
		c.Next()
	}
}

// bearerToken extracts the credential from an Authorization header value.
// Returns "" unless the scheme is exactly "Bearer" (case-insensitive) with a
// non-empty token.
func bearerToken(header string) string {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func unauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", `Bearer realm="api"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code":    "unauthorized",
		"message": "authentication required",
	})
}
