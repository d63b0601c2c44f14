package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"toolnav/internal/models"
	"toolnav/internal/services"
)

// Context keys set by Auth for downstream handlers.
const (
	ctxUserID   = "user_id"
	ctxUsername = "username"
	ctxEmail    = "email"
	ctxRole     = "role"
)

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code":    http.StatusUnauthorized,
		"message": message,
	})
}

// Auth authenticates the request from the Authorization header. Both
// credential flavors share the one header: secrets carrying the API
// token prefix are validated against the token store, everything else
// is parsed as a session JWT.
func Auth(auth *services.AuthService, tokens *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			unauthorized(c, "authorization required")
			return
		}
		credential, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || credential == "" {
			unauthorized(c, "invalid authorization header")
			return
		}

		if strings.HasPrefix(credential, models.SecretPrefix) {
			token, err := tokens.Validate(c.Request.Context(), credential)
			if err != nil || token.User == nil || !token.User.Active {
				unauthorized(c, "invalid token")
				return
			}
			c.Set(ctxUserID, token.User.ID)
			c.Set(ctxUsername, token.User.Username)
			c.Set(ctxEmail, token.User.Email)
			c.Set(ctxRole, token.User.Role)
			c.Next()
			return
		}

		claims, err := auth.ParseSession(credential)
		if err != nil {
			unauthorized(c, "invalid or expired session")
			return
		}
		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxUsername, claims.Username)
		c.Set(ctxEmail, claims.Email)
		c.Set(ctxRole, claims.Role)
		c.Next()
	}
}

// OptionalAuth resolves the caller's identity when a valid credential
// is present but never rejects the request; a bad or missing credential
// degrades to anonymous.
func OptionalAuth(auth *services.AuthService, tokens *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		credential, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || credential == "" {
			c.Next()
			return
		}

		if strings.HasPrefix(credential, models.SecretPrefix) {
			if token, err := tokens.Validate(c.Request.Context(), credential); err == nil &&
				token.User != nil && token.User.Active {
				c.Set(ctxUserID, token.User.ID)
				c.Set(ctxUsername, token.User.Username)
				c.Set(ctxEmail, token.User.Email)
				c.Set(ctxRole, token.User.Role)
			}
		} else if claims, err := auth.ParseSession(credential); err == nil {
			c.Set(ctxUserID, claims.UserID)
			c.Set(ctxUsername, claims.Username)
			c.Set(ctxEmail, claims.Email)
			c.Set(ctxRole, claims.Role)
		}
		c.Next()
	}
}

// AdminOnly must run after Auth; it rejects non-admin principals.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if role, _ := c.Get(ctxRole); role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code":    http.StatusForbidden,
				"message": "admin access required",
			})
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated user's id, or 0 when the request is
// anonymous.
func UserID(c *gin.Context) uint {
	if v, ok := c.Get(ctxUserID); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

// Role returns the authenticated user's role, or "" when anonymous.
func Role(c *gin.Context) string {
	if v, ok := c.Get(ctxRole); ok {
		if role, ok := v.(string); ok {
			return role
		}
	}
	return ""
}
