package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tgo/embedhub/internal/model"
	"github.com/tgo/embedhub/internal/service"
)

// Context keys set by the auth middleware.
const (
	ContextUser   = "user"
	ContextUserID = "user_id"
	ContextRole   = "role"
	ContextAPIKey = "api_key"
)

type AuthMiddleware struct {
	auth *service.AuthService
}

func NewAuthMiddleware(auth *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(authHeader[7:])
}

// JWTAuth requires a valid access token belonging to an active user.
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}
		user, err := m.auth.UserFromToken(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		c.Set(ContextUser, user)
		c.Set(ContextUserID, user.ID)
		c.Set(ContextRole, user.Role)
		c.Next()
	}
}

// RoleRequired must run after JWTAuth.
func RoleRequired(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextRole)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid permissions"})
	}
}

// APIKeyAuth requires "Authorization: Bearer <secret>" with an issued API key.
func (m *AuthMiddleware) APIKeyAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		secret := bearerToken(c)
		if secret == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "No valid api key found."})
			return
		}
		if !m.auth.ValidAPIKey(c.Request.Context(), secret) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "No valid api key found."})
			return
		}
		c.Set(ContextAPIKey, secret)
		c.Next()
	}
}

// CurrentUser returns the user set by JWTAuth, if any.
func CurrentUser(c *gin.Context) *model.User {
	if v, ok := c.Get(ContextUser); ok {
		if user, ok := v.(*model.User); ok {
			return user
		}
	}
	return nil
}

// CurrentUserID is CurrentUser's id, or nil.
func CurrentUserID(c *gin.Context) *uint {
	user := CurrentUser(c)
	if user == nil {
		return nil
	}
	id := user.ID
	return &id
}
