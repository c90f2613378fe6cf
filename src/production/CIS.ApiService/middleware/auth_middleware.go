package middleware

import (
	"errors"
	"net/http"
	"strings"

	jwt "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.ApiService/implementation/jwt"
	rbac "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.ApiService/implementation/rbac"

	"github.com/gin-gonic/gin"
)

// Key types for request context
type contextKey string

const (
	// Context keys
	UserIDContextKey      contextKey = "user_id"
	UsernameContextKey    contextKey = "username"
	UserRoleContextKey    contextKey = "user_role"
	TokenIDContextKey     contextKey = "token_id"
	AccessTokenContextKey contextKey = "access_token"
)

// AuthMiddleware provides middleware functions for authentication and authorization
type AuthMiddleware struct {
	jwtService  *jwt.Service
	rbacService *rbac.Service
	authorizer  *rbac.Authorizer
	config      Config
}

// Config holds middleware configuration
type Config struct {
	// HTTP header names for tokens
	AccessTokenHeader string

	// Cookie names for tokens (optional alternative to headers)
	AccessTokenCookie string
}

// DefaultConfig returns a default middleware configuration
func DefaultConfig() Config {
	return Config{
		AccessTokenHeader: "Authorization",
		AccessTokenCookie: "access_token",
	}
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtService *jwt.Service, rbacService *rbac.Service, config Config) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService:  jwtService,
		rbacService: rbacService,
		authorizer:  rbac.NewAuthorizer(rbacService, jwtService),
		config:      config,
	}
}

// extractToken gets a token from either header or cookie
func extractToken(r *http.Request, headerName, cookieName string) string {
	token := r.Header.Get(headerName)
	if token != "" {
		// Handle Authorization: Bearer token format
		if strings.HasPrefix(token, "Bearer ") {
			return strings.TrimPrefix(token, "Bearer ")
		}
		return token
	}

	if cookieName != "" {
		cookie, err := r.Cookie(cookieName)
		if err == nil {
			return cookie.Value
		}
	}

	return ""
}

// Authenticate middleware verifies access token
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		accessToken := extractToken(c.Request, m.config.AccessTokenHeader, m.config.AccessTokenCookie)
		if accessToken == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		accessClaims, err := m.jwtService.ValidateAccessToken(accessToken)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid access token"})
			c.Abort()
			return
		}

		// Add user data to context
		c.Set(string(UserIDContextKey), accessClaims.UserID)
		c.Set(string(UsernameContextKey), accessClaims.Username)
		c.Set(string(UserRoleContextKey), accessClaims.Role)
		c.Set(string(TokenIDContextKey), accessClaims.TokenID)
		c.Set(string(AccessTokenContextKey), accessToken)

		c.Next()
	}
}

// RequireAdmin ensures the user has admin role
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		accessToken, ok := c.Get(string(AccessTokenContextKey))
		if !ok {
			// Try to extract from request if not in context
			accessToken = extractToken(c.Request, m.config.AccessTokenHeader, m.config.AccessTokenCookie)
			if accessToken == "" {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
				c.Abort()
				return
			}
		}

		if err := m.authorizer.RequireAdmin(accessToken.(string)); err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireRole ensures the user has a specific role
func (m *AuthMiddleware) RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRoleVal, exists := c.Get(string(UserRoleContextKey))

		if !exists {
			accessToken := extractToken(c.Request, m.config.AccessTokenHeader, m.config.AccessTokenCookie)
			if accessToken == "" {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
				c.Abort()
				return
			}

			accessClaims, err := m.jwtService.ValidateAccessToken(accessToken)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid access token"})
				c.Abort()
				return
			}

			userRoleVal = accessClaims.Role
		}

		userRole, ok := userRoleVal.(string)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid role format in context"})
			c.Abort()
			return
		}

		if userRole != role {
			c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient role"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetUserFromGinContext retrieves user ID from Gin context
func GetUserFromGinContext(c *gin.Context) (string, error) {
	userIDVal, exists := c.Get(string(UserIDContextKey))
	if !exists {
		return "", errors.New("user not found in context")
	}

	userID, ok := userIDVal.(string)
	if !ok {
		return "", errors.New("invalid user ID format in context")
	}

	return userID, nil
}

// GetRoleFromGinContext retrieves user role from Gin context
func GetRoleFromGinContext(c *gin.Context) (string, error) {
	roleVal, exists := c.Get(string(UserRoleContextKey))
	if !exists {
		return "", errors.New("role not found in context")
	}

	role, ok := roleVal.(string)
	if !ok {
		return "", errors.New("invalid role format in context")
	}

	return role, nil
}
