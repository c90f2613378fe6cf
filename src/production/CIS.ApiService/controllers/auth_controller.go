package controllers

import (
	"net/http"
	"time"

	service "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.ApiService/implementation/auth"
	"gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.ApiService/middleware"

	"github.com/gin-gonic/gin"
)

// AuthController handles authentication requests
type AuthController struct {
	authService *service.AuthService
}

// NewAuthController creates a new auth controller
func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{
		authService: authService,
	}
}

// Login handles user login
func (h *AuthController) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	response, tokenPair, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		// Always the same message, whatever actually failed.
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": service.ErrInvalidCredentials.Error()})
		return
	}

	// Set refresh token as HTTP-only cookie
	c.SetCookie(
		"refresh_token",
		tokenPair.RefreshToken,
		int(time.Until(time.Unix(tokenPair.ExpiresAt, 0)).Seconds()),
		"/",
		"",
		false, // Set to true in production with HTTPS
		true,  // HTTP only
	)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   response.AccessToken,
		"user":    response.User,
	})
}

// RefreshTokens handles token refresh
func (h *AuthController) RefreshTokens(c *gin.Context) {
	refreshToken, err := c.Cookie("refresh_token")
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "refresh token not found"})
		return
	}

	response, tokenPair, err := h.authService.RefreshTokens(c.Request.Context(), refreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	// Set new refresh token as HTTP-only cookie
	c.SetCookie(
		"refresh_token",
		tokenPair.RefreshToken,
		int(time.Until(time.Unix(tokenPair.ExpiresAt, 0)).Seconds()),
		"/",
		"",
		false, // Set to true in production with HTTPS
		true,  // HTTP only
	)

	c.JSON(http.StatusOK, response)
}

// Logout handles user logout
func (h *AuthController) Logout(c *gin.Context) {
	// Clear the refresh token cookie
	c.SetCookie(
		"refresh_token",
		"",
		-1,
		"/",
		"",
		false, // Set to true in production with HTTPS
		true,  // HTTP only
	)

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out successfully"})
}

// SessionStatus reports whether the presented access token is still
// valid and who it belongs to. The dashboard polls this to keep the
// session indicator honest.
func (h *AuthController) SessionStatus(c *gin.Context) {
	userID, err := middleware.GetUserFromGinContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"authenticated": false})
		return
	}

	user, err := h.authService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"authenticated": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"user":          user.Public(),
	})
}

// Verify confirms a token presented in the request body is valid, for
// clients that keep tokens outside the Authorization header.
func (h *AuthController) Verify(c *gin.Context) {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"valid": false, "error": "token is required"})
		return
	}

	claims, err := h.authService.VerifyAccessToken(req.Token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"valid": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":    true,
		"user_id":  claims.UserID,
		"username": claims.Username,
		"role":     claims.Role,
	})
}

// RegisterRoutes registers the auth routes with Gin
func (h *AuthController) RegisterRoutes(router *gin.Engine, authMiddleware *middleware.AuthMiddleware) {
	// Public routes
	auth := router.Group("/api/auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.RefreshTokens)
		auth.POST("/logout", h.Logout)
		auth.POST("/verify", h.Verify)
	}

	// Protected routes
	protected := auth.Group("", authMiddleware.Authenticate())
	{
		protected.GET("/session-status", h.SessionStatus)
	}
}
