package auth

import (
	"context"
	"errors"
	"time"

	jwt "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.ApiService/implementation/jwt"
	rbac "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.ApiService/implementation/rbac"
	logger "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Logger"
	api_models "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Models/api"
	auth_models "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Models/auth"
	interfaces "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Repository/Interfaces"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for every login failure: unknown
// username, wrong password or deactivated account. Login responses must
// not reveal which one it was.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService aggregates auth operations
type AuthService struct {
	userRepo    interfaces.UserRepository
	jwtService  *jwt.Service
	rbacService *rbac.Service
	logger      *logger.Logger
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	AccessToken string                 `json:"access_token"`
	TokenID     string                 `json:"token_id"`
	ExpiresAt   int64                  `json:"expires_at"`
	User        auth_models.PublicUser `json:"user"`
}

type RefreshTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenID     string `json:"token_id"`
	ExpiresAt   int64  `json:"expires_at"`
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo interfaces.UserRepository,
	jwtService *jwt.Service,
	rbacService *rbac.Service,
	logger *logger.Logger,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		jwtService:  jwtService,
		rbacService: rbacService,
		logger:      logger.WithComponent("auth"),
	}
}

// Login authenticates a user and returns tokens. The username match is
// case-insensitive; a successful login stamps the user's last connection
// time.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, *api_models.TokenPair, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	if !user.Active {
		return nil, nil, ErrInvalidCredentials
	}

	tokenPair, err := s.jwtService.GenerateTokens(user.UserID, user.Username, user.Role)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	user.LastConnection = &now
	user.UpdatedAt = now
	if err := s.userRepo.Update(ctx, user); err != nil {
		// The session is already valid; losing the connection stamp is
		// not worth failing the login over.
		s.logger.WithField("username", user.Username).WithError(err).Warn("failed to update last connection")
	}

	return &AuthResponse{
		AccessToken: tokenPair.AccessToken,
		TokenID:     tokenPair.TokenID,
		ExpiresAt:   tokenPair.ExpiresAt,
		User:        user.Public(),
	}, tokenPair, nil
}

// RefreshTokens uses a refresh token to generate new access and permission tokens
func (s *AuthService) RefreshTokens(ctx context.Context, refreshToken string) (*RefreshTokenResponse, *api_models.TokenPair, error) {
	tokenPair, err := s.jwtService.RefreshTokens(ctx, refreshToken, s.userRepo)
	if err != nil {
		return nil, nil, err
	}

	return &RefreshTokenResponse{
		AccessToken: tokenPair.AccessToken,
		TokenID:     tokenPair.TokenID,
		ExpiresAt:   tokenPair.ExpiresAt,
	}, tokenPair, nil
}

// VerifyAccessToken validates an access token and returns its claims.
func (s *AuthService) VerifyAccessToken(token string) (*api_models.AccessClaims, error) {
	return s.jwtService.ValidateAccessToken(token)
}

// GetUserByID retrieves a user by ID
func (s *AuthService) GetUserByID(ctx context.Context, userID string) (*auth_models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// HashPassword hashes a password using bcrypt
func (s *AuthService) HashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedPassword), nil
}
