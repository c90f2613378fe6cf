package auth

import (
	"context"
	"errors"
	"fmt"

	logger "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Logger"
	cismodels "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Models"
	auth_models "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Models/auth"
	interfaces "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Repository/Interfaces"

	"golang.org/x/crypto/bcrypt"
)

// AdminInitializerService creates the first admin account on startup so
// a fresh deployment is never locked out of the dashboard.
type AdminInitializerService struct {
	userRepo    interfaces.UserRepository
	logger      *logger.Logger
	adminConfig AdminConfig
}

// AdminConfig holds admin user configuration
type AdminConfig struct {
	Username string
	Email    string
	Password string
}

// NewAdminInitializerService creates a new admin initializer service
func NewAdminInitializerService(
	userRepo interfaces.UserRepository,
	logger *logger.Logger,
	adminConfig AdminConfig,
) *AdminInitializerService {
	return &AdminInitializerService{
		userRepo:    userRepo,
		logger:      logger.WithComponent("admin-init"),
		adminConfig: adminConfig,
	}
}

// InitializeAdminUser creates the configured admin user if it does not
// exist yet. An existing account is left untouched, even if the
// configured password has changed since.
func (s *AdminInitializerService) InitializeAdminUser(ctx context.Context) error {
	existing, err := s.userRepo.GetByUsername(ctx, s.adminConfig.Username)
	if err != nil && !errors.Is(err, cismodels.ErrNotFound) {
		return err
	}
	if existing != nil {
		s.logger.WithField("username", existing.Username).Info("Admin user already exists, skipping creation")
		return nil
	}

	s.logger.Info("No admin user found. Creating first admin user...")

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(s.adminConfig.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	adminUser := auth_models.NewUser(
		"Administrador",
		s.adminConfig.Username,
		s.adminConfig.Email,
		string(hashedPassword),
		"admin",
	)

	if _, err := s.userRepo.Create(ctx, adminUser); err != nil {
		return err
	}

	s.logger.WithField("username", s.adminConfig.Username).Info("First admin user created with configured credentials")
	s.logger.Warn("IMPORTANT: Change the admin password after first login for security!")

	return nil
}
