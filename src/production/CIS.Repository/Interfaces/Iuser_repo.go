package interfaces

import (
	"context"

	auth_models "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Models/auth"
)

type UserRepository interface {
	// Create inserts a user, assigning a UserID when absent.
	Create(ctx context.Context, user *auth_models.User) (*auth_models.User, error)

	// GetByID returns a user by id, or ErrNotFound.
	GetByID(ctx context.Context, userID string) (*auth_models.User, error)

	// GetByUsername returns a user by username (case-insensitive), or
	// ErrNotFound.
	GetByUsername(ctx context.Context, username string) (*auth_models.User, error)

	// Update rewrites a user record.
	Update(ctx context.Context, user *auth_models.User) error
}
