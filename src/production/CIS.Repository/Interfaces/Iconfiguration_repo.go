package interfaces

import (
	"context"

	cismodels "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Models"
)

type ConfigurationRepository interface {
	// Insert appends a new configuration version. Existing versions are
	// never updated or deleted.
	Insert(ctx context.Context, cfg *cismodels.Configuration) (*cismodels.Configuration, error)

	// Latest returns the version with the newest CreatedAt, or
	// ErrNotFound when the store is empty.
	Latest(ctx context.Context) (*cismodels.Configuration, error)

	// History returns versions newest-first, up to limit (0 = all).
	History(ctx context.Context, limit int) ([]cismodels.Configuration, error)
}
