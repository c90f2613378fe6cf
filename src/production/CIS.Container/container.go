// Package container wires configuration, storage and repositories for
// the two binaries. The API container picks Mongo or Postgres
// repositories from DB_DRIVER; both sides share lifecycle cleanup.
package container

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.ApiService/health"
	config "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Config"
	logger "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Logger"
	"gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Repository/Implementation"
	interfaces "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Repository/Interfaces"
)

// Repositories bundles the storage-backed repositories the API service
// runs on, whichever driver built them.
type Repositories struct {
	Readings       interfaces.ReadingRepository
	Configurations interfaces.ConfigurationRepository
	Users          interfaces.UserRepository
}

// Container manages dependencies and their lifecycle
type Container struct {
	config *config.Config
	logger *logger.Logger

	mongoClient *mongo.Client
	db          *sql.DB

	repos *Repositories

	// Mutex for thread-safe access
	mu sync.RWMutex

	// Cleanup functions
	cleanupFuncs []func() error
}

// ApiContainer manages dependencies for the API service
type ApiContainer struct {
	*Container
}

// NewApiContainer creates a new container for the API service
func NewApiContainer() (*ApiContainer, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.NewLogger(&cfg.Logging)

	return &ApiContainer{Container: &Container{
		config: cfg,
		logger: log,
	}}, nil
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.logger
}

// GetMongoClient returns the MongoDB client, connecting on first use.
func (c *Container) GetMongoClient() (*mongo.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mongoClient == nil {
		client, err := health.ConnectMongoWithTimeout(c.config, 20*time.Second)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		c.mongoClient = client
		c.cleanupFuncs = append(c.cleanupFuncs, func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return client.Disconnect(ctx)
		})
	}

	return c.mongoClient, nil
}

// GetDatabase returns the PostgreSQL connection, connecting on first use.
func (c *Container) GetDatabase() (*sql.DB, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db == nil {
		db, err := health.ConnectPostgresWithTimeout(c.config, 20*time.Second)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		c.db = db
		c.cleanupFuncs = append(c.cleanupFuncs, db.Close)
	}

	return c.db, nil
}

// GetRepositories builds the repository set for the configured driver,
// connecting to storage and (for Postgres) bootstrapping the schema.
func (c *Container) GetRepositories(ctx context.Context) (*Repositories, error) {
	c.mu.RLock()
	if c.repos != nil {
		defer c.mu.RUnlock()
		return c.repos, nil
	}
	c.mu.RUnlock()

	var repos *Repositories
	switch c.config.Database.Driver {
	case "postgres":
		db, err := c.GetDatabase()
		if err != nil {
			return nil, err
		}
		if err := health.NewDatabaseManager(db).CreateTables(ctx); err != nil {
			return nil, fmt.Errorf("failed to create tables: %w", err)
		}
		repos = &Repositories{
			Readings:       implementation.NewPostgresReadingRepository(db),
			Configurations: implementation.NewPostgresConfigurationRepository(db),
			Users:          implementation.NewPostgresUserRepository(db),
		}
	default: // mongo
		client, err := c.GetMongoClient()
		if err != nil {
			return nil, err
		}
		opTimeout := c.config.Database.OperationTimeout
		repos = &Repositories{
			Readings:       implementation.NewMongoReadingRepository(health.ReadingsCollection(client, c.config), opTimeout),
			Configurations: implementation.NewMongoConfigurationRepository(health.ConfigurationsCollection(client, c.config), opTimeout),
			Users:          implementation.NewMongoUserRepository(health.UsersCollection(client, c.config), opTimeout),
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.repos == nil {
		c.repos = repos
	}
	return c.repos, nil
}

// StorageReadinessCheck returns the readiness probe for the configured
// driver.
func (c *Container) StorageReadinessCheck() func(ctx context.Context) error {
	if c.config.Database.Driver == "postgres" {
		return func(ctx context.Context) error {
			db, err := c.GetDatabase()
			if err != nil {
				return err
			}
			return health.PingPostgres(ctx, db)
		}
	}
	return func(ctx context.Context) error {
		client, err := c.GetMongoClient()
		if err != nil {
			return err
		}
		return health.PingMongo(ctx, client)
	}
}

// AddCleanupFunc adds a cleanup function
func (c *Container) AddCleanupFunc(fn func() error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleanupFuncs = append(c.cleanupFuncs, fn)
}

// Shutdown gracefully shuts down the container and all its dependencies
func (c *Container) Shutdown(ctx context.Context) error {
	c.logger.Info("Shutting down container...")

	c.mu.Lock()
	funcs := c.cleanupFuncs
	c.cleanupFuncs = nil
	c.mu.Unlock()

	// Execute cleanup functions in reverse order
	for i := len(funcs) - 1; i >= 0; i-- {
		if err := funcs[i](); err != nil {
			c.logger.ErrorWithError(err, "Error during cleanup")
		}
	}

	c.logger.Info("Container shutdown complete")
	return nil
}
