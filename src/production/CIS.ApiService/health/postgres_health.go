package health

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	config "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Config"
)

// ConnectPostgresWithTimeout creates a PostgreSQL connection with a timeout context
func ConnectPostgresWithTimeout(cfg *config.Config, timeout time.Duration) (*sql.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	db, err := sql.Open("postgres", cfg.GetDatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("unable to open PostgreSQL connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to ping PostgreSQL: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxConns)
	db.SetMaxIdleConns(cfg.Database.MinConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

// DatabaseManager handles Postgres schema bootstrap and teardown.
type DatabaseManager struct {
	db *sql.DB
}

func NewDatabaseManager(db *sql.DB) *DatabaseManager {
	return &DatabaseManager{db: db}
}

// CreateTables creates the required tables if they don't exist
func (dm *DatabaseManager) CreateTables(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	createUsersTable := `
		CREATE TABLE IF NOT EXISTS users (
			user_id         TEXT PRIMARY KEY,
			name            TEXT NOT NULL,
			username        TEXT NOT NULL UNIQUE,
			email           TEXT NOT NULL UNIQUE,
			password        TEXT NOT NULL,
			role            TEXT NOT NULL,
			active          BOOLEAN NOT NULL DEFAULT true,
			last_connection TIMESTAMPTZ,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`

	createReadingsTable := `
		CREATE TABLE IF NOT EXISTS readings (
			sensor_id     TEXT NOT NULL,
			raw_value     DOUBLE PRECISION NOT NULL,
			volume_liters BIGINT NOT NULL,
			status        TEXT NOT NULL,
			location      TEXT NOT NULL,
			timestamp     TIMESTAMPTZ NOT NULL
		);
	`

	createConfigurationsTable := `
		CREATE TABLE IF NOT EXISTS configurations (
			name                 TEXT NOT NULL,
			capacity_liters      BIGINT NOT NULL,
			location             TEXT NOT NULL,
			material             TEXT NOT NULL,
			sensor_model         TEXT NOT NULL,
			sensor_id            TEXT NOT NULL,
			sensor_installed_at  TIMESTAMPTZ NOT NULL,
			sensor_precision     TEXT NOT NULL,
			sampling_interval_ms INTEGER NOT NULL,
			alert_threshold      DOUBLE PRECISION NOT NULL,
			critical_threshold   DOUBLE PRECISION NOT NULL,
			created_at           TIMESTAMPTZ NOT NULL
		);
	`

	createIndexes := `
		CREATE INDEX IF NOT EXISTS idx_readings_ts_desc ON readings (timestamp DESC);
		CREATE INDEX IF NOT EXISTS idx_readings_sensor_ts ON readings (sensor_id, timestamp DESC);
		CREATE INDEX IF NOT EXISTS idx_configurations_created_desc ON configurations (created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_users_username_lower ON users (LOWER(username));
	`

	queries := []string{
		createUsersTable,
		createReadingsTable,
		createConfigurationsTable,
		createIndexes,
	}

	for _, query := range queries {
		if _, err := dm.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}

	return nil
}

// PingPostgres checks the PostgreSQL connection for the readiness probe.
func PingPostgres(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	var result int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database query failed: %w", err)
	}
	return nil
}

// Close closes the database connection
func (dm *DatabaseManager) Close() error {
	if dm.db != nil {
		return dm.db.Close()
	}
	return nil
}
