package implementation

import (
	"context"
	"database/sql"
	"fmt"

	cismodels "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Models"
)

type PostgresConfigurationRepository struct {
	db *sql.DB
}

func NewPostgresConfigurationRepository(db *sql.DB) *PostgresConfigurationRepository {
	return &PostgresConfigurationRepository{db: db}
}

const configurationColumns = `name, capacity_liters, location, material, sensor_model, sensor_id,
	sensor_installed_at, sensor_precision, sampling_interval_ms, alert_threshold, critical_threshold, created_at`

func (r *PostgresConfigurationRepository) Insert(ctx context.Context, cfg *cismodels.Configuration) (*cismodels.Configuration, error) {
	query := `
		INSERT INTO configurations (` + configurationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	stored := *cfg
	_, err := r.db.ExecContext(ctx, query,
		stored.Name, stored.CapacityLiters, stored.Location, stored.Material,
		stored.SensorModel, stored.SensorID, stored.SensorInstalledAt, stored.SensorPrecision,
		stored.SamplingIntervalMs, stored.AlertThreshold, stored.CriticalThreshold, stored.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert configuration: %w", err)
	}
	return &stored, nil
}

func (r *PostgresConfigurationRepository) Latest(ctx context.Context) (*cismodels.Configuration, error) {
	query := `SELECT ` + configurationColumns + ` FROM configurations ORDER BY created_at DESC LIMIT 1`

	cfg, err := r.scanOne(r.db.QueryRowContext(ctx, query))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, cismodels.ErrNotFound
		}
		return nil, fmt.Errorf("get latest configuration: %w", err)
	}
	return cfg, nil
}

func (r *PostgresConfigurationRepository) History(ctx context.Context, limit int) ([]cismodels.Configuration, error) {
	query := `SELECT ` + configurationColumns + ` FROM configurations ORDER BY created_at DESC`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query configurations: %w", err)
	}
	defer rows.Close()

	versions := make([]cismodels.Configuration, 0)
	for rows.Next() {
		var cfg cismodels.Configuration
		if err := rows.Scan(&cfg.Name, &cfg.CapacityLiters, &cfg.Location, &cfg.Material,
			&cfg.SensorModel, &cfg.SensorID, &cfg.SensorInstalledAt, &cfg.SensorPrecision,
			&cfg.SamplingIntervalMs, &cfg.AlertThreshold, &cfg.CriticalThreshold, &cfg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan configuration: %w", err)
		}
		versions = append(versions, cfg)
	}
	return versions, rows.Err()
}

func (r *PostgresConfigurationRepository) scanOne(row *sql.Row) (*cismodels.Configuration, error) {
	var cfg cismodels.Configuration
	err := row.Scan(&cfg.Name, &cfg.CapacityLiters, &cfg.Location, &cfg.Material,
		&cfg.SensorModel, &cfg.SensorID, &cfg.SensorInstalledAt, &cfg.SensorPrecision,
		&cfg.SamplingIntervalMs, &cfg.AlertThreshold, &cfg.CriticalThreshold, &cfg.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
