package implementation

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	cismodels "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Models"
	interfaces "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Repository/Interfaces"
)

type PostgresReadingRepository struct {
	db *sql.DB
}

func NewPostgresReadingRepository(db *sql.DB) *PostgresReadingRepository {
	return &PostgresReadingRepository{db: db}
}

func (r *PostgresReadingRepository) InsertReading(ctx context.Context, rd cismodels.Reading) (*cismodels.Reading, error) {
	query := `
		INSERT INTO readings (sensor_id, raw_value, volume_liters, status, location, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query, rd.SensorID, rd.RawValue, rd.VolumeLiters, rd.Status, rd.Location, rd.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("insert reading: %w", err)
	}
	return &rd, nil
}

func (r *PostgresReadingRepository) GetLatest(ctx context.Context) (*cismodels.Reading, error) {
	query := `
		SELECT sensor_id, raw_value, volume_liters, status, location, timestamp
		FROM readings
		ORDER BY timestamp DESC
		LIMIT 1
	`

	var rd cismodels.Reading
	err := r.db.QueryRowContext(ctx, query).Scan(&rd.SensorID, &rd.RawValue, &rd.VolumeLiters, &rd.Status, &rd.Location, &rd.Timestamp)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, cismodels.ErrNotFound
		}
		return nil, fmt.Errorf("get latest reading: %w", err)
	}
	return &rd, nil
}

func (r *PostgresReadingRepository) Query(ctx context.Context, params interfaces.ReadingQueryParams) (*interfaces.ReadingQueryResult, error) {
	params.Normalize()

	where, args := buildReadingWhere(params)

	var total int64
	countQuery := "SELECT COUNT(*) FROM readings" + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count readings: %w", err)
	}

	query := fmt.Sprintf(
		"SELECT sensor_id, raw_value, volume_liters, status, location, timestamp FROM readings%s ORDER BY %s %s LIMIT $%d OFFSET $%d",
		where, params.SortBy, sqlOrder(params.SortOrder), len(args)+1, len(args)+2,
	)
	args = append(args, params.PageSize, (params.Page-1)*params.PageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query readings: %w", err)
	}
	defer rows.Close()

	items, err := scanReadings(rows)
	if err != nil {
		return nil, err
	}

	return &interfaces.ReadingQueryResult{
		Items:    items,
		Total:    total,
		Page:     params.Page,
		PageSize: params.PageSize,
	}, nil
}

func (r *PostgresReadingRepository) QueryAll(ctx context.Context, params interfaces.ReadingQueryParams) ([]cismodels.Reading, error) {
	params.Normalize()

	where, args := buildReadingWhere(params)
	query := fmt.Sprintf(
		"SELECT sensor_id, raw_value, volume_liters, status, location, timestamp FROM readings%s ORDER BY %s %s",
		where, params.SortBy, sqlOrder(params.SortOrder),
	)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query readings: %w", err)
	}
	defer rows.Close()

	return scanReadings(rows)
}

// buildReadingWhere renders the AND of the provided filters. SortBy is
// never interpolated from user input directly; Normalize restricts it to
// the known column names.
func buildReadingWhere(params interfaces.ReadingQueryParams) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	if params.SensorID != "" {
		args = append(args, params.SensorID)
		clauses = append(clauses, fmt.Sprintf("sensor_id = $%d", len(args)))
	}
	if params.Status != "" {
		args = append(args, params.Status)
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}

	from, to := params.TimeRange()
	if from != nil {
		args = append(args, *from)
		clauses = append(clauses, fmt.Sprintf("timestamp >= $%d", len(args)))
	}
	if to != nil {
		args = append(args, *to)
		clauses = append(clauses, fmt.Sprintf("timestamp <= $%d", len(args)))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func sqlOrder(order string) string {
	if order == "asc" {
		return "ASC"
	}
	return "DESC"
}

func scanReadings(rows *sql.Rows) ([]cismodels.Reading, error) {
	readings := make([]cismodels.Reading, 0)
	for rows.Next() {
		var rd cismodels.Reading
		if err := rows.Scan(&rd.SensorID, &rd.RawValue, &rd.VolumeLiters, &rd.Status, &rd.Location, &rd.Timestamp); err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		readings = append(readings, rd)
	}
	return readings, rows.Err()
}
