package interfaces

import (
	"context"
	"time"

	cismodels "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Models"
)

// Sortable reading fields accepted by query endpoints. Anything else
// falls back to SortByTimestamp.
const (
	SortByTimestamp = "timestamp"
	SortByRawValue  = "raw_value"
	SortByVolume    = "volume_liters"
	SortByStatus    = "status"
	SortBySensorID  = "sensor_id"
	SortByLocation  = "location"
)

// ReadingQueryParams represents parameters for reading queries. Filters
// are combined with AND; zero values mean "not filtered".
type ReadingQueryParams struct {
	SensorID  string
	Status    string
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string // "asc" or "desc"
}

// ReadingQueryResult represents the result of a reading query with pagination
type ReadingQueryResult struct {
	Items    []cismodels.Reading `json:"items"`
	Total    int64               `json:"total"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"page_size"`
}

// TimeRange returns the effective [from, to] bounds at day granularity:
// DateFrom floored to 00:00:00 and DateTo ceiled to 23:59:59.999, both
// inclusive. Nil pointers stay nil (unbounded).
func (p ReadingQueryParams) TimeRange() (from, to *time.Time) {
	if p.DateFrom != nil {
		f := time.Date(p.DateFrom.Year(), p.DateFrom.Month(), p.DateFrom.Day(), 0, 0, 0, 0, p.DateFrom.Location())
		from = &f
	}
	if p.DateTo != nil {
		t := time.Date(p.DateTo.Year(), p.DateTo.Month(), p.DateTo.Day(), 23, 59, 59, int(999*time.Millisecond), p.DateTo.Location())
		to = &t
	}
	return from, to
}

// Normalize clamps pagination and sorting to usable values.
func (p *ReadingQueryParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 500 {
		p.PageSize = 500
	}
	switch p.SortBy {
	case SortByTimestamp, SortByRawValue, SortByVolume, SortByStatus, SortBySensorID, SortByLocation:
	default:
		p.SortBy = SortByTimestamp
	}
	if p.SortOrder != "asc" {
		p.SortOrder = "desc"
	}
}

type ReadingRepository interface {
	// InsertReading persists one immutable reading.
	InsertReading(ctx context.Context, reading cismodels.Reading) (*cismodels.Reading, error)

	// GetLatest returns the newest reading by timestamp, or ErrNotFound.
	GetLatest(ctx context.Context) (*cismodels.Reading, error)

	// Query filters, sorts and paginates readings.
	Query(ctx context.Context, params ReadingQueryParams) (*ReadingQueryResult, error)

	// QueryAll returns every matching reading without pagination, for
	// exports. Sorting still applies.
	QueryAll(ctx context.Context, params ReadingQueryParams) ([]cismodels.Reading, error)
}
