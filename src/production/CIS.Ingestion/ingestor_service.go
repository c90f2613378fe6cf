// Package ingestion turns raw sensor percentages into derived, stored
// readings and drives the periodic sampling loop.
package ingestion

import (
	"context"
	"fmt"
	"time"

	configstore "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.ConfigStore"
	derivation "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Derivation"
	logger "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Logger"
	cismodels "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Models"
	interfaces "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Repository/Interfaces"
)

// IngestResult is what one ingestion produced. When storage was down the
// reading still carries the derived fields but Persisted is false and
// the companion error wraps ErrStorageUnavailable.
type IngestResult struct {
	Reading   cismodels.Reading
	Persisted bool
}

type ReadingIngestor struct {
	readings interfaces.ReadingRepository
	configs  *configstore.Store
	log      *logger.Logger
}

func NewReadingIngestor(readings interfaces.ReadingRepository, configs *configstore.Store, log *logger.Logger) *ReadingIngestor {
	return &ReadingIngestor{
		readings: readings,
		configs:  configs,
		log:      log.WithComponent("ingestor"),
	}
}

// Ingest validates a raw percentage, derives volume, status and location
// from the current configuration and stores the reading. Validation
// failures return a *cismodels.ValidationError and nothing is stored.
// Storage failures return the derived reading anyway, flagged
// non-persisted, so callers can still show the live level.
func (s *ReadingIngestor) Ingest(ctx context.Context, sensorID string, rawValue float64, at time.Time) (*IngestResult, error) {
	if sensorID == "" {
		return nil, &cismodels.ValidationError{Field: "sensor_id", Reason: "must not be empty"}
	}
	if rawValue != cismodels.RawValueNoData && (rawValue < 0 || rawValue > 100) {
		return nil, &cismodels.ValidationError{
			Field:  "raw_value",
			Reason: fmt.Sprintf("%.2f outside [0, 100]", rawValue),
		}
	}
	if at.IsZero() {
		at = time.Now()
	}

	cfg := s.configs.Current(ctx)
	derived := derivation.Derive(sensorID, rawValue, cfg)

	reading := cismodels.Reading{
		SensorID:     sensorID,
		RawValue:     rawValue,
		VolumeLiters: derived.VolumeLiters,
		Status:       derived.Status,
		Location:     derived.Location,
		Timestamp:    at,
	}

	stored, err := s.readings.InsertReading(ctx, reading)
	if err != nil {
		s.log.WithField("sensor_id", sensorID).WithError(err).Error("reading not persisted")
		return &IngestResult{Reading: reading, Persisted: false},
			fmt.Errorf("insert reading: %w: %w", cismodels.ErrStorageUnavailable, err)
	}

	s.log.WithField("sensor_id", sensorID).
		WithField("raw_value", rawValue).
		WithField("status", string(stored.Status)).
		Debug("reading ingested")

	return &IngestResult{Reading: *stored, Persisted: true}, nil
}
