package ingestion

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Config"
	configstore "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.ConfigStore"
	logger "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Logger"
	cismodels "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Models"
	interfaces "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Repository/Interfaces"
)

type fakeReadingRepo struct {
	mu       sync.Mutex
	readings []cismodels.Reading
	failing  bool
}

func (f *fakeReadingRepo) InsertReading(_ context.Context, reading cismodels.Reading) (*cismodels.Reading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return nil, errors.New("connection refused")
	}
	f.readings = append(f.readings, reading)
	return &reading, nil
}

func (f *fakeReadingRepo) GetLatest(context.Context) (*cismodels.Reading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.readings) == 0 {
		return nil, cismodels.ErrNotFound
	}
	latest := f.readings[len(f.readings)-1]
	return &latest, nil
}

func (f *fakeReadingRepo) Query(context.Context, interfaces.ReadingQueryParams) (*interfaces.ReadingQueryResult, error) {
	return &interfaces.ReadingQueryResult{}, nil
}

func (f *fakeReadingRepo) QueryAll(context.Context, interfaces.ReadingQueryParams) ([]cismodels.Reading, error) {
	return nil, nil
}

func (f *fakeReadingRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.readings)
}

type emptyConfigRepo struct{}

func (emptyConfigRepo) Insert(_ context.Context, cfg *cismodels.Configuration) (*cismodels.Configuration, error) {
	return cfg, nil
}

func (emptyConfigRepo) Latest(context.Context) (*cismodels.Configuration, error) {
	return nil, cismodels.ErrNotFound
}

func (emptyConfigRepo) History(context.Context, int) ([]cismodels.Configuration, error) {
	return nil, nil
}

func testLogger() *logger.Logger {
	return logger.NewLogger(&config.LoggingConfig{Level: "error", Format: "text", Output: "stderr"})
}

func newTestIngestor(repo interfaces.ReadingRepository) *ReadingIngestor {
	configs := configstore.New(emptyConfigRepo{}, testLogger())
	return NewReadingIngestor(repo, configs, testLogger())
}

func TestIngestDerivesAndStores(t *testing.T) {
	repo := &fakeReadingRepo{}
	ingestor := newTestIngestor(repo)

	at := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	result, err := ingestor.Ingest(context.Background(), "CAP-SENS-001", 8, at)

	require.NoError(t, err)
	assert.True(t, result.Persisted)
	assert.Equal(t, int64(800), result.Reading.VolumeLiters)
	assert.Equal(t, cismodels.StatusWarning, result.Reading.Status)
	assert.Equal(t, "Edificio G - Sor Juana", result.Reading.Location)
	assert.Equal(t, at, result.Reading.Timestamp)
	assert.Equal(t, 1, repo.count())
}

func TestIngestRejectsInvalidInput(t *testing.T) {
	repo := &fakeReadingRepo{}
	ingestor := newTestIngestor(repo)
	ctx := context.Background()

	_, err := ingestor.Ingest(ctx, "", 50, time.Time{})
	assert.True(t, cismodels.IsValidation(err), "empty sensor id")

	_, err = ingestor.Ingest(ctx, "CAP-SENS-001", 150, time.Time{})
	assert.True(t, cismodels.IsValidation(err), "raw value above 100")

	_, err = ingestor.Ingest(ctx, "CAP-SENS-001", -3, time.Time{})
	assert.True(t, cismodels.IsValidation(err), "negative, not the no-data sentinel")

	assert.Equal(t, 0, repo.count(), "rejected input never reaches storage")
}

func TestIngestAcceptsNoDataSentinel(t *testing.T) {
	repo := &fakeReadingRepo{}
	ingestor := newTestIngestor(repo)

	result, err := ingestor.Ingest(context.Background(), "CAP-SENS-001", cismodels.RawValueNoData, time.Time{})

	require.NoError(t, err)
	assert.Equal(t, cismodels.StatusNoData, result.Reading.Status)
	assert.Equal(t, int64(0), result.Reading.VolumeLiters)
}

func TestIngestStorageDownReturnsBestEffortReading(t *testing.T) {
	repo := &fakeReadingRepo{failing: true}
	ingestor := newTestIngestor(repo)

	result, err := ingestor.Ingest(context.Background(), "CAP-SENS-001", 4, time.Time{})

	require.ErrorIs(t, err, cismodels.ErrStorageUnavailable)
	require.NotNil(t, result)
	assert.False(t, result.Persisted)
	assert.Equal(t, cismodels.StatusCritical, result.Reading.Status, "derived fields survive the storage failure")
	assert.Equal(t, int64(400), result.Reading.VolumeLiters)
}

func TestIngestFillsMissingTimestamp(t *testing.T) {
	repo := &fakeReadingRepo{}
	ingestor := newTestIngestor(repo)

	before := time.Now()
	result, err := ingestor.Ingest(context.Background(), "CAP-SENS-001", 50, time.Time{})

	require.NoError(t, err)
	assert.False(t, result.Reading.Timestamp.Before(before))
	assert.False(t, result.Reading.Timestamp.After(time.Now()))
}
