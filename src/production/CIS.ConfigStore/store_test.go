package configstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Config"
	logger "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Logger"
	cismodels "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Models"
)

type fakeConfigRepo struct {
	versions []cismodels.Configuration
	failing  bool
}

func (f *fakeConfigRepo) Insert(_ context.Context, cfg *cismodels.Configuration) (*cismodels.Configuration, error) {
	if f.failing {
		return nil, errors.New("connection refused")
	}
	stored := *cfg
	f.versions = append(f.versions, stored)
	return &stored, nil
}

func (f *fakeConfigRepo) Latest(_ context.Context) (*cismodels.Configuration, error) {
	if f.failing {
		return nil, errors.New("connection refused")
	}
	if len(f.versions) == 0 {
		return nil, cismodels.ErrNotFound
	}
	latest := f.versions[len(f.versions)-1]
	return &latest, nil
}

func (f *fakeConfigRepo) History(_ context.Context, limit int) ([]cismodels.Configuration, error) {
	if f.failing {
		return nil, errors.New("connection refused")
	}
	out := make([]cismodels.Configuration, 0, len(f.versions))
	for i := len(f.versions) - 1; i >= 0; i-- {
		out = append(out, f.versions[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func testLogger() *logger.Logger {
	return logger.NewLogger(&config.LoggingConfig{Level: "error", Format: "text", Output: "stderr"})
}

func TestCurrentFallsBackToDefaults(t *testing.T) {
	store := New(&fakeConfigRepo{}, testLogger())

	cfg := store.Current(context.Background())

	assert.Equal(t, int64(10000), cfg.CapacityLiters)
	assert.Equal(t, "CAP-SENS-001", cfg.SensorID)
	assert.Equal(t, 10000, cfg.SamplingIntervalMs)
}

func TestSaveAppendsNewVersion(t *testing.T) {
	repo := &fakeConfigRepo{}
	store := New(repo, testLogger())
	ctx := context.Background()

	capacity := int64(20000)
	result := store.Save(ctx, cismodels.ConfigurationUpdate{CapacityLiters: &capacity})

	require.True(t, result.Durable)
	assert.Equal(t, int64(20000), result.Config.CapacityLiters)
	// Unnamed fields carry over from the previous version.
	assert.Equal(t, 15.0, result.Config.AlertThreshold)
	assert.False(t, result.Config.CreatedAt.IsZero())
	require.Len(t, repo.versions, 1)

	name := "Cisterna secundaria"
	result = store.Save(ctx, cismodels.ConfigurationUpdate{Name: &name})

	require.Len(t, repo.versions, 2, "saves append, never overwrite")
	assert.Equal(t, "Cisterna secundaria", result.Config.Name)
	assert.Equal(t, int64(20000), result.Config.CapacityLiters, "merge starts from the latest version")
}

func TestSaveSurvivesStorageFailure(t *testing.T) {
	repo := &fakeConfigRepo{failing: true}
	store := New(repo, testLogger())
	ctx := context.Background()

	capacity := int64(5000)
	result := store.Save(ctx, cismodels.ConfigurationUpdate{CapacityLiters: &capacity})

	require.False(t, result.Durable)
	assert.Equal(t, int64(5000), result.Config.CapacityLiters)

	// The non-durable version still serves reads while storage is down.
	cfg := store.Current(ctx)
	assert.Equal(t, int64(5000), cfg.CapacityLiters)
}

func TestCurrentUsesCacheWhenStorageDrops(t *testing.T) {
	repo := &fakeConfigRepo{}
	store := New(repo, testLogger())
	ctx := context.Background()

	capacity := int64(12000)
	store.Save(ctx, cismodels.ConfigurationUpdate{CapacityLiters: &capacity})

	repo.failing = true
	cfg := store.Current(ctx)

	assert.Equal(t, int64(12000), cfg.CapacityLiters, "last known good version, not defaults")
}

func TestHistoryNewestFirst(t *testing.T) {
	repo := &fakeConfigRepo{}
	store := New(repo, testLogger())
	ctx := context.Background()

	for _, name := range []string{"v1", "v2", "v3"} {
		n := name
		store.Save(ctx, cismodels.ConfigurationUpdate{Name: &n})
	}

	history, err := store.History(ctx, 0)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "v3", history[0].Name)
	assert.Equal(t, "v1", history[2].Name)

	limited, err := store.History(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}
