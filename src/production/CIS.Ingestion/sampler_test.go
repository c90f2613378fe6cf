package ingestion

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	configstore "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.ConfigStore"
	cismodels "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Models"
)

type fixedIntervalRepo struct {
	emptyConfigRepo
	intervalMs int
}

func (r fixedIntervalRepo) Latest(context.Context) (*cismodels.Configuration, error) {
	cfg := cismodels.DefaultConfiguration()
	cfg.SamplingIntervalMs = r.intervalMs
	return cfg, nil
}

func newTestScheduler(repo *fakeReadingRepo, intervalMs int, sensors []string) *SamplingScheduler {
	configs := configstore.New(fixedIntervalRepo{intervalMs: intervalMs}, testLogger())
	ingestor := NewReadingIngestor(repo, configs, testLogger())
	return NewSamplingScheduler(ingestor, configs, sensors, testLogger())
}

func waitForReadings(t *testing.T, repo *fakeReadingRepo, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for repo.count() < n {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d readings, have %d", n, repo.count())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSchedulerPollsOnInterval(t *testing.T) {
	repo := &fakeReadingRepo{}
	scheduler := newTestScheduler(repo, 10, []string{"CAP-SENS-001"})

	interval := scheduler.Start(context.Background())
	defer scheduler.Stop()

	assert.Equal(t, 10*time.Millisecond, interval)
	waitForReadings(t, repo, 3)
}

func TestSchedulerRotatesSensors(t *testing.T) {
	repo := &fakeReadingRepo{}
	scheduler := newTestScheduler(repo, 10, []string{"CAP-SENS-001", "CAP-SENS-002"})

	scheduler.Start(context.Background())
	defer scheduler.Stop()
	waitForReadings(t, repo, 4)
	scheduler.Stop()

	seen := map[string]bool{}
	repo.mu.Lock()
	for _, r := range repo.readings {
		seen[r.SensorID] = true
	}
	repo.mu.Unlock()
	assert.True(t, seen["CAP-SENS-001"])
	assert.True(t, seen["CAP-SENS-002"])
}

func TestSchedulerStopHaltsPolling(t *testing.T) {
	repo := &fakeReadingRepo{}
	scheduler := newTestScheduler(repo, 10, []string{"CAP-SENS-001"})

	scheduler.Start(context.Background())
	waitForReadings(t, repo, 1)
	scheduler.Stop()

	count := repo.count()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, count, repo.count(), "no ticks after Stop")

	scheduler.Stop() // idempotent
}

func TestSchedulerRestartReplacesLoop(t *testing.T) {
	repo := &fakeReadingRepo{}
	scheduler := newTestScheduler(repo, 10, []string{"CAP-SENS-001"})

	scheduler.Start(context.Background())
	interval := scheduler.Restart(context.Background())
	defer scheduler.Stop()

	require.Equal(t, 10*time.Millisecond, interval)
	waitForReadings(t, repo, 2)
}

// mutableIntervalRepo lets a test change the stored interval between
// Start and Restart, like an admin saving a new configuration.
type mutableIntervalRepo struct {
	emptyConfigRepo
	mu         sync.Mutex
	intervalMs int
}

func (r *mutableIntervalRepo) Latest(context.Context) (*cismodels.Configuration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cfg := cismodels.DefaultConfiguration()
	cfg.SamplingIntervalMs = r.intervalMs
	return cfg, nil
}

func (r *mutableIntervalRepo) setInterval(ms int) {
	r.mu.Lock()
	r.intervalMs = ms
	r.mu.Unlock()
}

func TestSchedulerRestartPicksUpNewInterval(t *testing.T) {
	repo := &fakeReadingRepo{}
	configRepo := &mutableIntervalRepo{intervalMs: 10}
	configs := configstore.New(configRepo, testLogger())
	ingestor := NewReadingIngestor(repo, configs, testLogger())
	scheduler := NewSamplingScheduler(ingestor, configs, []string{"CAP-SENS-001"}, testLogger())

	interval := scheduler.Start(context.Background())
	require.Equal(t, 10*time.Millisecond, interval)
	waitForReadings(t, repo, 1)

	configRepo.setInterval(25)
	interval = scheduler.Restart(context.Background())
	defer scheduler.Stop()
	require.Equal(t, 25*time.Millisecond, interval)

	// The replaced loop ticks at the new cadence: well under the old
	// 10ms rate over the observation window.
	before := repo.count()
	time.Sleep(130 * time.Millisecond)
	delta := repo.count() - before
	assert.GreaterOrEqual(t, delta, 2, "restarted loop still ticking")
	assert.LessOrEqual(t, delta, 7, "restarted loop should tick at ~25ms, not 10ms")
}

func TestSchedulerConcurrentStartsLeaveOneLoop(t *testing.T) {
	repo := &fakeReadingRepo{}
	scheduler := newTestScheduler(repo, 10, []string{"CAP-SENS-001"})

	release := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-release
			scheduler.Start(context.Background())
		}()
	}
	close(release)
	wg.Wait()

	waitForReadings(t, repo, 1)
	scheduler.Stop()

	count := repo.count()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, count, repo.count(), "no loop may outlive Stop")
}

func TestSchedulerSurvivesStorageFailures(t *testing.T) {
	repo := &fakeReadingRepo{failing: true}
	scheduler := newTestScheduler(repo, 10, []string{"CAP-SENS-001"})

	scheduler.Start(context.Background())
	defer scheduler.Stop()

	// Loop keeps ticking while inserts fail, then recovers.
	time.Sleep(50 * time.Millisecond)
	repo.mu.Lock()
	repo.failing = false
	repo.mu.Unlock()
	waitForReadings(t, repo, 1)
}
