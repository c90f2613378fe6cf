package ingestion

import (
	"context"
	"math/rand"
	"sync"
	"time"

	configstore "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.ConfigStore"
	logger "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Logger"
)

// SampleSource produces the raw percentage for one sensor poll. The
// default source simulates a capacitive sensor; deployments with real
// hardware swap in their own reader.
type SampleSource func(sensorID string) float64

// SamplingScheduler polls the configured sensors on the interval from
// the current configuration. At most one timer loop runs at a time:
// starting or restarting first stops the previous loop.
type SamplingScheduler struct {
	ingestor *ReadingIngestor
	configs  *configstore.Store
	sensors  []string
	source   SampleSource
	log      *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewSamplingScheduler(ingestor *ReadingIngestor, configs *configstore.Store, sensors []string, log *logger.Logger) *SamplingScheduler {
	return &SamplingScheduler{
		ingestor: ingestor,
		configs:  configs,
		sensors:  sensors,
		source:   simulatedSensor,
		log:      log.WithComponent("sampler"),
	}
}

// WithSource overrides the sample source, for hardware readers or tests.
func (s *SamplingScheduler) WithSource(source SampleSource) *SamplingScheduler {
	s.source = source
	return s
}

// Start begins polling with the interval from the current configuration.
// A loop that is already running is stopped first, so the scheduler
// never double-fires.
func (s *SamplingScheduler) Start(ctx context.Context) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()

	interval := s.configs.Current(ctx).SamplingInterval()

	loopCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(loopCtx, interval, s.done)

	s.log.WithField("interval", interval.String()).Info("sampling started")
	return interval
}

// Restart re-reads the current configuration and starts a fresh loop
// with its interval. Exposed to the API so a saved configuration can
// take effect without a process restart.
func (s *SamplingScheduler) Restart(ctx context.Context) time.Duration {
	return s.Start(ctx)
}

// Stop halts the polling loop and waits for the in-flight tick to
// finish. Safe to call when nothing is running.
func (s *SamplingScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// stopLocked cancels the running loop and waits for it to drain. The
// mutex stays held across the wait so a concurrent Start cannot slip in
// between the cancel and the loop handover; run never takes the mutex,
// so the wait cannot deadlock.
func (s *SamplingScheduler) stopLocked() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel, s.done = nil, nil
}

func (s *SamplingScheduler) run(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)

	if len(s.sensors) == 0 {
		s.log.Warn("no sensors configured, sampling loop idle")
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	next := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sensorID := s.sensors[next%len(s.sensors)]
			next++
			s.sample(ctx, sensorID)
		}
	}
}

// sample ingests one poll. Failures are logged and the loop keeps
// running; a dead database must not kill sampling.
func (s *SamplingScheduler) sample(ctx context.Context, sensorID string) {
	tickCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	raw := s.source(sensorID)
	if _, err := s.ingestor.Ingest(tickCtx, sensorID, raw, time.Now()); err != nil {
		s.log.WithField("sensor_id", sensorID).WithError(err).Warn("sampling tick failed")
	}
}

// simulatedSensor mimics a capacitive level sensor reporting a fill
// percentage.
func simulatedSensor(string) float64 {
	return rand.Float64() * 100
}
