// Package configstore manages the append-only log of cistern
// configuration versions. Saving always appends; the current version is
// the one with the newest CreatedAt. A last-known-good copy is cached in
// memory so reads and ingestion keep working when storage is down.
package configstore

import (
	"context"
	"errors"
	"sync"
	"time"

	logger "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Logger"
	cismodels "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Models"
	interfaces "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Repository/Interfaces"
)

// SaveResult reports a configuration save. Durable is false when the
// version only reached the in-memory cache because storage rejected the
// insert; the caller must surface that so the operator knows to retry.
type SaveResult struct {
	Config  *cismodels.Configuration
	Durable bool
}

type Store struct {
	repo interfaces.ConfigurationRepository
	log  *logger.Logger

	mu     sync.RWMutex
	cached *cismodels.Configuration
}

func New(repo interfaces.ConfigurationRepository, log *logger.Logger) *Store {
	return &Store{repo: repo, log: log.WithComponent("configstore")}
}

// Current returns the newest configuration version. Storage failures
// degrade to the cached copy, then to the documented defaults; ingestion
// must never stall on a missing configuration.
func (s *Store) Current(ctx context.Context) *cismodels.Configuration {
	cfg, err := s.repo.Latest(ctx)
	if err == nil {
		s.setCache(cfg)
		return cfg
	}

	if !errors.Is(err, cismodels.ErrNotFound) {
		s.log.WithError(err).Warn("configuration read failed, using cached copy")
	}

	if cached := s.cache(); cached != nil {
		return cached
	}
	return cismodels.DefaultConfiguration()
}

// Save merges the update into the current version and appends the result
// as a new version stamped with the save time. When the insert fails the
// version is retained in the cache only and the result is flagged
// non-durable instead of being dropped.
func (s *Store) Save(ctx context.Context, update cismodels.ConfigurationUpdate) *SaveResult {
	next := update.Apply(s.Current(ctx))
	next.CreatedAt = time.Now()

	stored, err := s.repo.Insert(ctx, next)
	if err != nil {
		s.log.WithError(err).Error("configuration save not persisted, keeping local copy")
		s.setCache(next)
		return &SaveResult{Config: next, Durable: false}
	}

	s.setCache(stored)
	return &SaveResult{Config: stored, Durable: true}
}

// History lists stored versions newest-first. Non-durable cached saves
// are not part of the history; only persisted versions appear.
func (s *Store) History(ctx context.Context, limit int) ([]cismodels.Configuration, error) {
	return s.repo.History(ctx, limit)
}

func (s *Store) cache() *cismodels.Configuration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cached
}

func (s *Store) setCache(cfg *cismodels.Configuration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cached = cfg
}
