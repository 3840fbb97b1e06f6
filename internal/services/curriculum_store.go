package services

import (
	"context"
	"fmt"
	"sync"

	rediscache "github.com/yungbote/sotfinder-backend/internal/clients/redis"
	repos "github.com/yungbote/sotfinder-backend/internal/data/repos/curriculum"
	types "github.com/yungbote/sotfinder-backend/internal/domain/curriculum"
	"github.com/yungbote/sotfinder-backend/internal/observability"
	"github.com/yungbote/sotfinder-backend/internal/platform/logger"
)

const (
	tierMemory = "memory"
	tierRedis  = "redis"
	tierDB     = "db"
)

// CurriculumStore is the cache-aside read path and the write path for
// generated curricula. The database is the source of truth; the memory and
// redis tiers only ever hold what the database last returned or accepted.
type CurriculumStore interface {
	// Get returns ErrDataNotFound when no tier has the language.
	Get(ctx context.Context, language string) (*types.Curriculum, error)
	// Put persists c and then refreshes the cache tiers. A failed database
	// write leaves every tier untouched and returns ErrPersistence.
	Put(ctx context.Context, c *types.Curriculum) error
	// Invalidate evicts the language from every cache tier, including peer
	// processes when an invalidation bus is configured.
	Invalidate(ctx context.Context, language string)
	// Delete removes the stored curriculum and evicts every tier.
	Delete(ctx context.Context, language string) error
	// EvictLocal drops the language from the in-process tier only.
	EvictLocal(language string)
	StoredHash(ctx context.Context, language string) (string, bool, error)
	StoredLanguages(ctx context.Context) ([]string, error)
}

type curriculumStore struct {
	log     *logger.Logger
	repo    repos.CurriculumRepo
	memory  CurriculumCache
	shared  rediscache.CurriculumCache
	bus     rediscache.InvalidationBus
	metrics *observability.Metrics

	// held across each memory+redis write pair
	fillMu sync.Mutex
}

// NewCurriculumStore wires the tiers. shared and bus are optional.
func NewCurriculumStore(
	baseLog *logger.Logger,
	repo repos.CurriculumRepo,
	memory CurriculumCache,
	shared rediscache.CurriculumCache,
	bus rediscache.InvalidationBus,
	metrics *observability.Metrics,
) CurriculumStore {
	if memory == nil {
		memory = NewCurriculumCache()
	}
	return &curriculumStore{
		log:     baseLog.With("service", "CurriculumStore"),
		repo:    repo,
		memory:  memory,
		shared:  shared,
		bus:     bus,
		metrics: metrics,
	}
}

func (s *curriculumStore) Get(ctx context.Context, language string) (*types.Curriculum, error) {
	key := types.Key(language)
	if key == "" {
		return nil, ErrDataNotFound
	}

	// read before any slower tier so a concurrent Put or Invalidate
	// voids our fill
	gen := s.memory.Generation(key)
	if c, ok := s.memory.Get(key); ok {
		s.metrics.ObserveCacheLookup(tierMemory, true)
		return c, nil
	}
	s.metrics.ObserveCacheLookup(tierMemory, false)

	if s.shared != nil {
		c, err := s.shared.Get(ctx, key)
		switch {
		case err != nil:
			s.log.Warn("redis curriculum lookup failed; falling through to db", "language", key, "error", err)
			s.metrics.ObserveCacheLookup(tierRedis, false)
		case c != nil:
			s.metrics.ObserveCacheLookup(tierRedis, true)
			s.fill(ctx, key, c, gen, false)
			return c, nil
		default:
			s.metrics.ObserveCacheLookup(tierRedis, false)
		}
	}

	c, err := s.repo.GetByLanguage(ctx, nil, key)
	if err != nil {
		return nil, fmt.Errorf("load curriculum %q: %w", key, err)
	}
	if c == nil {
		s.metrics.ObserveCacheLookup(tierDB, false)
		return nil, ErrDataNotFound
	}
	s.metrics.ObserveCacheLookup(tierDB, true)

	s.fill(ctx, key, c, gen, true)
	return c, nil
}

// fill populates the cache tiers with a value read from a slower tier,
// unless the language was written or evicted since gen was taken.
func (s *curriculumStore) fill(ctx context.Context, key string, c *types.Curriculum, gen uint64, shared bool) {
	s.fillMu.Lock()
	defer s.fillMu.Unlock()
	if !s.memory.PutIfUnchanged(key, c, gen) {
		s.log.Debug("skipping cache fill; curriculum changed during read", "language", key)
		return
	}
	if shared {
		s.setShared(ctx, key, c)
	}
}

func (s *curriculumStore) Put(ctx context.Context, c *types.Curriculum) error {
	if c == nil {
		return fmt.Errorf("%w: nil curriculum", ErrPersistence)
	}
	c.Normalize()
	key := c.Language

	if _, err := s.repo.Replace(ctx, nil, c); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.fillMu.Lock()
	s.memory.Put(key, c)
	s.setShared(ctx, key, c)
	s.fillMu.Unlock()
	s.publish(ctx, key)
	return nil
}

func (s *curriculumStore) Invalidate(ctx context.Context, language string) {
	key := types.Key(language)
	s.fillMu.Lock()
	s.memory.Invalidate(key)
	if s.shared != nil {
		if err := s.shared.Delete(ctx, key); err != nil {
			s.log.Warn("redis curriculum evict failed", "language", key, "error", err)
		}
	}
	s.fillMu.Unlock()
	s.publish(ctx, key)
}

func (s *curriculumStore) Delete(ctx context.Context, language string) error {
	key := types.Key(language)
	if err := s.repo.DeleteByLanguage(ctx, nil, key); err != nil {
		return fmt.Errorf("%w: delete %q: %v", ErrPersistence, key, err)
	}
	s.Invalidate(ctx, key)
	return nil
}

func (s *curriculumStore) EvictLocal(language string) {
	s.memory.Invalidate(language)
}

func (s *curriculumStore) StoredHash(ctx context.Context, language string) (string, bool, error) {
	return s.repo.GetHash(ctx, nil, language)
}

func (s *curriculumStore) StoredLanguages(ctx context.Context) ([]string, error) {
	return s.repo.ListLanguages(ctx, nil)
}

func (s *curriculumStore) setShared(ctx context.Context, key string, c *types.Curriculum) {
	if s.shared == nil {
		return
	}
	if err := s.shared.Set(ctx, key, c); err != nil {
		s.log.Warn("redis curriculum write failed", "language", key, "error", err)
	}
}

func (s *curriculumStore) publish(ctx context.Context, key string) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, key); err != nil {
		s.log.Warn("publish curriculum invalidation failed", "language", key, "error", err)
	}
}
