package services

import (
	"sync"

	types "github.com/yungbote/sotfinder-backend/internal/domain/curriculum"
)

// CurriculumCache is the process-wide first tier, keyed by normalized
// language. Cached curricula are shared between readers and must be
// treated as immutable.
//
// Every Put and Invalidate advances the language's generation. A reader
// that loaded a value from a slower tier fills the cache with
// PutIfUnchanged, so a value read before a refresh can never land after it.
type CurriculumCache interface {
	Get(language string) (*types.Curriculum, bool)
	Generation(language string) uint64
	Put(language string, c *types.Curriculum)
	// PutIfUnchanged stores c only when the generation still equals gen.
	PutIfUnchanged(language string, c *types.Curriculum, gen uint64) bool
	Invalidate(language string)
}

type memoryCurriculumCache struct {
	mu    sync.RWMutex
	items map[string]*types.Curriculum
	gens  map[string]uint64
}

func NewCurriculumCache() CurriculumCache {
	return &memoryCurriculumCache{
		items: map[string]*types.Curriculum{},
		gens:  map[string]uint64{},
	}
}

func (m *memoryCurriculumCache) Get(language string) (*types.Curriculum, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.items[types.Key(language)]
	return c, ok
}

func (m *memoryCurriculumCache) Generation(language string) uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gens[types.Key(language)]
}

func (m *memoryCurriculumCache) Put(language string, c *types.Curriculum) {
	if c == nil {
		return
	}
	key := types.Key(language)
	m.mu.Lock()
	m.gens[key]++
	m.items[key] = c
	m.mu.Unlock()
}

func (m *memoryCurriculumCache) PutIfUnchanged(language string, c *types.Curriculum, gen uint64) bool {
	if c == nil {
		return false
	}
	key := types.Key(language)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gens[key] != gen {
		return false
	}
	m.items[key] = c
	return true
}

func (m *memoryCurriculumCache) Invalidate(language string) {
	key := types.Key(language)
	m.mu.Lock()
	m.gens[key]++
	delete(m.items, key)
	m.mu.Unlock()
}
