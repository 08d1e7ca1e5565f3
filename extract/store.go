package extract

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oesukam/r-incident-query-webapp/core"
)

// Store caches extraction results per incident so repeated email views and
// CSV exports do not re-download every evidence document.
type Store interface {
	Get(ctx context.Context, incidentID string) ([]core.EmailRecord, error)
	Set(ctx context.Context, incidentID string, records []core.EmailRecord) error
	Delete(ctx context.Context, incidentID string) error
	Clear(ctx context.Context) error
}

type StoreWithStats interface {
	Store
	Stats() StoreStats
}

type StoreConfig struct {
	TTL     time.Duration
	MaxSize int
}

// StoreStats are simple counters for cache behavior.
// These are intended for diagnostics and monitoring.
type StoreStats struct {
	Hits      int64         `json:"hits"`
	Misses    int64         `json:"misses"`
	Sets      int64         `json:"sets"`
	Deletes   int64         `json:"deletes"`
	Evictions int64         `json:"evictions"`
	Size      int           `json:"size"`
	TTL       time.Duration `json:"ttl"`
}

type InMemoryStore struct {
	cache   map[string]*cachedExtraction // key: incident ID
	mu      sync.RWMutex
	ttl     time.Duration
	maxSize int

	// counters
	hits      int64
	misses    int64
	sets      int64
	deletes   int64
	evictions int64
}

type cachedExtraction struct {
	records  []core.EmailRecord
	cachedAt time.Time
}

func NewInMemoryStore(c StoreConfig) *InMemoryStore {
	if c.TTL == 0 {
		c.TTL = 15 * time.Minute
	}
	if c.MaxSize == 0 {
		c.MaxSize = 256
	}

	return &InMemoryStore{
		cache:   make(map[string]*cachedExtraction),
		ttl:     c.TTL,
		maxSize: c.MaxSize,
	}
}

func (s *InMemoryStore) Get(ctx context.Context, incidentID string) ([]core.EmailRecord, error) {
	s.mu.RLock()
	entry, exists := s.cache[incidentID]
	s.mu.RUnlock()

	if !exists {
		atomic.AddInt64(&s.misses, 1)
		return nil, core.ErrNotCached
	}

	if time.Since(entry.cachedAt) > s.ttl {
		// expired
		atomic.AddInt64(&s.misses, 1)
		if err := s.Delete(ctx, incidentID); err != nil {
			return nil, err
		}
		return nil, core.ErrNotCached
	}

	atomic.AddInt64(&s.hits, 1)
	return entry.records, nil
}

func (s *InMemoryStore) Set(ctx context.Context, incidentID string, records []core.EmailRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Simple eviction if full
	if len(s.cache) >= s.maxSize {
		for k := range s.cache {
			delete(s.cache, k)
			atomic.AddInt64(&s.evictions, 1)
			break
		}
	}

	s.cache[incidentID] = &cachedExtraction{
		records:  records,
		cachedAt: time.Now(),
	}

	atomic.AddInt64(&s.sets, 1)
	return nil
}

func (s *InMemoryStore) Delete(ctx context.Context, incidentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, existed := s.cache[incidentID]; existed {
		delete(s.cache, incidentID)
		atomic.AddInt64(&s.deletes, 1)
	}
	return nil
}

func (s *InMemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]*cachedExtraction)
	return nil
}

func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cache)
}

func (s *InMemoryStore) Stats() StoreStats {
	return StoreStats{
		Hits:      atomic.LoadInt64(&s.hits),
		Misses:    atomic.LoadInt64(&s.misses),
		Sets:      atomic.LoadInt64(&s.sets),
		Deletes:   atomic.LoadInt64(&s.deletes),
		Evictions: atomic.LoadInt64(&s.evictions),
		Size:      s.Len(),
		TTL:       s.ttl,
	}
}
