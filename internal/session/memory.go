package session

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/karthikdoguparthi/KisaanGrow/internal/metrics"
	"github.com/karthikdoguparthi/KisaanGrow/internal/models"
)

// MemoryStore holds sessions in process. Every Get extends the entry's ttl.
type MemoryStore struct {
	cache *ttlcache.Cache[string, models.Session]
}

func NewMemoryStore(idle time.Duration) *MemoryStore {
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	cache := ttlcache.New[string, models.Session](
		ttlcache.WithTTL[string, models.Session](idle),
	)
	cache.OnInsertion(func(context.Context, *ttlcache.Item[string, models.Session]) {
		metrics.ActiveSessions.Inc()
	})
	cache.OnEviction(func(context.Context, ttlcache.EvictionReason, *ttlcache.Item[string, models.Session]) {
		metrics.ActiveSessions.Dec()
	})
	go cache.Start()
	return &MemoryStore{cache: cache}
}

func (m *MemoryStore) Create(_ context.Context, s *models.Session) error {
	m.cache.Set(s.ID, *s, ttlcache.DefaultTTL)
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*models.Session, error) {
	item := m.cache.Get(id)
	if item == nil {
		return nil, ErrNotFound
	}
	// the hit already extended the ttl; writing back could revive a session
	// deleted meanwhile
	s := item.Value()
	s.LastActivity = time.Now().UTC()
	return &s, nil
}

func (m *MemoryStore) Save(_ context.Context, s *models.Session) error {
	if !m.cache.Has(s.ID) {
		return ErrNotFound
	}
	m.cache.Set(s.ID, *s, ttlcache.DefaultTTL)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.cache.Delete(id)
	return nil
}

func (m *MemoryStore) Close() error {
	m.cache.Stop()
	return nil
}
