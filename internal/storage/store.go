package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/karthikdoguparthi/KisaanGrow/internal/metrics"
	"github.com/karthikdoguparthi/KisaanGrow/internal/models"
	"github.com/karthikdoguparthi/KisaanGrow/internal/storage/drivers"
	"golang.org/x/sync/singleflight"
)

const DefaultCacheTTL = 20 * time.Second

// Store wraps a driver with a per-table read cache, schema validation and
// error classification. Reads may be up to ttl stale with respect to writes
// made by other processes; writes through the same Store drop the cached table.
type Store struct {
	driver Storage
	cache  *ttlcache.Cache[string, []models.Row]
	group  singleflight.Group
	log    *slog.Logger

	// gens counts writes per table; a read that overlapped a write does not
	// fill the cache.
	mu   sync.Mutex
	gens map[string]uint64
}

// NewStore returns a Store over driver. A non-positive ttl disables caching.
func NewStore(driver Storage, ttl time.Duration, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	s := &Store{driver: driver, log: log, gens: make(map[string]uint64)}
	if ttl > 0 {
		s.cache = ttlcache.New[string, []models.Row](
			ttlcache.WithTTL[string, []models.Row](ttl),
			ttlcache.WithDisableTouchOnHit[string, []models.Row](),
		)
		go s.cache.Start()
	}
	return s
}

// ReadTable returns the rows of table. A table that was never written reads
// as empty. Driver failures are wrapped in ErrReadFailed.
func (s *Store) ReadTable(ctx context.Context, table models.Table) ([]models.Row, error) {
	if s.cache != nil {
		if item := s.cache.Get(table.Name); item != nil {
			metrics.CacheRequests.WithLabelValues(table.Name, "hit").Inc()
			return item.Value(), nil
		}
		metrics.CacheRequests.WithLabelValues(table.Name, "miss").Inc()
	}

	v, err, _ := s.group.Do(table.Name, func() (interface{}, error) {
		return s.read(ctx, table)
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Row), nil
}

// ReadTableFresh skips the cache but refreshes it with the result.
func (s *Store) ReadTableFresh(ctx context.Context, table models.Table) ([]models.Row, error) {
	return s.read(ctx, table)
}

func (s *Store) generation(table models.Table) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens[table.Name]
}

func (s *Store) read(ctx context.Context, table models.Table) ([]models.Row, error) {
	gen := s.generation(table)
	rows, err := s.driver.ReadTable(ctx, table)
	if errors.Is(err, drivers.ErrTableNotFound) {
		rows, err = nil, nil
	}
	if err != nil {
		metrics.StoreErrors.WithLabelValues("read").Inc()
		s.log.Error("read table", slog.String("table", table.Name), slog.Any("error", err))
		return nil, fmt.Errorf("%w: %s: %w", ErrReadFailed, table.Name, err)
	}
	if rows == nil {
		rows = []models.Row{}
	}
	if s.cache != nil {
		s.mu.Lock()
		if s.gens[table.Name] == gen {
			s.cache.Set(table.Name, rows, ttlcache.DefaultTTL)
		}
		s.mu.Unlock()
	}
	return rows, nil
}

// AppendRow validates row against the table schema before writing it.
func (s *Store) AppendRow(ctx context.Context, table models.Table, row models.Row) error {
	if err := table.Validate(row); err != nil {
		return err
	}
	if err := s.driver.AppendRow(ctx, table, row); err != nil {
		metrics.StoreErrors.WithLabelValues("append").Inc()
		s.log.Error("append row", slog.String("table", table.Name), slog.Any("error", err))
		return fmt.Errorf("%w: %s: %w", ErrWriteFailed, table.Name, err)
	}
	s.invalidate(table)
	return nil
}

// UpdateByKey overwrites one cell of the row whose key column equals key.
// Concurrent updates of the same cell are last-write-wins.
func (s *Store) UpdateByKey(ctx context.Context, table models.Table, key, column, value string) error {
	if !table.HasColumn(column) {
		return fmt.Errorf("%w: %s: unknown column %s", models.ErrSchemaViolation, table.Name, column)
	}
	err := s.driver.UpdateByKey(ctx, table, key, column, value)
	switch {
	case err == nil:
		s.invalidate(table)
		return nil
	case errors.Is(err, drivers.ErrNotFound), errors.Is(err, drivers.ErrTableNotFound):
		return fmt.Errorf("%s %q: %w", table.Name, key, ErrNotFound)
	default:
		metrics.StoreErrors.WithLabelValues("update").Inc()
		s.log.Error("update row", slog.String("table", table.Name), slog.String("key", key), slog.Any("error", err))
		return fmt.Errorf("%w: %s: %w", ErrWriteFailed, table.Name, err)
	}
}

func (s *Store) invalidate(table models.Table) {
	s.mu.Lock()
	s.gens[table.Name]++
	if s.cache != nil {
		s.cache.Delete(table.Name)
	}
	s.mu.Unlock()
	s.group.Forget(table.Name)
}

func (s *Store) Close() error {
	if s.cache != nil {
		s.cache.Stop()
	}
	return s.driver.Close()
}
