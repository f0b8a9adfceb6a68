package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/karthikdoguparthi/KisaanGrow/internal/events"
	"github.com/karthikdoguparthi/KisaanGrow/internal/models"
	"github.com/karthikdoguparthi/KisaanGrow/internal/session"
	"github.com/karthikdoguparthi/KisaanGrow/internal/storage"
	"github.com/karthikdoguparthi/KisaanGrow/internal/storage/drivers"
	"github.com/stretchr/testify/require"
)

const strongPassword = "Secret123"

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) *storage.Store {
	t.Helper()
	db, err := drivers.OpenBadger("")
	require.NoError(t, err)
	store := storage.NewStore(drivers.NewBadgerStorage(db), storage.DefaultCacheTTL, quietLogger())
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newTestSessions(t *testing.T) session.Store {
	t.Helper()
	sessions := session.NewMemoryStore(time.Minute)
	t.Cleanup(func() { _ = sessions.Close() })
	return sessions
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingPublisher) Close() error { return nil }

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func farmerSession(mobile, name string) *models.Session {
	return session.New(models.RoleFarmer, mobile, name, "en")
}

func rowCount(t *testing.T, store *storage.Store, table models.Table) int {
	t.Helper()
	rows, err := store.ReadTableFresh(context.Background(), table)
	require.NoError(t, err)
	return len(rows)
}
