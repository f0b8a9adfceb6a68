package session

//go:generate mockgen -source=session.go -destination=../mocks/mock_session.go -package=mocks

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/karthikdoguparthi/KisaanGrow/internal/models"
)

const (
	MemoryDriverType = "memory"
	RedisDriverType  = "redis"

	DefaultIdleTimeout = 300 * time.Second
)

var (
	// ErrNotFound covers both unknown and idle-expired sessions.
	ErrNotFound = errors.New("session not found or expired")
)

// Store keeps sessions server side. Get slides the idle window.
type Store interface {
	Create(ctx context.Context, s *models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	Save(ctx context.Context, s *models.Session) error
	Delete(ctx context.Context, id string) error
	Close() error
}

// New fills in the identity fields of a fresh session.
func New(role models.Role, key, name, lang string) *models.Session {
	now := time.Now().UTC()
	if lang == "" {
		lang = "en"
	}
	return &models.Session{
		ID:           uuid.NewString(),
		Role:         role,
		Key:          key,
		Name:         name,
		Lang:         lang,
		AdviceLang:   lang,
		CreatedAt:    now,
		LastActivity: now,
	}
}
