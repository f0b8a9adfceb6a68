package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/karthikdoguparthi/KisaanGrow/internal/i18n"
	"github.com/karthikdoguparthi/KisaanGrow/internal/metrics"
	"github.com/karthikdoguparthi/KisaanGrow/internal/models"
	"github.com/karthikdoguparthi/KisaanGrow/internal/session"
	"github.com/karthikdoguparthi/KisaanGrow/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 8

type IdentityService struct {
	store         *storage.Store
	sessions      session.Store
	hashPasswords bool
	log           *slog.Logger
}

func NewIdentityService(store *storage.Store, sessions session.Store, hashPasswords bool, log *slog.Logger) *IdentityService {
	if log == nil {
		log = slog.Default()
	}
	return &IdentityService{store: store, sessions: sessions, hashPasswords: hashPasswords, log: log}
}

func accountTable(role models.Role) (models.Table, error) {
	switch role {
	case models.RoleFarmer:
		return models.FarmersTable, nil
	case models.RoleCorporate:
		return models.CorporatesTable, nil
	}
	return models.Table{}, fmt.Errorf("%w: %q", ErrInvalidRole, role)
}

// ValidatePassword requires at least 8 characters with a lowercase letter,
// an uppercase letter and a digit.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLen {
		return ErrWeakPassword
	}
	var lower, upper, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !lower || !upper || !digit {
		return ErrWeakPassword
	}
	return nil
}

func isBcryptHash(s string) bool {
	return len(s) == 60 && (strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$"))
}

func passwordMatches(stored, given string) bool {
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}

// Register appends a new account row. Duplicate keys are accepted.
func (s *IdentityService) Register(ctx context.Context, role models.Role, fields models.Row, password, confirm string) error {
	table, err := accountTable(role)
	if err != nil {
		return err
	}
	if err := ValidatePassword(password); err != nil {
		return err
	}
	if password != confirm {
		return ErrPasswordMismatch
	}

	stored := password
	if s.hashPasswords {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		stored = string(hash)
	}

	row := make(models.Row, len(fields)+1)
	for k, v := range fields {
		row[k] = strings.TrimSpace(v)
	}
	row[models.ColPassword] = stored

	if err := s.store.AppendRow(ctx, table, row); err != nil {
		return err
	}

	metrics.Registrations.WithLabelValues(string(role)).Inc()
	s.log.Info("account registered", slog.String("role", string(role)), slog.String("key", row[table.Key]))
	return nil
}

func (s *IdentityService) RegisterFarmer(ctx context.Context, f models.Farmer, password, confirm string) error {
	fields := f.Row()
	delete(fields, models.ColPassword)
	return s.Register(ctx, models.RoleFarmer, fields, password, confirm)
}

func (s *IdentityService) RegisterCorporate(ctx context.Context, c models.Corporate, password, confirm string) error {
	fields := c.Row()
	delete(fields, models.ColPassword)
	return s.Register(ctx, models.RoleCorporate, fields, password, confirm)
}

// Login matches key and password against the account table of role and
// opens a session on success.
func (s *IdentityService) Login(ctx context.Context, role models.Role, key, password, lang string) (*models.Session, error) {
	table, err := accountTable(role)
	if err != nil {
		return nil, err
	}
	// keys are stored trimmed by Register
	key = strings.TrimSpace(key)

	rows, err := s.store.ReadTable(ctx, table)
	if err != nil {
		metrics.Logins.WithLabelValues(string(role), "error").Inc()
		return nil, err
	}

	for _, row := range rows {
		if row[table.Key] != key || !passwordMatches(row[models.ColPassword], password) {
			continue
		}

		sess := session.New(role, key, row[models.ColName], i18n.Resolve("", lang))
		if err := s.sessions.Create(ctx, sess); err != nil {
			return nil, fmt.Errorf("failed to create session: %w", err)
		}
		metrics.Logins.WithLabelValues(string(role), "success").Inc()
		s.log.Info("login", slog.String("role", string(role)), slog.String("key", key))
		return sess, nil
	}

	metrics.Logins.WithLabelValues(string(role), "failure").Inc()
	return nil, ErrInvalidCredentials
}

func (s *IdentityService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

// Session returns the live session for id, sliding its idle window.
func (s *IdentityService) Session(ctx context.Context, id string) (*models.Session, error) {
	return s.sessions.Get(ctx, id)
}

// SetLanguage changes the interface and advice languages of a session
// independently. Empty values leave the current choice.
func (s *IdentityService) SetLanguage(ctx context.Context, sess *models.Session, ui, advice string) error {
	if (ui != "" && !i18n.Supported(ui)) || (advice != "" && !i18n.Supported(advice)) {
		return ErrInvalidLanguage
	}
	if ui != "" {
		sess.Lang = ui
	}
	if advice != "" {
		sess.AdviceLang = advice
	}
	return s.sessions.Save(ctx, sess)
}
