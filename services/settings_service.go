package services

import (
	"context"
	"log"
	"os"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SettingsService exposes back-office feature flags. The login
// requirement for downloads is fetched once and cached for the process
// lifetime; it is injected as a value into handlers rather than read as
// ambient state so tests can substitute it deterministically.
type SettingsService struct {
	db *pgxpool.Pool

	once          sync.Once
	loginRequired bool
}

func NewSettingsService(db *pgxpool.Pool) *SettingsService {
	return &SettingsService{db: db}
}

// LoginRequired reports whether export and bulk actions require an
// authenticated user. DB value wins; the DOWNLOAD_REQUIRES_LOGIN env var
// is the fallback; on total failure the flag defaults to open.
func (s *SettingsService) LoginRequired(ctx context.Context) bool {
	s.once.Do(func() {
		s.loginRequired = os.Getenv("DOWNLOAD_REQUIRES_LOGIN") == "true"

		if s.db == nil {
			return
		}
		var value string
		err := s.db.QueryRow(ctx,
			`SELECT value FROM app_settings WHERE key = 'download_requires_login'`,
		).Scan(&value)
		if err != nil {
			log.Printf("Settings: falling back to env for login requirement: %v", err)
			return
		}
		s.loginRequired = value == "true"
	})
	return s.loginRequired
}
