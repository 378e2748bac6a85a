package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SessionProfile pairs a session lifetime with the remaining-lifetime
// cutoff below which the token is proactively replaced.
type SessionProfile struct {
	Duration       time.Duration
	RenewThreshold time.Duration
}

type Config struct {
	Port          string
	PublicBaseURL string

	DBDriver string
	DBDSN    string

	// Standard sessions cover walk-in QR scans; persistent sessions
	// cover the kiosk-style tables in PersistentTableIDs.
	StandardSession   SessionProfile
	PersistentSession SessionProfile

	persistentTables map[string]struct{}
}

func Load() *Config {
	cfg := &Config{
		Port:          envOr("PORT", "8080"),
		PublicBaseURL: envOr("PUBLIC_BASE_URL", "http://localhost:8080"),
		DBDriver:      envOr("DB_DRIVER", "sqlite"),
		DBDSN:         envOr("DB_DSN", "mesalink.db"),
		StandardSession: SessionProfile{
			Duration:       envDurationMs("TABLE_SESSION_DURATION_MS", 3*time.Hour),
			RenewThreshold: envDurationMs("TABLE_SESSION_THRESHOLD_MS", time.Minute),
		},
		PersistentSession: SessionProfile{
			Duration:       envDurationMs("TABLE_SESSION_PERSISTENT_DURATION_MS", 30*24*time.Hour),
			RenewThreshold: envDurationMs("TABLE_SESSION_PERSISTENT_THRESHOLD_MS", time.Hour),
		},
		persistentTables: make(map[string]struct{}),
	}

	for _, id := range strings.Split(os.Getenv("PERSISTENT_TABLE_IDS"), ",") {
		id = strings.TrimSpace(id)
		if id != "" {
			cfg.persistentTables[id] = struct{}{}
		}
	}

	return cfg
}

// IsPersistentTable reports whether the table is on the kiosk
// allow-list and should receive long-lived sessions.
func (c *Config) IsPersistentTable(tableID string) bool {
	_, ok := c.persistentTables[tableID]
	return ok
}

// ProfileFor picks the session profile for a table. An explicit
// persistent request and allow-list membership both select the
// long-lived profile.
func (c *Config) ProfileFor(tableID string, persistent bool) SessionProfile {
	if persistent || c.IsPersistentTable(tableID) {
		return c.PersistentSession
	}
	return c.StandardSession
}

// InitDB opens the configured database. MySQL in production, SQLite
// for development and tests, mirroring the driver pair in go.mod.
func InitDB(cfg *Config) (*gorm.DB, error) {
	switch cfg.DBDriver {
	case "mysql":
		return gorm.Open(mysql.Open(cfg.DBDSN), &gorm.Config{})
	case "sqlite":
		return gorm.Open(sqlite.Open(cfg.DBDSN), &gorm.Config{})
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDurationMs(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || ms < 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}
