package sqlite

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agentstation/liftmap/pkg/constants"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Config captures SQLite store settings.
type Config struct {
	// Path is the database file, or ":memory:" for a private in-memory database.
	Path string

	// BusyTimeout is applied through PRAGMA busy_timeout.
	BusyTimeout time.Duration
}

// Option configures a Store.
type Option func(*Config)

// WithBusyTimeout overrides the busy timeout.
func WithBusyTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.BusyTimeout = d
		}
	}
}

func newConfig(path string, opts ...Option) *Config {
	cfg := &Config{Path: path, BusyTimeout: constants.SQLiteBusyTimeout}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// buildDSN renders the modernc DSN for cfg. In-memory databases get a
// unique shared-cache name so separate stores never see each other.
func buildDSN(cfg *Config) (string, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return "", fmt.Errorf("sqlite: database path is required")
	}

	pragmas := url.Values{}
	pragmas.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", cfg.BusyTimeout.Milliseconds()))
	pragmas.Add("_pragma", "foreign_keys(ON)")

	if path == MemoryPath {
		pragmas.Set("mode", "memory")
		pragmas.Set("cache", "shared")
		return "file:liftmap-" + uuid.NewString() + "?" + pragmas.Encode(), nil
	}
	pragmas.Add("_pragma", "journal_mode(WAL)")
	pragmas.Add("_pragma", "synchronous(NORMAL)")
	return "file:" + path + "?" + pragmas.Encode(), nil
}
