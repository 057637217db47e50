// Package constants provides shared constants used throughout the liftmap codebase.
package constants

import "time"

// Catalog constants
const (
	// CatalogVersion tags the shape of the bundled catalog and the seeding rules.
	// Bumping it forces the next seed to run a full import.
	CatalogVersion = "2026.10.1"

	// StateSchemaVersion is the layout version of the persisted seed state blob.
	StateSchemaVersion = 1

	// DefaultMinCount is the smallest payload accepted by the validation gate.
	DefaultMinCount = 25

	// DefaultBatchSize bounds the number of records written per upsert batch.
	DefaultBatchSize = 100

	// MaxInvalidSamples caps the invalid records kept in a validation report.
	MaxInvalidSamples = 10

	// MaxWarningSamples caps the warning records kept in a validation report.
	MaxWarningSamples = 10

	// MaxAuditEntries caps the seed audit ring buffer.
	MaxAuditEntries = 25

	// SeedStateKey is the meta key holding the seed state blob.
	SeedStateKey = "seed_state"

	// CatalogSourceKey tags records that came from the exercise catalog document,
	// whichever mirror served it.
	CatalogSourceKey = "free-exercise-db"

	// StarterSourceKey tags records that came from the bundled starter catalog.
	StarterSourceKey = "starter"
)

// Source constants
const (
	// PrimaryCatalogURL is the default primary remote exercise document.
	PrimaryCatalogURL = "https://raw.githubusercontent.com/yuhonas/free-exercise-db/main/dist/exercises.json"

	// FallbackCatalogURL is the default minified CDN mirror of the primary document.
	FallbackCatalogURL = "https://cdn.jsdelivr.net/gh/yuhonas/free-exercise-db@main/dist/exercises.min.json"

	// DefaultHTTPTimeout is the per-request timeout for remote sources
	DefaultHTTPTimeout = 15 * time.Second

	// DefaultRetryAttempts is the number of tries per remote source
	DefaultRetryAttempts = 3

	// RetryBackoff is the base backoff duration for retries
	RetryBackoff = 500 * time.Millisecond

	// MaxRetryBackoff is the maximum total retry time per source
	MaxRetryBackoff = 10 * time.Second

	// CacheTTL is the default time-to-live for cached payloads
	CacheTTL = 15 * time.Minute

	// CacheCleanupInterval is how often to clean expired cache entries
	CacheCleanupInterval = 5 * time.Minute

	// UserAgent identifies liftmap to remote sources
	UserAgent = "liftmap/1.0"
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Path constants
const (
	// DefaultDataPath is the default directory for the local database
	DefaultDataPath = "~/.liftmap"

	// DefaultDBFile is the default SQLite database file name
	DefaultDBFile = "liftmap.db"
)

// Timeout constants
const (
	// CommandTimeout is the default timeout for CLI commands
	CommandTimeout = 10 * time.Minute

	// SQLiteBusyTimeout is how long SQLite waits on a locked database
	SQLiteBusyTimeout = 5 * time.Second
)
