// Package sqlite implements the catalog store on SQLite through the pure-Go
// modernc driver. The schema is managed by goose migrations embedded in the
// binary; queries are built with squirrel.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// Register the modernc SQLite driver with database/sql.
	_ "modernc.org/sqlite"

	"github.com/agentstation/liftmap/pkg/constants"
	"github.com/agentstation/liftmap/pkg/errors"
	"github.com/agentstation/liftmap/pkg/logging"
	"github.com/agentstation/liftmap/pkg/store"
)

// Store is a SQLite-backed catalog store.
type Store struct {
	queries
	db  *sql.DB
	cfg *Config
}

var _ store.Store = (*Store)(nil)

// Open opens (creating if needed) the database at path and migrates it.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	cfg := newConfig(path, opts...)
	dsn, err := buildDSN(cfg)
	if err != nil {
		return nil, errors.NewConfigError("sqlite", err.Error(), err)
	}
	if cfg.Path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), constants.DirPermissions); err != nil {
			return nil, errors.WrapIO("create", filepath.Dir(cfg.Path), err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.NewPersistenceError("open", err)
	}
	// SQLite allows one writer; a single connection also keeps an
	// in-memory database alive for the life of the store.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.NewPersistenceError("open", err)
	}
	if err := ApplyMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, errors.NewPersistenceError("migrate", err)
	}

	logging.FromContext(ctx).Debug().Str("path", cfg.Path).Msg("Opened SQLite store")
	return &Store{queries: queries{run: db}, db: db, cfg: cfg}, nil
}

// DB exposes the underlying handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database path.
func (s *Store) Path() string {
	return s.cfg.Path
}

// Update runs fn inside one SQLite transaction.
func (s *Store) Update(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewPersistenceError("begin", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, &queries{run: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logging.FromContext(ctx).Warn().Err(rbErr).Msg("Rollback failed")
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.NewPersistenceError("commit", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("sqlite: close: %w", err)
	}
	return nil
}
