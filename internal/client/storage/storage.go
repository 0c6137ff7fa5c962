// Package storage opens the local SQLite cache of the CLI and exposes the
// persisted session record on top of it.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/letterdesk/internal/client/migrations"
	"github.com/dmitrijs2005/letterdesk/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/letterdesk/internal/dbx"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

const sessionNamespace = "session"

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

// Open opens (creating if needed) the SQLite database at dsn and migrates it.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// a single connection keeps ":memory:" databases coherent
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s: %w", dsn, err)
	}
	return db, nil
}

// SessionStore keeps the session record as string pairs in the metadata
// table. Save replaces the whole record atomically.
type SessionStore struct {
	db *sql.DB
}

func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) Save(ctx context.Context, values map[string]string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx, sessionNamespace)
		if err := repo.Clear(ctx); err != nil {
			return err
		}
		for k, v := range values {
			if err := repo.Set(ctx, k, []byte(v)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Load returns the stored record, or an empty map when none was saved.
func (s *SessionStore) Load(ctx context.Context) (map[string]string, error) {
	pairs, err := metadata.NewSQLiteRepository(s.db, sessionNamespace).List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(pairs))
	for k, v := range pairs {
		out[k] = string(v)
	}
	return out, nil
}

func (s *SessionStore) Clear(ctx context.Context) error {
	return metadata.NewSQLiteRepository(s.db, sessionNamespace).Clear(ctx)
}
