// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/letterdesk/internal/dbx"
	"github.com/dmitrijs2005/letterdesk/internal/server/migrations"
	"github.com/dmitrijs2005/letterdesk/internal/server/repositories/affiliates"
	"github.com/dmitrijs2005/letterdesk/internal/server/repositories/letters"
	"github.com/dmitrijs2005/letterdesk/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/letterdesk/internal/server/repositories/resettokens"
	"github.com/dmitrijs2005/letterdesk/internal/server/repositories/seeds"
	"github.com/dmitrijs2005/letterdesk/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return refreshtokens.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) ResetTokens(db dbx.DBTX) resettokens.Repository {
	return resettokens.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Letters(db dbx.DBTX) letters.Repository {
	return letters.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Affiliates(db dbx.DBTX) affiliates.Repository {
	return affiliates.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Seeds(db dbx.DBTX) seeds.Repository {
	return seeds.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded schema migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}
