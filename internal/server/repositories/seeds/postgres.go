package seeds

import (
	"context"

	"github.com/dmitrijs2005/letterdesk/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) IsApplied(ctx context.Context, name string) (bool, error) {
	var applied bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM seed_flags WHERE name = $1)`, name).Scan(&applied)
	if err != nil {
		return false, dbx.Classify(err)
	}
	return applied, nil
}

func (r *PostgresRepository) MarkApplied(ctx context.Context, name string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO seed_flags (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name)
	if err != nil {
		return dbx.Classify(err)
	}
	return nil
}
