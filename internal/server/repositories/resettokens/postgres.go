package resettokens

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/letterdesk/internal/common"
	"github.com/dmitrijs2005/letterdesk/internal/dbx"
	"github.com/dmitrijs2005/letterdesk/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, t *models.PasswordResetToken) error {
	query := `
		INSERT INTO password_reset_tokens (token, user_id, email, expires_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.db.ExecContext(ctx, query, t.Token, t.UserID, t.Email, t.ExpiresAt); err != nil {
		return dbx.Classify(err)
	}
	return nil
}

func (r *PostgresRepository) Find(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	query := `
		SELECT user_id, email, expires_at
		FROM password_reset_tokens
		WHERE token = $1
	`
	t := &models.PasswordResetToken{Token: token}
	if err := r.db.QueryRowContext(ctx, query, token).Scan(&t.UserID, &t.Email, &t.ExpiresAt); err != nil {
		return nil, dbx.Classify(err)
	}
	return t, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, token string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM password_reset_tokens WHERE token = $1`, token)
	if err != nil {
		return dbx.Classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
