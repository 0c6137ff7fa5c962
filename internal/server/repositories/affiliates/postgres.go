package affiliates

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/letterdesk/internal/dbx"
	"github.com/dmitrijs2005/letterdesk/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Append(ctx context.Context, e *models.AffiliateEntry) error {
	query :=
		`INSERT INTO affiliate_entries (employee_email, referred_user_email, subscription_amount, used_discount)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`

	e.EmployeeEmail = models.NormalizeEmail(e.EmployeeEmail)
	e.ReferredUserEmail = models.NormalizeEmail(e.ReferredUserEmail)
	err := r.db.QueryRowContext(ctx, query,
		e.EmployeeEmail, e.ReferredUserEmail, e.SubscriptionAmount, e.UsedDiscount).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return dbx.Classify(err)
	}
	return nil
}

func (r *PostgresRepository) ListByEmployee(ctx context.Context, employeeEmail string) ([]*models.AffiliateEntry, error) {
	query :=
		`SELECT id, employee_email, referred_user_email, subscription_amount, used_discount, created_at
		 FROM affiliate_entries
		 WHERE employee_email = $1
		 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, models.NormalizeEmail(employeeEmail))
	if err != nil {
		return nil, dbx.Classify(err)
	}
	defer rows.Close()

	result := []*models.AffiliateEntry{}
	for rows.Next() {
		e := &models.AffiliateEntry{}
		if err := rows.Scan(&e.ID, &e.EmployeeEmail, &e.ReferredUserEmail,
			&e.SubscriptionAmount, &e.UsedDiscount, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
