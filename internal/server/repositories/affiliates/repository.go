// Package affiliates stores the append-only referral ledger.
package affiliates

import (
	"context"

	"github.com/dmitrijs2005/letterdesk/internal/server/models"
)

type Repository interface {
	// Append adds a ledger line and fills in its ID and CreatedAt.
	Append(ctx context.Context, entry *models.AffiliateEntry) error
	// ListByEmployee returns entries in insertion order.
	ListByEmployee(ctx context.Context, employeeEmail string) ([]*models.AffiliateEntry, error)
}
