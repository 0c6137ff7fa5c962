// Package letters stores letter requests and their drafted content.
package letters

import (
	"context"

	"github.com/dmitrijs2005/letterdesk/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, letter *models.Letter) error
	// Get returns common.ErrorNotFound for an unknown id.
	Get(ctx context.Context, id string) (*models.Letter, error)
	// Update overwrites every mutable column. UserID and CreatedAt are kept.
	Update(ctx context.Context, letter *models.Letter) error
	Delete(ctx context.Context, id string) error
	// ListByUser returns the user's letters, newest first.
	ListByUser(ctx context.Context, userID string) ([]*models.Letter, error)
	ListAll(ctx context.Context) ([]*models.Letter, error)
}
