// Package users declares the user record family and its PostgreSQL store.
package users

import (
	"context"

	"github.com/dmitrijs2005/letterdesk/internal/server/models"
)

// Repository stores accounts keyed by normalized email.
type Repository interface {
	// Create inserts a user and fills in ID and CreatedAt. A taken email
	// yields common.ErrConflict.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, id string, hash string) error
	List(ctx context.Context) ([]*models.User, error)
	// FindByAffiliateCode matches the code case-insensitively.
	FindByAffiliateCode(ctx context.Context, code string) (*models.User, error)
	SetAffiliateCode(ctx context.Context, id string, code string) error
}
