// Package resettokens persists single-use password reset tokens.
package resettokens

import (
	"context"

	"github.com/dmitrijs2005/letterdesk/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, token *models.PasswordResetToken) error
	// Find returns common.ErrorNotFound for an unknown token.
	Find(ctx context.Context, token string) (*models.PasswordResetToken, error)
	// Delete consumes the token. A token that is already gone yields
	// common.ErrorNotFound, so only one of two racing consumers succeeds.
	Delete(ctx context.Context, token string) error
}
