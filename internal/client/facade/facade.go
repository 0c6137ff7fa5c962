// Package facade is the session-scoped data access of the CLI. Every call
// requires a signed-in user, carries that user's access token and is
// retried once after a token refresh when the server reports expiry.
package facade

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/letterdesk/internal/client/models"
	"github.com/dmitrijs2005/letterdesk/internal/common"
)

// Sessions is the part of session.Manager the facade relies on.
type Sessions interface {
	Current() (models.User, bool)
	Token() string
	Refresh(ctx context.Context) (string, error)
}

// LettersAPI is the protected part of the transport.
type LettersAPI interface {
	FetchLetters(ctx context.Context, accessToken string) ([]models.Letter, error)
	CreateLetter(ctx context.Context, accessToken string, in models.LetterInput) (models.Letter, error)
	UpdateLetter(ctx context.Context, accessToken string, l models.Letter) (models.Letter, error)
	DeleteLetter(ctx context.Context, accessToken, id string) error
	FetchAllLetters(ctx context.Context, accessToken string) ([]models.Letter, error)
	FetchAllUsers(ctx context.Context, accessToken string) ([]models.User, error)
	GenerateDraft(ctx context.Context, accessToken string, r models.DraftRequest) (string, error)
	AffiliateStats(ctx context.Context, accessToken string) (models.AffiliateStats, error)
}

type Letters struct {
	sessions Sessions
	api      LettersAPI
}

func NewLetters(s Sessions, api LettersAPI) *Letters {
	return &Letters{sessions: s, api: api}
}

// call runs fn with the current token. The role check runs before any
// network traffic; the server repeats it.
func call[T any](ctx context.Context, f *Letters, allowed func(models.Role) bool, fn func(token string) (T, error)) (T, error) {
	var zero T
	u, ok := f.sessions.Current()
	if !ok {
		return zero, common.ErrNotAuthenticated
	}
	if allowed != nil && !allowed(u.Role) {
		return zero, common.ErrPermissionDenied
	}

	res, err := fn(f.sessions.Token())
	if !errors.Is(err, common.ErrTokenExpired) {
		return res, err
	}

	token, rerr := f.sessions.Refresh(ctx)
	if rerr != nil {
		return zero, fmt.Errorf("refresh session: %w", rerr)
	}
	return fn(token)
}

func (f *Letters) FetchLetters(ctx context.Context) ([]models.Letter, error) {
	return call(ctx, f, nil, func(tok string) ([]models.Letter, error) {
		return f.api.FetchLetters(ctx, tok)
	})
}

func (f *Letters) CreateLetter(ctx context.Context, in models.LetterInput) (models.Letter, error) {
	return call(ctx, f, nil, func(tok string) (models.Letter, error) {
		return f.api.CreateLetter(ctx, tok, in)
	})
}

// UpdateLetter replaces the whole stored letter with l. Only an empty title,
// status, priority or letter type falls back to the stored value, so callers
// read, merge, then write.
func (f *Letters) UpdateLetter(ctx context.Context, l models.Letter) (models.Letter, error) {
	if l.ID == "" {
		return models.Letter{}, fmt.Errorf("%w: letter id is required", common.ErrValidation)
	}
	return call(ctx, f, nil, func(tok string) (models.Letter, error) {
		return f.api.UpdateLetter(ctx, tok, l)
	})
}

func (f *Letters) DeleteLetter(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: letter id is required", common.ErrValidation)
	}
	_, err := call(ctx, f, nil, func(tok string) (struct{}, error) {
		return struct{}{}, f.api.DeleteLetter(ctx, tok, id)
	})
	return err
}

func (f *Letters) FetchAllLetters(ctx context.Context) ([]models.Letter, error) {
	return call(ctx, f, models.Role.CanViewAllLetters, func(tok string) ([]models.Letter, error) {
		return f.api.FetchAllLetters(ctx, tok)
	})
}

func (f *Letters) FetchAllUsers(ctx context.Context) ([]models.User, error) {
	return call(ctx, f, models.Role.CanViewAllUsers, func(tok string) ([]models.User, error) {
		return f.api.FetchAllUsers(ctx, tok)
	})
}

func (f *Letters) GenerateDraft(ctx context.Context, r models.DraftRequest) (string, error) {
	return call(ctx, f, nil, func(tok string) (string, error) {
		return f.api.GenerateDraft(ctx, tok, r)
	})
}

func (f *Letters) AffiliateStats(ctx context.Context) (models.AffiliateStats, error) {
	return call(ctx, f, models.Role.CanViewAffiliateStats, func(tok string) (models.AffiliateStats, error) {
		return f.api.AffiliateStats(ctx, tok)
	})
}
