// Package seeds records which one-time data seeds have been applied.
package seeds

import "context"

type Repository interface {
	IsApplied(ctx context.Context, name string) (bool, error)
	// MarkApplied is idempotent.
	MarkApplied(ctx context.Context, name string) error
}
