package auth

import (
	"context"

	"github.com/dmitrijs2005/letterdesk/internal/server/models"
)

// Principal is the authenticated caller of an RPC.
type Principal struct {
	UserID string
	Email  string
	Role   models.Role
}

func PrincipalOf(u *models.User) Principal {
	return Principal{UserID: u.ID, Email: u.Email, Role: u.Role}
}

func (p Principal) IsAdmin() bool { return p.Role == models.RoleAdmin }

// HasRole reports whether the caller holds any of the roles.
func (p Principal) HasRole(roles ...models.Role) bool {
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
