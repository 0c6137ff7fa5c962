// Package models defines client-side data models used by the letterdesk CLI.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/letterdesk/internal/common"
)

type Role string

const (
	RoleUser     Role = "user"
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
)

// ParseRole accepts a role name in any case.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleUser, RoleEmployee, RoleAdmin:
		return r, nil
	}
	return "", fmt.Errorf("%w: unknown role %q", common.ErrValidation, s)
}

// CanViewAllLetters reports whether the role may read the review queue.
func (r Role) CanViewAllLetters() bool {
	return r == RoleAdmin || r == RoleEmployee
}

// CanViewAllUsers reports whether the role may list accounts.
func (r Role) CanViewAllUsers() bool {
	return r == RoleAdmin
}

// CanViewAffiliateStats reports whether the role owns an affiliate record.
func (r Role) CanViewAffiliateStats() bool {
	return r == RoleAdmin || r == RoleEmployee
}

// User is the account as seen by the signed-in client.
type User struct {
	ID            string
	Email         string
	Role          Role
	AffiliateCode string
	CreatedAt     time.Time
}
