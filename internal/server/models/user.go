// Package models defines server-side data models persisted in the database.
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

// ParseRole validates a role name. Matching is case-insensitive.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleUser, RoleEmployee, RoleAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", common.ErrValidation, s)
	}
}

type User struct {
	ID            string
	Email         string
	PasswordHash  string
	Role          Role
	AffiliateCode string
	CreatedAt     time.Time
}

// NormalizeEmail is the identity key form of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
