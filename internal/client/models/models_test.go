package models

import (
	"testing"

	"github.com/dmitrijs2005/letterdesk/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" Admin ")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, r)

	_, err = ParseRole("owner")
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestRoleCapabilities(t *testing.T) {
	tests := []struct {
		role                   Role
		allLetters, users, aff bool
	}{
		{RoleUser, false, false, false},
		{RoleEmployee, true, false, true},
		{RoleAdmin, true, true, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.allLetters, tt.role.CanViewAllLetters())
			assert.Equal(t, tt.users, tt.role.CanViewAllUsers())
			assert.Equal(t, tt.aff, tt.role.CanViewAffiliateStats())
		})
	}
}
