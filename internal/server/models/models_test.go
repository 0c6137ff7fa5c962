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

	_, err = ParseRole("lawyer")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@x.com", NormalizeEmail("  A@X.com "))
}

func TestCheckTransition(t *testing.T) {
	allowed := [][2]LetterStatus{
		{StatusDraft, StatusSubmitted},
		{StatusSubmitted, StatusInReview},
		{StatusInReview, StatusApproved},
		{StatusApproved, StatusCompleted},
		{StatusDraft, StatusCancelled},
		{StatusApproved, StatusCancelled},
		{StatusDraft, StatusDraft},
		{StatusCompleted, StatusCompleted},
	}
	for _, tc := range allowed {
		assert.NoError(t, CheckTransition(tc[0], tc[1]), "%s -> %s", tc[0], tc[1])
	}

	rejected := [][2]LetterStatus{
		{StatusDraft, StatusApproved},
		{StatusSubmitted, StatusDraft},
		{StatusCompleted, StatusCancelled},
		{StatusCancelled, StatusDraft},
		{StatusInReview, StatusCompleted},
	}
	for _, tc := range rejected {
		assert.ErrorIs(t, CheckTransition(tc[0], tc[1]), common.ErrInvalidTransition, "%s -> %s", tc[0], tc[1])
	}

	assert.ErrorIs(t, CheckTransition(StatusDraft, "archived"), common.ErrValidation)
}

func TestAggregate(t *testing.T) {
	zero := Aggregate("", nil)
	assert.Equal(t, AffiliateStats{Code: NoAffiliateCode}, zero)

	stats := Aggregate("EMP123XYZ", []*AffiliateEntry{
		{Referral: Referral{SubscriptionAmount: 50, UsedDiscount: true}},
		{Referral: Referral{SubscriptionAmount: 50}},
	})
	assert.Equal(t, "EMP123XYZ", stats.Code)
	assert.Equal(t, 2, stats.TotalSignups)
	assert.Equal(t, 2, stats.TotalPoints)
	assert.InDelta(t, 5.0, stats.TotalEarnings, 1e-9)
}

func TestPriorityValid(t *testing.T) {
	assert.True(t, PriorityUrgent.Valid())
	assert.False(t, Priority("critical").Valid())
}
