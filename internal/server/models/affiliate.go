package models

import "time"

// CommissionRate is the share of each referred subscription credited to the
// referring employee.
const CommissionRate = 0.05

// NoAffiliateCode is reported for employees without an assigned code.
const NoAffiliateCode = "N/A"

// Referral describes a signup made with an affiliate code.
type Referral struct {
	ReferredUserEmail  string
	SubscriptionAmount float64
	UsedDiscount       bool
}

// AffiliateEntry is an immutable ledger line.
type AffiliateEntry struct {
	ID            int64
	EmployeeEmail string
	Referral
	CreatedAt time.Time
}

type AffiliateStats struct {
	Code          string
	TotalSignups  int
	TotalEarnings float64
	TotalPoints   int
}

// Aggregate derives stats from ledger entries. One point per referral.
func Aggregate(code string, entries []*AffiliateEntry) AffiliateStats {
	if code == "" {
		code = NoAffiliateCode
	}
	stats := AffiliateStats{Code: code}
	for _, e := range entries {
		stats.TotalSignups++
		stats.TotalPoints++
		stats.TotalEarnings += e.SubscriptionAmount * CommissionRate
	}
	return stats
}
