package repository

import "context"

// ReferralRepository is the referral ledger. Add is an atomic
// insert-if-absent per referrer; added is false when the pair already exists.
type ReferralRepository interface {
	Add(ctx context.Context, referrerID, referredID int64) (added bool, err error)
	List(ctx context.Context, referrerID int64) ([]int64, error)
	Count(ctx context.Context, referrerID int64) (int, error)
	// Referrers is the number of users with at least one referral.
	Referrers(ctx context.Context) (int, error)
}
