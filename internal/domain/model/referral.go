package model

import "sort"

// ReferralTier is a named reward level reached at Threshold referrals.
type ReferralTier struct {
	Name      string `yaml:"name"`
	Threshold int    `yaml:"threshold"`
}

// DefaultReferralTiers are used when configuration does not override them.
func DefaultReferralTiers() []ReferralTier {
	return []ReferralTier{
		{Name: "Bronze", Threshold: 3},
		{Name: "Silver", Threshold: 7},
		{Name: "Gold", Threshold: 15},
		{Name: "Diamond", Threshold: 25},
	}
}

// TierFor returns the highest tier reached with count referrals and the next
// tier to reach. Either may be nil.
func TierFor(count int, tiers []ReferralTier) (current, next *ReferralTier) {
	sorted := make([]ReferralTier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Threshold < sorted[j].Threshold })
	for i := range sorted {
		t := sorted[i]
		if count >= t.Threshold {
			current = &t
			continue
		}
		next = &t
		break
	}
	return current, next
}

// ReferralSummary is what the referrals screen shows.
type ReferralSummary struct {
	Link    string
	Count   int
	Current *ReferralTier
	Next    *ReferralTier
}
