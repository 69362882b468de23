package memory

import (
	"context"
	"sync"

	"receipt-desk-bot/internal/domain"
	"receipt-desk-bot/internal/domain/ports/repository"
)

// Compile-time check
var _ repository.ReferralRepository = (*ReferralLedger)(nil)

// ReferralLedger keeps, per referrer, the referred users in first-seen order.
type ReferralLedger struct {
	mu      sync.Mutex
	ordered map[int64][]int64
	members map[int64]map[int64]struct{}
}

func NewReferralLedger() *ReferralLedger {
	return &ReferralLedger{
		ordered: make(map[int64][]int64),
		members: make(map[int64]map[int64]struct{}),
	}
}

func (l *ReferralLedger) Add(_ context.Context, referrerID, referredID int64) (bool, error) {
	if referrerID == 0 || referredID == 0 {
		return false, domain.ErrInvalidArgument
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	set, ok := l.members[referrerID]
	if !ok {
		set = make(map[int64]struct{})
		l.members[referrerID] = set
	}
	if _, dup := set[referredID]; dup {
		return false, nil
	}
	set[referredID] = struct{}{}
	l.ordered[referrerID] = append(l.ordered[referrerID], referredID)
	return true, nil
}

func (l *ReferralLedger) List(_ context.Context, referrerID int64) ([]int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	src := l.ordered[referrerID]
	out := make([]int64, len(src))
	copy(out, src)
	return out, nil
}

func (l *ReferralLedger) Count(_ context.Context, referrerID int64) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.ordered[referrerID]), nil
}

func (l *ReferralLedger) Referrers(_ context.Context) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.ordered), nil
}
