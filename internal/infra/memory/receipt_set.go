package memory

import (
	"context"
	"sync"

	"receipt-desk-bot/internal/domain"
	"receipt-desk-bot/internal/domain/ports/repository"
)

// Compile-time check
var _ repository.ReceiptDedupRepository = (*ReceiptSet)(nil)

// ReceiptSet is the processed-submission set. Ids are never removed, which
// is what makes a retry of a failed submission a duplicate.
type ReceiptSet struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func NewReceiptSet() *ReceiptSet {
	return &ReceiptSet{ids: make(map[string]struct{})}
}

func (r *ReceiptSet) MarkSeen(_ context.Context, id string) (bool, error) {
	if id == "" {
		return false, domain.ErrInvalidArgument
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ids[id]; ok {
		return false, nil
	}
	r.ids[id] = struct{}{}
	return true, nil
}

func (r *ReceiptSet) Seen(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.ids[id]
	return ok, nil
}

func (r *ReceiptSet) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ids), nil
}
