package redis

import (
	"context"
	"fmt"

	"receipt-desk-bot/internal/domain"
	"receipt-desk-bot/internal/domain/ports/repository"
)

var _ repository.ReceiptDedupRepository = (*ReceiptDedupRepo)(nil)

// ReceiptDedupRepo is the processed-submission set. SADD returns 1 only for
// the caller that inserted the member, which is the atomic check-and-insert.
type ReceiptDedupRepo struct {
	client *Client
}

func NewReceiptDedupRepo(client *Client) *ReceiptDedupRepo {
	return &ReceiptDedupRepo{client: client}
}

func (r *ReceiptDedupRepo) setKey() string { return r.client.key("receipts", "seen") }

func (r *ReceiptDedupRepo) MarkSeen(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, domain.ErrInvalidArgument
	}
	n, err := r.client.cli.SAdd(ctx, r.setKey(), id).Result()
	if err != nil {
		return false, fmt.Errorf("sadd receipt: %w", err)
	}
	return n == 1, nil
}

func (r *ReceiptDedupRepo) Seen(ctx context.Context, id string) (bool, error) {
	return r.client.cli.SIsMember(ctx, r.setKey(), id).Result()
}

func (r *ReceiptDedupRepo) Count(ctx context.Context) (int, error) {
	n, err := r.client.cli.SCard(ctx, r.setKey()).Result()
	return int(n), err
}
