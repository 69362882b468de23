package redis

import (
	"context"
	"fmt"
	"strconv"

	"receipt-desk-bot/internal/domain"
	"receipt-desk-bot/internal/domain/ports/repository"

	"github.com/go-redis/redis/v8"
)

var _ repository.ReferralRepository = (*ReferralRepo)(nil)

// ReferralRepo stores, per referrer, a set for membership and a list for
// order. The Lua script keeps both in step atomically.
type ReferralRepo struct {
	client *Client
}

func NewReferralRepo(client *Client) *ReferralRepo {
	return &ReferralRepo{client: client}
}

// KEYS[1] member set, KEYS[2] ordered list, KEYS[3] referrer index.
var luaAddReferral = redis.NewScript(`
if redis.call("SADD", KEYS[1], ARGV[2]) == 1 then
	redis.call("RPUSH", KEYS[2], ARGV[2])
	redis.call("SADD", KEYS[3], ARGV[1])
	return 1
end
return 0`)

func (r *ReferralRepo) keys(referrerID int64) (set, list string) {
	id := strconv.FormatInt(referrerID, 10)
	return r.client.key("referrals", id, "set"), r.client.key("referrals", id, "list")
}

func (r *ReferralRepo) Add(ctx context.Context, referrerID, referredID int64) (bool, error) {
	if referrerID == 0 || referredID == 0 {
		return false, domain.ErrInvalidArgument
	}
	set, list := r.keys(referrerID)
	n, err := luaAddReferral.Run(ctx, r.client.cli,
		[]string{set, list, r.client.key("referrers")},
		strconv.FormatInt(referrerID, 10), strconv.FormatInt(referredID, 10),
	).Int()
	if err != nil {
		return false, fmt.Errorf("add referral: %w", err)
	}
	return n == 1, nil
}

func (r *ReferralRepo) List(ctx context.Context, referrerID int64) ([]int64, error) {
	_, list := r.keys(referrerID)
	raw, err := r.client.cli.LRange(ctx, list, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]int64, 0, len(raw))
	for _, s := range raw {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("referral list %d holds %q: %w", referrerID, s, err)
		}
		out = append(out, id)
	}
	return out, nil
}

func (r *ReferralRepo) Count(ctx context.Context, referrerID int64) (int, error) {
	_, list := r.keys(referrerID)
	n, err := r.client.cli.LLen(ctx, list).Result()
	return int(n), err
}

func (r *ReferralRepo) Referrers(ctx context.Context) (int, error) {
	n, err := r.client.cli.SCard(ctx, r.client.key("referrers")).Result()
	return int(n), err
}
