// File: internal/infra/redis/lock.go
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ErrLockTimeout is returned when the lock could not be taken before ctx ended.
var ErrLockTimeout = errors.New("user lock not acquired")

// UserLocker serialises event handling per user across bot replicas that
// share one Redis. A lease bounds how long a crashed holder can block a user.
type UserLocker struct {
	client *Client
	ttl    time.Duration
	retry  time.Duration
}

func NewUserLocker(c *Client, ttl time.Duration) *UserLocker {
	return &UserLocker{client: c, ttl: ttl, retry: 50 * time.Millisecond}
}

// Lock blocks until the user's lock is held or ctx is done.
func (l *UserLocker) Lock(ctx context.Context, userID int64) (func(), error) {
	key := l.client.key("lock", "user", strconv.FormatInt(userID, 10))
	token := uuid.NewString()
	for {
		ok, err := l.client.cli.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil && ctx.Err() == nil {
			return nil, fmt.Errorf("setnx %s: %w", key, err)
		}
		if ok {
			return func() {
				// Detached from ctx so a cancelled request still releases.
				uctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				_ = luaUnlock.Run(uctx, l.client.cli, []string{key}, token).Err()
			}, nil
		}
		select {
		case <-ctx.Done():
			return nil, ErrLockTimeout
		case <-time.After(l.retry):
		}
	}
}

var luaUnlock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end`)
