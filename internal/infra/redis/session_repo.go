package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"receipt-desk-bot/internal/domain"
	"receipt-desk-bot/internal/domain/model"
	"receipt-desk-bot/internal/domain/ports/repository"

	"github.com/go-redis/redis/v8"
)

var _ repository.SessionRepository = (*SessionRepo)(nil)

// SessionRepo keeps all sessions in one hash, field = user id, value = JSON.
// Nothing expires, matching the in-memory store.
type SessionRepo struct {
	client *Client
}

func NewSessionRepo(client *Client) *SessionRepo {
	return &SessionRepo{client: client}
}

func (s *SessionRepo) hashKey() string { return s.client.key("sessions") }

func (s *SessionRepo) Get(ctx context.Context, userID int64) (*model.Session, error) {
	data, err := s.client.cli.HGet(ctx, s.hashKey(), strconv.FormatInt(userID, 10)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("hget session %d: %w", userID, err)
	}
	var sess model.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session %d: %w", userID, err)
	}
	return &sess, nil
}

func (s *SessionRepo) Save(ctx context.Context, sess *model.Session) error {
	if sess == nil || sess.UserID == 0 {
		return domain.ErrInvalidArgument
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.client.cli.HSet(ctx, s.hashKey(), strconv.FormatInt(sess.UserID, 10), data).Err()
}

func (s *SessionRepo) Count(ctx context.Context) (int, error) {
	n, err := s.client.cli.HLen(ctx, s.hashKey()).Result()
	return int(n), err
}
