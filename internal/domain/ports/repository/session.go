package repository

import (
	"context"

	"receipt-desk-bot/internal/domain/model"
)

// SessionRepository stores one Session per user. Get returns
// domain.ErrNotFound for users never seen. Implementations copy on the way in
// and out so callers never share a *Session.
type SessionRepository interface {
	Get(ctx context.Context, userID int64) (*model.Session, error)
	Save(ctx context.Context, s *model.Session) error
	Count(ctx context.Context) (int, error)
}
