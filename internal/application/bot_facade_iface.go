package application

import (
	"context"

	"receipt-desk-bot/internal/domain/model"
)

// ---- small interfaces to decouple the facade from concrete usecase structs ----
// These describe the minimal surface that the facade needs. Using interfaces
// enables tests to pass in light-weight mocks.
type DialogEngine interface {
	Handle(ctx context.Context, user model.UserInfo, s *model.Session, ev model.Event) model.Transition
}

type LabelClassifier interface {
	Classify(text string) model.Event
}

type Translator interface {
	T(key string, args ...interface{}) string
}

// UserLocker grants exclusive access to one user's session. The in-process
// keyed lock is the default; a Redis lock replaces it when replicas share
// a store.
type UserLocker interface {
	Lock(ctx context.Context, userID int64) (unlock func(), err error)
}
