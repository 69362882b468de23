// File: internal/domain/ports/adapter/telegram.go
package adapter

import (
	"context"

	"receipt-desk-bot/internal/domain/model"
)

// Messenger delivers outbound actions to the chat platform.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string, markdown bool, kb *model.Keyboard) error
	SendPhoto(ctx context.Context, chatID int64, fileID, caption string) error
	// EditOrReplace edits messageID in place, or sends a new message when
	// messageID is 0 or the edit is rejected.
	EditOrReplace(ctx context.Context, chatID int64, messageID int, text string) error
}

// FileFetcher downloads a platform file by its id.
type FileFetcher interface {
	Fetch(ctx context.Context, fileID string) ([]byte, error)
}

// Notifier sends a short interim message while a slow operation runs.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, text string) error
}
