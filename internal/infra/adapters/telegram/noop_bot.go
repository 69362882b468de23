package telegram

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"receipt-desk-bot/internal/domain"
	"receipt-desk-bot/internal/domain/model"
	"receipt-desk-bot/internal/domain/ports/adapter"
)

var (
	_ adapter.Messenger   = (*NoopBotAdapter)(nil)
	_ adapter.FileFetcher = (*NoopBotAdapter)(nil)
	_ adapter.Notifier    = (*NoopBotAdapter)(nil)
)

// NoopBotAdapter is used in dev mode without a token.
// It logs messages instead of sending real Telegram messages.
type NoopBotAdapter struct {
	delay time.Duration
	log   *zerolog.Logger
}

func NewNoopBotAdapter(logger *zerolog.Logger) *NoopBotAdapter {
	l := logger.With().Str("component", "NoopTelegram").Logger()
	return &NoopBotAdapter{delay: 100 * time.Millisecond, log: &l}
}

// wait simulates slight processing time and respects ctx.
func (b *NoopBotAdapter) wait(ctx context.Context) error {
	select {
	case <-time.After(b.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *NoopBotAdapter) SendText(ctx context.Context, chatID int64, text string, markdown bool, kb *model.Keyboard) error {
	if err := b.wait(ctx); err != nil {
		return err
	}
	ev := b.log.Info().Int64("chat_id", chatID).Bool("markdown", markdown).Str("text", text)
	if kb != nil {
		ev = ev.Str("keyboard", describeKeyboard(kb))
	}
	ev.Msg("send text")
	return nil
}

func (b *NoopBotAdapter) SendPhoto(ctx context.Context, chatID int64, fileID, caption string) error {
	if err := b.wait(ctx); err != nil {
		return err
	}
	b.log.Info().Int64("chat_id", chatID).Str("file_id", fileID).Str("caption", caption).Msg("send photo")
	return nil
}

func (b *NoopBotAdapter) EditOrReplace(ctx context.Context, chatID int64, messageID int, text string) error {
	if err := b.wait(ctx); err != nil {
		return err
	}
	b.log.Info().Int64("chat_id", chatID).Int("message_id", messageID).Str("text", text).Msg("edit message")
	return nil
}

func (b *NoopBotAdapter) Notify(ctx context.Context, chatID int64, text string) error {
	return b.SendText(ctx, chatID, text, false, nil)
}

// Fetch always fails: there is no platform to download from.
func (b *NoopBotAdapter) Fetch(_ context.Context, fileID string) ([]byte, error) {
	return nil, fmt.Errorf("%w: noop transport cannot fetch %q", domain.ErrDownloadFailed, fileID)
}

func describeKeyboard(kb *model.Keyboard) string {
	out := ""
	for i, row := range kb.Rows {
		if i > 0 {
			out += " | "
		}
		for j, btn := range row {
			if j > 0 {
				out += ", "
			}
			out += btn.Text
		}
	}
	if kb.Inline {
		return "inline: " + out
	}
	return out
}
