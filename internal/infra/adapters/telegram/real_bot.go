package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"receipt-desk-bot/internal/config"
	"receipt-desk-bot/internal/domain"
	"receipt-desk-bot/internal/domain/model"
	"receipt-desk-bot/internal/domain/ports/adapter"
	"receipt-desk-bot/internal/infra/metrics"
	"receipt-desk-bot/internal/infra/worker"
)

var (
	_ adapter.Messenger   = (*RealTelegramBotAdapter)(nil)
	_ adapter.FileFetcher = (*RealTelegramBotAdapter)(nil)
	_ adapter.Notifier    = (*RealTelegramBotAdapter)(nil)
)

// EventHandler is what the adapter delivers classified updates to.
type EventHandler interface {
	HandleEvent(ctx context.Context, user model.UserInfo, ev model.Event) error
	Classify(text string) model.Event
}

// botAPI is the subset of *tgbotapi.BotAPI used after construction.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// RealTelegramBotAdapter uses tgbotapi to poll updates and delegates to the
// facade through a keyed worker pool: one user's updates stay ordered and
// users never queue behind each other.
type RealTelegramBotAdapter struct {
	api      botAPI
	bot      *tgbotapi.BotAPI
	handler  EventHandler
	pool     *worker.Pool
	http     *http.Client
	maxBytes int64
	busyText string
	log      *zerolog.Logger

	cancelPolling context.CancelFunc
}

func NewRealTelegramBotAdapter(cfg *config.BotConfig, maxDownloadBytes int64, logger *zerolog.Logger) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram: connect: %w", err)
	}
	a := newAdapter(bot, maxDownloadBytes, logger)
	a.bot = bot
	a.log.Info().Str("bot", bot.Self.UserName).Msg("telegram bot authorized")
	return a, nil
}

func newAdapter(api botAPI, maxDownloadBytes int64, logger *zerolog.Logger) *RealTelegramBotAdapter {
	l := logger.With().Str("component", "TelegramBot").Logger()
	return &RealTelegramBotAdapter{
		api:      api,
		http:     &http.Client{Timeout: config.DownloadTimeout},
		maxBytes: maxDownloadBytes,
		log:      &l,
	}
}

// Username is the bot's public handle, used to build referral links.
func (r *RealTelegramBotAdapter) Username() string {
	if r.bot == nil {
		return ""
	}
	return r.bot.Self.UserName
}

// Attach sets the event sink and the pool updates are dispatched on.
// It must be called before StartPolling.
func (r *RealTelegramBotAdapter) Attach(h EventHandler, pool *worker.Pool) {
	r.handler = h
	r.pool = pool
}

// WithBusyText sets the reply sent when a user's update queue is full.
// Without it such updates are only logged.
func (r *RealTelegramBotAdapter) WithBusyText(text string) *RealTelegramBotAdapter {
	r.busyText = text
	return r
}

// StartPolling blocks until ctx is cancelled or StopPolling is called.
func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	if r.bot == nil || r.handler == nil || r.pool == nil {
		return errors.New("telegram: adapter not attached")
	}
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	r.cancelPolling = cancel
	defer r.bot.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case up, ok := <-updates:
			if !ok {
				return nil
			}
			r.dispatch(up)
		}
	}
}

func (r *RealTelegramBotAdapter) StopPolling() {
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

// dispatch classifies one update and queues it on the sender's lane.
func (r *RealTelegramBotAdapter) dispatch(up tgbotapi.Update) {
	in, ok := r.classify(up)
	if !ok {
		metrics.IncTelegramUpdate("ignored")
		return
	}
	metrics.IncTelegramUpdate(string(in.event.Kind))
	err := r.pool.Submit(in.user.ID, func(ctx context.Context) error {
		if in.callbackID != "" {
			// stop the client spinner whatever the outcome
			defer func() { _, _ = r.api.Request(tgbotapi.NewCallback(in.callbackID, "")) }()
		}
		return r.handler.HandleEvent(ctx, in.user, in.event)
	})
	if err == nil {
		return
	}
	r.log.Warn().Err(err).Int64("tg_id", in.user.ID).Msg("update dropped")
	if errors.Is(err, worker.ErrQueueFull) && r.busyText != "" {
		go r.replyBusy(in)
	}
}

// replyBusy tells a flooding user the update was skipped. It runs off the
// polling loop since sends have no deadline of their own.
func (r *RealTelegramBotAdapter) replyBusy(in inbound) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if in.callbackID != "" {
		_, _ = r.api.Request(tgbotapi.NewCallback(in.callbackID, r.busyText))
		return
	}
	if err := r.Notify(ctx, in.user.ID, r.busyText); err != nil {
		r.log.Warn().Err(err).Int64("tg_id", in.user.ID).Msg("busy reply failed")
	}
}

// SendText sends text with an optional reply or inline keyboard.
func (r *RealTelegramBotAdapter) SendText(ctx context.Context, chatID int64, text string, markdown bool, kb *model.Keyboard) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if markdown {
		msg.ParseMode = tgbotapi.ModeMarkdown
	}
	if markup := buildMarkup(kb); markup != nil {
		msg.ReplyMarkup = markup
	}
	return r.send("sendMessage", msg)
}

// SendPhoto re-sends an already uploaded photo by file id.
func (r *RealTelegramBotAdapter) SendPhoto(ctx context.Context, chatID int64, fileID, caption string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(fileID))
	p.Caption = caption
	return r.send("sendPhoto", p)
}

// EditOrReplace edits messageID in place; when that is impossible the text
// goes out as a new message.
func (r *RealTelegramBotAdapter) EditOrReplace(ctx context.Context, chatID int64, messageID int, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if messageID != 0 {
		err := r.send("editMessageText", tgbotapi.NewEditMessageText(chatID, messageID, text))
		if err == nil {
			return nil
		}
		r.log.Debug().Err(err).Int("message_id", messageID).Msg("edit failed, sending new message")
	}
	return r.send("sendMessage", tgbotapi.NewMessage(chatID, text))
}

func (r *RealTelegramBotAdapter) Notify(ctx context.Context, chatID int64, text string) error {
	return r.SendText(ctx, chatID, text, false, nil)
}

// Fetch downloads a file by id, refusing bodies larger than the configured
// limit.
func (r *RealTelegramBotAdapter) Fetch(ctx context.Context, fileID string) ([]byte, error) {
	url, err := r.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("telegram: resolve file: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("telegram: download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("telegram: download: status %d", resp.StatusCode)
	}
	body := io.Reader(resp.Body)
	if r.maxBytes > 0 {
		body = io.LimitReader(resp.Body, r.maxBytes+1)
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("telegram: download: %w", err)
	}
	if r.maxBytes > 0 && int64(len(b)) > r.maxBytes {
		return nil, fmt.Errorf("%w: file larger than %d bytes", domain.ErrDownloadFailed, r.maxBytes)
	}
	return b, nil
}

func (r *RealTelegramBotAdapter) send(method string, c tgbotapi.Chattable) error {
	if _, err := r.api.Send(c); err != nil {
		metrics.IncTelegramSendError(method)
		return err
	}
	return nil
}

// buildMarkup converts a domain keyboard; nil means no markup.
func buildMarkup(kb *model.Keyboard) interface{} {
	if kb == nil || len(kb.Rows) == 0 {
		return nil
	}
	if !kb.Inline {
		rows := make([][]tgbotapi.KeyboardButton, 0, len(kb.Rows))
		for _, row := range kb.Rows {
			if len(row) == 0 {
				continue
			}
			r := make([]tgbotapi.KeyboardButton, 0, len(row))
			for _, btn := range row {
				r = append(r, tgbotapi.NewKeyboardButton(btn.Text))
			}
			rows = append(rows, tgbotapi.NewKeyboardButtonRow(r...))
		}
		markup := tgbotapi.NewReplyKeyboard(rows...)
		markup.ResizeKeyboard = true
		return markup
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb.Rows))
	for _, row := range kb.Rows {
		if len(row) == 0 {
			continue
		}
		r := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			label := strings.TrimSpace(btn.Text)
			if label == "" {
				label = "•"
			}
			switch {
			case btn.URL != "":
				r = append(r, tgbotapi.NewInlineKeyboardButtonURL(label, btn.URL))
			case btn.SwitchInlineQuery != "":
				r = append(r, tgbotapi.NewInlineKeyboardButtonSwitch(label, btn.SwitchInlineQuery))
			case btn.Data != "":
				r = append(r, tgbotapi.NewInlineKeyboardButtonData(label, btn.Data))
			default:
				// safe fallback: use text as callback data
				r = append(r, tgbotapi.NewInlineKeyboardButtonData(label, label))
			}
		}
		rows = append(rows, r)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
