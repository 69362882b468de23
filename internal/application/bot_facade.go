package application

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"receipt-desk-bot/internal/domain"
	"receipt-desk-bot/internal/domain/model"
	"receipt-desk-bot/internal/domain/ports/adapter"
	"receipt-desk-bot/internal/domain/ports/repository"
	"receipt-desk-bot/internal/infra/logging"
	"receipt-desk-bot/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Stats is the snapshot served by the admin API and the gauge worker.
type Stats struct {
	Sessions  int `json:"sessions"`
	Receipts  int `json:"receipts"`
	Referrers int `json:"referrers"`
}

// BotFacade is the single entry point the transport calls. It owns the
// per-user serialisation: one event per user at a time, users in parallel.
type BotFacade struct {
	dialog    DialogEngine
	labels    LabelClassifier
	sessions  repository.SessionRepository
	referrals repository.ReferralRepository
	receipts  repository.ReceiptDedupRepository
	messenger adapter.Messenger
	t         Translator
	locks     UserLocker
	now       func() time.Time
	log       *zerolog.Logger
}

func NewBotFacade(
	dialog DialogEngine,
	labels LabelClassifier,
	sessions repository.SessionRepository,
	referrals repository.ReferralRepository,
	receipts repository.ReceiptDedupRepository,
	messenger adapter.Messenger,
	t Translator,
	logger *zerolog.Logger,
) *BotFacade {
	l := logger.With().Str("component", "BotFacade").Logger()
	return &BotFacade{
		dialog:    dialog,
		labels:    labels,
		sessions:  sessions,
		referrals: referrals,
		receipts:  receipts,
		messenger: messenger,
		t:         t,
		locks:     newKeyedLock(),
		now:       time.Now,
		log:       &l,
	}
}

// WithUserLocker replaces the in-process per-user lock.
func (b *BotFacade) WithUserLocker(l UserLocker) *BotFacade {
	b.locks = l
	return b
}

// SetMessenger swaps the outbound transport. main wires the facade before
// the Telegram adapter exists, then points it at the adapter.
func (b *BotFacade) SetMessenger(m adapter.Messenger) { b.messenger = m }

// Classify maps chat text to an event.
func (b *BotFacade) Classify(text string) model.Event {
	return b.labels.Classify(text)
}

// HandleEvent runs one inbound event for user to completion: load session,
// run the engine, persist, deliver actions. A failure here never touches
// another user's state.
func (b *BotFacade) HandleEvent(ctx context.Context, user model.UserInfo, ev model.Event) error {
	defer logging.TraceDuration(b.log, "BotFacade.HandleEvent")()
	ctx = logging.WithTgID(ctx, user.ID)
	ctx = logging.WithEvent(ctx, string(ev.Kind))
	log := logging.With(ctx, b.log)
	metrics.IncDialogEvent(string(ev.Kind))

	unlock, err := b.locks.Lock(ctx, user.ID)
	if err != nil {
		log.Error().Err(err).Msg("user lock")
		return fmt.Errorf("lock user %d: %w", user.ID, err)
	}
	defer unlock()

	s, err := b.sessions.Get(ctx, user.ID)
	if errors.Is(err, domain.ErrNotFound) {
		s = model.NewSession(user.ID)
	} else if err != nil {
		metrics.IncStoreError("sessions", "get")
		log.Error().Err(err).Msg("load session")
		b.apologize(ctx, user.ID)
		return fmt.Errorf("load session %d: %w", user.ID, err)
	}

	from := s.State
	tr, perr := b.safeHandle(ctx, user, s, ev)
	if perr != nil {
		metrics.IncDialogPanic()
		log.Error().Err(perr.err).Bytes("stack", perr.stack).Msg("panic while handling event")
		b.apologize(ctx, user.ID)
		return perr.err
	}

	s.State = tr.Next
	s.UpdatedAt = b.now()
	if err := b.sessions.Save(ctx, s); err != nil {
		metrics.IncStoreError("sessions", "save")
		log.Error().Err(err).Msg("save session")
	}
	metrics.IncTransition(string(from), string(tr.Next))
	log.Debug().Str("from", string(from)).Str("to", string(tr.Next)).Int("actions", len(tr.Actions)).Msg("event handled")

	b.dispatch(ctx, log, tr.Actions)
	return nil
}

type recovered struct {
	err   error
	stack []byte
}

func (b *BotFacade) safeHandle(ctx context.Context, user model.UserInfo, s *model.Session, ev model.Event) (tr model.Transition, rec *recovered) {
	// The engine works on a copy so a panic halfway through leaves the
	// stored session as it was.
	work := s.Clone()
	defer func() {
		if r := recover(); r != nil {
			rec = &recovered{err: fmt.Errorf("dialog panic: %v", r), stack: debug.Stack()}
		}
	}()
	tr = b.dialog.Handle(ctx, user, work, ev)
	*s = *work
	return tr, nil
}

func (b *BotFacade) dispatch(ctx context.Context, log *zerolog.Logger, actions []model.Action) {
	for _, a := range actions {
		var err error
		switch a.Kind {
		case model.ActionSendText:
			err = b.messenger.SendText(ctx, a.ChatID, a.Text, a.Markdown, a.Keyboard)
		case model.ActionSendPhoto:
			err = b.messenger.SendPhoto(ctx, a.ChatID, a.FileID, a.Text)
		case model.ActionEditOrReplace:
			err = b.messenger.EditOrReplace(ctx, a.ChatID, a.MessageID, a.Text)
		default:
			err = fmt.Errorf("unknown action kind %q", a.Kind)
		}
		if err != nil {
			log.Warn().Err(err).Str("action", string(a.Kind)).Int64("chat_id", a.ChatID).Msg("action not delivered")
		}
	}
}

func (b *BotFacade) apologize(ctx context.Context, chatID int64) {
	if err := b.messenger.SendText(ctx, chatID, b.t.T("internal_error"), false, nil); err != nil {
		b.log.Warn().Err(err).Int64("chat_id", chatID).Msg("apology not delivered")
	}
}

// Stats counts what the stores hold.
func (b *BotFacade) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	var err error
	if st.Sessions, err = b.sessions.Count(ctx); err != nil {
		return Stats{}, fmt.Errorf("count sessions: %w", err)
	}
	if st.Receipts, err = b.receipts.Count(ctx); err != nil {
		return Stats{}, fmt.Errorf("count receipts: %w", err)
	}
	if st.Referrers, err = b.referrals.Referrers(ctx); err != nil {
		return Stats{}, fmt.Errorf("count referrers: %w", err)
	}
	return st, nil
}
