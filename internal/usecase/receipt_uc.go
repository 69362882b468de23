package usecase

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"receipt-desk-bot/internal/domain"
	"receipt-desk-bot/internal/domain/model"
	"receipt-desk-bot/internal/domain/ports/adapter"
	"receipt-desk-bot/internal/domain/ports/repository"
	"receipt-desk-bot/internal/infra/logging"
	"receipt-desk-bot/internal/infra/metrics"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/zeebo/blake3"
)

// Compile-time check
var _ ReceiptUseCase = (*receiptUC)(nil)

// ReceiptUseCase is the receipt intake pipeline.
type ReceiptUseCase interface {
	// Submit processes one photo at most once per submission id. It never
	// returns a Go error: failures are reported as OutcomeProcessingError.
	Submit(ctx context.Context, sub model.ReceiptSubmission) model.ReceiptOutcome
}

// Normalizer prepares raw image bytes for text extraction.
type Normalizer func(raw []byte) ([]byte, error)

type ReceiptOptions struct {
	ModerationChatID  int64
	ExtractionTimeout time.Duration
	MaxDownloadBytes  int64
	DevMode           bool // log extracted text verbatim
}

type receiptUC struct {
	seen       repository.ReceiptDedupRepository
	files      adapter.FileFetcher
	normalize  Normalizer
	extractor  adapter.TextExtractor
	validator  *KeywordValidator
	relay      adapter.Messenger
	notifier   adapter.Notifier
	translator Translator
	opts       ReceiptOptions
	newTicket  func() string
	log        *zerolog.Logger
}

func NewReceiptUseCase(
	seen repository.ReceiptDedupRepository,
	files adapter.FileFetcher,
	normalize Normalizer,
	extractor adapter.TextExtractor,
	validator *KeywordValidator,
	relay adapter.Messenger,
	translator Translator,
	opts ReceiptOptions,
	logger *zerolog.Logger,
) *receiptUC {
	if opts.ExtractionTimeout <= 0 {
		opts.ExtractionTimeout = 20 * time.Second
	}
	if validator == nil {
		validator = NewKeywordValidator()
	}
	l := logger.With().Str("component", "ReceiptUC").Logger()
	return &receiptUC{
		seen:       seen,
		files:      files,
		normalize:  normalize,
		extractor:  extractor,
		validator:  validator,
		relay:      relay,
		translator: translator,
		opts:       opts,
		newTicket:  func() string { return ulid.Make().String() },
		log:        &l,
	}
}

func (u *receiptUC) Submit(ctx context.Context, sub model.ReceiptSubmission) model.ReceiptOutcome {
	defer logging.TraceDuration(u.log, "ReceiptUC.Submit")()
	log := logging.With(ctx, u.log).With().Str("submission_id", sub.SubmissionID).Logger()

	// The id stays in the set whatever happens below, so a retry of a
	// failed submission is a duplicate.
	first, err := u.seen.MarkSeen(ctx, sub.SubmissionID)
	if err != nil {
		log.Error().Err(err).Msg("dedup insert failed")
		return failed(fmt.Errorf("mark seen: %w", err))
	}
	if !first {
		log.Info().Msg("duplicate receipt")
		metrics.IncReceipt(string(model.OutcomeDuplicate), false)
		return model.ReceiptOutcome{Kind: model.OutcomeDuplicate}
	}
	u.notify(ctx, &log, sub.User.ID)

	raw, err := u.files.Fetch(ctx, sub.FileID)
	if err != nil {
		log.Error().Err(err).Msg("download failed")
		return failed(fmt.Errorf("%w: %v", domain.ErrDownloadFailed, err))
	}
	if u.opts.MaxDownloadBytes > 0 && int64(len(raw)) > u.opts.MaxDownloadBytes {
		log.Warn().Int("bytes", len(raw)).Msg("receipt over size limit")
		return failed(fmt.Errorf("%w: %d bytes over limit %d", domain.ErrDownloadFailed, len(raw), u.opts.MaxDownloadBytes))
	}
	fingerprint := Fingerprint(raw)

	img, err := u.normalize(raw)
	if err != nil {
		log.Error().Err(err).Str("fingerprint", fingerprint).Msg("image decode failed")
		return failed(fmt.Errorf("%w: %v", domain.ErrImageDecode, err))
	}

	valid := u.validate(ctx, &log, img)

	ticket := u.newTicket()
	caption := u.caption(sub, ticket, valid, fingerprint)
	if err := u.relay.SendPhoto(ctx, u.opts.ModerationChatID, sub.FileID, caption); err != nil {
		log.Error().Err(err).Str("ticket", ticket).Msg("relay to moderation failed")
		metrics.IncRelayFailure()
		return failed(fmt.Errorf("%w: %v", domain.ErrRelayFailed, err))
	}

	log.Info().Str("ticket", ticket).Bool("valid", valid).Str("fingerprint", fingerprint).Msg("receipt relayed")
	metrics.IncReceipt(string(model.OutcomeAccepted), valid)
	return model.ReceiptOutcome{
		Kind:           model.OutcomeAccepted,
		ExtractedValid: valid,
		TicketID:       ticket,
		Fingerprint:    fingerprint,
	}
}

// validate runs the extractor under the configured timeout. A failed or
// timed-out extraction counts as valid.
func (u *receiptUC) validate(ctx context.Context, log *zerolog.Logger, img []byte) bool {
	ectx, cancel := context.WithTimeout(ctx, u.opts.ExtractionTimeout)
	defer cancel()

	ext := u.extractor.Extract(ectx, img)
	if !ext.Failed && ectx.Err() != nil {
		ext = model.ExtractionFailed(ext.Provider, ectx.Err().Error())
	}
	if ext.Failed {
		log.Warn().Str("provider", ext.Provider).Str("reason", ext.Reason).Msg("extraction failed, accepting receipt")
		return true
	}

	valid, matched := u.validator.Validate(ext.Text)
	log.Debug().
		Str("provider", ext.Provider).
		Strs("keywords", matched).
		Str("text", logging.Redact(ext.Text, u.opts.DevMode)).
		Msg("receipt text validated")
	return valid
}

func (u *receiptUC) caption(sub model.ReceiptSubmission, ticket string, valid bool, fingerprint string) string {
	username := sub.User.Username
	if username == "" {
		username = u.translator.T("relay_no_username")
	}
	lines := []string{
		u.translator.T("relay_header"),
		u.translator.T("relay_user", sub.User.FirstName, username),
	}
	if sub.ProductID != "" {
		name := sub.ProductName
		if name == "" {
			name = sub.ProductID
		}
		lines = append(lines, u.translator.T("relay_product", name))
		if sub.Price > 0 {
			lines = append(lines, u.translator.T("relay_price", formatAmount(sub.Price, sub.Currency)))
		}
	}
	lines = append(lines,
		u.translator.T("relay_id", sub.User.ID),
		u.translator.T("relay_ticket", ticket),
	)
	if valid {
		lines = append(lines, u.translator.T("relay_ocr_valid"))
	} else {
		lines = append(lines, u.translator.T("relay_ocr_unverified"))
	}
	lines = append(lines, u.translator.T("relay_fingerprint", fingerprint))
	return strings.Join(lines, "\n")
}

// Fingerprint is a short BLAKE3 digest of the downloaded image. Forwarded
// copies of the same picture get new file ids but keep their fingerprint.
func Fingerprint(raw []byte) string {
	sum := blake3.Sum256(raw)
	return hex.EncodeToString(sum[:8])
}

// WithNotifier makes Submit tell the user their receipt is being validated
// once it is known not to be a duplicate.
func (u *receiptUC) WithNotifier(n adapter.Notifier) *receiptUC {
	u.notifier = n
	return u
}

func (u *receiptUC) notify(ctx context.Context, log *zerolog.Logger, chatID int64) {
	if u.notifier == nil || chatID == 0 {
		return
	}
	if err := u.notifier.Notify(ctx, chatID, u.translator.T("receipt_validating")); err != nil {
		log.Warn().Err(err).Msg("interim notice not delivered")
	}
}

func failed(err error) model.ReceiptOutcome {
	metrics.IncReceipt(string(model.OutcomeProcessingError), false)
	return model.ReceiptOutcome{Kind: model.OutcomeProcessingError, Err: err}
}

func formatAmount(amount int64, currency string) string {
	if currency == "" {
		return fmt.Sprintf("$%d", amount)
	}
	return fmt.Sprintf("$%d %s", amount, currency)
}
