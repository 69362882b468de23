package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"receipt-desk-bot/internal/domain"
	"receipt-desk-bot/internal/domain/model"
	"receipt-desk-bot/internal/domain/ports/repository"
	"receipt-desk-bot/internal/infra/logging"
	"receipt-desk-bot/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ ReferralUseCase = (*referralUC)(nil)

// ReferralUseCase records who brought whom and summarises it per referrer.
type ReferralUseCase interface {
	// Link parses the /start parameter and records referredID under it.
	// It returns domain.ErrInvalidReferrer for non-numeric parameters and
	// domain.ErrSelfReferral when a user points at themselves.
	Link(ctx context.Context, referrerParam string, referredID int64) (added bool, err error)
	Summary(ctx context.Context, userID int64) (model.ReferralSummary, error)
	LinkFor(userID int64) string
}

type referralUC struct {
	referrals   repository.ReferralRepository
	botUsername string
	tiers       []model.ReferralTier
	log         *zerolog.Logger
}

func NewReferralUseCase(referrals repository.ReferralRepository, botUsername string, tiers []model.ReferralTier, logger *zerolog.Logger) *referralUC {
	if len(tiers) == 0 {
		tiers = model.DefaultReferralTiers()
	}
	l := logger.With().Str("component", "ReferralUC").Logger()
	return &referralUC{
		referrals:   referrals,
		botUsername: strings.TrimPrefix(botUsername, "@"),
		tiers:       tiers,
		log:         &l,
	}
}

func (u *referralUC) Link(ctx context.Context, referrerParam string, referredID int64) (bool, error) {
	defer logging.TraceDuration(u.log, "ReferralUC.Link")()

	referrerID, err := strconv.ParseInt(strings.TrimSpace(referrerParam), 10, 64)
	if err != nil || referrerID <= 0 {
		metrics.IncReferral("invalid")
		return false, domain.ErrInvalidReferrer
	}
	if referrerID == referredID {
		metrics.IncReferral("self")
		return false, domain.ErrSelfReferral
	}
	added, err := u.referrals.Add(ctx, referrerID, referredID)
	if err != nil {
		return false, fmt.Errorf("record referral %d->%d: %w", referrerID, referredID, err)
	}
	if !added {
		metrics.IncReferral("existing")
		return false, nil
	}
	metrics.IncReferral("added")
	u.log.Info().Int64("referrer", referrerID).Int64("referred", referredID).Msg("referral recorded")
	return true, nil
}

func (u *referralUC) Summary(ctx context.Context, userID int64) (model.ReferralSummary, error) {
	defer logging.TraceDuration(u.log, "ReferralUC.Summary")()

	n, err := u.referrals.Count(ctx, userID)
	if err != nil {
		return model.ReferralSummary{}, fmt.Errorf("count referrals for %d: %w", userID, err)
	}
	cur, next := model.TierFor(n, u.tiers)
	return model.ReferralSummary{
		Link:    u.LinkFor(userID),
		Count:   n,
		Current: cur,
		Next:    next,
	}, nil
}

func (u *referralUC) LinkFor(userID int64) string {
	return fmt.Sprintf("https://t.me/%s?start=%d", u.botUsername, userID)
}
