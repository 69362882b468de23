package sched

import (
	"context"
	"time"

	"receipt-desk-bot/internal/application"
	"receipt-desk-bot/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// StatsSource is satisfied by *application.BotFacade.
type StatsSource interface {
	Stats(ctx context.Context) (application.Stats, error)
}

// StoreGaugeWorker periodically publishes store sizes. Nothing is ever
// evicted from the stores, so these gauges are how growth is watched.
type StoreGaugeWorker struct {
	interval time.Duration
	source   StatsSource
	log      *zerolog.Logger
}

func NewStoreGaugeWorker(interval time.Duration, source StatsSource, logger *zerolog.Logger) *StoreGaugeWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	gaugeLog := logger.With().Str("component", "StoreGaugeWorker").Logger()
	return &StoreGaugeWorker{
		interval: interval,
		source:   source,
		log:      &gaugeLog,
	}
}

func (w *StoreGaugeWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting store gauge worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.publish(ctx)
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping store gauge worker")
			return ctx.Err()
		case <-ticker.C:
			w.publish(ctx)
		}
	}
}

func (w *StoreGaugeWorker) publish(ctx context.Context) {
	st, err := w.source.Stats(ctx)
	if err != nil {
		metrics.IncStoreError("stats", "count")
		w.log.Error().Err(err).Msg("store stats failed")
		return
	}
	metrics.SetStoreSize("sessions", st.Sessions)
	metrics.SetStoreSize("receipts", st.Receipts)
	metrics.SetStoreSize("referrers", st.Referrers)
	w.log.Debug().
		Int("sessions", st.Sessions).
		Int("receipts", st.Receipts).
		Int("referrers", st.Referrers).
		Msg("store sizes published")
}
