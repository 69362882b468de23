package ocr

import (
	"context"

	"github.com/rs/zerolog"

	"receipt-desk-bot/internal/domain/model"
	"receipt-desk-bot/internal/domain/ports/adapter"
)

var _ adapter.TextExtractor = (*NoopExtractor)(nil)

// NoopExtractor always fails, so every receipt goes through fail-open.
// Used for local/dev runs without an OCR engine.
type NoopExtractor struct {
	log *zerolog.Logger
}

func NewNoopExtractor(logger *zerolog.Logger) *NoopExtractor {
	l := logger.With().Str("component", "NoopOCR").Logger()
	return &NoopExtractor{log: &l}
}

func (n *NoopExtractor) Name() string { return "none" }

func (n *NoopExtractor) Extract(_ context.Context, png []byte) model.Extraction {
	n.log.Debug().Int("bytes", len(png)).Msg("extraction skipped")
	return model.ExtractionFailed(n.Name(), "no extractor configured")
}
