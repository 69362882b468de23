package ocr

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"receipt-desk-bot/internal/config"
	"receipt-desk-bot/internal/domain/ports/adapter"
)

// New builds the extractor named by cfg.Provider. For "chain", links that
// cannot be constructed (typically a missing API key) are skipped with a
// warning; an empty chain degrades to the noop extractor.
func New(ctx context.Context, cfg config.OCRConfig, logger *zerolog.Logger) (adapter.TextExtractor, error) {
	if cfg.Provider != "chain" {
		return build(ctx, cfg.Provider, cfg, logger)
	}
	links := make([]adapter.TextExtractor, 0, len(cfg.Chain))
	for _, name := range cfg.Chain {
		ex, err := build(ctx, name, cfg, logger)
		if err != nil {
			logger.Warn().Err(err).Str("provider", name).Msg("ocr provider skipped")
			continue
		}
		links = append(links, ex)
	}
	if len(links) == 0 {
		logger.Warn().Msg("no ocr provider available, receipts will be accepted unverified")
		return NewNoopExtractor(logger), nil
	}
	return NewChainExtractor(links...), nil
}

func build(ctx context.Context, name string, cfg config.OCRConfig, logger *zerolog.Logger) (adapter.TextExtractor, error) {
	switch name {
	case "tesseract":
		return NewTesseractExtractor(cfg.Tesseract.Binary, cfg.Tesseract.Language), nil
	case "openai":
		return NewOpenAIExtractor(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model)
	case "gemini":
		return NewGeminiExtractor(ctx, cfg.Gemini.APIKey, cfg.Gemini.BaseURL, cfg.Gemini.Model)
	case "none", "":
		return NewNoopExtractor(logger), nil
	default:
		return nil, fmt.Errorf("ocr: unknown provider %q", name)
	}
}
