package ocr

import (
	"context"
	"strings"

	"receipt-desk-bot/internal/domain/model"
	"receipt-desk-bot/internal/domain/ports/adapter"
)

var _ adapter.TextExtractor = (*ChainExtractor)(nil)

// ChainExtractor tries extractors in order; the first one that does not
// fail wins. When all fail the reasons are joined.
type ChainExtractor struct {
	links []adapter.TextExtractor
}

func NewChainExtractor(links ...adapter.TextExtractor) *ChainExtractor {
	out := make([]adapter.TextExtractor, 0, len(links))
	for _, l := range links {
		if l != nil {
			out = append(out, l)
		}
	}
	return &ChainExtractor{links: out}
}

func (c *ChainExtractor) Name() string {
	names := make([]string, 0, len(c.links))
	for _, l := range c.links {
		names = append(names, l.Name())
	}
	return "chain(" + strings.Join(names, ",") + ")"
}

func (c *ChainExtractor) Extract(ctx context.Context, png []byte) model.Extraction {
	if len(c.links) == 0 {
		return model.ExtractionFailed(c.Name(), "no extractors configured")
	}
	reasons := make([]string, 0, len(c.links))
	for _, l := range c.links {
		if err := ctx.Err(); err != nil {
			reasons = append(reasons, err.Error())
			break
		}
		res := l.Extract(ctx, png)
		if !res.Failed {
			return res
		}
		reasons = append(reasons, l.Name()+": "+res.Reason)
	}
	return model.ExtractionFailed(c.Name(), strings.Join(reasons, "; "))
}
