package ocr

import (
	"context"
	"time"

	"receipt-desk-bot/internal/domain/model"
	"receipt-desk-bot/internal/domain/ports/adapter"
	"receipt-desk-bot/internal/infra/metrics"
)

// Compile-time check
var _ adapter.TextExtractor = (*limitedExtractor)(nil)

type limitedExtractor struct {
	inner   adapter.TextExtractor
	sem     chan struct{}
	timeout time.Duration
}

// NewLimited bounds the number of concurrent extractions and the time each
// may take, and records latency per provider. Waiting for a slot counts
// against the same deadline.
func NewLimited(inner adapter.TextExtractor, maxConcurrent int, timeout time.Duration) adapter.TextExtractor {
	l := &limitedExtractor{inner: inner, timeout: timeout}
	if maxConcurrent > 0 {
		l.sem = make(chan struct{}, maxConcurrent)
	}
	return l
}

func (l *limitedExtractor) Name() string { return l.inner.Name() }

func (l *limitedExtractor) Extract(ctx context.Context, png []byte) model.Extraction {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}
	start := time.Now()
	res := l.extract(ctx, png)
	metrics.ObserveExtraction(l.inner.Name(), time.Since(start), res.Failed)
	return res
}

func (l *limitedExtractor) extract(ctx context.Context, png []byte) model.Extraction {
	if l.sem != nil {
		select {
		case l.sem <- struct{}{}:
		case <-ctx.Done():
			return model.ExtractionFailed(l.inner.Name(), "waiting for slot: "+ctx.Err().Error())
		}
	}

	// The slot stays taken until the provider call returns, even past the
	// deadline, so max_concurrent bounds calls actually in flight.
	done := make(chan model.Extraction, 1)
	go func() {
		if l.sem != nil {
			defer func() { <-l.sem }()
		}
		done <- l.inner.Extract(ctx, png)
	}()
	select {
	case res := <-done:
		return res
	case <-ctx.Done():
		return model.ExtractionFailed(l.inner.Name(), ctx.Err().Error())
	}
}
