//go:build !integration

package sched

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"receipt-desk-bot/internal/application"
)

type countingSource struct {
	calls int32
	err   error
}

func (c *countingSource) Stats(context.Context) (application.Stats, error) {
	atomic.AddInt32(&c.calls, 1)
	return application.Stats{Sessions: 1, Receipts: 2, Referrers: 3}, c.err
}

func TestStoreGaugeWorkerTicks(t *testing.T) {
	l := zerolog.Nop()
	src := &countingSource{}
	w := NewStoreGaugeWorker(10*time.Millisecond, src, &l)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := w.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run returned %v", err)
	}
	// one immediate publish plus several ticks
	if n := atomic.LoadInt32(&src.calls); n < 3 {
		t.Errorf("Stats called %d times, want >= 3", n)
	}
}

func TestStoreGaugeWorkerSurvivesErrors(t *testing.T) {
	l := zerolog.Nop()
	src := &countingSource{err: errors.New("redis down")}
	w := NewStoreGaugeWorker(5*time.Millisecond, src, &l)

	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()
	_ = w.Run(ctx)
	if n := atomic.LoadInt32(&src.calls); n < 2 {
		t.Errorf("worker stopped after an error: %d calls", n)
	}
}

func TestNewStoreGaugeWorkerDefaultInterval(t *testing.T) {
	l := zerolog.Nop()
	if w := NewStoreGaugeWorker(0, &countingSource{}, &l); w.interval != time.Minute {
		t.Errorf("interval = %v", w.interval)
	}
}
