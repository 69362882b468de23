//go:build !integration

package worker

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func testLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

func TestPoolKeepsPerKeyOrder(t *testing.T) {
	p := NewPool(4, 256, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	defer p.Stop()

	var mu sync.Mutex
	got := map[int64][]int{}
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		for _, key := range []int64{1, 2, 3} {
			wg.Add(1)
			key, i := key, i
			if err := p.Submit(key, func(ctx context.Context) error {
				defer wg.Done()
				mu.Lock()
				got[key] = append(got[key], i)
				mu.Unlock()
				return nil
			}); err != nil {
				t.Fatalf("Submit: %v", err)
			}
		}
	}
	wg.Wait()

	for key, seq := range got {
		for i := range seq {
			if seq[i] != i {
				t.Fatalf("key %d ran out of order: %v", key, seq)
			}
		}
	}
}

func TestPoolDropsWhenFull(t *testing.T) {
	p := NewPool(1, 1, testLogger())
	// not started: the single queue slot fills immediately
	if err := p.Submit(1, func(context.Context) error { return nil }); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if err := p.Submit(1, func(context.Context) error { return nil }); !errors.Is(err, ErrQueueFull) {
		t.Errorf("expected ErrQueueFull, got %v", err)
	}
	if err := p.Submit(1, nil); !errors.Is(err, ErrNilTask) {
		t.Errorf("expected ErrNilTask, got %v", err)
	}
}

func TestPoolSurvivesPanicsAndStops(t *testing.T) {
	p := NewPool(1, 4, testLogger())
	ctx := context.Background()
	p.Start(ctx)

	done := make(chan struct{})
	_ = p.Submit(7, func(context.Context) error { panic("boom") })
	_ = p.Submit(7, func(context.Context) error { close(done); return nil })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not recover from panic")
	}
	p.Stop()
	p.Stop()
	if err := p.Submit(7, func(context.Context) error { return nil }); !errors.Is(err, ErrStopped) {
		t.Errorf("expected ErrStopped after Stop, got %v", err)
	}
}

func TestPoolSlowKeyDoesNotDelayOthers(t *testing.T) {
	p := NewPool(8, 16, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	defer p.Stop()

	release := make(chan struct{})
	defer close(release)
	if err := p.Submit(1, func(context.Context) error { <-release; return nil }); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	for key := int64(2); key <= 40; key++ {
		done := make(chan struct{})
		if err := p.Submit(key, func(context.Context) error { close(done); return nil }); err != nil {
			t.Fatalf("Submit(%d): %v", key, err)
		}
		select {
		case <-done:
		case <-time.After(500 * time.Millisecond):
			t.Fatalf("key %d waited behind key 1", key)
		}
	}
}

func TestPoolBoundsRunningTasks(t *testing.T) {
	p := NewPool(2, 4, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	defer p.Stop()

	var (
		mu            sync.Mutex
		running, peak int
		wg            sync.WaitGroup
	)
	for key := int64(0); key < 10; key++ {
		wg.Add(1)
		if err := p.Submit(key, func(context.Context) error {
			defer wg.Done()
			mu.Lock()
			running++
			if running > peak {
				peak = running
			}
			mu.Unlock()
			time.Sleep(10 * time.Millisecond)
			mu.Lock()
			running--
			mu.Unlock()
			return nil
		}); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}
	wg.Wait()
	if peak > 2 {
		t.Errorf("peak running tasks = %d, want <= 2", peak)
	}
}

func TestPoolRetiresIdleLanes(t *testing.T) {
	p := NewPool(4, 4, testLogger())
	p.idle = 20 * time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	defer p.Stop()

	done := make(chan struct{})
	_ = p.Submit(5, func(context.Context) error { close(done); return nil })
	<-done
	if n := p.Lanes(); n != 1 {
		t.Fatalf("lanes after submit = %d, want 1", n)
	}

	deadline := time.Now().Add(time.Second)
	for p.Lanes() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("idle lane was not retired")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// a retired key gets a fresh lane
	again := make(chan struct{})
	if err := p.Submit(5, func(context.Context) error { close(again); return nil }); err != nil {
		t.Fatalf("Submit after retire: %v", err)
	}
	select {
	case <-again:
	case <-time.After(time.Second):
		t.Fatal("task on a fresh lane did not run")
	}
}
