// File: internal/infra/worker/pool.go
package worker

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"

	"receipt-desk-bot/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// A keyed worker pool: every key gets its own lane, a FIFO queue drained by
// one goroutine, so tasks for the same key run in submission order while
// different keys never wait on each other's queue. Lanes are created on the
// first task for a key and retired after sitting idle. A shared semaphore
// bounds how many tasks run at once across all lanes.

type Task func(ctx context.Context) error

var (
	ErrNilTask   = errors.New("nil task")
	ErrQueueFull = errors.New("worker queue full")
	ErrStopped   = errors.New("worker pool stopped")
)

const defaultLaneIdle = 30 * time.Second

type lane struct {
	tasks chan Task
}

type Pool struct {
	mu       sync.Mutex
	lanes    map[int64]*lane
	sem      chan struct{}
	queueLen int
	idle     time.Duration

	ctx       context.Context
	started   chan struct{}
	startOnce sync.Once
	quit      chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
	log       *zerolog.Logger
}

// NewPool allows up to maxRunning tasks at once, each key queueing at most
// queueLen tasks behind its running one.
func NewPool(maxRunning, queueLen int, logger *zerolog.Logger) *Pool {
	if maxRunning <= 0 {
		maxRunning = runtime.NumCPU()
	}
	if queueLen <= 0 {
		queueLen = 16
	}
	l := logger.With().Str("component", "WorkerPool").Logger()
	return &Pool{
		lanes:    make(map[int64]*lane),
		sem:      make(chan struct{}, maxRunning),
		queueLen: queueLen,
		idle:     defaultLaneIdle,
		ctx:      context.Background(),
		started:  make(chan struct{}),
		quit:     make(chan struct{}),
		log:      &l,
	}
}

// Start lets the lanes run tasks under ctx. Tasks submitted earlier wait
// for it.
func (p *Pool) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		p.ctx = ctx
		close(p.started)
	})
}

// Stop signals the lanes and waits for the running tasks to finish.
// Queued tasks that have not started are dropped.
func (p *Pool) Stop() {
	p.mu.Lock()
	p.stopOnce.Do(func() { close(p.quit) })
	p.mu.Unlock()
	p.wg.Wait()
}

// Submit queues task on the lane owning key. It never blocks: a full lane
// drops the task.
func (p *Pool) Submit(key int64, task Task) error {
	if task == nil {
		return ErrNilTask
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	select {
	case <-p.quit:
		return ErrStopped
	default:
	}
	ln, ok := p.lanes[key]
	if !ok {
		ln = &lane{tasks: make(chan Task, p.queueLen)}
		p.lanes[key] = ln
		p.wg.Add(1)
		go p.drain(key, ln)
	}
	select {
	case ln.tasks <- task:
		return nil
	default:
		metrics.IncWorkerJob("dropped")
		return ErrQueueFull
	}
}

// Lanes reports how many keys currently own a lane.
func (p *Pool) Lanes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.lanes)
}

func (p *Pool) drain(key int64, ln *lane) {
	defer p.wg.Done()
	defer p.retire(key, ln)

	select {
	case <-p.started:
	case <-p.quit:
		return
	}
	ctx := p.ctx

	idle := time.NewTimer(p.idle)
	defer idle.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.quit:
			return
		case task := <-ln.tasks:
			select {
			case p.sem <- struct{}{}:
			case <-ctx.Done():
				return
			case <-p.quit:
				return
			}
			p.run(ctx, key, task)
			<-p.sem
			if !idle.Stop() {
				select {
				case <-idle.C:
				default:
				}
			}
			idle.Reset(p.idle)
		case <-idle.C:
			p.mu.Lock()
			if len(ln.tasks) == 0 {
				// Submit holds mu while queueing, so nothing can slip in now.
				delete(p.lanes, key)
				p.mu.Unlock()
				return
			}
			p.mu.Unlock()
			idle.Reset(p.idle)
		}
	}
}

func (p *Pool) retire(key int64, ln *lane) {
	p.mu.Lock()
	if p.lanes[key] == ln {
		delete(p.lanes, key)
	}
	p.mu.Unlock()
}

func (p *Pool) run(ctx context.Context, key int64, task Task) {
	defer func() {
		if r := recover(); r != nil {
			metrics.IncWorkerJob("panicked")
			p.log.Error().Int64("key", key).Interface("panic", r).Msg("task panicked")
		}
	}()
	if err := task(ctx); err != nil {
		p.log.Warn().Err(err).Int64("key", key).Msg("task error")
	}
	metrics.IncWorkerJob("processed")
}
