package fiber

import (
	"context"
	stderrors "errors"
	"log/slog"
	"slices"
	"sync"
	"time"
)

// ErrLoopStopped is returned by Dispatch and Do after Run has returned.
var ErrLoopStopped = stderrors.New("fiber: loop stopped")

// DefaultSliceBudget is the time a Loop gives each slice.
const DefaultSliceBudget = 5 * time.Millisecond

// Loop drives a Reconciler from a single goroutine. Event handlers and other
// goroutines hand work to it with Dispatch; between slices the loop drains
// dispatched tasks, so input is handled while a long generation is in
// flight.
type Loop struct {
	r           *Reconciler
	tasks       chan func()
	done        chan struct{}
	sliceBudget time.Duration
	logger      *slog.Logger

	mu       sync.Mutex
	onCommit []func(CommitStats)
	onError  []func(error)
	running  bool
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithSliceBudget sets the time each slice may run.
func WithSliceBudget(d time.Duration) LoopOption {
	return func(l *Loop) {
		if d > 0 {
			l.sliceBudget = d
		}
	}
}

// WithQueueSize sets the capacity of the task queue.
func WithQueueSize(n int) LoopOption {
	return func(l *Loop) {
		if n > 0 {
			l.tasks = make(chan func(), n)
		}
	}
}

// NewLoop creates a loop for r. The loop does nothing until Run is called.
func NewLoop(r *Reconciler, opts ...LoopOption) *Loop {
	l := &Loop{
		r:           r,
		tasks:       make(chan func(), 256),
		done:        make(chan struct{}),
		sliceBudget: DefaultSliceBudget,
		logger:      r.logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Reconciler returns the reconciler the loop drives. Use it only from
// dispatched tasks or commit callbacks.
func (l *Loop) Reconciler() *Reconciler {
	return l.r
}

// OnCommit registers fn to run on the loop goroutine after every commit.
func (l *Loop) OnCommit(fn func(CommitStats)) {
	l.mu.Lock()
	l.onCommit = append(l.onCommit, fn)
	l.mu.Unlock()
}

// OnError registers fn to run on the loop goroutine when a slice fails.
func (l *Loop) OnError(fn func(error)) {
	l.mu.Lock()
	l.onError = append(l.onError, fn)
	l.mu.Unlock()
}

// Dispatch queues fn to run on the loop goroutine. It blocks while the
// queue is full.
func (l *Loop) Dispatch(fn func()) error {
	select {
	case <-l.done:
		return ErrLoopStopped
	default:
	}
	select {
	case l.tasks <- fn:
		return nil
	case <-l.done:
		return ErrLoopStopped
	}
}

// Do runs fn on the loop goroutine and waits for its result.
func (l *Loop) Do(ctx context.Context, fn func(r *Reconciler) error) error {
	result := make(chan error, 1)
	if err := l.Dispatch(func() { result <- fn(l.r) }); err != nil {
		return err
	}
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrLoopStopped
	}
}

// Run drives the reconciler until ctx is canceled. It may be called once.
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return stderrors.New("fiber: loop already running")
	}
	l.running = true
	l.mu.Unlock()
	defer close(l.done)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if l.r.Pending() {
			l.slice(ctx)
			l.drain()
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.tasks:
			l.run(fn)
		}
	}
}

func (l *Loop) slice(ctx context.Context) {
	res, err := l.r.RunSlice(ctx, Budget(l.sliceBudget))
	if res.Committed {
		stats := l.r.LastCommit()
		l.mu.Lock()
		hooks := slices.Clone(l.onCommit)
		l.mu.Unlock()
		for _, fn := range hooks {
			fn(stats)
		}
	}
	if err != nil {
		l.logger.Error("slice failed", "error", err)
		l.mu.Lock()
		hooks := slices.Clone(l.onError)
		l.mu.Unlock()
		for _, fn := range hooks {
			fn(err)
		}
	}
}

// drain runs the tasks already queued without waiting for more.
func (l *Loop) drain() {
	for n := len(l.tasks); n > 0; n-- {
		select {
		case fn := <-l.tasks:
			l.run(fn)
		default:
			return
		}
	}
}

func (l *Loop) run(fn func()) {
	defer func() {
		if p := recover(); p != nil {
			l.logger.Error("task panic", "panic", p)
		}
	}()
	fn()
}
