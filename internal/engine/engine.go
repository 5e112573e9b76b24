package engine

import (
	"context"
	"log/slog"
	"sync"

	"github.com/roach88/socialgraph/internal/ir"
	"github.com/roach88/socialgraph/internal/store"
)

// Engine runs operations against a State one at a time.
//
// Thread-safety model:
//   - every exported operation is safe from any goroutine
//   - operations are serialised by mu, so the observable behaviour is that
//     of sequential execution
type Engine struct {
	mu     sync.Mutex
	state  *State
	clock  Clock
	sink   EventSink
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the timestamp source. Default: WallClock.
func WithClock(c Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithSink sets the event sink. Default: Discard.
func WithSink(s EventSink) Option {
	return func(e *Engine) {
		e.sink = s
	}
}

// WithLogger sets the logger. Each mutation is logged at Debug.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an Engine over backend.
func New(backend store.Backend, opts ...Option) *Engine {
	e := &Engine{
		state:  NewState(backend),
		clock:  WallClock{},
		sink:   Discard,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Init is the host's start-of-process entry point. On an empty backend it
// yields the initial state: no users, no posts, both counters zero.
func Init(backend store.Backend, opts ...Option) *Engine {
	return New(backend, opts...)
}

// Snapshot renders the current state under the engine lock.
func (e *Engine) Snapshot(ctx context.Context) (ir.IRObject, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Snapshot(ctx)
}

// Digest hashes the current state under the engine lock.
func (e *Engine) Digest(ctx context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Digest(ctx)
}

func (e *Engine) emit(ev ir.Event) {
	e.sink.Emit(ev)
}
