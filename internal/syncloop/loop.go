// Package syncloop keeps the state store in step with the ledger API.
//
// Start performs the initial load of categories, transactions and analytics
// and then hands control to a Trigger that fires refresh cycles. A refresh
// cycle fetches transactions and analytics concurrently, tags the result with
// a sequence number and applies it only when it is newer than what the store
// already holds. Categories are loaded once.
package syncloop

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"finance-dashboard/internal/chart"
	"finance-dashboard/internal/models"
	"finance-dashboard/internal/state"
)

// Source is the read side of the API client.
type Source interface {
	ListCategories(ctx context.Context) []models.Category
	ListTransactions(ctx context.Context) []models.Transaction
	GetAnalytics(ctx context.Context) models.Analytics
}

type Phase int32

const (
	Initializing Phase = iota
	Ready
	Stopped
)

func (p Phase) String() string {
	switch p {
	case Initializing:
		return "initializing"
	case Ready:
		return "ready"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

var (
	ErrAlreadyStarted = errors.New("sync loop already started")
	ErrStopped        = errors.New("sync loop stopped")
)

type Loop struct {
	source  Source
	store   *state.Store
	trigger Trigger
	chart   chart.Renderer
	logger  *log.Logger

	phase   atomic.Int32
	seq     atomic.Uint64
	started atomic.Bool

	// applyMu orders store updates with chart renders across cycles.
	applyMu sync.Mutex

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
}

type Option func(*Loop)

func WithTrigger(t Trigger) Option {
	return func(l *Loop) {
		l.trigger = t
	}
}

func WithChart(r chart.Renderer) Option {
	return func(l *Loop) {
		l.chart = r
	}
}

func WithLogger(lg *log.Logger) Option {
	return func(l *Loop) {
		l.logger = lg
	}
}

func New(source Source, store *state.Store, opts ...Option) *Loop {
	l := &Loop{
		source:  source,
		store:   store,
		trigger: NewTicker(DefaultPeriod),
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Loop) Phase() Phase {
	return Phase(l.phase.Load())
}

// Start loads everything once, marks the loop Ready and starts the trigger.
// The trigger runs until ctx is cancelled or Close is called.
func (l *Loop) Start(ctx context.Context) error {
	if !l.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrStopped
	}
	runCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.mu.Unlock()

	l.store.SetLoading(true)

	seq := l.seq.Add(1)
	var (
		categories   []models.Category
		transactions []models.Transaction
		analytics    models.Analytics
	)
	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		categories = l.source.ListCategories(gctx)
		return nil
	})
	g.Go(func() error {
		transactions = l.source.ListTransactions(gctx)
		return nil
	})
	g.Go(func() error {
		analytics = l.source.GetAnalytics(gctx)
		return nil
	})
	_ = g.Wait()

	l.applyMu.Lock()
	if l.Phase() == Stopped {
		l.applyMu.Unlock()
		return ErrStopped
	}
	l.store.SetCategories(categories)
	l.applyLocked(seq, transactions, analytics)
	l.store.SetLoading(false)
	l.phase.CompareAndSwap(int32(Initializing), int32(Ready))
	l.applyMu.Unlock()

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrStopped
	}
	l.logger.Printf("sync loop ready: %d categories, %d transactions", len(categories), len(transactions))

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		l.trigger.Run(runCtx, func() {
			l.Refresh(runCtx)
		})
	}()
	return nil
}

// Refresh runs one refresh cycle and returns once its result has been
// applied or discarded as stale.
func (l *Loop) Refresh(ctx context.Context) {
	if l.Phase() == Stopped {
		return
	}
	seq := l.seq.Add(1)

	var (
		transactions []models.Transaction
		analytics    models.Analytics
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		transactions = l.source.ListTransactions(gctx)
		return nil
	})
	g.Go(func() error {
		analytics = l.source.GetAnalytics(gctx)
		return nil
	})
	_ = g.Wait()

	if ctx.Err() != nil {
		return
	}
	l.applyMu.Lock()
	defer l.applyMu.Unlock()
	if l.Phase() == Stopped {
		return
	}
	l.applyLocked(seq, transactions, analytics)
}

// applyLocked must be called with applyMu held.
func (l *Loop) applyLocked(seq uint64, transactions []models.Transaction, analytics models.Analytics) {
	if !l.store.ApplyRefresh(seq, transactions, analytics) {
		l.logger.Printf("sync loop: dropped stale refresh %d (applied %d)", seq, l.store.AppliedSeq())
		return
	}
	if l.chart != nil {
		l.chart.Render(analytics.ByCategory)
	}
}

// Close stops the trigger, waits for in-flight cycles started by it and
// disposes of the chart. It is safe to call more than once.
func (l *Loop) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	l.phase.Store(int32(Stopped))
	cancel := l.cancel
	l.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	l.wg.Wait()

	l.applyMu.Lock()
	defer l.applyMu.Unlock()
	if l.chart != nil {
		l.chart.Close()
	}
}
