package syncloop

import (
	"context"
	"time"
)

// DefaultPeriod is how often the dashboard polls for transactions and analytics.
const DefaultPeriod = 30 * time.Second

// Trigger decides when refresh cycles run. Run blocks until ctx is done and
// calls fire once per cycle; fire returns when the cycle has been applied.
type Trigger interface {
	Run(ctx context.Context, fire func())
}

// TriggerFunc adapts a function to Trigger.
type TriggerFunc func(ctx context.Context, fire func())

func (f TriggerFunc) Run(ctx context.Context, fire func()) { f(ctx, fire) }

// Ticker fires on a fixed period.
type Ticker struct {
	Period time.Duration
}

func NewTicker(period time.Duration) *Ticker {
	if period <= 0 {
		period = DefaultPeriod
	}
	return &Ticker{Period: period}
}

func (t *Ticker) Run(ctx context.Context, fire func()) {
	ticker := time.NewTicker(t.Period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fire()
		}
	}
}

// Manual fires whenever a value is sent on its channel. It is useful for
// tests and for wiring push notifications into the loop.
type Manual struct {
	C chan struct{}
}

func NewManual() *Manual {
	return &Manual{C: make(chan struct{})}
}

func (m *Manual) Run(ctx context.Context, fire func()) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.C:
			fire()
		}
	}
}

// Fire blocks until the loop accepts the signal or ctx is done.
func (m *Manual) Fire(ctx context.Context) bool {
	select {
	case m.C <- struct{}{}:
		return true
	case <-ctx.Done():
		return false
	}
}
