// Package chart renders spending by category.
package chart

import (
	"sync"

	"finance-dashboard/internal/models"
)

// Renderer is what the sync loop drives after each applied refresh.
type Renderer interface {
	Render(aggregates []models.CategoryAggregate)
	Close()
}

// Instance is one drawn chart. Destroy releases whatever it holds.
type Instance interface {
	View() string
	Destroy()
}

// Factory creates a chart instance. It plays the role of the chart library;
// a nil Factory means no library is available.
type Factory func(aggregates []models.CategoryAggregate) (Instance, error)

// Doughnut owns at most one live Instance at a time.
type Doughnut struct {
	mu       sync.Mutex
	factory  Factory
	current  Instance
	live     int
	onFailed func(error)
}

type Option func(*Doughnut)

// WithErrorHandler is called when the factory fails to create an instance.
func WithErrorHandler(fn func(error)) Option {
	return func(d *Doughnut) {
		d.onFailed = fn
	}
}

func NewDoughnut(factory Factory, opts ...Option) *Doughnut {
	d := &Doughnut{factory: factory}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Render destroys the previous instance and draws a new one. Empty input
// leaves no chart.
func (d *Doughnut) Render(aggregates []models.CategoryAggregate) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.factory == nil {
		return
	}
	d.destroyLocked()
	if len(aggregates) == 0 {
		return
	}

	inst, err := d.factory(aggregates)
	if err != nil {
		if d.onFailed != nil {
			d.onFailed(err)
		}
		return
	}
	d.current = inst
	d.live++
}

// Close destroys the current instance, if any.
func (d *Doughnut) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroyLocked()
}

// View returns the current chart or "" when there is none.
func (d *Doughnut) View() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current == nil {
		return ""
	}
	return d.current.View()
}

// Live is the number of instances created and not yet destroyed.
func (d *Doughnut) Live() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.live
}

func (d *Doughnut) destroyLocked() {
	if d.current == nil {
		return
	}
	func() {
		// a panicking Destroy must not keep the old instance registered
		defer func() { _ = recover() }()
		d.current.Destroy()
	}()
	d.current = nil
	d.live--
}
