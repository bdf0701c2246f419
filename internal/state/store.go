// Package state holds the dashboard's client-visible state.
package state

import (
	"slices"
	"sync"
	"time"

	"finance-dashboard/internal/models"
)

// Draft is the in-progress transaction form.
type Draft struct {
	Date        string
	Description string
	Amount      string
	CategoryID  string
	Type        models.TransactionType
	Notes       string
}

// NewDraft returns the default draft dated on today's date.
func NewDraft(now time.Time) Draft {
	return Draft{
		Date: now.Format(time.DateOnly),
		Type: models.Expense,
	}
}

// Snapshot is a copy of the store contents. Slices are owned by the caller.
type Snapshot struct {
	Categories   []models.Category
	Transactions []models.Transaction
	Summary      models.Summary
	ByCategory   []models.CategoryAggregate
	Draft        Draft
	Loading      bool
}

// Store is safe for concurrent use. Every mutation notifies subscribers
// after the lock is released.
type Store struct {
	mu           sync.RWMutex
	categories   []models.Category
	transactions []models.Transaction
	summary      models.Summary
	byCategory   []models.CategoryAggregate
	draft        Draft
	loading      bool
	applied      uint64

	subMu       sync.Mutex
	subscribers map[int]func()
	nextSub     int
}

func New(draft Draft) *Store {
	return &Store{
		categories:   make([]models.Category, 0),
		transactions: make([]models.Transaction, 0),
		byCategory:   make([]models.CategoryAggregate, 0),
		draft:        draft,
		subscribers:  map[int]func(){},
	}
}

// Subscribe registers fn to run after each change. The returned func
// removes the subscription.
func (s *Store) Subscribe(fn func()) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subscribers, id)
	}
}

func (s *Store) notify() {
	s.subMu.Lock()
	fns := make([]func(), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Categories:   slices.Clone(s.categories),
		Transactions: slices.Clone(s.transactions),
		Summary:      s.summary,
		ByCategory:   slices.Clone(s.byCategory),
		Draft:        s.draft,
		Loading:      s.loading,
	}
}

func (s *Store) Categories() []models.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.categories)
}

func (s *Store) Draft() Draft {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.draft
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.mu.Unlock()
	s.notify()
}

// SetCategories replaces the category list wholesale.
func (s *Store) SetCategories(categories []models.Category) {
	s.mu.Lock()
	s.categories = nonNil(categories)
	s.mu.Unlock()
	s.notify()
}

// ApplyRefresh stores the result of refresh cycle seq. Results from a cycle
// older than the last applied one are dropped and ApplyRefresh reports false.
func (s *Store) ApplyRefresh(seq uint64, transactions []models.Transaction, analytics models.Analytics) bool {
	s.mu.Lock()
	if seq <= s.applied {
		s.mu.Unlock()
		return false
	}
	s.applied = seq
	s.transactions = nonNil(transactions)
	s.summary = analytics.Summary
	s.byCategory = nonNil(analytics.ByCategory)
	s.mu.Unlock()
	s.notify()
	return true
}

// AppliedSeq is the sequence number of the last applied refresh.
func (s *Store) AppliedSeq() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.applied
}

// UpdateDraft applies fn to the draft under the lock.
func (s *Store) UpdateDraft(fn func(d *Draft)) Draft {
	s.mu.Lock()
	fn(&s.draft)
	d := s.draft
	s.mu.Unlock()
	s.notify()
	return d
}

// UpdateDraftWithCategories is UpdateDraft with a consistent view of the
// category list.
func (s *Store) UpdateDraftWithCategories(fn func(d *Draft, categories []models.Category)) Draft {
	s.mu.Lock()
	fn(&s.draft, s.categories)
	d := s.draft
	s.mu.Unlock()
	s.notify()
	return d
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return make([]T, 0)
	}
	return in
}
