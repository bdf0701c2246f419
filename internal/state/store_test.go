package state

import (
	"sync/atomic"
	"testing"
	"time"

	"finance-dashboard/internal/models"

	"github.com/shopspring/decimal"
)

func TestNewDraftDefaults(t *testing.T) {
	now := time.Date(2026, 3, 9, 15, 4, 5, 0, time.UTC)
	d := NewDraft(now)
	if d.Date != "2026-03-09" {
		t.Fatalf("date = %q, want 2026-03-09", d.Date)
	}
	if d.Type != models.Expense {
		t.Fatalf("type = %q, want expense", d.Type)
	}
	if d.Description != "" || d.Amount != "" || d.CategoryID != "" || d.Notes != "" {
		t.Fatalf("expected empty fields, got %+v", d)
	}
}

func TestStoreStartsEmpty(t *testing.T) {
	s := New(Draft{})
	snap := s.Snapshot()
	if snap.Categories == nil || snap.Transactions == nil || snap.ByCategory == nil {
		t.Fatalf("expected non-nil empty collections, got %+v", snap)
	}
	if !snap.Summary.TotalIncome.IsZero() || snap.Summary.TransactionCount != 0 {
		t.Fatalf("expected zeroed summary, got %+v", snap.Summary)
	}
}

func TestApplyRefreshDropsStaleResults(t *testing.T) {
	s := New(Draft{})

	newer := []models.Transaction{{ID: 2, Description: "newer"}}
	older := []models.Transaction{{ID: 1, Description: "older"}}

	if !s.ApplyRefresh(2, newer, models.Analytics{Summary: models.Summary{TransactionCount: 2}}) {
		t.Fatal("expected seq 2 to apply")
	}
	if s.ApplyRefresh(1, older, models.Analytics{Summary: models.Summary{TransactionCount: 1}}) {
		t.Fatal("expected seq 1 to be dropped")
	}
	if s.ApplyRefresh(2, older, models.Analytics{}) {
		t.Fatal("expected repeated seq 2 to be dropped")
	}

	snap := s.Snapshot()
	if len(snap.Transactions) != 1 || snap.Transactions[0].ID != 2 {
		t.Fatalf("transactions = %+v, want only id 2", snap.Transactions)
	}
	if snap.Summary.TransactionCount != 2 {
		t.Fatalf("transaction_count = %d, want 2", snap.Summary.TransactionCount)
	}
	if got := s.AppliedSeq(); got != 2 {
		t.Fatalf("applied seq = %d, want 2", got)
	}
}

func TestApplyRefreshNormalizesNil(t *testing.T) {
	s := New(Draft{})
	s.ApplyRefresh(1, nil, models.Analytics{})
	snap := s.Snapshot()
	if snap.Transactions == nil || snap.ByCategory == nil {
		t.Fatalf("expected non-nil slices, got %+v", snap)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := New(Draft{})
	s.SetCategories([]models.Category{{ID: 1, Name: "Food", Type: models.Expense}})

	snap := s.Snapshot()
	snap.Categories[0].Name = "changed"

	if got := s.Categories()[0].Name; got != "Food" {
		t.Fatalf("store category mutated through snapshot: %q", got)
	}
}

func TestSubscribersNotified(t *testing.T) {
	s := New(Draft{})
	var calls atomic.Int32
	unsubscribe := s.Subscribe(func() { calls.Add(1) })

	s.SetLoading(true)
	s.SetCategories(nil)
	s.ApplyRefresh(1, nil, models.Analytics{Summary: models.Summary{TotalIncome: decimal.NewFromInt(5)}})
	s.UpdateDraft(func(d *Draft) { d.Description = "Lunch" })

	if got := calls.Load(); got != 4 {
		t.Fatalf("notifications = %d, want 4", got)
	}

	unsubscribe()
	s.SetLoading(false)
	if got := calls.Load(); got != 4 {
		t.Fatalf("notifications after unsubscribe = %d, want 4", got)
	}
}

func TestStaleRefreshDoesNotNotify(t *testing.T) {
	s := New(Draft{})
	s.ApplyRefresh(5, nil, models.Analytics{})

	var calls atomic.Int32
	s.Subscribe(func() { calls.Add(1) })
	s.ApplyRefresh(4, nil, models.Analytics{})

	if got := calls.Load(); got != 0 {
		t.Fatalf("notifications = %d, want 0", got)
	}
}
