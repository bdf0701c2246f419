package chart

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"finance-dashboard/internal/models"
)

type fakeInstance struct {
	destroyed *int
}

func (f *fakeInstance) View() string { return "fake" }
func (f *fakeInstance) Destroy()     { *f.destroyed++ }

func countingFactory(created, destroyed *int) Factory {
	return func([]models.CategoryAggregate) (Instance, error) {
		*created++
		return &fakeInstance{destroyed: destroyed}, nil
	}
}

func sampleAggregates() []models.CategoryAggregate {
	return []models.CategoryAggregate{
		{Name: "Rent", Color: "#e67e22", Total: decimal.NewFromInt(1500)},
		{Name: "Groceries", Color: "#e74c3c", Total: decimal.RequireFromString("293.22")},
		{Name: "Entertainment", Color: "", Total: decimal.RequireFromString("223.30")},
	}
}

func TestRenderKeepsExactlyOneInstance(t *testing.T) {
	var created, destroyed int
	d := NewDoughnut(countingFactory(&created, &destroyed))

	for i := 0; i < 5; i++ {
		d.Render(sampleAggregates())
		if got := d.Live(); got != 1 {
			t.Fatalf("after render %d live = %d, want 1", i+1, got)
		}
	}
	if created != 5 || destroyed != 4 {
		t.Fatalf("created=%d destroyed=%d, want 5 and 4", created, destroyed)
	}
}

func TestRenderEmptyDisposesPrevious(t *testing.T) {
	var created, destroyed int
	d := NewDoughnut(countingFactory(&created, &destroyed))

	d.Render(sampleAggregates())
	d.Render(nil)

	if got := d.Live(); got != 0 {
		t.Fatalf("live = %d, want 0", got)
	}
	if destroyed != 1 {
		t.Fatalf("destroyed = %d, want 1", destroyed)
	}
	if got := d.View(); got != "" {
		t.Fatalf("view = %q, want empty", got)
	}
}

func TestRenderWithoutLibraryIsNoop(t *testing.T) {
	d := NewDoughnut(nil)
	d.Render(sampleAggregates())
	if got := d.Live(); got != 0 {
		t.Fatalf("live = %d, want 0", got)
	}
	if got := d.View(); got != "" {
		t.Fatalf("view = %q, want empty", got)
	}
	d.Close()
}

func TestRenderFactoryFailure(t *testing.T) {
	var created, destroyed int
	var reported error
	calls := 0
	factory := func(a []models.CategoryAggregate) (Instance, error) {
		calls++
		if calls == 2 {
			return nil, errors.New("boom")
		}
		return countingFactory(&created, &destroyed)(a)
	}
	d := NewDoughnut(factory, WithErrorHandler(func(err error) { reported = err }))

	d.Render(sampleAggregates())
	d.Render(sampleAggregates())

	if reported == nil {
		t.Fatal("expected factory error to be reported")
	}
	if got := d.Live(); got != 0 {
		t.Fatalf("live = %d, want 0", got)
	}
	if destroyed != 1 {
		t.Fatalf("destroyed = %d, want 1", destroyed)
	}
}

func TestCloseReleasesInstance(t *testing.T) {
	var created, destroyed int
	d := NewDoughnut(countingFactory(&created, &destroyed))
	d.Render(sampleAggregates())
	d.Close()
	d.Close()
	if destroyed != 1 || d.Live() != 0 {
		t.Fatalf("destroyed=%d live=%d, want 1 and 0", destroyed, d.Live())
	}
}

func TestSegmentWidthsFillRing(t *testing.T) {
	aggregates := sampleAggregates()
	total := decimal.Zero
	for _, a := range aggregates {
		total = total.Add(a.Total)
	}

	for _, width := range []int{10, 33, 40, 97} {
		widths := segmentWidths(aggregates, total, width)
		sum := 0
		for _, w := range widths {
			sum += w
		}
		if sum != width {
			t.Fatalf("width %d: segments sum to %d", width, sum)
		}
		if widths[0] < widths[1] || widths[1] < widths[2] {
			t.Fatalf("width %d: segments not proportional: %v", width, widths)
		}
	}
}

func TestTerminalLegend(t *testing.T) {
	d := NewDoughnut(Terminal(40))
	d.Render(sampleAggregates())

	view := d.View()
	for _, want := range []string{"Rent", "Groceries", "Entertainment", "$1,500.00", "$293.22", "74.4%"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestTerminalRejectsZeroTotals(t *testing.T) {
	_, err := Terminal(40)([]models.CategoryAggregate{{Name: "Idle", Total: decimal.Zero}})
	if err == nil {
		t.Fatal("expected error for zero totals")
	}
}
