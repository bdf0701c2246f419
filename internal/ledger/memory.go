package ledger

import (
	"cmp"
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"finance-dashboard/internal/models"
)

// Memory is an in-process Repository seeded with DefaultCategories.
type Memory struct {
	mu           sync.RWMutex
	categories   []models.Category
	transactions []models.Transaction
	nextID       int
	now          func() time.Time
}

func NewMemory() *Memory {
	m := &Memory{nextID: 1, now: time.Now}
	created := m.now().UTC().Format(time.RFC3339)
	for i, c := range DefaultCategories {
		m.categories = append(m.categories, models.Category{
			ID: i + 1, Name: c.Name, Type: c.Type, Color: c.Color, CreatedAt: created,
		})
	}
	return m
}

func (m *Memory) Ping(ctx context.Context) error { return nil }

func (m *Memory) ListCategories(ctx context.Context) ([]models.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := slices.Clone(m.categories)
	slices.SortFunc(out, func(a, b models.Category) int { return cmp.Compare(a.Name, b.Name) })
	return out, nil
}

func (m *Memory) ListTransactions(ctx context.Context, limit int) ([]models.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Transaction, 0, len(m.transactions))
	for _, t := range m.transactions {
		if c, ok := m.categoryLocked(t.CategoryID); ok {
			t.CategoryName = c.Name
			t.CategoryColor = c.Color
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) CreateTransaction(ctx context.Context, in models.NewTransaction) (models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := models.Transaction{
		ID:          m.nextID,
		Date:        in.Date,
		Description: in.Description,
		Amount:      in.Amount,
		CategoryID:  in.CategoryID,
		Type:        in.Type,
		Notes:       in.Notes,
		CreatedAt:   m.now().UTC().Format(time.RFC3339),
	}
	m.nextID++
	m.transactions = append(m.transactions, t)
	return t, nil
}

func (m *Memory) DeleteTransaction(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.IndexFunc(m.transactions, func(t models.Transaction) bool { return t.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	m.transactions = slices.Delete(m.transactions, i, i+1)
	return nil
}

// Analytics mirrors the SQL aggregation: totals over transactions dated on or
// after since, and expense totals per category, largest first.
func (m *Memory) Analytics(ctx context.Context, since time.Time) (models.Analytics, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cutoff := since.Format(time.DateOnly)
	var summary models.Summary
	type key struct{ name, color string }
	totals := map[key]decimal.Decimal{}

	for _, t := range m.transactions {
		if t.Date < cutoff {
			continue
		}
		summary.TransactionCount++
		switch t.Type {
		case models.Income:
			summary.TotalIncome = summary.TotalIncome.Add(t.Amount)
		case models.Expense:
			summary.TotalExpenses = summary.TotalExpenses.Add(t.Amount)
			if c, ok := m.categoryLocked(t.CategoryID); ok {
				k := key{c.Name, c.Color}
				totals[k] = totals[k].Add(t.Amount)
			}
		}
	}

	byCategory := make([]models.CategoryAggregate, 0, len(totals))
	for k, total := range totals {
		byCategory = append(byCategory, models.CategoryAggregate{Name: k.name, Color: k.color, Total: total})
	}
	slices.SortFunc(byCategory, func(a, b models.CategoryAggregate) int {
		if c := b.Total.Cmp(a.Total); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})

	return models.Analytics{Summary: summary, ByCategory: byCategory}, nil
}

func (m *Memory) categoryLocked(id int) (models.Category, bool) {
	for _, c := range m.categories {
		if c.ID == id {
			return c, true
		}
	}
	return models.Category{}, false
}

// SeedDemo loads the demo month when the ledger is empty.
func (m *Memory) SeedDemo(ctx context.Context) error {
	m.mu.RLock()
	empty := len(m.transactions) == 0
	m.mu.RUnlock()
	if !empty {
		return nil
	}

	today := m.now()
	for _, d := range demoTransactions {
		category, ok := m.findCategory(d.category, models.TransactionType(d.kind))
		if !ok {
			continue
		}
		_, err := m.CreateTransaction(ctx, models.NewTransaction{
			Date:        today.AddDate(0, 0, -d.daysAgo).Format(time.DateOnly),
			Description: d.description,
			Amount:      decimal.RequireFromString(d.amount),
			CategoryID:  category.ID,
			Type:        models.TransactionType(d.kind),
			Notes:       d.notes,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *Memory) findCategory(name string, kind models.TransactionType) (models.Category, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.categories {
		if c.Name == name && c.Type == kind {
			return c, true
		}
	}
	return models.Category{}, false
}
