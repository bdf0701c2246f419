// Package ledger is the REST API the dashboard reads from and writes to.
package ledger

import (
	"context"
	"errors"
	"time"

	"finance-dashboard/internal/models"
)

// TransactionLimit caps the transaction list the API returns.
const TransactionLimit = 100

// AnalyticsWindow is how far back the analytics endpoint aggregates.
const AnalyticsWindow = 30 * 24 * time.Hour

var ErrNotFound = errors.New("not found")

// Repository is the storage behind the API.
type Repository interface {
	Ping(ctx context.Context) error
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListTransactions(ctx context.Context, limit int) ([]models.Transaction, error)
	CreateTransaction(ctx context.Context, t models.NewTransaction) (models.Transaction, error)
	DeleteTransaction(ctx context.Context, id int) error
	Analytics(ctx context.Context, since time.Time) (models.Analytics, error)
}

type defaultCategory struct {
	Name  string
	Type  models.TransactionType
	Color string
}

// DefaultCategories are seeded into every fresh ledger.
var DefaultCategories = []defaultCategory{
	{"Groceries", models.Expense, "#e74c3c"},
	{"Rent", models.Expense, "#e67e22"},
	{"Utilities", models.Expense, "#f39c12"},
	{"Transportation", models.Expense, "#3498db"},
	{"Entertainment", models.Expense, "#9b59b6"},
	{"Salary", models.Income, "#27ae60"},
	{"Freelance", models.Income, "#16a085"},
}
