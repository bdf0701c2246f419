package models

import (
	"github.com/shopspring/decimal"
)

// TransactionType is either income or expense.
type TransactionType string

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// DefaultColor is used when a category or aggregate carries no color.
const DefaultColor = "#667eea"

// Transaction represents a financial transaction
type Transaction struct {
	ID            int             `json:"id"`
	Date          string          `json:"date"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	CategoryID    int             `json:"category_id"`
	Type          TransactionType `json:"type"`
	Notes         string          `json:"notes"`
	CreatedAt     string          `json:"created_at,omitempty"`
	CategoryName  string          `json:"category_name"`
	CategoryColor string          `json:"category_color"`
}

// NewTransaction is the body of a create request.
type NewTransaction struct {
	Date        string          `json:"date" binding:"required"`
	Description string          `json:"description" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
	CategoryID  int             `json:"category_id" binding:"required"`
	Type        TransactionType `json:"type" binding:"required,oneof=income expense"`
	Notes       string          `json:"notes"`
}

// Category represents a transaction category
type Category struct {
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	Type      TransactionType `json:"type"`
	Color     string          `json:"color"`
	CreatedAt string          `json:"created_at,omitempty"`
}

// Summary contains summary statistics for analytics
type Summary struct {
	TotalIncome      decimal.Decimal `json:"total_income"`
	TotalExpenses    decimal.Decimal `json:"total_expenses"`
	TransactionCount int             `json:"transaction_count"`
}

// Net is income minus expenses.
func (s Summary) Net() decimal.Decimal {
	return s.TotalIncome.Sub(s.TotalExpenses)
}

// CategoryAggregate contains analytics data for a specific category
type CategoryAggregate struct {
	Name  string          `json:"name"`
	Color string          `json:"color"`
	Total decimal.Decimal `json:"total"`
}

// Analytics contains all analytics data
type Analytics struct {
	Summary    Summary             `json:"summary"`
	ByCategory []CategoryAggregate `json:"byCategory"`
}
