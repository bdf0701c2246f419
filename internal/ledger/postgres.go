package ledger

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"finance-dashboard/internal/models"
)

// Postgres is the production Repository.
type Postgres struct {
	pool *pgxpool.Pool
}

// NormalizeDatabaseURL rewrites postgresql:// to postgres:// and disables
// sslmode when the URL does not set it.
func NormalizeDatabaseURL(databaseURL string) string {
	if strings.HasPrefix(databaseURL, "postgresql:") {
		databaseURL = "postgres" + strings.TrimPrefix(databaseURL, "postgresql")
	}
	if !strings.Contains(databaseURL, "sslmode=") {
		separator := "?"
		if strings.Contains(databaseURL, "?") {
			separator = "&"
		}
		databaseURL = databaseURL + separator + "sslmode=disable"
	}
	return databaseURL
}

// RetryPolicy controls how long Connect waits for the database.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
}

var DefaultRetry = RetryPolicy{Attempts: 60, Delay: 2 * time.Second}

// Connect opens a pool and waits until the database answers a ping.
func Connect(ctx context.Context, databaseURL string, retry RetryPolicy) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(NormalizeDatabaseURL(databaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	if retry.Attempts < 1 {
		retry.Attempts = 1
	}

	for i := 0; i < retry.Attempts; i++ {
		pool, err := pgxpool.NewWithConfig(ctx, config)
		if err == nil {
			err = pool.Ping(ctx)
			if err == nil {
				log.Println("Database connection established")
				return &Postgres{pool: pool}, nil
			}
			pool.Close()
		}
		if i == retry.Attempts-1 {
			return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", retry.Attempts, err)
		}
		if i%10 == 0 || i < 5 {
			log.Printf("Database not ready, retrying in %v... (attempt %d/%d) Error: %v", retry.Delay, i+1, retry.Attempts, err)
		} else {
			log.Printf("Database not ready, retrying in %v... (attempt %d/%d)", retry.Delay, i+1, retry.Attempts)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retry.Delay):
		}
	}
	return nil, errors.New("unreachable")
}

func (p *Postgres) Close() {
	p.pool.Close()
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *Postgres) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := p.pool.Query(ctx, `SELECT id, name, type, color, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]models.Category, 0)
	for rows.Next() {
		var (
			cat       models.Category
			color     *string
			createdAt time.Time
		)
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Type, &color, &createdAt); err != nil {
			return nil, err
		}
		cat.Color = deref(color)
		cat.CreatedAt = createdAt.Format(time.RFC3339)
		categories = append(categories, cat)
	}
	return categories, rows.Err()
}

func (p *Postgres) ListTransactions(ctx context.Context, limit int) ([]models.Transaction, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT t.id, t.date, t.description, t.amount::text, t.category_id, t.type, t.notes, t.created_at,
		       c.name as category_name, c.color as category_color
		FROM transactions t
		LEFT JOIN categories c ON t.category_id = c.id
		ORDER BY t.date DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	// ensure empty array ([]) instead of null when no rows
	transactions := make([]models.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows, true)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

func (p *Postgres) CreateTransaction(ctx context.Context, in models.NewTransaction) (models.Transaction, error) {
	date, err := time.Parse(time.DateOnly, in.Date)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("invalid date %q: %w", in.Date, err)
	}
	row := p.pool.QueryRow(ctx, `
		INSERT INTO transactions (date, description, amount, category_id, type, notes)
		VALUES ($1, $2, $3::numeric, $4, $5, $6)
		RETURNING id, date, description, amount::text, category_id, type, notes, created_at
	`, date, in.Description, in.Amount.String(), in.CategoryID, string(in.Type), in.Notes)
	return scanTransaction(row, false)
}

func (p *Postgres) DeleteTransaction(ctx context.Context, id int) error {
	tag, err := p.pool.Exec(ctx, "DELETE FROM transactions WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) Analytics(ctx context.Context, since time.Time) (models.Analytics, error) {
	var (
		summary         models.Summary
		income, expense string
	)
	err := p.pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN type = 'income' THEN amount ELSE 0 END), 0)::text as total_income,
			COALESCE(SUM(CASE WHEN type = 'expense' THEN amount ELSE 0 END), 0)::text as total_expenses,
			COUNT(*) as transaction_count
		FROM transactions
		WHERE date >= $1
	`, since).Scan(&income, &expense, &summary.TransactionCount)
	if err != nil {
		return models.Analytics{}, err
	}
	if summary.TotalIncome, err = parseAmount(income); err != nil {
		return models.Analytics{}, err
	}
	if summary.TotalExpenses, err = parseAmount(expense); err != nil {
		return models.Analytics{}, err
	}

	rows, err := p.pool.Query(ctx, `
		SELECT c.name, COALESCE(c.color, ''), COALESCE(SUM(t.amount), 0)::text as total
		FROM transactions t
		JOIN categories c ON t.category_id = c.id
		WHERE t.date >= $1 AND t.type = 'expense'
		GROUP BY c.name, c.color
		ORDER BY SUM(t.amount) DESC
	`, since)
	if err != nil {
		return models.Analytics{}, err
	}
	defer rows.Close()

	byCategory := make([]models.CategoryAggregate, 0)
	for rows.Next() {
		var (
			cat   models.CategoryAggregate
			total string
		)
		if err := rows.Scan(&cat.Name, &cat.Color, &total); err != nil {
			return models.Analytics{}, err
		}
		if cat.Total, err = parseAmount(total); err != nil {
			return models.Analytics{}, err
		}
		byCategory = append(byCategory, cat)
	}
	if err := rows.Err(); err != nil {
		return models.Analytics{}, err
	}
	return models.Analytics{Summary: summary, ByCategory: byCategory}, nil
}

func scanTransaction(row pgx.Row, joined bool) (models.Transaction, error) {
	var (
		t                   models.Transaction
		date, createdAt     time.Time
		amount              string
		categoryID          *int
		notes               *string
		categoryName, color *string
	)
	dest := []any{&t.ID, &date, &t.Description, &amount, &categoryID, &t.Type, &notes, &createdAt}
	if joined {
		dest = append(dest, &categoryName, &color)
	}
	err := row.Scan(dest...)
	if err != nil {
		return models.Transaction{}, err
	}
	t.Date = date.Format(time.DateOnly)
	t.CreatedAt = createdAt.Format(time.RFC3339)
	if t.Amount, err = parseAmount(amount); err != nil {
		return models.Transaction{}, err
	}
	if categoryID != nil {
		t.CategoryID = *categoryID
	}
	t.Notes = deref(notes)
	t.CategoryName = deref(categoryName)
	t.CategoryColor = deref(color)
	return t, nil
}

// parseAmount reads a NUMERIC column cast to text.
func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
