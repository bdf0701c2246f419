package ledger

import (
	"context"
	"fmt"
	"log"
	"strings"
)

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS categories (
		id SERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		type VARCHAR(20) NOT NULL,
		color VARCHAR(7) DEFAULT '#667eea',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS transactions (
		id SERIAL PRIMARY KEY,
		date DATE NOT NULL,
		description VARCHAR(255) NOT NULL,
		amount DECIMAL(10,2) NOT NULL CHECK (amount >= 0),
		category_id INTEGER REFERENCES categories(id),
		type VARCHAR(20) NOT NULL,
		notes TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date DESC);

	-- Remove duplicates before enforcing uniqueness
	DO $$
	BEGIN
		WITH d AS (
			SELECT id, ROW_NUMBER() OVER (PARTITION BY name, type ORDER BY id) rn
			FROM categories
		)
		DELETE FROM categories WHERE id IN (SELECT id FROM d WHERE rn > 1)
		AND id NOT IN (SELECT category_id FROM transactions WHERE category_id IS NOT NULL);
	END $$;

	CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_name_type ON categories(name, type);
`

// Migrate creates the schema and seeds the default categories. It is safe
// to run repeatedly.
func (p *Postgres) Migrate(ctx context.Context) error {
	log.Println("Creating database schema...")
	if _, err := p.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	log.Println("Schema created successfully")

	tag, err := p.pool.Exec(ctx, seedCategoriesSQL())
	if err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}
	log.Printf("Categories seeded successfully (%d rows affected)", tag.RowsAffected())
	return nil
}

func seedCategoriesSQL() string {
	values := make([]string, 0, len(DefaultCategories))
	for _, c := range DefaultCategories {
		values = append(values, fmt.Sprintf("('%s', '%s', '%s')", c.Name, c.Type, c.Color))
	}
	return "INSERT INTO categories (name, type, color) VALUES\n\t\t" +
		strings.Join(values, ",\n\t\t") +
		"\n\tON CONFLICT (name, type) DO NOTHING;"
}

type demoTransaction struct {
	daysAgo     int
	description string
	amount      string
	category    string
	kind        string
	notes       string
}

var demoTransactions = []demoTransaction{
	{28, "Monthly Salary", "3200.00", "Salary", "income", "Monthly payroll"},
	{25, "Freelance: Landing Page", "850.00", "Freelance", "income", "Side project"},
	{24, "Rent - Apartment", "1500.00", "Rent", "expense", ""},
	{22, "Utilities - Electricity", "120.45", "Utilities", "expense", ""},
	{20, "Groceries - Whole Foods", "96.72", "Groceries", "expense", ""},
	{19, "Subway Pass", "45.00", "Transportation", "expense", ""},
	{16, "Movie Night", "28.50", "Entertainment", "expense", ""},
	{14, "Groceries - Trader Joes", "64.11", "Groceries", "expense", ""},
	{13, "Freelance: Dashboard Charts", "600.00", "Freelance", "income", ""},
	{11, "Utilities - Internet", "60.00", "Utilities", "expense", ""},
	{8, "Concert Tickets", "140.00", "Entertainment", "expense", ""},
	{6, "Groceries - Costco", "132.39", "Groceries", "expense", ""},
	{4, "Rideshare", "22.30", "Transportation", "expense", ""},
	{1, "Dinner Out", "54.80", "Entertainment", "expense", ""},
}

// SeedDemo inserts a month of sample transactions. It only runs when the
// ledger has no transactions.
func (p *Postgres) SeedDemo(ctx context.Context) error {
	var cnt int
	if err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&cnt); err != nil {
		return fmt.Errorf("checking transactions count: %w", err)
	}
	if cnt > 0 {
		return nil
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	const insert = `
	INSERT INTO transactions (date, description, amount, category_id, type, notes) VALUES
	(CURRENT_DATE - $1::int, $2, $3::text::numeric,
	 (SELECT id FROM categories WHERE name = $4 AND type = $5 LIMIT 1), $5, $6)
	`
	for _, d := range demoTransactions {
		if _, err := tx.Exec(ctx, insert, d.daysAgo, d.description, d.amount, d.category, d.kind, d.notes); err != nil {
			return fmt.Errorf("seeding demo transactions: %w", err)
		}
	}
	return tx.Commit(ctx)
}
