package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"finance-dashboard/internal/models"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/api", WithLogger(quietLogger()))
}

func serveBody(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

var malformedReads = []struct {
	name   string
	status int
	body   string
}{
	{"object", http.StatusOK, `{"error":"nope"}`},
	{"null", http.StatusOK, `null`},
	{"string", http.StatusOK, `"hello"`},
	{"truncated", http.StatusOK, `[{"id":1,`},
	{"empty", http.StatusOK, ``},
	{"html", http.StatusOK, `<html></html>`},
	{"server error", http.StatusInternalServerError, `[{"id":1}]`},
	{"wrong element type", http.StatusOK, `[1,2,3]`},
}

func TestListCategoriesMalformed(t *testing.T) {
	for _, tc := range malformedReads {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, serveBody(tc.status, tc.body))
			got := c.ListCategories(context.Background())
			if got == nil || len(got) != 0 {
				t.Fatalf("ListCategories = %#v, want empty slice", got)
			}
		})
	}
}

func TestListTransactionsMalformed(t *testing.T) {
	for _, tc := range malformedReads {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, serveBody(tc.status, tc.body))
			got := c.ListTransactions(context.Background())
			if got == nil || len(got) != 0 {
				t.Fatalf("ListTransactions = %#v, want empty slice", got)
			}
		})
	}
}

func TestReadsSurviveNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url+"/api", WithLogger(quietLogger()))
	ctx := context.Background()

	if got := c.ListCategories(ctx); len(got) != 0 || got == nil {
		t.Fatalf("ListCategories = %#v", got)
	}
	if got := c.ListTransactions(ctx); len(got) != 0 || got == nil {
		t.Fatalf("ListTransactions = %#v", got)
	}
	got := c.GetAnalytics(ctx)
	if !got.Summary.TotalIncome.IsZero() || got.ByCategory == nil || len(got.ByCategory) != 0 {
		t.Fatalf("GetAnalytics = %#v", got)
	}
}

func TestListTransactionsDecodesNullableColumns(t *testing.T) {
	body := `[{"id":7,"date":"2026-10-01","description":"Rideshare","amount":22.3,"category_id":null,
		"type":"expense","notes":null,"created_at":"2026-10-01T10:00:00Z","category_name":null,"category_color":null}]`
	c := newTestClient(t, serveBody(http.StatusOK, body))

	got := c.ListTransactions(context.Background())
	if len(got) != 1 {
		t.Fatalf("got %d transactions, want 1", len(got))
	}
	tx := got[0]
	if tx.ID != 7 || tx.CategoryID != 0 || tx.CategoryName != "" || tx.Notes != "" {
		t.Fatalf("unexpected transaction: %+v", tx)
	}
	if !tx.Amount.Equal(decimal.RequireFromString("22.3")) {
		t.Fatalf("amount = %s, want 22.3", tx.Amount)
	}
}

func TestGetAnalytics(t *testing.T) {
	cases := []struct {
		name          string
		body          string
		income        string
		count         int
		byCategoryLen int
	}{
		{"complete", `{"summary":{"total_income":1000,"total_expenses":400,"transaction_count":3},
			"byCategory":[{"name":"Rent","color":"#e67e22","total":400}]}`, "1000", 3, 1},
		{"string amounts", `{"summary":{"total_income":"12.50","total_expenses":"0","transaction_count":1},"byCategory":[]}`, "12.5", 1, 0},
		{"missing summary", `{"byCategory":[{"name":"Rent","total":10}]}`, "0", 0, 1},
		{"null summary", `{"summary":null,"byCategory":[{"name":"Rent","total":10}]}`, "0", 0, 1},
		{"byCategory not array", `{"summary":{"total_income":5},"byCategory":{"name":"Rent"}}`, "5", 0, 0},
		{"byCategory null", `{"summary":{"total_income":5},"byCategory":null}`, "5", 0, 0},
		{"array body", `[1,2]`, "0", 0, 0},
		{"null body", `null`, "0", 0, 0},
		{"bad summary field", `{"summary":{"total_income":"lots"},"byCategory":[]}`, "0", 0, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, serveBody(http.StatusOK, tc.body))
			got := c.GetAnalytics(context.Background())

			if !got.Summary.TotalIncome.Equal(decimal.RequireFromString(tc.income)) {
				t.Fatalf("total_income = %s, want %s", got.Summary.TotalIncome, tc.income)
			}
			if got.Summary.TransactionCount != tc.count {
				t.Fatalf("transaction_count = %d, want %d", got.Summary.TransactionCount, tc.count)
			}
			if got.ByCategory == nil || len(got.ByCategory) != tc.byCategoryLen {
				t.Fatalf("byCategory = %#v, want %d entries", got.ByCategory, tc.byCategoryLen)
			}
		})
	}
}

func TestCreateTransactionPayload(t *testing.T) {
	var gotMethod, gotPath, gotContentType string
	var payload map[string]json.RawMessage

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath, gotContentType = r.Method, r.URL.Path, r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	})

	err := c.CreateTransaction(context.Background(), models.NewTransaction{
		Date:        "2026-10-14",
		Description: "Groceries",
		Amount:      decimal.RequireFromString("96.72"),
		CategoryID:  3,
		Type:        models.Expense,
		Notes:       "weekly",
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	if gotMethod != http.MethodPost || gotPath != "/api/transactions" {
		t.Fatalf("request = %s %s, want POST /api/transactions", gotMethod, gotPath)
	}
	if gotContentType != "application/json" {
		t.Fatalf("content-type = %q", gotContentType)
	}
	if string(payload["amount"]) != "96.72" {
		t.Fatalf("amount = %s, want bare number 96.72", payload["amount"])
	}
	if string(payload["category_id"]) != "3" {
		t.Fatalf("category_id = %s, want 3", payload["category_id"])
	}
	if string(payload["type"]) != `"expense"` || string(payload["notes"]) != `"weekly"` {
		t.Fatalf("unexpected payload: %v", payload)
	}
}

func TestMutationFailures(t *testing.T) {
	c := newTestClient(t, serveBody(http.StatusInternalServerError, `{"error":"db down"}`))
	ctx := context.Background()

	err := c.CreateTransaction(ctx, models.NewTransaction{Description: "x", Amount: decimal.NewFromInt(1), CategoryID: 1})
	var mErr *MutationError
	if !errors.As(err, &mErr) || mErr.Status != http.StatusInternalServerError {
		t.Fatalf("create err = %v, want MutationError with status 500", err)
	}
	if !errors.Is(err, ErrMutation) {
		t.Fatalf("create err = %v, want ErrMutation", err)
	}

	err = c.DeleteTransaction(ctx, 9)
	if !errors.Is(err, ErrMutation) {
		t.Fatalf("delete err = %v, want ErrMutation", err)
	}
}

func TestDeleteTransactionNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url+"/api", WithLogger(quietLogger()))
	err := c.DeleteTransaction(context.Background(), 1)
	var mErr *MutationError
	if !errors.As(err, &mErr) || mErr.Err == nil {
		t.Fatalf("err = %v, want MutationError wrapping transport error", err)
	}
}

func TestDeleteTransactionPath(t *testing.T) {
	var gotMethod, gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		w.WriteHeader(http.StatusOK)
	})

	if err := c.DeleteTransaction(context.Background(), 42); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	if gotMethod != http.MethodDelete || gotPath != "/api/transactions/42" {
		t.Fatalf("request = %s %s", gotMethod, gotPath)
	}
}

func TestNewClientTrimsBaseURL(t *testing.T) {
	c := NewClient("http://example.test/api/")
	if c.baseURL != "http://example.test/api" {
		t.Fatalf("baseURL = %q", c.baseURL)
	}
	if NewClient("").baseURL != DefaultBaseURL {
		t.Fatal("expected default base URL")
	}
}
