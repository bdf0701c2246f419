package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"finance-dashboard/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memoryCache struct {
	mu      sync.Mutex
	values  map[string][]byte
	deletes int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string][]byte{}}
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return v, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.values, k)
	}
	c.deletes++
	return nil
}

func (c *memoryCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.values[key]
	return ok
}

func newTestRouter(t *testing.T, repo Repository, cache Cache) http.Handler {
	t.Helper()
	return NewRouter(NewHandler(repo, cache), nil)
}

func doJSON[T any](t *testing.T, h http.Handler, method, path string, body any, wantStatus int) T {
	t.Helper()
	rec := doRaw(t, h, method, path, body, wantStatus)
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %s %s response: %v (%s)", method, path, err, rec.Body.String())
	}
	return out
}

func doRaw(t *testing.T, h http.Handler, method, path string, body any, wantStatus int) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != wantStatus {
		t.Fatalf("%s %s status = %d, want %d (%s)", method, path, rec.Code, wantStatus, rec.Body.String())
	}
	return rec
}

func TestTransactionAPIFlow(t *testing.T) {
	repo := NewMemory()
	router := newTestRouter(t, repo, nil)

	categories := doJSON[[]models.Category](t, router, http.MethodGet, "/api/categories", nil, http.StatusOK)
	if len(categories) != len(DefaultCategories) {
		t.Fatalf("got %d categories, want %d", len(categories), len(DefaultCategories))
	}
	var groceries models.Category
	for _, c := range categories {
		if c.Name == "Groceries" {
			groceries = c
		}
	}

	today := time.Now().Format(time.DateOnly)
	created := doJSON[models.Transaction](t, router, http.MethodPost, "/api/transactions", map[string]any{
		"date":        today,
		"description": "Groceries - Costco",
		"amount":      132.39,
		"category_id": groceries.ID,
		"type":        "expense",
		"notes":       "",
	}, http.StatusCreated)
	if created.ID == 0 {
		t.Fatal("expected created transaction to have an id")
	}

	list := doJSON[[]models.Transaction](t, router, http.MethodGet, "/api/transactions", nil, http.StatusOK)
	if len(list) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(list))
	}
	if list[0].CategoryName != "Groceries" || list[0].CategoryColor != "#e74c3c" {
		t.Fatalf("expected denormalized category, got %+v", list[0])
	}

	analytics := doJSON[models.Analytics](t, router, http.MethodGet, "/api/analytics", nil, http.StatusOK)
	if !analytics.Summary.TotalExpenses.Equal(decimal.RequireFromString("132.39")) {
		t.Fatalf("total_expenses = %s, want 132.39", analytics.Summary.TotalExpenses)
	}
	if len(analytics.ByCategory) != 1 || analytics.ByCategory[0].Name != "Groceries" {
		t.Fatalf("byCategory = %+v", analytics.ByCategory)
	}

	doRaw(t, router, http.MethodDelete, "/api/transactions/"+strconv.Itoa(created.ID), nil, http.StatusOK)
	doRaw(t, router, http.MethodDelete, "/api/transactions/"+strconv.Itoa(created.ID), nil, http.StatusNotFound)

	list = doJSON[[]models.Transaction](t, router, http.MethodGet, "/api/transactions", nil, http.StatusOK)
	if len(list) != 0 {
		t.Fatalf("expected no transactions after delete, got %d", len(list))
	}
}

func TestEmptyListsEncodeAsArrays(t *testing.T) {
	router := newTestRouter(t, NewMemory(), nil)

	rec := doRaw(t, router, http.MethodGet, "/api/transactions", nil, http.StatusOK)
	if got := bytes.TrimSpace(rec.Body.Bytes()); string(got) != "[]" {
		t.Fatalf("transactions body = %s, want []", got)
	}

	var raw map[string]json.RawMessage
	rec = doRaw(t, router, http.MethodGet, "/api/analytics", nil, http.StatusOK)
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode analytics: %v", err)
	}
	if string(raw["byCategory"]) != "[]" {
		t.Fatalf("byCategory = %s, want []", raw["byCategory"])
	}
}

func TestAddTransactionValidation(t *testing.T) {
	router := newTestRouter(t, NewMemory(), nil)
	valid := func() map[string]any {
		return map[string]any{
			"date": "2026-10-01", "description": "Rent", "amount": 10, "category_id": 2, "type": "expense",
		}
	}

	cases := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{"missing description", func(b map[string]any) { delete(b, "description") }},
		{"missing category", func(b map[string]any) { delete(b, "category_id") }},
		{"bad type", func(b map[string]any) { b["type"] = "transfer" }},
		{"negative amount", func(b map[string]any) { b["amount"] = -5 }},
		{"bad date", func(b map[string]any) { b["date"] = "10/01/2026" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body := valid()
			tc.mutate(body)
			doRaw(t, router, http.MethodPost, "/api/transactions", body, http.StatusBadRequest)
		})
	}

	doRaw(t, router, http.MethodDelete, "/api/transactions/abc", nil, http.StatusBadRequest)
}

func TestCacheReadThroughAndInvalidation(t *testing.T) {
	repo := NewMemory()
	cache := newMemoryCache()
	router := newTestRouter(t, repo, cache)

	doRaw(t, router, http.MethodGet, "/api/transactions", nil, http.StatusOK)
	doRaw(t, router, http.MethodGet, "/api/analytics", nil, http.StatusOK)
	if !cache.has(transactionsKey) || !cache.has(analyticsKey) {
		t.Fatal("expected both responses to be cached")
	}

	// a write that bypasses the API is invisible until the cache is dropped
	if _, err := repo.CreateTransaction(context.Background(), models.NewTransaction{
		Date: time.Now().Format(time.DateOnly), Description: "Side", Amount: decimal.NewFromInt(5), CategoryID: 1, Type: models.Expense,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	list := doJSON[[]models.Transaction](t, router, http.MethodGet, "/api/transactions", nil, http.StatusOK)
	if len(list) != 0 {
		t.Fatalf("expected cached empty list, got %d", len(list))
	}

	doRaw(t, router, http.MethodPost, "/api/transactions", map[string]any{
		"date": time.Now().Format(time.DateOnly), "description": "Lunch", "amount": "12.50", "category_id": 1, "type": "expense",
	}, http.StatusCreated)
	if cache.has(transactionsKey) || cache.has(analyticsKey) {
		t.Fatal("expected create to invalidate cache")
	}

	list = doJSON[[]models.Transaction](t, router, http.MethodGet, "/api/transactions", nil, http.StatusOK)
	if len(list) != 2 {
		t.Fatalf("expected 2 transactions after invalidation, got %d", len(list))
	}
}

type brokenRepo struct{ *Memory }

func (brokenRepo) Ping(ctx context.Context) error { return errors.New("connection refused") }
func (brokenRepo) ListTransactions(ctx context.Context, limit int) ([]models.Transaction, error) {
	return nil, errors.New("connection refused")
}

func TestRepositoryErrors(t *testing.T) {
	router := newTestRouter(t, brokenRepo{NewMemory()}, nil)

	doRaw(t, router, http.MethodGet, "/api/transactions", nil, http.StatusInternalServerError)
	doRaw(t, router, http.MethodGet, "/health", nil, http.StatusInternalServerError)
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(t, NewMemory(), nil)
	got := doJSON[map[string]string](t, router, http.MethodGet, "/health", nil, http.StatusOK)
	if got["status"] != "healthy" {
		t.Fatalf("status = %q", got["status"])
	}
}
