// Package api is the dashboard's client for the ledger REST API.
//
// Reads never fail from the caller's point of view: any network, status or
// decoding problem is logged and replaced by an empty collection or a zeroed
// summary so the dashboard degrades to an empty state. Mutations report
// failures as *MutationError.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"finance-dashboard/internal/models"
)

// DefaultBaseURL is where the ledger API listens in development.
const DefaultBaseURL = "http://localhost:8080/api"

// DefaultTimeout bounds every request when no http.Client is supplied.
const DefaultTimeout = 10 * time.Second

// ErrMutation is wrapped by every MutationError.
var ErrMutation = errors.New("mutation failed")

// MutationError describes a failed create or delete.
type MutationError struct {
	Op     string
	Status int
	Err    error
}

func (e *MutationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: unexpected status %d", e.Op, e.Status)
}

func (e *MutationError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrMutation, e.Err}
	}
	return []error{ErrMutation}
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListCategories returns every category, or an empty slice on any failure.
func (c *Client) ListCategories(ctx context.Context) []models.Category {
	categories := make([]models.Category, 0)
	raw, err := c.get(ctx, "/categories")
	if err != nil {
		c.logger.Printf("listCategories: %v", err)
		return categories
	}
	if err := decodeArray(raw, &categories); err != nil {
		c.logger.Printf("listCategories: %v", err)
		return make([]models.Category, 0)
	}
	return categories
}

// ListTransactions returns the latest transactions, or an empty slice on any failure.
func (c *Client) ListTransactions(ctx context.Context) []models.Transaction {
	transactions := make([]models.Transaction, 0)
	raw, err := c.get(ctx, "/transactions")
	if err != nil {
		c.logger.Printf("listTransactions: %v", err)
		return transactions
	}
	if err := decodeArray(raw, &transactions); err != nil {
		c.logger.Printf("listTransactions: %v", err)
		return make([]models.Transaction, 0)
	}
	return transactions
}

// GetAnalytics returns the summary and per-category totals. Each half falls
// back to its zero value independently when it is missing or malformed.
func (c *Client) GetAnalytics(ctx context.Context) models.Analytics {
	analytics := models.Analytics{ByCategory: make([]models.CategoryAggregate, 0)}
	raw, err := c.get(ctx, "/analytics")
	if err != nil {
		c.logger.Printf("loadAnalytics: %v", err)
		return analytics
	}

	var envelope struct {
		Summary    json.RawMessage `json:"summary"`
		ByCategory json.RawMessage `json:"byCategory"`
	}
	if !isKind(raw, '{') {
		c.logger.Printf("loadAnalytics: expected object, got %s", preview(raw))
		return analytics
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		c.logger.Printf("loadAnalytics: %v", err)
		return analytics
	}

	if isKind(envelope.Summary, '{') {
		var summary models.Summary
		if err := json.Unmarshal(envelope.Summary, &summary); err != nil {
			c.logger.Printf("loadAnalytics: summary: %v", err)
		} else {
			analytics.Summary = summary
		}
	}

	if err := decodeArray(envelope.ByCategory, &analytics.ByCategory); err != nil {
		c.logger.Printf("loadAnalytics: byCategory: %v", err)
		analytics.ByCategory = make([]models.CategoryAggregate, 0)
	}
	return analytics
}

// CreateTransaction posts a new transaction. The created resource is ignored.
func (c *Client) CreateTransaction(ctx context.Context, t models.NewTransaction) error {
	body, err := json.Marshal(map[string]any{
		"date":        t.Date,
		"description": t.Description,
		"amount":      json.Number(t.Amount.String()),
		"category_id": t.CategoryID,
		"type":        t.Type,
		"notes":       t.Notes,
	})
	if err != nil {
		return &MutationError{Op: "create transaction", Err: err}
	}
	return c.mutate(ctx, "create transaction", http.MethodPost, "/transactions", body)
}

// DeleteTransaction removes a transaction by id.
func (c *Client) DeleteTransaction(ctx context.Context, id int) error {
	return c.mutate(ctx, "delete transaction", http.MethodDelete, "/transactions/"+strconv.Itoa(id), nil)
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("GET %s returned status %d: %s", path, resp.StatusCode, preview(body))
	}
	return body, nil
}

func (c *Client) mutate(ctx context.Context, op, method, path string, body []byte) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &MutationError{Op: op, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &MutationError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &MutationError{Op: op, Status: resp.StatusCode}
	}
	return nil
}

// decodeArray unmarshals raw into dst only when raw is a JSON array. null
// and absent values leave dst untouched.
func decodeArray(raw []byte, dst any) error {
	if len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null" {
		return nil
	}
	if !isKind(raw, '[') {
		return fmt.Errorf("expected array, got %s", preview(raw))
	}
	return json.Unmarshal(raw, dst)
}

func isKind(raw []byte, open byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == open
}

func preview(raw []byte) string {
	const limit = 64
	s := strings.TrimSpace(string(raw))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
