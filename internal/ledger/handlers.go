package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"finance-dashboard/internal/models"
)

type Handler struct {
	repo  Repository
	cache Cache
	now   func() time.Time
}

// NewHandler builds the API handlers. cache may be nil.
func NewHandler(repo Repository, cache Cache) *Handler {
	return &Handler{repo: repo, cache: cache, now: time.Now}
}

// Register mounts the API routes under r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/transactions", h.getTransactions)
	r.POST("/transactions", h.addTransaction)
	r.DELETE("/transactions/:id", h.deleteTransaction)
	r.GET("/categories", h.getCategories)
	r.GET("/analytics", h.getAnalytics)
}

// healthCheck handles the health check endpoint
func (h *Handler) healthCheck(c *gin.Context) {
	if err := h.repo.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "transaction-service",
	})
}

// getTransactions retrieves the latest transactions with optional caching
func (h *Handler) getTransactions(c *gin.Context) {
	ctx := c.Request.Context()

	var transactions []models.Transaction
	if h.cached(ctx, transactionsKey, &transactions) {
		c.JSON(http.StatusOK, transactions)
		return
	}

	transactions, err := h.repo.ListTransactions(ctx, TransactionLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.store(ctx, transactionsKey, transactions, transactionsTTL)
	c.JSON(http.StatusOK, transactions)
}

// addTransaction creates a new transaction
func (h *Handler) addTransaction(c *gin.Context) {
	var in models.NewTransaction
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if in.Amount.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must not be negative"})
		return
	}
	if _, err := time.Parse(time.DateOnly, in.Date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	ctx := c.Request.Context()
	result, err := h.repo.CreateTransaction(ctx, in)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.invalidate(ctx)
	c.JSON(http.StatusCreated, result)
}

// deleteTransaction removes a transaction by ID
func (h *Handler) deleteTransaction(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction id"})
		return
	}

	ctx := c.Request.Context()
	err = h.repo.DeleteTransaction(ctx, id)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.invalidate(ctx)
	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted"})
}

// getCategories retrieves all categories
func (h *Handler) getCategories(c *gin.Context) {
	categories, err := h.repo.ListCategories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if categories == nil {
		categories = make([]models.Category, 0)
	}
	c.JSON(http.StatusOK, categories)
}

// getAnalytics retrieves analytics data with optional caching
func (h *Handler) getAnalytics(c *gin.Context) {
	ctx := c.Request.Context()

	var analytics models.Analytics
	if h.cached(ctx, analyticsKey, &analytics) {
		c.JSON(http.StatusOK, analytics)
		return
	}

	since := h.now().Add(-AnalyticsWindow)
	analytics, err := h.repo.Analytics(ctx, since)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if analytics.ByCategory == nil {
		analytics.ByCategory = make([]models.CategoryAggregate, 0)
	}

	h.store(ctx, analyticsKey, analytics, analyticsTTL)
	c.JSON(http.StatusOK, analytics)
}

func (h *Handler) cached(ctx context.Context, key string, dst any) bool {
	if h.cache == nil {
		return false
	}
	data, err := h.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			log.Printf("cache get %s: %v", key, err)
		}
		return false
	}
	return json.Unmarshal(data, dst) == nil
}

func (h *Handler) store(ctx context.Context, key string, value any, ttl time.Duration) {
	if h.cache == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := h.cache.Set(ctx, key, data, ttl); err != nil {
		log.Printf("cache set %s: %v", key, err)
	}
}

func (h *Handler) invalidate(ctx context.Context) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Delete(ctx, transactionsKey, analyticsKey); err != nil {
		log.Printf("cache invalidate: %v", err)
	}
}
