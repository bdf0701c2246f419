// Package form owns the transaction draft and turns it into API mutations.
package form

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"finance-dashboard/internal/models"
	"finance-dashboard/internal/money"
	"finance-dashboard/internal/state"
)

const (
	MsgFillAllFields   = "Please fill in all fields"
	MsgInvalidAmount   = "Please enter a valid amount"
	MsgInvalidCategory = "Please choose a category"
	MsgAddFailed       = "Error adding transaction"
	MsgConfirmDelete   = "Delete this transaction?"
	MsgDeleteFailed    = "Error deleting transaction"
)

var (
	ErrValidation   = errors.New("invalid transaction")
	ErrCancelled    = errors.New("delete cancelled")
	ErrUnknownField = errors.New("unknown field")
	ErrBusy         = errors.New("submit already in progress")
)

type Field string

const (
	FieldDate        Field = "date"
	FieldDescription Field = "description"
	FieldAmount      Field = "amount"
	FieldCategoryID  Field = "category_id"
	FieldType        Field = "type"
	FieldNotes       Field = "notes"
)

// Mutator is the write side of the API client.
type Mutator interface {
	CreateTransaction(ctx context.Context, t models.NewTransaction) error
	DeleteTransaction(ctx context.Context, id int) error
}

type Refresher interface {
	Refresh(ctx context.Context)
}

// Notifier shows blocking messages to the user. Both methods return only
// once the user has dismissed or answered the message.
type Notifier interface {
	Alert(msg string)
	Confirm(msg string) bool
}

type Controller struct {
	store     *state.Store
	mutator   Mutator
	refresher Refresher
	notifier  Notifier
	now       func() time.Time
	logger    *log.Logger

	busy atomic.Bool
}

type Option func(*Controller)

// WithClock sets the clock used to date a draft submitted without a date.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

func New(store *state.Store, mutator Mutator, refresher Refresher, notifier Notifier, opts ...Option) *Controller {
	c := &Controller{
		store:     store,
		mutator:   mutator,
		refresher: refresher,
		notifier:  notifier,
		now:       time.Now,
		logger:    log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetField replaces a single draft field. No validation happens here.
func (c *Controller) SetField(name Field, value string) error {
	if name == FieldType {
		t := models.TransactionType(value)
		if !t.Valid() {
			return fmt.Errorf("%w: type %q", ErrValidation, value)
		}
		c.SetType(t)
		return nil
	}

	var set func(d *state.Draft)
	switch name {
	case FieldDate:
		set = func(d *state.Draft) { d.Date = value }
	case FieldDescription:
		set = func(d *state.Draft) { d.Description = value }
	case FieldAmount:
		set = func(d *state.Draft) { d.Amount = value }
	case FieldCategoryID:
		set = func(d *state.Draft) { d.CategoryID = value }
	case FieldNotes:
		set = func(d *state.Draft) { d.Notes = value }
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	c.store.UpdateDraft(set)
	return nil
}

// SetType switches the draft type and moves the category onto one that
// belongs to the new type.
func (c *Controller) SetType(t models.TransactionType) {
	c.store.UpdateDraftWithCategories(func(d *state.Draft, categories []models.Category) {
		d.Type = t
		resnap(d, categories)
	})
}

// SyncCategories re-applies the category rule after the category list
// has been replaced.
func (c *Controller) SyncCategories() {
	d := c.store.Draft()
	if valid(d, c.store.Categories()) {
		return
	}
	c.store.UpdateDraftWithCategories(resnap)
}

// Filtered returns the categories that match the draft type.
func (c *Controller) Filtered() []models.Category {
	snap := c.store.Snapshot()
	return filter(snap.Categories, snap.Draft.Type)
}

// Busy reports whether a submit is in flight.
func (c *Controller) Busy() bool {
	return c.busy.Load()
}

// Submit validates the draft and creates the transaction. On success the
// description and amount are cleared and a refresh runs before Submit
// returns.
func (c *Controller) Submit(ctx context.Context) error {
	if !c.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer c.busy.Store(false)

	d := c.store.Draft()
	in, msg, err := c.build(d)
	if err != nil {
		c.notifier.Alert(msg)
		return err
	}

	if err := c.mutator.CreateTransaction(ctx, in); err != nil {
		c.logger.Printf("create transaction: %v", err)
		c.notifier.Alert(MsgAddFailed)
		return err
	}

	c.store.UpdateDraft(func(d *state.Draft) {
		d.Description = ""
		d.Amount = ""
	})
	c.refresher.Refresh(ctx)
	return nil
}

func (c *Controller) build(d state.Draft) (models.NewTransaction, string, error) {
	description := strings.TrimSpace(d.Description)
	amountText := strings.TrimSpace(d.Amount)
	categoryText := strings.TrimSpace(d.CategoryID)
	if description == "" || amountText == "" || categoryText == "" {
		return models.NewTransaction{}, MsgFillAllFields, ErrValidation
	}

	amount, err := money.Parse(amountText)
	if err != nil || amount.IsNegative() {
		return models.NewTransaction{}, MsgInvalidAmount, fmt.Errorf("%w: amount %q", ErrValidation, d.Amount)
	}
	categoryID, err := strconv.Atoi(categoryText)
	if err != nil || categoryID <= 0 {
		return models.NewTransaction{}, MsgInvalidCategory, fmt.Errorf("%w: category %q", ErrValidation, d.CategoryID)
	}

	date := strings.TrimSpace(d.Date)
	if date == "" {
		date = c.now().Format(time.DateOnly)
	}
	t := d.Type
	if !t.Valid() {
		t = models.Expense
	}

	return models.NewTransaction{
		Date:        date,
		Description: description,
		Amount:      amount,
		CategoryID:  categoryID,
		Type:        t,
		Notes:       d.Notes,
	}, "", nil
}

// RequestDelete asks for confirmation and deletes transaction id.
func (c *Controller) RequestDelete(ctx context.Context, id int) error {
	if !c.notifier.Confirm(MsgConfirmDelete) {
		return ErrCancelled
	}
	if err := c.mutator.DeleteTransaction(ctx, id); err != nil {
		c.logger.Printf("delete transaction %d: %v", id, err)
		c.notifier.Alert(MsgDeleteFailed)
		return err
	}
	c.refresher.Refresh(ctx)
	return nil
}

func filter(categories []models.Category, t models.TransactionType) []models.Category {
	out := make([]models.Category, 0, len(categories))
	for _, cat := range categories {
		if cat.Type == t {
			out = append(out, cat)
		}
	}
	return out
}

func valid(d state.Draft, categories []models.Category) bool {
	matches := filter(categories, d.Type)
	if d.CategoryID == "" {
		return len(matches) == 0
	}
	for _, cat := range matches {
		if strconv.Itoa(cat.ID) == d.CategoryID {
			return true
		}
	}
	return false
}

// resnap keeps the draft category when it still matches the type and
// otherwise picks the first matching category, or none.
func resnap(d *state.Draft, categories []models.Category) {
	if valid(*d, categories) {
		return
	}
	matches := filter(categories, d.Type)
	if len(matches) == 0 {
		d.CategoryID = ""
		return
	}
	d.CategoryID = strconv.Itoa(matches[0].ID)
}
