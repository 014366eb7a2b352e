package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"cafe-storefront/models"
	"cafe-storefront/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ExpenseForm struct {
	Description string                 `json:"description" validate:"required"`
	Amount      float64                `json:"amount" validate:"gt=0"`
	Category    models.ExpenseCategory `json:"category" validate:"oneof=materials operations"`
	Date        string                 `json:"date"`
}

// Ledger is the persisted expense list, newest first.
type Ledger struct {
	store *storage.Store
	clock Clock
	log   *zap.Logger

	mu sync.Mutex
}

func NewLedger(store *storage.Store, clock Clock, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{store: store, clock: clock, log: logger.Named("expenses")}
}

func (l *Ledger) List(ctx context.Context) []models.ExpenseEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.list(ctx)
}

func (l *Ledger) list(ctx context.Context) []models.ExpenseEntry {
	var entries []models.ExpenseEntry
	l.store.Get(ctx, storage.KeyExpenses, &entries)
	return entries
}

// Add records an expense; the date defaults to now.
func (l *Ledger) Add(ctx context.Context, form ExpenseForm) (models.ExpenseEntry, error) {
	form.Description = strings.TrimSpace(form.Description)
	form.Date = strings.TrimSpace(form.Date)
	if err := validate.Struct(form); err != nil {
		if failedField(err) == "Category" {
			return models.ExpenseEntry{}, invalidArgument(ErrMsgExpenseCategory)
		}
		return models.ExpenseEntry{}, invalidArgument(ErrMsgExpense)
	}
	if !validAmount(form.Amount) {
		return models.ExpenseEntry{}, invalidArgument(ErrMsgExpense)
	}
	entry := models.ExpenseEntry{
		ID:          "exp-" + uuid.NewString(),
		Description: form.Description,
		Amount:      form.Amount,
		Category:    form.Category,
		Date:        form.Date,
	}
	if entry.Date == "" {
		entry.Date = l.clock.Now().Format(time.RFC3339)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	entries := append([]models.ExpenseEntry{entry}, l.list(ctx)...)
	l.store.Set(ctx, storage.KeyExpenses, entries)
	l.log.Info("expense added", zap.String("id", entry.ID), zap.Float64("amount", entry.Amount))
	return entry, nil
}

func (l *Ledger) Delete(ctx context.Context, id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entries := l.list(ctx)
	kept := make([]models.ExpenseEntry, 0, len(entries))
	for _, e := range entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	l.store.Set(ctx, storage.KeyExpenses, kept)
}
