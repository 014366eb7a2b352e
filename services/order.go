package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cafe-storefront/models"
	"cafe-storefront/storage"

	"go.uber.org/zap"
)

const (
	// HistoryLimit caps the persisted order history.
	HistoryLimit = 20
	// FirstQueueNumber is where the queue counter starts and resets to.
	FirstQueueNumber = 1
)

// OrderBook owns the order history and the queue counter.
type OrderBook struct {
	store *storage.Store
	clock Clock
	log   *zap.Logger

	mu sync.Mutex
}

func NewOrderBook(store *storage.Store, clock Clock, logger *zap.Logger) *OrderBook {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderBook{store: store, clock: clock, log: logger.Named("orders")}
}

// History returns orders newest first.
func (b *OrderBook) History(ctx context.Context) []models.Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.history(ctx)
}

func (b *OrderBook) history(ctx context.Context) []models.Order {
	var orders []models.Order
	b.store.Get(ctx, storage.KeyOrderHistory, &orders)
	return orders
}

// NextQueueNumber is the number the next placed order will get.
func (b *OrderBook) NextQueueNumber(ctx context.Context) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.counter(ctx)
}

func (b *OrderBook) counter(ctx context.Context) int {
	n := FirstQueueNumber
	if b.store.Get(ctx, storage.KeyQueueCounter, &n) && n >= FirstQueueNumber {
		return n
	}
	return FirstQueueNumber
}

func (b *OrderBook) Find(ctx context.Context, id string) (models.Order, bool) {
	for _, o := range b.History(ctx) {
		if o.ID == id {
			return o, true
		}
	}
	return models.Order{}, false
}

// OrderRequest is a priced cart ready to be accepted.
type OrderRequest struct {
	Session     string
	Quote       Quote
	ServiceMode models.ServiceMode
	Payment     models.PaymentMethod
}

// Place freezes the quote into an order, assigns the current queue
// number, prepends it to the capped history and advances the counter.
func (b *OrderBook) Place(ctx context.Context, req OrderRequest) (models.Order, error) {
	if len(req.Quote.Lines) == 0 {
		return models.Order{}, ErrEmptyCart
	}
	if !req.ServiceMode.Valid() {
		return models.Order{}, invalidArgument(ErrMsgServiceMode)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.clock.Now()
	queue := b.counter(ctx)
	lines := make([]models.CartLine, len(req.Quote.Lines))
	copy(lines, req.Quote.Lines)
	order := models.Order{
		ID:            fmt.Sprintf("%d-%d", now.UnixMilli(), queue),
		Date:          now.Format(time.RFC3339),
		Items:         lines,
		Subtotal:      Money(req.Quote.Subtotal),
		Discount:      Money(req.Quote.Discount),
		VoucherCode:   req.Quote.VoucherCode,
		TotalPrice:    Money(req.Quote.Total),
		ServiceMode:   req.ServiceMode,
		PaymentMethod: req.Payment,
		QueueNumber:   queue,
		Session:       req.Session,
	}

	history := append([]models.Order{order}, b.history(ctx)...)
	if len(history) > HistoryLimit {
		history = history[:HistoryLimit]
	}
	b.store.Set(ctx, storage.KeyOrderHistory, history)
	b.store.Set(ctx, storage.KeyQueueCounter, queue+1)

	b.log.Info("order placed",
		zap.String("id", order.ID),
		zap.Int("queue", queue),
		zap.Float64("total", order.TotalPrice),
		zap.String("mode", string(order.ServiceMode)),
	)
	return order, nil
}

// ClearHistory empties the history and resets the queue counter.
func (b *OrderBook) ClearHistory(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.store.Set(ctx, storage.KeyOrderHistory, []models.Order{})
	b.store.Set(ctx, storage.KeyQueueCounter, FirstQueueNumber)
	b.log.Warn("order history cleared")
}

// SessionHistory is the part of the history placed by one session.
func SessionHistory(orders []models.Order, session string) []models.Order {
	var out []models.Order
	for _, o := range orders {
		if o.Session == session {
			out = append(out, o)
		}
	}
	return out
}
