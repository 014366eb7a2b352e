package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cafe-storefront/models"

	"go.uber.org/zap"
)

// OrderObserver is told about every accepted order.
type OrderObserver interface {
	OrderPlaced(ctx context.Context, order models.Order)
}

type CheckoutRequest struct {
	Session     string               `json:"-"`
	ServiceMode models.ServiceMode   `json:"serviceMode"`
	Payment     models.PaymentMethod `json:"paymentMethod"`
}

// Checkout turns a session cart into an order.
type Checkout struct {
	carts    *CartService
	orders   *OrderBook
	tracker  *Tracker
	clock    Clock
	delay    time.Duration
	notifier Notifier
	log      *zap.Logger

	mu        sync.Mutex
	inFlight  map[string]bool
	observers []OrderObserver
}

// NewCheckout wires checkout; delay is the simulated processing time
// before an order is accepted.
func NewCheckout(carts *CartService, orders *OrderBook, tracker *Tracker, clock Clock, delay time.Duration, notifier Notifier, logger *zap.Logger) *Checkout {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checkout{
		carts:    carts,
		orders:   orders,
		tracker:  tracker,
		clock:    clock,
		delay:    delay,
		notifier: notifier,
		log:      logger.Named("checkout"),
		inFlight: make(map[string]bool),
	}
}

func (c *Checkout) Observe(o OrderObserver) {
	c.mu.Lock()
	c.observers = append(c.observers, o)
	c.mu.Unlock()
}

// PlaceOrder validates the request, waits out the processing delay and
// accepts the cart as it stands then. The cart and voucher are taken in
// the same step, and tracking starts on success.
func (c *Checkout) PlaceOrder(ctx context.Context, req CheckoutRequest) (models.Order, error) {
	if !req.ServiceMode.Valid() {
		return models.Order{}, invalidArgument(ErrMsgServiceMode)
	}
	if req.Payment == "" {
		req.Payment = models.PaymentCard
	}
	if !req.Payment.Valid() {
		return models.Order{}, invalidArgument(ErrMsgPaymentMethod)
	}
	if len(c.carts.Get(ctx, req.Session).Lines) == 0 {
		return models.Order{}, ErrEmptyCart
	}

	c.mu.Lock()
	if c.inFlight[req.Session] {
		c.mu.Unlock()
		return models.Order{}, &ValidationError{Code: CodeFailedPrecondition, Message: "A checkout is already in progress."}
	}
	c.inFlight[req.Session] = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.inFlight, req.Session)
		c.mu.Unlock()
	}()

	if err := sleep(ctx, c.clock, c.delay); err != nil {
		return models.Order{}, fmt.Errorf("checkout interrupted: %w", err)
	}

	order, err := c.orders.Place(ctx, OrderRequest{
		Session:     req.Session,
		Quote:       c.carts.TakeForCheckout(ctx, req.Session),
		ServiceMode: req.ServiceMode,
		Payment:     req.Payment,
	})
	if err != nil {
		return models.Order{}, err
	}
	c.tracker.Start(order.ID, order.QueueNumber)
	notify(ctx, c.notifier, req.Session, fmt.Sprintf("Order placed! Your queue number is #%d.", order.QueueNumber), KindSuccess)

	c.mu.Lock()
	observers := append([]OrderObserver(nil), c.observers...)
	c.mu.Unlock()
	for _, o := range observers {
		o.OrderPlaced(ctx, order)
	}
	return order, nil
}

// Reorder adds a past order's lines back to the session cart.
func (c *Checkout) Reorder(ctx context.Context, session, orderID string) (Cart, error) {
	order, ok := c.orders.Find(ctx, orderID)
	if !ok {
		return Cart{}, ErrNotFound
	}
	return c.carts.AddLines(ctx, session, order.Items), nil
}
