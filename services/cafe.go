package services

import (
	"context"
	"time"

	"cafe-storefront/storage"

	"go.uber.org/zap"
)

type Options struct {
	AdminPassword     string
	AdminPasswordHash string
	CheckoutDelay     time.Duration
	Clock             Clock // defaults to SystemClock
}

// Cafe is the application state shared by the HTTP API and the bot.
type Cafe struct {
	Catalog   *Catalog
	Admin     *AdminGate
	Carts     *CartService
	Orders    *OrderBook
	Checkout  *Checkout
	Tracker   *Tracker
	Expenses  *Ledger
	Favorites *Favorites
	Feed      *Feed
}

// NewCafe wires every service over store and loads the persisted
// configuration, seeding defaults when there is none.
func NewCafe(ctx context.Context, store *storage.Store, opts Options, logger *zap.Logger) *Cafe {
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := opts.Clock
	if clock == nil {
		clock = SystemClock()
	}
	feed := NewFeed(clock, NotificationTTL)
	notifier := Notifiers{feed, LogNotifier{Log: logger.Named("notify")}}

	c := &Cafe{
		Catalog:   NewCatalog(store, clock, logger),
		Admin:     NewAdminGate(store, opts.AdminPassword, opts.AdminPasswordHash, logger),
		Carts:     NewCartService(store, notifier, logger),
		Orders:    NewOrderBook(store, clock, logger),
		Tracker:   NewTracker(clock, logger),
		Expenses:  NewLedger(store, clock, logger),
		Favorites: NewFavorites(store),
		Feed:      feed,
	}
	c.Checkout = NewCheckout(c.Carts, c.Orders, c.Tracker, clock, opts.CheckoutDelay, notifier, logger)
	c.Catalog.Bootstrap(ctx)
	return c
}

// AddToCart adds the catalog item with itemID to the session cart.
func (c *Cafe) AddToCart(ctx context.Context, session, itemID string, quantity int) (Cart, error) {
	item, _, ok := c.Catalog.FindItem(itemID)
	if !ok {
		return Cart{}, ErrNotFound
	}
	return c.Carts.AddItem(ctx, session, item, quantity)
}

// Report builds the analytics dashboard from history and expenses.
func (c *Cafe) Report(ctx context.Context, profit ProfitInput) Report {
	return BuildReport(c.Orders.History(ctx), c.Expenses.List(ctx), profit)
}
