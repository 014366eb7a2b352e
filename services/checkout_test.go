package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"cafe-storefront/models"
	"cafe-storefront/storage"
)

type recordingObserver struct {
	mu     sync.Mutex
	orders []models.Order
}

func (r *recordingObserver) OrderPlaced(_ context.Context, o models.Order) {
	r.mu.Lock()
	r.orders = append(r.orders, o)
	r.mu.Unlock()
}

func TestPlaceOrder(t *testing.T) {
	env := newTestEnv(t)
	obs := &recordingObserver{}
	env.cafe.Checkout.Observe(obs)

	if _, err := env.cafe.AddToCart(env.ctx, "s", "americano", 2); err != nil {
		t.Fatal(err)
	}
	order, err := env.cafe.Checkout.PlaceOrder(env.ctx, CheckoutRequest{Session: "s", ServiceMode: models.DineIn})
	if err != nil {
		t.Fatal(err)
	}
	if order.QueueNumber != 1 || order.TotalPrice != 200 || order.PaymentMethod != models.PaymentCard {
		t.Errorf("order = %+v", order)
	}
	if n := len(env.cafe.Carts.Get(env.ctx, "s").Lines); n != 0 {
		t.Errorf("cart has %d lines after checkout", n)
	}
	if st, ok := env.cafe.Tracker.Status(order.ID); !ok || st.Stage != "received" {
		t.Errorf("tracker status = %+v, %v", st, ok)
	}
	if len(obs.orders) != 1 || obs.orders[0].ID != order.ID {
		t.Errorf("observer saw %+v", obs.orders)
	}
	feed := env.cafe.Feed.List("s")
	if last := feed[len(feed)-1]; last.Message != "Order placed! Your queue number is #1." {
		t.Errorf("last notification = %q", last.Message)
	}
}

func TestPlaceOrderRejects(t *testing.T) {
	env := newTestEnv(t)
	tests := []struct {
		name string
		req  CheckoutRequest
		want Code
	}{
		{"empty cart", CheckoutRequest{Session: "s", ServiceMode: models.TakeOut}, CodeFailedPrecondition},
		{"no service mode", CheckoutRequest{Session: "s"}, CodeInvalidArgument},
		{"bad payment", CheckoutRequest{Session: "s", ServiceMode: models.TakeOut, Payment: "gold"}, CodeInvalidArgument},
	}
	for _, tt := range tests {
		if _, err := env.cafe.Checkout.PlaceOrder(env.ctx, tt.req); ErrorCode(err) != tt.want {
			t.Errorf("%s: err = %v, want %s", tt.name, err, tt.want)
		}
	}
}

func waitPending(t *testing.T, clock *ManualClock) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for clock.Pending() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("checkout never started waiting")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestPlaceOrderWaitsForDelay(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	checkout := NewCheckout(env.cafe.Carts, env.cafe.Orders, env.cafe.Tracker, env.clock, 1500*time.Millisecond, nil, nil)
	_, _ = env.cafe.AddToCart(ctx, "s", "americano", 1)

	type result struct {
		order models.Order
		err   error
	}
	done := make(chan result, 1)
	go func() {
		o, err := checkout.PlaceOrder(ctx, CheckoutRequest{Session: "s", ServiceMode: models.TakeOut})
		done <- result{o, err}
	}()
	waitPending(t, env.clock)

	if _, err := checkout.PlaceOrder(ctx, CheckoutRequest{Session: "s", ServiceMode: models.TakeOut}); ErrorCode(err) != CodeFailedPrecondition {
		t.Errorf("concurrent checkout err = %v", err)
	}
	// Lines added during the delay are part of the order.
	_, _ = env.cafe.AddToCart(ctx, "s", "americano", 1)

	env.clock.Advance(1500 * time.Millisecond)
	r := <-done
	if r.err != nil {
		t.Fatal(r.err)
	}
	if r.order.ItemCount() != 2 {
		t.Errorf("ItemCount() = %d, want 2", r.order.ItemCount())
	}
}

func TestPlaceOrderCancelled(t *testing.T) {
	env := newTestEnv(t)
	checkout := NewCheckout(env.cafe.Carts, env.cafe.Orders, env.cafe.Tracker, env.clock, time.Second, nil, nil)
	_, _ = env.cafe.AddToCart(env.ctx, "s", "americano", 1)

	ctx, cancel := context.WithCancel(env.ctx)
	done := make(chan error, 1)
	go func() {
		_, err := checkout.PlaceOrder(ctx, CheckoutRequest{Session: "s", ServiceMode: models.TakeOut})
		done <- err
	}()
	waitPending(t, env.clock)
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if n := len(env.cafe.Orders.History(env.ctx)); n != 0 {
		t.Errorf("%d orders placed after cancel", n)
	}
	if env.cafe.Carts.Get(env.ctx, "s").TotalItems() != 1 {
		t.Error("cart cleared after cancelled checkout")
	}
}

func TestReorder(t *testing.T) {
	env := newTestEnv(t)
	_, _ = env.cafe.AddToCart(env.ctx, "s", "americano", 2)
	order, err := env.cafe.Checkout.PlaceOrder(env.ctx, CheckoutRequest{Session: "s", ServiceMode: models.DineIn})
	if err != nil {
		t.Fatal(err)
	}
	_, _ = env.cafe.AddToCart(env.ctx, "s", "americano", 1)

	cart, err := env.cafe.Checkout.Reorder(env.ctx, "s", order.ID)
	if err != nil {
		t.Fatal(err)
	}
	if cart.TotalItems() != 3 || len(cart.Lines) != 1 {
		t.Errorf("cart after reorder = %+v", cart.Lines)
	}
	if _, err := env.cafe.Checkout.Reorder(env.ctx, "s", "missing"); ErrorCode(err) != CodeNotFound {
		t.Errorf("Reorder(missing) err = %v", err)
	}
}

func TestReceipt(t *testing.T) {
	o := models.Order{
		ID: "1710000000000-4", Date: "2026-03-14T09:30:00Z", QueueNumber: 4,
		Items:    []models.CartLine{line("bb", "Butter Brew", 170, 2)},
		Subtotal: 340, Discount: 34, VoucherCode: "BREW10", TotalPrice: 306,
		ServiceMode: models.TakeOut, PaymentMethod: models.PaymentCash,
	}
	pdf, err := RenderReceipt(o, "Marauder's Brew Cafe")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(pdf), "%PDF") {
		t.Errorf("receipt does not start with a PDF header")
	}
	if got := ReceiptFileName(o); got != "receipt-4-1710000000000-4.pdf" {
		t.Errorf("ReceiptFileName() = %q", got)
	}
	if got := ReceiptQRPayload(o); got != "order|1710000000000-4|queue|4|total|306.00" {
		t.Errorf("ReceiptQRPayload() = %q", got)
	}
}

func TestOrderCards(t *testing.T) {
	var cart Cart
	_ = cart.Add(item("latte", "Latte", 150), 2)
	q := PriceCart(cart, "BREW10")

	card := BuildCartCard(q)
	for _, want := range []string{"2x Latte", "Subtotal: ₱300.00", "Discount (BREW10): -₱30.00", "Total: ₱270.00"} {
		if !strings.Contains(card.Text, want) {
			t.Errorf("cart card missing %q:\n%s", want, card.Text)
		}
	}
	if got := card.Buttons[0][2].CallbackData; got != CbCartInc+"latte" {
		t.Errorf("increment callback = %q", got)
	}
	if empty := BuildCartCard(Quote{}); len(empty.Buttons) != 0 {
		t.Errorf("empty cart card has buttons")
	}

	o := models.Order{ID: "o1", QueueNumber: 9, ServiceMode: models.DineIn, TotalPrice: 270, Items: cart.Lines}
	st := newStageUpdate("o1", 9, StagePreparing)
	cc := BuildCustomerCard(o, &st, "https://example.test/r.pdf")
	if !strings.Contains(cc.Text, "Step 2/4: Brewing Your Potions") {
		t.Errorf("customer card text:\n%s", cc.Text)
	}
	if len(cc.Buttons) != 2 || cc.Buttons[1][0].URL == "" {
		t.Errorf("customer card buttons = %+v", cc.Buttons)
	}
	if ac := BuildAdminCard(o); !strings.Contains(ac.Text, "Queue #9") {
		t.Errorf("admin card text:\n%s", ac.Text)
	}
}

// hookBackend runs onSet once, before the first write to key.
type hookBackend struct {
	*storage.MemoryBackend
	key   string
	once  sync.Once
	onSet func()
}

func (h *hookBackend) Set(ctx context.Context, key string, value []byte) error {
	if key == h.key {
		h.once.Do(h.onSet)
	}
	return h.MemoryBackend.Set(ctx, key, value)
}

func TestItemAddedDuringPlacementStaysInCart(t *testing.T) {
	ctx := context.Background()
	backend := &hookBackend{MemoryBackend: storage.NewMemoryBackend(), key: storage.KeyOrderHistory}
	cafe := NewCafe(ctx, storage.NewStore(backend, nil), Options{Clock: NewManualClock(testStart)}, nil)
	butter, _, ok := cafe.Catalog.FindItem("classic-butter")
	if !ok {
		t.Fatal("classic-butter missing from catalog")
	}
	backend.onSet = func() {
		if _, err := cafe.Carts.AddItem(ctx, "s", butter, 1); err != nil {
			t.Error(err)
		}
	}

	if _, err := cafe.AddToCart(ctx, "s", "americano", 1); err != nil {
		t.Fatal(err)
	}
	order, err := cafe.Checkout.PlaceOrder(ctx, CheckoutRequest{Session: "s", ServiceMode: models.DineIn})
	if err != nil {
		t.Fatal(err)
	}
	if len(order.Items) != 1 || order.Items[0].Item.ID != "americano" {
		t.Errorf("order lines = %+v, want only americano", order.Items)
	}
	cart := cafe.Carts.Get(ctx, "s")
	if _, ok := cart.Line(butter.Name); !ok || len(cart.Lines) != 1 {
		t.Errorf("cart after checkout = %+v, want only %s", cart.Lines, butter.Name)
	}
}

func TestTakeForCheckoutEmptiesCartAndVoucher(t *testing.T) {
	env := newTestEnv(t)
	_, _ = env.cafe.AddToCart(env.ctx, "s", "americano", 2)
	if _, err := env.cafe.Carts.ApplyVoucher(env.ctx, "s", "BREW10"); err != nil {
		t.Fatal(err)
	}

	q := env.cafe.Carts.TakeForCheckout(env.ctx, "s")
	if q.VoucherCode != "BREW10" || q.Total.StringFixed(2) != "180.00" {
		t.Errorf("taken quote = %s via %q, want 180.00 via BREW10", q.Total.StringFixed(2), q.VoucherCode)
	}
	after := env.cafe.Carts.Quote(env.ctx, "s")
	if len(after.Lines) != 0 || after.VoucherCode != "" {
		t.Errorf("cart after take = %+v", after)
	}
}
