package services

import (
	"context"
	"fmt"
	"sync"

	"cafe-storefront/models"
	"cafe-storefront/storage"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Cart holds at most one line per item name.
type Cart struct {
	Lines []models.CartLine
}

// Add increments the line named like item, or appends a new line
// capturing the item's current price.
func (c *Cart) Add(item models.MenuItem, quantity int) error {
	if quantity < 1 {
		return invalidArgument(ErrMsgQuantity)
	}
	for i := range c.Lines {
		if c.Lines[i].Item.Name == item.Name {
			c.Lines[i].Quantity += quantity
			return nil
		}
	}
	c.Lines = append(c.Lines, models.CartLine{Item: item, Quantity: quantity})
	return nil
}

// UpdateQuantity sets a line's quantity exactly; zero or below removes it.
func (c *Cart) UpdateQuantity(name string, quantity int) {
	if quantity <= 0 {
		c.Remove(name)
		return
	}
	for i := range c.Lines {
		if c.Lines[i].Item.Name == name {
			c.Lines[i].Quantity = quantity
			return
		}
	}
}

// Remove drops the named line. Removing an absent line is a no-op.
func (c *Cart) Remove(name string) {
	kept := c.Lines[:0]
	for _, l := range c.Lines {
		if l.Item.Name != name {
			kept = append(kept, l)
		}
	}
	c.Lines = kept
}

func (c *Cart) Clear() { c.Lines = nil }

func (c Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.Lines {
		sum = sum.Add(decimal.NewFromFloat(l.UnitPrice()).Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum
}

func (c Cart) TotalItems() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

func (c Cart) Line(name string) (models.CartLine, bool) {
	for _, l := range c.Lines {
		if l.Item.Name == name {
			return l, true
		}
	}
	return models.CartLine{}, false
}

type voucherState struct {
	code      string
	rejection string
}

// CartService keeps one persisted cart per session, plus the session's
// voucher state, which lives only in memory.
type CartService struct {
	store    *storage.Store
	notifier Notifier
	log      *zap.Logger

	mu       sync.Mutex
	vouchers map[string]voucherState
}

func NewCartService(store *storage.Store, notifier Notifier, logger *zap.Logger) *CartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartService{
		store:    store,
		notifier: notifier,
		log:      logger.Named("cart"),
		vouchers: make(map[string]voucherState),
	}
}

// load reads the session cart. Stored lines with a non-positive quantity
// or a repeated name are folded away.
func (s *CartService) load(ctx context.Context, session string) Cart {
	var lines []models.CartLine
	s.store.Get(ctx, storage.CartKey(session), &lines)
	var cart Cart
	for _, l := range lines {
		if l.Quantity >= 1 {
			_ = cart.Add(l.Item, l.Quantity)
		}
	}
	return cart
}

func (s *CartService) save(ctx context.Context, session string, cart Cart) {
	if len(cart.Lines) == 0 {
		s.store.Remove(ctx, storage.CartKey(session))
		return
	}
	s.store.Set(ctx, storage.CartKey(session), cart.Lines)
}

func (s *CartService) Get(ctx context.Context, session string) Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, session)
}

func (s *CartService) AddItem(ctx context.Context, session string, item models.MenuItem, quantity int) (Cart, error) {
	s.mu.Lock()
	cart := s.load(ctx, session)
	if err := cart.Add(item, quantity); err != nil {
		s.mu.Unlock()
		return cart, err
	}
	s.save(ctx, session, cart)
	s.mu.Unlock()

	notify(ctx, s.notifier, session, fmt.Sprintf("%dx %s added to order.", quantity, item.Name), KindSuccess)
	return cart, nil
}

// AddLines adds every line of a previous order back to the cart.
func (s *CartService) AddLines(ctx context.Context, session string, lines []models.CartLine) Cart {
	s.mu.Lock()
	cart := s.load(ctx, session)
	for _, l := range lines {
		if l.Quantity >= 1 {
			_ = cart.Add(l.Item, l.Quantity)
		}
	}
	s.save(ctx, session, cart)
	s.mu.Unlock()

	notify(ctx, s.notifier, session, "Previous order added to your order.", KindSuccess)
	return cart
}

func (s *CartService) UpdateQuantity(ctx context.Context, session, name string, quantity int) Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart := s.load(ctx, session)
	cart.UpdateQuantity(name, quantity)
	s.save(ctx, session, cart)
	return cart
}

func (s *CartService) RemoveItem(ctx context.Context, session, name string) Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart := s.load(ctx, session)
	cart.Remove(name)
	s.save(ctx, session, cart)
	return cart
}

// Clear empties the cart and forgets the session's voucher state.
func (s *CartService) Clear(ctx context.Context, session string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.Remove(ctx, storage.CartKey(session))
	delete(s.vouchers, session)
}

// TakeForCheckout prices the cart and empties it in one step, so lines
// added while the order is being placed start a new cart.
func (s *CartService) TakeForCheckout(ctx context.Context, session string) Quote {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.quote(s.load(ctx, session), s.vouchers[session])
	s.store.Remove(ctx, storage.CartKey(session))
	delete(s.vouchers, session)
	return q
}

// ApplyVoucher evaluates code against the current subtotal. On success it
// replaces any applied voucher; on failure the previous voucher stays and
// the rejection is held until the next apply or removal.
func (s *CartService) ApplyVoucher(ctx context.Context, session, code string) (Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart := s.load(ctx, session)
	st := s.vouchers[session]
	applied, err := EvaluateVoucher(code, cart.Subtotal())
	if err != nil {
		st.rejection = err.Error()
		s.vouchers[session] = st
		return s.quote(cart, st), err
	}
	st = voucherState{code: applied.Code}
	s.vouchers[session] = st
	s.log.Debug("voucher applied", zap.String("session", session), zap.String("code", applied.Code))
	return s.quote(cart, st), nil
}

func (s *CartService) RemoveVoucher(ctx context.Context, session string) Quote {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.vouchers, session)
	return s.quote(s.load(ctx, session), voucherState{})
}

func (s *CartService) Quote(ctx context.Context, session string) Quote {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quote(s.load(ctx, session), s.vouchers[session])
}

func (s *CartService) quote(cart Cart, st voucherState) Quote {
	q := PriceCart(cart, st.code)
	if st.rejection != "" {
		q.VoucherError = st.rejection
	}
	return q
}
