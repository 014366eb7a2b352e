package models

import "encoding/json"

type ServiceMode string

const (
	DineIn  ServiceMode = "dine-in"
	TakeOut ServiceMode = "take-out"
)

func (s ServiceMode) Valid() bool { return s == DineIn || s == TakeOut }

type PaymentMethod string

const (
	PaymentCard   PaymentMethod = "card"
	PaymentCash   PaymentMethod = "cash"
	PaymentWallet PaymentMethod = "wallet"
)

func (p PaymentMethod) Valid() bool {
	return p == PaymentCard || p == PaymentCash || p == PaymentWallet
}

// CartLine is a snapshot of a menu item plus a quantity (>= 1).
type CartLine struct {
	Item     MenuItem
	Quantity int
}

// UnitPrice is the price captured when the line was added.
func (l CartLine) UnitPrice() float64 { return l.Item.Price.Effective() }

type cartLineWire struct {
	menuItemWire
	Quantity int `json:"quantity"`
}

func (l CartLine) MarshalJSON() ([]byte, error) {
	return json.Marshal(cartLineWire{menuItemWire: l.Item.wire(), Quantity: l.Quantity})
}

func (l *CartLine) UnmarshalJSON(b []byte) error {
	var w cartLineWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	l.Item = w.menuItemWire.item()
	l.Quantity = w.Quantity
	return nil
}

// Order is immutable once placed.
type Order struct {
	ID            string        `json:"id"`
	Date          string        `json:"date"`
	Items         []CartLine    `json:"items"`
	Subtotal      float64       `json:"subtotal,omitempty"`
	Discount      float64       `json:"discount,omitempty"`
	VoucherCode   string        `json:"voucherCode,omitempty"`
	TotalPrice    float64       `json:"totalPrice"`
	ServiceMode   ServiceMode   `json:"serviceMode"`
	PaymentMethod PaymentMethod `json:"paymentMethod,omitempty"`
	QueueNumber   int           `json:"queueNumber"`
	Session       string        `json:"session,omitempty"`
}

// ItemCount is the number of units across all lines.
func (o Order) ItemCount() int {
	n := 0
	for _, l := range o.Items {
		n += l.Quantity
	}
	return n
}

type ExpenseCategory string

const (
	ExpenseMaterials  ExpenseCategory = "materials"
	ExpenseOperations ExpenseCategory = "operations"
)

type ExpenseEntry struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Amount      float64         `json:"amount"`
	Category    ExpenseCategory `json:"category"`
	Date        string          `json:"date"`
}

type DailyStats struct {
	Date         string  `json:"date"`
	OrdersCount  int     `json:"ordersCount"`
	ItemsSold    int     `json:"itemsSold"`
	Revenue      float64 `json:"revenue"`
	DineInCount  int     `json:"dineInCount"`
	TakeOutCount int     `json:"takeOutCount"`
}
