package services

import (
	"cafe-storefront/models"

	"github.com/shopspring/decimal"
)

// Quote is a priced cart.
type Quote struct {
	Lines        []models.CartLine
	ItemCount    int
	Subtotal     decimal.Decimal
	Discount     decimal.Decimal
	Total        decimal.Decimal
	VoucherCode  string // applied voucher, if any
	VoucherError string // pending rejection message, if any
}

// PriceCart quotes cart with the voucher code applied (empty for none).
// An applied voucher that no longer qualifies contributes no discount
// and its rejection is reported in VoucherError.
func PriceCart(cart Cart, voucherCode string) Quote {
	q := Quote{
		Lines:     cart.Lines,
		ItemCount: cart.TotalItems(),
		Subtotal:  cart.Subtotal(),
	}
	q.Total = q.Subtotal
	if voucherCode == "" {
		return q
	}
	applied, err := EvaluateVoucher(voucherCode, q.Subtotal)
	if err != nil {
		q.VoucherError = err.Error()
		return q
	}
	q.VoucherCode = applied.Code
	q.Discount = applied.Discount
	q.Total = q.Subtotal.Sub(applied.Discount)
	return q
}

// Money converts an amount for storage in an order record.
func Money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// FormatPeso renders an amount as ₱1,234.50.
func FormatPeso(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	whole, frac := s[:len(s)-3], s[len(s)-3:]
	var b []byte
	for i := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b = append(b, ',')
		}
		b = append(b, whole[i])
	}
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	return sign + "₱" + string(b) + frac
}
