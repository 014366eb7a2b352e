package services

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// VoucherRule is one row of the static voucher table. Discount is a
// fraction of the subtotal unless Fixed is set, in which case it is an
// amount in pesos.
type VoucherRule struct {
	Code     string
	Discount decimal.Decimal
	MinOrder decimal.Decimal
	Fixed    bool
}

var voucherRules = []VoucherRule{
	{Code: "BREW10", Discount: decimal.RequireFromString("0.10"), MinOrder: decimal.NewFromInt(100)},
	{Code: "MAGIC20", Discount: decimal.RequireFromString("0.20"), MinOrder: decimal.NewFromInt(500)},
	{Code: "FIRST50", Discount: decimal.NewFromInt(50), MinOrder: decimal.NewFromInt(200), Fixed: true},
}

// LookupVoucher finds a rule by code, ignoring case and surrounding space.
func LookupVoucher(code string) (VoucherRule, bool) {
	code = strings.TrimSpace(code)
	for _, r := range voucherRules {
		if strings.EqualFold(r.Code, code) {
			return r, true
		}
	}
	return VoucherRule{}, false
}

type RejectionReason int

const (
	InvalidCode RejectionReason = iota + 1
	BelowMinimum
)

type VoucherError struct {
	Reason  RejectionReason
	Code    string
	Minimum decimal.Decimal // set for BelowMinimum
}

func (e *VoucherError) Error() string {
	if e.Reason == BelowMinimum {
		return fmt.Sprintf("Minimum order of ₱%s required", e.Minimum.String())
	}
	return ErrMsgInvalidVoucher
}

type AppliedVoucher struct {
	Code     string
	Discount decimal.Decimal
}

// EvaluateVoucher applies code to subtotal. A fixed discount never
// exceeds the subtotal, so totals cannot go negative.
func EvaluateVoucher(code string, subtotal decimal.Decimal) (AppliedVoucher, error) {
	rule, ok := LookupVoucher(code)
	if !ok {
		return AppliedVoucher{}, &VoucherError{Reason: InvalidCode, Code: code}
	}
	if subtotal.LessThan(rule.MinOrder) {
		return AppliedVoucher{}, &VoucherError{Reason: BelowMinimum, Code: rule.Code, Minimum: rule.MinOrder}
	}
	discount := rule.Discount
	if !rule.Fixed {
		discount = subtotal.Mul(rule.Discount).Round(2)
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	return AppliedVoucher{Code: rule.Code, Discount: discount}, nil
}
