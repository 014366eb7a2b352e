package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestEvaluateVoucher(t *testing.T) {
	tests := []struct {
		code         string
		subtotal     int64
		wantDiscount string
		wantTotal    string
		wantReason   RejectionReason
	}{
		{"BREW10", 150, "15.00", "135.00", 0},
		{"brew10", 150, "15.00", "135.00", 0},
		{"BREW10", 80, "", "", BelowMinimum},
		{"FIRST50", 250, "50.00", "200.00", 0},
		{"FIRST50", 199, "", "", BelowMinimum},
		{"MAGIC20", 500, "100.00", "400.00", 0},
		{"MAGIC20", 499, "", "", BelowMinimum},
		{"NOPE", 1000, "", "", InvalidCode},
		{"", 1000, "", "", InvalidCode},
	}
	for _, tt := range tests {
		subtotal := decimal.NewFromInt(tt.subtotal)
		got, err := EvaluateVoucher(tt.code, subtotal)
		if tt.wantReason != 0 {
			var ve *VoucherError
			if !errors.As(err, &ve) || ve.Reason != tt.wantReason {
				t.Errorf("EvaluateVoucher(%q, %d) err = %v, want reason %d", tt.code, tt.subtotal, err, tt.wantReason)
			}
			continue
		}
		if err != nil {
			t.Errorf("EvaluateVoucher(%q, %d) err = %v", tt.code, tt.subtotal, err)
			continue
		}
		if got.Discount.StringFixed(2) != tt.wantDiscount {
			t.Errorf("EvaluateVoucher(%q, %d) discount = %s, want %s", tt.code, tt.subtotal, got.Discount.StringFixed(2), tt.wantDiscount)
		}
		if total := subtotal.Sub(got.Discount).StringFixed(2); total != tt.wantTotal {
			t.Errorf("EvaluateVoucher(%q, %d) total = %s, want %s", tt.code, tt.subtotal, total, tt.wantTotal)
		}
	}
}

func TestVoucherMessages(t *testing.T) {
	_, err := EvaluateVoucher("BREW10", decimal.NewFromInt(80))
	if err == nil || !strings.Contains(err.Error(), "100") {
		t.Errorf("below-minimum message %v should mention 100", err)
	}
	_, err = EvaluateVoucher("XYZ", decimal.NewFromInt(80))
	if err == nil || err.Error() != ErrMsgInvalidVoucher {
		t.Errorf("invalid code message = %v", err)
	}
}

func TestFixedDiscountNeverExceedsSubtotal(t *testing.T) {
	saved := voucherRules
	defer func() { voucherRules = saved }()
	voucherRules = append(voucherRules, VoucherRule{Code: "BIG", Discount: decimal.NewFromInt(500), MinOrder: decimal.Zero, Fixed: true})

	got, err := EvaluateVoucher("BIG", decimal.NewFromInt(120))
	if err != nil {
		t.Fatal(err)
	}
	if !got.Discount.Equal(decimal.NewFromInt(120)) {
		t.Errorf("discount = %s, want capped at 120", got.Discount)
	}
}

func TestApplyVoucherKeepsPreviousOnRejection(t *testing.T) {
	env := newTestEnv(t)
	carts := env.cafe.Carts
	_, _ = carts.AddItem(env.ctx, "s", item("a", "A", 150), 1)

	q, err := carts.ApplyVoucher(env.ctx, "s", "brew10")
	if err != nil {
		t.Fatal(err)
	}
	if q.VoucherCode != "BREW10" || q.Total.StringFixed(2) != "135.00" {
		t.Fatalf("quote = %+v", q)
	}

	q, err = carts.ApplyVoucher(env.ctx, "s", "MAGIC20")
	if err == nil {
		t.Fatal("MAGIC20 accepted below minimum")
	}
	if q.VoucherCode != "BREW10" {
		t.Errorf("applied voucher = %q, want BREW10 kept", q.VoucherCode)
	}
	if !strings.Contains(q.VoucherError, "500") {
		t.Errorf("VoucherError = %q, want minimum message", q.VoucherError)
	}

	q = carts.RemoveVoucher(env.ctx, "s")
	if q.VoucherCode != "" || q.VoucherError != "" || !q.Total.Equal(q.Subtotal) {
		t.Errorf("after RemoveVoucher quote = %+v", q)
	}
}

func TestAppliedVoucherRecheckedOnQuote(t *testing.T) {
	env := newTestEnv(t)
	carts := env.cafe.Carts
	_, _ = carts.AddItem(env.ctx, "s", item("a", "A", 125), 2)
	if _, err := carts.ApplyVoucher(env.ctx, "s", "FIRST50"); err != nil {
		t.Fatal(err)
	}
	carts.UpdateQuantity(env.ctx, "s", "A", 1)

	q := carts.Quote(env.ctx, "s")
	if !q.Discount.IsZero() || !q.Total.Equal(decimal.NewFromInt(125)) {
		t.Errorf("quote below minimum = discount %s total %s", q.Discount, q.Total)
	}
	if !strings.Contains(q.VoucherError, "200") {
		t.Errorf("VoucherError = %q", q.VoucherError)
	}
}

func TestFormatPeso(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "₱0.00"},
		{"135", "₱135.00"},
		{"1234.5", "₱1,234.50"},
		{"1000000", "₱1,000,000.00"},
		{"-50", "-₱50.00"},
	}
	for _, tt := range tests {
		if got := FormatPeso(decimal.RequireFromString(tt.in)); got != tt.want {
			t.Errorf("FormatPeso(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
