package services

import (
	"fmt"
	"strings"

	"cafe-storefront/models"

	"github.com/shopspring/decimal"
)

// OrderCardButton is one inline button (text + callback_data or url).
type OrderCardButton struct {
	Text         string
	CallbackData string
	URL          string // if set, use as URL button instead of callback
}

// OrderCardContent is the text and optional inline keyboard for a card.
type OrderCardContent struct {
	Text    string
	Buttons [][]OrderCardButton
}

// Callback data prefixes shared by the cards and the bot.
const (
	CbCartInc       = "cart_inc:"
	CbCartDec       = "cart_dec:"
	CbCartRemove    = "cart_rm:"
	CbCartClear     = "cart_clear"
	CbVoucherRemove = "voucher_rm"
	CbCheckout      = "checkout"
	CbServiceMode   = "mode:"
	CbReorder       = "reorder:"
	CbTrack         = "track:"
)

func peso(v float64) string { return FormatPeso(decimal.NewFromFloat(v)) }

// BuildCartCard renders a quote with per-line quantity buttons. Lines are
// addressed by item id.
func BuildCartCard(q Quote) OrderCardContent {
	if len(q.Lines) == 0 {
		text := "🧺 Your order is empty."
		if q.VoucherError != "" {
			text += "\n\n⚠️ " + q.VoucherError
		}
		return OrderCardContent{Text: text}
	}
	var b strings.Builder
	b.WriteString("🧺 Your order\n\n")
	var buttons [][]OrderCardButton
	for _, l := range q.Lines {
		fmt.Fprintf(&b, "%dx %s  %s\n", l.Quantity, l.Item.Name, peso(l.UnitPrice()*float64(l.Quantity)))
		id := l.Item.ID
		buttons = append(buttons, []OrderCardButton{
			{Text: "➖", CallbackData: CbCartDec + id},
			{Text: l.Item.Name, CallbackData: CbCartRemove + id},
			{Text: "➕", CallbackData: CbCartInc + id},
		})
	}
	fmt.Fprintf(&b, "\nSubtotal: %s\n", FormatPeso(q.Subtotal))
	if q.VoucherCode != "" {
		fmt.Fprintf(&b, "Discount (%s): -%s\n", q.VoucherCode, FormatPeso(q.Discount))
	}
	fmt.Fprintf(&b, "Total: %s", FormatPeso(q.Total))
	if q.VoucherError != "" {
		b.WriteString("\n\n⚠️ " + q.VoucherError)
	}

	last := []OrderCardButton{{Text: "🗑 Clear", CallbackData: CbCartClear}}
	if q.VoucherCode != "" {
		last = append(last, OrderCardButton{Text: "✖️ " + q.VoucherCode, CallbackData: CbVoucherRemove})
	}
	last = append(last, OrderCardButton{Text: "✅ Checkout", CallbackData: CbCheckout})
	buttons = append(buttons, last)
	return OrderCardContent{Text: b.String(), Buttons: buttons}
}

// BuildServiceModeCard asks how the order will be served.
func BuildServiceModeCard(q Quote) OrderCardContent {
	return OrderCardContent{
		Text: fmt.Sprintf("Total: %s\nDine in or take out?", FormatPeso(q.Total)),
		Buttons: [][]OrderCardButton{{
			{Text: "🍽 Dine-in", CallbackData: CbServiceMode + string(models.DineIn)},
			{Text: "🥡 Take-out", CallbackData: CbServiceMode + string(models.TakeOut)},
		}},
	}
}

func orderLines(b *strings.Builder, o models.Order) {
	for _, l := range o.Items {
		fmt.Fprintf(b, "%dx %s\n", l.Quantity, l.Item.Name)
	}
	if o.Discount > 0 {
		fmt.Fprintf(b, "Discount (%s): -%s\n", o.VoucherCode, peso(o.Discount))
	}
	fmt.Fprintf(b, "Total: %s\n", peso(o.TotalPrice))
}

// BuildCustomerCard shows an order with its tracker stage, if known, and
// a reorder button. receiptURL adds a download button when set.
func BuildCustomerCard(o models.Order, stage *StageUpdate, receiptURL string) OrderCardContent {
	var b strings.Builder
	fmt.Fprintf(&b, "🎟 Queue #%d (%s)\n%s\n\n", o.QueueNumber, o.ServiceMode, o.Date)
	orderLines(&b, o)
	if stage != nil {
		fmt.Fprintf(&b, "\nStep %d/4: %s", stage.Step, stage.Title)
	}
	row := []OrderCardButton{{Text: "🔁 Order again", CallbackData: CbReorder + o.ID}}
	if stage != nil && !stage.Final {
		row = append(row, OrderCardButton{Text: "🦉 Refresh", CallbackData: CbTrack + o.ID})
	}
	buttons := [][]OrderCardButton{row}
	if receiptURL != "" {
		buttons = append(buttons, []OrderCardButton{{Text: "🧾 Receipt", URL: receiptURL}})
	}
	return OrderCardContent{Text: b.String(), Buttons: buttons}
}

// BuildAdminCard is the notification sent to the operator for a new order.
func BuildAdminCard(o models.Order) OrderCardContent {
	var b strings.Builder
	fmt.Fprintf(&b, "🆕 Order %s\nQueue #%d, %s", o.ID, o.QueueNumber, o.ServiceMode)
	if o.PaymentMethod != "" {
		fmt.Fprintf(&b, ", %s", o.PaymentMethod)
	}
	b.WriteString("\n\n")
	orderLines(&b, o)
	return OrderCardContent{Text: b.String()}
}
