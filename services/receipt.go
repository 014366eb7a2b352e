package services

import (
	"bytes"
	"fmt"
	"strings"

	"cafe-storefront/models"

	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"
)

// ReceiptQRPayload is what the receipt's QR code encodes.
func ReceiptQRPayload(o models.Order) string {
	return fmt.Sprintf("order|%s|queue|%d|total|%.2f", o.ID, o.QueueNumber, o.TotalPrice)
}

// pdfMoney avoids the peso sign, which the core PDF fonts cannot draw.
func pdfMoney(v float64) string {
	return "PHP " + strings.TrimPrefix(FormatPeso(decimal.NewFromFloat(v)), "₱")
}

// RenderReceipt produces a one-page PDF receipt with a QR code.
func RenderReceipt(o models.Order, cafeName string) ([]byte, error) {
	qrPNG, err := qrcode.Encode(ReceiptQRPayload(o), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 10, tr(cafeName))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 8, fmt.Sprintf("Queue #%d", o.QueueNumber))
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 6, "Order: "+o.ID)
	pdf.Ln(6)
	pdf.Cell(0, 6, "Date: "+o.Date)
	pdf.Ln(6)
	pdf.Cell(0, 6, "Service: "+string(o.ServiceMode))
	pdf.Ln(6)
	if o.PaymentMethod != "" {
		pdf.Cell(0, 6, "Payment: "+string(o.PaymentMethod))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(100, 7, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(20, 7, "Qty", "B", 0, "R", false, 0, "")
	pdf.CellFormat(40, 7, "Amount", "B", 1, "R", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	for _, l := range o.Items {
		amount := decimal.NewFromFloat(l.UnitPrice()).Mul(decimal.NewFromInt(int64(l.Quantity)))
		pdf.CellFormat(100, 7, tr(l.Item.Name), "", 0, "L", false, 0, "")
		pdf.CellFormat(20, 7, fmt.Sprintf("%d", l.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 7, pdfMoney(Money(amount)), "", 1, "R", false, 0, "")
	}
	pdf.Ln(3)

	if o.Discount > 0 {
		pdf.CellFormat(120, 7, "Subtotal", "T", 0, "R", false, 0, "")
		pdf.CellFormat(40, 7, pdfMoney(o.Subtotal), "T", 1, "R", false, 0, "")
		pdf.CellFormat(120, 7, fmt.Sprintf("Discount (%s)", o.VoucherCode), "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 7, "-"+pdfMoney(o.Discount), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(120, 8, "Total", "T", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, pdfMoney(o.TotalPrice), "T", 1, "R", false, 0, "")

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 20, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return buf.Bytes(), nil
}

// ReceiptFileName is the download name for an order's receipt.
func ReceiptFileName(o models.Order) string {
	return fmt.Sprintf("receipt-%d-%s.pdf", o.QueueNumber, o.ID)
}
