// Package receipt renders bill text for sharing with customers over WhatsApp.
package receipt

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidPhone is returned when a phone number has fewer than ten digits
// after stripping formatting.
var ErrInvalidPhone = errors.New("phone number must have at least 10 digits including country code")

// Line is a single billed line on the receipt.
type Line struct {
	Name     string
	Quantity int32
	Price    decimal.Decimal
}

// Bill carries everything needed to render a receipt.
type Bill struct {
	CafeName     string
	OrderID      string
	TableNumber  string // empty for parcel orders
	Lines        []Line
	Subtotal     decimal.Decimal
	OfferPercent int
	Discount     decimal.Decimal
	ParcelCharge decimal.Decimal
	Total        decimal.Decimal
	IssuedAt     time.Time
}

// FormatBill renders the bill as WhatsApp-flavored text. The caller supplies
// IssuedAt so the output is deterministic.
func FormatBill(b Bill) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "*%s*\n", b.CafeName)
	fmt.Fprintf(&sb, "📅 Date: %s %s\n", b.IssuedAt.Format("02/01/2006"), b.IssuedAt.Format("3:04:05 PM"))
	fmt.Fprintf(&sb, "📋 Order #%s\n", shortID(b.OrderID))
	if b.TableNumber != "" {
		fmt.Fprintf(&sb, "🪑 Table: %s\n\n", b.TableNumber)
	} else {
		sb.WriteString("🛍️ Parcel\n\n")
	}

	sb.WriteString("*Items:*\n")
	for _, line := range b.Lines {
		lineTotal := line.Price.Mul(decimal.NewFromInt32(line.Quantity))
		fmt.Fprintf(&sb, "%d × %s — ₹%s\n", line.Quantity, line.Name, money(lineTotal))
	}

	sb.WriteString("\n─────────────────\n")
	fmt.Fprintf(&sb, "Subtotal: ₹%s\n", money(b.Subtotal))
	if b.OfferPercent > 0 {
		fmt.Fprintf(&sb, "Discount (%d%%): -₹%s\n", b.OfferPercent, money(b.Discount))
	}
	if b.ParcelCharge.IsPositive() {
		fmt.Fprintf(&sb, "Parcel Charge: ₹%s\n", money(b.ParcelCharge))
	}
	fmt.Fprintf(&sb, "*Total Payable: ₹%s*\n\n", money(b.Total))

	sb.WriteString("Thank you for visiting! ☕\n")
	sb.WriteString("Hope to see you again soon!")

	return sb.String()
}

// CleanPhone strips everything but digits and validates the length.
func CleanPhone(phone string) (string, error) {
	var sb strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	clean := sb.String()
	if len(clean) < 10 {
		return "", ErrInvalidPhone
	}
	return clean, nil
}

// WhatsAppLink builds a wa.me URL opening a chat with the bill text prefilled.
// The phone must already be cleaned. Spaces are percent-encoded, not "+",
// since wa.me renders "+" literally.
func WhatsAppLink(cleanPhone, text string) string {
	encoded := strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
	return "https://wa.me/" + cleanPhone + "?text=" + encoded
}

// shortID shows the first six characters of the order id, matching what staff
// read out to customers.
func shortID(id string) string {
	if len(id) > 6 {
		return id[:6]
	}
	return id
}

// money renders amounts without trailing zeros for whole rupees.
func money(d decimal.Decimal) string {
	if d.IsInteger() {
		return d.StringFixed(0)
	}
	return d.StringFixed(2)
}
