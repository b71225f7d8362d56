package services

import (
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// UPIIntentParams describe one payment the devotee scans and pays
type UPIIntentParams struct {
	VPA       string  // payee virtual payment address
	PayeeName string  // temple display name
	Amount    float64 // rupees
	Note      string  // transaction note, usually the seva name
	TxnRef    string  // merchant transaction reference (receipt tag)
	OrderID   string  // optional gateway order id
}

// BuildUPIIntent renders the deep-link string an external QR renderer
// encodes:
//
//	upi://pay?pa=<vpa>&pn=<payee>&am=<amount>&tn=<note>&cu=INR&tr=<ref>&tid=<order>&mc=0000
//
// Parameter order is fixed; UPI apps are picky about it.
func BuildUPIIntent(p UPIIntentParams) string {
	if p.VPA == "" {
		return ""
	}

	payee := p.PayeeName
	if payee == "" {
		payee = "Temple"
	}
	note := p.Note
	if note == "" {
		note = "Seva Booking"
	}

	amount := decimal.NewFromFloat(p.Amount).String()

	var b strings.Builder
	b.WriteString("upi://pay?pa=")
	b.WriteString(url.QueryEscape(p.VPA))
	b.WriteString("&pn=")
	b.WriteString(url.QueryEscape(payee))
	b.WriteString("&am=")
	b.WriteString(amount)
	b.WriteString("&tn=")
	b.WriteString(url.QueryEscape(note))
	b.WriteString("&cu=INR")
	if p.TxnRef != "" {
		b.WriteString("&tr=")
		b.WriteString(url.QueryEscape(p.TxnRef))
	}
	if p.OrderID != "" {
		b.WriteString("&tid=")
		b.WriteString(url.QueryEscape(p.OrderID))
	}
	b.WriteString("&mc=0000")

	return b.String()
}
