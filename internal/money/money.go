// Package money formats display-unit amounts for user-facing messages.
package money

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var idPrinter = message.NewPrinter(language.Indonesian)

// FormatIDR renders a whole-rupiah amount with Indonesian digit grouping, e.g. "Rp 15.000".
func FormatIDR(amount int64) string {
	if amount < 0 {
		return "-Rp " + idPrinter.Sprintf("%d", -amount)
	}
	return "Rp " + idPrinter.Sprintf("%d", amount)
}

// Format renders amount in the given currency. Only IDR has locale grouping;
// other currencies fall back to "<CODE> <amount>".
func Format(currency string, amount int64) string {
	code := strings.ToUpper(currency)
	if code == "IDR" {
		return FormatIDR(amount)
	}
	return code + " " + message.NewPrinter(language.English).Sprintf("%d", amount)
}
