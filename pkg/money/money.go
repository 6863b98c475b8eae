// Package money handles whole-dollar amounts and their display formatting.
// OTD figures are compared and negotiated in whole dollars; cents never
// appear on a dealer worksheet.
package money

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Amount is a whole-dollar figure.
type Amount = int64

var printer = message.NewPrinter(language.AmericanEnglish)

// Format renders an amount with a dollar sign and comma grouping, e.g. 26800
// becomes "$26,800".
func Format(amount Amount) string {
	return printer.Sprintf("$%d", amount)
}

// FormatBare renders an amount with comma grouping but no dollar sign.
func FormatBare(amount Amount) string {
	return printer.Sprintf("%d", amount)
}
