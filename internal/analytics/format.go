package analytics

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CurrencyPrefix is prepended to every monetary amount
const CurrencyPrefix = "R$ "

// printer renders numbers with grouped thousands, e.g. 1,234.56
var printer = message.NewPrinter(language.AmericanEnglish)

// Currency renders a monetary amount, e.g. "R$ 1,234.56"
func Currency(v float64) string {
	return CurrencyPrefix + printer.Sprintf("%.2f", v)
}

// Rating renders a review score with two decimals
func Rating(v float64) string {
	return printer.Sprintf("%.2f", v)
}

// Days renders a duration in days with one decimal
func Days(v float64) string {
	return printer.Sprintf("%.1f", v)
}

// Percent renders v, already scaled to 0-100, with one decimal
func Percent(v float64) string {
	return printer.Sprintf("%.1f%%", v)
}

// SignedPercent is Percent with an explicit sign
func SignedPercent(v float64) string {
	if v < 0 {
		return "-" + Percent(-v)
	}
	return "+" + Percent(v)
}

// Ratio renders a fraction as a percentage, e.g. 0.4 -> "40.0%"
func Ratio(frac float64) string {
	return Percent(frac * 100)
}

// SignedRatio is Ratio with an explicit sign
func SignedRatio(frac float64) string {
	return SignedPercent(frac * 100)
}

// Integer renders a count with grouped thousands
func Integer(n int) string {
	return printer.Sprintf("%d", n)
}

// Date renders a calendar date as dd/mm/yyyy
func Date(t time.Time) string {
	return t.Format("02/01/2006")
}
