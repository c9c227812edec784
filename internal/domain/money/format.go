package money

import (
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.German)

// FormatEUR renders an amount the way it appears on documents: two decimals,
// German grouping and separator, trailing euro sign ("1.380,00 €").
func FormatEUR(amount float64) string {
	return printer.Sprintf("%.2f €", Round(amount))
}

// FormatNumber renders a plain decimal with German separators and at most
// two fraction digits ("2,5", "60").
func FormatNumber(v float64) string {
	if v == math.Trunc(v) {
		return printer.Sprintf("%d", int64(v))
	}
	s := printer.Sprintf("%.2f", Round(v))
	return strings.TrimRight(strings.TrimRight(s, "0"), ",")
}

// Round rounds half away from zero to cents.
func Round(amount float64) float64 {
	return math.Round(amount*100) / 100
}
