package cli

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var rupiahPrinter = message.NewPrinter(language.Indonesian)

// Rupiah formats an amount the way the app displays prices: "Rp45.000".
// Fractional amounts keep two decimals ("Rp12.500,50").
func Rupiah(d decimal.Decimal) string {
	if d.IsInteger() {
		return rupiahPrinter.Sprintf("Rp%d", d.IntPart())
	}
	return rupiahPrinter.Sprintf("Rp%.2f", d.Round(2).InexactFloat64())
}
