package extract

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func parseDecimalGroup(n int) ParseFunc {
	return func(text string, loc []int, _ time.Time) (Value, bool) {
		d, ok := ParseAmount(group(text, loc, n))
		if !ok {
			return Value{}, false
		}
		return Value{Decimal: d}, true
	}
}

// ParseAmount parses a numeral with optional thousands separators and up to
// two decimal digits into a positive amount rounded to 2 dp.
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimRight(strings.TrimSpace(s), ",.")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d.Round(2), true
}
