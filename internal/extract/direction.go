package extract

import (
	"strings"
	"time"

	"github.com/cleared-dev/smsledger/internal/model"
)

func parseDirectionKeyword(text string, loc []int, _ time.Time) (Value, bool) {
	kw := strings.ToLower(group(text, loc, 1))
	rest := strings.ToLower(strings.TrimLeft(after(text, loc), " "))
	switch kw {
	case "credit", "debit":
		// "Credit Card XX1234" names an instrument, not a direction.
		if strings.HasPrefix(rest, "card") {
			return Value{}, false
		}
	}
	switch kw {
	case "credited", "credit", "received", "deposited", "refunded", "refund":
		return Value{Direction: model.DirectionCredit}, true
	default:
		return Value{Direction: model.DirectionDebit}, true
	}
}

func parseDirectionAbbrev(text string, loc []int, _ time.Time) (Value, bool) {
	if strings.EqualFold(group(text, loc, 1), "cr") {
		return Value{Direction: model.DirectionCredit}, true
	}
	return Value{Direction: model.DirectionDebit}, true
}
