// Package score computes a transaction's aggregate confidence from which
// fields were found.
package score

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/smsledger/internal/model"
)

// Component weights. They sum to one.
var (
	WeightAmount    = decimal.RequireFromString("0.30")
	WeightDirection = decimal.RequireFromString("0.20")
	WeightMerchant  = decimal.RequireFromString("0.20")
	WeightDate      = decimal.RequireFromString("0.15")
	WeightBalance   = decimal.RequireFromString("0.10")
	WeightCategory  = decimal.RequireFromString("0.05")
)

// Breakdown is the per-component contribution of one score.
type Breakdown struct {
	Amount    decimal.Decimal
	Direction decimal.Decimal
	Merchant  decimal.Decimal
	Date      decimal.Decimal
	Balance   decimal.Decimal
	Category  decimal.Decimal
}

// Total sums the components.
func (b Breakdown) Total() decimal.Decimal {
	return decimal.Sum(b.Amount, b.Direction, b.Merchant, b.Date, b.Balance, b.Category)
}

// Explain returns each component's contribution. A component counts in
// full when its field was extracted or resolved and not at all otherwise.
// The date counts only when it came from the message, not the fallback.
func Explain(fields model.ExtractedFields, merchant model.MerchantIdentity, category model.Category) Breakdown {
	return Breakdown{
		Amount:    weight(fields.Has(model.FieldAmount) && fields.Amount.IsPositive(), WeightAmount),
		Direction: weight(fields.Has(model.FieldDirection), WeightDirection),
		Merchant:  weight(merchant.Resolved(), WeightMerchant),
		Date:      weight(fields.Has(model.FieldDate), WeightDate),
		Balance:   weight(fields.Has(model.FieldBalance) && fields.BalanceAfter != nil, WeightBalance),
		Category:  weight(category.Matched, WeightCategory),
	}
}

// Score returns the aggregate confidence in [0, 1].
func Score(fields model.ExtractedFields, merchant model.MerchantIdentity, category model.Category) float64 {
	return Explain(fields, merchant, category).Total().InexactFloat64()
}

func weight(present bool, w decimal.Decimal) decimal.Decimal {
	if present {
		return w
	}
	return decimal.Zero
}
