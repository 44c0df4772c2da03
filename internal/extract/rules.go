package extract

import (
	"regexp"

	"github.com/cleared-dev/smsledger/internal/model"
)

// Amount numerals accept optional thousands separators (western or Indian
// grouping) and zero, one or two decimal digits.
const numeral = `(\d[\d,]*(?:\.\d{1,2})?)`

const monthNames = `(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*`

// DefaultRules returns the built-in extraction rules in priority order.
func DefaultRules() []Rule {
	noBalance := []model.FieldKind{model.FieldBalance}
	return []Rule{
		// Balance first so that amount rules can step around it.
		{
			Name:    "balance_phrase",
			Kind:    model.FieldBalance,
			Pattern: regexp.MustCompile(`(?i)\b(?:avl\.?|avbl\.?|available|clear|closing)?\s*bal(?:ance)?\.?\s*(?:is|:|-)?\s*(?:rs\.?|inr|₹)?\s*:?\s*` + numeral),
			Parse:   parseDecimalGroup(1),
		},

		{
			Name:    "currency_prefix",
			Kind:    model.FieldAmount,
			Pattern: regexp.MustCompile(`(?i)(?:\b(?:rs|inr)\.?|₹)\s*` + numeral),
			Parse:   parseDecimalGroup(1),
			Exclude: noBalance,
		},
		{
			Name:    "currency_suffix",
			Kind:    model.FieldAmount,
			Pattern: regexp.MustCompile(`(?i)\b` + numeral + `\s*(?:rs\b|inr\b|rupees\b|/-)`),
			Parse:   parseDecimalGroup(1),
			Exclude: noBalance,
		},
		{
			Name:    "amount_keyword",
			Kind:    model.FieldAmount,
			Pattern: regexp.MustCompile(`(?i)\b(?:amt|amount)\s*(?:of)?\s*[:=]?\s*` + numeral),
			Parse:   parseDecimalGroup(1),
			Exclude: noBalance,
		},
		{
			Name:    "verb_decimal",
			Kind:    model.FieldAmount,
			Pattern: regexp.MustCompile(`(?i)\b(?:debited|credited|paid|spent|received|withdrawn)\s+(?:by|with|for|of)\s+(\d[\d,]*\.\d{1,2})\b`),
			Parse:   parseDecimalGroup(1),
			Exclude: noBalance,
		},

		{
			Name:    "direction_keyword",
			Kind:    model.FieldDirection,
			Pattern: regexp.MustCompile(`(?i)\b(debited|debit|spent|paid|sent|withdrawn|withdrawal|purchased|purchase|credited|credit|received|deposited|refunded|refund)\b`),
			Parse:   parseDirectionKeyword,
		},
		{
			Name:    "direction_abbrev",
			Kind:    model.FieldDirection,
			Pattern: regexp.MustCompile(`(?i)\b(dr|cr)\b\.?`),
			Parse:   parseDirectionAbbrev,
		},

		{
			Name:    "date_iso",
			Kind:    model.FieldDate,
			Pattern: regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`),
			Parse:   parseISODate,
		},
		{
			Name:    "date_dd_mon_yy",
			Kind:    model.FieldDate,
			Pattern: regexp.MustCompile(`(?i)\b(\d{1,2})[-\s/]?` + monthNames + `[-\s/,]+(\d{4}|\d{2})\b`),
			Parse:   parseDayMonthNameYear,
		},
		{
			Name:    "date_dd_mm_yy",
			Kind:    model.FieldDate,
			Pattern: regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})[/-](\d{4}|\d{2})\b`),
			Parse:   parseNumericDate,
		},
		{
			Name:    "date_dd_mon",
			Kind:    model.FieldDate,
			Pattern: regexp.MustCompile(`(?i)\b(\d{1,2})[-\s]?` + monthNames + `\b`),
			Parse:   parseDayMonthName,
		},

		{
			Name:    "upi_handle",
			Kind:    model.FieldUPI,
			Pattern: regexp.MustCompile(`(?i)\b([a-z0-9][a-z0-9._-]{1,255})@([a-z][a-z0-9]{1,63})\b`),
			Parse:   parseUPI,
		},

		{
			Name:    "upi_numeric_handle",
			Kind:    model.FieldMobile,
			Pattern: regexp.MustCompile(`(?i)(?:^|[^\w.-])(\d{10})@[a-z][a-z0-9]{1,63}\b`),
			Parse:   parseMobile,
		},
		{
			Name:    "standalone_mobile",
			Kind:    model.FieldMobile,
			Pattern: regexp.MustCompile(`(?:^|[^\w+])(?:\+?91[-\s]?|0)?([6-9]\d{9})(?:[^\d@]|$)`),
			Parse:   parseMobile,
		},

		{
			Name:    "merchant_phrase",
			Kind:    model.FieldMerchantPhrase,
			Pattern: phraseLead,
			Parse:   parseMerchantPhrase,
		},
	}
}
