package id

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PrefixRunes is how much of the description takes part in the dedup key.
const PrefixRunes = 15

// NewRunID returns a fresh identifier for one batch run.
func NewRunID() string {
	return uuid.NewString()
}

// CollapseSpace trims s and reduces every whitespace run to one space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// DescriptionPrefix returns the first PrefixRunes runes of the lowercased,
// whitespace-collapsed description.
func DescriptionPrefix(description string) string {
	s := strings.ToLower(CollapseSpace(description))
	if utf8.RuneCountInString(s) <= PrefixRunes {
		return s
	}
	return string([]rune(s)[:PrefixRunes])
}

// DedupKey hashes "2026-02-15|100.50|rs.100.5 debite" into 16 hex digits.
// Two messages with the same date, amount and description prefix share a key.
func DedupKey(date time.Time, amount decimal.Decimal, description string) string {
	input := date.Format(time.DateOnly) + "|" + amount.StringFixed(2) + "|" + DescriptionPrefix(description)
	return fmt.Sprintf("%016x", xxhash.Sum64String(input))
}
