package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction is the money movement direction as stated by the message.
type Direction string

const (
	DirectionDebit  Direction = "debit"
	DirectionCredit Direction = "credit"
)

// Type maps a direction onto the record type. Anything that is not a credit is an expense.
func (d Direction) Type() TransactionType {
	if d == DirectionCredit {
		return TypeIncome
	}
	return TypeExpense
}

// FieldKind identifies what an extraction rule produces.
type FieldKind string

const (
	FieldAmount         FieldKind = "amount"
	FieldDirection      FieldKind = "direction"
	FieldDate           FieldKind = "date"
	FieldUPI            FieldKind = "upi"
	FieldMobile         FieldKind = "mobile"
	FieldBalance        FieldKind = "balance"
	FieldMerchantPhrase FieldKind = "merchant_phrase"
)

// ExtractedFields holds everything the extractor pulled out of a message body.
// Rules records the name of the rule that produced each field; a field is
// present only if it has an entry there.
type ExtractedFields struct {
	Amount         decimal.Decimal
	Direction      Direction
	Date           time.Time
	UPIID          string
	MobileNumber   string
	BalanceAfter   *decimal.Decimal
	MerchantPhrase string

	Rules map[FieldKind]string
}

// Has reports whether a field of the given kind was extracted.
func (f ExtractedFields) Has(kind FieldKind) bool {
	_, ok := f.Rules[kind]
	return ok
}

// Rule returns the name of the rule that matched kind, or "".
func (f ExtractedFields) Rule(kind FieldKind) string {
	return f.Rules[kind]
}

// Set stores the rule name for kind.
func (f *ExtractedFields) Set(kind FieldKind, rule string) {
	if f.Rules == nil {
		f.Rules = make(map[FieldKind]string)
	}
	f.Rules[kind] = rule
}
