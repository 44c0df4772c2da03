package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the ledger-facing side of a record.
type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// DateFormat is the ISO-8601 calendar date layout used on the wire.
const DateFormat = "2006-01-02"

// TransactionRecord is the final output of the pipeline.
type TransactionRecord struct {
	Date         time.Time
	Amount       decimal.Decimal // always positive, 2 dp
	Type         TransactionType
	Merchant     string // empty when unresolved
	UPIID        string
	MobileNumber string
	Category     string
	Confidence   float64
	DedupKey     string

	Bank        string
	Description string
	ReceivedAt  time.Time
}

// NeedsReview reports whether the record falls below the display threshold.
// It is a presentation hint only.
func (r TransactionRecord) NeedsReview(threshold float64) bool {
	return r.Confidence < threshold
}

// Validate checks the record invariants.
func (r TransactionRecord) Validate() error {
	if !r.Amount.IsPositive() {
		return fmt.Errorf("amount %s must be positive", r.Amount)
	}
	if r.Type != TypeIncome && r.Type != TypeExpense {
		return fmt.Errorf("invalid type %q", r.Type)
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return fmt.Errorf("confidence %v outside [0,1]", r.Confidence)
	}
	if r.DedupKey == "" {
		return fmt.Errorf("missing dedup key")
	}
	return nil
}

type recordJSON struct {
	Date         string      `json:"date"`
	Amount       json.Number `json:"amount"`
	Type         string      `json:"type"`
	Merchant     *string     `json:"merchant"`
	UPIID        *string     `json:"upiId"`
	MobileNumber *string     `json:"mobileNumber"`
	Category     string      `json:"category"`
	Confidence   float64     `json:"confidence"`
	DedupKey     string      `json:"dedupKey"`
}

// MarshalJSON renders the external record shape: nullable strings become
// null and the amount is a bare 2 dp number.
func (r TransactionRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{
		Date:         r.Date.Format(DateFormat),
		Amount:       json.Number(r.Amount.StringFixed(2)),
		Type:         string(r.Type),
		Merchant:     nullable(r.Merchant),
		UPIID:        nullable(r.UPIID),
		MobileNumber: nullable(r.MobileNumber),
		Category:     r.Category,
		Confidence:   r.Confidence,
		DedupKey:     r.DedupKey,
	})
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (r *TransactionRecord) UnmarshalJSON(data []byte) error {
	var w recordJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	date, err := time.Parse(DateFormat, w.Date)
	if err != nil {
		return fmt.Errorf("parsing date %q: %w", w.Date, err)
	}
	amount, err := decimal.NewFromString(w.Amount.String())
	if err != nil {
		return fmt.Errorf("parsing amount %q: %w", w.Amount, err)
	}
	*r = TransactionRecord{
		Date:         date,
		Amount:       amount,
		Type:         TransactionType(w.Type),
		Merchant:     deref(w.Merchant),
		UPIID:        deref(w.UPIID),
		MobileNumber: deref(w.MobileNumber),
		Category:     w.Category,
		Confidence:   w.Confidence,
		DedupKey:     w.DedupKey,
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
