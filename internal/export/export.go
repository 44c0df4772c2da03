// Package export writes transaction records for downstream tools.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cleared-dev/smsledger/internal/model"
)

// Format names an output encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat accepts a case-insensitive format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatCSV, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want csv or json)", s)
	}
}

// Write encodes records in the given format. minDisplay only fills the
// CSV review column.
func Write(w io.Writer, f Format, records []model.TransactionRecord, minDisplay float64) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, records, minDisplay)
	case FormatJSON:
		return WriteJSON(w, records)
	default:
		return fmt.Errorf("unknown output format %q", f)
	}
}

const (
	numFields     = 11
	colDate       = 0
	colAmount     = 1
	colType       = 2
	colMerchant   = 3
	colUPIID      = 4
	colMobile     = 5
	colCategory   = 6
	colConfidence = 7
	colDedupKey   = 8
	colBank       = 9
	colReview     = 10
)

var header = []string{
	"date", "amount", "type", "merchant", "upi_id", "mobile_number",
	"category", "confidence", "dedup_key", "bank", "review",
}

// WriteCSV writes a header row and one row per record.
func WriteCSV(w io.Writer, records []model.TransactionRecord, minDisplay float64) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, r := range records {
		if err := cw.Write(MarshalRecord(r, minDisplay)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalRecord converts a record to a CSV row.
func MarshalRecord(r model.TransactionRecord, minDisplay float64) []string {
	row := make([]string, numFields)
	row[colDate] = r.Date.Format(model.DateFormat)
	row[colAmount] = r.Amount.StringFixed(2)
	row[colType] = string(r.Type)
	row[colMerchant] = r.Merchant
	row[colUPIID] = r.UPIID
	row[colMobile] = r.MobileNumber
	row[colCategory] = r.Category
	row[colConfidence] = strconv.FormatFloat(r.Confidence, 'f', 2, 64)
	row[colDedupKey] = r.DedupKey
	row[colBank] = r.Bank
	row[colReview] = strconv.FormatBool(r.NeedsReview(minDisplay))
	return row
}

// WriteJSON writes records as an indented JSON array.
func WriteJSON(w io.Writer, records []model.TransactionRecord) error {
	if records == nil {
		records = []model.TransactionRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encoding records: %w", err)
	}
	return nil
}
