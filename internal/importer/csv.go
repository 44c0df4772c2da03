package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/cleared-dev/smsledger/internal/model"
)

// CSVParser reads sender,body,received_at CSV exports. received_at is Unix
// milliseconds or an RFC 3339 timestamp.
type CSVParser struct{}

const (
	csvNumFields     = 3
	csvColSender     = 0
	csvColBody       = 1
	csvColReceivedAt = 2
)

// Format returns the parser name.
func (p *CSVParser) Format() string { return "csv" }

// Extensions returns the suffixes handled by the parser.
func (p *CSVParser) Extensions() []string { return []string{".csv"} }

// Parse reads a CSV with a header row.
func (p *CSVParser) Parse(r io.Reader) ([]model.RawEvent, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = csvNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	events := make([]model.RawEvent, 0, len(records)-1)
	for i, rec := range records[1:] {
		at, err := parseReceivedAt(rec[csvColReceivedAt])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		events = append(events, model.RawEvent{
			SenderID:   strings.TrimSpace(rec[csvColSender]),
			Body:       rec[csvColBody],
			ReceivedAt: at,
		})
	}
	return events, nil
}

func parseReceivedAt(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing received_at %q: want Unix millis or RFC 3339", s)
	}
	return t.UTC(), nil
}
