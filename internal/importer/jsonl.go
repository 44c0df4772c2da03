package importer

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/cleared-dev/smsledger/internal/model"
)

// JSONLParser reads one {"senderId","body","receivedAtMillis"} object per line.
type JSONLParser struct{}

type jsonEvent struct {
	SenderID         string `json:"senderId"`
	Body             string `json:"body"`
	ReceivedAtMillis *int64 `json:"receivedAtMillis"`
}

const maxLineBytes = 1 << 20

// Format returns the parser name.
func (p *JSONLParser) Format() string { return "jsonl" }

// Extensions returns the suffixes handled by the parser.
func (p *JSONLParser) Extensions() []string { return []string{".jsonl", ".ndjson"} }

// Parse reads newline-delimited JSON. Blank lines are skipped.
func (p *JSONLParser) Parse(r io.Reader) ([]model.RawEvent, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var events []model.RawEvent
	line := 0
	for sc.Scan() {
		line++
		b := bytes.TrimSpace(sc.Bytes())
		if len(b) == 0 {
			continue
		}
		var je jsonEvent
		if err := json.Unmarshal(b, &je); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if je.ReceivedAtMillis == nil {
			return nil, fmt.Errorf("line %d: receivedAtMillis is required", line)
		}
		events = append(events, model.NewRawEvent(je.SenderID, je.Body, *je.ReceivedAtMillis))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading JSONL: %w", err)
	}
	return events, nil
}
