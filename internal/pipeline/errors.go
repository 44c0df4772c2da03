package pipeline

import (
	"errors"
	"fmt"
)

// Sentinels matched by DiscardError through errors.Is.
var (
	ErrUnrecognizedSender = errors.New("unrecognized sender")
	ErrNoAmountFound      = errors.New("no amount found")
	ErrDuplicateRecord    = errors.New("duplicate record")
)

// Reason is why an event produced no emitted record.
type Reason string

const (
	ReasonUnrecognizedSender Reason = "UnrecognizedSender"
	ReasonNoAmountFound      Reason = "NoAmountFound"
	ReasonDuplicateRecord    Reason = "DuplicateRecord"
)

func (r Reason) sentinel() error {
	switch r {
	case ReasonUnrecognizedSender:
		return ErrUnrecognizedSender
	case ReasonNoAmountFound:
		return ErrNoAmountFound
	case ReasonDuplicateRecord:
		return ErrDuplicateRecord
	default:
		return nil
	}
}

// DiscardError reports a normal, non-fatal outcome in which an event
// yields no record.
type DiscardError struct {
	Reason Reason
	Detail string
}

func (e *DiscardError) Error() string {
	if e.Detail == "" {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
}

// Is matches the sentinel for e's reason.
func (e *DiscardError) Is(target error) bool {
	s := e.Reason.sentinel()
	return s != nil && s == target
}

func discard(reason Reason, format string, args ...any) *DiscardError {
	return &DiscardError{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// ReasonOf returns the discard reason carried by err, or "" if err is not a DiscardError.
func ReasonOf(err error) Reason {
	var de *DiscardError
	if errors.As(err, &de) {
		return de.Reason
	}
	return ""
}
