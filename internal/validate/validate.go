// Package validate collects configuration and table problems so that
// construction can fail once with every violation listed.
package validate

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid is matched by every Errors value via errors.Is.
var ErrInvalid = errors.New("invalid configuration")

// Error describes a single problem in a configuration table.
type Error struct {
	Table       string
	Entry       string
	Description string
}

func (e Error) Error() string {
	if e.Entry == "" {
		return fmt.Sprintf("%s: %s", e.Table, e.Description)
	}
	return fmt.Sprintf("%s [%s]: %s", e.Table, e.Entry, e.Description)
}

// Errors is a list of problems found while building a table.
type Errors []Error

func (es Errors) Error() string {
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Is makes errors.Is(err, ErrInvalid) true.
func (es Errors) Is(target error) bool {
	return target == ErrInvalid
}

// Collector accumulates errors for one table.
type Collector struct {
	table string
	errs  Errors
}

// For starts a collector for the named table.
func For(table string) *Collector {
	return &Collector{table: table}
}

// Add records a problem with entry.
func (c *Collector) Add(entry, format string, args ...any) {
	c.errs = append(c.errs, Error{
		Table:       c.table,
		Entry:       entry,
		Description: fmt.Sprintf(format, args...),
	})
}

// Err returns the collected errors, or nil if there were none.
func (c *Collector) Err() error {
	if len(c.errs) == 0 {
		return nil
	}
	return c.errs
}
