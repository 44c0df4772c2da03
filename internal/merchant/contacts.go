package merchant

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cleared-dev/smsledger/internal/extract"
	"github.com/cleared-dev/smsledger/internal/validate"
)

const (
	numContactFields = 2
	colPhone         = 0
	colName          = 1
)

// Contact is one entry of the user's address book.
type Contact struct {
	Phone string
	Name  string
}

// ContactIndex is a read-only snapshot of phone numbers to names. A changed
// address book means building a new index.
type ContactIndex struct {
	byPhone map[string]string
}

// NewContactIndex builds an index keyed by normalized phone number. Later
// duplicates of a number are ignored.
func NewContactIndex(contacts []Contact) (*ContactIndex, error) {
	v := validate.For("contacts")
	idx := &ContactIndex{byPhone: make(map[string]string, len(contacts))}
	for _, c := range contacts {
		phone := extract.NormalizePhone(c.Phone)
		name := strings.TrimSpace(c.Name)
		switch {
		case phone == "":
			v.Add(c.Phone, "not a 10-digit mobile number")
			continue
		case name == "":
			v.Add(c.Phone, "name is required")
			continue
		}
		if _, dup := idx.byPhone[phone]; !dup {
			idx.byPhone[phone] = name
		}
	}
	if err := v.Err(); err != nil {
		return nil, err
	}
	return idx, nil
}

// EmptyContacts returns an index with no entries.
func EmptyContacts() *ContactIndex {
	return &ContactIndex{byPhone: map[string]string{}}
}

// Lookup returns the contact name for a phone number in any common format.
func (c *ContactIndex) Lookup(phone string) (string, bool) {
	if c == nil {
		return "", false
	}
	key := extract.NormalizePhone(phone)
	if key == "" {
		return "", false
	}
	name, ok := c.byPhone[key]
	return name, ok
}

// Len returns the number of indexed numbers.
func (c *ContactIndex) Len() int {
	if c == nil {
		return 0
	}
	return len(c.byPhone)
}

// ReadContacts reads a phone,name CSV with a header row.
func ReadContacts(r io.Reader) ([]Contact, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numContactFields
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading contacts CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	contacts := make([]Contact, 0, len(records)-1)
	for _, rec := range records[1:] {
		contacts = append(contacts, Contact{Phone: rec[colPhone], Name: rec[colName]})
	}
	return contacts, nil
}

// WriteContacts writes contacts as a phone,name CSV with a header row.
func WriteContacts(w io.Writer, contacts []Contact) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"phone", "name"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, c := range contacts {
		row := make([]string, numContactFields)
		row[colPhone] = c.Phone
		row[colName] = c.Name
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// LoadContacts reads a contacts CSV file into an index. A missing file
// yields an empty index.
func LoadContacts(path string) (*ContactIndex, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return EmptyContacts(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening contacts: %w", err)
	}
	defer f.Close()

	contacts, err := ReadContacts(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	idx, err := NewContactIndex(contacts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return idx, nil
}
