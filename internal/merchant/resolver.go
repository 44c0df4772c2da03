package merchant

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/cleared-dev/smsledger/internal/model"
)

// Confidence for each resolution tier.
const (
	KnownConfidence   = 0.9
	FuzzyConfidence   = 0.7
	ContactConfidence = 0.8
	UPIConfidence     = 0.4
	PhraseConfidence  = 0.3
)

// Resolver maps extracted signals to a MerchantIdentity. It holds only
// immutable snapshots, so one Resolver can serve any number of goroutines.
type Resolver struct {
	table    *Table
	contacts *ContactIndex
}

// NewResolver returns a Resolver. A nil table or index behaves as empty.
func NewResolver(table *Table, contacts *ContactIndex) *Resolver {
	if table == nil {
		table = &Table{}
	}
	if contacts == nil {
		contacts = EmptyContacts()
	}
	return &Resolver{table: table, contacts: contacts}
}

// Resolve tries, in order: the known-merchant table (an alias anywhere in the
// UPI handle, then whole words of the merchant phrase, then of the whole
// body, then a fuzzy match of the phrase),
// the contact index, a label derived from the UPI handle, and finally the
// phrase itself. With no signal it returns the Unknown identity.
func (r *Resolver) Resolve(upiID, mobile, body, phrase string) model.MerchantIdentity {
	local := upiLocal(upiID)

	if e, ok := r.table.LookupHandle(local); ok {
		return known(e, KnownConfidence)
	}
	for _, text := range []string{phrase, body} {
		if text == "" {
			continue
		}
		if e, ok := r.table.Lookup(text); ok {
			return known(e, KnownConfidence)
		}
	}
	if e, ok := r.table.Closest(phrase); ok {
		return known(e, FuzzyConfidence)
	}

	if mobile == "" && isMobile(local) {
		mobile = local
	}
	if name, ok := r.contacts.Lookup(mobile); ok {
		return model.MerchantIdentity{Label: name, Source: model.SourceContact, Confidence: ContactConfidence}
	}

	if label := LabelFromHandle(local); label != "" {
		return model.MerchantIdentity{Label: label, Source: model.SourceUPIPrefix, Confidence: UPIConfidence}
	}
	if label := titleWords(strings.Fields(phrase)); label != "" {
		return model.MerchantIdentity{Label: label, Source: model.SourcePhrase, Confidence: PhraseConfidence}
	}

	return model.MerchantIdentity{Label: model.UnknownMerchant, Source: model.SourceNone}
}

func known(e Entry, confidence float64) model.MerchantIdentity {
	return model.MerchantIdentity{
		Label:      e.Name,
		Source:     model.SourceKnownTable,
		Confidence: confidence,
		Category:   e.Category,
	}
}

// LabelFromHandle derives a display name from a UPI local part:
// "merchant" becomes "Merchant", "john.doe" becomes "John Doe". Handles
// that are purely numeric carry no name and yield "".
func LabelFromHandle(local string) string {
	words := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || (r >= '0' && r <= '9')
	})
	return titleWords(words)
}

func titleWords(words []string) string {
	caser := cases.Title(language.English)
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}
		out = append(out, caser.String(strings.ToLower(w)))
	}
	return strings.Join(out, " ")
}

func upiLocal(upiID string) string {
	local, _, found := strings.Cut(upiID, "@")
	if !found {
		return ""
	}
	return strings.ToLower(local)
}

func isMobile(s string) bool {
	if len(s) != 10 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
