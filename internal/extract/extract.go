// Package extract pulls structured fields out of bank notification text.
//
// Extraction is an ordered list of independent rules. Each rule pairs a
// pattern with the field kind it fills and a parse function; rules for the
// same kind are tried in list order and the first accepted match wins.
package extract

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/smsledger/internal/model"
)

// Value is what a rule's parse function produces. Only the member matching
// the rule's kind is meaningful.
type Value struct {
	Decimal   decimal.Decimal
	Direction model.Direction
	Date      time.Time
	Text      string
}

// ParseFunc turns one regexp match into a Value. text is the full body, loc
// the submatch index pairs from FindAllStringSubmatchIndex, and ref the
// time the message was received. Returning false rejects the match and the
// extractor moves on to the rule's next match.
type ParseFunc func(text string, loc []int, ref time.Time) (Value, bool)

// Rule is one extraction rule.
type Rule struct {
	Name    string
	Kind    model.FieldKind
	Pattern *regexp.Regexp
	Parse   ParseFunc
	// Exclude lists kinds whose matched spans this rule must not overlap.
	Exclude []model.FieldKind
}

// kindOrder fixes the evaluation order across kinds so that exclusions
// refer to spans that are already known.
var kindOrder = []model.FieldKind{
	model.FieldBalance,
	model.FieldAmount,
	model.FieldDirection,
	model.FieldDate,
	model.FieldUPI,
	model.FieldMobile,
	model.FieldMerchantPhrase,
}

// Extractor applies an ordered rule list. It is immutable and safe for
// concurrent use.
type Extractor struct {
	byKind map[model.FieldKind][]Rule
}

// New returns an Extractor with the built-in rules.
func New() *Extractor {
	return NewWithRules(DefaultRules())
}

// NewWithRules returns an Extractor over rules. Order within a kind is priority order.
func NewWithRules(rules []Rule) *Extractor {
	e := &Extractor{byKind: make(map[model.FieldKind][]Rule)}
	for _, r := range rules {
		e.byKind[r.Kind] = append(e.byKind[r.Kind], r)
	}
	return e
}

// Extract runs every rule kind over body. ref resolves dates that carry no year.
func (e *Extractor) Extract(body string, ref time.Time) model.ExtractedFields {
	var fields model.ExtractedFields
	spans := make(map[model.FieldKind][2]int)

	for _, kind := range kindOrder {
		for _, rule := range e.byKind[kind] {
			v, span, ok := apply(rule, body, ref, spans)
			if !ok {
				continue
			}
			spans[kind] = span
			assign(&fields, kind, v)
			fields.Set(kind, rule.Name)
			break
		}
	}
	return fields
}

// extractKind runs only the rules of one kind.
func (e *Extractor) extractKind(kind model.FieldKind, body string, ref time.Time) (Value, string, bool) {
	for _, rule := range e.byKind[kind] {
		if v, _, ok := apply(rule, body, ref, nil); ok {
			return v, rule.Name, true
		}
	}
	return Value{}, "", false
}

func apply(rule Rule, body string, ref time.Time, spans map[model.FieldKind][2]int) (Value, [2]int, bool) {
	for _, loc := range rule.Pattern.FindAllStringSubmatchIndex(body, -1) {
		span := [2]int{loc[0], loc[1]}
		if overlapsAny(span, rule.Exclude, spans) {
			continue
		}
		if v, ok := rule.Parse(body, loc, ref); ok {
			return v, span, true
		}
	}
	return Value{}, [2]int{}, false
}

func overlapsAny(span [2]int, kinds []model.FieldKind, spans map[model.FieldKind][2]int) bool {
	for _, k := range kinds {
		other, ok := spans[k]
		if ok && span[0] < other[1] && other[0] < span[1] {
			return true
		}
	}
	return false
}

func assign(f *model.ExtractedFields, kind model.FieldKind, v Value) {
	switch kind {
	case model.FieldAmount:
		f.Amount = v.Decimal
	case model.FieldBalance:
		bal := v.Decimal
		f.BalanceAfter = &bal
	case model.FieldDirection:
		f.Direction = v.Direction
	case model.FieldDate:
		f.Date = v.Date
	case model.FieldUPI:
		f.UPIID = v.Text
	case model.FieldMobile:
		f.MobileNumber = v.Text
	case model.FieldMerchantPhrase:
		f.MerchantPhrase = v.Text
	}
}

// group returns submatch n, or "" if it did not participate.
func group(text string, loc []int, n int) string {
	if 2*n+1 >= len(loc) || loc[2*n] < 0 {
		return ""
	}
	return text[loc[2*n]:loc[2*n+1]]
}

// after returns the text following the whole match.
func after(text string, loc []int) string {
	return text[loc[1]:]
}
