// Package sender decides whether a notification comes from a recognized
// bank or payment sender.
package sender

import (
	"strings"

	"github.com/cleared-dev/smsledger/internal/validate"
)

// MatchMode says how a pattern is compared against a sender ID.
type MatchMode string

const (
	MatchSubstring MatchMode = "substring"
	MatchPrefix    MatchMode = "prefix"
)

// Rule is one allow-list entry.
type Rule struct {
	Pattern      string    `yaml:"pattern"`
	Bank         string    `yaml:"bank,omitempty"`
	Match        MatchMode `yaml:"match,omitempty"`
	BodyKeywords []string  `yaml:"body_keywords,omitempty"` // if set, at least one must appear in the body
}

type compiledRule struct {
	pattern  string
	bank     string
	prefix   bool
	keywords []string
}

// Filter is an immutable, case-insensitive sender allow-list.
type Filter struct {
	rules []compiledRule
}

// NewFilter validates rules and builds a Filter. An empty allow-list is an error.
func NewFilter(rules []Rule) (*Filter, error) {
	v := validate.For("senders")
	if len(rules) == 0 {
		v.Add("", "allow-list is empty")
	}

	f := &Filter{rules: make([]compiledRule, 0, len(rules))}
	for i, r := range rules {
		pattern := strings.ToUpper(strings.TrimSpace(r.Pattern))
		if pattern == "" {
			v.Add(r.Bank, "entry %d has an empty pattern", i)
			continue
		}
		mode := r.Match
		if mode == "" {
			mode = MatchSubstring
		}
		if mode != MatchSubstring && mode != MatchPrefix {
			v.Add(pattern, "unknown match mode %q", r.Match)
			continue
		}
		bank := strings.TrimSpace(r.Bank)
		if bank == "" {
			bank = pattern
		}
		keywords := make([]string, 0, len(r.BodyKeywords))
		for _, k := range r.BodyKeywords {
			if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
				keywords = append(keywords, k)
			}
		}
		f.rules = append(f.rules, compiledRule{
			pattern:  pattern,
			bank:     bank,
			prefix:   mode == MatchPrefix,
			keywords: keywords,
		})
	}
	if err := v.Err(); err != nil {
		return nil, err
	}
	return f, nil
}

// IsRecognized reports whether senderID matches the allow-list and returns
// the bank label of the first matching entry.
func (f *Filter) IsRecognized(senderID, body string) (bool, string) {
	id := normalizeID(senderID)
	if id == "" {
		return false, ""
	}
	var lowerBody string
	for _, r := range f.rules {
		if !r.matches(id) {
			continue
		}
		if len(r.keywords) > 0 {
			if lowerBody == "" {
				lowerBody = strings.ToLower(body)
			}
			if !containsAny(lowerBody, r.keywords) {
				continue
			}
		}
		return true, r.bank
	}
	return false, ""
}

func (r compiledRule) matches(id string) bool {
	if r.prefix {
		return strings.HasPrefix(id, r.pattern)
	}
	return strings.Contains(id, r.pattern)
}

// normalizeID upper-cases the ID and strips the operator/circle header
// ("VM-", "AD-", "JD-") that Indian DLT sender IDs carry.
func normalizeID(senderID string) string {
	id := strings.ToUpper(strings.TrimSpace(senderID))
	if len(id) > 3 && id[2] == '-' {
		id = id[3:]
	}
	return id
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
