// Package merchant turns UPI handles, phone numbers and message text into a
// readable counterparty name.
package merchant

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/texttheater/golang-levenshtein/levenshtein"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/smsledger/internal/validate"
)

//go:embed merchants.yaml
var defaultTableYAML []byte

// Entry is one known merchant.
type Entry struct {
	Name     string   `yaml:"name"`
	Category string   `yaml:"category,omitempty"`
	Aliases  []string `yaml:"aliases,omitempty"`
}

type tableFile struct {
	Merchants []Entry `yaml:"merchants"`
}

type alias struct {
	key   string // normalized, space separated words
	entry int
}

// handleAlias is an alias with its spaces removed, for matching inside UPI
// handles where words run together.
type handleAlias struct {
	compact string
	entry   int
}

// Table is an immutable known-merchant table. A refreshed table is a new
// Table, never an in-place edit.
type Table struct {
	entries []Entry
	aliases []alias       // longest first
	handles []handleAlias // longest first, at least minHandleAlias runes
}

// NewTable validates entries and builds a Table. Every entry's name is also
// an alias of itself.
func NewTable(entries []Entry) (*Table, error) {
	v := validate.For("merchants")
	t := &Table{entries: make([]Entry, len(entries))}
	seen := make(map[string]string)

	for i, e := range entries {
		e.Name = strings.TrimSpace(e.Name)
		t.entries[i] = e
		if e.Name == "" {
			v.Add(fmt.Sprintf("#%d", i+1), "name is required")
			continue
		}
		for _, a := range append([]string{e.Name}, e.Aliases...) {
			key := normalize(a)
			if key == "" {
				v.Add(e.Name, "alias %q has no letters or digits", a)
				continue
			}
			if owner, dup := seen[key]; dup {
				if owner != e.Name {
					v.Add(e.Name, "alias %q already belongs to %s", a, owner)
				}
				continue
			}
			seen[key] = e.Name
			t.aliases = append(t.aliases, alias{key: key, entry: i})
		}
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(t.aliases, func(i, j int) bool {
		a, b := t.aliases[i], t.aliases[j]
		if len(a.key) != len(b.key) {
			return len(a.key) > len(b.key)
		}
		return a.key < b.key
	})
	for _, a := range t.aliases {
		if c := strings.ReplaceAll(a.key, " ", ""); len(c) >= minHandleAlias {
			t.handles = append(t.handles, handleAlias{compact: c, entry: a.entry})
		}
	}
	sort.SliceStable(t.handles, func(i, j int) bool {
		return len(t.handles[i].compact) > len(t.handles[j].compact)
	})
	return t, nil
}

// ParseTable decodes a merchants YAML document.
func ParseTable(data []byte) (*Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing merchant table: %w", err)
	}
	if len(f.Merchants) == 0 {
		return nil, validate.Errors{{Table: "merchants", Description: "table is empty"}}
	}
	return NewTable(f.Merchants)
}

// LoadTable reads a merchants YAML file.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading merchant table: %w", err)
	}
	t, err := ParseTable(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// DefaultTable returns the built-in table of common Indian merchants.
func DefaultTable() *Table {
	t, err := ParseTable(defaultTableYAML)
	if err != nil {
		panic(fmt.Sprintf("merchant: built-in table: %v", err))
	}
	return t
}

// DefaultTableYAML returns the source of the built-in table.
func DefaultTableYAML() []byte {
	return append([]byte(nil), defaultTableYAML...)
}

// Entries returns the table's entries in declaration order.
func (t *Table) Entries() []Entry {
	return append([]Entry(nil), t.entries...)
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.entries)
}

// Lookup finds the entry whose longest alias occurs in text as whole words.
func (t *Table) Lookup(text string) (Entry, bool) {
	norm := normalize(text)
	if norm == "" {
		return Entry{}, false
	}
	padded := " " + norm + " "
	for _, a := range t.aliases {
		if strings.Contains(padded, " "+a.key+" ") {
			return t.entries[a.entry], true
		}
	}
	return Entry{}, false
}

// minHandleAlias keeps short aliases like "kfc" or "jio" from matching by
// accident inside personal handles.
const minHandleAlias = 4

// LookupHandle finds the entry whose longest alias occurs anywhere in a UPI
// local part, so "swiggyupi" and "amazonpay" match Swiggy and Amazon.
func (t *Table) LookupHandle(local string) (Entry, bool) {
	compact := strings.ReplaceAll(normalize(local), " ", "")
	if compact == "" {
		return Entry{}, false
	}
	for _, h := range t.handles {
		if strings.Contains(compact, h.compact) {
			return t.entries[h.entry], true
		}
	}
	return Entry{}, false
}

// Closest finds an entry whose alias is within one edit of phrase. Short
// phrases are ignored since a single edit changes them too much.
func (t *Table) Closest(phrase string) (Entry, bool) {
	norm := normalize(phrase)
	if utf8.RuneCountInString(norm) < minFuzzyLen {
		return Entry{}, false
	}
	target := []rune(norm)
	for _, a := range t.aliases {
		if len(a.key) < minFuzzyLen || abs(len(a.key)-len(norm)) > maxFuzzyDistance {
			continue
		}
		d := levenshtein.DistanceForStrings(target, []rune(a.key), editOptions)
		if d <= maxFuzzyDistance {
			return t.entries[a.entry], true
		}
	}
	return Entry{}, false
}

const (
	minFuzzyLen      = 5
	maxFuzzyDistance = 1
)

// editOptions counts a substitution as one edit, like an insertion or deletion.
var editOptions = levenshtein.Options{
	InsCost: 1,
	DelCost: 1,
	SubCost: 1,
	Matches: levenshtein.IdenticalRunes,
}

// normalize lowercases s and reduces every run of non-alphanumerics to a
// single space.
func normalize(s string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
			continue
		}
		space = true
	}
	return b.String()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
