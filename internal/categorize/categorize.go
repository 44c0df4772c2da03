// Package categorize assigns a spending category to a transaction using
// weighted keywords, with a shortcut for merchants whose category is known.
package categorize

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/smsledger/internal/model"
	"github.com/cleared-dev/smsledger/internal/validate"
)

//go:embed categories.yaml
var defaultTableYAML []byte

const (
	KnownConfidence = 0.9
	OtherConfidence = 0.3
)

// Rule is one category and its keyword weights.
type Rule struct {
	Name     string         `yaml:"name"`
	Keywords map[string]int `yaml:"keywords"`
}

type tableFile struct {
	Categories []Rule `yaml:"categories"`
}

type keyword struct {
	text   string
	weight int
}

type category struct {
	name     string
	keywords []keyword
	max      int
}

// Table is an immutable category-keyword table. Declaration order breaks
// ties between equally scored categories.
type Table struct {
	categories []category
}

// NewTable validates rules and builds a Table.
func NewTable(rules []Rule) (*Table, error) {
	v := validate.For("categories")
	if len(rules) == 0 {
		v.Add("", "table is empty")
	}
	t := &Table{}
	seen := make(map[string]bool)

	for i, r := range rules {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			v.Add(fmt.Sprintf("#%d", i+1), "name is required")
			continue
		}
		if seen[strings.ToLower(name)] {
			v.Add(name, "duplicate category")
			continue
		}
		seen[strings.ToLower(name)] = true
		if len(r.Keywords) == 0 {
			v.Add(name, "at least one keyword is required")
			continue
		}

		c := category{name: name}
		for text, w := range r.Keywords {
			text = strings.ToLower(strings.TrimSpace(text))
			if text == "" || w <= 0 {
				v.Add(name, "keyword %q needs text and a positive weight", text)
				continue
			}
			c.keywords = append(c.keywords, keyword{text: text, weight: w})
			c.max += w
		}
		sort.Slice(c.keywords, func(i, j int) bool { return c.keywords[i].text < c.keywords[j].text })
		t.categories = append(t.categories, c)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

// ParseTable decodes a categories YAML document.
func ParseTable(data []byte) (*Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing category table: %w", err)
	}
	return NewTable(f.Categories)
}

// LoadTable reads a categories YAML file.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading category table: %w", err)
	}
	t, err := ParseTable(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// DefaultTable returns the built-in category table.
func DefaultTable() *Table {
	t, err := ParseTable(defaultTableYAML)
	if err != nil {
		panic(fmt.Sprintf("categorize: built-in table: %v", err))
	}
	return t
}

// DefaultTableYAML returns the source of the built-in table.
func DefaultTableYAML() []byte {
	return append([]byte(nil), defaultTableYAML...)
}

// Names returns category names in declaration order.
func (t *Table) Names() []string {
	names := make([]string, len(t.categories))
	for i, c := range t.categories {
		names[i] = c.name
	}
	return names
}

// Categorize picks the category for a transaction. A known merchant with a
// pre-assigned category short-circuits keyword scoring. Otherwise each
// category scores the weight of its keywords found in description divided
// by its total weight, and the best score wins.
func (t *Table) Categorize(merchant model.MerchantIdentity, description string) model.Category {
	if merchant.Source == model.SourceKnownTable && merchant.Category != "" {
		return model.Category{Label: merchant.Category, Confidence: KnownConfidence, Matched: true}
	}

	desc := strings.ToLower(description)
	best, bestScore := -1, 0.0
	for i, c := range t.categories {
		found := 0
		for _, kw := range c.keywords {
			if strings.Contains(desc, kw.text) {
				found += kw.weight
			}
		}
		if found == 0 {
			continue
		}
		score := float64(found) / float64(c.max)
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return model.Category{Label: model.OtherCategory, Confidence: OtherConfidence}
	}
	return model.Category{Label: t.categories[best].name, Confidence: bestScore, Matched: true}
}
