/*
Package catalog holds the fixed pattern catalog compiled into the binary and
answers lookups, text searches and category filters over it.
*/
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

// AllCategories is the filter tag that matches every pattern.
const AllCategories = "all"

// Difficulty is the skill a pattern asks for.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
	DifficultyExpert       Difficulty = "expert"
)

// Valid reports whether d is a known difficulty.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced, DifficultyExpert:
		return true
	}
	return false
}

// Pattern is one catalog entry. Patterns never change at runtime.
type Pattern struct {
	ID          string     `yaml:"id" json:"id"`
	Title       string     `yaml:"title" json:"title"`
	Description string     `yaml:"description" json:"description"`
	Image       string     `yaml:"image" json:"image"`
	Category    string     `yaml:"category" json:"category"`
	Difficulty  Difficulty `yaml:"difficulty" json:"difficulty"`
}

// Category is a filter button of the pattern grid.
type Category struct {
	ID    string `yaml:"id" json:"id"`
	Label string `yaml:"label" json:"label"`
}

type document struct {
	Categories   []Category `yaml:"categories"`
	Instructions []string   `yaml:"instructions"`
	Materials    []string   `yaml:"materials"`
	Patterns     []Pattern  `yaml:"patterns"`
}

// Index is the read-only catalog. It is safe for concurrent use.
type Index struct {
	patterns     []Pattern
	byID         map[string]int
	categories   []Category
	instructions []string
	materials    []string
}

// Load parses the catalog compiled into the binary.
func Load() (*Index, error) {
	return Parse(embeddedCatalog)
}

// MustLoad is Load for package initialisation and tests.
func MustLoad() *Index {
	idx, err := Load()
	if err != nil {
		panic(err)
	}
	return idx
}

// Parse builds an Index from a YAML catalog document.
func Parse(data []byte) (*Index, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	idx := &Index{
		patterns:     doc.Patterns,
		byID:         make(map[string]int, len(doc.Patterns)),
		categories:   doc.Categories,
		instructions: doc.Instructions,
		materials:    doc.Materials,
	}

	known := make(map[string]bool, len(doc.Categories))
	for _, c := range doc.Categories {
		if c.ID == "" || c.ID == AllCategories {
			return nil, fmt.Errorf("catalog: invalid category id %q", c.ID)
		}
		known[c.ID] = true
	}

	var problems []error
	for i, p := range doc.Patterns {
		switch {
		case p.ID == "":
			problems = append(problems, fmt.Errorf("pattern #%d has no id", i+1))
			continue
		case p.Title == "":
			problems = append(problems, fmt.Errorf("pattern %q has no title", p.ID))
		case !p.Difficulty.Valid():
			problems = append(problems, fmt.Errorf("pattern %q has unknown difficulty %q", p.ID, p.Difficulty))
		case !known[p.Category]:
			problems = append(problems, fmt.Errorf("pattern %q has unknown category %q", p.ID, p.Category))
		}

		if _, dup := idx.byID[p.ID]; dup {
			problems = append(problems, fmt.Errorf("duplicate pattern id %q", p.ID))
			continue
		}
		idx.byID[p.ID] = i
	}

	if err := errors.Join(problems...); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	return idx, nil
}

// Len returns the number of patterns.
func (x *Index) Len() int {
	return len(x.patterns)
}

// Get returns the pattern with the given id.
func (x *Index) Get(id string) (Pattern, bool) {
	i, ok := x.byID[id]
	if !ok {
		return Pattern{}, false
	}
	return x.patterns[i], true
}

// All returns every pattern in catalog order.
func (x *Index) All() []Pattern {
	return slices.Clone(x.patterns)
}

// IDs returns every pattern id in catalog order.
func (x *Index) IDs() []string {
	ids := make([]string, len(x.patterns))
	for i, p := range x.patterns {
		ids[i] = p.ID
	}
	return ids
}

// Categories returns the filter categories in display order.
func (x *Index) Categories() []Category {
	return slices.Clone(x.categories)
}

// Instructions returns the steps shown in every pattern detail view.
func (x *Index) Instructions() []string {
	return slices.Clone(x.instructions)
}

// Materials returns the supplies shown in every pattern detail view.
func (x *Index) Materials() []string {
	return slices.Clone(x.materials)
}

// Matches reports whether term occurs in the title or description of p,
// ignoring case. An empty term matches everything.
func Matches(p Pattern, term string) bool {
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(p.Title), term) ||
		strings.Contains(strings.ToLower(p.Description), term)
}

// Search returns the patterns whose title or description contain term.
// Category and difficulty are not searched.
func (x *Index) Search(term string) []Pattern {
	out := []Pattern{}
	for _, p := range x.patterns {
		if Matches(p, term) {
			out = append(out, p)
		}
	}
	return out
}

// SearchWithin is Search restricted to the given ids, in the order given.
// Unknown ids are skipped.
func (x *Index) SearchWithin(ids []string, term string) []Pattern {
	out := []Pattern{}
	for _, id := range ids {
		if p, ok := x.Get(id); ok && Matches(p, term) {
			out = append(out, p)
		}
	}
	return out
}

// FilterByCategory returns the patterns of category tag, or all of them for "all".
func (x *Index) FilterByCategory(tag string) []Pattern {
	if tag == AllCategories {
		return x.All()
	}

	out := []Pattern{}
	for _, p := range x.patterns {
		if p.Category == tag {
			out = append(out, p)
		}
	}
	return out
}

// FilterWithin is FilterByCategory restricted to the given ids.
func (x *Index) FilterWithin(ids []string, tag string) []Pattern {
	out := []Pattern{}
	for _, id := range ids {
		p, ok := x.Get(id)
		if ok && (tag == AllCategories || p.Category == tag) {
			out = append(out, p)
		}
	}
	return out
}

// IDsOf returns the ids of patterns.
func IDsOf(patterns []Pattern) []string {
	ids := make([]string, len(patterns))
	for i, p := range patterns {
		ids[i] = p.ID
	}
	return ids
}
