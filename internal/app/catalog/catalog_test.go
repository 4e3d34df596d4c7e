package catalog

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	idx, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 24, idx.Len())
	assert.Len(t, idx.Instructions(), 5)
	assert.Len(t, idx.Materials(), 5)

	p, ok := idx.Get("country-star")
	require.True(t, ok)
	assert.Equal(t, "Country Star Quilt", p.Title)
	assert.Equal(t, "quilts", p.Category)

	p, ok = idx.Get("treat-wall-hanging")
	require.True(t, ok)
	assert.Equal(t, "It's a Treat Quilted Wall Hanging", p.Title)

	_, ok = idx.Get("no-such-pattern")
	assert.False(t, ok)

	for _, c := range idx.Categories() {
		assert.NotEmpty(t, idx.FilterByCategory(c.ID), c.ID)
	}
}

func TestSearch(t *testing.T) {
	idx := MustLoad()

	tests := []struct {
		term string
		want []string
	}{
		{"dresden", []string{"dresden-delight"}},
		{"DRESDEN", []string{"dresden-delight"}},
		{"tetris", []string{"tetris-tumble"}},
		{"hexagon", []string{"half-hexagon", "hexagon-coaster"}},
		{"zzz-no-match", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, IDsOf(idx.Search(tt.term))); diff != "" {
				t.Errorf("Search(%q) mismatch (-want +got):\n%s", tt.term, diff)
			}
		})
	}

	assert.Len(t, idx.Search(""), idx.Len())
}

func TestSearch_IgnoresCategoryAndDifficulty(t *testing.T) {
	idx := MustLoad()

	// "expert" is a difficulty and "home-decor" a category; neither text appears in titles or descriptions.
	assert.Empty(t, idx.Search("expert"))
	assert.Empty(t, idx.Search("home-decor"))
}

func TestSearchWithin(t *testing.T) {
	idx := MustLoad()

	rendered := []string{"mini-charmer", "dresden-delight", "unknown-card"}
	assert.Equal(t, []string{"mini-charmer"}, IDsOf(idx.SearchWithin(rendered, "table")))
	assert.Equal(t, []string{"mini-charmer", "dresden-delight"}, IDsOf(idx.SearchWithin(rendered, "")))
}

func TestFilterByCategory(t *testing.T) {
	idx := MustLoad()

	assert.Len(t, idx.FilterByCategory(AllCategories), idx.Len())
	assert.Empty(t, idx.FilterByCategory("no-such-category"))

	for _, p := range idx.FilterByCategory("table-runners") {
		assert.Equal(t, "table-runners", p.Category)
	}
	assert.Equal(t,
		[]string{"mini-charmer", "sunshine-runner", "tulip-tango", "sapphire-topper"},
		IDsOf(idx.FilterByCategory("table-runners")),
	)

	rendered := []string{"tulip-tango", "country-star"}
	assert.Equal(t, []string{"tulip-tango"}, IDsOf(idx.FilterWithin(rendered, "table-runners")))
	assert.Equal(t, rendered, IDsOf(idx.FilterWithin(rendered, AllCategories)))
}

func TestAllReturnsCopy(t *testing.T) {
	idx := MustLoad()

	all := idx.All()
	all[0].Title = "changed"

	p, _ := idx.Get(all[0].ID)
	assert.NotEqual(t, "changed", p.Title)
}

func TestParseRejectsBadCatalogs(t *testing.T) {
	tests := map[string]string{
		"duplicate id": `
categories: [{id: quilts, label: Quilts}]
patterns:
  - {id: a, title: A, category: quilts, difficulty: beginner}
  - {id: a, title: B, category: quilts, difficulty: beginner}`,
		"unknown difficulty": `
categories: [{id: quilts, label: Quilts}]
patterns:
  - {id: a, title: A, category: quilts, difficulty: legendary}`,
		"empty title": `
categories: [{id: quilts, label: Quilts}]
patterns:
  - {id: a, category: quilts, difficulty: beginner}`,
		"unknown category": `
categories: [{id: quilts, label: Quilts}]
patterns:
  - {id: a, title: A, category: pillows, difficulty: beginner}`,
		"reserved category": `
categories: [{id: all, label: Everything}]
patterns: []`,
		"not yaml": `patterns: [`,
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}
