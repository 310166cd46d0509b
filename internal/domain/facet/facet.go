// Package facet holds the filter vocabularies offered to clients.
package facet

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Kind is the vocabulary a stored option belongs to.
type Kind string

// Stored option kinds.
const (
	KindStock       Kind = "S"
	KindInstitution Kind = "I"
)

// Option is one selectable filter value.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Stored is an option row as kept in the store.
type Stored struct {
	ID    int64
	Kind  Kind
	Value string
	Label string
}

// Options is the complete facet vocabulary. Static vocabularies are omitted
// when not configured.
type Options struct {
	Stocks       []Option `json:"stocks"`
	Institutions []Option `json:"institutions"`
	Industries   []Option `json:"industries,omitempty"`
	Columns      []Option `json:"columns,omitempty"`
}

// Collation is the label ordering used for every vocabulary.
var Collation = language.Chinese

// Build sorts stored options by label under Collation and splits them by kind.
// Stock labels carry their code: "浦发银行 (600000)". Unknown kinds are skipped.
func Build(stored []Stored) Options {
	sorted := slices.Clone(stored)
	c := collate.New(Collation)
	slices.SortStableFunc(sorted, func(a, b Stored) int {
		if n := c.CompareString(a.Label, b.Label); n != 0 {
			return n
		}
		return strings.Compare(a.Value, b.Value)
	})

	out := Options{Stocks: []Option{}, Institutions: []Option{}}
	for _, s := range sorted {
		switch s.Kind {
		case KindStock:
			out.Stocks = append(out.Stocks, Option{Value: s.Value, Label: s.Label + " (" + s.Value + ")"})
		case KindInstitution:
			out.Institutions = append(out.Institutions, Option{Value: s.Value, Label: s.Label})
		}
	}
	return out
}

// SortStatic returns a copy of a configured vocabulary ordered by label.
func SortStatic(opts []Option) []Option {
	if len(opts) == 0 {
		return nil
	}
	sorted := slices.Clone(opts)
	c := collate.New(Collation)
	slices.SortStableFunc(sorted, func(a, b Option) int {
		return c.CompareString(a.Label, b.Label)
	})
	return sorted
}
