// ABOUTME: Rule-based query classifier for decomposition strategy selection
// ABOUTME: Ordered decision table; comparative beats multi_year beats simple
package agent

import (
	"fmt"
	"regexp"
	"strings"
)

// Category is the classification assigned to a query.
type Category string

const (
	CategorySimple      Category = "simple"
	CategoryComparative Category = "comparative"
	CategoryMultiYear   Category = "multi_year"
)

// Pattern pairs a category with a case-insensitive regular expression. The
// classifier evaluates patterns in order; the first match decides the
// category, so pattern order encodes precedence.
type Pattern struct {
	Category Category
	Expr     string
}

// DefaultPatterns returns the built-in decision table. Comparative
// indicators come first so a query matching both families classifies as
// comparative.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{CategoryComparative, `compar\w+`},
		{CategoryComparative, `vs\.?|versus`},
		{CategoryComparative, `which.*highest|which.*lowest|which.*best`},
		{CategoryComparative, `growth.*from.*to`},
		{CategoryComparative, `all three companies`},
		{CategoryComparative, `across.*companies`},
		{CategoryMultiYear, `\d{4}.*to.*\d{4}`},
		{CategoryMultiYear, `from.*\d{4}.*to.*\d{4}`},
		{CategoryMultiYear, `growth.*\d{4}.*\d{4}`},
	}
}

// Classifier assigns a category to raw query strings. Classification is
// pure and deterministic: the same query always yields the same category.
type Classifier struct {
	rules []rule
}

type rule struct {
	category Category
	re       *regexp.Regexp
}

// NewClassifier builds a classifier from the default decision table.
func NewClassifier() *Classifier {
	c, err := NewClassifierWithPatterns(DefaultPatterns())
	if err != nil {
		// The default table is compile-checked by tests; this cannot happen
		// at runtime.
		panic(err)
	}
	return c
}

// NewClassifierWithPatterns builds a classifier from a custom pattern table,
// preserving the given order.
func NewClassifierWithPatterns(patterns []Pattern) (*Classifier, error) {
	rules := make([]rule, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p.Expr)
		if err != nil {
			return nil, fmt.Errorf("compiling pattern %q: %w", p.Expr, err)
		}
		rules = append(rules, rule{category: p.Category, re: re})
	}
	return &Classifier{rules: rules}, nil
}

// Classify matches query against the decision table, case-insensitively.
// Queries matching no pattern are simple.
func (c *Classifier) Classify(query string) Category {
	lower := strings.ToLower(query)
	for _, r := range c.rules {
		if r.re.MatchString(lower) {
			return r.category
		}
	}
	return CategorySimple
}
