package routerules

import (
	"sort"
	"strings"

	"github.com/Sriram-PR/sitemap-gen/pkg/filter"
	"github.com/Sriram-PR/sitemap-gen/pkg/models"
	"github.com/Sriram-PR/sitemap-gen/pkg/parse"
)

// Lookup returns the merged route rule for a path (no trailing slash)
type Lookup interface {
	ForPath(path string) models.RouteRule
}

// LookupFunc adapts a plain function to Lookup
type LookupFunc func(path string) models.RouteRule

// ForPath implements Lookup
func (f LookupFunc) ForPath(path string) models.RouteRule { return f(path) }

type patternRule struct {
	pattern string
	rule    models.RouteRule
}

// Table is a static set of route rules keyed by path or route glob
type Table struct {
	rules []patternRule
}

// NewTable builds a table from configured rules. Rules are applied from the least to the
// most specific pattern, so "/blog/**" can be refined by "/blog/archived/**".
func NewTable(rules map[string]models.RouteRule) *Table {
	t := &Table{rules: make([]patternRule, 0, len(rules))}
	for pattern, rule := range rules {
		t.rules = append(t.rules, patternRule{pattern: pattern, rule: rule})
	}
	sort.Slice(t.rules, func(i, j int) bool {
		a, b := t.rules[i].pattern, t.rules[j].pattern
		if specificity(a) != specificity(b) {
			return specificity(a) < specificity(b)
		}
		return a < b
	})
	return t
}

// ForPath merges every rule whose pattern matches path
func (t *Table) ForPath(path string) models.RouteRule {
	var merged models.RouteRule
	if t == nil {
		return merged
	}
	for _, pr := range t.rules {
		if matches(pr.pattern, path) {
			merged = merged.Merge(pr.rule)
		}
	}
	return merged
}

// Len returns the number of configured patterns
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rules)
}

func matches(pattern, path string) bool {
	if strings.ContainsAny(pattern, "*?[{") {
		return filter.MatchGlob(pattern, path)
	}
	return parse.WithoutTrailingSlash(pattern) == parse.WithoutTrailingSlash(path)
}

// specificity ranks exact paths above globs, and longer literal prefixes above shorter ones
func specificity(pattern string) int {
	literal := pattern
	if i := strings.IndexAny(pattern, "*?[{"); i >= 0 {
		literal = pattern[:i]
		return len(literal) * 2
	}
	return len(literal)*2 + 1
}
