package filter

import (
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/Sriram-PR/sitemap-gen/pkg/parse"
	"github.com/Sriram-PR/sitemap-gen/pkg/utils"
)

// RegexPrefix marks a pattern as a Go regular expression rather than a glob
const RegexPrefix = "regex:"

// rules is one compiled include or exclude list
type rules struct {
	literals map[string]bool
	globs    []string
	regexes  []*regexp.Regexp
}

// Filter is an include/exclude predicate over site paths
type Filter struct {
	include rules
	exclude rules
}

// New compiles include and exclude patterns.
// A pattern is either "regex:<expr>" or a glob where "*" stays inside one path segment and
// "**" spans segments. Returns an ErrConfigValidation error for invalid patterns.
func New(include, exclude []string) (*Filter, error) {
	inc, err := compile(include)
	if err != nil {
		return nil, utils.WrapErrorf(err, "include")
	}
	exc, err := compile(exclude)
	if err != nil {
		return nil, utils.WrapErrorf(err, "exclude")
	}
	return &Filter{include: inc, exclude: exc}, nil
}

// Match reports whether path passes the filter.
// An excluded path is always rejected; otherwise an empty include list accepts everything
// and a non-empty one requires a match.
func (f *Filter) Match(path string) bool {
	if f == nil {
		return true
	}
	if f.exclude.match(path) {
		return false
	}
	if f.include.empty() {
		return true
	}
	return f.include.match(path)
}

func compile(patterns []string) (rules, error) {
	r := rules{literals: make(map[string]bool)}
	var exprs []string
	for _, p := range patterns {
		switch {
		case p == "":
			continue
		case strings.HasPrefix(p, RegexPrefix):
			exprs = append(exprs, strings.TrimPrefix(p, RegexPrefix))
		case strings.ContainsAny(p, "*?[{"):
			if !doublestar.ValidatePattern(p) {
				return rules{}, utils.WrapErrorf(utils.ErrConfigValidation, "invalid glob pattern '%s'", p)
			}
			r.globs = append(r.globs, p)
		default:
			r.literals[parse.WithoutTrailingSlash(p)] = true
		}
	}
	compiled, err := utils.CompileRegexPatterns(exprs)
	if err != nil {
		return rules{}, err
	}
	r.regexes = compiled
	return r, nil
}

func (r rules) empty() bool {
	return len(r.literals) == 0 && len(r.globs) == 0 && len(r.regexes) == 0
}

func (r rules) match(path string) bool {
	for _, re := range r.regexes {
		if re.MatchString(path) {
			return true
		}
	}
	if r.literals[parse.WithoutTrailingSlash(path)] {
		return true
	}
	for _, g := range r.globs {
		if MatchGlob(g, path) {
			return true
		}
	}
	return false
}

// MatchGlob matches a route glob against a path, ignoring trailing slashes on both sides.
// "/blog/**" also matches "/blog" itself.
func MatchGlob(pattern, path string) bool {
	pattern = parse.WithoutTrailingSlash(pattern)
	path = parse.WithoutTrailingSlash(path)
	if prefix, ok := strings.CutSuffix(pattern, "/**"); ok && (path == prefix || (prefix == "" && path == "/")) {
		return true
	}
	matched, err := doublestar.Match(pattern, path)
	return err == nil && matched
}
