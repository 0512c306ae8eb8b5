package models

import "strings"

// RouteRule is a per-path override supplied by the hosting environment.
// Redirect is informational only; redirects are handled upstream.
type RouteRule struct {
	Index    *bool     `json:"index,omitempty" yaml:"index,omitempty"`
	Sitemap  *RawEntry `json:"sitemap,omitempty" yaml:"sitemap,omitempty"`
	Redirect string    `json:"redirect,omitempty" yaml:"redirect,omitempty"`
}

// Excluded reports whether the rule removes the path from the sitemap
func (r RouteRule) Excluded() bool {
	return r.Index != nil && !*r.Index
}

// Merge returns r with the fields set on more applied on top.
// Sitemap overrides are merged field by field.
func (r RouteRule) Merge(more RouteRule) RouteRule {
	if more.Index != nil {
		r.Index = more.Index
	}
	if more.Redirect != "" {
		r.Redirect = more.Redirect
	}
	if more.Sitemap != nil {
		merged := *more.Sitemap
		if r.Sitemap != nil {
			merged = r.Sitemap.Overlay(*more.Sitemap)
		}
		r.Sitemap = &merged
	}
	return r
}

// Page is a static route discovered from the pages directories. File is the
// source file the route was inferred from, if any.
type Page struct {
	Path string
	File string
}

// HasParams reports whether the route is parametrised, either in ":id" form or
// with an unconverted "[id]" segment
func (p Page) HasParams() bool {
	return strings.ContainsAny(p.Path, ":[")
}
