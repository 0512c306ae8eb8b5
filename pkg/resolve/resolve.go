package resolve

import (
	"net/url"

	"github.com/Sriram-PR/sitemap-gen/pkg/parse"
)

// Resolvers turns site-relative paths into canonical absolute URLs.
// Implementations are supplied by the caller; the pipeline never derives them itself.
type Resolvers interface {
	// CanonicalURL resolves a site-relative path against the site URL and app base path
	CanonicalURL(path string) string
	// FixSlashes normalises slashes of an already absolute URL
	FixSlashes(u string) string
}

// Resolve returns the final form of a location.
// Absolute and protocol-relative values only get their slashes fixed; everything else is
// treated as a site path. Empty input stays empty.
func Resolve(s string, r Resolvers) string {
	if s == "" {
		return s
	}
	if parse.HasProtocol(s) {
		return r.FixSlashes(s)
	}
	return r.CanonicalURL(s)
}

// ResolveURL is Resolve for parsed URLs. A nil URL resolves to "".
func ResolveURL(u *url.URL, r Resolvers) string {
	if u == nil {
		return ""
	}
	return Resolve(u.String(), r)
}

// SiteResolvers is the default Resolvers implementation driven by site configuration
type SiteResolvers struct {
	SiteURL       string // e.g. https://example.com
	BaseURL       string // app base path, e.g. /docs
	TrailingSlash bool
}

// NewSiteResolvers creates resolvers for a site
func NewSiteResolvers(siteURL, baseURL string, trailingSlash bool) SiteResolvers {
	return SiteResolvers{SiteURL: siteURL, BaseURL: baseURL, TrailingSlash: trailingSlash}
}

// CanonicalURL prefixes the base path and the site URL, then fixes slashes.
// Without a site URL the result stays site-relative.
func (s SiteResolvers) CanonicalURL(path string) string {
	p := parse.WithBase(path, s.BaseURL)
	if s.SiteURL != "" {
		p = parse.WithBase(p, s.SiteURL)
	}
	return parse.FixSlashes(s.TrailingSlash, p)
}

// FixSlashes applies the site's trailing-slash policy and collapses duplicate slashes
func (s SiteResolvers) FixSlashes(u string) string {
	return parse.FixSlashes(s.TrailingSlash, u)
}
