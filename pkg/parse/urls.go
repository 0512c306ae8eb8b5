package parse

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/purell"
)

var (
	protocolPattern         = regexp.MustCompile(`^[\s\w\x00+.-]{2,}:([/\\]{2})?`)
	protocolRelativePattern = regexp.MustCompile(`^([/\\]\s*){2,}[^/\\]`)
	duplicateSlashes        = regexp.MustCompile(`/{2,}`)
)

// HasProtocol reports whether s carries a scheme ("https:", "mailto:") or is protocol-relative ("//cdn...").
// Such values are never re-rooted onto the site.
func HasProtocol(s string) bool {
	return protocolRelativePattern.MatchString(s) || protocolPattern.MatchString(s)
}

// HasTrailingSlash reports whether s ends in "/"
func HasTrailingSlash(s string) bool {
	return strings.HasSuffix(s, "/")
}

// WithTrailingSlash appends "/" unless already present
func WithTrailingSlash(s string) string {
	if HasTrailingSlash(s) {
		return s
	}
	return s + "/"
}

// WithoutTrailingSlash strips one trailing "/"; an empty result becomes "/"
func WithoutTrailingSlash(s string) string {
	s = strings.TrimSuffix(s, "/")
	if s == "" {
		return "/"
	}
	return s
}

// JoinURL joins a base and a path with exactly one slash between them
func JoinURL(base, p string) string {
	if p == "" || p == "/" {
		return base
	}
	if base == "" {
		return p
	}
	return WithTrailingSlash(base) + strings.TrimLeft(p, "/")
}

// WithBase prefixes input with base unless base is empty or "/", input is already absolute,
// or input already starts with base.
func WithBase(input, base string) string {
	if base == "" || base == "/" || HasProtocol(input) {
		return input
	}
	trimmed := WithoutTrailingSlash(base)
	if strings.HasPrefix(input, trimmed) {
		return input
	}
	return JoinURL(trimmed, input)
}

// encodeURIKeep lists the ASCII characters EncodeURI leaves untouched
const encodeURIKeep = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789;,/?:@&=+$-_.!~*'()#"

// EncodeURI percent-encodes every byte outside the URI reserved and unreserved sets,
// leaving URL structure intact. "%" itself is encoded.
func EncodeURI(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if strings.IndexByte(encodeURIKeep, c) >= 0 {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

// FixSlashes collapses duplicate slashes in the path of a path or URL and applies the
// trailing-slash policy. Paths that look like files ("/feed.xml") keep their form.
// The path is handled in its escaped form so existing encoding is left as written.
// Unparseable input only gets the duplicate-slash collapse.
func FixSlashes(trailingSlash bool, pathOrURL string) string {
	u, err := url.Parse(pathOrURL)
	if err != nil {
		return collapsePathSlashes(pathOrURL)
	}
	p := removeDuplicateSlashes(u.EscapedPath())
	if !strings.Contains(p, ".") {
		if trailingSlash {
			p = WithTrailingSlash(p)
		} else {
			p = WithoutTrailingSlash(p)
		}
	}
	setEscapedPath(u, p)
	return u.String()
}

// removeDuplicateSlashes runs purell's duplicate-slash rule over an escaped path
func removeDuplicateSlashes(escaped string) string {
	tmp := &url.URL{Path: escaped}
	purell.NormalizeURL(tmp, purell.FlagRemoveDuplicateSlashes)
	return tmp.Path
}

// setEscapedPath stores an already escaped path on u so String() emits it verbatim
func setEscapedPath(u *url.URL, escaped string) {
	unescaped, err := url.PathUnescape(escaped)
	if err != nil {
		return
	}
	u.Path = unescaped
	u.RawPath = escaped
}

// collapsePathSlashes collapses "//" runs after any scheme separator
func collapsePathSlashes(s string) string {
	prefix := ""
	if i := strings.Index(s, "://"); i >= 0 {
		prefix, s = s[:i+3], s[i+3:]
	} else if strings.HasPrefix(s, "//") {
		prefix, s = "//", s[2:]
	}
	return prefix + duplicateSlashes.ReplaceAllString(s, "/")
}
