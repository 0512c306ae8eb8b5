package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Alternative is a locale-specific variant of an entry
type Alternative struct {
	Hreflang string `json:"hreflang" yaml:"hreflang"`
	Href     string `json:"href" yaml:"href"`
}

// Overlay returns a with every non-empty field of later applied on top
func (a Alternative) Overlay(later Alternative) Alternative {
	if later.Hreflang != "" {
		a.Hreflang = later.Hreflang
	}
	if later.Href != "" {
		a.Href = later.Href
	}
	return a
}

// Image is an image attached to an entry
type Image struct {
	Loc         string `json:"loc" yaml:"loc"`
	Caption     string `json:"caption,omitempty" yaml:"caption,omitempty"`
	Title       string `json:"title,omitempty" yaml:"title,omitempty"`
	GeoLocation string `json:"geo_location,omitempty" yaml:"geo_location,omitempty"`
	License     string `json:"license,omitempty" yaml:"license,omitempty"`
}

// Overlay returns i with every non-empty field of later applied on top
func (i Image) Overlay(later Image) Image {
	if later.Loc != "" {
		i.Loc = later.Loc
	}
	if later.Caption != "" {
		i.Caption = later.Caption
	}
	if later.Title != "" {
		i.Title = later.Title
	}
	if later.GeoLocation != "" {
		i.GeoLocation = later.GeoLocation
	}
	if later.License != "" {
		i.License = later.License
	}
	return i
}

// Video is a video attached to an entry. Only ContentLoc is resolved.
type Video struct {
	ContentLoc   string `json:"content_loc,omitempty" yaml:"content_loc,omitempty"`
	PlayerLoc    string `json:"player_loc,omitempty" yaml:"player_loc,omitempty"`
	ThumbnailLoc string `json:"thumbnail_loc,omitempty" yaml:"thumbnail_loc,omitempty"`
	Title        string `json:"title,omitempty" yaml:"title,omitempty"`
	Description  string `json:"description,omitempty" yaml:"description,omitempty"`
}

// RawEntry is a URL entry as supplied by configuration, the lazy endpoint or
// page inference. It decodes from either a bare path string or an object.
type RawEntry struct {
	Loc          string        `json:"loc,omitempty" yaml:"loc,omitempty"`
	URL          string        `json:"url,omitempty" yaml:"url,omitempty"` // alias of Loc
	Lastmod      Date          `json:"lastmod" yaml:"lastmod,omitempty"`
	Changefreq   string        `json:"changefreq,omitempty" yaml:"changefreq,omitempty" validate:"omitempty,oneof=always hourly daily weekly monthly yearly never"`
	Priority     *float64      `json:"priority,omitempty" yaml:"priority,omitempty" validate:"omitempty,min=0,max=1"`
	Alternatives []Alternative `json:"alternatives,omitempty" yaml:"alternatives,omitempty"`
	Images       []Image       `json:"images,omitempty" yaml:"images,omitempty"`
	Videos       []Video       `json:"videos,omitempty" yaml:"videos,omitempty"`
	Sitemap      string        `json:"_sitemap,omitempty" yaml:"_sitemap,omitempty"`
}

// rawEntryFields breaks the UnmarshalJSON/UnmarshalYAML recursion
type rawEntryFields RawEntry

// RawPath builds an entry from a bare path or URL
func RawPath(loc string) RawEntry {
	return RawEntry{Loc: loc}
}

// Location returns Loc, falling back to the URL alias
func (e RawEntry) Location() string {
	if e.Loc != "" {
		return e.Loc
	}
	return e.URL
}

// Overlay returns e with every non-empty field of later applied on top.
// Used to lay an entry over the configured defaults.
func (e RawEntry) Overlay(later RawEntry) RawEntry {
	if later.Loc != "" {
		e.Loc = later.Loc
	}
	if later.URL != "" {
		e.URL = later.URL
	}
	if !later.Lastmod.IsZero() {
		e.Lastmod = later.Lastmod
	}
	if later.Changefreq != "" {
		e.Changefreq = later.Changefreq
	}
	if later.Priority != nil {
		e.Priority = later.Priority
	}
	if later.Alternatives != nil {
		e.Alternatives = later.Alternatives
	}
	if later.Images != nil {
		e.Images = later.Images
	}
	if later.Videos != nil {
		e.Videos = later.Videos
	}
	if later.Sitemap != "" {
		e.Sitemap = later.Sitemap
	}
	return e
}

// UnmarshalJSON accepts either "/path" or {"loc": "/path", ...}
func (e *RawEntry) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*e = RawPath(s)
		return nil
	}
	var fields rawEntryFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*e = RawEntry(fields)
	return nil
}

// UnmarshalYAML accepts either a scalar path or a mapping
func (e *RawEntry) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*e = RawPath(node.Value)
		return nil
	case yaml.MappingNode:
		var fields rawEntryFields
		if err := node.Decode(&fields); err != nil {
			return err
		}
		*e = RawEntry(fields)
		return nil
	default:
		return fmt.Errorf("line %d: url entry must be a string or a mapping", node.Line)
	}
}

// Entry is a fully resolved sitemap entry. Lastmod is either empty (absent) or
// a valid W3C datetime. Key is the final dedup key: Sitemap + Loc.
type Entry struct {
	Loc          string        `json:"loc" yaml:"loc"`
	Lastmod      string        `json:"lastmod,omitempty" yaml:"lastmod,omitempty"`
	Changefreq   string        `json:"changefreq,omitempty" yaml:"changefreq,omitempty"`
	Priority     *float64      `json:"priority,omitempty" yaml:"priority,omitempty"`
	Alternatives []Alternative `json:"alternatives,omitempty" yaml:"alternatives,omitempty"`
	Images       []Image       `json:"images,omitempty" yaml:"images,omitempty"`
	Videos       []Video       `json:"videos,omitempty" yaml:"videos,omitempty"`
	Sitemap      string        `json:"_sitemap,omitempty" yaml:"_sitemap,omitempty"`
	Key          string        `json:"_key,omitempty" yaml:"-"`
}

// Overlay returns e with every non-empty field of later applied on top
func (e Entry) Overlay(later Entry) Entry {
	if later.Loc != "" {
		e.Loc = later.Loc
	}
	if later.Lastmod != "" {
		e.Lastmod = later.Lastmod
	}
	if later.Changefreq != "" {
		e.Changefreq = later.Changefreq
	}
	if later.Priority != nil {
		e.Priority = later.Priority
	}
	if later.Alternatives != nil {
		e.Alternatives = later.Alternatives
	}
	if later.Images != nil {
		e.Images = later.Images
	}
	if later.Videos != nil {
		e.Videos = later.Videos
	}
	if later.Sitemap != "" {
		e.Sitemap = later.Sitemap
	}
	if later.Key != "" {
		e.Key = later.Key
	}
	return e
}

// Raw converts a resolved entry back into source form so it can be run
// through normalisation again
func (e Entry) Raw() RawEntry {
	raw := RawEntry{
		Loc:          e.Loc,
		Changefreq:   e.Changefreq,
		Priority:     e.Priority,
		Alternatives: e.Alternatives,
		Images:       e.Images,
		Videos:       e.Videos,
		Sitemap:      e.Sitemap,
	}
	if e.Lastmod != "" {
		raw.Lastmod = DateFromString(e.Lastmod)
	}
	return raw
}
