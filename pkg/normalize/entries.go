package normalize

import (
	"github.com/Sriram-PR/sitemap-gen/pkg/merge"
	"github.com/Sriram-PR/sitemap-gen/pkg/models"
	"github.com/Sriram-PR/sitemap-gen/pkg/parse"
	"github.com/Sriram-PR/sitemap-gen/pkg/resolve"
)

// NormalizeEntries resolves every raw entry and merges entries that share a dedup key.
// Entries without any location are dropped.
func NormalizeEntries(data []models.RawEntry, r resolve.Resolvers) []models.Entry {
	entries := make([]models.Entry, 0, len(data))
	for _, raw := range data {
		if raw.Location() == "" {
			continue
		}
		entries = append(entries, NormalizeEntry(raw, r))
	}
	// Last wins: a later source describing the same sitemap+loc refines the earlier one
	return merge.LastWinsMerge(entries, entryKey, overlayEntry)
}

// NormalizeEntry resolves one raw entry: location, lastmod, alternatives, images and
// videos. The input is not modified; nested collections are copied before resolution.
func NormalizeEntry(raw models.RawEntry, r resolve.Resolvers) models.Entry {
	e := models.Entry{
		// stable non-trailing form so duplicates line up before resolution
		Loc:        parse.FixSlashes(false, raw.Location()),
		Changefreq: raw.Changefreq,
		Priority:   raw.Priority,
		Sitemap:    raw.Sitemap,
	}
	if lastmod, ok := parse.NormalizeDate(raw.Lastmod); ok {
		e.Lastmod = lastmod
	}
	e.Loc = resolve.Resolve(e.Loc, r)

	if raw.Alternatives != nil {
		alternatives := make([]models.Alternative, len(raw.Alternatives))
		for i, a := range raw.Alternatives {
			a.Href = resolve.Resolve(a.Href, r)
			alternatives[i] = a
		}
		e.Alternatives = merge.LastWinsMerge(alternatives, hreflangKey, overlayAlternative)
	}

	if raw.Images != nil {
		images := make([]models.Image, len(raw.Images))
		for i, img := range raw.Images {
			img.Loc = resolve.Resolve(img.Loc, r)
			images[i] = img
		}
		e.Images = merge.LastWinsMerge(images, imageKey, overlayImage)
	}

	if raw.Videos != nil {
		// videos are kept as listed, no merge
		videos := make([]models.Video, len(raw.Videos))
		for i, v := range raw.Videos {
			if v.ContentLoc != "" {
				v.ContentLoc = resolve.Resolve(v.ContentLoc, r)
			}
			videos[i] = v
		}
		e.Videos = videos
	}

	e.Key = e.Sitemap + e.Loc
	return e
}

func entryKey(e models.Entry) string { return e.Key }

func overlayEntry(prev, next models.Entry) models.Entry { return prev.Overlay(next) }

func hreflangKey(a models.Alternative) string { return a.Hreflang }

func overlayAlternative(prev, next models.Alternative) models.Alternative {
	return prev.Overlay(next)
}

func imageKey(i models.Image) string { return i.Loc }

func overlayImage(prev, next models.Image) models.Image { return prev.Overlay(next) }
