package sitemap

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sriram-PR/sitemap-gen/pkg/config"
	"github.com/Sriram-PR/sitemap-gen/pkg/filter"
	"github.com/Sriram-PR/sitemap-gen/pkg/models"
	"github.com/Sriram-PR/sitemap-gen/pkg/routerules"
	"github.com/Sriram-PR/sitemap-gen/pkg/sources"
	"github.com/Sriram-PR/sitemap-gen/pkg/utils"
)

type fakePages struct {
	pages []models.Page
	err   error
}

func (f fakePages) Pages(ctx context.Context) ([]models.Page, error) { return f.pages, f.err }

type fakeLazy struct {
	res   sources.Result
	calls int
}

func (f *fakeLazy) Fetch(ctx context.Context) sources.Result {
	f.calls++
	return f.res
}

func testLogger() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

func boolPtr(b bool) *bool { return &b }

func fixedNow() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) }

func newGenerator(t *testing.T, cfg config.SiteConfig, deps Deps) *Generator {
	t.Helper()
	_, err := cfg.Validate()
	require.NoError(t, err)
	if deps.Now == nil {
		deps.Now = fixedNow
	}
	g, err := New(cfg, config.AppConfig{}, deps, testLogger())
	require.NoError(t, err)
	return g
}

func locs(entries []models.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Loc)
	}
	return out
}

func TestGenerate_SourceOrderAndFirstWins(t *testing.T) {
	lazy := &fakeLazy{res: sources.Result{OK: true, Entries: []models.RawEntry{
		{Loc: "/from-lazy", Changefreq: "daily"},
		{Loc: "/shared", Changefreq: "hourly"},
	}}}
	cfg := config.SiteConfig{
		HasAPIRoutesURL: true,
		SiteURL:         "https://example.com",
		URLs: []models.RawEntry{
			{Loc: "/shared", Changefreq: "weekly"},
			{Loc: "/about", Changefreq: "monthly"},
		},
	}
	pages := fakePages{pages: []models.Page{{Path: "/about"}, {Path: "/contact"}}}

	entries, err := newGenerator(t, cfg, Deps{Lazy: lazy, Pages: pages}).Generate(context.Background())
	require.NoError(t, err)

	byLoc := make(map[string]models.Entry)
	for _, e := range entries {
		byLoc[e.Loc] = e
	}
	require.Len(t, byLoc, 4)
	assert.Equal(t, 1, lazy.calls)
	assert.Equal(t, "hourly", byLoc["https://example.com/shared"].Changefreq)
	assert.Equal(t, "monthly", byLoc["https://example.com/about"].Changefreq)
	assert.Contains(t, byLoc, "https://example.com/contact")
}

func TestGenerate_SortedByLocLengthStable(t *testing.T) {
	cfg := config.SiteConfig{
		URLs: []models.RawEntry{
			models.RawPath("/long/path/here"),
			models.RawPath("/bbb"),
			models.RawPath("/aaa"),
			models.RawPath("/"),
		},
	}
	entries, err := newGenerator(t, cfg, Deps{}).Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"/", "/bbb", "/aaa", "/long/path/here"}, locs(entries))
}

func TestGenerate_RouteRuleDropsSecret(t *testing.T) {
	rules := routerules.NewTable(map[string]models.RouteRule{
		"/secret": {Index: boolPtr(false)},
	})
	cfg := config.SiteConfig{
		SiteURL:       "https://example.com",
		TrailingSlash: true,
		URLs:          []models.RawEntry{models.RawPath("/secret"), models.RawPath("/public")},
	}
	lazy := &fakeLazy{res: sources.Result{OK: true, Entries: []models.RawEntry{models.RawPath("/secret/")}}}
	cfg.HasAPIRoutesURL = true
	pages := fakePages{pages: []models.Page{{Path: "/secret"}}}

	entries, err := newGenerator(t, cfg, Deps{Lazy: lazy, Pages: pages, RouteRules: rules}).Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/public/"}, locs(entries))
}

func TestGenerate_RouteRuleOverrideWins(t *testing.T) {
	priority := 0.9
	rules := routerules.LookupFunc(func(path string) models.RouteRule {
		if path == "/blog" {
			return models.RouteRule{Sitemap: &models.RawEntry{
				Changefreq: "daily",
				Priority:   &priority,
				Lastmod:    models.DateFromString("2023-02-21T04:50:52.123Z"),
			}}
		}
		return models.RouteRule{}
	})
	cfg := config.SiteConfig{
		URLs: []models.RawEntry{{Loc: "/blog/", Changefreq: "yearly", Lastmod: models.DateFromString("2020-01-01")}},
	}

	entries, err := newGenerator(t, cfg, Deps{RouteRules: rules}).Generate(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "/blog", entries[0].Loc)
	assert.Equal(t, "daily", entries[0].Changefreq)
	require.NotNil(t, entries[0].Priority)
	assert.InDelta(t, 0.9, *entries[0].Priority, 1e-9)
	assert.Equal(t, "2023-02-21T04:50:52+00:00", entries[0].Lastmod)
}

func TestGenerate_LazyFailureAbsorbed(t *testing.T) {
	lazy := &fakeLazy{res: sources.Result{Err: errors.New("connection refused")}}
	cfg := config.SiteConfig{
		HasAPIRoutesURL: true,
		SiteURL:         "https://example.com",
		URLs:            []models.RawEntry{models.RawPath("/a")},
	}

	entries, err := newGenerator(t, cfg, Deps{Lazy: lazy}).Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/a"}, locs(entries))
}

func TestGenerate_LazyNotCalledWhenDisabled(t *testing.T) {
	lazy := &fakeLazy{res: sources.Result{OK: true, Entries: []models.RawEntry{models.RawPath("/x")}}}
	entries, err := newGenerator(t, config.SiteConfig{}, Deps{Lazy: lazy}).Generate(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Equal(t, 0, lazy.calls)
}

func TestGenerate_PageDiscoveryErrorAbsorbed(t *testing.T) {
	pages := fakePages{
		pages: []models.Page{{Path: "/found"}},
		err:   utils.ErrFilesystem,
	}
	entries, err := newGenerator(t, config.SiteConfig{}, Deps{Pages: pages}).Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"/found"}, locs(entries))
}

func TestGenerate_PagesSkipParamsAndFiltered(t *testing.T) {
	pages := fakePages{pages: []models.Page{
		{Path: "/users/:id"},
		{Path: "/docs/[slug]"},
		{Path: "/admin"},
		{Path: "/kept"},
	}}
	cfg := config.SiteConfig{Exclude: []string{"/admin"}}

	entries, err := newGenerator(t, cfg, Deps{Pages: pages}).Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"/kept"}, locs(entries))
}

func TestGenerate_InferPagesDisabled(t *testing.T) {
	cfg := config.SiteConfig{InferStaticPagesAsRoutes: boolPtr(false)}
	pages := fakePages{pages: []models.Page{{Path: "/kept"}}}

	entries, err := newGenerator(t, cfg, Deps{Pages: pages}).Generate(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGenerate_FilterAndRobots(t *testing.T) {
	robots, err := filter.NewRobotsFilter([]byte("User-agent: *\nDisallow: /private\n"), "*")
	require.NoError(t, err)

	cfg := config.SiteConfig{
		Include: []string{"/docs/**", "/private/**"},
		Exclude: []string{"/docs/drafts/**"},
		URLs: []models.RawEntry{
			models.RawPath("/docs/intro"),
			models.RawPath("/docs/drafts/wip"),
			models.RawPath("/private/area"),
			models.RawPath("/other"),
		},
	}

	entries, err := newGenerator(t, cfg, Deps{Robots: robots}).Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"/docs/intro"}, locs(entries))
}

func TestGenerate_DefaultsAndBaseURL(t *testing.T) {
	cfg := config.SiteConfig{
		SiteURL: "https://example.com",
		BaseURL: "/docs/",
		Defaults: models.RawEntry{
			Changefreq: "weekly",
			Lastmod:    models.DateFromString("2023-01-01"),
		},
		URLs: []models.RawEntry{
			models.RawPath("/a b"),
			{URL: "/c", Changefreq: "daily"},
		},
	}

	entries, err := newGenerator(t, cfg, Deps{}).Generate(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "https://example.com/docs/c", entries[0].Loc)
	assert.Equal(t, "daily", entries[0].Changefreq)
	assert.Equal(t, "https://example.com/docs/a%20b", entries[1].Loc)
	assert.Equal(t, "weekly", entries[1].Changefreq)
	assert.Equal(t, "2023-01-01", entries[1].Lastmod)
}

func TestGenerate_InvalidLastmodDropped(t *testing.T) {
	cfg := config.SiteConfig{
		URLs: []models.RawEntry{{Loc: "/a", Lastmod: models.DateFromString("2023-13-40")}},
	}
	entries, err := newGenerator(t, cfg, Deps{}).Generate(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Empty(t, entries[0].Lastmod)
}

func TestGenerate_AutoLastmod(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "about.vue")
	require.NoError(t, os.WriteFile(file, []byte("<template/>"), 0o644))
	modTime := time.Date(2022, 3, 4, 5, 6, 7, 0, time.UTC)
	require.NoError(t, os.Chtimes(file, modTime, modTime))

	cfg := config.SiteConfig{
		AutoLastmod: boolPtr(true),
		URLs:        []models.RawEntry{models.RawPath("/configured")},
	}
	pages := fakePages{pages: []models.Page{{Path: "/about", File: file}}}

	entries, err := newGenerator(t, cfg, Deps{Pages: pages}).Generate(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byLoc := map[string]string{}
	for _, e := range entries {
		byLoc[e.Loc] = e.Lastmod
	}
	assert.Equal(t, "2024-05-06T07:08:09+00:00", byLoc["/configured"])
	assert.Equal(t, "2022-03-04T05:06:07+00:00", byLoc["/about"])
}

func TestGenerate_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newGenerator(t, config.SiteConfig{URLs: []models.RawEntry{models.RawPath("/a")}}, Deps{}).Generate(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerate_UniqueLocs(t *testing.T) {
	cfg := config.SiteConfig{
		SiteURL: "https://example.com",
		URLs: []models.RawEntry{
			models.RawPath("/a"),
			models.RawPath("/a/"),
			models.RawPath("https://example.com/a"),
		},
	}
	entries, err := newGenerator(t, cfg, Deps{}).Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/a"}, locs(entries))
}

func TestBuild_ResolvesAndMerges(t *testing.T) {
	cfg := config.SiteConfig{
		SiteURL: "https://example.com",
		URLs: []models.RawEntry{
			{
				Loc: "/gallery",
				Images: []models.Image{
					{Loc: "/img/a.jpg"},
					{Loc: "/img/a.jpg", Caption: "x"},
				},
				Alternatives: []models.Alternative{{Hreflang: "fr", Href: "/fr/gallery"}},
			},
		},
	}

	entries, err := newGenerator(t, cfg, Deps{}).Build(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, "https://example.com/gallery", e.Loc)
	assert.Equal(t, "https://example.com/gallery", e.Key)
	require.Len(t, e.Images, 1)
	assert.Equal(t, "https://example.com/img/a.jpg", e.Images[0].Loc)
	assert.Equal(t, "x", e.Images[0].Caption)
	require.Len(t, e.Alternatives, 1)
	assert.Equal(t, "https://example.com/fr/gallery", e.Alternatives[0].Href)
}

func TestNew_InvalidFilter(t *testing.T) {
	_, err := New(config.SiteConfig{Include: []string{"regex:("}}, config.AppConfig{}, Deps{}, testLogger())
	assert.ErrorIs(t, err, utils.ErrConfigValidation)
}
