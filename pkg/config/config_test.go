package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func boolPtr(b bool) *bool { return &b }

func TestGetEffectiveInferStaticPages(t *testing.T) {
	tests := []struct {
		name string
		site *bool
		app  *bool
		want bool
	}{
		{"both unset defaults to true", nil, nil, true},
		{"app disables", nil, boolPtr(false), false},
		{"site overrides app", boolPtr(true), boolPtr(false), true},
		{"site disables", boolPtr(false), nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetEffectiveInferStaticPages(
				SiteConfig{InferStaticPagesAsRoutes: tt.site},
				AppConfig{InferStaticPagesAsRoutes: tt.app})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetEffectiveAutoLastmod(t *testing.T) {
	assert.False(t, GetEffectiveAutoLastmod(SiteConfig{}, AppConfig{}))
	assert.True(t, GetEffectiveAutoLastmod(SiteConfig{}, AppConfig{AutoLastmod: true}))
	assert.False(t, GetEffectiveAutoLastmod(SiteConfig{AutoLastmod: boolPtr(false)}, AppConfig{AutoLastmod: true}))
}

func TestGetEffectiveRobotsUserAgent(t *testing.T) {
	assert.Equal(t, "*", GetEffectiveRobotsUserAgent(SiteConfig{}, AppConfig{}))
	assert.Equal(t, "app-bot", GetEffectiveRobotsUserAgent(SiteConfig{}, AppConfig{DefaultUserAgent: "app-bot"}))
	assert.Equal(t, "site-bot", GetEffectiveRobotsUserAgent(
		SiteConfig{RobotsUserAgent: "site-bot"}, AppConfig{DefaultUserAgent: "app-bot"}))
}

func TestAppConfig_YAML(t *testing.T) {
	doc := `
default_user_agent: test-agent
max_retries: 2
lazy_fetch_timeout: 5s
watch_interval: 1h
sites:
  docs:
    site_url: https://example.com
    base_url: /docs/
    trailing_slash: true
    urls:
      - /about
      - loc: /blog
        lastmod: 2023-01-02
        changefreq: weekly
        priority: 0.5
    exclude:
      - /secret/**
    route_rules:
      /private/**:
        index: false
      /blog/**:
        sitemap:
          changefreq: daily
`
	var cfg AppConfig
	require.NoError(t, yaml.Unmarshal([]byte(doc), &cfg))

	assert.Equal(t, "test-agent", cfg.DefaultUserAgent)
	assert.Equal(t, 5*time.Second, cfg.LazyFetchTimeout)
	assert.Equal(t, time.Hour, cfg.WatchInterval)

	site, ok := cfg.Sites["docs"]
	require.True(t, ok)
	assert.Equal(t, "https://example.com", site.SiteURL)
	assert.True(t, site.TrailingSlash)
	require.Len(t, site.URLs, 2)
	assert.Equal(t, "/about", site.URLs[0].Location())
	assert.Equal(t, "/blog", site.URLs[1].Location())
	assert.Equal(t, "2023-01-02", site.URLs[1].Lastmod.Raw())
	assert.Equal(t, "weekly", site.URLs[1].Changefreq)
	require.NotNil(t, site.URLs[1].Priority)
	assert.InDelta(t, 0.5, *site.URLs[1].Priority, 1e-9)

	require.Len(t, site.RouteRules, 2)
	assert.True(t, site.RouteRules["/private/**"].Excluded())
	require.NotNil(t, site.RouteRules["/blog/**"].Sitemap)
	assert.Equal(t, "daily", site.RouteRules["/blog/**"].Sitemap.Changefreq)
}
