package config

import (
	"time"

	"github.com/Sriram-PR/sitemap-gen/pkg/models"
)

const (
	DefaultAPIURLsEndpoint = "/api/_sitemap-urls"
	DefaultUserAgent       = "sitemap-gen/1.0"
)

// DefaultExtensions are the page source extensions considered for route inference
var DefaultExtensions = []string{".vue", ".md", ".html"}

// DefaultPagesDirs are scanned when a site lists no pages_dirs
var DefaultPagesDirs = []string{"pages"}

// SiteConfig holds the sitemap configuration for a single site
type SiteConfig struct {
	SiteURL                  string                      `yaml:"site_url" validate:"omitempty,url"`
	BaseURL                  string                      `yaml:"base_url,omitempty"`
	URLs                     []models.RawEntry           `yaml:"urls,omitempty" validate:"dive"`
	Defaults                 models.RawEntry             `yaml:"defaults,omitempty"`
	Include                  []string                    `yaml:"include,omitempty"`
	Exclude                  []string                    `yaml:"exclude,omitempty"`
	Extensions               []string                    `yaml:"extensions,omitempty"`
	PagesDirs                []string                    `yaml:"pages_dirs,omitempty"`
	TrailingSlash            bool                        `yaml:"trailing_slash,omitempty"`
	InferStaticPagesAsRoutes *bool                       `yaml:"infer_static_pages_as_routes,omitempty"`
	HasAPIRoutesURL          bool                        `yaml:"has_api_routes_url,omitempty"`
	APIURLsEndpoint          string                      `yaml:"api_urls_endpoint,omitempty"`
	AutoLastmod              *bool                       `yaml:"auto_lastmod,omitempty"`
	RouteRules               map[string]models.RouteRule `yaml:"route_rules,omitempty"`
	RobotsTxt                string                      `yaml:"robots_txt,omitempty"`        // Local robots.txt whose rules filter the output
	RobotsUserAgent          string                      `yaml:"robots_user_agent,omitempty"` // Group to apply from robots_txt
}

// AppConfig holds the global application configuration
type AppConfig struct {
	DefaultUserAgent         string                `yaml:"default_user_agent"`
	InferStaticPagesAsRoutes *bool                 `yaml:"infer_static_pages_as_routes,omitempty"`
	AutoLastmod              bool                  `yaml:"auto_lastmod,omitempty"`
	MaxRetries               int                   `yaml:"max_retries,omitempty"`
	InitialRetryDelay        time.Duration         `yaml:"initial_retry_delay,omitempty"`
	MaxRetryDelay            time.Duration         `yaml:"max_retry_delay,omitempty"`
	LazyFetchTimeout         time.Duration         `yaml:"lazy_fetch_timeout,omitempty"` // Upper bound for the remote URL source (0 = no timeout)
	WatchInterval            time.Duration         `yaml:"watch_interval,omitempty"`
	HTTPClientSettings       HTTPClientConfig      `yaml:"http_client_settings,omitempty"`
	Sites                    map[string]SiteConfig `yaml:"sites"`
}

// HTTPClientConfig holds settings for the shared HTTP client
type HTTPClientConfig struct {
	Timeout             time.Duration `yaml:"timeout,omitempty"`
	MaxIdleConns        int           `yaml:"max_idle_conns,omitempty"`
	MaxIdleConnsPerHost int           `yaml:"max_idle_conns_per_host,omitempty"`
	IdleConnTimeout     time.Duration `yaml:"idle_conn_timeout,omitempty"`
	TLSHandshakeTimeout time.Duration `yaml:"tls_handshake_timeout,omitempty"`
	DialerTimeout       time.Duration `yaml:"dialer_timeout,omitempty"`
	DialerKeepAlive     time.Duration `yaml:"dialer_keep_alive,omitempty"`
}

// GetEffectiveInferStaticPages determines whether page routes are inferred.
// Site overrides global; both unset means enabled.
func GetEffectiveInferStaticPages(siteCfg SiteConfig, appCfg AppConfig) bool {
	if siteCfg.InferStaticPagesAsRoutes != nil {
		return *siteCfg.InferStaticPagesAsRoutes
	}
	if appCfg.InferStaticPagesAsRoutes != nil {
		return *appCfg.InferStaticPagesAsRoutes
	}
	return true
}

// GetEffectiveAutoLastmod determines whether lastmod is filled in automatically
func GetEffectiveAutoLastmod(siteCfg SiteConfig, appCfg AppConfig) bool {
	if siteCfg.AutoLastmod != nil {
		return *siteCfg.AutoLastmod
	}
	return appCfg.AutoLastmod
}

// GetEffectiveRobotsUserAgent picks the robots.txt group to apply
func GetEffectiveRobotsUserAgent(siteCfg SiteConfig, appCfg AppConfig) string {
	if siteCfg.RobotsUserAgent != "" {
		return siteCfg.RobotsUserAgent
	}
	if appCfg.DefaultUserAgent != "" {
		return appCfg.DefaultUserAgent
	}
	return "*"
}
