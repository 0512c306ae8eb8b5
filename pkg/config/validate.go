package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Sriram-PR/sitemap-gen/pkg/filter"
	"github.com/Sriram-PR/sitemap-gen/pkg/parse"
	"github.com/Sriram-PR/sitemap-gen/pkg/utils"
)

var validate = validator.New()

// Validate checks AppConfig fields and applies sensible defaults.
// Returns collected warnings and any fatal error.
// Modifies receiver in place to apply defaults.
func (c *AppConfig) Validate() (warnings []string, err error) {
	// DefaultUserAgent
	if c.DefaultUserAgent == "" {
		c.DefaultUserAgent = DefaultUserAgent
	}

	// MaxRetries
	if c.MaxRetries < 0 {
		warnings = append(warnings, "max_retries cannot be negative, setting to 0")
		c.MaxRetries = 0
	}
	if c.MaxRetries == 0 && c.InitialRetryDelay == 0 {
		c.MaxRetries = 3
	}

	// Retry delays (only if retries enabled)
	if c.MaxRetries > 0 {
		if c.InitialRetryDelay <= 0 {
			c.InitialRetryDelay = 1 * time.Second
		}
		if c.MaxRetryDelay <= 0 {
			c.MaxRetryDelay = 30 * time.Second
		}
	}

	if c.InitialRetryDelay > c.MaxRetryDelay && c.MaxRetryDelay > 0 {
		warnings = append(warnings, fmt.Sprintf(
			"initial_retry_delay (%v) > max_retry_delay (%v), using max_retry_delay for initial",
			c.InitialRetryDelay, c.MaxRetryDelay))
		c.InitialRetryDelay = c.MaxRetryDelay
	}

	// LazyFetchTimeout
	if c.LazyFetchTimeout < 0 {
		warnings = append(warnings, "lazy_fetch_timeout cannot be negative, disabling timeout")
		c.LazyFetchTimeout = 0
	}

	// WatchInterval
	if c.WatchInterval < 0 {
		warnings = append(warnings, "watch_interval cannot be negative, disabling periodic regeneration")
		c.WatchInterval = 0
	}

	c.validateHTTPClientSettings()

	return warnings, nil // AppConfig validation never fails fatally
}

// validateHTTPClientSettings applies defaults to HTTP client settings.
func (c *AppConfig) validateHTTPClientSettings() {
	h := &c.HTTPClientSettings
	if h.Timeout <= 0 {
		h.Timeout = 30 * time.Second
	}
	if h.MaxIdleConns <= 0 {
		h.MaxIdleConns = 100
	}
	if h.MaxIdleConnsPerHost <= 0 {
		h.MaxIdleConnsPerHost = 2
	}
	if h.IdleConnTimeout <= 0 {
		h.IdleConnTimeout = 90 * time.Second
	}
	if h.TLSHandshakeTimeout <= 0 {
		h.TLSHandshakeTimeout = 10 * time.Second
	}
	if h.DialerTimeout <= 0 {
		h.DialerTimeout = 15 * time.Second
	}
	if h.DialerKeepAlive <= 0 {
		h.DialerKeepAlive = 30 * time.Second
	}
}

// Validate checks SiteConfig fields and applies defaults.
// Returns collected warnings and any fatal error.
// Modifies receiver in place (base_url, extensions and endpoint normalization).
func (c *SiteConfig) Validate() (warnings []string, err error) {
	if err := validate.Struct(c); err != nil {
		return nil, translateValidationErrors(err)
	}
	// defaults are laid under every entry, so they follow the same rules as urls
	if err := validate.Struct(c.Defaults); err != nil {
		return nil, translateValidationErrors(err)
	}

	// BaseURL normalization
	if c.BaseURL == "" {
		c.BaseURL = "/"
	} else if c.BaseURL[0] != '/' {
		c.BaseURL = "/" + c.BaseURL
	}

	// Extensions
	if len(c.Extensions) == 0 {
		c.Extensions = append([]string(nil), DefaultExtensions...)
	}
	for i, ext := range c.Extensions {
		if ext != "" && ext[0] != '.' {
			c.Extensions[i] = "." + ext
		}
	}

	// PagesDirs
	if len(c.PagesDirs) == 0 {
		c.PagesDirs = append([]string(nil), DefaultPagesDirs...)
	}

	// API endpoint
	if c.APIURLsEndpoint == "" {
		c.APIURLsEndpoint = DefaultAPIURLsEndpoint
	}
	if c.HasAPIRoutesURL && !parse.HasProtocol(c.APIURLsEndpoint) && c.SiteURL == "" {
		return nil, fmt.Errorf("%w: has_api_routes_url with relative api_urls_endpoint %q needs site_url",
			utils.ErrConfigValidation, c.APIURLsEndpoint)
	}

	// Include/Exclude patterns must compile
	if _, err := filter.New(c.Include, c.Exclude); err != nil {
		return nil, err
	}

	if c.SiteURL == "" {
		warnings = append(warnings, "site_url is empty, entries will keep relative locations")
	}
	if c.RobotsUserAgent != "" && c.RobotsTxt == "" {
		warnings = append(warnings, "robots_user_agent is set but robots_txt is empty, ignoring")
	}

	return warnings, nil
}

// translateValidationErrors flattens validator output into one ErrConfigValidation
func translateValidationErrors(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fmt.Errorf("%w: %v", utils.ErrConfigValidation, err)
	}

	messages := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		var message string
		switch fe.Tag() {
		case "url":
			message = fmt.Sprintf("%s must be an absolute URL", fe.Namespace())
		case "oneof":
			message = fmt.Sprintf("%s must be one of [%s]", fe.Namespace(), fe.Param())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", fe.Namespace(), fe.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", fe.Namespace(), fe.Param())
		default:
			message = fe.Error()
		}
		messages = append(messages, message)
	}
	return fmt.Errorf("%w: %s", utils.ErrConfigValidation, strings.Join(messages, "; "))
}
