package sources

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/sitemap-gen/pkg/fetch"
	"github.com/Sriram-PR/sitemap-gen/pkg/models"
	"github.com/Sriram-PR/sitemap-gen/pkg/parse"
	"github.com/Sriram-PR/sitemap-gen/pkg/utils"
)

// Result is the outcome of a best-effort fetch. A failed Result carries the
// error for diagnostics; Values collapses it to an empty list.
type Result struct {
	OK      bool
	Entries []models.RawEntry
	Err     error
}

// Values returns the fetched entries, or an empty list if the fetch failed
func (r Result) Values() []models.RawEntry {
	if !r.OK || r.Entries == nil {
		return []models.RawEntry{}
	}
	return r.Entries
}

// LazySource fetches the URL list a site exposes at its api_urls_endpoint.
// The body is a JSON array whose items are paths or entry objects.
type LazySource struct {
	getter   fetch.JSONGetter
	endpoint string
	timeout  time.Duration
	log      *logrus.Entry
}

// NewLazySource creates a LazySource. A relative endpoint is resolved against siteURL.
// timeout bounds a single Fetch; 0 means no bound beyond the caller's context.
func NewLazySource(getter fetch.JSONGetter, siteURL, endpoint string, timeout time.Duration, log *logrus.Entry) *LazySource {
	resolved := parse.WithBase(endpoint, siteURL)
	return &LazySource{
		getter:   getter,
		endpoint: resolved,
		timeout:  timeout,
		log:      log.WithField("endpoint", resolved),
	}
}

// Endpoint returns the resolved URL that is fetched
func (s *LazySource) Endpoint() string { return s.endpoint }

// Fetch retrieves the remote URL list. It never panics or propagates an error;
// failures are reported through the Result.
func (s *LazySource) Fetch(ctx context.Context) Result {
	if s == nil || s.getter == nil {
		return Result{Err: utils.ErrSourceDisabled}
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var entries []models.RawEntry
	if err := s.getter.GetJSON(ctx, s.endpoint, &entries); err != nil {
		s.log.WithFields(logrus.Fields{
			"error_type": utils.CategorizeError(err),
			"error":      err,
		}).Warn("Remote URL source unavailable, continuing without it")
		return Result{Err: err}
	}

	s.log.WithField("count", len(entries)).Debug("Fetched remote URLs")
	return Result{OK: true, Entries: entries}
}
