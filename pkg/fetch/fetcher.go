package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/sitemap-gen/pkg/config"
	"github.com/Sriram-PR/sitemap-gen/pkg/utils"
)

// maxBodyBytes caps how much of a JSON response is read
const maxBodyBytes = 32 << 20

// RetryPolicy controls how often and how slowly failed requests are retried
type RetryPolicy struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// PolicyFromConfig extracts the retry settings from the application config
func PolicyFromConfig(cfg config.AppConfig) RetryPolicy {
	return RetryPolicy{
		MaxRetries:   cfg.MaxRetries,
		InitialDelay: cfg.InitialRetryDelay,
		MaxDelay:     cfg.MaxRetryDelay,
	}
}

// delay returns the backoff before the given retry attempt (1-based), with +/- 10% jitter
func (p RetryPolicy) delay(attempt int) time.Duration {
	backoff := time.Duration(float64(p.InitialDelay) * math.Pow(2, float64(attempt-1)))
	if backoff <= 0 || (p.MaxDelay > 0 && backoff > p.MaxDelay) {
		backoff = p.MaxDelay
	}
	if backoff <= 0 {
		return 0
	}
	var jitter time.Duration
	if spread := int64(backoff) / 5; spread > 0 {
		jitter = time.Duration(rand.Int63n(spread)) - backoff/10
	}
	if d := backoff + jitter; d > 0 {
		return d
	}
	return 0
}

// JSONGetter fetches a URL and decodes its JSON body into v
type JSONGetter interface {
	GetJSON(ctx context.Context, rawURL string, v any) error
}

// Fetcher performs HTTP requests with retry, exponential backoff and jitter.
// 5xx, 429 and network errors are retried; other 4xx are returned at once.
type Fetcher struct {
	client    *http.Client
	policy    RetryPolicy
	userAgent string
	log       *logrus.Entry
}

// NewFetcher creates a Fetcher
func NewFetcher(client *http.Client, policy RetryPolicy, userAgent string, log *logrus.Entry) *Fetcher {
	return &Fetcher{
		client:    client,
		policy:    policy,
		userAgent: userAgent,
		log:       log,
	}
}

// FetchWithRetry executes req until it succeeds, fails permanently or ctx ends.
// On a non-retryable status the response is returned with the error and the
// caller must close its body.
func (f *Fetcher) FetchWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	var lastErr error
	reqLog := f.log.WithField("url", req.URL.String())

	for attempt := 0; attempt <= f.policy.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return nil, fmt.Errorf("context cancelled after error: %w: %w", err, lastErr)
			}
			return nil, fmt.Errorf("context cancelled before first attempt: %w", err)
		}

		if attempt > 0 {
			wait := f.policy.delay(attempt)
			reqLog.WithFields(logrus.Fields{"attempt": attempt, "max_retries": f.policy.MaxRetries, "delay": wait}).Warn("Retrying request...")

			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return nil, fmt.Errorf("context cancelled during retry delay: %w: %w", ctx.Err(), lastErr)
			}
		}

		resp, err := f.client.Do(req.WithContext(ctx))
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			reqLog.WithField("attempt", attempt).Warnf("Network error: %v", err)
			lastErr = err
			continue
		}

		status := resp.StatusCode
		resLog := reqLog.WithFields(logrus.Fields{"status_code": status, "attempt": attempt})

		switch {
		case status >= 200 && status < 300:
			resLog.Debug("Fetched")
			return resp, nil

		case status >= 500:
			resLog.Warn("Server error, retrying")
			lastErr = fmt.Errorf("%w: status %d %s", utils.ErrServerHTTPError, status, http.StatusText(status))
			drain(resp)

		case status == http.StatusTooManyRequests:
			resLog.Warn("Rate limited, retrying")
			lastErr = fmt.Errorf("%w: status %d %s", utils.ErrClientHTTPError, status, http.StatusText(status))
			drain(resp)

		case status >= 400:
			resLog.Warn("Client error, not retrying")
			return resp, fmt.Errorf("%w: status %d %s", utils.ErrClientHTTPError, status, http.StatusText(status))

		default:
			resLog.Warnf("Unexpected status %d, not retrying", status)
			return resp, fmt.Errorf("%w: status %d %s", utils.ErrOtherHTTPError, status, http.StatusText(status))
		}
	}

	reqLog.Errorf("All %d attempts failed. Last error: %v", f.policy.MaxRetries+1, lastErr)
	return nil, fmt.Errorf("%w: %w", utils.ErrRetryFailed, lastErr)
}

// GetJSON fetches rawURL and decodes the JSON body into v
func (f *Fetcher) GetJSON(ctx context.Context, rawURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", utils.ErrRequestCreation, err)
	}
	req.Header.Set("Accept", "application/json")
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.FetchWithRetry(ctx, req)
	if err != nil {
		if resp != nil {
			drain(resp)
		}
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: %v", utils.ErrResponseBodyRead, err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: JSON: %v", utils.ErrParsing, err)
	}
	return nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
