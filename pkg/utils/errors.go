package utils

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
)

// --- Sentinel Errors for Categorization ---
var (
	ErrRetryFailed      = errors.New("request failed after all retries") // Wraps the last underlying error
	ErrClientHTTPError  = errors.New("client HTTP error (4xx)")
	ErrServerHTTPError  = errors.New("server HTTP error (5xx)")
	ErrOtherHTTPError   = errors.New("other HTTP error (non-2xx)")
	ErrRequestCreation  = errors.New("failed to create HTTP request")
	ErrResponseBodyRead = errors.New("failed to read response body")
	ErrParsing          = errors.New("parsing error") // Wraps specific parsing error (URL, JSON, HTML, robots)
	ErrFilesystem       = errors.New("filesystem error")
	ErrConfigValidation = errors.New("configuration validation error")
	ErrSourceDisabled   = errors.New("source not configured")
)

// WrapErrorf annotates err with a formatted message, keeping it matchable with errors.Is.
// Returns nil when err is nil.
func WrapErrorf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// CategorizeError maps an error to a short category string for logging.
// Sources that fail are absorbed by the generator; the category is what ends up in the log line.
func CategorizeError(err error) string {
	if err == nil {
		return "None"
	}

	switch {
	case errors.Is(err, ErrSourceDisabled):
		return "Source_Disabled"
	case errors.Is(err, ErrRetryFailed):
		if errors.Is(err, ErrServerHTTPError) {
			return "RetryFailed_HTTPServer"
		}
		if errors.Is(err, ErrClientHTTPError) {
			return "RetryFailed_HTTPClient"
		}
		return "RetryFailed_Network"
	case errors.Is(err, ErrClientHTTPError):
		msg := err.Error()
		for _, code := range []string{"401", "403", "404", "429"} {
			if strings.Contains(msg, " "+code+" ") {
				return "HTTP_" + code
			}
		}
		return "HTTP_4xx"
	case errors.Is(err, ErrServerHTTPError):
		return "HTTP_5xx"
	case errors.Is(err, ErrOtherHTTPError):
		return "HTTP_OtherStatus"
	case errors.Is(err, ErrRequestCreation):
		return "Internal_RequestCreation"
	case errors.Is(err, ErrResponseBodyRead):
		return "Network_BodyRead"
	case errors.Is(err, ErrParsing):
		msg := err.Error()
		if strings.Contains(msg, "JSON") {
			return "Content_ParsingJSON"
		}
		if strings.Contains(msg, "URL") {
			return "Content_ParsingURL"
		}
		return "Content_ParsingOther"
	case errors.Is(err, ErrFilesystem):
		if errors.Is(err, os.ErrNotExist) {
			return "Filesystem_NotExist"
		}
		if errors.Is(err, os.ErrPermission) {
			return "Filesystem_Permission"
		}
		return "Filesystem_Other"
	case errors.Is(err, ErrConfigValidation):
		return "Config_Validation"
	case errors.Is(err, context.Canceled):
		return "System_ContextCanceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "System_ContextDeadlineExceeded"
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "Network_Timeout"
	}
	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "connection refused"):
		return "Network_ConnectionRefused"
	case strings.Contains(lower, "no such host"):
		return "Network_DNSLookup"
	case strings.Contains(lower, "tls") || strings.Contains(lower, "certificate"):
		return "Network_TLS"
	}
	return "Unknown"
}
