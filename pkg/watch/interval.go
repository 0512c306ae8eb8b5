package watch

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseInterval parses a Go duration, additionally accepting a leading day count ("7d", "1d12h")
func ParseInterval(s string) (time.Duration, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}

	daysPart, rest, found := strings.Cut(s, "d")
	if !found {
		return 0, fmt.Errorf("invalid interval %q (examples: 30m, 1h, 7d)", s)
	}
	days, err := strconv.Atoi(daysPart)
	if err != nil || days < 0 {
		return 0, fmt.Errorf("invalid interval %q (examples: 30m, 1h, 7d)", s)
	}

	d := time.Duration(days) * 24 * time.Hour
	if rest != "" {
		extra, err := time.ParseDuration(rest)
		if err != nil {
			return 0, fmt.Errorf("invalid interval %q: %w", s, err)
		}
		d += extra
	}
	return d, nil
}

// FormatInterval renders d in the largest two units ("1d12h", "1h30m", "45s")
func FormatInterval(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		if mins := int(d.Minutes()) % 60; mins > 0 {
			return fmt.Sprintf("%dh%dm", int(d.Hours()), mins)
		}
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	days := int(d.Hours()) / 24
	if hours := int(d.Hours()) % 24; hours > 0 {
		return fmt.Sprintf("%dd%dh", days, hours)
	}
	return fmt.Sprintf("%dd", days)
}
