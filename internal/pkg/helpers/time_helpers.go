package helpers

import (
	"strings"
	"time"

	"github.com/ucu/innovators-hub/internal/pkg/logger"
)

// ParseDuration parses s, returning fallback when s is blank, malformed or not positive
func ParseDuration(s string, fallback time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		logger.Warn().Err(err).Str("value", s).Dur("fallback", fallback).Msg("Unusable duration, using fallback")
		return fallback
	}
	return d
}

// YearBounds returns [Jan 1 of year, Jan 1 of year+1) in UTC
func YearBounds(year int) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(1, 0, 0)
}
