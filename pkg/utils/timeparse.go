package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"flightsched-service/pkg/clock"
	"flightsched-service/pkg/logger"

	"github.com/araddon/dateparse"
)

var (
	// "2025-08-01 06:55", "2025-08-01 06:55:30", optional "T" separator
	strictLocalPattern = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})[ T](\d{2}):(\d{2})(?::(\d{2}))?$`)
	// trailing UTC offset after a clock value: "+09:00", "-0530", "Z"
	offsetSuffixPattern = regexp.MustCompile(`^(.*\d{2}:\d{2}(?::\d{2})?(?:\.\d+)?)\s*(?:Z|[+-]\d{2}:?\d{2})$`)
)

// ParseError reports a provider time string that does not match the strict local format
type ParseError struct {
	Value string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unparseable local time %q", e.Value)
}

// StripOffset removes a trailing UTC-offset suffix without applying it.
func StripOffset(s string) string {
	s = strings.TrimSpace(s)
	if m := offsetSuffixPattern.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return s
}

// ParseLocalStrict parses "YYYY-MM-DD HH:mm[:ss][±HH:MM]" into a wall-clock
// time in time.UTC. The offset is discarded, never applied.
func ParseLocalStrict(s string) (time.Time, error) {
	m := strictLocalPattern.FindStringSubmatch(StripOffset(s))
	if m == nil {
		return time.Time{}, &ParseError{Value: s}
	}

	fields := make([]int, 6)
	for i := 1; i <= 6; i++ {
		if m[i] == "" {
			continue
		}
		fields[i-1], _ = strconv.Atoi(m[i])
	}

	year, month, day, hour, minute, sec := fields[0], fields[1], fields[2], fields[3], fields[4], fields[5]
	if month < 1 || month > 12 || day < 1 || day > 31 || hour > 23 || minute > 59 || sec > 59 {
		return time.Time{}, &ParseError{Value: s}
	}

	t := time.Date(year, time.Month(month), day, hour, minute, sec, 0, time.UTC)
	if t.Day() != day {
		// time.Date normalized an impossible day such as 02-30
		return time.Time{}, &ParseError{Value: s}
	}

	return t, nil
}

// FormatLocal renders a wall-clock time as YYYY-MM-DDTHH:mm:ss
func FormatLocal(t time.Time) string {
	return t.Format(LOCAL_TIMESTAMP_LAYOUT)
}

// LocalDate renders the calendar date of a wall-clock time
func LocalDate(t time.Time) string {
	return t.Format(DATE_LAYOUT)
}

// TimeNormalizer converts provider local-time strings into timezone-naive timestamps.
// Unparseable input never fails the caller: it degrades to "now" and is logged.
type TimeNormalizer struct {
	logger     logger.Logger
	clock      clock.Clock
	onFallback func(kind string)
}

// NewTimeNormalizer creates a normalizer. onFallback may be nil.
func NewTimeNormalizer(logger logger.Logger, clk clock.Clock, onFallback func(kind string)) *TimeNormalizer {
	if clk == nil {
		clk = clock.Real()
	}
	if onFallback == nil {
		onFallback = func(string) {}
	}

	return &TimeNormalizer{
		logger:     logger,
		clock:      clk,
		onFallback: onFallback,
	}
}

// ParseLocal returns the wall-clock time encoded in s
func (n *TimeNormalizer) ParseLocal(s string) time.Time {
	t, err := ParseLocalStrict(s)
	if err == nil {
		return t
	}

	stripped := StripOffset(s)
	if stripped != "" {
		// ParseIn with UTC keeps the wall clock of offset-free input untouched
		if t, gerr := dateparse.ParseIn(stripped, time.UTC); gerr == nil {
			n.logger.Warn("Provider time not in strict format, used generic parse",
				"value", s,
				"parsed", FormatLocal(t))
			n.onFallback(FallbackGeneric)
			return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
		}
	}

	now := n.clock.Now().UTC().Truncate(time.Second)
	n.logger.Warn("Unparseable provider time, substituting current time",
		"value", s,
		"error", err,
		"substituted", FormatLocal(now))
	n.onFallback(FallbackNow)
	return now
}
