// Package coerce converts raw table cell text into typed values. Every
// coercer is total: malformed input yields the caller's default.
package coerce

import (
	"math"
	"strconv"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
)

// ErrMissing reports an empty or placeholder cell.
var ErrMissing = crerr.New("cell value is missing")

// Kind selects a coercer.
type Kind int

const (
	Text Kind = iota + 1
	Int
	Float
	Percent
	Duration
	Date
)

func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case Int:
		return "int"
	case Float:
		return "float"
	case Percent:
		return "percent"
	case Duration:
		return "duration"
	case Date:
		return "date"
	default:
		return "unknown"
	}
}

// IsMissing reports whether raw is one of the placeholder values.
func IsMissing(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	return trimmed == "" || trimmed == "-"
}

func ParseInt(raw string) (int, error) {
	if IsMissing(raw) {
		return 0, ErrMissing
	}
	value, err := parseNumber(stripSeparators(raw))
	if err != nil {
		return 0, crerr.Wrapf(err, "parse int %q", raw)
	}
	if value >= float64(math.MaxInt64) || value < float64(math.MinInt64) {
		return 0, crerr.Newf("int %q out of range", raw)
	}
	return int(value), nil
}

// Int parses raw as an integer, truncating fractional input.
func Int(raw string, def int) int {
	value, err := ParseInt(raw)
	if err != nil {
		return def
	}
	return value
}

func ParseFloat(raw string) (float64, error) {
	if IsMissing(raw) {
		return 0, ErrMissing
	}
	value, err := parseNumber(stripSeparators(raw))
	if err != nil {
		return 0, crerr.Wrapf(err, "parse float %q", raw)
	}
	return value, nil
}

func Float(raw string, def float64) float64 {
	value, err := ParseFloat(raw)
	if err != nil {
		return def
	}
	return value
}

// ParsePercent parses "66.67%" or "66.67" as 66.67. Values outside [0,100]
// are rejected.
func ParsePercent(raw string) (float64, error) {
	if IsMissing(raw) {
		return 0, ErrMissing
	}
	cleaned := strings.ReplaceAll(stripSeparators(raw), "%", "")
	if IsMissing(cleaned) {
		return 0, ErrMissing
	}
	value, err := parseNumber(strings.TrimSpace(cleaned))
	if err != nil {
		return 0, crerr.Wrapf(err, "parse percent %q", raw)
	}
	if value < 0 || value > 100 {
		return 0, crerr.Newf("percent %q out of range", raw)
	}
	return value, nil
}

func Percent(raw string, def float64) float64 {
	value, err := ParsePercent(raw)
	if err != nil {
		return def
	}
	return value
}

// ParseDuration accepts MM:SS and HH:MM:SS.
func ParseDuration(raw string) (time.Duration, error) {
	if IsMissing(raw) {
		return 0, ErrMissing
	}
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, crerr.Newf("parse duration %q: expected MM:SS or HH:MM:SS", raw)
	}

	units := make([]int, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, crerr.Newf("parse duration %q: invalid component %q", raw, part)
		}
		units[i] = n
	}

	if len(units) == 2 {
		return time.Duration(units[0])*time.Minute + time.Duration(units[1])*time.Second, nil
	}
	return time.Duration(units[0])*time.Hour +
		time.Duration(units[1])*time.Minute +
		time.Duration(units[2])*time.Second, nil
}

// Duration returns (0, false) when raw is missing or malformed.
func Duration(raw string) (time.Duration, bool) {
	value, err := ParseDuration(raw)
	return value, err == nil
}

// ParseDate parses a strict ISO date (YYYY-MM-DD).
func ParseDate(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, ErrMissing
	}
	value, err := time.Parse(time.DateOnly, trimmed)
	if err != nil {
		return time.Time{}, crerr.Wrapf(err, "parse date %q", raw)
	}
	return value, nil
}

func Date(raw string) (time.Time, bool) {
	value, err := ParseDate(raw)
	return value, err == nil
}

// Apply runs the coercer of kind over raw. Int, Float and Percent fall back
// to zero; Duration and Date fall back to nil. The returned error carries the
// fallback reason and is informational only.
func Apply(kind Kind, raw string) (any, error) {
	switch kind {
	case Text:
		return strings.TrimSpace(raw), nil
	case Int:
		value, err := ParseInt(raw)
		return value, err
	case Float:
		value, err := ParseFloat(raw)
		return value, err
	case Percent:
		value, err := ParsePercent(raw)
		if err != nil {
			return 0.0, err
		}
		return value, nil
	case Duration:
		value, err := ParseDuration(raw)
		if err != nil {
			return nil, err
		}
		return value, nil
	case Date:
		value, err := ParseDate(raw)
		if err != nil {
			return nil, err
		}
		return value, nil
	default:
		return nil, crerr.Newf("unknown coercer %d", int(kind))
	}
}

func stripSeparators(raw string) string {
	return strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
}

// parseNumber rejects NaN and infinities, which strconv accepts.
func parseNumber(s string) (float64, error) {
	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, crerr.Newf("non-finite number %q", s)
	}
	return value, nil
}
