// ABOUTME: Display formatting helpers for sizes, timestamps, numbers and task states
// ABOUTME: All functions are pure and safe to call from any goroutine

package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Placeholder is shown for missing or unparseable values
const Placeholder = "-"

// Default patterns. Tokens: YYYY MM DD HH mm ss.
const (
	DefaultPattern = "YYYY-MM-DD HH:mm:ss"
	DatePattern    = "YYYY-MM-DD"
	ClockPattern   = "HH:mm:ss"
)

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FileSize formats a byte count with a 1024 base, e.g. 1536 -> "1.5 KB".
// Zero and negative counts are "0 B".
func FileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 B"
	}
	value := float64(bytes)
	i := 0
	for value >= 1024 && i < len(sizeUnits)-1 {
		value /= 1024
		i++
	}
	value = math.Round(value*100) / 100
	return strconv.FormatFloat(value, 'f', -1, 64) + " " + sizeUnits[i]
}

// Backend timestamps come with or without zone and fractional seconds
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTime parses a backend timestamp. Values without a zone are local time.
func ParseTime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DateTime formats a backend timestamp with pattern, or DefaultPattern when
// pattern is empty. Empty or invalid input gives "-".
func DateTime(value, pattern string) string {
	t, ok := ParseTime(value)
	if !ok {
		return Placeholder
	}
	return Time(t, pattern)
}

// Time formats t with pattern. Each token is replaced once.
func Time(t time.Time, pattern string) string {
	if t.IsZero() {
		return Placeholder
	}
	if pattern == "" {
		pattern = DefaultPattern
	}
	t = t.Local()

	out := pattern
	for _, r := range []struct{ token, value string }{
		{"YYYY", strconv.Itoa(t.Year())},
		{"MM", pad(int(t.Month()))},
		{"DD", pad(t.Day())},
		{"HH", pad(t.Hour())},
		{"mm", pad(t.Minute())},
		{"ss", pad(t.Second())},
	} {
		out = strings.Replace(out, r.token, r.value, 1)
	}
	return out
}

// Date formats a timestamp as YYYY-MM-DD
func Date(value string) string {
	return DateTime(value, DatePattern)
}

// Clock formats a timestamp as HH:mm:ss
func Clock(value string) string {
	return DateTime(value, ClockPattern)
}

// Relative describes value relative to now. Anything a week or older is
// shown as a date.
func Relative(value string, now time.Time) string {
	t, ok := ParseTime(value)
	if !ok {
		return Placeholder
	}

	diff := now.Sub(t)
	seconds := int64(diff / time.Second)
	minutes := seconds / 60
	hours := minutes / 60
	days := hours / 24

	switch {
	case seconds < 60:
		return "just now"
	case minutes < 60:
		return plural(minutes, "minute") + " ago"
	case hours < 24:
		return plural(hours, "hour") + " ago"
	case days < 7:
		return plural(days, "day") + " ago"
	default:
		return Time(t, DatePattern)
	}
}

// Number adds thousands separators
func Number(n int64) string {
	return humanize.Comma(n)
}

// Percent formats value as a percentage. When isDecimal is true value is a
// 0..1 ratio, otherwise it is already a percentage.
func Percent(value float64, decimals int, isDecimal bool) string {
	if isDecimal {
		value *= 100
	}
	if decimals < 0 {
		decimals = 0
	}
	return fmt.Sprintf("%.*f%%", decimals, value)
}

// Task status badge types
const (
	TypeInfo    = "info"
	TypeWarning = "warning"
	TypeSuccess = "success"
	TypeDanger  = "danger"
)

var statusTypes = map[string]string{
	"pending":   TypeInfo,
	"running":   TypeWarning,
	"completed": TypeSuccess,
	"failed":    TypeDanger,
	"cancelled": TypeInfo,
}

var statusTexts = map[string]string{
	"pending":   "Pending",
	"running":   "Running",
	"completed": "Completed",
	"failed":    "Failed",
	"cancelled": "Cancelled",
}

// TaskStatusType maps a task status to a badge type, "info" when unknown
func TaskStatusType(status string) string {
	if t, ok := statusTypes[status]; ok {
		return t
	}
	return TypeInfo
}

// TaskStatusText maps a task status to its label. Unknown statuses are
// returned as is.
func TaskStatusText(status string) string {
	if t, ok := statusTexts[status]; ok {
		return t
	}
	return status
}

func pad(n int) string {
	return fmt.Sprintf("%02d", n)
}

func plural(n int64, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return strconv.FormatInt(n, 10) + " " + unit + "s"
}
