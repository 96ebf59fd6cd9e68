// internal/enquiry/normalize.go
package enquiry

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Duration-like columns arrive from the store as elapsed time since midnight.
// Drivers disagree on the carrier type: seconds as an integer, an interval
// string, or a full timestamp. Everything duration-like is normalized to a
// zero-padded HH:MM string before rendering; every other value passes through
// untouched. Normalization is idempotent: an HH:MM string comes back as-is.

var (
	hhmmRe   = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	hhmmssRe = regexp.MustCompile(`^(\d{1,2}):(\d{2}):\d{2}(\.\d+)?$`)
	digitsRe = regexp.MustCompile(`^\d+$`)
)

// NormalizeDuration converts one duration-like value to HH:MM text.
func NormalizeDuration(v interface{}) interface{} {
	switch t := v.(type) {
	case nil:
		return v
	case time.Duration:
		return formatSeconds(int64(t / time.Second))
	case time.Time:
		return t.Format("15:04")
	case int:
		return formatSeconds(int64(t))
	case int32:
		return formatSeconds(int64(t))
	case int64:
		return formatSeconds(t)
	case float64:
		return formatSeconds(int64(t))
	case []byte:
		return normalizeString(string(t))
	case string:
		return normalizeString(t)
	default:
		return v
	}
}

func normalizeString(s string) string {
	if m := hhmmRe.FindStringSubmatch(s); m != nil {
		if len(m[1]) == 2 {
			return s
		}
		return "0" + s
	}
	if m := hhmmssRe.FindStringSubmatch(s); m != nil {
		h := m[1]
		if len(h) == 1 {
			h = "0" + h
		}
		return h + ":" + m[2]
	}
	if digitsRe.MatchString(s) {
		secs, err := strconv.ParseInt(s, 10, 64)
		if err == nil {
			return formatSeconds(secs)
		}
	}
	return s
}

func formatSeconds(total int64) string {
	if total < 0 {
		total = 0
	}
	hours := total / 3600
	minutes := (total % 3600) / 60
	return fmt.Sprintf("%02d:%02d", hours, minutes)
}

// normalizeRow rewrites the declared duration positions in place. The
// normalizer has no schema knowledge beyond the position list handed to it.
func normalizeRow(row []interface{}, durations []int) {
	for _, idx := range durations {
		if idx >= 0 && idx < len(row) {
			row[idx] = NormalizeDuration(row[idx])
		}
	}
}
