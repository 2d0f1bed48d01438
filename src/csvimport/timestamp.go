package csvimport

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Recognized timestamp shapes, tried in order. First match wins.
var (
	reCanonical  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`)
	reISO        = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}`)
	reSlashDate  = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})\s+(\d{1,2}):(\d{2})(?::(\d{2}))?$`)
	reDashDate   = regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{4})\s+(\d{1,2}):(\d{2})(?::(\d{2}))?$`)
	reNoSeconds  = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})[ T](\d{1,2}):(\d{2})$`)
	reTwelveHour = regexp.MustCompile(`(?i)^(.*\d)\s+(\d{1,2}):(\d{2})(?::(\d{2}))?\s*(AM|PM)$`)
)

// Layouts attempted by the generic fallback. The parsed wall-clock fields are
// reformatted directly, never converted through UTC, so the literal clock
// reading survives.
var fallbackLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05.999999999",
	"2006/01/02 15:04:05",
	"2006.01.02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"02 Jan 2006 15:04:05",
	"Jan 2, 2006 15:04:05",
	"Jan 2, 2006",
	"20060102 15:04:05",
}

// FormatTimestamp normalizes a heterogeneous timestamp representation into
// the canonical form "YYYY-MM-DD HH:MM:SS". No timezone conversion happens at
// any point; the wall-clock value as entered is preserved. The second return
// is false when no recognized shape produced a valid result.
func FormatTimestamp(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}

	// 1. Already canonical.
	if reCanonical.MatchString(s) {
		return s, true
	}

	// 2. ISO-8601 with T separator: truncate sub-second/zone suffix.
	if reISO.MatchString(s) {
		return strings.Replace(s[:19], "T", " ", 1), true
	}

	// 3. Slash-separated date plus time. Day-first by default; a second
	// component above 12 forces the month-first reading instead (the only
	// consistent interpretation for exports like "01/15/2024").
	if m := reSlashDate.FindStringSubmatch(s); m != nil {
		a, b := atoi(m[1]), atoi(m[2])
		day, month := a, b
		if b > 12 && a <= 12 {
			day, month = b, a
		}
		if ts, ok := assembleTimestamp(atoi(m[3]), month, day, m[4], m[5], m[6]); ok {
			return ts, true
		}
	}

	// 4. Dash-separated date plus time, interpreted month-first. The
	// day-first reading shares this exact pattern and is never reached;
	// an out-of-range month falls through to the generic parse below.
	if m := reDashDate.FindStringSubmatch(s); m != nil {
		if ts, ok := assembleTimestamp(atoi(m[3]), atoi(m[1]), atoi(m[2]), m[4], m[5], m[6]); ok {
			return ts, true
		}
	}

	// 5. ISO-ish date plus time without seconds.
	if m := reNoSeconds.FindStringSubmatch(s); m != nil {
		if ts, ok := assembleTimestamp(atoi(m[1]), atoi(m[2]), atoi(m[3]), m[4], m[5], ""); ok {
			return ts, true
		}
	}

	// 6. 12-hour clock: convert the hour, then normalize the date part
	// through the rules above.
	if m := reTwelveHour.FindStringSubmatch(s); m != nil {
		hour := atoi(m[2])
		meridiem := strings.ToUpper(m[5])
		if hour >= 1 && hour <= 12 {
			if meridiem == "PM" && hour != 12 {
				hour += 12
			} else if meridiem == "AM" && hour == 12 {
				hour = 0
			}
			sec := m[4]
			if sec == "" {
				sec = "00"
			}
			rebuilt := fmt.Sprintf("%s %02d:%s:%s", m[1], hour, m[3], sec)
			if ts, ok := FormatTimestamp(rebuilt); ok {
				return ts, true
			}
		}
	}

	// 7. Generic fallback over known layouts.
	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02 15:04:05"), true
		}
	}

	return "", false
}

func assembleTimestamp(year, month, day int, hourStr, minStr, secStr string) (string, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return "", false
	}
	hour := atoi(hourStr)
	min := atoi(minStr)
	sec := 0
	if secStr != "" {
		sec = atoi(secStr)
	}
	if hour > 23 || min > 59 || sec > 59 {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d", year, month, day, hour, min, sec), true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
