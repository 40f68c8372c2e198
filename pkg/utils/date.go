package utils

import (
	"fmt"
	"time"
)

// DateRange returns from/to dates spanning the past `days` days, formatted
// as YYYY-MM-DD for the news API query parameters.
func DateRange(days int) (from, to string) {
	now := time.Now().UTC()
	return now.AddDate(0, 0, -days).Format("2006-01-02"), now.Format("2006-01-02")
}

// FormatDateToday returns today's date as a human-readable email label.
func FormatDateToday() string {
	return time.Now().Format("Monday, January 2, 2006")
}

// RelativeTime renders an epoch-seconds timestamp as a coarse "N units ago"
// label for display alongside an article headline.
func RelativeTime(epochSeconds int64) string {
	if epochSeconds <= 0 {
		return ""
	}
	diff := time.Since(time.Unix(epochSeconds, 0))
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return plural(int(diff.Minutes()), "minute")
	case diff < 24*time.Hour:
		return plural(int(diff.Hours()), "hour")
	default:
		return plural(int(diff.Hours()/24), "day")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
