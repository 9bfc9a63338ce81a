package printer

import (
	"fmt"
	"time"
)

// TimeAgo returns a human-readable relative time string in UTC.
// Examples: "5 seconds ago (UTC)", "2 minutes ago (UTC)", "3 hours ago (UTC)".
func TimeAgo(t time.Time) string {
	diff := time.Now().UTC().Sub(t.UTC())
	if diff < 0 {
		return "in the future (UTC)"
	}

	var (
		n    int
		unit string
	)
	switch {
	case diff < time.Minute:
		n, unit = int(diff.Seconds()), "second"
	case diff < time.Hour:
		n, unit = int(diff.Minutes()), "minute"
	case diff < 24*time.Hour:
		n, unit = int(diff.Hours()), "hour"
	default:
		n, unit = int(diff.Hours()/24), "day"
	}

	if n != 1 {
		unit += "s"
	}
	return fmt.Sprintf("%d %s ago (UTC)", n, unit)
}

// FormatTimestamp returns a formatted timestamp string in UTC.
// Format: "2006-01-02 15:04:05 UTC".
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}

// FormatDuration returns a compact duration rounded to the second (e.g. "1m30s").
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	if d < time.Second {
		return "0s"
	}
	return d.Round(time.Second).String()
}
