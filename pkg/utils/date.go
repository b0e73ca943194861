package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseTimeframe converts an exchange interval such as "15m", "4h", "1d", "1w" or
// "1M" into a duration. Months are approximated as 30 days.
func ParseTimeframe(timeframe string) (time.Duration, error) {
	tf := strings.TrimSpace(timeframe)
	if len(tf) < 2 {
		return 0, fmt.Errorf("invalid timeframe %q", timeframe)
	}

	n, err := strconv.Atoi(tf[:len(tf)-1])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid timeframe %q", timeframe)
	}

	var unit time.Duration
	switch tf[len(tf)-1] {
	case 'm':
		unit = time.Minute
	case 'h':
		unit = time.Hour
	case 'd':
		unit = 24 * time.Hour
	case 'w':
		unit = 7 * 24 * time.Hour
	case 'M':
		unit = 30 * 24 * time.Hour
	default:
		return 0, fmt.Errorf("unknown timeframe unit in %q", timeframe)
	}
	return time.Duration(n) * unit, nil
}

// TruncateToTimeframe floors t to the start of its candle.
func TruncateToTimeframe(t time.Time, timeframe string) time.Time {
	d, err := ParseTimeframe(timeframe)
	if err != nil {
		return t
	}
	return t.UTC().Truncate(d)
}

func PrettyDate(date time.Time) string {
	return date.UTC().Format("02 Jan 2006 - 15:04 UTC")
}
