package monitor

import (
	"fmt"
	"strconv"
)

// minutesText renders a minute count for message bodies: "45 minute(s)",
// "2 hour(s)", "1 hour(s) and 30 minute(s)".
func minutesText(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d minute(s)", minutes)
	}
	hours := minutes / 60
	rem := minutes % 60
	if rem == 0 {
		return fmt.Sprintf("%d hour(s)", hours)
	}
	return fmt.Sprintf("%d hour(s) and %d minute(s)", hours, rem)
}

// extractID returns the first contiguous run of digits in the text,
// ignoring whatever surrounds it.
func extractID(text string) (int64, bool) {
	start := -1
	for i, r := range text {
		isDigit := r >= '0' && r <= '9'
		if isDigit && start < 0 {
			start = i
			continue
		}
		if !isDigit && start >= 0 {
			n, err := strconv.ParseInt(text[start:i], 10, 64)
			return n, err == nil
		}
	}
	if start >= 0 {
		n, err := strconv.ParseInt(text[start:], 10, 64)
		return n, err == nil
	}
	return 0, false
}
