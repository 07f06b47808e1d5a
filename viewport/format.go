package viewport

import (
	"fmt"
	"time"
)

// formatTokens formats a token count for display: 1234 -> "1.2k", 1234567 -> "1.2M"
func formatTokens(n int) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fk", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d", n)
	}
}

// formatDuration formats a duration compactly: 71s -> "1m 11s", 3.5s -> "3.5s"
func formatDuration(d time.Duration) string {
	secs := d.Seconds()
	switch {
	case secs >= 3600:
		return fmt.Sprintf("%dh %dm", int(secs)/3600, int(secs)%3600/60)
	case secs >= 60:
		return fmt.Sprintf("%dm %ds", int(secs)/60, int(secs)%60)
	case secs >= 10:
		return fmt.Sprintf("%.0fs", secs)
	default:
		return fmt.Sprintf("%.1fs", secs)
	}
}

// plural renders "1 call", "2 calls".
func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
