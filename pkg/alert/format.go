package alert

import (
	"fmt"
	"time"
)

// FormatAge renders how long ago t was relative to now, the way the
// notification list shows it.
func FormatAge(t, now time.Time) string {
	d := now.Sub(t)
	minutes := int(d / time.Minute)

	switch {
	case minutes < 1:
		return "Just now"
	case minutes < 60:
		return fmt.Sprintf("%dm ago", minutes)
	case minutes < 24*60:
		return fmt.Sprintf("%dh ago", minutes/60)
	}
	return t.Format("Jan 2, 03:04 PM")
}
