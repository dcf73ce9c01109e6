// Package clock renders durations and wall-clock times for display.
package clock

import (
	"fmt"
	"time"
)

// Digits is a zero-padded display of a duration.
type Digits struct {
	Minutes    string
	Seconds    string
	Hundredths string
}

// String joins minutes and seconds, adding hundredths when present.
func (digits Digits) String() string {
	if digits.Hundredths == "" {
		return digits.Minutes + ":" + digits.Seconds
	}
	return digits.Minutes + ":" + digits.Seconds + "." + digits.Hundredths
}

// FormatSeconds renders whole seconds as MM:SS. Negative input is shown as its absolute value.
func FormatSeconds(value time.Duration) Digits {
	total := int64(abs(value) / time.Second)
	return Digits{
		Minutes: fmt.Sprintf("%02d", total/60),
		Seconds: fmt.Sprintf("%02d", total%60),
	}
}

// FormatMilliseconds renders MM:SS plus hundredths of a second.
func FormatMilliseconds(value time.Duration) Digits {
	value = abs(value)
	digits := FormatSeconds(value)
	millis := int64(value/time.Millisecond) % 1000
	digits.Hundredths = fmt.Sprintf("%02d", millis/10)
	return digits
}

// HumanTotal renders focused seconds as "1h 5m" or "12m".
func HumanTotal(seconds int64) string {
	if seconds < 0 {
		seconds = -seconds
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// WallClock renders the time of day in 24h or 12h form.
func WallClock(now time.Time, use24h bool) string {
	if use24h {
		return now.Format("15:04")
	}
	return now.Format("3:04 PM")
}

func abs(value time.Duration) time.Duration {
	if value < 0 {
		return -value
	}
	return value
}
