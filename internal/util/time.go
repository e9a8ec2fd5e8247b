package util

import "time"

// DaysUntil returns the number of whole days between now and t, negative when
// t is in the past. Both sides are truncated to midnight UTC first so the
// result counts calendar days, not 24h windows.
func DaysUntil(t time.Time) int {
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	target := t.UTC()
	targetDay := time.Date(target.Year(), target.Month(), target.Day(), 0, 0, 0, 0, time.UTC)
	return int(targetDay.Sub(today).Hours() / 24)
}
