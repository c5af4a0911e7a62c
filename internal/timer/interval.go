package timer

import "time"

const (
	blockMinutes = 15

	// BlockSeconds is the length of one tracking block.
	BlockSeconds = blockMinutes * 60

	// DefaultTestDuration is the short countdown used for manual
	// verification without waiting out a full block.
	DefaultTestDuration = 5
)

// remainingInBlock computes how many seconds are left until the current
// quarter-hour block ends. At an exact boundary (e.g. 10:15:00) a fresh full
// block begins, so the result is always in (0, BlockSeconds]. The clamped
// flag reports that the arithmetic produced an out-of-range value and the
// full-block default was substituted; callers log it.
func remainingInBlock(now time.Time) (secs int, clamped bool) {
	offset := now.Minute() % blockMinutes
	elapsed := offset*60 + now.Second()
	if elapsed == 0 {
		return BlockSeconds, false
	}
	left := BlockSeconds - elapsed
	if left <= 0 || left > BlockSeconds {
		return BlockSeconds, true
	}
	return left, false
}

// BlockLabel renders the start of the quarter-hour block containing now,
// e.g. 2:23:40 PM -> "2:15 PM".
func BlockLabel(now time.Time) string {
	m := now.Minute() - now.Minute()%blockMinutes
	start := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), m, 0, 0, now.Location())
	return start.Format("3:04 PM")
}

// ClockLabel renders the unrounded wall-clock time, used in test mode.
func ClockLabel(now time.Time) string {
	return now.Format("3:04 PM")
}
