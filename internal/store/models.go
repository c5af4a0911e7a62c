package store

import "time"

// Entry is one accomplishment record, tied to the quarter-hour block it
// was captured for.
type Entry struct {
	ID        string
	Text      string
	Timestamp time.Time
	TimeLabel string // block start, e.g. "2:15 PM"
	CreatedAt time.Time
}

// SessionState records whether a tracking session is in flight. It is
// overwritten on every start/stop so a crashed or killed process can pick
// the session back up on the next launch.
type SessionState struct {
	IsActive     bool
	StartTime    *time.Time
	CurrentEntry string
}

type Setting struct {
	Key   string
	Value string
}

// DayCount is the number of entries logged on a given day, used by reports.
type DayCount struct {
	Date  string
	Count int
}
