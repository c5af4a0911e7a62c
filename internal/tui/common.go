package tui

import (
	"fmt"
	"time"

	"github.com/mpeters/blocktrack/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewTimer viewState = iota
	viewHistory
	viewReports
	viewSettings
)

var viewNames = []string{"Timer", "History", "Reports", "Settings"}

// --- Messages ---

type tickMsg time.Time

type statusMsg struct {
	text    string
	isError bool
}

type sessionStartedMsg struct {
	testMode bool
}

type sessionStoppedMsg struct{}

type entrySavedMsg struct{}

type entriesDataMsg struct {
	entries []store.Entry
}

type reportsDataMsg struct {
	counts []store.DayCount
}

type settingsDataMsg struct {
	settings []store.Setting
}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

// formatCountdown renders remaining seconds as MM:SS.
func formatCountdown(secs int) string {
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

func formatDay(d time.Time) string {
	now := time.Now()
	if sameDay(d, now) {
		return "Today"
	}
	if sameDay(d, now.AddDate(0, 0, -1)) {
		return "Yesterday"
	}
	return d.Format("Mon, Jan 2")
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
