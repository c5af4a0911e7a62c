package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mpeters/blocktrack/internal/notify"
	"github.com/mpeters/blocktrack/internal/store"
	"github.com/mpeters/blocktrack/internal/timer"
)

type stubClock struct {
	now time.Time
}

func (c *stubClock) Now() time.Time { return c.now }

func newTestTimerView(t *testing.T, start time.Time) (timerViewModel, *stubClock, *store.Store) {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	clock := &stubClock{now: start}
	eng := timer.NewEngine(clock, s, nil)
	coord := notify.NewCoordinator(clock, nil, nil)
	return newTimerViewModel(s, eng, coord, clock), clock, s
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// tick advances the clock one second and delivers the tick.
func tick(m timerViewModel, clock *stubClock) timerViewModel {
	clock.now = clock.now.Add(time.Second)
	m, _ = m.update(tickMsg(clock.now))
	return m
}

func typeText(m timerViewModel, text string) timerViewModel {
	for _, r := range text {
		m, _ = m.update(keyRune(r))
	}
	return m
}

func localTime(hour, minute, sec int) time.Time {
	return time.Date(2025, time.March, 10, hour, minute, sec, 0, time.Local)
}

// ============================================================
// Session lifecycle
// ============================================================

func TestStartSessionCountsDown(t *testing.T) {
	m, clock, _ := newTestTimerView(t, localTime(10, 7, 30))

	m, _ = m.update(keyRune('s'))

	if m.engine.Status() != timer.StatusRunning {
		t.Fatalf("status = %v, want running", m.engine.Status())
	}
	if m.engine.Remaining() != 450 {
		t.Errorf("remaining = %d, want 450", m.engine.Remaining())
	}
	if !m.coord.HasPending() {
		t.Error("starting a session should arm an alert")
	}

	m = tick(m, clock)
	if m.engine.Remaining() != 449 {
		t.Errorf("remaining after tick = %d, want 449", m.engine.Remaining())
	}
}

func TestStartIgnoredWhileRunning(t *testing.T) {
	m, _, _ := newTestTimerView(t, localTime(10, 7, 30))
	m, _ = m.update(keyRune('s'))
	before := m.engine.Remaining()

	m, _ = m.update(keyRune('s'))
	m, _ = m.update(keyRune('t'))

	if m.engine.Remaining() != before {
		t.Errorf("remaining = %d, want unchanged %d", m.engine.Remaining(), before)
	}
	if m.engine.TestMode() {
		t.Error("running session must not flip into test mode")
	}
}

func TestStopCancelsAlert(t *testing.T) {
	m, _, _ := newTestTimerView(t, localTime(10, 7, 30))
	m, _ = m.update(keyRune('s'))

	m, _ = m.update(keyRune('x'))

	if m.engine.Status() != timer.StatusIdle {
		t.Errorf("status = %v, want idle", m.engine.Status())
	}
	if m.coord.HasPending() {
		t.Error("stopping must cancel the pending alert")
	}
}

// ============================================================
// Boundary capture
// ============================================================

func TestTestSessionCaptureSavesEntry(t *testing.T) {
	m, clock, s := newTestTimerView(t, localTime(14, 23, 40))

	m, _ = m.update(keyRune('t'))
	if m.engine.Remaining() != 5 {
		t.Fatalf("remaining = %d, want default test duration 5", m.engine.Remaining())
	}

	for range 5 {
		m = tick(m, clock)
	}
	if !m.captureActive {
		t.Fatal("capture should open when the test countdown finishes")
	}
	if m.captureLabel != "2:23 PM" {
		t.Errorf("capture label = %q, want %q", m.captureLabel, "2:23 PM")
	}

	m = typeText(m, "wrote release notes")
	m, _ = m.update(tea.KeyMsg{Type: tea.KeyEnter})

	entries, err := s.EntriesForDate(clock.now)
	if err != nil {
		t.Fatalf("entries for date: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].Text != "wrote release notes" {
		t.Errorf("text = %q, want %q", entries[0].Text, "wrote release notes")
	}
	if entries[0].TimeLabel != "2:23 PM" {
		t.Errorf("time label = %q, want %q", entries[0].TimeLabel, "2:23 PM")
	}

	// Test sessions end after capture instead of re-arming.
	if m.engine.Status() != timer.StatusIdle {
		t.Errorf("status = %v, want idle after test capture", m.engine.Status())
	}
	if m.coord.HasPending() {
		t.Error("no alert should remain after a test session ends")
	}
}

func TestSkipCaptureLeavesNoEntryAndReArms(t *testing.T) {
	m, clock, s := newTestTimerView(t, localTime(10, 14, 57))

	m, _ = m.update(keyRune('s'))
	for range 3 {
		m = tick(m, clock)
	}
	if !m.captureActive {
		t.Fatal("capture should open at the block boundary")
	}

	m, _ = m.update(tea.KeyMsg{Type: tea.KeyEsc})

	entries, _ := s.EntriesForDate(clock.now)
	if len(entries) != 0 {
		t.Errorf("got %d entries after skip, want 0", len(entries))
	}
	if m.engine.Status() != timer.StatusRunning {
		t.Errorf("status = %v, want running for the next block", m.engine.Status())
	}
	if m.engine.Remaining() != 900 {
		t.Errorf("remaining = %d, want full next block 900", m.engine.Remaining())
	}
	if m.engine.Label() != "10:15 AM" {
		t.Errorf("label = %q, want %q", m.engine.Label(), "10:15 AM")
	}
	if !m.coord.HasPending() {
		t.Error("a fresh alert should be armed for the next boundary")
	}
}

func TestEmptyCaptureTextNotSaved(t *testing.T) {
	m, clock, s := newTestTimerView(t, localTime(10, 14, 57))
	m, _ = m.update(keyRune('s'))
	for range 3 {
		m = tick(m, clock)
	}

	m = typeText(m, "   ")
	m, _ = m.update(tea.KeyMsg{Type: tea.KeyEnter})

	entries, _ := s.EntriesForDate(clock.now)
	if len(entries) != 0 {
		t.Errorf("got %d entries for whitespace-only text, want 0", len(entries))
	}
}

func TestCaptureCharLimitFromSetting(t *testing.T) {
	m, _, s := newTestTimerView(t, localTime(10, 0, 0))
	if err := s.SetSetting(store.SettingCaptureLimit, "12"); err != nil {
		t.Fatalf("set setting: %v", err)
	}

	m, _ = m.openCapture()

	if m.capture.CharLimit != 12 {
		t.Errorf("char limit = %d, want 12", m.capture.CharLimit)
	}
}

// ============================================================
// Suspension and reconciliation
// ============================================================

func TestResumeAcrossBoundaryKeepsEndedBlockLabel(t *testing.T) {
	m, clock, s := newTestTimerView(t, localTime(10, 10, 0))
	m, _ = m.update(keyRune('s'))
	if m.engine.Label() != "10:00 AM" {
		t.Fatalf("label = %q, want %q", m.engine.Label(), "10:00 AM")
	}

	// Suspended past the 10:15 boundary.
	clock.now = clock.now.Add(10 * time.Minute)
	m, _ = m.update(tea.ResumeMsg{})

	if !m.captureActive {
		t.Fatal("crossing a boundary while suspended should open capture on resume")
	}
	if m.captureLabel != "10:00 AM" {
		t.Errorf("capture label = %q, want the ended block %q", m.captureLabel, "10:00 AM")
	}

	m = typeText(m, "inbox zero")
	m, _ = m.update(tea.KeyMsg{Type: tea.KeyEnter})

	entries, _ := s.EntriesForDate(clock.now)
	if len(entries) != 1 || entries[0].TimeLabel != "10:00 AM" {
		t.Errorf("entries = %+v, want one entry labeled 10:00 AM", entries)
	}

	// The next countdown targets the block in progress at 10:20.
	if m.engine.Remaining() != 300 {
		t.Errorf("remaining = %d, want 300", m.engine.Remaining())
	}
	if m.engine.Label() != "10:15 AM" {
		t.Errorf("label = %q, want %q", m.engine.Label(), "10:15 AM")
	}
}

func TestResumeWithinBlockRecomputes(t *testing.T) {
	m, clock, _ := newTestTimerView(t, localTime(10, 2, 0))
	m, _ = m.update(keyRune('s'))

	clock.now = clock.now.Add(5 * time.Minute)
	m, _ = m.update(tea.ResumeMsg{})

	if m.captureActive {
		t.Fatal("no boundary crossed, capture must not open")
	}
	if m.engine.Remaining() != 480 {
		t.Errorf("remaining = %d, want 480 at 10:07:00", m.engine.Remaining())
	}
}

func TestTickGapAcrossBoundaryKeepsEndedBlockLabel(t *testing.T) {
	m, clock, s := newTestTimerView(t, localTime(10, 10, 0))
	m, _ = m.update(keyRune('s'))

	// A single tick arriving 10 minutes late: the 10:15 boundary passed
	// during the gap, so its alert must be handled before the countdown is
	// re-derived, the same as an explicit resume.
	clock.now = clock.now.Add(10 * time.Minute)
	m, _ = m.update(tickMsg(clock.now))

	if !m.captureActive {
		t.Fatal("crossing a boundary during a tick gap should open capture")
	}
	if m.captureLabel != "10:00 AM" {
		t.Errorf("capture label = %q, want the ended block %q", m.captureLabel, "10:00 AM")
	}

	m = typeText(m, "fixed the build")
	m, _ = m.update(tea.KeyMsg{Type: tea.KeyEnter})

	entries, _ := s.EntriesForDate(clock.now)
	if len(entries) != 1 || entries[0].TimeLabel != "10:00 AM" {
		t.Errorf("entries = %+v, want one entry labeled 10:00 AM", entries)
	}
	if m.engine.Remaining() != 300 {
		t.Errorf("remaining = %d, want 300 at 10:20:00", m.engine.Remaining())
	}
	if m.engine.Label() != "10:15 AM" {
		t.Errorf("label = %q, want %q", m.engine.Label(), "10:15 AM")
	}
}

func TestTickGapTriggersReconciliation(t *testing.T) {
	m, clock, _ := newTestTimerView(t, localTime(10, 0, 0))
	m, _ = m.update(keyRune('s'))
	if m.engine.Remaining() != 900 {
		t.Fatalf("remaining = %d, want 900", m.engine.Remaining())
	}

	// A single tick arriving a minute late must not decrement by one; the
	// countdown is re-derived from the clock.
	clock.now = clock.now.Add(time.Minute)
	m, _ = m.update(tickMsg(clock.now))

	if m.engine.Remaining() != 840 {
		t.Errorf("remaining = %d, want 840 after a 60s gap", m.engine.Remaining())
	}
}

// ============================================================
// Store failure surfacing
// ============================================================

func TestSaveSettingsSurfacesStoreError(t *testing.T) {
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	clock := &stubClock{now: localTime(10, 0, 0)}
	sm := newSettingsModel(s, notify.NewCoordinator(clock, nil, nil))
	*sm.notificationsEnabled = true
	*sm.testDuration = "5"
	*sm.captureLimit = "300"
	s.Close()

	msg := sm.saveSettings()()
	status, ok := msg.(statusMsg)
	if !ok || !status.isError {
		t.Errorf("msg = %#v, want an error status", msg)
	}
}

func TestSaveSettingsPersists(t *testing.T) {
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	clock := &stubClock{now: localTime(10, 0, 0)}
	sm := newSettingsModel(s, notify.NewCoordinator(clock, nil, nil))
	*sm.notificationsEnabled = false
	*sm.testDuration = "30"
	*sm.captureLimit = "120"

	msg := sm.saveSettings()()
	if status, ok := msg.(statusMsg); !ok || status.isError {
		t.Fatalf("msg = %#v, want a success status", msg)
	}
	if s.GetBoolSetting(store.SettingNotificationsEnabled, true) {
		t.Error("notifications setting should persist as off")
	}
	if got := s.GetIntSetting(store.SettingTestDuration, 0); got != 30 {
		t.Errorf("test duration = %d, want 30", got)
	}
	if got := s.GetIntSetting(store.SettingCaptureLimit, 0); got != 120 {
		t.Errorf("capture limit = %d, want 120", got)
	}
}

func TestRefreshSurfacesStoreErrors(t *testing.T) {
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	h := newHistoryModel(s)
	r := newReportsModel(s)
	s.Close()

	if msg, ok := h.refresh()().(statusMsg); !ok || !msg.isError {
		t.Errorf("history refresh msg = %#v, want an error status", msg)
	}
	if msg, ok := r.refresh()().(statusMsg); !ok || !msg.isError {
		t.Errorf("reports refresh msg = %#v, want an error status", msg)
	}
}

// ============================================================
// Formatters
// ============================================================

func TestFormatCountdown(t *testing.T) {
	tests := []struct {
		secs int
		want string
	}{
		{900, "15:00"},
		{899, "14:59"},
		{60, "01:00"},
		{5, "00:05"},
		{0, "00:00"},
		{-3, "00:00"},
	}
	for _, tt := range tests {
		if got := formatCountdown(tt.secs); got != tt.want {
			t.Errorf("formatCountdown(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}

func TestFormatDay(t *testing.T) {
	now := time.Now()
	if got := formatDay(now); got != "Today" {
		t.Errorf("formatDay(now) = %q, want Today", got)
	}
	if got := formatDay(now.AddDate(0, 0, -1)); got != "Yesterday" {
		t.Errorf("formatDay(yesterday) = %q, want Yesterday", got)
	}
	old := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.Local)
	if got := formatDay(old); got != "Mon, Mar 10" {
		t.Errorf("formatDay(old) = %q, want %q", got, "Mon, Mar 10")
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2025, time.March, 10, 0, 0, 1, 0, time.Local)
	b := time.Date(2025, time.March, 10, 23, 59, 59, 0, time.Local)
	if !sameDay(a, b) {
		t.Error("same calendar day should match")
	}
	if sameDay(a, b.Add(time.Second)) {
		t.Error("midnight rollover should not match")
	}
}
