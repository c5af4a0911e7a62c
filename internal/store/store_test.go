package store

import (
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// saveTestEntry is a test helper that saves an entry at the given local time.
func saveTestEntry(t *testing.T, s *Store, id, text string, ts time.Time, label string) {
	t.Helper()
	if err := s.SaveEntry(Entry{ID: id, Text: text, Timestamp: ts, TimeLabel: label}); err != nil {
		t.Fatalf("save entry: %v", err)
	}
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s := newTestStore(t)

	var version int
	if err := s.db.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
		t.Fatalf("read user_version: %v", err)
	}
	if version != currentVersion {
		t.Errorf("user_version = %d, want %d", version, currentVersion)
	}
}

func TestMigrationIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestDefaultSettingsSeeded(t *testing.T) {
	s := newTestStore(t)

	v, err := s.GetSetting(SettingNotificationsEnabled)
	if err != nil {
		t.Fatalf("get %s: %v", SettingNotificationsEnabled, err)
	}
	if v != "1" {
		t.Errorf("%s = %q, want %q", SettingNotificationsEnabled, v, "1")
	}
	if got := s.GetIntSetting(SettingTestDuration, 0); got != 5 {
		t.Errorf("%s = %d, want 5", SettingTestDuration, got)
	}
	if got := s.GetIntSetting(SettingCaptureLimit, 0); got != 300 {
		t.Errorf("%s = %d, want 300", SettingCaptureLimit, got)
	}
}

func TestDefaultDBPath(t *testing.T) {
	path, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("default db path: %v", err)
	}
	if !strings.HasSuffix(path, "blocktrack.db") {
		t.Errorf("path %q does not end in blocktrack.db", path)
	}
}

// ============================================================
// Entries
// ============================================================

func TestSaveAndListEntries(t *testing.T) {
	s := newTestStore(t)
	day := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.Local)

	saveTestEntry(t, s, "a", "reviewed PRs", day.Add(10*time.Hour), "10:00 AM")
	saveTestEntry(t, s, "b", "wrote docs", day.Add(10*time.Hour+15*time.Minute), "10:15 AM")

	entries, err := s.EntriesForDate(day)
	if err != nil {
		t.Fatalf("entries for date: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	// Newest first.
	if entries[0].ID != "b" || entries[1].ID != "a" {
		t.Errorf("order = [%s, %s], want [b, a]", entries[0].ID, entries[1].ID)
	}
	if entries[0].Text != "wrote docs" {
		t.Errorf("text = %q, want %q", entries[0].Text, "wrote docs")
	}
	// The label is stored verbatim, never re-derived from the timestamp.
	if entries[0].TimeLabel != "10:15 AM" {
		t.Errorf("time label = %q, want %q", entries[0].TimeLabel, "10:15 AM")
	}
}

func TestEntriesForDateScopedToDay(t *testing.T) {
	s := newTestStore(t)
	day := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.Local)

	saveTestEntry(t, s, "today", "in range", day.Add(9*time.Hour), "9:00 AM")
	saveTestEntry(t, s, "yesterday", "out of range", day.Add(-2*time.Hour), "10:00 PM")
	saveTestEntry(t, s, "tomorrow", "out of range", day.Add(25*time.Hour), "1:00 AM")

	entries, err := s.EntriesForDate(day)
	if err != nil {
		t.Fatalf("entries for date: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].ID != "today" {
		t.Errorf("got entry %q, want %q", entries[0].ID, "today")
	}
}

func TestEntriesForDateEmpty(t *testing.T) {
	s := newTestStore(t)
	entries, err := s.EntriesForDate(time.Now())
	if err != nil {
		t.Fatalf("entries for date: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d entries, want 0", len(entries))
	}
}

func TestDeleteEntry(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()
	saveTestEntry(t, s, "a", "something", now, "10:00 AM")

	if err := s.DeleteEntry("a"); err != nil {
		t.Fatalf("delete entry: %v", err)
	}
	entries, _ := s.EntriesForDate(now)
	if len(entries) != 0 {
		t.Errorf("got %d entries after delete, want 0", len(entries))
	}

	// Deleting an unknown ID is not an error.
	if err := s.DeleteEntry("missing"); err != nil {
		t.Errorf("delete unknown id: %v", err)
	}
}

func TestUpdateEntryText(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()
	saveTestEntry(t, s, "a", "draft", now, "10:00 AM")

	if err := s.UpdateEntryText("a", "polished"); err != nil {
		t.Fatalf("update entry: %v", err)
	}
	entries, _ := s.EntriesForDate(now)
	if len(entries) != 1 || entries[0].Text != "polished" {
		t.Errorf("entries = %+v, want single entry with text %q", entries, "polished")
	}

	if err := s.UpdateEntryText("missing", "x"); err == nil {
		t.Error("updating an unknown id should fail")
	}
}

func TestDailyCounts(t *testing.T) {
	s := newTestStore(t)
	day := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.Local)

	saveTestEntry(t, s, "a", "one", day.Add(9*time.Hour), "9:00 AM")
	saveTestEntry(t, s, "b", "two", day.Add(10*time.Hour), "10:00 AM")
	saveTestEntry(t, s, "c", "three", day.Add(33*time.Hour), "9:00 AM")

	counts, err := s.DailyCounts(day, day.Add(48*time.Hour))
	if err != nil {
		t.Fatalf("daily counts: %v", err)
	}
	if len(counts) != 2 {
		t.Fatalf("got %d days, want 2", len(counts))
	}
	if counts[0].Date != "2025-03-10" || counts[0].Count != 2 {
		t.Errorf("day 0 = %+v, want {2025-03-10 2}", counts[0])
	}
	if counts[1].Date != "2025-03-11" || counts[1].Count != 1 {
		t.Errorf("day 1 = %+v, want {2025-03-11 1}", counts[1])
	}
}

// ============================================================
// Session state
// ============================================================

func TestSessionStateRoundTrip(t *testing.T) {
	s := newTestStore(t)

	// Nothing persisted yet.
	state, err := s.SessionState()
	if err != nil {
		t.Fatalf("session state: %v", err)
	}
	if state != nil {
		t.Fatalf("state = %+v, want nil before first save", state)
	}

	start := time.Date(2025, time.March, 10, 10, 0, 0, 0, time.UTC)
	if err := s.SaveSessionState(SessionState{IsActive: true, StartTime: &start, CurrentEntry: "half-typed"}); err != nil {
		t.Fatalf("save session state: %v", err)
	}

	state, err = s.SessionState()
	if err != nil {
		t.Fatalf("session state: %v", err)
	}
	if state == nil || !state.IsActive {
		t.Fatalf("state = %+v, want active", state)
	}
	if state.StartTime == nil || !state.StartTime.Equal(start) {
		t.Errorf("start time = %v, want %v", state.StartTime, start)
	}
	if state.CurrentEntry != "half-typed" {
		t.Errorf("current entry = %q, want %q", state.CurrentEntry, "half-typed")
	}
}

func TestSessionStateSingleRow(t *testing.T) {
	s := newTestStore(t)
	start := time.Now().UTC()

	if err := s.SaveSessionState(SessionState{IsActive: true, StartTime: &start}); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := s.SaveSessionState(SessionState{IsActive: false}); err != nil {
		t.Fatalf("second save: %v", err)
	}

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM session_state`).Scan(&count); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if count != 1 {
		t.Errorf("session_state has %d rows, want 1", count)
	}

	state, _ := s.SessionState()
	if state == nil || state.IsActive {
		t.Errorf("state = %+v, want inactive", state)
	}
	if state != nil && state.StartTime != nil {
		t.Errorf("start time = %v, want nil for inactive state", state.StartTime)
	}
}

// ============================================================
// Settings
// ============================================================

func TestSetAndGetSetting(t *testing.T) {
	s := newTestStore(t)

	if err := s.SetSetting(SettingTestDuration, "30"); err != nil {
		t.Fatalf("set setting: %v", err)
	}
	v, err := s.GetSetting(SettingTestDuration)
	if err != nil {
		t.Fatalf("get setting: %v", err)
	}
	if v != "30" {
		t.Errorf("value = %q, want %q", v, "30")
	}

	_, err = s.GetSetting("no_such_key")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("missing key error = %v, want sql.ErrNoRows", err)
	}
}

func TestTypedSettingFallbacks(t *testing.T) {
	s := newTestStore(t)

	if got := s.GetBoolSetting("missing", true); !got {
		t.Error("missing bool setting should fall back to true")
	}
	if got := s.GetIntSetting("missing", 42); got != 42 {
		t.Errorf("missing int setting = %d, want 42", got)
	}

	s.SetSetting("bad_int", "not-a-number")
	if got := s.GetIntSetting("bad_int", 7); got != 7 {
		t.Errorf("malformed int setting = %d, want fallback 7", got)
	}

	s.SetSetting(SettingNotificationsEnabled, "0")
	if s.GetBoolSetting(SettingNotificationsEnabled, true) {
		t.Error("0 should read as false")
	}
}

func TestGetAllSettings(t *testing.T) {
	s := newTestStore(t)
	settings, err := s.GetAllSettings()
	if err != nil {
		t.Fatalf("get all settings: %v", err)
	}
	if len(settings) != 3 {
		t.Errorf("got %d settings, want 3 defaults", len(settings))
	}
}

// ============================================================
// Clearing data
// ============================================================

func TestClearAllData(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()
	saveTestEntry(t, s, "a", "something", now, "10:00 AM")
	start := now.UTC()
	s.SaveSessionState(SessionState{IsActive: true, StartTime: &start})
	s.SetSetting(SettingTestDuration, "99")

	if err := s.ClearAllData(); err != nil {
		t.Fatalf("clear all data: %v", err)
	}

	entries, _ := s.EntriesForDate(now)
	if len(entries) != 0 {
		t.Errorf("got %d entries after clear, want 0", len(entries))
	}
	state, _ := s.SessionState()
	if state != nil {
		t.Errorf("state = %+v, want nil after clear", state)
	}
	// Settings come back as defaults.
	if got := s.GetIntSetting(SettingTestDuration, 0); got != 5 {
		t.Errorf("%s = %d after clear, want default 5", SettingTestDuration, got)
	}
}
