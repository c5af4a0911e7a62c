package store

import (
	"database/sql"
	"fmt"
	"time"
)

// SessionState loads the persisted session record, or nil if none was ever
// saved.
func (s *Store) SessionState() (*SessionState, error) {
	var (
		isActive  int
		startTime sql.NullString
		current   string
	)
	err := s.db.QueryRow(
		`SELECT is_active, start_time, current_entry FROM session_state WHERE id = 1`,
	).Scan(&isActive, &startTime, &current)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session state: %w", err)
	}

	state := &SessionState{
		IsActive:     isActive != 0,
		CurrentEntry: current,
	}
	if startTime.Valid && startTime.String != "" {
		t, err := time.Parse(time.RFC3339, startTime.String)
		if err != nil {
			return nil, fmt.Errorf("parse session start time: %w", err)
		}
		state.StartTime = &t
	}
	return state, nil
}

// SaveSessionState overwrites the single session record.
func (s *Store) SaveSessionState(state SessionState) error {
	active := 0
	if state.IsActive {
		active = 1
	}
	var startTime any
	if state.StartTime != nil {
		startTime = state.StartTime.UTC().Format(time.RFC3339)
	}
	now := time.Now().UTC().Format(time.RFC3339)

	_, err := s.db.Exec(
		`INSERT INTO session_state (id, is_active, start_time, current_entry, updated_at)
		 VALUES (1, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			is_active = excluded.is_active,
			start_time = excluded.start_time,
			current_entry = excluded.current_entry,
			updated_at = excluded.updated_at`,
		active, startTime, state.CurrentEntry, now,
	)
	if err != nil {
		return fmt.Errorf("save session state: %w", err)
	}
	return nil
}
