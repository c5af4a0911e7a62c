package store

import (
	"fmt"
	"time"
)

// SaveEntry inserts a new accomplishment entry.
func (s *Store) SaveEntry(e Entry) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`INSERT INTO entries (id, text, timestamp, time_label, created_at) VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.Text, e.Timestamp.UTC().Format(time.RFC3339), e.TimeLabel, now,
	)
	if err != nil {
		return fmt.Errorf("save entry: %w", err)
	}
	return nil
}

// EntriesForDate returns entries whose timestamp falls on the given local
// day, newest first.
func (s *Store) EntriesForDate(date time.Time) ([]Entry, error) {
	local := date.Local()
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	rows, err := s.db.Query(
		`SELECT id, text, timestamp, time_label, created_at
		 FROM entries
		 WHERE timestamp >= ? AND timestamp < ?
		 ORDER BY timestamp DESC`,
		dayStart.UTC().Format(time.RFC3339), dayEnd.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("entries for date: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var timestamp, createdAt string
		if err := rows.Scan(&e.ID, &e.Text, &timestamp, &e.TimeLabel, &createdAt); err != nil {
			return nil, err
		}
		e.Timestamp, _ = time.Parse(time.RFC3339, timestamp)
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteEntry removes an entry by ID. Deleting an unknown ID is not an error.
func (s *Store) DeleteEntry(id string) error {
	_, err := s.db.Exec(`DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete entry %s: %w", id, err)
	}
	return nil
}

// UpdateEntryText replaces the text of an existing entry.
func (s *Store) UpdateEntryText(id, text string) error {
	res, err := s.db.Exec(`UPDATE entries SET text = ? WHERE id = ?`, text, id)
	if err != nil {
		return fmt.Errorf("update entry %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update entry %s: not found", id)
	}
	return nil
}

// DailyCounts returns how many entries were logged per day in [from, to).
func (s *Store) DailyCounts(from, to time.Time) ([]DayCount, error) {
	rows, err := s.db.Query(
		`SELECT date(timestamp, 'localtime') AS day, COUNT(*)
		 FROM entries
		 WHERE timestamp >= ? AND timestamp < ?
		 GROUP BY day
		 ORDER BY day`,
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("daily counts: %w", err)
	}
	defer rows.Close()

	var counts []DayCount
	for rows.Next() {
		var dc DayCount
		if err := rows.Scan(&dc.Date, &dc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, dc)
	}
	return counts, rows.Err()
}
