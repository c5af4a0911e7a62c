package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/mpeters/blocktrack/internal/store"
)

type jsonExport struct {
	ExportedAt string      `json:"exported_at"`
	Count      int         `json:"count"`
	Entries    []jsonEntry `json:"entries"`
}

type jsonEntry struct {
	ID        string `json:"id"`
	TimeLabel string `json:"time_label"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// ToJSON writes entries with their capture metadata.
func ToJSON(entries []store.Entry, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(entries),
	}

	for _, e := range entries {
		export.Entries = append(export.Entries, jsonEntry{
			ID:        e.ID,
			TimeLabel: e.TimeLabel,
			Text:      e.Text,
			Timestamp: e.Timestamp.Local().Format(time.RFC3339),
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
