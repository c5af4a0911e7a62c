package export

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/mpeters/blocktrack/internal/store"
)

// ToCSV writes one day's entries as Time,Activity rows.
func ToCSV(entries []store.Entry, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"Time", "Activity"}); err != nil {
		return err
	}

	for _, e := range entries {
		if err := w.Write([]string{e.TimeLabel, e.Text}); err != nil {
			return err
		}
	}

	return w.Error()
}
