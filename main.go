package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mpeters/blocktrack/internal/config"
	"github.com/mpeters/blocktrack/internal/export"
	"github.com/mpeters/blocktrack/internal/notify"
	"github.com/mpeters/blocktrack/internal/store"
	"github.com/mpeters/blocktrack/internal/timer"
	"github.com/mpeters/blocktrack/internal/tui"
)

var version = "dev"

var (
	configFile string
	dbPath     string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "blocktrack",
	Short: "blocktrack divides your day into 15-minute blocks and logs what you got done",
	Long: `blocktrack is a terminal tracker for quarter-hour work blocks. It counts
down to each :00/:15/:30/:45 boundary, alerts you when a block ends, and
keeps a browsable, editable, exportable log of what you accomplished.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: ~/.config/blocktrack/blocktrack.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database file (default: ~/.config/blocktrack/blocktrack.db)")

	exportCmd.Flags().String("date", "", "day to export as YYYY-MM-DD (default: today)")
	exportCmd.Flags().String("format", "csv", "export format: csv or json")
	exportCmd.Flags().StringP("out", "o", "", "output file (default: blocktrack-<date>.<format> in the working directory)")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(versionCmd)
}

func runTUI() error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}

	logger, closeLog, err := openLogger(cfg.LogPath)
	if err != nil {
		return err
	}
	defer closeLog()

	s, err := store.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer s.Close()

	clock := timer.SystemClock{}
	engine := timer.NewEngine(clock, s, logger)
	engine.SetTestDuration(s.GetIntSetting(store.SettingTestDuration, cfg.TestDuration))

	coord := notify.NewCoordinator(clock, notify.New(), logger)
	coord.SetEnabled(cfg.NotificationsEnabled &&
		s.GetBoolSetting(store.SettingNotificationsEnabled, true))
	coord.RequestPermission()

	// Pick an in-flight session back up and re-arm its boundary alert.
	if engine.Restore() {
		coord.Arm(engine.Remaining(), notify.KindMainSessionComplete)
		logger.Info("recovered active session", "remaining", engine.Remaining())
	}

	app := tui.NewApp(s, engine, coord, clock)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

// openLogger writes to a file: the TUI owns the terminal.
func openLogger(path string) (*log.Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	})
	return logger, func() { f.Close() }, nil
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export one day's entries without launching the UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		if dbPath != "" {
			cfg.DBPath = dbPath
		}

		date := time.Now()
		if d, _ := cmd.Flags().GetString("date"); d != "" {
			date, err = time.ParseInLocation("2006-01-02", d, time.Local)
			if err != nil {
				return fmt.Errorf("parse --date: %w", err)
			}
		}
		format, _ := cmd.Flags().GetString("format")
		if format != "csv" && format != "json" {
			return fmt.Errorf("unknown format %q (want csv or json)", format)
		}

		s, err := store.New(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		entries, err := s.EntriesForDate(date)
		if err != nil {
			return err
		}

		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = fmt.Sprintf("blocktrack-%s.%s", date.Format("2006-01-02"), format)
		}

		if format == "csv" {
			err = export.ToCSV(entries, out)
		} else {
			err = export.ToJSON(entries, out)
		}
		if err != nil {
			return err
		}

		fmt.Printf("Exported %d entries to %s\n", len(entries), out)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the blocktrack version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("blocktrack " + version)
	},
}
