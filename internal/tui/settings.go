package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/mpeters/blocktrack/internal/notify"
	"github.com/mpeters/blocktrack/internal/store"
)

type settingsModel struct {
	store *store.Store
	coord *notify.Coordinator

	width  int
	height int

	settings   []store.Setting
	formActive bool
	form       *huh.Form
	confirming bool

	// Form values as pointers (survive value copies)
	notificationsEnabled *bool
	testDuration         *string
	captureLimit         *string
	clearConfirmed       *bool
}

func newSettingsModel(s *store.Store, coord *notify.Coordinator) settingsModel {
	ne, cc := false, false
	td, cl := "", ""
	return settingsModel{
		store:                s,
		coord:                coord,
		notificationsEnabled: &ne,
		testDuration:         &td,
		captureLimit:         &cl,
		clearConfirmed:       &cc,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, _ := s.store.GetAllSettings()
		return settingsDataMsg{settings: settings}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New):
			return s.showForm()
		case key.Matches(msg, keys.Delete):
			return s.showClearConfirm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.notificationsEnabled = s.store.GetBoolSetting(store.SettingNotificationsEnabled, true)
	*s.testDuration = s.getVal(store.SettingTestDuration, "5")
	*s.captureLimit = s.getVal(store.SettingCaptureLimit, "300")

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Desktop notifications").
				Affirmative("On").
				Negative("Off").
				Value(s.notificationsEnabled),
			huh.NewInput().
				Title("Test session duration (sec)").
				Validate(validatePositiveInt).
				Value(s.testDuration),
			huh.NewInput().
				Title("Capture length limit (chars)").
				Validate(validatePositiveInt).
				Value(s.captureLimit),
		).Title("Settings"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	s.confirming = false
	return s, s.form.Init()
}

func (s settingsModel) showClearConfirm() (settingsModel, tea.Cmd) {
	*s.clearConfirmed = false

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Delete ALL entries, settings and session state?").
				Affirmative("Delete everything").
				Negative("Keep my data").
				Value(s.clearConfirmed),
		),
	).WithShowHelp(true)

	s.formActive = true
	s.confirming = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		if s.confirming {
			return s, tea.Batch(s.clearData(), s.refresh())
		}
		return s, tea.Batch(s.saveSettings(), s.refresh())
	}

	return s, cmd
}

func (s settingsModel) saveSettings() tea.Cmd {
	enabled := "0"
	if *s.notificationsEnabled {
		enabled = "1"
	}
	for _, kv := range []struct{ key, value string }{
		{store.SettingNotificationsEnabled, enabled},
		{store.SettingTestDuration, *s.testDuration},
		{store.SettingCaptureLimit, *s.captureLimit},
	} {
		if err := s.store.SetSetting(kv.key, kv.value); err != nil {
			return statusCmd(fmt.Sprintf("Error saving settings: %v", err), true)
		}
	}
	s.coord.SetEnabled(*s.notificationsEnabled)
	return statusCmd("Settings saved", false)
}

func (s settingsModel) clearData() tea.Cmd {
	confirmed := *s.clearConfirmed
	return func() tea.Msg {
		if !confirmed {
			return statusMsg{text: "Clear cancelled"}
		}
		if err := s.store.ClearAllData(); err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		return statusMsg{text: "All data cleared"}
	}
}

func (s settingsModel) getVal(k, fallback string) string {
	v, err := s.store.GetSetting(k)
	if err != nil {
		return fallback
	}
	return v
}

func validatePositiveInt(v string) error {
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fmt.Errorf("enter a positive number")
	}
	return nil
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	var rows []string
	rows = append(rows, titleStyle.Render("Settings"), "")

	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(setting.Key)
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	rows = append(rows, "",
		mutedStyle.Render("Press enter to edit settings, d to clear all data"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatSettingValue(k, v string) string {
	switch k {
	case store.SettingNotificationsEnabled:
		if v == "1" || v == "true" {
			return "on"
		}
		return "off"
	case store.SettingTestDuration:
		return v + " sec"
	case store.SettingCaptureLimit:
		return v + " chars"
	}
	return v
}
