package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/mpeters/blocktrack/internal/store"
)

// historyModel shows the captured entries for one day, newest first, with
// edit, delete and manual-entry affordances.
type historyModel struct {
	store  *store.Store
	width  int
	height int

	date    time.Time
	entries []store.Entry
	cursor  int

	editing   bool
	editID    string
	editInput textinput.Model

	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	manualTime *string
	manualText *string
}

func newHistoryModel(s *store.Store) historyModel {
	ti := textinput.New()
	ti.CharLimit = 300

	mt, mx := "", ""
	return historyModel{
		store:      s,
		date:       time.Now(),
		editInput:  ti,
		manualTime: &mt,
		manualText: &mx,
	}
}

func (h *historyModel) setSize(w, ht int) {
	h.width = w
	h.height = ht
	h.editInput.Width = min(w-12, 60)
}

func (h historyModel) refresh() tea.Cmd {
	date := h.date
	return func() tea.Msg {
		entries, err := h.store.EntriesForDate(date)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error loading entries: %v", err), isError: true}
		}
		return entriesDataMsg{entries: entries}
	}
}

func (h historyModel) update(msg tea.Msg) (historyModel, tea.Cmd) {
	if h.formActive && h.form != nil {
		return h.updateForm(msg)
	}
	if h.editing {
		return h.updateEdit(msg)
	}

	switch msg := msg.(type) {
	case entriesDataMsg:
		h.entries = msg.entries
		if h.cursor >= len(h.entries) {
			h.cursor = max(0, len(h.entries)-1)
		}
		return h, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			h.date = h.date.AddDate(0, 0, -1)
			h.cursor = 0
			return h, h.refresh()
		case key.Matches(msg, keys.Right):
			if !sameDay(h.date, time.Now()) {
				h.date = h.date.AddDate(0, 0, 1)
				h.cursor = 0
				return h, h.refresh()
			}
		case key.Matches(msg, keys.Up):
			if h.cursor > 0 {
				h.cursor--
			}
		case key.Matches(msg, keys.Down):
			if h.cursor < len(h.entries)-1 {
				h.cursor++
			}
		case key.Matches(msg, keys.Enter):
			if len(h.entries) > 0 {
				return h.startEdit(h.entries[h.cursor])
			}
		case key.Matches(msg, keys.Delete):
			if len(h.entries) > 0 {
				return h.deleteSelected()
			}
		case key.Matches(msg, keys.New):
			return h.showManualForm()
		}
	}
	return h, nil
}

func (h historyModel) startEdit(e store.Entry) (historyModel, tea.Cmd) {
	h.editing = true
	h.editID = e.ID
	h.editInput.SetValue(e.Text)
	h.editInput.CursorEnd()
	return h, h.editInput.Focus()
}

func (h historyModel) updateEdit(msg tea.Msg) (historyModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		h.editInput, cmd = h.editInput.Update(msg)
		return h, cmd
	}

	switch {
	case key.Matches(keyMsg, keys.Back):
		h.editing = false
		h.editInput.Blur()
		return h, nil
	case key.Matches(keyMsg, keys.Enter):
		text := strings.TrimSpace(h.editInput.Value())
		h.editing = false
		h.editInput.Blur()
		if text == "" {
			return h, statusCmd("Entry text cannot be empty", true)
		}
		if err := h.store.UpdateEntryText(h.editID, text); err != nil {
			return h, statusCmd(fmt.Sprintf("Error: %v", err), true)
		}
		return h, tea.Batch(h.refresh(), statusCmd("Entry updated", false))
	}

	var cmd tea.Cmd
	h.editInput, cmd = h.editInput.Update(keyMsg)
	return h, cmd
}

func (h historyModel) deleteSelected() (historyModel, tea.Cmd) {
	e := h.entries[h.cursor]
	if err := h.store.DeleteEntry(e.ID); err != nil {
		return h, statusCmd(fmt.Sprintf("Error: %v", err), true)
	}
	return h, tea.Batch(h.refresh(), statusCmd("Entry deleted", false))
}

func (h historyModel) showManualForm() (historyModel, tea.Cmd) {
	*h.manualTime = ""
	*h.manualText = ""

	h.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Block start (e.g. 2:15 PM)").
				Value(h.manualTime).
				Validate(validateBlockTime),
			huh.NewInput().
				Title("Activity").
				CharLimit(300).
				Value(h.manualText),
		).Title("Manual entry"),
	).WithShowHelp(true).WithShowErrors(true)

	h.formActive = true
	return h, h.form.Init()
}

func (h historyModel) updateForm(msg tea.Msg) (historyModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			h.formActive = false
			h.form = nil
			return h, nil
		}
	}

	form, cmd := h.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		h.form = f
	}

	if h.form.State == huh.StateCompleted {
		h.formActive = false
		return h, tea.Batch(h.saveManualEntry(), h.refresh())
	}

	return h, cmd
}

func (h historyModel) saveManualEntry() tea.Cmd {
	label, text := *h.manualTime, strings.TrimSpace(*h.manualText)
	return func() tea.Msg {
		if text == "" {
			return statusMsg{text: "Entry text cannot be empty", isError: true}
		}
		at, err := time.Parse("3:04 PM", label)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Bad time %q", label), isError: true}
		}
		ts := time.Date(h.date.Year(), h.date.Month(), h.date.Day(),
			at.Hour(), at.Minute(), 0, 0, h.date.Location())

		entry := store.Entry{
			ID:        uuid.NewString(),
			Text:      text,
			Timestamp: ts,
			TimeLabel: ts.Format("3:04 PM"),
		}
		if err := h.store.SaveEntry(entry); err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		return entrySavedMsg{}
	}
}

func validateBlockTime(s string) error {
	t, err := time.Parse("3:04 PM", strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("use a time like 2:15 PM")
	}
	if t.Minute()%15 != 0 {
		return fmt.Errorf("minutes must be on a quarter hour (:00, :15, :30, :45)")
	}
	return nil
}

func (h historyModel) view() string {
	w := h.width - 4

	if h.formActive && h.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left,
				titleStyle.Render("Manual entry"), "", h.form.View()),
		)
	}

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("History"), "  ",
		highlightStyle.Render(formatDay(h.date)), "  ",
		mutedStyle.Render(h.date.Format("2006-01-02")),
	)

	var rows []string
	rows = append(rows, header, "")

	if h.editing {
		rows = append(rows,
			mutedStyle.Render("Editing entry:"),
			h.editInput.View(),
			"",
			mutedStyle.Render("  enter: save  esc: cancel"),
		)
		return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	if len(h.entries) == 0 {
		rows = append(rows, mutedStyle.Render("No entries for this day"))
	}
	for i, e := range h.entries {
		cursor := "  "
		style := normalItemStyle
		if i == h.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		label := highlightStyle.Render(fmt.Sprintf("%-8s", e.TimeLabel))
		rows = append(rows, style.Render(cursor)+label+style.Render(" "+e.Text))
	}

	rows = append(rows, "",
		mutedStyle.Render("  ←/→: day  enter: edit  d: delete  n: manual entry  e: export"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
