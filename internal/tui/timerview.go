package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/mpeters/blocktrack/internal/notify"
	"github.com/mpeters/blocktrack/internal/store"
	"github.com/mpeters/blocktrack/internal/timer"
)

// tickGap is the tick-to-tick spacing beyond which we assume the process was
// suspended (ctrl+z, terminal stall, laptop sleep) and re-derive the
// countdown from the wall clock instead of trusting accumulated ticks.
const tickGap = 2 * time.Second

// timerViewModel is the main tab: the countdown to the next quarter-hour
// boundary plus the completion-capture overlay.
type timerViewModel struct {
	store  *store.Store
	engine *timer.Engine
	coord  *notify.Coordinator
	clock  timer.Clock
	width  int
	height int

	lastTick time.Time

	captureActive bool
	captureLabel  string
	capture       textarea.Model
}

func newTimerViewModel(s *store.Store, eng *timer.Engine, coord *notify.Coordinator, clock timer.Clock) timerViewModel {
	ta := textarea.New()
	ta.Placeholder = "What did you accomplish?"
	ta.CharLimit = s.GetIntSetting(store.SettingCaptureLimit, 300)
	ta.SetHeight(4)
	ta.ShowLineNumbers = false

	return timerViewModel{
		store:   s,
		engine:  eng,
		coord:   coord,
		clock:   clock,
		capture: ta,
	}
}

func (m *timerViewModel) setSize(w, h int) {
	m.width = w
	m.height = h
	m.capture.SetWidth(min(w-12, 60))
}

func (m timerViewModel) update(msg tea.Msg) (timerViewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return m.handleTick(time.Time(msg))

	case tea.ResumeMsg:
		return m.handleResume(m.clock.Now())

	case tea.KeyMsg:
		if m.captureActive {
			return m.updateCapture(msg)
		}
		switch {
		case key.Matches(msg, keys.Start):
			if m.engine.Status() == timer.StatusIdle {
				return m.startSession(false)
			}
		case key.Matches(msg, keys.Test):
			if m.engine.Status() == timer.StatusIdle {
				return m.startSession(true)
			}
		case key.Matches(msg, keys.Stop):
			return m.stopSession()
		}
	}
	return m, nil
}

// handleTick is the in-process time source: one decrement per delivered
// tick. A gap between ticks means no code ran, so the decrement for this
// round is skipped and the countdown is re-derived instead.
func (m timerViewModel) handleTick(now time.Time) (timerViewModel, tea.Cmd) {
	gap := !m.lastTick.IsZero() && now.Sub(m.lastTick) > tickGap
	m.lastTick = now

	var cmds []tea.Cmd

	// A due alert wins over reconciliation, same as handleResume: it marks
	// the boundary of the block that ended, and its capture must carry that
	// block's label. Reconciling first would relabel to the new block.
	if kind, ok := m.coord.DeliverDue(now); ok {
		var cmd tea.Cmd
		m, cmd = m.handleBoundary(kind)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	} else if gap {
		m.engine.ReconcileOnResume(now)
	} else {
		m.engine.Tick()
	}
	if m.coord.TakeDeliveryFailure() {
		cmds = append(cmds, statusCmd("Could not deliver a desktop notification (see log)", true))
	}

	// Local fallback path; a no-op when the alert already completed us.
	if m.engine.CompleteIfDue() {
		var cmd tea.Cmd
		m, cmd = m.openCapture()
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

// handleResume runs after a suspension of unknown length, before the tick
// resumes. A pending alert whose instant has passed wins over
// reconciliation: it represents the boundary of the block that ended, and
// its capture label must not be recomputed away.
func (m timerViewModel) handleResume(now time.Time) (timerViewModel, tea.Cmd) {
	m.lastTick = now
	if kind, ok := m.coord.DeliverDue(now); ok {
		return m.handleBoundary(kind)
	}
	m.engine.ReconcileOnResume(now)
	return m, nil
}

// handleBoundary maps a fired alert back onto the engine, exactly once. A
// stale test alert against a non-test session is discarded.
func (m timerViewModel) handleBoundary(kind notify.Kind) (timerViewModel, tea.Cmd) {
	if kind == notify.KindTestModeComplete && !m.engine.TestMode() {
		return m, nil
	}
	if !m.engine.BoundaryReached() {
		return m, nil
	}
	return m.openCapture()
}

func (m timerViewModel) startSession(testMode bool) (timerViewModel, tea.Cmd) {
	m.engine.SetTestDuration(m.store.GetIntSetting(store.SettingTestDuration, timer.DefaultTestDuration))
	secs := m.engine.Start(testMode)
	kind := notify.KindMainSessionComplete
	if testMode {
		kind = notify.KindTestModeComplete
	}
	m.coord.Arm(secs, kind)
	m.lastTick = m.clock.Now()
	return m, func() tea.Msg { return sessionStartedMsg{testMode: testMode} }
}

// stopSession cancels the pending alert in the same step as the transition;
// a stale alert would fire for a session the user no longer considers
// active.
func (m timerViewModel) stopSession() (timerViewModel, tea.Cmd) {
	m.engine.Stop()
	m.coord.CancelAll()
	m.captureActive = false
	m.capture.Blur()
	return m, func() tea.Msg { return sessionStoppedMsg{} }
}

func (m timerViewModel) openCapture() (timerViewModel, tea.Cmd) {
	m.captureActive = true
	m.captureLabel = m.engine.Label()
	m.capture.Reset()
	m.capture.CharLimit = m.store.GetIntSetting(store.SettingCaptureLimit, 300)
	return m, m.capture.Focus()
}

func (m timerViewModel) updateCapture(msg tea.KeyMsg) (timerViewModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		return m.finishCapture("")
	case key.Matches(msg, keys.Enter):
		return m.finishCapture(m.capture.Value())
	}
	var cmd tea.Cmd
	m.capture, cmd = m.capture.Update(msg)
	return m, cmd
}

// finishCapture persists the entry (when text was given) and re-arms or
// stops the cycle depending on mode. Skipping takes the same branch without
// persisting.
func (m timerViewModel) finishCapture(text string) (timerViewModel, tea.Cmd) {
	text = strings.TrimSpace(text)
	m.captureActive = false
	m.capture.Blur()

	var cmds []tea.Cmd
	if text != "" {
		entry := store.Entry{
			ID:        uuid.NewString(),
			Text:      text,
			Timestamp: m.clock.Now(),
			TimeLabel: m.captureLabel,
		}
		if err := m.store.SaveEntry(entry); err != nil {
			cmds = append(cmds, statusCmd(fmt.Sprintf("Error saving entry: %v", err), true))
		} else {
			cmds = append(cmds, func() tea.Msg { return entrySavedMsg{} })
		}
	}

	if m.engine.TestMode() {
		m.engine.Stop()
		m.coord.CancelAll()
		cmds = append(cmds, func() tea.Msg { return sessionStoppedMsg{} })
	} else {
		secs := m.engine.AdvanceToNextInterval()
		m.coord.Arm(secs, notify.KindMainSessionComplete)
	}
	return m, tea.Batch(cmds...)
}

func statusCmd(text string, isError bool) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text, isError: isError} }
}

func (m timerViewModel) view() string {
	w := m.width - 4

	if m.captureActive {
		return m.renderCapture(w)
	}

	var rows []string

	if advisory := m.coord.Advisory(); advisory != "" {
		rows = append(rows, advisoryStyle.Width(w-4).Render(advisory), "")
	}

	var countdown, status, hint string
	switch m.engine.Status() {
	case timer.StatusRunning:
		countdown = countdownRunningStyle.Width(w - 6).Render(formatCountdown(m.engine.Remaining()))
		label := m.engine.Label()
		if m.engine.TestMode() {
			status = warningStyle.Render("●  TEST SESSION — " + label)
		} else {
			status = successStyle.Render("●  TRACKING — block " + label)
		}
		hint = mutedStyle.Render("x: stop")
	case timer.StatusCompleted:
		countdown = countdownDoneStyle.Width(w - 6).Render("00:00")
		status = warningStyle.Render("Block complete")
		hint = mutedStyle.Render("waiting for capture")
	default:
		countdown = countdownIdleStyle.Width(w - 6).Render(formatCountdown(0))
		status = mutedStyle.Render("■  IDLE")
		hint = mutedStyle.Render("s: start session  t: 5s test session")
	}

	rows = append(rows,
		titleStyle.Render("Quarter-hour tracker"),
		"",
		countdown,
		lipgloss.NewStyle().Width(w-6).Align(lipgloss.Center).Render(status),
		"",
		lipgloss.NewStyle().Width(w-6).Align(lipgloss.Center).Render(hint),
	)

	style := panelStyle
	if m.engine.Status() == timer.StatusRunning {
		style = activePanelStyle
	}
	return style.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m timerViewModel) renderCapture(w int) string {
	title := titleStyle.Render("Block complete: " + m.captureLabel)
	prompt := mutedStyle.Render("What did you accomplish?")
	hints := mutedStyle.Render("enter: save  esc: skip")

	return activePanelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			prompt,
			m.capture.View(),
			"",
			hints,
		),
	)
}
