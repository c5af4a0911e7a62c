package notify

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mpeters/blocktrack/internal/timer"
)

// Kind discriminates which countdown a scheduled alert belongs to, so the
// receiving handler can map it back to the right engine transition.
type Kind string

const (
	KindMainSessionComplete Kind = "main_session_complete"
	KindTestModeComplete    Kind = "test_mode_complete"
)

const (
	mainTitle = "Time to track your progress!"
	mainBody  = "What did you accomplish in the last 15 minutes?"
	testTitle = "Test timer complete"
	testBody  = "Your test countdown finished."
)

type pendingAlert struct {
	kind   Kind
	fireAt time.Time
}

// Coordinator owns the single pending boundary alert. In-process ticks only
// advance while the process runs; the scheduled alert fires at the
// boundary's absolute time regardless, so it is the authoritative signal for
// "the boundary passed while we were away". At most one alert is pending:
// arming supersedes any earlier schedule, and stopping cancels it in the
// same step as the engine transition.
//
// Like the engine, the coordinator is driven from a single goroutine.
type Coordinator struct {
	clock    timer.Clock
	notifier Notifier
	log      *log.Logger

	enabled    bool
	advisory   string
	pending    *pendingAlert
	sendFailed bool
}

func NewCoordinator(clock timer.Clock, notifier Notifier, logger *log.Logger) *Coordinator {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Coordinator{
		clock:    clock,
		notifier: notifier,
		log:      logger,
		enabled:  true,
	}
}

// SetEnabled toggles desktop delivery. Scheduling still happens while
// disabled so in-app boundary handling keeps working.
func (c *Coordinator) SetEnabled(enabled bool) {
	c.enabled = enabled
}

// RequestPermission checks whether the platform can deliver alerts at all.
// Denial is non-fatal: an advisory is surfaced and the timer keeps working
// without guaranteed background alerts.
func (c *Coordinator) RequestPermission() bool {
	if c.notifier == nil || !c.notifier.IsSupported() {
		c.advisory = "Desktop notifications are unavailable; you will only be alerted while blocktrack is visible."
		c.log.Warn("desktop notifications unsupported on this system")
		return false
	}
	c.advisory = ""
	return true
}

// Advisory returns the permission-denied banner text, empty when granted.
func (c *Coordinator) Advisory() string { return c.advisory }

// Arm schedules one alert secondsFromNow out, superseding any pending one.
func (c *Coordinator) Arm(secondsFromNow int, kind Kind) {
	c.pending = &pendingAlert{
		kind:   kind,
		fireAt: c.clock.Now().Add(time.Duration(secondsFromNow) * time.Second),
	}
}

// CancelAll clears the pending alert.
func (c *Coordinator) CancelAll() {
	c.pending = nil
}

// HasPending reports whether an alert is scheduled.
func (c *Coordinator) HasPending() bool { return c.pending != nil }

// DeliverDue fires the pending alert if its scheduled instant has passed,
// returning its kind exactly once. Desktop delivery errors are logged and
// reported through TakeDeliveryFailure; the kind is still returned so the
// engine transition is never lost.
func (c *Coordinator) DeliverDue(now time.Time) (Kind, bool) {
	if c.pending == nil || now.Before(c.pending.fireAt) {
		return "", false
	}
	kind := c.pending.kind
	c.pending = nil

	if c.enabled && c.notifier != nil {
		title, body := mainTitle, mainBody
		if kind == KindTestModeComplete {
			title, body = testTitle, testBody
		}
		if err := c.notifier.SendWithSound(title, body); err != nil {
			c.log.Warn("notification delivery failed", "err", err)
			c.sendFailed = true
		}
	}
	return kind, true
}

// TakeDeliveryFailure reports (once) that a desktop delivery failed, so the
// UI can show a one-time alert.
func (c *Coordinator) TakeDeliveryFailure() bool {
	failed := c.sendFailed
	c.sendFailed = false
	return failed
}
