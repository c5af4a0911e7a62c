package timer

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mpeters/blocktrack/internal/store"
)

// Status is the engine's position in the idle -> running -> completed cycle.
type Status int

const (
	StatusIdle Status = iota
	StatusRunning
	StatusCompleted
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	default:
		return "idle"
	}
}

// SessionStore persists whether a session is in flight so it survives
// process restarts. *store.Store satisfies it.
type SessionStore interface {
	SessionState() (*store.SessionState, error)
	SaveSessionState(store.SessionState) error
}

// Engine owns the countdown to the next block boundary. All methods are
// meant to be called from a single goroutine (the Bubble Tea update loop);
// there is no internal locking.
//
// Two rules keep the countdown honest across suspensions: the one-second
// Tick is only trusted while ticks are actually being delivered, and on
// resume the remaining time is re-derived from the wall clock because the
// boundary is an absolute instant, not a relative duration.
type Engine struct {
	clock    Clock
	sessions SessionStore
	log      *log.Logger

	status       Status
	testMode     bool
	testDuration int
	remaining    int
	lastSeen     time.Time
	label        string
}

func NewEngine(clock Clock, sessions SessionStore, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{
		clock:        clock,
		sessions:     sessions,
		log:          logger,
		testDuration: DefaultTestDuration,
	}
}

// SetTestDuration overrides the test-mode countdown length.
func (e *Engine) SetTestDuration(secs int) {
	if secs > 0 {
		e.testDuration = secs
	}
}

func (e *Engine) Status() Status { return e.status }
func (e *Engine) Remaining() int { return e.remaining }
func (e *Engine) TestMode() bool { return e.testMode }
func (e *Engine) Label() string  { return e.label }

// Start begins a session and returns the initial remaining seconds, which
// callers use to arm the matching notification.
func (e *Engine) Start(testMode bool) int {
	now := e.clock.Now()
	e.status = StatusRunning
	e.testMode = testMode
	e.lastSeen = now

	start := now
	e.persist(store.SessionState{IsActive: true, StartTime: &start})

	if testMode {
		e.remaining = e.testDuration
		e.label = ClockLabel(now)
	} else {
		e.remaining = e.remainingNow(now)
		e.label = BlockLabel(now)
	}
	return e.remaining
}

// Stop returns the engine to idle. Safe to call in any state.
func (e *Engine) Stop() {
	e.status = StatusIdle
	e.remaining = 0
	e.persist(store.SessionState{IsActive: false})
}

// Tick decrements the countdown by one second. It is the only mutation path
// while ticks are being delivered continuously.
func (e *Engine) Tick() {
	if e.status != StatusRunning {
		return
	}
	if e.remaining > 0 {
		e.remaining--
	}
	e.lastSeen = e.clock.Now()
}

// CompleteIfDue transitions running -> completed when the countdown has hit
// zero. The transition fires exactly once per boundary: repeated calls at
// zero, or calls in any other state, return false.
func (e *Engine) CompleteIfDue() bool {
	if e.status != StatusRunning || e.remaining != 0 {
		return false
	}
	e.status = StatusCompleted
	return true
}

// BoundaryReached is the notification-interaction path: the OS alert fired
// at the boundary's absolute time, so the countdown is forced to zero and
// routed through the same single completion transition. Ignored unless a
// session is running.
func (e *Engine) BoundaryReached() bool {
	if e.status != StatusRunning {
		return false
	}
	e.remaining = 0
	return e.CompleteIfDue()
}

// ReconcileOnResume re-derives the countdown after an interval in which no
// ticks ran. In test mode the boundary is a relative duration, so elapsed
// wall-clock time since the last seen instant is subtracted. In normal mode
// the boundary is an absolute wall-clock instant, so the remaining time is
// recomputed from scratch; subtracting from a stale counter would drift.
func (e *Engine) ReconcileOnResume(now time.Time) {
	if e.status != StatusRunning {
		e.lastSeen = now
		return
	}
	if e.testMode {
		elapsed := int(now.Sub(e.lastSeen).Seconds())
		if elapsed > 0 {
			e.remaining -= elapsed
			if e.remaining < 0 {
				e.remaining = 0
			}
		}
	} else {
		e.remaining = e.remainingNow(now)
		e.label = BlockLabel(now)
	}
	e.lastSeen = now
}

// AdvanceToNextInterval re-arms a completed normal-mode session for the
// block in progress and returns the new remaining seconds.
func (e *Engine) AdvanceToNextInterval() int {
	now := e.clock.Now()
	e.status = StatusRunning
	e.remaining = e.remainingNow(now)
	e.label = BlockLabel(now)
	e.lastSeen = now
	return e.remaining
}

// Restore picks up a session persisted by a previous process. Recovered
// sessions always resume in normal mode with the countdown recomputed for
// the block in progress. Returns true when a session was recovered.
func (e *Engine) Restore() bool {
	if e.sessions == nil {
		return false
	}
	state, err := e.sessions.SessionState()
	if err != nil {
		e.log.Warn("session recovery failed", "err", err)
		return false
	}
	if state == nil || !state.IsActive || state.StartTime == nil {
		return false
	}

	now := e.clock.Now()
	e.status = StatusRunning
	e.testMode = false
	e.remaining = e.remainingNow(now)
	e.label = BlockLabel(now)
	e.lastSeen = now
	return true
}

func (e *Engine) remainingNow(now time.Time) int {
	secs, clamped := remainingInBlock(now)
	if clamped {
		e.log.Warn("block arithmetic out of range, defaulting to full block",
			"at", now.Format(time.RFC3339))
	}
	return secs
}

// persist is best-effort: storage failures must never block a state
// transition, the user-visible timer keeps working in memory.
func (e *Engine) persist(state store.SessionState) {
	if e.sessions == nil {
		return
	}
	if err := e.sessions.SaveSessionState(state); err != nil {
		e.log.Warn("saving session state failed", "err", err)
	}
}
