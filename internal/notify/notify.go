// Package notify schedules the best-effort desktop alerts that fire when a
// tracking block ends, and reconciles them with the timer engine. Delivery
// uses native mechanisms on macOS (osascript) and Linux (notify-send).
package notify

// Notifier sends a desktop notification. Delivery is fire-and-forget.
type Notifier interface {
	Send(title, message string) error
	SendWithSound(title, message string) error
	IsSupported() bool
}

type noopNotifier struct{}

func (noopNotifier) Send(title, message string) error          { return nil }
func (noopNotifier) SendWithSound(title, message string) error { return nil }
func (noopNotifier) IsSupported() bool                         { return false }

// New creates a platform-specific notifier, or a no-op one when the platform
// has no supported notification mechanism.
func New() Notifier {
	n := newPlatformNotifier()
	if n == nil || !n.IsSupported() {
		return noopNotifier{}
	}
	return n
}
