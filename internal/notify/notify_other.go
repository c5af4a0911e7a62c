//go:build !linux && !darwin

package notify

func newPlatformNotifier() Notifier {
	return nil
}
