//go:build linux

package notify

import "os/exec"

type linuxNotifier struct{}

func newPlatformNotifier() Notifier {
	return &linuxNotifier{}
}

func (n *linuxNotifier) Send(title, message string) error {
	return exec.Command("notify-send", "--app-name=blocktrack", title, message).Run()
}

func (n *linuxNotifier) SendWithSound(title, message string) error {
	// notify-send has no sound flag; urgency=critical keeps the alert on
	// screen until dismissed, which is the closest analog.
	return exec.Command("notify-send", "--app-name=blocktrack", "--urgency=critical", title, message).Run()
}

func (n *linuxNotifier) IsSupported() bool {
	_, err := exec.LookPath("notify-send")
	return err == nil
}
