//go:build darwin

package notify

import (
	"fmt"
	"os/exec"
	"strings"
)

type darwinNotifier struct{}

func newPlatformNotifier() Notifier {
	return &darwinNotifier{}
}

func (n *darwinNotifier) Send(title, message string) error {
	script := fmt.Sprintf("display notification %q with title %q",
		escapeAppleScript(message), escapeAppleScript(title))
	return exec.Command("osascript", "-e", script).Run()
}

func (n *darwinNotifier) SendWithSound(title, message string) error {
	script := fmt.Sprintf("display notification %q with title %q sound name %q",
		escapeAppleScript(message), escapeAppleScript(title), "Glass")
	return exec.Command("osascript", "-e", script).Run()
}

func (n *darwinNotifier) IsSupported() bool {
	_, err := exec.LookPath("osascript")
	return err == nil
}

func escapeAppleScript(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
