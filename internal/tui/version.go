package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// VersionChecker reports whether a newer release than current exists.
type VersionChecker interface {
	Check(ctx context.Context, current string) (latest string, newer bool, err error)
}

// versionCheckMsg carries the result of a background release check.
type versionCheckMsg struct {
	latestVersion string
	hasUpdate     bool
}

// checkVersion runs the release check off the update loop. Errors are
// swallowed; the banner simply does not appear.
func checkVersion(vc VersionChecker, current string) tea.Cmd {
	if vc == nil || current == "" || current == "dev" {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		latest, ok, err := vc.Check(ctx, current)
		if err != nil || !ok {
			return versionCheckMsg{}
		}
		return versionCheckMsg{latestVersion: latest, hasUpdate: true}
	}
}
