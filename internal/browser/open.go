// Package browser opens dashboard links in the user's default browser.
package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// Open opens an http(s) URL in the user's default browser.
func Open(rawURL string) error {
	cmd, err := command(runtime.GOOS, rawURL)
	if err != nil {
		return err
	}
	return cmd.Start()
}

// command builds the launcher for goos. Only absolute http and https URLs
// are accepted so a malformed config value is never handed to a shell
// helper.
func command(goos, rawURL string) (*exec.Cmd, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("browser.Open: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("browser.Open: refusing to open %q", rawURL)
	}
	switch goos {
	case "darwin":
		return exec.Command("open", rawURL), nil
	case "linux":
		return exec.Command("xdg-open", rawURL), nil
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL), nil
	default:
		return nil, fmt.Errorf("browser.Open: unsupported OS: %s", goos)
	}
}
