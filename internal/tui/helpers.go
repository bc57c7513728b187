package tui

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/naveenspark/synex/pkg/session"
)

// formatExpiry describes when an access token stops being valid.
func formatExpiry(c session.Claims, now time.Time) string {
	if c.ExpiresAt.IsZero() {
		return "no expiry"
	}
	d := c.ExpiresAt.Sub(now)
	if d <= 0 {
		return "expired " + formatAgo(-d)
	}
	switch {
	case d < time.Minute:
		return "expires in <1m"
	case d < time.Hour:
		return fmt.Sprintf("expires in %dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("expires in %dh", int(d.Hours()))
	default:
		return fmt.Sprintf("expires in %dd", int(d.Hours()/24))
	}
}

func formatAgo(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// truncStr truncates a string to maxLen runes, appending an ellipsis if needed.
func truncStr(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen-1]) + "…"
}

// tokenPreview shows the first and last few characters of a token.
func tokenPreview(tok string) string {
	if tok == "" {
		return "none"
	}
	if len(tok) <= 16 {
		return "…" + tok[len(tok)-min(4, len(tok)):]
	}
	return tok[:6] + "…" + tok[len(tok)-6:]
}
