package tui

import (
	"testing"
	"time"

	"github.com/naveenspark/synex/pkg/session"
)

func TestFormatExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		exp  time.Time
		want string
	}{
		{"no expiry", time.Time{}, "no expiry"},
		{"seconds", now.Add(30 * time.Second), "expires in <1m"},
		{"minutes", now.Add(15 * time.Minute), "expires in 15m"},
		{"hours", now.Add(5*time.Hour + time.Minute), "expires in 5h"},
		{"days", now.Add(72 * time.Hour), "expires in 3d"},
		{"expired", now.Add(-2 * time.Hour), "expired 2h ago"},
		{"expired now", now, "expired just now"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := formatExpiry(session.Claims{ExpiresAt: tc.exp}, now)
			if got != tc.want {
				t.Errorf("formatExpiry = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestTruncStr(t *testing.T) {
	if got := truncStr("analytics", 20); got != "analytics" {
		t.Errorf("short string changed: %q", got)
	}
	if got := truncStr("very-long-page-name", 8); got != "very-lo…" {
		t.Errorf("truncStr = %q", got)
	}
}

func TestTokenPreview(t *testing.T) {
	tests := []struct {
		tok  string
		want string
	}{
		{"", "none"},
		{"abc", "…abc"},
		{"access-1", "…ss-1"},
		{"eyJhbGciOiJIUzI1NiJ9.payload.signature", "eyJhbG…nature"},
	}
	for _, tc := range tests {
		if got := tokenPreview(tc.tok); got != tc.want {
			t.Errorf("tokenPreview(%q) = %q, want %q", tc.tok, got, tc.want)
		}
	}
}
