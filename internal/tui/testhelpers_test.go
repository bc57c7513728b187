package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/synex/pkg/auth"
	"github.com/naveenspark/synex/pkg/client"
	"github.com/naveenspark/synex/pkg/domain"
)

var namedKeys = map[string]tea.KeyType{
	"enter":     tea.KeyEnter,
	"tab":       tea.KeyTab,
	"shift+tab": tea.KeyShiftTab,
	"backspace": tea.KeyBackspace,
	"esc":       tea.KeyEsc,
	"up":        tea.KeyUp,
	"down":      tea.KeyDown,
	"ctrl+c":    tea.KeyCtrlC,
	"ctrl+f":    tea.KeyCtrlF,
	"ctrl+r":    tea.KeyCtrlR,
	"ctrl+s":    tea.KeyCtrlS,
}

// key builds a KeyMsg for a named key or a run of printable characters.
func key(s string) tea.KeyMsg {
	if t, ok := namedKeys[s]; ok {
		return tea.KeyMsg{Type: t}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// fakeAuth answers logins from a table and counts calls.
type fakeAuth struct {
	mu    sync.Mutex
	calls int
	res   auth.Result
	err   error
}

func (f *fakeAuth) Login(_ context.Context, _, _ string) (auth.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.res, f.err
}

func (f *fakeAuth) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func demoUser() *domain.User {
	return &domain.User{Email: "admin@example.com", Name: "Ada", Pages: []string{"overview", "analytics", "settings"}}
}

func okResult() auth.Result {
	return auth.Result{
		User:   demoUser(),
		Tokens: domain.TokenPair{AccessToken: "access-1", RefreshToken: "refresh-1"},
	}
}

// fakeRecovery records recovery calls.
type fakeRecovery struct {
	forgot []string
	verify []map[string]any
	resend []map[string]any
	reset  [][2]string
	env    *client.Envelope
	err    error
}

func (f *fakeRecovery) ForgotPassword(_ context.Context, email string) (*client.Envelope, error) {
	f.forgot = append(f.forgot, email)
	return f.env, f.err
}

func (f *fakeRecovery) VerifyOTP(_ context.Context, payload map[string]any) (*client.Envelope, error) {
	f.verify = append(f.verify, payload)
	return f.env, f.err
}

func (f *fakeRecovery) ResendOTP(_ context.Context, payload map[string]any) (*client.Envelope, error) {
	f.resend = append(f.resend, payload)
	return f.env, f.err
}

func (f *fakeRecovery) ResetPassword(_ context.Context, newPassword, confirmPassword string) (*client.Envelope, error) {
	f.reset = append(f.reset, [2]string{newPassword, confirmPassword})
	return f.env, f.err
}

type fakeSessions struct {
	calls int
	err   error
}

func (f *fakeSessions) Logout(context.Context) error {
	f.calls++
	return f.err
}
