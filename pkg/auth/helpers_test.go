package auth

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/naveenspark/synex/pkg/client"
)

func decodeEnvelope(t *testing.T, body string) *client.Envelope {
	t.Helper()
	var env client.Envelope
	require.NoError(t, json.Unmarshal([]byte(body), &env))
	return &env
}

// stubAPI records calls and returns canned envelopes.
type stubAPI struct {
	loginEnv *client.Envelope
	loginErr error

	verifyEnv *client.Envelope
	verifyErr error

	loginCalls    int
	resendCalls   int
	resetCalls    int
	verifyPayload map[string]any
	forgotEmail   string
	resetToken    string
}

func (s *stubAPI) Login(_ context.Context, _ client.LoginRequest) (*client.Envelope, error) {
	s.loginCalls++
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	if s.loginEnv == nil {
		return &client.Envelope{}, nil
	}
	return s.loginEnv, nil
}

func (s *stubAPI) VerifyEmail(_ context.Context, payload map[string]any) (*client.Envelope, error) {
	s.verifyPayload = payload
	if s.verifyErr != nil {
		return nil, s.verifyErr
	}
	if s.verifyEnv == nil {
		return &client.Envelope{}, nil
	}
	return s.verifyEnv, nil
}

func (s *stubAPI) ResendOTP(context.Context, map[string]any) (*client.Envelope, error) {
	s.resendCalls++
	return &client.Envelope{}, nil
}

func (s *stubAPI) ForgotPassword(_ context.Context, req client.ForgotPasswordRequest) (*client.Envelope, error) {
	s.forgotEmail = req.Email
	return &client.Envelope{}, nil
}

func (s *stubAPI) ResetPassword(_ context.Context, _ client.ResetPasswordRequest, resetToken string) (*client.Envelope, error) {
	s.resetCalls++
	s.resetToken = resetToken
	return &client.Envelope{}, nil
}

// gatedAPI holds each login until the test releases it by email, so tests
// control the order in which overlapping responses resolve.
type gatedAPI struct {
	stubAPI
	started chan string

	mu    sync.Mutex
	gates map[string]chan struct{}
}

func newGatedAPI() *gatedAPI {
	return &gatedAPI{started: make(chan string), gates: make(map[string]chan struct{})}
}

func (g *gatedAPI) gate(email string) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.gates[email]
	if !ok {
		ch = make(chan struct{})
		g.gates[email] = ch
	}
	return ch
}

func (g *gatedAPI) release(email string) {
	close(g.gate(email))
}

func (g *gatedAPI) Login(_ context.Context, req client.LoginRequest) (*client.Envelope, error) {
	gate := g.gate(req.Email)
	g.started <- req.Email
	<-gate
	user, _ := json.Marshal(map[string]any{"email": req.Email, "pages": []string{"overview"}}) //nolint:errcheck
	return &client.Envelope{
		Token:        "acc-" + req.Email,
		RefreshToken: "ref-" + req.Email,
		User:         user,
	}, nil
}
