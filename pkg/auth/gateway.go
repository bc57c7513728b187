// Package auth talks to the Synex auth endpoints and keeps the session
// store and the durable token cache in step with the responses.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"github.com/naveenspark/synex/pkg/client"
	"github.com/naveenspark/synex/pkg/domain"
	"github.com/naveenspark/synex/pkg/session"
	"github.com/naveenspark/synex/pkg/tokencache"
)

// API is the subset of the remote client the gateway needs.
type API interface {
	Login(ctx context.Context, req client.LoginRequest) (*client.Envelope, error)
	VerifyEmail(ctx context.Context, payload map[string]any) (*client.Envelope, error)
	ResendOTP(ctx context.Context, payload map[string]any) (*client.Envelope, error)
	ForgotPassword(ctx context.Context, req client.ForgotPasswordRequest) (*client.Envelope, error)
	ResetPassword(ctx context.Context, req client.ResetPasswordRequest, resetToken string) (*client.Envelope, error)
}

// Authenticator checks an email/password pair. The Gateway is the real
// implementation; AllowList is a local stand-in.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (Result, error)
}

// Result is the outcome of a login.
type Result struct {
	User    *domain.User
	Tokens  domain.TokenPair
	Message string
}

// Authenticated reports whether the result carries a user and both tokens.
func (r Result) Authenticated() bool {
	return r.User != nil && r.Tokens.Complete()
}

// Gateway runs the auth operations.
type Gateway struct {
	api   API
	store *session.Store
	cache tokencache.Cache
	log   zerolog.Logger

	// mu orders login completions against each other and against logout.
	// gen is bumped by every Login and Logout; a login only applies its
	// response if gen still holds the value it started with.
	mu  sync.Mutex
	gen uint64
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithLogger sets the gateway's logger.
func WithLogger(l zerolog.Logger) GatewayOption {
	return func(g *Gateway) { g.log = l }
}

// NewGateway wires the remote API to a session store and token cache.
func NewGateway(api API, store *session.Store, cache tokencache.Cache, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		api:   api,
		store: store,
		cache: cache,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Store returns the session store the gateway updates.
func (g *Gateway) Store() *session.Store { return g.store }

func (g *Gateway) nextGen() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gen++
	return g.gen
}

// Login posts credentials and, on success, persists whichever tokens the
// response carried and sets the session when a user was returned. A failed
// request leaves both stores untouched. If another Login or a Logout starts
// before the response arrives, the response is dropped and ErrSuperseded
// returned.
func (g *Gateway) Login(ctx context.Context, email, password string) (Result, error) {
	email = normalizeEmail(email)
	if err := validateLogin(email, password); err != nil {
		return Result{}, fmt.Errorf("auth.Login: %w", err)
	}

	gen := g.nextGen()
	env, err := g.api.Login(ctx, client.LoginRequest{Email: email, Password: password})
	if err != nil {
		g.log.Info().Err(err).Msg("login rejected")
		if rejected(err) {
			return Result{}, fmt.Errorf("auth.Login: %w: %w", ErrInvalidCredentials, err)
		}
		return Result{}, fmt.Errorf("auth.Login: %w", err)
	}

	creds, err := NormalizeLogin(env)
	if err != nil {
		g.log.Warn().Err(err).Msg("login response unreadable")
		return Result{}, fmt.Errorf("auth.Login: %w", err)
	}
	res := Result{User: creds.User, Tokens: creds.Tokens, Message: env.Message}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.gen != gen {
		g.log.Info().Uint64("gen", gen).Uint64("current", g.gen).Msg("stale login response dropped")
		return Result{}, fmt.Errorf("auth.Login: %w", ErrSuperseded)
	}

	if creds.Tokens.AccessToken != "" {
		if err := g.cache.Set(ctx, tokencache.KeyAccessToken, creds.Tokens.AccessToken); err != nil {
			return Result{}, fmt.Errorf("auth.Login: persist access token: %w", err)
		}
	}
	if creds.Tokens.RefreshToken != "" {
		if err := g.cache.Set(ctx, tokencache.KeyRefreshToken, creds.Tokens.RefreshToken); err != nil {
			return Result{}, fmt.Errorf("auth.Login: persist refresh token: %w", err)
		}
	}
	if creds.User != nil {
		g.store.SetCredentials(creds.User, creds.Tokens.AccessToken, creds.Tokens.RefreshToken)
	}

	if !creds.Complete() {
		g.log.Warn().
			Bool("user", creds.User != nil).
			Bool("access_token", creds.Tokens.AccessToken != "").
			Bool("refresh_token", creds.Tokens.RefreshToken != "").
			Msg("login response incomplete")
		return res, fmt.Errorf("auth.Login: %w", ErrIncompleteCredentials)
	}
	g.log.Info().Str("user", creds.User.Email).Int("pages", len(creds.User.Pages)).Msg("logged in")
	return res, nil
}

// Logout clears the session and the persisted access/refresh tokens, and
// invalidates any login still in flight.
func (g *Gateway) Logout(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gen++
	if err := g.store.Logout(ctx); err != nil {
		return fmt.Errorf("auth.Logout: %w", err)
	}
	g.log.Info().Msg("logged out")
	return nil
}

// VerifyOTP confirms an email/OTP code. When the response data is a
// non-empty string it is stored as the reset token.
func (g *Gateway) VerifyOTP(ctx context.Context, payload map[string]any) (*client.Envelope, error) {
	env, err := g.api.VerifyEmail(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("auth.VerifyOTP: %w", err)
	}
	if tok, ok := resetTokenFrom(env); ok {
		if err := g.cache.Set(ctx, tokencache.KeyResetToken, tok); err != nil {
			return env, fmt.Errorf("auth.VerifyOTP: persist reset token: %w", err)
		}
		g.log.Info().Msg("reset token stored")
	} else if len(env.Data) > 0 {
		g.log.Warn().Msg("otp verify data is not a token string, ignored")
	}
	return env, nil
}

// ResendOTP asks for a fresh OTP code. No local state changes.
func (g *Gateway) ResendOTP(ctx context.Context, payload map[string]any) (*client.Envelope, error) {
	env, err := g.api.ResendOTP(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("auth.ResendOTP: %w", err)
	}
	return env, nil
}

// ForgotPassword starts a reset for email. No local state changes.
func (g *Gateway) ForgotPassword(ctx context.Context, email string) (*client.Envelope, error) {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, fmt.Errorf("auth.ForgotPassword: %w", err)
	}
	env, err := g.api.ForgotPassword(ctx, client.ForgotPasswordRequest{Email: email})
	if err != nil {
		return nil, fmt.Errorf("auth.ForgotPassword: %w", err)
	}
	return env, nil
}

// ResetPassword submits a new password. The reset token is read from the
// cache when this is called and is left in place afterwards. A missing
// token is sent as an empty header.
func (g *Gateway) ResetPassword(ctx context.Context, newPassword, confirmPassword string) (*client.Envelope, error) {
	if err := validateReset(newPassword, confirmPassword); err != nil {
		return nil, fmt.Errorf("auth.ResetPassword: %w", err)
	}
	tok, _, err := g.cache.Get(ctx, tokencache.KeyResetToken)
	if err != nil {
		return nil, fmt.Errorf("auth.ResetPassword: read reset token: %w", err)
	}
	env, err := g.api.ResetPassword(ctx, client.ResetPasswordRequest{
		NewPassword:     newPassword,
		ConfirmPassword: confirmPassword,
	}, tok)
	if err != nil {
		return nil, fmt.Errorf("auth.ResetPassword: %w", err)
	}
	return env, nil
}

// PersistedTokens returns the access/refresh pair currently in the cache.
func (g *Gateway) PersistedTokens(ctx context.Context) (domain.TokenPair, error) {
	var pair domain.TokenPair
	var err error
	if pair.AccessToken, _, err = g.cache.Get(ctx, tokencache.KeyAccessToken); err != nil {
		return domain.TokenPair{}, fmt.Errorf("auth.PersistedTokens: %w", err)
	}
	if pair.RefreshToken, _, err = g.cache.Get(ctx, tokencache.KeyRefreshToken); err != nil {
		return domain.TokenPair{}, fmt.Errorf("auth.PersistedTokens: %w", err)
	}
	return pair, nil
}

// rejected reports whether err is the backend refusing the credentials
// rather than a transport or server failure.
func rejected(err error) bool {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return true
	}
	return client.IsStatus(err, http.StatusBadRequest) ||
		client.IsStatus(err, http.StatusUnauthorized) ||
		client.IsStatus(err, http.StatusForbidden)
}
