package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ResetTokenHeader carries the OTP-issued reset token on reset-password.
const ResetTokenHeader = "resettoken"

// Envelope is the response body shared by the auth endpoints. Login
// responses come in two shapes: tokens nested under Data, or flat at the
// top level (Token, RefreshToken, User). Both are decoded; callers decide
// precedence.
type Envelope struct {
	Success *bool           `json:"success,omitempty"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`

	Token        string          `json:"token,omitempty"`
	RefreshToken string          `json:"refreshToken,omitempty"`
	User         json.RawMessage `json:"user,omitempty"`
}

// LoginRequest is the payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ForgotPasswordRequest is the payload for POST /auth/forget-password.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest is the payload for POST /auth/reset-password.
type ResetPasswordRequest struct {
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// TokenSource returns the access token to send as a bearer credential, or
// "" for none.
type TokenSource func(ctx context.Context) string

// Client is the Synex API client.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	log        zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets a per-request timeout. Zero means none.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithTokenSource sets where the bearer token comes from.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithLogger sets the request logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a new API client.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login posts credentials.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*Envelope, error) {
	env, err := c.postEnvelope(ctx, "/auth/login", req, nil)
	if err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	return env, nil
}

// VerifyEmail confirms an email/OTP code. The payload is passed through as is.
func (c *Client) VerifyEmail(ctx context.Context, payload map[string]any) (*Envelope, error) {
	env, err := c.postEnvelope(ctx, "/auth/verify-email", payload, nil)
	if err != nil {
		return nil, fmt.Errorf("client.VerifyEmail: %w", err)
	}
	return env, nil
}

// ResendOTP asks the backend to send a new OTP code.
func (c *Client) ResendOTP(ctx context.Context, payload map[string]any) (*Envelope, error) {
	env, err := c.postEnvelope(ctx, "/auth/resend-otp", payload, nil)
	if err != nil {
		return nil, fmt.Errorf("client.ResendOTP: %w", err)
	}
	return env, nil
}

// ForgotPassword starts a password reset for an email.
func (c *Client) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) (*Envelope, error) {
	env, err := c.postEnvelope(ctx, "/auth/forget-password", req, nil)
	if err != nil {
		return nil, fmt.Errorf("client.ForgotPassword: %w", err)
	}
	return env, nil
}

// ResetPassword sets a new password, authorized by resetToken.
func (c *Client) ResetPassword(ctx context.Context, req ResetPasswordRequest, resetToken string) (*Envelope, error) {
	headers := http.Header{}
	headers.Set(ResetTokenHeader, resetToken)
	env, err := c.postEnvelope(ctx, "/auth/reset-password", req, headers)
	if err != nil {
		return nil, fmt.Errorf("client.ResetPassword: %w", err)
	}
	return env, nil
}

// postEnvelope posts body and decodes the envelope. A 2xx response that
// explicitly reports success=false is returned as an *APIError.
func (c *Client) postEnvelope(ctx context.Context, path string, body any, headers http.Header) (*Envelope, error) {
	var env Envelope
	if err := c.doRequest(ctx, http.MethodPost, path, body, headers, &env); err != nil {
		return nil, err
	}
	if env.Success != nil && !*env.Success {
		return nil, &APIError{Message: env.Message}
	}
	return &env, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, headers http.Header, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	if c.tokens != nil {
		if tok := c.tokens(ctx); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("method", method).Str("path", path).Str("request_id", requestID).Msg("request failed")
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Str("request_id", requestID).
		Dur("took", time.Since(start)).
		Msg("request")

	if resp.StatusCode >= 400 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max error body
		if readErr != nil {
			return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
		}
		var apiErr struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil {
			if apiErr.Error != "" {
				return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Error}
			}
			if apiErr.Message != "" {
				return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Message}
			}
		}
		return &HTTPError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
