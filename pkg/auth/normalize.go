package auth

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/naveenspark/synex/pkg/client"
	"github.com/naveenspark/synex/pkg/domain"
)

// Credentials is what a login response yields once both envelope shapes
// have been folded into one.
type Credentials struct {
	User   *domain.User
	Tokens domain.TokenPair
}

// Complete reports whether a user and both tokens are present.
func (c Credentials) Complete() bool {
	return c.User != nil && c.Tokens.Complete()
}

// nestedLogin is the data object of the nested login shape.
type nestedLogin struct {
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
	User         json.RawMessage `json:"user"`
}

// NormalizeLogin extracts credentials from a login envelope. Each value is
// taken from data.* when present and from the flat top-level field
// otherwise, so data.accessToken beats token, data.refreshToken beats
// refreshToken and data.user beats user.
func NormalizeLogin(env *client.Envelope) (Credentials, error) {
	if env == nil {
		return Credentials{}, fmt.Errorf("%w: empty envelope", ErrMalformedResponse)
	}

	var nested nestedLogin
	if isObject(env.Data) {
		if err := json.Unmarshal(env.Data, &nested); err != nil {
			return Credentials{}, fmt.Errorf("%w: data: %v", ErrMalformedResponse, err)
		}
	}

	creds := Credentials{
		Tokens: domain.TokenPair{
			AccessToken:  firstNonEmpty(nested.AccessToken, env.Token),
			RefreshToken: firstNonEmpty(nested.RefreshToken, env.RefreshToken),
		},
	}

	rawUser := nested.User
	if isNull(rawUser) {
		rawUser = env.User
	}
	if !isNull(rawUser) {
		var u domain.User
		if err := json.Unmarshal(rawUser, &u); err != nil {
			return Credentials{}, fmt.Errorf("%w: user: %v", ErrMalformedResponse, err)
		}
		creds.User = &u
	}
	return creds, nil
}

// resetTokenFrom returns the reset token carried by an OTP verification
// envelope: data must be a non-empty JSON string.
func resetTokenFrom(env *client.Envelope) (string, bool) {
	if env == nil || isNull(env.Data) {
		return "", false
	}
	var tok string
	if err := json.Unmarshal(env.Data, &tok); err != nil || tok == "" {
		return "", false
	}
	return tok, true
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
