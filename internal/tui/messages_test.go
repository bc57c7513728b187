package tui

import (
	"errors"
	"fmt"
	"testing"

	"github.com/naveenspark/synex/pkg/auth"
	"github.com/naveenspark/synex/pkg/client"
)

func TestValidationMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&auth.ValidationError{Field: "email", Message: "is required"}, "Email is required."},
		{fmt.Errorf("auth.ResetPassword: %w", &auth.ValidationError{Field: "confirmPassword", Message: "does not match"}), "Confirmation does not match."},
		{&auth.ValidationError{Field: "tenant", Message: "is unknown"}, "tenant is unknown."},
		{errors.New("plain"), ""},
	}
	for _, tc := range tests {
		if got := validationMessage(tc.err); got != tc.want {
			t.Errorf("validationMessage(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestRecoveryErrorMessage(t *testing.T) {
	if got := recoveryErrorMessage(&client.APIError{Message: "User not found"}); got != "User not found" {
		t.Errorf("got %q", got)
	}
	if got := recoveryErrorMessage(errors.New("EOF")); got != msgUnexpected {
		t.Errorf("got %q", got)
	}
}
