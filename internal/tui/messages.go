package tui

import (
	"errors"

	"github.com/naveenspark/synex/pkg/auth"
	"github.com/naveenspark/synex/pkg/client"
)

const (
	msgInvalidCredentials = "Invalid email or password."
	msgUnexpected         = "An unexpected error occurred."
)

var fieldLabels = map[string]string{
	"email":           "Email",
	"password":        "Password",
	"otp":             "Code",
	"newPassword":     "New password",
	"confirmPassword": "Confirmation",
}

// validationMessage renders a *auth.ValidationError as a sentence, or ""
// when err is not one.
func validationMessage(err error) string {
	var ve *auth.ValidationError
	if !errors.As(err, &ve) {
		return ""
	}
	label, ok := fieldLabels[ve.Field]
	if !ok {
		label = ve.Field
	}
	return label + " " + ve.Message + "."
}

// loginErrorMessage maps a login failure to what the form shows.
func loginErrorMessage(err error) string {
	if msg := validationMessage(err); msg != "" {
		return msg
	}
	if errors.Is(err, auth.ErrInvalidCredentials) {
		return msgInvalidCredentials
	}
	return msgUnexpected
}

// recoveryErrorMessage prefers the server's own wording for recovery
// failures, since it usually says what is wrong with the code or address.
func recoveryErrorMessage(err error) string {
	if msg := validationMessage(err); msg != "" {
		return msg
	}
	if msg := client.Message(err); msg != "" {
		return msg
	}
	return msgUnexpected
}
