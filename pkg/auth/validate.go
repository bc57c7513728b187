package auth

import (
	"net/mail"
	"strings"
)

// normalizeEmail trims surrounding whitespace. Case is preserved; the
// backend decides whether addresses are case-insensitive.
func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}

func validateEmail(email string) error {
	if email == "" {
		return &ValidationError{Field: "email", Message: "is required"}
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return &ValidationError{Field: "email", Message: "is not a valid address"}
	}
	return nil
}

func validateLogin(email, password string) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	if password == "" {
		return &ValidationError{Field: "password", Message: "is required"}
	}
	return nil
}

func validateReset(newPassword, confirmPassword string) error {
	if newPassword == "" {
		return &ValidationError{Field: "newPassword", Message: "is required"}
	}
	if confirmPassword == "" {
		return &ValidationError{Field: "confirmPassword", Message: "is required"}
	}
	if newPassword != confirmPassword {
		return &ValidationError{Field: "confirmPassword", Message: "does not match", Err: ErrPasswordMismatch}
	}
	return nil
}

// ValidateLogin checks an email/password pair the same way Login does,
// without sending anything.
func ValidateLogin(email, password string) error {
	return validateLogin(normalizeEmail(email), password)
}

// ValidateEmail checks a single address the same way ForgotPassword does.
func ValidateEmail(email string) error {
	return validateEmail(normalizeEmail(email))
}

// ValidateReset checks a new/confirm password pair the same way
// ResetPassword does.
func ValidateReset(newPassword, confirmPassword string) error {
	return validateReset(newPassword, confirmPassword)
}
