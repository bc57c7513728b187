package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/naveenspark/synex/pkg/domain"
)

// Record is one email/password pair accepted by an AllowList.
type Record struct {
	Email    string
	Password string
	Pages    []string
}

// DemoRecords is the built-in demo account.
var DemoRecords = []Record{
	{Email: "admin@example.com", Password: "12345678", Pages: []string{"overview", "analytics", "settings"}},
}

// AllowList authenticates against a fixed set of records without touching
// the network or any store. It stands in for the gateway in demo builds.
type AllowList struct {
	Records []Record
	// Delay simulates network latency.
	Delay time.Duration
}

// NewDemoAllowList returns the demo allow-list with a 400ms delay.
func NewDemoAllowList() *AllowList {
	return &AllowList{Records: DemoRecords, Delay: 400 * time.Millisecond}
}

// Login returns a user-only Result when the pair matches a record.
func (a *AllowList) Login(ctx context.Context, email, password string) (Result, error) {
	email = normalizeEmail(email)
	if err := validateLogin(email, password); err != nil {
		return Result{}, fmt.Errorf("auth.AllowList.Login: %w", err)
	}

	if a.Delay > 0 {
		t := time.NewTimer(a.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return Result{}, fmt.Errorf("auth.AllowList.Login: %w", ctx.Err())
		case <-t.C:
		}
	}

	for _, r := range a.Records {
		if r.Email == email && r.Password == password {
			return Result{User: &domain.User{Email: r.Email, Pages: append([]string(nil), r.Pages...)}}, nil
		}
	}
	return Result{}, fmt.Errorf("auth.AllowList.Login: %w", ErrInvalidCredentials)
}
