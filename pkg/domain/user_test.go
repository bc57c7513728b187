package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestUserUnmarshal(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		wantPages []string
		wantErr   error
	}{
		{"string pages", `{"email":"a@b.c","pages":["overview","reports"]}`, []string{"overview", "reports"}, nil},
		{"object pages", `{"pages":[{"name":"overview"},{"path":"/reports"}]}`, []string{"overview", "/reports"}, nil},
		{"empty pages", `{"pages":[]}`, []string{}, nil},
		{"missing pages", `{"email":"a@b.c"}`, nil, ErrMissingPages},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var u User
			err := json.Unmarshal([]byte(tt.payload), &u)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Unmarshal() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal() error: %v", err)
			}
			if len(u.Pages) != len(tt.wantPages) {
				t.Fatalf("got %d pages, want %d", len(u.Pages), len(tt.wantPages))
			}
			for i := range tt.wantPages {
				if u.Pages[i] != tt.wantPages[i] {
					t.Errorf("Pages[%d] = %q, want %q", i, u.Pages[i], tt.wantPages[i])
				}
			}
			if string(u.Raw) != tt.payload {
				t.Errorf("Raw = %s, want %s", u.Raw, tt.payload)
			}
		})
	}
}

func TestUserIDParsing(t *testing.T) {
	var u User
	if err := json.Unmarshal([]byte(`{"id":"2f1c1a36-5c2a-4c5e-9d8e-0c1e0f3c9b7a","pages":[]}`), &u); err != nil {
		t.Fatal(err)
	}
	if u.ID.String() != "2f1c1a36-5c2a-4c5e-9d8e-0c1e0f3c9b7a" {
		t.Errorf("ID = %s", u.ID)
	}

	var legacy User
	if err := json.Unmarshal([]byte(`{"id":"42","pages":[]}`), &legacy); err != nil {
		t.Fatalf("non-uuid id should not fail: %v", err)
	}
}

func TestUserCanOpen(t *testing.T) {
	u := &User{Pages: []string{"overview", "settings"}}
	if !u.CanOpen("settings") {
		t.Error("CanOpen(settings) = false, want true")
	}
	if u.CanOpen("billing") {
		t.Error("CanOpen(billing) = true, want false")
	}
	var nilUser *User
	if nilUser.CanOpen("overview") {
		t.Error("nil user should not open anything")
	}
}

func TestTokenPair(t *testing.T) {
	if !(TokenPair{AccessToken: "a", RefreshToken: "r"}).Complete() {
		t.Error("full pair should be complete")
	}
	if (TokenPair{AccessToken: "a"}).Complete() {
		t.Error("half pair should not be complete")
	}
	if !(TokenPair{}).Empty() {
		t.Error("zero pair should be empty")
	}
}
