package domain

import (
	"encoding/json"
	"errors"

	"github.com/google/uuid"
)

// ErrMissingPages is returned when a user payload has no pages list.
var ErrMissingPages = errors.New("user payload missing pages")

// User is the authenticated dashboard user as returned by the API.
// Only Pages is required; the rest is decoded when present and the
// full payload is kept in Raw.
type User struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email,omitempty"`
	Name  string    `json:"name,omitempty"`
	Role  string    `json:"role,omitempty"`
	// Pages lists the dashboard pages the user may open, in display order.
	Pages []string `json:"pages"`

	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes a user and keeps the original payload.
// Non-string page entries (objects with a name or path) are flattened to
// their name, falling back to the path.
func (u *User) UnmarshalJSON(data []byte) error {
	var wire struct {
		ID    string            `json:"id"`
		Email string            `json:"email"`
		Name  string            `json:"name"`
		Role  string            `json:"role"`
		Pages []json.RawMessage `json:"pages"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if wire.Pages == nil {
		return ErrMissingPages
	}

	pages := make([]string, 0, len(wire.Pages))
	for _, raw := range wire.Pages {
		var name string
		if json.Unmarshal(raw, &name) == nil {
			pages = append(pages, name)
			continue
		}
		var obj struct {
			Name string `json:"name"`
			Path string `json:"path"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return err
		}
		if obj.Name != "" {
			pages = append(pages, obj.Name)
		} else {
			pages = append(pages, obj.Path)
		}
	}

	*u = User{
		Email: wire.Email,
		Name:  wire.Name,
		Role:  wire.Role,
		Pages: pages,
		Raw:   append(json.RawMessage(nil), data...),
	}
	// Backends are not consistent about id format; keep the zero UUID for
	// anything that does not parse.
	if id, err := uuid.Parse(wire.ID); err == nil {
		u.ID = id
	}
	return nil
}

// CanOpen reports whether page is in the user's permitted pages.
func (u *User) CanOpen(page string) bool {
	if u == nil {
		return false
	}
	for _, p := range u.Pages {
		if p == page {
			return true
		}
	}
	return false
}

// DisplayName returns the best label for the user.
func (u *User) DisplayName() string {
	switch {
	case u == nil:
		return ""
	case u.Name != "":
		return u.Name
	default:
		return u.Email
	}
}
