package sessions

import (
	"context"
	"errors"
	"time"
)

// ErrSessionNotFound is returned by stores for unknown or expired sessions.
var ErrSessionNotFound = errors.New("session not found")

// Flash levels.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Session is the server-side state bound to a browser through the session cookie.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId,omitempty"`
	Username  string    `json:"username,omitempty"`
	Flashes   []Flash   `json:"flashes,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Authenticated reports whether the session is bound to a user.
func (s *Session) Authenticated() bool {
	return s != nil && s.UserID != ""
}

// Store persists sessions by ID.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}
