package sessions

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// TokenCodec turns a session ID into the signed cookie value and back.
type TokenCodec interface {
	Encode(sessionID string, expiresAt time.Time) (string, error)
	Decode(token string) (string, error)
}

// Options configures the session cookie.
type Options struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Manager loads the session for every request and persists changes made by handlers.
type Manager struct {
	store Store
	codec TokenCodec
	opts  Options
}

type contextKey string

const sessionContextKey = contextKey("session")

// NewManager creates a new Manager.
func NewManager(store Store, codec TokenCodec, opts Options) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = "session"
	}
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	return &Manager{store: store, codec: codec, opts: opts}
}

// CookieName returns the name of the session cookie.
func (m *Manager) CookieName() string {
	return m.opts.CookieName
}

// Middleware attaches the caller's session (or a fresh, unsaved one) to the request context.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), sessionContextKey, m.load(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Manager) load(r *http.Request) *Session {
	cookie, err := r.Cookie(m.opts.CookieName)
	if err != nil || cookie.Value == "" {
		return &Session{}
	}

	id, err := m.codec.Decode(cookie.Value)
	if err != nil {
		log.Debug().Err(err).Msg("Discarding invalid session cookie")
		return &Session{}
	}

	sess, err := m.store.Get(r.Context(), id)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			log.Error().Err(err).Str("session_id", id).Msg("Failed to load session")
		}
		return &Session{}
	}
	return sess
}

// FromContext returns the session attached by Middleware.
func FromContext(ctx context.Context) *Session {
	if sess, ok := ctx.Value(sessionContextKey).(*Session); ok && sess != nil {
		return sess
	}
	return &Session{}
}

// Save persists the request's session, assigning an ID on first save, and refreshes the cookie.
func (m *Manager) Save(w http.ResponseWriter, r *http.Request) error {
	sess := FromContext(r.Context())
	if sess.ID == "" {
		sess.ID = uuid.New().String()
	}
	sess.ExpiresAt = time.Now().Add(m.opts.TTL).UTC()

	if err := m.store.Save(r.Context(), sess); err != nil {
		return err
	}

	token, err := m.codec.Encode(sess.ID, sess.ExpiresAt)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Renew drops the current server-side entry and saves the session under a new ID after fn
// has updated it. Used on login and logout so identifiers never survive a privilege change.
func (m *Manager) Renew(w http.ResponseWriter, r *http.Request, fn func(*Session)) error {
	sess := FromContext(r.Context())
	if sess.ID != "" {
		if err := m.store.Delete(r.Context(), sess.ID); err != nil {
			return err
		}
	}
	sess.ID = ""
	if fn != nil {
		fn(sess)
	}
	return m.Save(w, r)
}

// AddFlash queues a message for the next rendered page.
func (m *Manager) AddFlash(w http.ResponseWriter, r *http.Request, level, message string) error {
	sess := FromContext(r.Context())
	sess.Flashes = append(sess.Flashes, Flash{Level: level, Message: message})
	return m.Save(w, r)
}

// PopFlashes drains the queued messages.
func (m *Manager) PopFlashes(w http.ResponseWriter, r *http.Request) ([]Flash, error) {
	sess := FromContext(r.Context())
	if len(sess.Flashes) == 0 {
		return nil, nil
	}
	flashes := sess.Flashes
	sess.Flashes = nil
	return flashes, m.Save(w, r)
}
