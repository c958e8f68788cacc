package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/isdelr/ender-crm/internal/metrics"
	"github.com/isdelr/ender-crm/internal/models"
	"github.com/isdelr/ender-crm/internal/services"
	"github.com/isdelr/ender-crm/internal/sessions"
	"github.com/rs/zerolog/log"
)

// LoginPath is where unauthenticated callers are sent by RequireAuthenticated.
const LoginPath = "/"

// SessionUser is the identity bound to the current session.
type SessionUser struct {
	ID       string
	Username string
}

// Gateway wraps credential checks and session binding.
type Gateway struct {
	users    services.UserServiceProvider
	sessions *sessions.Manager
}

// NewGateway creates a new Gateway.
func NewGateway(users services.UserServiceProvider, sessions *sessions.Manager) *Gateway {
	return &Gateway{users: users, sessions: sessions}
}

// Authenticate checks a username/password pair against the account store.
func (g *Gateway) Authenticate(ctx context.Context, username, password string) (models.User, error) {
	user, err := g.users.AuthenticateUser(ctx, username, password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			metrics.LoginAttempts.WithLabelValues("failure").Inc()
		}
		return models.User{}, err
	}
	metrics.LoginAttempts.WithLabelValues("success").Inc()
	return user, nil
}

// EstablishSession binds the request's session to user under a fresh session ID.
func (g *Gateway) EstablishSession(w http.ResponseWriter, r *http.Request, user models.User) error {
	return g.sessions.Renew(w, r, func(s *sessions.Session) {
		s.UserID = user.ID
		s.Username = user.Username
	})
}

// EndSession invalidates the current session. Pending flashes carry over to the new one.
func (g *Gateway) EndSession(w http.ResponseWriter, r *http.Request) error {
	return g.sessions.Renew(w, r, func(s *sessions.Session) {
		s.UserID = ""
		s.Username = ""
	})
}

// CurrentUser returns the user bound to the request's session, if any.
func CurrentUser(r *http.Request) (SessionUser, bool) {
	sess := sessions.FromContext(r.Context())
	if !sess.Authenticated() {
		return SessionUser{}, false
	}
	return SessionUser{ID: sess.UserID, Username: sess.Username}, true
}

// VerifySession reloads the account behind an authenticated session. Sessions whose
// account is gone are logged out before the request continues.
func (g *Gateway) VerifySession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := sessions.FromContext(r.Context())
		if !sess.Authenticated() {
			next.ServeHTTP(w, r)
			return
		}

		user, err := g.users.GetUserByID(r.Context(), sess.UserID)
		switch {
		case err == nil:
			sess.Username = user.Username
		case errors.Is(err, services.ErrUserNotFound):
			log.Info().Str("user_id", sess.UserID).Msg("Dropping session of removed account")
			if err := g.EndSession(w, r); err != nil {
				log.Error().Err(err).Msg("Failed to end stale session")
			}
		default:
			log.Error().Err(err).Str("user_id", sess.UserID).Msg("Failed to load session user")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuthenticated redirects callers without an authenticated session to the login page.
func (g *Gateway) RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}

		if err := g.sessions.AddFlash(w, r, sessions.FlashError, "You must be logged in to do that."); err != nil {
			log.Error().Err(err).Msg("Failed to store flash message")
		}
		http.Redirect(w, r, LoginPath, http.StatusFound)
	})
}
