package handlers

import (
	"errors"
	"net/http"

	"github.com/isdelr/ender-crm/internal/auth"
	"github.com/isdelr/ender-crm/internal/forms"
	"github.com/isdelr/ender-crm/internal/render"
	"github.com/isdelr/ender-crm/internal/services"
	"github.com/isdelr/ender-crm/internal/sessions"
	"github.com/rs/zerolog/log"
)

// UserHandler handles login, logout and registration.
type UserHandler struct {
	responder
	gateway *auth.Gateway
	users   services.UserServiceProvider
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(gateway *auth.Gateway, users services.UserServiceProvider, renderer render.Renderer, sm *sessions.Manager) *UserHandler {
	return &UserHandler{
		responder: responder{renderer: renderer, sessions: sm},
		gateway:   gateway,
		users:     users,
	}
}

// Login handles the credentials posted from the home page.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	username := r.PostForm.Get("username")

	user, err := h.gateway.Authenticate(r.Context(), username, r.PostForm.Get("password"))
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			log.Warn().Str("username", username).Msg("Failed authentication attempt")
			h.failure(w, r, msgLoginFailed)
			return
		}
		log.Error().Err(err).Str("username", username).Msg("Failed to authenticate user")
		http.Error(w, "Failed to log in", http.StatusInternalServerError)
		return
	}

	if err := h.gateway.EstablishSession(w, r, user); err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to establish session")
		http.Error(w, "Failed to log in", http.StatusInternalServerError)
		return
	}
	h.success(w, r, msgLoggedIn)
}

// Logout ends the current session.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.gateway.EndSession(w, r); err != nil {
		log.Error().Err(err).Msg("Failed to end session")
		http.Error(w, "Failed to log out", http.StatusInternalServerError)
		return
	}
	h.success(w, r, msgLoggedOut)
}

// RegisterForm renders an empty sign-up form.
func (h *UserHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "register.html", map[string]any{
		"form": forms.NewRegistrationForm(nil),
	})
}

// Register creates an account and logs the new user in.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	form := forms.NewRegistrationForm(r.PostForm)
	if _, err := form.Save(r.Context(), h.users); err != nil {
		var fieldErrs forms.FieldErrors
		if errors.As(err, &fieldErrs) {
			h.render(w, r, http.StatusUnprocessableEntity, "register.html", map[string]any{"form": form})
			return
		}
		log.Error().Err(err).Str("username", form.Username).Msg("Failed to register user")
		http.Error(w, "Failed to register user", http.StatusInternalServerError)
		return
	}

	user, err := h.gateway.Authenticate(r.Context(), form.Username, form.Password1)
	if err != nil {
		log.Error().Err(err).Str("username", form.Username).Msg("Failed to authenticate new user")
		http.Error(w, "Failed to log in", http.StatusInternalServerError)
		return
	}
	if err := h.gateway.EstablishSession(w, r, user); err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to establish session")
		http.Error(w, "Failed to log in", http.StatusInternalServerError)
		return
	}

	log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("Registered user")
	h.success(w, r, msgRegistered)
}
