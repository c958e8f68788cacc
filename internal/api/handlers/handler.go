package handlers

import (
	"bytes"
	"net/http"

	"github.com/isdelr/ender-crm/internal/auth"
	"github.com/isdelr/ender-crm/internal/render"
	"github.com/isdelr/ender-crm/internal/sessions"
	"github.com/rs/zerolog/log"
)

// Flash messages shared by the handlers.
const (
	msgLoggedIn       = "You have been logged in"
	msgLoginFailed    = "There was an error logging in, please try again"
	msgLoggedOut      = "You have been logged out"
	msgRegistered     = "Your account was created"
	msgRecordNotFound = "Record not found."
	msgRecordAdded    = "Record added"
	msgRecordUpdated  = "Record has been updated"
	msgRecordDeleted  = "Record deleted"
	msgInvalidForm    = "Invalid form data. Please correct the errors."
)

const homePath = "/"

// responder holds what every page handler needs to answer: the renderer and the flash sink.
type responder struct {
	renderer render.Renderer
	sessions *sessions.Manager
}

// render writes the page with the current user and the drained flash messages added to data.
func (h *responder) render(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	if user, ok := auth.CurrentUser(r); ok {
		data["user"] = user
	}

	flashes, err := h.sessions.PopFlashes(w, r)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read flash messages")
	}
	data["flashes"] = flashes

	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, name, data); err != nil {
		log.Error().Err(err).Str("template", name).Msg("Failed to render page")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// redirect queues a flash message and sends the caller to path.
func (h *responder) redirect(w http.ResponseWriter, r *http.Request, level, message, path string) {
	if err := h.sessions.AddFlash(w, r, level, message); err != nil {
		log.Error().Err(err).Msg("Failed to store flash message")
	}
	http.Redirect(w, r, path, http.StatusFound)
}

func (h *responder) success(w http.ResponseWriter, r *http.Request, message string) {
	h.redirect(w, r, sessions.FlashSuccess, message, homePath)
}

func (h *responder) failure(w http.ResponseWriter, r *http.Request, message string) {
	h.redirect(w, r, sessions.FlashError, message, homePath)
}
