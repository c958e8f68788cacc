package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/ender-crm/internal/forms"
	"github.com/isdelr/ender-crm/internal/metrics"
	"github.com/isdelr/ender-crm/internal/models"
	"github.com/isdelr/ender-crm/internal/render"
	"github.com/isdelr/ender-crm/internal/services"
	"github.com/isdelr/ender-crm/internal/sessions"
	"github.com/rs/zerolog/log"
)

// RecordHandler handles the customer record pages.
type RecordHandler struct {
	responder
	service services.RecordServiceProvider
}

// NewRecordHandler creates a new RecordHandler.
func NewRecordHandler(service services.RecordServiceProvider, renderer render.Renderer, sm *sessions.Manager) *RecordHandler {
	return &RecordHandler{
		responder: responder{renderer: renderer, sessions: sm},
		service:   service,
	}
}

// Home renders the landing page with every record.
func (h *RecordHandler) Home(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.GetAllRecords(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to retrieve records")
		http.Error(w, "Failed to retrieve records", http.StatusInternalServerError)
		return
	}
	h.render(w, r, http.StatusOK, "home.html", map[string]any{"records": records})
}

// lookup resolves the {id} URL parameter. On failure it has already answered the request.
func (h *RecordHandler) lookup(w http.ResponseWriter, r *http.Request) (models.Record, bool) {
	id := chi.URLParam(r, "id")
	record, err := h.service.GetRecordByID(r.Context(), id)
	if err != nil {
		h.fail(w, r, id, err, "Failed to get record by ID")
		return models.Record{}, false
	}
	return record, true
}

// fail maps a service error to the not-found flash, or to a 500.
func (h *RecordHandler) fail(w http.ResponseWriter, r *http.Request, id string, err error, msg string) {
	if errors.Is(err, services.ErrRecordNotFound) {
		log.Warn().Err(err).Str("record_id", id).Msg(msg)
		h.failure(w, r, msgRecordNotFound)
		return
	}
	log.Error().Err(err).Str("record_id", id).Msg(msg)
	http.Error(w, "Failed to process record", http.StatusInternalServerError)
}

// Get renders a single record.
func (h *RecordHandler) Get(w http.ResponseWriter, r *http.Request) {
	record, ok := h.lookup(w, r)
	if !ok {
		return
	}
	h.render(w, r, http.StatusOK, "record.html", map[string]any{"record": record})
}

// CreateForm renders an empty record form.
func (h *RecordHandler) CreateForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "add_record.html", map[string]any{
		"form": forms.NewRecordForm(nil, nil),
	})
}

// Create validates the posted fields and stores a new record.
func (h *RecordHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	form := forms.NewRecordForm(r.PostForm, nil)
	record, err := form.Save(r.Context(), h.service)
	if err != nil {
		var fieldErrs forms.FieldErrors
		if errors.As(err, &fieldErrs) {
			h.failure(w, r, msgInvalidForm)
			return
		}
		log.Error().Err(err).Msg("Failed to create record")
		http.Error(w, "Failed to create record", http.StatusInternalServerError)
		return
	}

	metrics.RecordMutations.WithLabelValues("create").Inc()
	log.Info().Str("record_id", record.ID).Msg("Record created")
	h.success(w, r, msgRecordAdded)
}

// UpdateForm renders the form pre-populated with the record's current values.
func (h *RecordHandler) UpdateForm(w http.ResponseWriter, r *http.Request) {
	record, ok := h.lookup(w, r)
	if !ok {
		return
	}
	h.render(w, r, http.StatusOK, "update_record.html", map[string]any{
		"id":   record.ID,
		"form": forms.RecordFormFor(record),
	})
}

// Update overwrites every editable field of the record.
func (h *RecordHandler) Update(w http.ResponseWriter, r *http.Request) {
	record, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	form := forms.NewRecordForm(r.PostForm, &record)
	if _, err := form.Save(r.Context(), h.service); err != nil {
		var fieldErrs forms.FieldErrors
		if errors.As(err, &fieldErrs) {
			h.failure(w, r, msgInvalidForm)
			return
		}
		h.fail(w, r, record.ID, err, "Failed to update record")
		return
	}

	metrics.RecordMutations.WithLabelValues("update").Inc()
	log.Info().Str("record_id", record.ID).Msg("Record updated")
	h.success(w, r, msgRecordUpdated)
}

// Delete removes the record.
func (h *RecordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	record, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteRecord(r.Context(), record.ID); err != nil {
		h.fail(w, r, record.ID, err, "Failed to delete record")
		return
	}

	metrics.RecordMutations.WithLabelValues("delete").Inc()
	log.Info().Str("record_id", record.ID).Msg("Record deleted")
	h.success(w, r, msgRecordDeleted)
}
