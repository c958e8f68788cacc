package forms

import (
	"context"
	"net/url"
	"strings"

	"github.com/isdelr/ender-crm/internal/models"
	"github.com/isdelr/ender-crm/internal/services"
)

// RecordForm binds the editable fields of a customer record.
type RecordForm struct {
	FirstName string `form:"first_name" validate:"required,max=50"`
	LastName  string `form:"last_name" validate:"required,max=50"`
	Email     string `form:"email" validate:"required,max=50"`
	Phone     string `form:"phone" validate:"required,max=11"`
	Address   string `form:"address" validate:"required,max=30"`
	City      string `form:"city" validate:"required,max=20"`

	Errors FieldErrors `form:"-"`

	instance *models.Record
}

// NewRecordForm binds submitted values. instance, when non-nil, is the record being edited.
func NewRecordForm(values url.Values, instance *models.Record) *RecordForm {
	return &RecordForm{
		FirstName: strings.TrimSpace(values.Get("first_name")),
		LastName:  strings.TrimSpace(values.Get("last_name")),
		Email:     strings.TrimSpace(values.Get("email")),
		Phone:     strings.TrimSpace(values.Get("phone")),
		Address:   strings.TrimSpace(values.Get("address")),
		City:      strings.TrimSpace(values.Get("city")),
		Errors:    FieldErrors{},
		instance:  instance,
	}
}

// RecordFormFor returns an unbound form whose initial values come from rec.
func RecordFormFor(rec models.Record) *RecordForm {
	return &RecordForm{
		FirstName: rec.FirstName,
		LastName:  rec.LastName,
		Email:     rec.Email,
		Phone:     rec.Phone,
		Address:   rec.Address,
		City:      rec.City,
		Errors:    FieldErrors{},
		instance:  &rec,
	}
}

// Valid checks every field and records the failures in Errors.
func (f *RecordForm) Valid() bool {
	f.Errors = check(f)
	return len(f.Errors) == 0
}

// Record returns the submitted values as a Record, keeping the instance's identity if any.
func (f *RecordForm) Record() models.Record {
	var rec models.Record
	if f.instance != nil {
		rec.ID = f.instance.ID
		rec.CreatedAt = f.instance.CreatedAt
	}
	rec.FirstName = f.FirstName
	rec.LastName = f.LastName
	rec.Email = f.Email
	rec.Phone = f.Phone
	rec.Address = f.Address
	rec.City = f.City
	return rec
}

// Save validates the form and creates a record, or overwrites the bound instance.
// Nothing is written when the form is invalid; the returned error is then the FieldErrors.
func (f *RecordForm) Save(ctx context.Context, store services.RecordServiceProvider) (models.Record, error) {
	if !f.Valid() {
		return models.Record{}, f.Errors
	}
	if f.instance == nil {
		return store.CreateRecord(ctx, f.Record())
	}
	return store.UpdateRecord(ctx, f.instance.ID, f.Record())
}
