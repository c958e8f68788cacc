package forms

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/isdelr/ender-crm/internal/models"
	"github.com/isdelr/ender-crm/internal/services"
)

// RegistrationForm binds the sign-up fields.
type RegistrationForm struct {
	Username  string `form:"username" validate:"required,max=150,username"`
	Email     string `form:"email" validate:"omitempty,max=254,email"`
	Password1 string `form:"password1" validate:"required,min=8,password"`
	Password2 string `form:"password2" validate:"required,eqfield=Password1"`

	Errors FieldErrors `form:"-"`
}

// NewRegistrationForm binds submitted values. Passwords are kept verbatim.
func NewRegistrationForm(values url.Values) *RegistrationForm {
	return &RegistrationForm{
		Username:  strings.TrimSpace(values.Get("username")),
		Email:     strings.TrimSpace(values.Get("email")),
		Password1: values.Get("password1"),
		Password2: values.Get("password2"),
		Errors:    FieldErrors{},
	}
}

// Validate checks field rules and username uniqueness against accounts.
func (f *RegistrationForm) Validate(ctx context.Context, accounts services.UserServiceProvider) (bool, error) {
	f.Errors = check(f)

	if _, bad := f.Errors["username"]; !bad {
		taken, err := accounts.UsernameExists(ctx, f.Username)
		if err != nil {
			return false, err
		}
		if taken {
			f.Errors.Add("username", "A user with that username already exists.")
		}
	}
	return len(f.Errors) == 0, nil
}

// Save validates the form and creates the account. Invalid input returns the FieldErrors
// and creates nothing.
func (f *RegistrationForm) Save(ctx context.Context, accounts services.UserServiceProvider) (models.User, error) {
	ok, err := f.Validate(ctx, accounts)
	if err != nil {
		return models.User{}, err
	}
	if !ok {
		return models.User{}, f.Errors
	}

	user, err := accounts.CreateUser(ctx, f.Username, f.Email, f.Password1)
	if errors.Is(err, services.ErrUsernameTaken) {
		f.Errors.Add("username", "A user with that username already exists.")
		return models.User{}, f.Errors
	}
	return user, err
}
