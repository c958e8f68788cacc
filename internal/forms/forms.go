package forms

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldErrors maps a form field name to its validation messages.
type FieldErrors map[string][]string

// Add appends a message for field.
func (e FieldErrors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// Get returns the first message for field, or "".
func (e FieldErrors) Get(field string) string {
	if msgs := e[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for field, msgs := range e {
		parts = append(parts, field+": "+strings.Join(msgs, " "))
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// maxPasswordBytes is the most bcrypt will hash.
const maxPasswordBytes = 72

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= maxPasswordBytes
	})
	return v
}

// check runs struct validation and translates failures into FieldErrors.
func check(s interface{}) FieldErrors {
	errs := FieldErrors{}
	err := validate.Struct(s)
	if err == nil {
		return errs
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errs.Add("__all__", err.Error())
		return errs
	}
	for _, fe := range verrs {
		errs.Add(fe.Field(), message(fe))
	}
	return errs
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters (it has %d).", fe.Param(), len([]rune(fe.Value().(string))))
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "eqfield":
		return "The two password fields didn't match."
	case "password":
		return fmt.Sprintf("Ensure this value has at most %d bytes.", maxPasswordBytes)
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	default:
		return "Enter a valid value."
	}
}
