package inventory

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = NewValidator()

// NewValidator returns a validator that reports fields by their json name.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// ValidationErrorFrom converts validator field errors into a *ValidationError.
// Errors of any other kind are returned unchanged.
func ValidationErrorFrom(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	var verr ValidationError
	for _, fe := range fieldErrs {
		verr.Add(fe.Field(), fieldMessage(fe))
	}
	return verr.OrNil()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return "Ensure this value has at most " + fe.Param() + " characters."
	case "min":
		return "Ensure this value has at least " + fe.Param() + " characters."
	default:
		return "Enter a valid value."
	}
}

func validateStruct(s interface{}) *ValidationError {
	err := ValidationErrorFrom(validate.Struct(s))
	if err == nil {
		return &ValidationError{}
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr
	}
	// InvalidValidationError: a programming error, never user input
	panic(err)
}
