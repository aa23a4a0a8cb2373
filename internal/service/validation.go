// Package service contains the application services that sit between
// the HTTP layer and the store.
package service

import (
	"errors"
	"reflect"

	"github.com/go-playground/validator/v10"

	"github.com/LakshmiPriyank/Progress-Tracker-Application/internal/store"
)

// validate is a shared validator instance for request validation.
var validate = func() *validator.Validate {
	v := validator.New()
	// Use JSON tag names for field names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("json")
		if name == "" {
			return fld.Name
		}
		// Remove any options (like omitempty, -)
		for i := 0; i < len(name); i++ {
			if name[i] == ',' {
				return name[:i]
			}
		}
		return name
	})
	return v
}()

// formatValidationError converts validator errors to user-friendly store errors.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		// Return the first validation error
		for _, e := range validationErrs {
			field := e.Field()
			switch e.Tag() {
			case "required":
				return store.ErrInvalidInput.WithMessage(field + " is required")
			case "oneof":
				return store.ErrInvalidInput.WithMessage(field + " must be one of: " + e.Param())
			case "gte", "min":
				return store.ErrInvalidInput.WithMessage(field + " must be at least " + e.Param())
			case "lte", "max":
				return store.ErrInvalidInput.WithMessage(field + " must be at most " + e.Param())
			default:
				return store.ErrInvalidInput.WithMessage(field + " is invalid")
			}
		}
	}
	return err
}
