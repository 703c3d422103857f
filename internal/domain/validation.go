package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is the package-level validator instance used for struct validation.
// Fields are reported by their JSON names.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// translateValidation converts validator output into domain errors. Missing
// required fields surface as *MissingFieldError so callers can classify them
// without knowing about the validator package.
func translateValidation(err error) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", ErrInvalidSubmission, err)
	}

	first := verrs[0]
	if first.Tag() == "required" {
		return &MissingFieldError{Field: first.Field()}
	}
	return fmt.Errorf("%w: field %s failed %q", ErrInvalidSubmission, first.Field(), first.Tag())
}
