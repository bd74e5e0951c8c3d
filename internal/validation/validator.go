package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"minichat-backend/internal/errs"
)

// Normalizer is implemented by request bodies that clean their fields
// (e.g. trim whitespace) before validation.
type Normalizer interface {
	Normalize()
}

// Validator wraps go-playground/validator and turns its failures into
// errs.ValidationError values keyed by JSON field name.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	// Postgres text columns reject NUL bytes.
	_ = v.RegisterValidation("nonul", func(fl validator.FieldLevel) bool {
		return !strings.ContainsRune(fl.Field().String(), 0)
	})
	return &Validator{validate: v}
}

// Struct normalizes (if supported) and validates req. Only the first failing
// field is reported.
func (v *Validator) Struct(req any) error {
	if n, ok := req.(Normalizer); ok {
		n.Normalize()
	}

	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validate request: %w", err)
	}
	fe := verrs[0]
	return errs.Validation(fe.Field(), message(fe))
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field may not be blank."
	case "nonul":
		return "Null characters are not allowed."
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	default:
		return fmt.Sprintf("Failed on the '%s' rule.", fe.Tag())
	}
}
