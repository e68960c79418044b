package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/elecmate/materials-compare/internal/domain"
)

const maxRequestBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	// Lets numeric tags such as gt=0 apply to decimal fields
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// compareRequest is the body of POST /api/v1/comparison
type compareRequest struct {
	Items []itemRequest `json:"items" validate:"required,dive"`
}

type itemRequest struct {
	Name         string          `json:"name" validate:"max=200"`
	Quantity     decimal.Decimal `json:"quantity" validate:"gt=0"`
	Unit         string          `json:"unit" validate:"omitempty,max=32"`
	OriginalText *string         `json:"original_text" validate:"omitempty,max=500"`
}

// toDomain converts the request into the items the comparison service expects
func (r compareRequest) toDomain() []domain.InputItem {
	items := make([]domain.InputItem, len(r.Items))
	for i, item := range r.Items {
		items[i] = domain.InputItem{
			Name:         strings.TrimSpace(item.Name),
			Quantity:     item.Quantity,
			Unit:         strings.TrimSpace(item.Unit),
			OriginalText: item.OriginalText,
		}
	}
	return items
}

// requestValidationError carries per-field messages for a malformed request body
type requestValidationError struct {
	message string
	fields  map[string]string
}

func (e *requestValidationError) Error() string {
	return e.message
}

func (e *requestValidationError) Unwrap() error {
	return domain.ErrInvalidRequest
}

func validateRequest(req *compareRequest) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return &requestValidationError{message: "validation failed"}
	}

	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		fields[fieldPath(fe)] = validationMessage(fe)
	}
	first := errs[0]
	return &requestValidationError{
		message: fmt.Sprintf("%s %s", fieldPath(first), validationMessage(first)),
		fields:  fields,
	}
}

// fieldPath drops the struct name from the namespace, e.g. items[1].name
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	}
	return "is invalid"
}
