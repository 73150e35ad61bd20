package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/myflix/myflix-api/internal/model"
)

// FieldError describes why one request field was rejected.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when a request body fails validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateUserRequest checks req and parses its birthday.
func validateUserRequest(v *validator.Validate, req model.UserRequest) (time.Time, error) {
	if err := v.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return time.Time{}, err
		}

		verr := &ValidationError{}
		for _, fe := range fieldErrs {
			verr.Fields = append(verr.Fields, FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
		}
		return time.Time{}, verr
	}

	if req.Birthday == "" {
		return time.Time{}, nil
	}
	birthday, err := time.Parse(model.DateLayout, req.Birthday)
	if err != nil {
		return time.Time{}, &ValidationError{Fields: []FieldError{{Field: "birthday", Message: "birthday must be a date in YYYY-MM-DD format"}}}
	}
	return birthday, nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", fe.Field(), fe.Param())
	case "alphanum":
		return fmt.Sprintf("%s contains non alphanumeric characters - not allowed", fe.Field())
	case "email":
		return fmt.Sprintf("%s does not appear to be valid", fe.Field())
	case "datetime":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
