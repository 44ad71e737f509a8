// Package validation wraps go-playground/validator so a rejected request
// reports every violated constraint in one message.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/policydesk/admin-api/pkg/apperrors"
)

// Separator joins individual violation messages
const Separator = ", "

// Messager lets a request type override the message of a field/tag pair.
// Keys are "<StructField>.<tag>", e.g. "Title.required".
type Messager interface {
	ValidationMessages() map[string]string
}

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Struct validates s and returns a VALIDATION_FAILED AppError listing every
// violation in field order, or nil.
func Struct(s interface{}) error {
	msgs, err := Collect(s)
	if err != nil {
		return err
	}
	return Join(msgs...)
}

// Collect returns one message per violated constraint so callers can add
// their own checks before joining.
func Collect(s interface{}) ([]string, error) {
	err := validate.Struct(s)
	if err == nil {
		return nil, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, fmt.Errorf("validate %T: %w", s, err)
	}

	var custom map[string]string
	if m, ok := s.(Messager); ok {
		custom = m.ValidationMessages()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if msg, ok := custom[fe.StructField()+"."+fe.Tag()]; ok {
			msgs = append(msgs, msg)
			continue
		}
		msgs = append(msgs, defaultMessage(fe))
	}
	return msgs, nil
}

// Join turns the collected messages into a single validation error; nil when there are none
func Join(msgs ...string) error {
	if len(msgs) == 0 {
		return nil
	}
	return apperrors.Validation(strings.Join(msgs, Separator))
}

func defaultMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s cannot exceed %s characters", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "email":
		return "Please provide a valid email"
	case "oneof":
		return fmt.Sprintf("Invalid %s", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
