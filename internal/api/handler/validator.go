package handler

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yamdb/review-api/internal/core/domain"
)

var (
	usernameTagPattern = regexp.MustCompile(`^[\w.@+-]+$`)
	slugTagPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echoValidator with the API's custom tags:
//   - username: letters, digits and @.+-_ only
//   - notme: rejects the reserved "me" handle
//   - slug: letters, digits, '-' and '_'
func NewValidator() *echoValidator {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameTagPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("notme", func(fl validator.FieldLevel) bool {
		return fl.Field().String() != domain.SelfHandle
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugTagPattern.MatchString(fl.Field().String())
	})
	return &echoValidator{v: v}
}

// Validate satisfies the echo.Validator interface. Failures wrap
// domain.ErrValidation so they render as 400.
func (ev *echoValidator) Validate(i any) error {
	if err := ev.v.Struct(i); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			msgs := make([]string, 0, len(ve))
			for _, fe := range ve {
				msgs = append(msgs, fieldError(fe))
			}
			return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

// jsonFieldName reports fields by their wire name.
func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return f.Name
	}
	return name
}

// fieldError converts a single ValidationError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must have at least %s item(s)", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "username":
		return field + " may contain only letters, digits and @/./+/-/_"
	case "notme":
		return fmt.Sprintf("%s %q is reserved", field, domain.SelfHandle)
	case "slug":
		return field + " may contain only letters, digits, '-' and '_'"
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
