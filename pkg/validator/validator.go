package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	phonePattern     = regexp.MustCompile(`^\+?[1-9]\d{0,15}$`)
	sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)
)

// ValidationFieldErrorDTO represents a field validation error
type ValidationFieldErrorDTO struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Tag     string `json:"tag"`
	Value   string `json:"value"`
}

// Validator wraps the go-playground validator with additional functionality
type Validator interface {
	ValidateStruct(s interface{}) ([]ValidationFieldErrorDTO, error)
	ValidateVar(field interface{}, tag string) error
	RegisterValidation(tag string, fn validator.Func) error
}

// customValidator implements the Validator interface
type customValidator struct {
	validator *validator.Validate
}

// New creates a new validator instance
func New() Validator {
	return &customValidator{validator: newEngine()}
}

func newEngine() *validator.Validate {
	validate := validator.New()

	// Use JSON tag names for validation errors
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation("phone", validatePhone)
	_ = validate.RegisterValidation("session_id", validateSessionID)

	return validate
}

// ValidateStruct validates a struct and returns validation errors
func (cv *customValidator) ValidateStruct(s interface{}) ([]ValidationFieldErrorDTO, error) {
	var validationErrors []ValidationFieldErrorDTO

	err := cv.validator.Struct(s)
	if err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			for _, fe := range ve {
				validationErrors = append(validationErrors, ValidationFieldErrorDTO{
					Field:   fe.Field(),
					Message: MessageFor(fe),
					Tag:     fe.Tag(),
					Value:   fmt.Sprintf("%v", fe.Value()),
				})
			}
		}
	}

	return validationErrors, err
}

// ValidateVar validates a single variable
func (cv *customValidator) ValidateVar(field interface{}, tag string) error {
	return cv.validator.Var(field, tag)
}

// RegisterValidation registers a custom validation function
func (cv *customValidator) RegisterValidation(tag string, fn validator.Func) error {
	return cv.validator.RegisterValidation(tag, fn)
}

// MessageFor returns the field message for a struct validation failure. The wording
// matches the rule-set validator so both shapes read the same on the wire.
func MessageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "phone":
		return "must be a valid phone number"
	case "url", "uri":
		return "must be a valid URL"
	case "min":
		if isLengthKind(fe.Kind()) {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if isLengthKind(fe.Kind()) {
			return fmt.Sprintf("must not exceed %s characters", fe.Param())
		}
		return fmt.Sprintf("must not exceed %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must not exceed %s", fe.Param())
	case "numeric", "number":
		return "must be a valid number"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.Join(strings.Fields(fe.Param()), ", "))
	case "session_id":
		return "must contain only letters, numbers, and dashes"
	default:
		return "format is invalid"
	}
}

func isLengthKind(k reflect.Kind) bool {
	return k == reflect.String || k == reflect.Slice || k == reflect.Array || k == reflect.Map
}

// validatePhone accepts an optional leading plus and up to 16 digits, ignoring whitespace
func validatePhone(fl validator.FieldLevel) bool {
	return IsPhone(fl.Field().String())
}

func validateSessionID(fl validator.FieldLevel) bool {
	return sessionIDPattern.MatchString(fl.Field().String())
}

// IsPhone reports whether s looks like a phone number once whitespace is removed.
func IsPhone(s string) bool {
	return phonePattern.MatchString(strings.Join(strings.Fields(s), ""))
}
