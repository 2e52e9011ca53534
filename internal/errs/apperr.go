package errs

import (
	"errors"
	"strings"
)

// AppError is an expected, classified failure. Fields are read-only after construction.
type AppError struct {
	kind        Kind
	message     string
	details     interface{}
	operational bool
	err         error
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.message != "" {
		return e.message
	}
	if e.err != nil {
		return e.err.Error()
	}
	return string(e.kind.Code())
}

// Unwrap returns the original error
func (e *AppError) Unwrap() error {
	return e.err
}

// Kind returns the discriminant of the error
func (e *AppError) Kind() Kind {
	return e.kind
}

func (e *AppError) Message() string {
	return e.message
}

func (e *AppError) Details() interface{} {
	return e.details
}

// IsOperational reports whether the failure is expected (as opposed to a programming fault)
func (e *AppError) IsOperational() bool {
	return e.operational
}

func (e *AppError) Code() ErrorCode {
	return e.kind.Code()
}

// StatusCode returns the HTTP status code
func (e *AppError) StatusCode() int {
	return e.kind.StatusCode()
}

// New creates an AppError of the given kind. An empty message falls back to the kind default.
func New(kind Kind, message string, details interface{}) *AppError {
	if message == "" {
		message = kinds[kind].defaultMessage
	}
	return &AppError{
		kind:        kind,
		message:     message,
		details:     details,
		operational: true,
	}
}

// Wrap creates an AppError that keeps cause for logging and errors.Is.
func Wrap(kind Kind, message string, cause error, details interface{}) *AppError {
	appErr := New(kind, message, details)
	appErr.err = cause
	return appErr
}

func Validation(message string, details interface{}) *AppError {
	return New(KindValidation, message, details)
}

func Authentication(message string) *AppError {
	return New(KindAuthentication, message, nil)
}

func Authorization(message string) *AppError {
	return New(KindAuthorization, message, nil)
}

func NotFound(message string) *AppError {
	return New(KindNotFound, message, nil)
}

func Conflict(message string) *AppError {
	return New(KindConflict, message, nil)
}

func RateLimit(message string) *AppError {
	return New(KindRateLimit, message, nil)
}

func Database(message string, details interface{}) *AppError {
	return New(KindDatabase, message, details)
}

func ExternalService(message string, details interface{}) *AppError {
	return New(KindExternalService, message, details)
}

func BusinessLogic(message string, details interface{}) *AppError {
	return New(KindBusinessLogic, message, details)
}

// As extracts the AppError from an error chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf reports the kind of err when it belongs to the taxonomy.
func KindOf(err error) (Kind, bool) {
	if appErr, ok := As(err); ok {
		return appErr.kind, true
	}
	return 0, false
}

// Propagate applies the controller policy: taxonomy errors pass through untouched,
// anything else is wrapped as a business logic error tagged with the operation.
func Propagate(err error, operation string) error {
	if err == nil {
		return nil
	}

	appErr, ok := As(err)
	if !ok {
		return Wrap(KindBusinessLogic, fallbackMessage(operation), err, map[string]interface{}{
			"originalError": err.Error(),
			"operation":     operation,
		})
	}

	switch appErr.kind {
	case KindValidation, KindAuthentication, KindAuthorization, KindNotFound, KindConflict,
		KindRateLimit, KindDatabase, KindExternalService, KindBusinessLogic:
		return appErr
	default:
		return Wrap(KindBusinessLogic, fallbackMessage(operation), err, map[string]interface{}{
			"originalError": err.Error(),
			"operation":     operation,
		})
	}
}

// fallbackMessage turns "create_cart" into "Failed to create cart".
func fallbackMessage(operation string) string {
	if operation == "" {
		return "Operation failed"
	}
	return "Failed to " + strings.ReplaceAll(operation, "_", " ")
}
