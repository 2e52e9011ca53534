package errs

import "net/http"

type ErrorCode string

const (
	ErrorCodeValidation      ErrorCode = "VALIDATION_ERROR"
	ErrorCodeAuthentication  ErrorCode = "AUTHENTICATION_ERROR"
	ErrorCodeAuthorization   ErrorCode = "AUTHORIZATION_ERROR"
	ErrorCodeNotFound        ErrorCode = "NOT_FOUND_ERROR"
	ErrorCodeConflict        ErrorCode = "CONFLICT_ERROR"
	ErrorCodeRateLimit       ErrorCode = "RATE_LIMIT_ERROR"
	ErrorCodeDatabase        ErrorCode = "DATABASE_ERROR"
	ErrorCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrorCodeBusinessLogic   ErrorCode = "BUSINESS_LOGIC_ERROR"

	// Used by the formatter for anything outside the taxonomy
	ErrorCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Kind discriminates the closed set of application errors.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindConflict
	KindRateLimit
	KindDatabase
	KindExternalService
	KindBusinessLogic
)

type kindInfo struct {
	code           ErrorCode
	status         int
	defaultMessage string
}

var kinds = map[Kind]kindInfo{
	KindValidation:      {ErrorCodeValidation, http.StatusBadRequest, "Validation failed"},
	KindAuthentication:  {ErrorCodeAuthentication, http.StatusUnauthorized, "Authentication required"},
	KindAuthorization:   {ErrorCodeAuthorization, http.StatusForbidden, "Insufficient permissions"},
	KindNotFound:        {ErrorCodeNotFound, http.StatusNotFound, "Resource not found"},
	KindConflict:        {ErrorCodeConflict, http.StatusConflict, "Resource conflict"},
	KindRateLimit:       {ErrorCodeRateLimit, http.StatusTooManyRequests, "Rate limit exceeded"},
	KindDatabase:        {ErrorCodeDatabase, http.StatusInternalServerError, "Database operation failed"},
	KindExternalService: {ErrorCodeExternalService, http.StatusBadGateway, "External service error"},
	KindBusinessLogic:   {ErrorCodeBusinessLogic, http.StatusUnprocessableEntity, "Business rule violated"},
}

// Code returns the wire code of the kind.
func (k Kind) Code() ErrorCode {
	return kinds[k].code
}

// StatusCode returns the HTTP status of the kind.
func (k Kind) StatusCode() int {
	if info, ok := kinds[k]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

func (k Kind) String() string {
	if info, ok := kinds[k]; ok {
		return string(info.code)
	}
	return string(ErrorCodeInternal)
}

// CodeForStatus maps a bare HTTP status to the closest wire code.
func CodeForStatus(status int) ErrorCode {
	switch status {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusUnsupportedMediaType:
		return ErrorCodeValidation
	case http.StatusUnauthorized:
		return ErrorCodeAuthentication
	case http.StatusForbidden:
		return ErrorCodeAuthorization
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return ErrorCodeNotFound
	case http.StatusConflict:
		return ErrorCodeConflict
	case http.StatusTooManyRequests:
		return ErrorCodeRateLimit
	case http.StatusUnprocessableEntity:
		return ErrorCodeBusinessLogic
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return ErrorCodeExternalService
	default:
		return ErrorCodeInternal
	}
}
