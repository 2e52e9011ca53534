package envelope

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"ecommerce-api/internal/errs"
	"ecommerce-api/pkg/database"
	appvalidator "ecommerce-api/pkg/validator"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const (
	StatusError = "error"

	MessageValidationFailed = "Validation failed"
	MessageDatabaseFailed   = "Database operation failed"
	MessageInvalidToken     = "Invalid or expired token"
	MessageUnexpected       = "An unexpected error occurred"
)

// ErrorResponse is the wire shape of every failed request
type ErrorResponse struct {
	Status     string         `json:"status"`
	StatusCode int            `json:"statusCode"`
	ErrorCode  errs.ErrorCode `json:"errorCode"`
	Message    string         `json:"message"`
	Details    interface{}    `json:"details,omitempty"`
	Path       string         `json:"path,omitempty"`
	RequestID  string         `json:"requestId,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
	Meta       ErrorMeta      `json:"meta"`
}

// ErrorMeta carries remediation hints
type ErrorMeta struct {
	Suggestions   []string `json:"suggestions"`
	Documentation string   `json:"documentation"`
}

// WithRequest returns a copy stamped with the request id and path
func (r ErrorResponse) WithRequest(requestID, path string) ErrorResponse {
	r.RequestID = requestID
	r.Path = path
	r.Meta.Suggestions = clone(r.Meta.Suggestions)
	return r
}

// FieldIssue is one struct-validation failure for a field
type FieldIssue struct {
	Message string      `json:"message"`
	Code    string      `json:"code"`
	Value   interface{} `json:"value,omitempty"`
}

// Formatter turns any error into an ErrorResponse. It knows nothing about the request.
type Formatter struct {
	catalog    *Catalog
	production bool
	now        func() time.Time
}

// NewFormatter creates a formatter; production hides internal error details
func NewFormatter(catalog *Catalog, production bool) *Formatter {
	return &Formatter{
		catalog:    catalog,
		production: production,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock returns a copy that stamps timestamps with now
func (f *Formatter) WithClock(now func() time.Time) *Formatter {
	cp := *f
	cp.now = now
	return &cp
}

// Handle formats err. The first matching shape wins, in this order: struct validation,
// framework forbidden, framework not found, AppError, database, token, other framework
// HTTP errors, anything else.
func (f *Formatter) Handle(err error) ErrorResponse {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return f.structValidation(ve)
	}

	var he *echo.HTTPError
	isHTTP := errors.As(err, &he)
	if isHTTP && he.Code == http.StatusForbidden {
		return f.response(http.StatusForbidden, errs.ErrorCodeAuthorization,
			httpMessage(he, "Insufficient permissions"), nil,
			f.catalog.ForShape(ShapeForbidden), DocAuthentication)
	}
	if isHTTP && he.Code == http.StatusNotFound {
		return f.response(http.StatusNotFound, errs.ErrorCodeNotFound,
			httpMessage(he, "Resource not found"), nil,
			f.catalog.ForShape(ShapeNotFound), DocReference)
	}

	if appErr, ok := errs.As(err); ok {
		return f.response(appErr.StatusCode(), appErr.Code(), appErr.Message(), appErr.Details(),
			f.catalog.ForCode(appErr.Code()), DocCodes)
	}

	if failure, ok := database.Classify(err); ok {
		return f.response(http.StatusInternalServerError, errs.ErrorCodeDatabase, MessageDatabaseFailed,
			map[string]interface{}{
				"code":       failure.Code,
				"sqlMessage": failure.Message,
			},
			f.catalog.ForDatabase(failure.Code), DocDatabase)
	}

	if isTokenError(err) {
		return f.response(http.StatusUnauthorized, errs.ErrorCodeAuthentication, MessageInvalidToken,
			map[string]interface{}{"jwtError": err.Error()},
			f.catalog.ForShape(ShapeToken), DocAuthentication)
	}

	if isHTTP {
		code := errs.CodeForStatus(he.Code)
		return f.response(he.Code, code, httpMessage(he, http.StatusText(he.Code)), nil,
			f.catalog.ForCode(code), DocReference)
	}

	var details interface{}
	if !f.production {
		details = map[string]interface{}{
			"message": err.Error(),
			"stack":   string(debug.Stack()),
		}
	}
	return f.response(http.StatusInternalServerError, errs.ErrorCodeInternal, MessageUnexpected, details,
		f.catalog.ForShape(ShapeInternal), DocSupport)
}

// HandleValidation formats validation-shaped errors only. It reports false for anything else.
func (f *Formatter) HandleValidation(err error) (ErrorResponse, bool) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return f.structValidation(ve), true
	}

	appErr, ok := errs.As(err)
	if !ok || appErr.Kind() != errs.KindValidation {
		return ErrorResponse{}, false
	}

	return f.response(appErr.StatusCode(), appErr.Code(), appErr.Message(), appErr.Details(),
		f.fieldSuggestions(FieldNames(appErr.Details())), DocValidation), true
}

func (f *Formatter) structValidation(ve validator.ValidationErrors) ErrorResponse {
	details := make(map[string][]FieldIssue, len(ve))
	for _, fe := range ve {
		field := fieldPath(fe)
		details[field] = append(details[field], FieldIssue{
			Message: appvalidator.MessageFor(fe),
			Code:    fe.Tag(),
			Value:   fe.Value(),
		})
	}

	return f.response(http.StatusBadRequest, errs.ErrorCodeValidation, MessageValidationFailed, details,
		f.fieldSuggestions(FieldNames(details)), DocValidation)
}

func (f *Formatter) fieldSuggestions(fields []string) []string {
	if hints := f.catalog.ForFields(fields); len(hints) > 0 {
		return hints
	}
	return f.catalog.ForCode(errs.ErrorCodeValidation)
}

func (f *Formatter) response(status int, code errs.ErrorCode, message string, details interface{},
	suggestions []string, doc string) ErrorResponse {
	return ErrorResponse{
		Status:     StatusError,
		StatusCode: status,
		ErrorCode:  code,
		Message:    message,
		Details:    details,
		Timestamp:  f.now(),
		Meta: ErrorMeta{
			Suggestions:   suggestions,
			Documentation: f.catalog.Doc(doc),
		},
	}
}

// FieldNames returns the top-level field names found in validation details, sorted.
// Indexed or nested keys such as "items[0].size" count as "items".
func FieldNames(details interface{}) []string {
	var keys []string
	switch d := details.(type) {
	case appvalidator.Violations:
		keys = d.Fields()
	case map[string][]string:
		keys = mapKeys(d)
	case map[string][]FieldIssue:
		keys = mapKeys(d)
	case map[string]interface{}:
		keys = mapKeys(d)
	case map[string]string:
		keys = mapKeys(d)
	default:
		return nil
	}

	seen := make(map[string]bool, len(keys))
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		if i := strings.IndexAny(k, ".["); i > 0 {
			k = k[:i]
		}
		if !seen[k] {
			seen[k] = true
			names = append(names, k)
		}
	}
	sort.Strings(names)
	return names
}

func mapKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// fieldPath drops the root struct name from the namespace: "request.roleId" becomes "roleId"
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func httpMessage(he *echo.HTTPError, fallback string) string {
	switch m := he.Message.(type) {
	case string:
		if m != "" {
			return m
		}
	case error:
		return m.Error()
	case nil:
	default:
		return fmt.Sprint(m)
	}
	return fallback
}

var tokenErrors = []error{
	jwt.ErrTokenMalformed,
	jwt.ErrTokenUnverifiable,
	jwt.ErrTokenSignatureInvalid,
	jwt.ErrTokenRequiredClaimMissing,
	jwt.ErrTokenInvalidAudience,
	jwt.ErrTokenExpired,
	jwt.ErrTokenUsedBeforeIssued,
	jwt.ErrTokenInvalidIssuer,
	jwt.ErrTokenInvalidSubject,
	jwt.ErrTokenNotValidYet,
	jwt.ErrTokenInvalidId,
	jwt.ErrTokenInvalidClaims,
	jwt.ErrSignatureInvalid,
}

func isTokenError(err error) bool {
	for _, target := range tokenErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
