package http

import (
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"

	"ecommerce-api/internal/auth"
	"ecommerce-api/internal/errs"
	"ecommerce-api/internal/repository"
	"ecommerce-api/internal/service"
	"ecommerce-api/pkg/validator"

	"github.com/labstack/echo/v4"
)

const dataKey = "data"

const msgValidationFailed = validator.MessageFailed

// readBody decodes the JSON request body into a generic object. An empty body yields an
// empty object so the payload check can report the missing wrapper.
func readBody(c echo.Context) (map[string]interface{}, error) {
	body := map[string]interface{}{}

	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, errs.Validation("Unable to read request body", validator.Violations{
			"body": {"could not be read"},
		})
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return body, nil
	}

	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, errs.Validation("Invalid JSON payload", validator.Violations{
			"body": {"must be a valid JSON object"},
		})
	}
	return body, nil
}

// bindData reads the body, checks the {"data": {...}} wrapper and applies the rule table.
// It returns the raw payload object for decodeInto.
func bindData(c echo.Context, rules validator.RuleSet) (map[string]interface{}, error) {
	body, err := readBody(c)
	if err != nil {
		return nil, err
	}

	data := validator.Lookup(body, dataKey)
	if len(data) == 0 {
		return nil, errs.Validation(msgValidationFailed, validator.Violations{
			dataKey: {"is required"},
		})
	}

	if err := validator.ValidateAt(body, dataKey, rules); err != nil {
		return nil, err
	}
	return data, nil
}

// decodeInto converts a validated payload object into a typed input.
func decodeInto(data map[string]interface{}, out interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return errs.Validation(msgValidationFailed, validator.Violations{
			dataKey: {"could not be encoded"},
		})
	}

	if err := json.Unmarshal(raw, out); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return errs.Validation(msgValidationFailed, validator.Violations{
				typeErr.Field: {"has an invalid type"},
			})
		}
		return errs.Validation(msgValidationFailed, validator.Violations{
			dataKey: {"is malformed"},
		})
	}
	return nil
}

// parseID reads the numeric :id path parameter
func parseID(c echo.Context) (uint, error) {
	return parseUintParam(c, "id")
}

func parseUintParam(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errs.Validation("Invalid "+name, validator.Violations{
			name: {"must be a positive integer"},
		})
	}
	return uint(id), nil
}

// listParams reads page and pageSize, accepting both the flat and the
// pagination[...] query forms.
func listParams(c echo.Context) (service.ListParams, error) {
	params := service.ListParams{Page: 1, PageSize: repository.DefaultPageSize}
	violations := validator.Violations{}

	if v := firstQuery(c, "page", "pagination[page]"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			violations.Add("page", "must be a positive integer")
		} else {
			params.Page = n
		}
	}

	if v := firstQuery(c, "pageSize", "pagination[pageSize]"); v != "" {
		n, err := strconv.Atoi(v)
		switch {
		case err != nil || n < 1:
			violations.Add("pageSize", "must be a positive integer")
		case n > repository.MaxPageSize:
			violations.Add("pageSize", "must be at most "+strconv.Itoa(repository.MaxPageSize))
		default:
			params.PageSize = n
		}
	}

	if len(violations) > 0 {
		return params, errs.Validation("Invalid pagination", violations)
	}
	return params, nil
}

func firstQuery(c echo.Context, names ...string) string {
	for _, name := range names {
		if v := c.QueryParam(name); v != "" {
			return v
		}
	}
	return ""
}

// requireAuth returns the caller or an AuthenticationError naming the attempted action,
// e.g. "Authentication required to create products".
func requireAuth(c echo.Context, action, resource string) (auth.Principal, error) {
	principal, ok := auth.FromContext(c.Request().Context())
	if !ok {
		return auth.Principal{}, errs.Authentication("Authentication required to " + action + " " + resource)
	}
	return principal, nil
}

// requireRole is requireAuth plus a role check
func requireRole(c echo.Context, action, resource string, roles ...string) (auth.Principal, error) {
	principal, err := requireAuth(c, action, resource)
	if err != nil {
		return principal, err
	}
	if !principal.HasRole(roles...) {
		return principal, errs.Authorization("Insufficient permissions to " + action + " " + resource)
	}
	return principal, nil
}
