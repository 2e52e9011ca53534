package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name    string
		err     *AppError
		status  int
		code    ErrorCode
		message string
	}{
		{"validation", Validation("Validation failed", nil), http.StatusBadRequest, ErrorCodeValidation, "Validation failed"},
		{"authentication default", Authentication(""), http.StatusUnauthorized, ErrorCodeAuthentication, "Authentication required"},
		{"authorization default", Authorization(""), http.StatusForbidden, ErrorCodeAuthorization, "Insufficient permissions"},
		{"not found default", NotFound(""), http.StatusNotFound, ErrorCodeNotFound, "Resource not found"},
		{"conflict default", Conflict(""), http.StatusConflict, ErrorCodeConflict, "Resource conflict"},
		{"rate limit default", RateLimit(""), http.StatusTooManyRequests, ErrorCodeRateLimit, "Rate limit exceeded"},
		{"database default", Database("", nil), http.StatusInternalServerError, ErrorCodeDatabase, "Database operation failed"},
		{"external default", ExternalService("", nil), http.StatusBadGateway, ErrorCodeExternalService, "External service error"},
		{"business logic", BusinessLogic("Cart is full", nil), http.StatusUnprocessableEntity, ErrorCodeBusinessLogic, "Cart is full"},
		{"custom message", NotFound("Product not found"), http.StatusNotFound, ErrorCodeNotFound, "Product not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.StatusCode())
			assert.Equal(t, tt.code, tt.err.Code())
			assert.Equal(t, tt.message, tt.err.Message())
			assert.Equal(t, tt.message, tt.err.Error())
			assert.True(t, tt.err.IsOperational())
		})
	}
}

func TestWrap_KeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(KindDatabase, "", cause, map[string]string{"table": "carts"})

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Database operation failed", err.Message())
	assert.Equal(t, map[string]string{"table": "carts"}, err.Details())
}

func TestAsAndKindOf(t *testing.T) {
	wrapped := fmt.Errorf("loading cart: %w", NotFound("Cart not found"))

	appErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, "Cart not found", appErr.Message())

	kind, ok := KindOf(wrapped)
	require.True(t, ok)
	assert.Equal(t, KindNotFound, kind)

	_, ok = KindOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestPropagate(t *testing.T) {
	t.Run("taxonomy error passes through", func(t *testing.T) {
		original := Conflict("Session already has a cart")
		got := Propagate(original, "create_cart")
		assert.Same(t, original, got)
	})

	t.Run("foreign error becomes business logic", func(t *testing.T) {
		cause := errors.New("boom")
		got := Propagate(cause, "update_order")

		appErr, ok := As(got)
		require.True(t, ok)
		assert.Equal(t, KindBusinessLogic, appErr.Kind())
		assert.Equal(t, "Failed to update order", appErr.Message())
		assert.Equal(t, map[string]interface{}{
			"originalError": "boom",
			"operation":     "update_order",
		}, appErr.Details())
		assert.ErrorIs(t, got, cause)
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, Propagate(nil, "find_product"))
	})
}

func TestCodeForStatus(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorCode
	}{
		{http.StatusBadRequest, ErrorCodeValidation},
		{http.StatusUnauthorized, ErrorCodeAuthentication},
		{http.StatusForbidden, ErrorCodeAuthorization},
		{http.StatusNotFound, ErrorCodeNotFound},
		{http.StatusTooManyRequests, ErrorCodeRateLimit},
		{http.StatusMethodNotAllowed, ErrorCodeNotFound},
		{http.StatusTeapot, ErrorCodeInternal},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, CodeForStatus(tt.status))
		})
	}
}
