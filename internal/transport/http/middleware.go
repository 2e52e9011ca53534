package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ecommerce-api/internal/auth"
	"ecommerce-api/internal/config"
	"ecommerce-api/internal/domain"
	"ecommerce-api/internal/envelope"
	"ecommerce-api/internal/errs"
	"ecommerce-api/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderErrorCode = "X-Error-Code"

	reportTimeout    = 3 * time.Second
	maxReportMessage = 2000
)

// Reporter forwards failed requests to the monitoring sink
type Reporter interface {
	Report(ctx context.Context, report *domain.ErrorReport) error
}

// TokenVerifier checks bearer tokens
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// ------------------------
// Error Middleware
// ------------------------

// ErrorMiddleware turns handler errors into error envelopes. Interceptor runs outermost
// and handles everything; ValidationInterceptor runs innermost and only claims
// validation failures.
type ErrorMiddleware struct {
	formatter *envelope.Formatter
	reporter  Reporter
	monitor   bool
	logger    *zap.Logger
}

// NewErrorMiddleware creates the error middleware. Reports are forwarded only when
// development is false and reporter is set.
func NewErrorMiddleware(formatter *envelope.Formatter, reporter Reporter, development bool, logger *zap.Logger) *ErrorMiddleware {
	return &ErrorMiddleware{
		formatter: formatter,
		reporter:  reporter,
		monitor:   !development && reporter != nil,
		logger:    logger.With(zap.String("layer", "Middleware")),
	}
}

// Interceptor catches any error from the rest of the chain
func (m *ErrorMiddleware) Interceptor() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := next(c); err != nil {
				m.HandleError(err, c)
			}
			return nil
		}
	}
}

// ValidationInterceptor writes validation failures and passes every other error on
func (m *ErrorMiddleware) ValidationInterceptor() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			res, ok := m.formatter.HandleValidation(err)
			if !ok {
				return err
			}
			if c.Response().Committed {
				return nil
			}

			res = res.WithRequest(resolveRequestID(c), c.Request().URL.Path)
			m.logger.Warn("Validation failed",
				zap.String("url", c.Request().URL.Path),
				zap.String("method", c.Request().Method),
				zap.String("request_id", res.RequestID),
				zap.Strings("fields", envelope.FieldNames(res.Details)),
			)
			m.write(c, res)
			return nil
		}
	}
}

// HandleError formats, logs, writes and reports err. It doubles as the echo
// HTTPErrorHandler for errors raised outside the middleware chain.
func (m *ErrorMiddleware) HandleError(err error, c echo.Context) {
	if c.Response().Committed {
		m.logger.Debug("Response already committed", zap.Error(err))
		return
	}

	requestID := resolveRequestID(c)
	res := m.formatter.Handle(err).WithRequest(requestID, c.Request().URL.Path)

	m.logFailure(c, err, res)
	m.write(c, res)

	if m.monitor {
		m.report(c, err, requestID)
	}
}

func (m *ErrorMiddleware) write(c echo.Context, res envelope.ErrorResponse) {
	h := c.Response().Header()
	h.Set(HeaderRequestID, res.RequestID)
	h.Set(HeaderErrorCode, string(res.ErrorCode))

	var err error
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(res.StatusCode)
	} else {
		err = c.JSON(res.StatusCode, res)
	}
	if err != nil {
		m.logger.Error("Failed to write error response", zap.Error(err))
	}
}

func (m *ErrorMiddleware) logFailure(c echo.Context, err error, res envelope.ErrorResponse) {
	fields := []zap.Field{
		zap.Error(err),
		zap.String("url", c.Request().URL.String()),
		zap.String("method", c.Request().Method),
		zap.String("user_id", userIDOf(c)),
		zap.Int("status", res.StatusCode),
		zap.String("error_code", string(res.ErrorCode)),
		zap.String("request_id", res.RequestID),
		zap.Time("timestamp", res.Timestamp),
	}

	if res.StatusCode >= http.StatusInternalServerError {
		m.logger.Error("Request failed", fields...)
		return
	}
	m.logger.Warn("Request failed", fields...)
}

// report forwards a sanitized summary of the failure. The query string and body never
// leave the process.
func (m *ErrorMiddleware) report(c echo.Context, err error, requestID string) {
	req := c.Request()
	report := &domain.ErrorReport{
		RequestID:    requestID,
		ErrorName:    errorName(err),
		ErrorMessage: truncate(err.Error(), maxReportMessage),
		Method:       req.Method,
		URL:          req.URL.Path,
		UserAgent:    req.UserAgent(),
		IP:           c.RealIP(),
		UserID:       userIDOf(c),
		OccurredAt:   time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(req.Context()), reportTimeout)
	defer cancel()

	if rerr := m.reporter.Report(ctx, report); rerr != nil {
		m.logger.Warn("Failed to forward error report",
			zap.Error(rerr),
			zap.String("request_id", requestID),
		)
	}
}

func errorName(err error) string {
	if appErr, ok := errs.As(err); ok {
		return string(appErr.Code())
	}
	return fmt.Sprintf("%T", err)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// resolveRequestID prefers the id already on the response, then the caller's header
func resolveRequestID(c echo.Context) string {
	if id := c.Response().Header().Get(HeaderRequestID); id != "" {
		return id
	}
	if id := c.Request().Header.Get(HeaderRequestID); id != "" {
		return id
	}
	return uuid.New().String()
}

func userIDOf(c echo.Context) string {
	principal, ok := auth.FromContext(c.Request().Context())
	if !ok {
		return ""
	}
	return strconv.FormatUint(uint64(principal.UserID), 10)
}

// ------------------------
// Auth Middleware
// ------------------------

// BearerAuth resolves the caller from an Authorization: Bearer header. Requests without
// the header continue anonymously; a bad token fails the request.
func BearerAuth(tokens TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return next(c)
			}

			scheme, token, found := strings.Cut(header, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				return fmt.Errorf("%w: authorization header must use the Bearer scheme", jwt.ErrTokenMalformed)
			}

			claims, err := tokens.Verify(strings.TrimSpace(token))
			if err != nil {
				return err
			}

			ctx := auth.WithPrincipal(c.Request().Context(), claims.Principal())
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// ------------------------
// Rate Limit Middleware
// ------------------------

// RateLimiter limits requests per client IP with a token bucket
func RateLimiter(cfg config.RateLimitConfig) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(cfg.RequestsPerSecond),
		Burst:     cfg.Burst,
		ExpiresIn: cfg.ExpiresIn,
	})

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return errs.RateLimit("Unable to identify client")
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return errs.RateLimit("Too many requests, please try again later")
		},
	})
}

// ------------------------
// Request Logging
// ------------------------

// RequestLogger logs one line per request through log
func RequestLogger(log *logger.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.LogHTTPRequest(v.Method, v.URI, v.RequestID, v.RemoteIP, v.Status, v.Latency, v.Error)
			return nil
		},
	})
}
