package http

import (
	"net/http"
	"time"

	"ecommerce-api/internal/config"
	"ecommerce-api/internal/envelope"
	"ecommerce-api/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Routes is implemented by every handler mounted under /api/v1
type Routes interface {
	RegisterRoutes(api *echo.Group)
}

// ServerOptions holds what NewServer needs besides the handlers
type ServerOptions struct {
	Config    *config.Config
	Logger    *logger.Logger
	Formatter *envelope.Formatter
	Reporter  Reporter
	Tokens    TokenVerifier
}

// NewServer configures Echo with the middleware chain and mounts routes under /api/v1.
//
// Chain, outermost first: request id, request log, error interceptor, recover, CORS,
// security headers, body limit, gzip, rate limit, bearer auth, validation interceptor.
func NewServer(opts ServerOptions, routes ...Routes) *echo.Echo {
	cfg := opts.Config

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.App.Debug

	errorMiddleware := NewErrorMiddleware(opts.Formatter, opts.Reporter, cfg.IsDevelopment(), opts.Logger.Logger)
	e.HTTPErrorHandler = errorMiddleware.HandleError

	e.Use(middleware.RequestID())
	e.Use(RequestLogger(opts.Logger))
	e.Use(errorMiddleware.Interceptor())
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisableErrorHandler: true,
	}))

	if cfg.Server.EnableCORS {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: cfg.Server.AllowOrigins,
			AllowMethods: []string{
				http.MethodGet,
				http.MethodHead,
				http.MethodPost,
				http.MethodPut,
				http.MethodDelete,
				http.MethodOptions,
			},
			AllowHeaders: []string{
				echo.HeaderOrigin,
				echo.HeaderContentType,
				echo.HeaderAccept,
				echo.HeaderAuthorization,
				HeaderRequestID,
			},
			ExposeHeaders: []string{HeaderRequestID, HeaderErrorCode},
		}))
	}

	// Security headers
	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
	}))

	if cfg.Server.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))
	}
	e.Use(middleware.Gzip())

	if cfg.RateLimit.Enabled {
		e.Use(RateLimiter(cfg.RateLimit))
	}
	e.Use(BearerAuth(opts.Tokens))
	e.Use(errorMiddleware.ValidationInterceptor())

	api := e.Group("/api/v1")
	for _, r := range routes {
		r.RegisterRoutes(api)
	}

	return e
}

// respond writes a data envelope with a message and timestamp
func respond(c echo.Context, status int, data interface{}, message string) error {
	return c.JSON(status, envelope.New(data).WithMessage(message, time.Now()).Build())
}

// respondDeleted writes {data: null, meta: {message, timestamp}}
func respondDeleted(c echo.Context, message string) error {
	return c.JSON(http.StatusOK, envelope.Deleted(message, time.Now()))
}

func respondData(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, envelope.New(data).Build())
}
