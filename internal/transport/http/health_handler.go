package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// HealthChecker reports whether a dependency is reachable
type HealthChecker interface {
	HealthCheck() error
}

// HealthHandler serves the health endpoint
type HealthHandler struct {
	database HealthChecker
	version  string
	logger   *zap.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(database HealthChecker, version string, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{database: database, version: version, logger: logger}
}

// RegisterRoutes registers the health route
func (h *HealthHandler) RegisterRoutes(api *echo.Group) {
	api.GET("/health", h.HealthCheck)
}

// HealthCheck returns the service and database status
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponseDTO
// @Failure 503 {object} HealthResponseDTO
// @Router /api/v1/health [get]
func (h *HealthHandler) HealthCheck(c echo.Context) error {
	res := HealthResponseDTO{Status: "ok", Database: "up", Version: h.version}

	if err := h.database.HealthCheck(); err != nil {
		h.logger.Warn("Database health check failed", zap.Error(err))
		res.Status = "degraded"
		res.Database = "down"
		return c.JSON(http.StatusServiceUnavailable, res)
	}

	return c.JSON(http.StatusOK, res)
}
