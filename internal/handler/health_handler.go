package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"foreverhome/internal/store"
)

// HealthHandler reports liveness and store reachability.
type HealthHandler struct {
	store  store.Store
	logger *zap.Logger
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(s store.Store, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{store: s, logger: logger}
}

// Greeting godoc
// @Summary Greeting
// @Tags health
// @Produce plain
// @Success 200 {string} string
// @Router / [get]
func (h *HealthHandler) Greeting(c echo.Context) error {
	return c.String(http.StatusOK, "Hello World!")
}

// Health godoc
// @Summary Health check
// @Tags health
// @Produce plain
// @Success 200 {string} string
// @Failure 503 {string} string
// @Router /healthz [get]
func (h *HealthHandler) Health(c echo.Context) error {
	if err := h.store.Ping(c.Request().Context()); err != nil {
		h.logger.Warn("store ping failed", zap.Error(err))
		return c.String(http.StatusServiceUnavailable, "store unavailable")
	}
	return c.String(http.StatusOK, "ok")
}
