package api

import (
	"net/http"

	"PolyWatch/internal/usecase"
	xlogger "PolyWatch/pkg/logger"

	"github.com/labstack/echo/v4"
)

// StatusHandler exposes the tracker's operational state.
type StatusHandler struct {
	logger  *xlogger.Logger
	tracker *usecase.Tracker
}

func NewStatusHandler(logger *xlogger.Logger, tracker *usecase.Tracker) *StatusHandler {
	return &StatusHandler{logger: logger, tracker: tracker}
}

func (h *StatusHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
	e.GET("/status", h.Status)
}

func (h *StatusHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *StatusHandler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, h.tracker.Status())
}
