package http

import (
	"context"
	"net/http"
	"sort"
	"time"

	"kasbon-backend/internal/logger"

	"github.com/labstack/echo/v4"
)

// Check reports whether a dependency (database, redis) answers.
type Check func(ctx context.Context) error

type Handler struct {
	service string
	checks  map[string]Check
}

func NewHandler() *Handler { return &Handler{service: "kasbon", checks: map[string]Check{}} }

// WithCheck adds a dependency check to /health.
func (h *Handler) WithCheck(name string, c Check) *Handler {
	h.checks[name] = c
	return h
}

// Health answers 200 when every check passes and 503 with the failing
// dependency names otherwise.
func (h *Handler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	failing := []string{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			logger.Warn("health check failed", "dependency", name, "error", err)
			failing = append(failing, name)
		}
	}
	sort.Strings(failing)

	status, code := "ok", http.StatusOK
	if len(failing) > 0 {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	return c.JSON(code, map[string]any{
		"status":  status,
		"service": h.service,
		"failing": failing,
		"time":    time.Now().UTC().Format(time.RFC3339Nano),
	})
}
