// Package handler exposes the HTTP surface: public browsing, the
// reservation endpoints and the admin catalog API. Handlers translate
// between HTTP and the service layer; they hold no business rules.
package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthHandler reports process liveness and database reachability.
type HealthHandler struct {
	DB *sql.DB // nil when running on the in-memory store
}

// Healthz handles GET /healthz. It returns 200 when the process is up
// and, if a database is configured, when it answers a ping.
func (h *HealthHandler) Healthz(c echo.Context) error {
	if h.DB != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := h.DB.PingContext(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "degraded", "db": err.Error()})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
