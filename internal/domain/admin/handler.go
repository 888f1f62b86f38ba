// Package admin exposes operator-facing introspection endpoints.
package admin

import (
	"net/http"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinic-server/internal/platform/auth"
	"github.com/clinicdesk/clinic-server/internal/platform/db"
	"github.com/clinicdesk/clinic-server/internal/platform/realtime"
)

type Handler struct {
	registry *realtime.Registry
	pool     *pgxpool.Pool
}

func NewHandler(registry *realtime.Registry, pool *pgxpool.Pool) *Handler {
	return &Handler{registry: registry, pool: pool}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	grp := api.Group("/admin", auth.RequireRole("admin"))
	grp.GET("/stats", h.Stats)
}

// Stats reports live presence and pool health.
func (h *Handler) Stats(c echo.Context) error {
	online := h.registry.Usernames()
	sort.Strings(online)

	resp := map[string]interface{}{
		"connected_users": h.registry.Count(),
		"online":          online,
	}
	if h.pool != nil {
		resp["db"] = db.GetPoolStats(h.pool)
	}
	return c.JSON(http.StatusOK, resp)
}
