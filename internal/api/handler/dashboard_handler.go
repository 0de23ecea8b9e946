package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/api/metrics"
	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/core/domain"
	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/core/ports"
	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/dashboard"
)

type DashboardHandler struct {
	hub      *dashboard.Hub
	insights ports.InsightService
}

func NewDashboardHandler(hub *dashboard.Hub, insights ports.InsightService) *DashboardHandler {
	return &DashboardHandler{hub: hub, insights: insights}
}

// Summary handles GET /v1/dashboard — the cached financial view, kept fresh
// by the change feed rather than recomputed per request.
func (h *DashboardHandler) Summary(c echo.Context) error {
	ws, err := h.hub.Workspace(c.Request().Context(), ctxToken(c))
	if err != nil {
		return err
	}
	if ws == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "session not found")
	}

	summary, err := ws.Summary(c.Request().Context())
	if err != nil {
		return err
	}
	metrics.WorkspacesActive.Set(float64(h.hub.Size()))
	return c.JSON(http.StatusOK, summary)
}

// Insight handles POST /v1/dashboard/insight. A model outage returns a null
// insight, never an error.
func (h *DashboardHandler) Insight(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	insight, err := h.insights.Generate(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	if insight == nil {
		metrics.InsightRequestsTotal.WithLabelValues("unavailable").Inc()
		return c.JSON(http.StatusOK, map[string]*domain.Insight{"insight": nil})
	}
	metrics.InsightRequestsTotal.WithLabelValues("ok").Inc()
	return c.JSON(http.StatusOK, map[string]*domain.Insight{"insight": insight})
}
