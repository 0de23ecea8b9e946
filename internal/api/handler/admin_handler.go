package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/core/ports"
)

type AdminHandler struct {
	service ports.AdminService
}

func NewAdminHandler(service ports.AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

// ListUsers handles GET /v1/admin/users. RBAC middleware restricts the route
// to admins before this runs.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	views, err := h.service.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string][]ports.AdminUserView{"users": views})
}
