package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/core/domain"
	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/core/ports"
)

type ProfileHandler struct {
	backend ports.AuthBackend
}

func NewProfileHandler(backend ports.AuthBackend) *ProfileHandler {
	return &ProfileHandler{backend: backend}
}

// Get returns the caller's profile; an absent profile is a 200 with null,
// not an error.
func (h *ProfileHandler) Get(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	profile, err := h.backend.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]*domain.Profile{"profile": profile})
}

// Update applies a partial profile update and echoes back the merged result.
func (h *ProfileHandler) Update(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	profile, err := h.backend.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	if profile == nil {
		profile = &domain.Profile{ID: userID}
	}

	patch := domain.ProfilePatch{
		FullName:     req.FullName,
		BusinessName: req.BusinessName,
		Phone:        req.Phone,
		Address:      req.Address,
	}
	if err := h.backend.UpdateProfile(c.Request().Context(), userID, patch); err != nil {
		return err
	}

	// Merge locally rather than refetching: the patch is authoritative for
	// the fields it names.
	patch.Apply(profile)
	return c.JSON(http.StatusOK, map[string]*domain.Profile{"profile": profile})
}
