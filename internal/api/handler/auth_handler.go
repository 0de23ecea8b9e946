package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/api/metrics"
	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/core/domain"
	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/core/ports"
)

type AuthHandler struct {
	backend ports.AuthBackend
}

func NewAuthHandler(backend ports.AuthBackend) *AuthHandler {
	return &AuthHandler{backend: backend}
}

type authResponse struct {
	Session *domain.Session `json:"session,omitempty"`
	User    *domain.User    `json:"user,omitempty"`
}

// SignUp creates a new account and opens a session.
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req signUpRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	result, err := h.backend.SignUp(c.Request().Context(), ports.SignUpInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		return err
	}

	metrics.AuthOperationsTotal.WithLabelValues("sign_up").Inc()
	return c.JSON(http.StatusCreated, authResponse{Session: result.Session, User: result.User})
}

// SignIn authenticates a user and opens a session.
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req signInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	result, err := h.backend.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	metrics.AuthOperationsTotal.WithLabelValues("sign_in").Inc()
	return c.JSON(http.StatusOK, authResponse{Session: result.Session, User: result.User})
}

// SignOut revokes the caller's session. Always succeeds from the caller's
// point of view.
func (h *AuthHandler) SignOut(c echo.Context) error {
	if err := h.backend.SignOut(c.Request().Context(), ctxToken(c)); err != nil {
		return err
	}
	metrics.AuthOperationsTotal.WithLabelValues("sign_out").Inc()
	return c.NoContent(http.StatusNoContent)
}

// Refresh exchanges a refresh token for a new session.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	result, err := h.backend.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return err
	}

	metrics.AuthOperationsTotal.WithLabelValues("refresh").Inc()
	return c.JSON(http.StatusOK, authResponse{Session: result.Session, User: result.User})
}

// Session resolves the caller's current session, mirroring the bootstrap
// contract: an unusable token yields an empty body, not an error.
func (h *AuthHandler) Session(c echo.Context) error {
	sess, user, err := h.backend.GetCurrentSession(c.Request().Context(), ctxToken(c))
	if err != nil {
		return err
	}
	if sess == nil || user == nil {
		return c.JSON(http.StatusOK, authResponse{})
	}
	return c.JSON(http.StatusOK, authResponse{Session: sess, User: user})
}
