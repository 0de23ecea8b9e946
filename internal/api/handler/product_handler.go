package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/core/domain"
	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/core/ports"
)

type ProductHandler struct {
	service ports.ProductService
}

func NewProductHandler(service ports.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

// Create handles POST /v1/products.
func (h *ProductHandler) Create(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req createProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	product, err := h.service.Create(c.Request().Context(), ports.CreateProductInput{
		OwnerID:  userID,
		Name:     req.Name,
		Price:    req.Price,
		Cost:     req.Cost,
		Stock:    req.Stock,
		Category: req.Category,
		IsActive: active,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]*domain.Product{"product": product})
}

// Get handles GET /v1/products/:id.
func (h *ProductHandler) Get(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	product, err := h.service.Get(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]*domain.Product{"product": product})
}

// List handles GET /v1/products.
func (h *ProductHandler) List(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	products, err := h.service.List(c.Request().Context(), ports.ListProductsFilter{
		OwnerID:    userID,
		Category:   c.QueryParam("category"),
		ActiveOnly: c.QueryParam("active") == "true",
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string][]domain.Product{"products": products})
}

// Update handles PATCH /v1/products/:id.
func (h *ProductHandler) Update(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req updateProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	product, err := h.service.Update(c.Request().Context(), c.Param("id"), userID, ports.UpdateProductInput{
		Name:     req.Name,
		Price:    req.Price,
		Cost:     req.Cost,
		Stock:    req.Stock,
		Category: req.Category,
		IsActive: req.IsActive,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]*domain.Product{"product": product})
}

// Delete handles DELETE /v1/products/:id.
func (h *ProductHandler) Delete(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), c.Param("id"), userID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
