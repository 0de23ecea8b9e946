package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Auth ---

type signUpRequest struct {
	Email    string `json:"email"     validate:"required,email"`
	Password string `json:"password"  validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required"`
}

type signInRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// --- Profile ---

type updateProfileRequest struct {
	FullName     *string `json:"full_name,omitempty"`
	BusinessName *string `json:"business_name,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	Address      *string `json:"address,omitempty"`
}

// --- Products ---

type createProductRequest struct {
	Name     string  `json:"name"     validate:"required"`
	Price    float64 `json:"price"    validate:"gte=0"`
	Cost     float64 `json:"cost"     validate:"gte=0"`
	Stock    int     `json:"stock"    validate:"gte=0"`
	Category string  `json:"category"`
	IsActive *bool   `json:"is_active"`
}

type updateProductRequest struct {
	Name     *string  `json:"name,omitempty"`
	Price    *float64 `json:"price,omitempty"    validate:"omitempty,gte=0"`
	Cost     *float64 `json:"cost,omitempty"     validate:"omitempty,gte=0"`
	Stock    *int     `json:"stock,omitempty"    validate:"omitempty,gte=0"`
	Category *string  `json:"category,omitempty"`
	IsActive *bool    `json:"is_active,omitempty"`
}

// --- Sales ---

type recordSaleRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity"   validate:"required,gt=0"`
	Note      string `json:"note"`
}

type listSalesQuery struct {
	From  time.Time `query:"from"`
	To    time.Time `query:"to"`
	Limit int       `query:"limit"`
}
