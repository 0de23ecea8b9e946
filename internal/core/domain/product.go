package domain

import (
	"errors"
	"time"
)

var ErrProductNotFound = errors.New("product not found")
var ErrSaleNotFound = errors.New("sale not found")
var ErrInsufficientStock = errors.New("insufficient stock")

// Product is the aggregate root for the main business entity.
type Product struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	OwnerID   string    `json:"user_id" bson:"user_id"`
	Name      string    `json:"name" bson:"name"`
	Price     float64   `json:"price" bson:"price"`
	Cost      float64   `json:"cost" bson:"cost"`
	Stock     int       `json:"stock" bson:"stock"`
	IsActive  bool      `json:"is_active" bson:"is_active"`
	Category  string    `json:"category,omitempty" bson:"category,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Sale records a single sale of a product.
type Sale struct {
	ID         string    `json:"id" bson:"_id,omitempty"`
	OwnerID    string    `json:"user_id" bson:"user_id"`
	ProductID  string    `json:"product_id" bson:"product_id"`
	Quantity   int       `json:"quantity" bson:"quantity"`
	UnitPrice  float64   `json:"unit_price" bson:"unit_price"`
	Total      float64   `json:"total" bson:"total"`
	Note       string    `json:"note,omitempty" bson:"note,omitempty"`
	OccurredAt time.Time `json:"occurred_at" bson:"occurred_at"`
}

// Insight is an AI-generated business summary. Inputs holds the aggregate
// snapshot the remote model was prompted with, for traceability.
type Insight struct {
	Text        string    `json:"text"`
	Inputs      Snapshot  `json:"inputs"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Snapshot freezes the numbers an insight was generated from.
type Snapshot struct {
	Omzet        float64 `json:"omzet"`
	Laba         float64 `json:"laba"`
	ProductCount int     `json:"product_count"`
	SalesCount   int     `json:"sales_count"`
}
