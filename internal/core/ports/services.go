package ports

import (
	"context"

	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/core/domain"
)

// CreateProductInput carries all data needed to create a product.
type CreateProductInput struct {
	OwnerID  string
	Name     string
	Price    float64
	Cost     float64
	Stock    int
	Category string
	IsActive bool
}

// UpdateProductInput carries a partial product update. Nil fields are untouched.
type UpdateProductInput struct {
	Name     *string
	Price    *float64
	Cost     *float64
	Stock    *int
	Category *string
	IsActive *bool
}

// ProductService defines use-case operations for products.
type ProductService interface {
	Create(ctx context.Context, input CreateProductInput) (*domain.Product, error)
	Get(ctx context.Context, id, ownerID string) (*domain.Product, error)
	List(ctx context.Context, filter ListProductsFilter) ([]domain.Product, error)
	Update(ctx context.Context, id, ownerID string, input UpdateProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id, ownerID string) error
}

// RecordSaleInput carries all data needed to record a sale.
type RecordSaleInput struct {
	OwnerID   string
	ProductID string
	Quantity  int
	Note      string
}

// SaleService defines use-case operations for sales.
type SaleService interface {
	Record(ctx context.Context, input RecordSaleInput) (*domain.Sale, error)
	List(ctx context.Context, filter ListSalesFilter) ([]domain.Sale, error)
}

// InsightService generates AI business insights from the owner's current data.
type InsightService interface {
	// Generate returns nil (with no error) when the remote model is
	// unavailable; insight failures never surface as API errors.
	Generate(ctx context.Context, ownerID string) (*domain.Insight, error)
}

// AdminUserView is the admin listing row: account plus activity counts.
type AdminUserView struct {
	User         domain.User     `json:"user"`
	Profile      *domain.Profile `json:"profile,omitempty"`
	ProductCount int64           `json:"product_count"`
	SalesCount   int64           `json:"sales_count"`
}

// AdminService exposes the admin view over users.
type AdminService interface {
	ListUsers(ctx context.Context) ([]AdminUserView, error)
}
