package ports

import (
	"context"
	"time"

	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/core/domain"
)

// UserRepository defines persistence operations for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// List returns all users ordered by creation time, newest first. Admin only.
	List(ctx context.Context) ([]domain.User, error)
}

// ProfileRepository defines persistence operations for profiles.
type ProfileRepository interface {
	// FindByUserID returns nil (not an error) when the profile does not exist yet.
	FindByUserID(ctx context.Context, userID string) (*domain.Profile, error)
	Upsert(ctx context.Context, userID string, patch domain.ProfilePatch) error
}

// ListProductsFilter carries query parameters for listing products.
type ListProductsFilter struct {
	OwnerID    string
	Category   string
	ActiveOnly bool
}

// ProductRepository defines persistence operations for products.
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) (*domain.Product, error)
	FindByID(ctx context.Context, id, ownerID string) (*domain.Product, error)
	List(ctx context.Context, filter ListProductsFilter) ([]domain.Product, error)
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id, ownerID string) error
	CountByOwner(ctx context.Context, ownerID string) (int64, error)
}

// ListSalesFilter carries query parameters for listing sales.
type ListSalesFilter struct {
	OwnerID  string
	DateFrom time.Time
	DateTo   time.Time
	Limit    int
}

// SaleRepository defines persistence operations for sales.
type SaleRepository interface {
	Create(ctx context.Context, s *domain.Sale) (*domain.Sale, error)
	List(ctx context.Context, filter ListSalesFilter) ([]domain.Sale, error)
	CountByOwner(ctx context.Context, ownerID string) (int64, error)
}
