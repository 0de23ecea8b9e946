package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/core/domain"
	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/core/ports"
)

const tableProducts = "products"

// ProductService implements owner-scoped product CRUD. Every successful
// mutation publishes a change event so subscribed dashboards refetch.
type ProductService struct {
	repo      ports.ProductRepository
	publisher ports.ChangePublisher
	log       zerolog.Logger
}

func NewProductService(repo ports.ProductRepository, publisher ports.ChangePublisher, log zerolog.Logger) *ProductService {
	return &ProductService{repo: repo, publisher: publisher, log: log}
}

func (s *ProductService) Create(ctx context.Context, input ports.CreateProductInput) (*domain.Product, error) {
	now := time.Now().UTC()
	product := &domain.Product{
		OwnerID:   input.OwnerID,
		Name:      input.Name,
		Price:     input.Price,
		Cost:      input.Cost,
		Stock:     input.Stock,
		IsActive:  input.IsActive,
		Category:  input.Category,
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", input.OwnerID).Msg("failed to create product")
		return nil, err
	}

	s.publishChange(ctx, domain.ChangeInsert, created)
	s.log.Info().Str("product_id", created.ID).Str("user_id", created.OwnerID).Msg("product created")
	return created, nil
}

func (s *ProductService) Get(ctx context.Context, id, ownerID string) (*domain.Product, error) {
	return s.repo.FindByID(ctx, id, ownerID)
}

func (s *ProductService) List(ctx context.Context, filter ports.ListProductsFilter) ([]domain.Product, error) {
	return s.repo.List(ctx, filter)
}

func (s *ProductService) Update(ctx context.Context, id, ownerID string, input ports.UpdateProductInput) (*domain.Product, error) {
	product, err := s.repo.FindByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.Cost != nil {
		product.Cost = *input.Cost
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	if input.Category != nil {
		product.Category = *input.Category
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	product.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, product); err != nil {
		s.log.Error().Err(err).Str("product_id", id).Msg("failed to update product")
		return nil, err
	}

	s.publishChange(ctx, domain.ChangeUpdate, product)
	return product, nil
}

func (s *ProductService) Delete(ctx context.Context, id, ownerID string) error {
	product, err := s.repo.FindByID(ctx, id, ownerID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id, ownerID); err != nil {
		return err
	}

	s.publishChange(ctx, domain.ChangeDelete, product)
	s.log.Info().Str("product_id", id).Str("user_id", ownerID).Msg("product deleted")
	return nil
}

// publishChange is best effort: a feed outage must not fail the mutation that
// already committed.
func (s *ProductService) publishChange(ctx context.Context, typ domain.ChangeType, p *domain.Product) {
	if s.publisher == nil {
		return
	}
	row, err := json.Marshal(p)
	if err != nil {
		s.log.Warn().Err(err).Str("product_id", p.ID).Msg("change payload marshal failed")
		row = nil
	}
	ev := domain.ChangeEvent{
		Table:      tableProducts,
		Type:       typ,
		OwnerID:    p.OwnerID,
		Row:        row,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.publisher.PublishChange(ctx, ev); err != nil {
		s.log.Warn().Err(err).Str("table", tableProducts).Msg("change event publish failed")
	}
}
