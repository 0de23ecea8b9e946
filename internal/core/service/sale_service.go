package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/core/domain"
	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/core/ports"
)

const tableSales = "sales"

const maxSalesPageSize = 100

// SaleService records sales against products, decrementing stock and
// publishing change events for both tables.
type SaleService struct {
	sales     ports.SaleRepository
	products  ports.ProductRepository
	publisher ports.ChangePublisher
	log       zerolog.Logger
}

func NewSaleService(sales ports.SaleRepository, products ports.ProductRepository, publisher ports.ChangePublisher, log zerolog.Logger) *SaleService {
	return &SaleService{sales: sales, products: products, publisher: publisher, log: log}
}

func (s *SaleService) Record(ctx context.Context, input ports.RecordSaleInput) (*domain.Sale, error) {
	if input.Quantity <= 0 {
		return nil, domain.ErrInsufficientStock
	}

	product, err := s.products.FindByID(ctx, input.ProductID, input.OwnerID)
	if err != nil {
		return nil, err
	}
	if product.Stock < input.Quantity {
		return nil, domain.ErrInsufficientStock
	}

	now := time.Now().UTC()
	sale := &domain.Sale{
		OwnerID:    input.OwnerID,
		ProductID:  product.ID,
		Quantity:   input.Quantity,
		UnitPrice:  product.Price,
		Total:      product.Price * float64(input.Quantity),
		Note:       input.Note,
		OccurredAt: now,
	}

	product.Stock -= input.Quantity
	product.UpdatedAt = now
	if err := s.products.Update(ctx, product); err != nil {
		s.log.Error().Err(err).Str("product_id", product.ID).Msg("stock decrement failed")
		return nil, err
	}

	created, err := s.sales.Create(ctx, sale)
	if err != nil {
		// Stock already moved; put it back so the books stay straight.
		product.Stock += input.Quantity
		if rbErr := s.products.Update(ctx, product); rbErr != nil {
			s.log.Error().Err(rbErr).Str("product_id", product.ID).Msg("stock rollback failed")
		}
		return nil, err
	}

	s.publishChange(ctx, tableSales, domain.ChangeInsert, created.OwnerID, created)
	s.publishChange(ctx, tableProducts, domain.ChangeUpdate, product.OwnerID, product)
	s.log.Info().
		Str("sale_id", created.ID).
		Str("product_id", product.ID).
		Int("quantity", input.Quantity).
		Msg("sale recorded")
	return created, nil
}

func (s *SaleService) List(ctx context.Context, filter ports.ListSalesFilter) ([]domain.Sale, error) {
	if filter.Limit <= 0 || filter.Limit > maxSalesPageSize {
		filter.Limit = maxSalesPageSize
	}
	return s.sales.List(ctx, filter)
}

func (s *SaleService) publishChange(ctx context.Context, table string, typ domain.ChangeType, ownerID string, row any) {
	if s.publisher == nil {
		return
	}
	payload, err := json.Marshal(row)
	if err != nil {
		payload = nil
	}
	ev := domain.ChangeEvent{
		Table:      table,
		Type:       typ,
		OwnerID:    ownerID,
		Row:        payload,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.publisher.PublishChange(ctx, ev); err != nil {
		s.log.Warn().Err(err).Str("table", table).Msg("change event publish failed")
	}
}
