package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/analytics"
	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/core/domain"
	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/core/ports"
)

const insightFunction = "generate-insight"

// InsightService builds a business snapshot and asks the remote AI function
// for an insight. Remote failures are logged and reported as "no insight";
// they never reach the UI as errors.
type InsightService struct {
	products ports.ProductRepository
	sales    ports.SaleRepository
	invoker  ports.FunctionInvoker
	log      zerolog.Logger
}

func NewInsightService(products ports.ProductRepository, sales ports.SaleRepository, invoker ports.FunctionInvoker, log zerolog.Logger) *InsightService {
	return &InsightService{products: products, sales: sales, invoker: invoker, log: log}
}

type insightPayload struct {
	Omzet        float64 `json:"omzet"`
	Laba         float64 `json:"laba"`
	ProductCount int     `json:"product_count"`
	SalesCount   int64   `json:"sales_count"`
}

type insightResult struct {
	Insight string `json:"insight"`
}

func (s *InsightService) Generate(ctx context.Context, ownerID string) (*domain.Insight, error) {
	products, err := s.products.List(ctx, ports.ListProductsFilter{OwnerID: ownerID})
	if err != nil {
		return nil, err
	}
	salesCount, err := s.sales.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	agg := analytics.Compute(products)
	payload := insightPayload{
		Omzet:        agg.Omzet,
		Laba:         agg.Laba,
		ProductCount: len(products),
		SalesCount:   salesCount,
	}

	raw, err := s.invoker.Invoke(ctx, insightFunction, payload)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", ownerID).Msg("insight function failed")
		return nil, nil
	}

	var result insightResult
	if err := json.Unmarshal(raw, &result); err != nil || result.Insight == "" {
		s.log.Warn().Err(err).Str("user_id", ownerID).Msg("insight function returned unusable payload")
		return nil, nil
	}

	return &domain.Insight{
		Text: result.Insight,
		Inputs: domain.Snapshot{
			Omzet:        agg.Omzet,
			Laba:         agg.Laba,
			ProductCount: len(products),
			SalesCount:   int(salesCount),
		},
		GeneratedAt: time.Now().UTC(),
	}, nil
}
