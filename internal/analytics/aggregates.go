// Package analytics derives financial aggregates from product collections.
package analytics

import (
	"math"
	"sync"

	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/core/domain"
)

// Aggregates holds the derived financial summary of a product collection.
// Omzet is revenue potential (Σ price×stock), Laba is margin potential
// (Σ (price−cost)×stock), both over active products only.
type Aggregates struct {
	Omzet float64 `json:"omzet"`
	Laba  float64 `json:"laba"`
}

// Compute derives aggregates in a single pass. Inactive products contribute
// nothing; non-finite price or cost is treated as 0. An empty or
// all-inactive collection yields {0, 0}.
func Compute(products []domain.Product) Aggregates {
	var agg Aggregates
	for i := range products {
		p := &products[i]
		if !p.IsActive {
			continue
		}
		price := finiteOrZero(p.Price)
		cost := finiteOrZero(p.Cost)
		stock := float64(p.Stock)
		agg.Omzet += price * stock
		agg.Laba += (price - cost) * stock
	}
	return agg
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Calculator memoizes Compute keyed on an input revision. Consumers bump the
// revision whenever the underlying collection changes; reads with an
// unchanged revision skip the O(n) pass.
type Calculator struct {
	mu      sync.Mutex
	lastRev uint64
	cached  Aggregates
	valid   bool
}

// Aggregates returns the memoized result for rev, recomputing only when rev
// differs from the last one seen.
func (c *Calculator) Aggregates(rev uint64, products []domain.Product) Aggregates {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid && c.lastRev == rev {
		return c.cached
	}
	c.cached = Compute(products)
	c.lastRev = rev
	c.valid = true
	return c.cached
}

// Invalidate forces the next read to recompute.
func (c *Calculator) Invalidate() {
	c.mu.Lock()
	c.valid = false
	c.mu.Unlock()
}
