package inventory

import (
	"context"

	"github.com/montanaflynn/stats"
	"github.com/talkincode/farmstock/internal/domain"
)

// CategoryCount is one bar of the dashboard chart.
type CategoryCount struct {
	CategoryID   int64  `json:"category_id"`
	Name         string `json:"name"`
	ProductCount int64  `json:"product_count"`
}

// PriceStats summarises product prices; all zero when there are no products.
type PriceStats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
}

// Dashboard aggregates read from a single snapshot of the store.
type Dashboard struct {
	TotalProducts     int64            `json:"total_products"`
	TotalCategories   int64            `json:"total_categories"`
	TotalQuantity     int64            `json:"total_quantity"`
	LowStockThreshold int              `json:"low_stock_threshold"`
	LowStockProducts  []domain.Product `json:"low_stock_products"`
	Categories        []CategoryCount  `json:"categories"`
	Labels            []string         `json:"labels"`
	Data              []int64          `json:"data"`
	PriceStats        PriceStats       `json:"price_stats"`
}

// Dashboard computes the dashboard aggregates inside one read-only transaction.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	d := &Dashboard{LowStockThreshold: domain.LowStockThreshold}
	err := s.repo.Snapshot(ctx, func(r Repository) error {
		var err error
		if d.TotalProducts, err = r.Products().Count(ctx); err != nil {
			return err
		}
		if d.TotalCategories, err = r.Categories().Count(ctx); err != nil {
			return err
		}
		if d.TotalQuantity, err = r.Products().TotalQuantity(ctx); err != nil {
			return err
		}
		if d.LowStockProducts, err = r.Products().LowStock(ctx, domain.LowStockThreshold); err != nil {
			return err
		}
		if d.Categories, err = r.Categories().ProductCounts(ctx); err != nil {
			return err
		}
		prices, err := r.Products().Prices(ctx)
		if err != nil {
			return err
		}
		d.PriceStats = summarizePrices(prices)
		return nil
	})
	if err != nil {
		return nil, err
	}

	d.Labels = make([]string, 0, len(d.Categories))
	d.Data = make([]int64, 0, len(d.Categories))
	for _, c := range d.Categories {
		d.Labels = append(d.Labels, c.Name)
		d.Data = append(d.Data, c.ProductCount)
	}
	if d.LowStockProducts == nil {
		d.LowStockProducts = []domain.Product{}
	}
	if d.Categories == nil {
		d.Categories = []CategoryCount{}
	}
	return d, nil
}

func summarizePrices(prices []float64) PriceStats {
	if len(prices) == 0 {
		return PriceStats{}
	}
	data := stats.Float64Data(prices)
	var ps PriceStats
	ps.Min, _ = data.Min()
	ps.Max, _ = data.Max()
	if mean, err := data.Mean(); err == nil {
		ps.Mean, _ = stats.Round(mean, 2)
	}
	ps.Median, _ = data.Median()
	return ps
}
