package repository

import (
	"context"

	"github.com/polkiloo/bloomcart/internal/domain/model"
)

// StockRepository applies audited stock adjustments.
type StockRepository interface {
	// AdjustStock runs the database-side atomic function.
	AdjustStock(ctx context.Context, adj model.StockAdjustment) model.StockDecrementResult
	// AdjustStockFallback applies the same change in an application-managed transaction.
	AdjustStockFallback(ctx context.Context, adj model.StockAdjustment) model.StockDecrementResult
}
