package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	domainErrors "github.com/polkiloo/bloomcart/internal/domain/errors"
	"github.com/polkiloo/bloomcart/internal/domain/model"
	"github.com/polkiloo/bloomcart/internal/domain/repository"
)

// StockOutcome is the per line item result of a reconciliation.
type StockOutcome string

const (
	StockDecremented     StockOutcome = "decremented"
	StockSkippedNotFound StockOutcome = "skipped_not_found"
	StockOutOfStock      StockOutcome = "out_of_stock"
	StockFailed          StockOutcome = "failed"
)

// StockItemResult describes what happened to one line item.
type StockItemResult struct {
	ProductID *int64
	Title     string
	Quantity  int
	Outcome   StockOutcome
	NewStock  int
	Reason    string
}

// StockReport summarises a reconciliation run. Reduced is true when at least
// one item was decremented and no resolvable item failed.
type StockReport struct {
	Items   []StockItemResult
	Reduced bool
	Err     error
}

// ErrorText returns the joined failure text or an empty string.
func (r StockReport) ErrorText() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// StockReconciler applies audited stock changes for purchased line items.
type StockReconciler struct {
	products repository.ProductRepository
	stock    repository.StockRepository
	metrics  MetricsRecorder
	logger   *slog.Logger
}

// NewStockReconciler constructs StockReconciler.
func NewStockReconciler(products repository.ProductRepository, stock repository.StockRepository, metrics MetricsRecorder, logger *slog.Logger) *StockReconciler {
	return &StockReconciler{products: products, stock: stock, metrics: metrics, logger: logger}
}

// Reconcile decrements stock for each item in order. Items are processed one
// at a time; a missing product or a failed decrement never stops the rest.
func (r *StockReconciler) Reconcile(ctx context.Context, items []model.LineItem, note, actor string) StockReport {
	var (
		report      StockReport
		errs        []error
		decremented int
	)

	for _, item := range items {
		res := StockItemResult{ProductID: item.ProductID, Title: item.Title, Quantity: item.Quantity}
		logger := r.logger.With(slog.String("title", item.Title), slog.Int("quantity", item.Quantity))

		product, err := r.resolve(ctx, item)
		if err != nil {
			if errors.Is(err, domainErrors.ErrNotFound) {
				logger.Warn("product not found, stock untouched")
				res.Outcome = StockSkippedNotFound
			} else {
				logger.Error("resolve product", slog.Any("error", err))
				res.Outcome = StockFailed
				res.Reason = err.Error()
				errs = append(errs, fmt.Errorf("%s: %w", item.Title, err))
			}
			report.Items = append(report.Items, res)
			continue
		}

		id := product.ID
		res.ProductID = &id
		result := r.adjust(ctx, model.StockAdjustment{
			ProductID: id,
			Delta:     -item.Quantity,
			Reason:    model.StockReasonSale,
			Note:      note,
			Actor:     actor,
		})

		switch result.Kind {
		case model.StockResultOK:
			res.Outcome = StockDecremented
			res.NewStock = result.NewStock
			decremented++
			logger.Info("stock decremented", slog.Int64("product_id", id), slog.Int("stock", result.NewStock))
		case model.StockResultOutOfStock:
			res.Outcome = StockOutOfStock
			res.Reason = result.Reason
			errs = append(errs, fmt.Errorf("%s: %w", item.Title, domainErrors.ErrInsufficientStock))
			logger.Warn("insufficient stock", slog.Int64("product_id", id))
		default:
			res.Outcome = StockFailed
			res.Reason = result.Reason
			errs = append(errs, fmt.Errorf("%s: %s", item.Title, result.Reason))
			logger.Error("stock decrement failed", slog.Int64("product_id", id), slog.String("reason", result.Reason))
		}
		report.Items = append(report.Items, res)
	}

	report.Err = errors.Join(errs...)
	report.Reduced = decremented > 0 && report.Err == nil
	return report
}

// Restock applies a manual stock change. Positive deltas are recorded as
// restocks, negative ones as adjustments.
func (r *StockReconciler) Restock(ctx context.Context, productID int64, delta int, note, actor string) (model.StockDecrementResult, error) {
	if delta == 0 {
		return model.StockDecrementResult{}, fmt.Errorf("%w: delta must not be zero", domainErrors.ErrInvalidProduct)
	}
	if _, err := r.products.GetByID(ctx, productID); err != nil {
		return model.StockDecrementResult{}, err
	}

	reason := model.StockReasonRestock
	if delta < 0 {
		reason = model.StockReasonAdjustment
	}
	result := r.adjust(ctx, model.StockAdjustment{ProductID: productID, Delta: delta, Reason: reason, Note: note, Actor: actor})
	if result.OK() {
		return result, nil
	}
	if result.Kind == model.StockResultOutOfStock {
		return result, domainErrors.ErrInsufficientStock
	}
	return result, errors.New(result.Reason)
}

// adjust tries the database function and falls back exactly once when it is
// unavailable.
func (r *StockReconciler) adjust(ctx context.Context, adj model.StockAdjustment) model.StockDecrementResult {
	result := r.stock.AdjustStock(ctx, adj)
	r.metrics.StockAdjustment("atomic", result.Kind.String())
	if result.Kind != model.StockResultInsufficientAtomicSupport {
		return result
	}

	r.logger.Warn("stock function unavailable, using transactional fallback", slog.String("reason", result.Reason))
	result = r.stock.AdjustStockFallback(ctx, adj)
	r.metrics.StockAdjustment("fallback", result.Kind.String())
	return result
}

// resolve prefers the explicit product id and falls back to an exact title match.
func (r *StockReconciler) resolve(ctx context.Context, item model.LineItem) (*model.Product, error) {
	if item.ProductID != nil {
		product, err := r.products.GetByID(ctx, *item.ProductID)
		if err == nil {
			return product, nil
		}
		if !errors.Is(err, domainErrors.ErrNotFound) {
			return nil, err
		}
	}

	title := strings.TrimSpace(item.Title)
	if title == "" {
		return nil, domainErrors.ErrNotFound
	}
	return r.products.GetByTitle(ctx, title)
}
