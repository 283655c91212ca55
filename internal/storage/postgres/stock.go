package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/polkiloo/bloomcart/internal/domain/model"
)

const (
	pgUndefinedFunction = "42883"
	pgCheckViolation    = "23514"
)

type stockRepository struct {
	storage *Storage
}

func (r *stockRepository) AdjustStock(ctx context.Context, adj model.StockAdjustment) model.StockDecrementResult {
	const query = `SELECT adjust_product_stock($1, $2, $3, $4, $5)`
	var newStock *int
	err := r.storage.pool.QueryRow(ctx, query, adj.ProductID, adj.Delta, string(adj.Reason), adj.Note, adj.Actor).Scan(&newStock)
	if err != nil {
		return classifyStockError(err)
	}
	if newStock == nil {
		return model.StockOutOfStock()
	}
	return model.StockApplied(*newStock)
}

func (r *stockRepository) AdjustStockFallback(ctx context.Context, adj model.StockAdjustment) model.StockDecrementResult {
	const update = `UPDATE products
                    SET stock = stock + $2,
                        status = CASE
                            WHEN status = 'active' AND stock + $2 = 0 THEN 'out-of-stock'
                            WHEN status = 'out-of-stock' AND stock + $2 > 0 THEN 'active'
                            ELSE status
                        END,
                        updated_at = NOW()
                    WHERE id = $1 AND stock + $2 >= 0
                    RETURNING stock`
	const audit = `INSERT INTO stock_movements (product_id, delta, reason, note, actor, stock_after)
                   VALUES ($1, $2, $3, $4, $5, $6)`

	var (
		newStock int
		applied  bool
	)
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, update, adj.ProductID, adj.Delta).Scan(&newStock)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		applied = true
		_, err = tx.Exec(ctx, audit, adj.ProductID, adj.Delta, string(adj.Reason), adj.Note, adj.Actor, newStock)
		return err
	})
	if err != nil {
		return classifyStockError(err)
	}
	if !applied {
		return model.StockOutOfStock()
	}
	return model.StockApplied(newStock)
}

func classifyStockError(err error) model.StockDecrementResult {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUndefinedFunction:
			return model.StockAtomicUnsupported(pgErr.Message)
		case pgCheckViolation:
			return model.StockOutOfStock()
		}
	}
	return model.StockFailed(err.Error())
}
