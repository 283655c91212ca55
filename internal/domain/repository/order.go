package repository

import (
	"context"
	"time"

	"github.com/polkiloo/bloomcart/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	// SaveDraft inserts a pending order unless the order number already exists.
	SaveDraft(ctx context.Context, order *model.Order) (int64, error)
	// MarkPaid moves a pending order to paid or inserts a paid one. transitioned
	// is true only when this call changed the row.
	MarkPaid(ctx context.Context, order *model.Order) (id int64, transitioned bool, err error)
	// SavePending refreshes a pending order or inserts it.
	SavePending(ctx context.Context, order *model.Order) (int64, error)
	GetByNumber(ctx context.Context, number string) (*model.Order, error)
	List(ctx context.Context, status model.OrderStatus, limit int) ([]model.Order, error)
	// SelectPendingForReconciliation claims pending provider orders created
	// after createdAfter and last touched before updatedBefore.
	SelectPendingForReconciliation(ctx context.Context, updatedBefore, createdAfter time.Time, limit int) ([]model.Order, error)
	UpdateStatus(ctx context.Context, number string, from, to model.OrderStatus, trackingURL *string) (*model.Order, error)
}
