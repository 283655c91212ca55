package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/bloomcart/internal/domain/errors"
	"github.com/polkiloo/bloomcart/internal/domain/model"
)

type orderRepository struct {
	storage *Storage
}

const orderColumns = `id, order_number, provider, provider_session_id, customer_email, customer_name,
        customer_phone, shipping_address, total, status, items, tracking_url, user_id, created_at, updated_at`

const insertOrderQuery = `INSERT INTO orders (order_number, status, provider, provider_session_id, customer_email,
        customer_name, customer_phone, shipping_address, total, items, user_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        ON CONFLICT (order_number) DO NOTHING
        RETURNING id`

// updatePendingOrderQuery only touches rows still pending so a confirmed order
// is never rewritten or downgraded.
const updatePendingOrderQuery = `UPDATE orders SET status=$2, provider=$3, provider_session_id=$4,
        customer_email=COALESCE(NULLIF($5, ''), customer_email),
        customer_name=COALESCE(NULLIF($6, ''), customer_name),
        customer_phone=COALESCE(NULLIF($7, ''), customer_phone),
        shipping_address=COALESCE($8, shipping_address),
        total=$9, items=$10, user_id=COALESCE($11, user_id), updated_at=NOW()
        WHERE order_number=$1 AND status='pending'
        RETURNING id`

const selectOrderIDQuery = `SELECT id FROM orders WHERE order_number=$1`

func orderArgs(order *model.Order, status model.OrderStatus) ([]any, error) {
	items := order.Items
	if items == nil {
		items = []model.LineItem{}
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode items: %w", err)
	}

	var addressJSON []byte
	if len(order.ShippingAddress) > 0 {
		if addressJSON, err = json.Marshal(order.ShippingAddress); err != nil {
			return nil, fmt.Errorf("encode shipping address: %w", err)
		}
	}

	return []any{
		order.Number,
		string(status),
		string(order.Provider),
		order.ProviderSessionID,
		order.CustomerEmail,
		order.CustomerName,
		order.CustomerPhone,
		addressJSON,
		order.Total.Round(2).InexactFloat64(),
		itemsJSON,
		order.UserID,
	}, nil
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		order    model.Order
		provider string
		status   string
		address  []byte
		items    []byte
		total    float64
	)
	err := row.Scan(&order.ID, &order.Number, &provider, &order.ProviderSessionID, &order.CustomerEmail,
		&order.CustomerName, &order.CustomerPhone, &address, &total, &status, &items,
		&order.TrackingURL, &order.UserID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, err
	}

	order.Provider = model.Provider(provider)
	order.Status = model.OrderStatus(status)
	order.Total = decimal.NewFromFloat(total).Round(2)

	if len(items) > 0 {
		if err := json.Unmarshal(items, &order.Items); err != nil {
			return nil, fmt.Errorf("decode items of order %s: %w", order.Number, err)
		}
	}
	if len(address) > 0 {
		if err := json.Unmarshal(address, &order.ShippingAddress); err != nil {
			return nil, fmt.Errorf("decode shipping address of order %s: %w", order.Number, err)
		}
	}
	return &order, nil
}

func (r *orderRepository) SaveDraft(ctx context.Context, order *model.Order) (int64, error) {
	args, err := orderArgs(order, model.OrderStatusPending)
	if err != nil {
		return 0, err
	}

	var id int64
	err = r.storage.pool.QueryRow(ctx, insertOrderQuery, args...).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}

	if err := r.storage.pool.QueryRow(ctx, selectOrderIDQuery, order.Number).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *orderRepository) MarkPaid(ctx context.Context, order *model.Order) (int64, bool, error) {
	return r.upsert(ctx, order, model.OrderStatusPaid)
}

func (r *orderRepository) SavePending(ctx context.Context, order *model.Order) (int64, error) {
	id, _, err := r.upsert(ctx, order, model.OrderStatusPending)
	return id, err
}

// upsert updates the pending row for the order number, inserts it when
// missing, and otherwise reports the existing id unchanged.
func (r *orderRepository) upsert(ctx context.Context, order *model.Order, status model.OrderStatus) (id int64, changed bool, err error) {
	args, err := orderArgs(order, status)
	if err != nil {
		return 0, false, err
	}

	err = r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, updatePendingOrderQuery, args...).Scan(&id)
		if err == nil {
			changed = true
			return nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}

		err = tx.QueryRow(ctx, insertOrderQuery, args...).Scan(&id)
		if err == nil {
			changed = true
			return nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}

		return tx.QueryRow(ctx, selectOrderIDQuery, order.Number).Scan(&id)
	})
	if err != nil {
		return 0, false, err
	}
	return id, changed, nil
}

func (r *orderRepository) GetByNumber(ctx context.Context, number string) (*model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE order_number=$1`
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, number))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) List(ctx context.Context, status model.OrderStatus, limit int) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders
                   WHERE ($1 = '' OR status = $1)
                   ORDER BY created_at DESC
                   LIMIT $2`
	rows, err := r.storage.pool.Query(ctx, query, string(status), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) SelectPendingForReconciliation(ctx context.Context, updatedBefore, createdAfter time.Time, limit int) ([]model.Order, error) {
	const selectQuery = `SELECT ` + orderColumns + ` FROM orders
                         WHERE status = 'pending'
                           AND provider IN ('stripe', 'paymongo')
                           AND provider_session_id <> ''
                           AND updated_at < $1
                           AND created_at > $2
                         ORDER BY updated_at
                         LIMIT $3
                         FOR UPDATE SKIP LOCKED`

	var orders []model.Order
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, selectQuery, updatedBefore, createdAfter, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			order, err := scanOrder(rows)
			if err != nil {
				return err
			}
			orders = append(orders, *order)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		rows.Close()

		// Touching claimed rows moves them behind the rest of the backlog.
		for _, o := range orders {
			if _, err := tx.Exec(ctx, `UPDATE orders SET updated_at=NOW() WHERE id=$1`, o.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, number string, from, to model.OrderStatus, trackingURL *string) (*model.Order, error) {
	const query = `UPDATE orders SET status=$3, tracking_url=COALESCE($4, tracking_url), updated_at=NOW()
                   WHERE order_number=$1 AND status=$2
                   RETURNING ` + orderColumns
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, number, string(from), string(to), trackingURL))
	if err == nil {
		return order, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	if _, err := r.GetByNumber(ctx, number); err != nil {
		return nil, err
	}
	return nil, domainErrors.ErrInvalidTransition
}
