package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/bloomcart/internal/domain/errors"
	"github.com/polkiloo/bloomcart/internal/domain/model"
	"github.com/polkiloo/bloomcart/internal/domain/repository"
)

const (
	defaultOrderListLimit = 50
	maxOrderListLimit     = 200
)

// ManualOrderInput is an order placed without a payment provider.
type ManualOrderInput struct {
	Email   string
	Name    string
	Phone   string
	Address model.Address
	Items   []model.LineItem
	// Total is what the client displayed; the server recomputes it.
	Total  *decimal.Decimal
	UserID *string
}

// ManualOrderResult reports the stored order and how stock reacted.
type ManualOrderResult struct {
	Order        *model.Order
	PreviewURL   string
	StockReduced bool
	StockError   string
}

// StockCheck is the availability of one requested line item.
type StockCheck struct {
	ProductID *int64
	Title     string
	Requested int
	Available int
	OK        bool
	Reason    string
}

// StockValidation is the read-only answer to a pre-checkout availability check.
type StockValidation struct {
	Valid   bool
	Results []StockCheck
	Message string
}

// OrderUseCase encapsulates order lifecycle logic outside provider confirmation.
type OrderUseCase struct {
	orders   repository.OrderRepository
	stock    *StockReconciler
	notifier Notifier
	settings Settings
	logger   *slog.Logger
	now      func() time.Time
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(orders repository.OrderRepository, stock *StockReconciler, notifier Notifier, settings Settings, logger *slog.Logger) *OrderUseCase {
	return &OrderUseCase{
		orders:   orders,
		stock:    stock,
		notifier: notifier,
		settings: settings,
		logger:   logger,
		now:      time.Now,
	}
}

// PlaceManual stores a pending order, reduces stock and announces the order.
func (u *OrderUseCase) PlaceManual(ctx context.Context, in ManualOrderInput) (*ManualOrderResult, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return nil, domainErrors.ErrMissingEmail
	}
	if err := ValidateItems(in.Items); err != nil {
		return nil, err
	}

	now := u.now()
	number := newReference(now)
	logger := u.logger.With(slog.String("order", number))

	totals := ComputeTotals(in.Items)
	if in.Total != nil && !in.Total.Round(2).Equal(totals.Total) {
		logger.Warn("client total differs from computed total",
			slog.String("client_total", in.Total.StringFixed(2)),
			slog.String("computed_total", totals.Total.StringFixed(2)),
		)
	}

	order := &model.Order{
		Number:          number,
		Provider:        model.ProviderManual,
		CustomerEmail:   email,
		CustomerName:    strings.TrimSpace(in.Name),
		CustomerPhone:   strings.TrimSpace(in.Phone),
		ShippingAddress: in.Address,
		Total:           totals.Total,
		Status:          model.OrderStatusPending,
		Items:           in.Items,
		UserID:          in.UserID,
	}
	id, err := u.orders.SaveDraft(ctx, order)
	if err != nil {
		return nil, err
	}
	order.ID = id

	report := u.stock.Reconcile(ctx, in.Items, "order "+number, email)
	if report.Err != nil {
		logger.Warn("stock reconciliation incomplete", slog.String("stock_error", report.ErrorText()))
	}
	publish(ctx, u.notifier, u.logger, model.OrderEventPlaced, order, now)

	return &ManualOrderResult{
		Order:        order,
		PreviewURL:   u.previewURL(number),
		StockReduced: report.Reduced,
		StockError:   report.ErrorText(),
	}, nil
}

func (u *OrderUseCase) previewURL(number string) string {
	base := strings.TrimRight(u.settings.PublicBaseURL, "/")
	if base == "" {
		return ""
	}
	return base + "/orders/" + number
}

// Get fetches an order by its number.
func (u *OrderUseCase) Get(ctx context.Context, number string) (*model.Order, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, domainErrors.ErrNotFound
	}
	return u.orders.GetByNumber(ctx, number)
}

// List returns the newest orders, optionally filtered by status.
func (u *OrderUseCase) List(ctx context.Context, rawStatus string, limit int) ([]model.Order, error) {
	var status model.OrderStatus
	if strings.TrimSpace(rawStatus) != "" {
		parsed, err := model.ParseOrderStatus(rawStatus)
		if err != nil {
			return nil, err
		}
		status = parsed
	}
	if limit <= 0 {
		limit = defaultOrderListLimit
	}
	if limit > maxOrderListLimit {
		limit = maxOrderListLimit
	}
	return u.orders.List(ctx, status, limit)
}

// UpdateStatus moves an order along the fulfilment state machine. The stored
// status is re-checked by the update itself so a concurrent change wins.
func (u *OrderUseCase) UpdateStatus(ctx context.Context, number, rawStatus string, trackingURL *string) (*model.Order, error) {
	next, err := model.ParseOrderStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	current, err := u.Get(ctx, number)
	if err != nil {
		return nil, err
	}
	if current.Status.Terminal() {
		return nil, fmt.Errorf("%w: order %s is already %s", domainErrors.ErrInvalidTransition, current.Number, current.Status)
	}
	if !current.Status.CanTransitionTo(next) {
		return nil, domainErrors.ErrInvalidTransition
	}

	if trackingURL != nil {
		trimmed := strings.TrimSpace(*trackingURL)
		if trimmed == "" {
			trackingURL = nil
		} else {
			trackingURL = &trimmed
		}
	}

	updated, err := u.orders.UpdateStatus(ctx, current.Number, current.Status, next, trackingURL)
	if err != nil {
		return nil, err
	}
	u.logger.Info("order status changed",
		slog.String("order", updated.Number),
		slog.String("from", string(current.Status)),
		slog.String("to", string(next)),
	)
	return updated, nil
}

// ValidateStock checks availability without mutating anything.
func (u *OrderUseCase) ValidateStock(ctx context.Context, items []model.LineItem) (*StockValidation, error) {
	if len(items) == 0 {
		return nil, domainErrors.ErrEmptyCart
	}

	out := &StockValidation{Valid: true}
	for _, item := range items {
		check := StockCheck{ProductID: item.ProductID, Title: item.Title, Requested: item.Quantity}

		product, err := u.stock.resolve(ctx, item)
		switch {
		case errors.Is(err, domainErrors.ErrNotFound):
			check.Reason = "product not found"
		case err != nil:
			return nil, err
		default:
			id := product.ID
			check.ProductID = &id
			check.Title = product.Title
			check.Available = product.Stock
			switch {
			case item.Quantity <= 0:
				check.Reason = "quantity must be positive"
			case product.Status == model.ProductStatusInactive:
				check.Reason = "product unavailable"
			case product.Stock < item.Quantity:
				check.Reason = insufficientReason(product.Stock)
			default:
				check.OK = true
			}
		}

		if !check.OK && out.Valid {
			out.Valid = false
			out.Message = check.Title + ": " + check.Reason
		}
		out.Results = append(out.Results, check)
	}

	if out.Valid {
		out.Message = "all items available"
	}
	return out, nil
}

func insufficientReason(available int) string {
	if available <= 0 {
		return "out of stock"
	}
	return "only " + strconv.Itoa(available) + " left"
}

// PendingForReconciliation claims pending provider orders created after
// createdAfter and untouched since updatedBefore.
func (u *OrderUseCase) PendingForReconciliation(ctx context.Context, updatedBefore, createdAfter time.Time, limit int) ([]model.Order, error) {
	return u.orders.SelectPendingForReconciliation(ctx, updatedBefore, createdAfter, limit)
}
