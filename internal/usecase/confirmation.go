package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/bloomcart/internal/domain/errors"
	"github.com/polkiloo/bloomcart/internal/domain/model"
	"github.com/polkiloo/bloomcart/internal/domain/repository"
)

// ConfirmInput identifies the provider session to confirm.
type ConfirmInput struct {
	SessionID string
	Reference string
	UserID    *string
}

// ConfirmResult carries the normalized summary even when persistence failed.
// DBError is set instead of SavedID in that case.
type ConfirmResult struct {
	Order   model.OrderSummary
	SavedID *int64
	DBError string
	Stock   *StockReport
}

// ConfirmationUseCase turns provider session state into persisted orders.
type ConfirmationUseCase struct {
	gateways Gateways
	orders   repository.OrderRepository
	stock    *StockReconciler
	notifier Notifier
	metrics  MetricsRecorder
	logger   *slog.Logger
	now      func() time.Time
}

// NewConfirmationUseCase constructs ConfirmationUseCase.
func NewConfirmationUseCase(gateways Gateways, orders repository.OrderRepository, stock *StockReconciler, notifier Notifier, metrics MetricsRecorder, logger *slog.Logger) *ConfirmationUseCase {
	return &ConfirmationUseCase{
		gateways: gateways,
		orders:   orders,
		stock:    stock,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// Confirm retrieves the session from the provider and reconciles it. Provider
// failures are returned as errors and leave every row untouched.
func (u *ConfirmationUseCase) Confirm(ctx context.Context, provider model.Provider, in ConfirmInput) (*ConfirmResult, error) {
	gateway, err := u.gateways.Get(provider)
	if err != nil {
		return nil, err
	}

	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		if sessionID, err = u.sessionForReference(ctx, in.Reference); err != nil {
			return nil, err
		}
	}

	session, err := gateway.RetrieveSession(ctx, sessionID)
	if err != nil {
		u.metrics.PaymentConfirmation(string(provider), "error")
		return nil, err
	}

	number := orderNumber(provider, session.ID, session.Reference)
	return u.apply(ctx, provider, number, session, in.UserID), nil
}

// ConfirmPending re-checks a stored pending order against its provider.
func (u *ConfirmationUseCase) ConfirmPending(ctx context.Context, order model.Order) (*ConfirmResult, error) {
	if order.ProviderSessionID == "" {
		return nil, domainErrors.ErrMissingReference
	}
	gateway, err := u.gateways.Get(order.Provider)
	if err != nil {
		return nil, err
	}

	session, err := gateway.RetrieveSession(ctx, order.ProviderSessionID)
	if err != nil {
		u.metrics.PaymentConfirmation(string(order.Provider), "error")
		return nil, err
	}
	if session.CustomerEmail == "" {
		session.CustomerEmail = order.CustomerEmail
	}
	return u.apply(ctx, order.Provider, order.Number, session, order.UserID), nil
}

func (u *ConfirmationUseCase) sessionForReference(ctx context.Context, reference string) (string, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return "", domainErrors.ErrMissingReference
	}
	draft, err := u.orders.GetByNumber(ctx, reference)
	if err != nil {
		return "", err
	}
	if draft.ProviderSessionID == "" {
		return "", domainErrors.ErrMissingReference
	}
	return draft.ProviderSessionID, nil
}

func (u *ConfirmationUseCase) apply(ctx context.Context, provider model.Provider, number string, session *model.ProviderSession, userID *string) *ConfirmResult {
	summary := model.OrderSummary{
		Number:        number,
		Provider:      provider,
		SessionID:     session.ID,
		Status:        session.PaymentStatus,
		CustomerEmail: session.CustomerEmail,
		CustomerName:  session.CustomerName,
		CustomerPhone: session.CustomerPhone,
		UserID:        userID,
		Items:         session.Items,
		Totals:        ComputeTotals(session.Items),
	}
	u.metrics.PaymentConfirmation(string(provider), string(session.PaymentStatus))

	logger := u.logger.With(
		slog.String("order", number),
		slog.String("provider", string(provider)),
		slog.String("payment_status", string(session.PaymentStatus)),
		slog.String("raw_status", session.RawStatus),
	)
	result := &ConfirmResult{Order: summary}

	u.checkDraftTotal(ctx, logger, number, summary.Total)

	order := &model.Order{
		Number:            number,
		Provider:          provider,
		ProviderSessionID: session.ID,
		CustomerEmail:     summary.CustomerEmail,
		CustomerName:      summary.CustomerName,
		CustomerPhone:     summary.CustomerPhone,
		Total:             summary.Total,
		Items:             summary.Items,
		UserID:            userID,
	}

	var (
		id           int64
		transitioned bool
		err          error
		target       = session.OrderStatus()
	)
	if target == model.OrderStatusPaid {
		id, transitioned, err = u.orders.MarkPaid(ctx, order)
	} else {
		id, err = u.orders.SavePending(ctx, order)
	}
	if err != nil {
		logger.Error("persist order", slog.Any("error", err))
		result.DBError = err.Error()
		return result
	}
	result.SavedID = &id

	if target == model.OrderStatusCancelled {
		u.cancelExpired(ctx, logger, number)
		return result
	}
	if !transitioned {
		logger.Debug("order not transitioned to paid, stock untouched", slog.Int64("order_id", id))
		return result
	}

	report := u.stock.Reconcile(ctx, session.Items, "order "+number, summary.CustomerEmail)
	result.Stock = &report
	if report.Err != nil {
		logger.Warn("stock reconciliation incomplete", slog.String("stock_error", report.ErrorText()))
	}

	order.ID = id
	order.Status = model.OrderStatusPaid
	publish(ctx, u.notifier, u.logger, model.OrderEventPaid, order, u.now())
	logger.Info("order paid", slog.Int64("order_id", id), slog.String("total", summary.Total.StringFixed(2)))
	return result
}

// cancelExpired moves a pending order whose provider session expired unpaid
// to cancelled. Orders that already left pending are left alone.
func (u *ConfirmationUseCase) cancelExpired(ctx context.Context, logger *slog.Logger, number string) {
	_, err := u.orders.UpdateStatus(ctx, number, model.OrderStatusPending, model.OrderStatusCancelled, nil)
	switch {
	case err == nil:
		logger.Info("order cancelled, provider session expired")
	case errors.Is(err, domainErrors.ErrInvalidTransition):
		logger.Debug("expired session for order no longer pending")
	default:
		logger.Error("cancel expired order", slog.Any("error", err))
	}
}

// checkDraftTotal logs when the stored draft disagrees with the confirmed
// total. The confirmed total is what gets persisted.
func (u *ConfirmationUseCase) checkDraftTotal(ctx context.Context, logger *slog.Logger, number string, total decimal.Decimal) {
	draft, err := u.orders.GetByNumber(ctx, number)
	if err != nil {
		if !errors.Is(err, domainErrors.ErrNotFound) {
			logger.Debug("load draft order", slog.Any("error", err))
		}
		return
	}
	if draft.Status != model.OrderStatusPending {
		return
	}
	if !draft.Total.Round(2).Equal(total) {
		logger.Warn("draft total differs from confirmed total",
			slog.String("draft_total", draft.Total.StringFixed(2)),
			slog.String("confirmed_total", total.StringFixed(2)),
		)
	}
}

func publish(ctx context.Context, notifier Notifier, logger *slog.Logger, eventType model.OrderEventType, order *model.Order, at time.Time) {
	event := model.OrderEvent{
		Type:          eventType,
		OrderID:       order.ID,
		OrderNumber:   order.Number,
		Status:        order.Status,
		CustomerEmail: order.CustomerEmail,
		CustomerName:  order.CustomerName,
		Total:         order.Total,
		Items:         order.Items,
		OccurredAt:    at.UTC(),
	}
	if err := notifier.Publish(ctx, event); err != nil {
		logger.Warn("publish order event", slog.String("order", order.Number), slog.Any("error", err))
	}
}
