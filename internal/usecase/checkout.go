package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/polkiloo/bloomcart/internal/domain/model"
	"github.com/polkiloo/bloomcart/internal/domain/repository"
)

// CheckoutInput is a cart handed over for payment.
type CheckoutInput struct {
	Items              []model.LineItem
	CustomerEmail      string
	SuccessURL         string
	CancelURL          string
	PaymentMethodTypes []string
	UserID             *string
}

// CheckoutUseCase opens hosted checkout sessions and records draft orders.
type CheckoutUseCase struct {
	gateways Gateways
	orders   repository.OrderRepository
	metrics  MetricsRecorder
	settings Settings
	logger   *slog.Logger
	now      func() time.Time
}

// NewCheckoutUseCase constructs CheckoutUseCase.
func NewCheckoutUseCase(gateways Gateways, orders repository.OrderRepository, metrics MetricsRecorder, settings Settings, logger *slog.Logger) *CheckoutUseCase {
	return &CheckoutUseCase{
		gateways: gateways,
		orders:   orders,
		metrics:  metrics,
		settings: settings,
		logger:   logger,
		now:      time.Now,
	}
}

// Start creates a provider session for the cart. The draft order write that
// follows is best effort and never fails the checkout.
func (u *CheckoutUseCase) Start(ctx context.Context, provider model.Provider, in CheckoutInput) (*model.CheckoutSession, error) {
	gateway, err := u.gateways.Get(provider)
	if err != nil {
		return nil, err
	}
	if err := ValidateItems(in.Items); err != nil {
		return nil, err
	}

	session, err := gateway.CreateSession(ctx, model.CheckoutRequest{
		Items:              in.Items,
		CustomerEmail:      in.CustomerEmail,
		SuccessURL:         in.SuccessURL,
		CancelURL:          in.CancelURL,
		Reference:          newReference(u.now()),
		Currency:           u.settings.Currency,
		PaymentMethodTypes: in.PaymentMethodTypes,
	})
	if err != nil {
		u.metrics.CheckoutSession(string(provider), "error")
		u.logger.Warn("create checkout session", slog.String("provider", string(provider)), slog.Any("error", err))
		return nil, err
	}
	u.metrics.CheckoutSession(string(provider), "ok")

	u.saveDraft(ctx, provider, in, session)
	return session, nil
}

func (u *CheckoutUseCase) saveDraft(ctx context.Context, provider model.Provider, in CheckoutInput, session *model.CheckoutSession) {
	number := orderNumber(provider, session.ID, session.Reference)
	draft := &model.Order{
		Number:            number,
		Provider:          provider,
		ProviderSessionID: session.ID,
		CustomerEmail:     in.CustomerEmail,
		Total:             ComputeTotals(in.Items).Total,
		Status:            model.OrderStatusPending,
		Items:             in.Items,
		UserID:            in.UserID,
	}
	if _, err := u.orders.SaveDraft(ctx, draft); err != nil {
		u.logger.Warn("save draft order", slog.String("order", number), slog.Any("error", err))
	}
}
