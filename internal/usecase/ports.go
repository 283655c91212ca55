package usecase

import (
	"context"

	domainErrors "github.com/polkiloo/bloomcart/internal/domain/errors"
	"github.com/polkiloo/bloomcart/internal/domain/model"
)

// PaymentGateway is a hosted checkout provider.
type PaymentGateway interface {
	Provider() model.Provider
	CreateSession(ctx context.Context, req model.CheckoutRequest) (*model.CheckoutSession, error)
	RetrieveSession(ctx context.Context, id string) (*model.ProviderSession, error)
}

// Gateways indexes payment gateways by provider.
type Gateways map[model.Provider]PaymentGateway

// NewGateways builds the provider index.
func NewGateways(gateways ...PaymentGateway) Gateways {
	out := make(Gateways, len(gateways))
	for _, gw := range gateways {
		out[gw.Provider()] = gw
	}
	return out
}

// Get returns the gateway for provider or ErrUnsupportedProvider.
func (g Gateways) Get(provider model.Provider) (PaymentGateway, error) {
	gw, ok := g[provider]
	if !ok {
		return nil, domainErrors.ErrUnsupportedProvider
	}
	return gw, nil
}

// Notifier publishes order events to downstream consumers.
type Notifier interface {
	Publish(ctx context.Context, event model.OrderEvent) error
}

// MetricsRecorder receives business counters.
type MetricsRecorder interface {
	CheckoutSession(provider, result string)
	PaymentConfirmation(provider, status string)
	StockAdjustment(path, result string)
}

// Settings carries the store-wide values use cases need from configuration.
type Settings struct {
	Currency          string
	PublicBaseURL     string
	AdminEmail        string
	AdminPasswordHash string
}
