package stripe

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/bloomcart/internal/config"
)

// Module exposes the Stripe gateway to the fx graph.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (*Client, error) {
	return NewClient(p.Config.StripeAPIURL, p.Config.StripeSecretKey, p.Config.ProviderTimeout, p.Logger)
}
