package paymongo

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/bloomcart/internal/config"
)

// Module exposes the PayMongo gateway to the fx graph.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (*Client, error) {
	return NewClient(p.Config.PayMongoAPIURL, p.Config.PayMongoSecretKey, p.Config.PaymentMethods, p.Config.ProviderTimeout, p.Logger)
}
