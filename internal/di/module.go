package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/bloomcart/internal/adapter/notify"
	"github.com/polkiloo/bloomcart/internal/adapter/paymongo"
	"github.com/polkiloo/bloomcart/internal/adapter/stripe"
	"github.com/polkiloo/bloomcart/internal/app"
	"github.com/polkiloo/bloomcart/internal/config"
	"github.com/polkiloo/bloomcart/internal/logger"
	"github.com/polkiloo/bloomcart/internal/metrics"
	"github.com/polkiloo/bloomcart/internal/pkg/auth"
	"github.com/polkiloo/bloomcart/internal/server/http/handlers"
	"github.com/polkiloo/bloomcart/internal/server/http/router"
	"github.com/polkiloo/bloomcart/internal/storage/postgres"
	"github.com/polkiloo/bloomcart/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		postgres.Module,
		stripe.Module,
		paymongo.Module,
		notify.Module,
		metrics.Module,
		usecase.Module,
		fx.Provide(
			func(s *stripe.Client, p *paymongo.Client) usecase.Gateways { return usecase.NewGateways(s, p) },
			func(p *notify.Publisher) usecase.Notifier { return p },
			func(m *metrics.Metrics) usecase.MetricsRecorder { return m },
			func(s *postgres.Storage) app.HealthChecker { return s },
			func(f *app.StorefrontFacade) handlers.StorefrontFacade { return f },
			settings,
		),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}

func settings(cfg *config.Config) usecase.Settings {
	return usecase.Settings{
		Currency:          cfg.Currency,
		PublicBaseURL:     cfg.PublicBaseURL,
		AdminEmail:        cfg.AdminEmail,
		AdminPasswordHash: cfg.AdminPasswordHash,
	}
}
