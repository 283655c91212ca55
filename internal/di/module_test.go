package di

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"go.uber.org/fx"

	"github.com/polkiloo/bloomcart/internal/app"
	"github.com/polkiloo/bloomcart/internal/config"
	"github.com/polkiloo/bloomcart/internal/domain/model"
	"github.com/polkiloo/bloomcart/internal/domain/repository"
	"github.com/polkiloo/bloomcart/internal/storage/postgres"
	"github.com/polkiloo/bloomcart/internal/test"
	"github.com/polkiloo/bloomcart/internal/usecase"
)

type pingStub struct{}

func (pingStub) HealthCheck(context.Context) error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		RunAddress:         ":0",
		DatabaseURI:        "postgres://stub",
		StripeAPIURL:       "https://api.stripe.com",
		PayMongoAPIURL:     "https://api.paymongo.com",
		Currency:           "PHP",
		PublicBaseURL:      "https://shop.example",
		AdminEmail:         "owner@example.com",
		AdminPasswordHash:  "hash",
		AuthSecret:         "secret",
		ReconcileInterval:  time.Millisecond,
		ReconcileMaxAge:    time.Hour,
		ReconcileBatchSize: 1,
		WorkerPoolSize:     1,
		ShutdownTimeout:    time.Millisecond,
	}
}

func TestModuleComposesGraphWithReplacements(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	orderRepo := test.NewOrderRepositoryStub()
	productRepo := test.NewProductRepositoryStub()
	stockRepo := &test.StockRepositoryStub{Products: productRepo}

	var (
		facade   *app.StorefrontFacade
		gateways usecase.Gateways
		settings usecase.Settings
	)
	fxApp := fx.New(
		fx.NopLogger,
		fx.Supply(context.Background()),
		Module(
			fx.Replace(testConfig()),
			fx.Replace(logger),
			fx.Replace(&postgres.Storage{}),
			fx.Replace(fx.Annotate(orderRepo, fx.As(new(repository.OrderRepository)))),
			fx.Replace(fx.Annotate(productRepo, fx.As(new(repository.ProductRepository)))),
			fx.Replace(fx.Annotate(stockRepo, fx.As(new(repository.StockRepository)))),
			fx.Replace(fx.Annotate(pingStub{}, fx.As(new(app.HealthChecker)))),
		),
		fx.Populate(&facade, &gateways, &settings),
	)

	if err := fxApp.Err(); err != nil {
		t.Fatalf("fx app returned error: %v", err)
	}
	t.Cleanup(func() { _ = fxApp.Stop(context.Background()) })
	if facade == nil {
		t.Fatal("expected storefront facade instance")
	}
	for _, provider := range []model.Provider{model.ProviderStripe, model.ProviderPayMongo} {
		if _, err := gateways.Get(provider); err != nil {
			t.Fatalf("expected %s gateway to be wired: %v", provider, err)
		}
	}
	if pending, err := facade.PendingOrders(context.Background(), time.Now(), time.Now().Add(-time.Hour), 5); err != nil || len(pending) != 0 {
		t.Fatalf("expected replaced order repository to be used, got %v %v", pending, err)
	}
	if settings.Currency != "PHP" || settings.AdminEmail != "owner@example.com" {
		t.Fatalf("unexpected settings %+v", settings)
	}

	health := facade.Health(context.Background())
	if !health.Healthy() || health.Providers["stripe"] || health.Providers["paymongo"] || health.NotifierBroker {
		t.Fatalf("expected unconfigured collaborators, got %+v", health)
	}
}
