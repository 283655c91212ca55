package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/polkiloo/bloomcart/internal/domain/errors"
	"github.com/polkiloo/bloomcart/internal/domain/model"
	testhelpers "github.com/polkiloo/bloomcart/internal/test"
)

func TestPlaceManualOrder(t *testing.T) {
	f := newFixture(rose())
	clientTotal := decimal.NewFromInt(1000)

	res, err := f.ordersUseCase().PlaceManual(context.Background(), ManualOrderInput{
		Email:   " ana@example.com ",
		Name:    "Ana Cruz",
		Address: model.Address{"city": "Makati"},
		Items:   roseItems(),
		Total:   &clientTotal,
	})
	require.NoError(t, err)

	assert.True(t, res.StockReduced)
	assert.Empty(t, res.StockError)
	assert.Equal(t, "https://shop.example/orders/"+res.Order.Number, res.PreviewURL)
	assert.Equal(t, "1270.00", res.Order.Total.StringFixed(2), "server total wins")
	assert.Equal(t, model.ProviderManual, res.Order.Provider)
	assert.Equal(t, 3, f.products.Stock(1))

	stored, err := f.orders.GetByNumber(context.Background(), res.Order.Number)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", stored.CustomerEmail)
	assert.Equal(t, model.OrderStatusPending, stored.Status)

	events := f.notifier.Events()
	require.Len(t, events, 1)
	assert.Equal(t, model.OrderEventPlaced, events[0].Type)
	assert.Equal(t, res.Order.ID, events[0].OrderID)
}

func TestPlaceManualOrderReportsStockShortfall(t *testing.T) {
	f := newFixture(tulips())
	f.settings.PublicBaseURL = ""
	items := []model.LineItem{{Title: "Tulip Basket", Price: decimal.NewFromInt(800), Quantity: 2}}

	res, err := f.ordersUseCase().PlaceManual(context.Background(), ManualOrderInput{Email: "bo@example.com", Items: items})
	require.NoError(t, err)

	assert.False(t, res.StockReduced)
	assert.Contains(t, res.StockError, "insufficient stock")
	assert.Empty(t, res.PreviewURL)
	assert.Equal(t, 1, f.products.Stock(2))
}

func TestPlaceManualOrderValidation(t *testing.T) {
	f := newFixture()
	uc := f.ordersUseCase()

	_, err := uc.PlaceManual(context.Background(), ManualOrderInput{Items: roseItems()})
	assert.ErrorIs(t, err, domainErrors.ErrMissingEmail)

	_, err = uc.PlaceManual(context.Background(), ManualOrderInput{Email: "a@example.com"})
	assert.ErrorIs(t, err, domainErrors.ErrEmptyCart)

	f.orders.Err = errors.New("insert failed")
	_, err = uc.PlaceManual(context.Background(), ManualOrderInput{Email: "a@example.com", Items: roseItems()})
	assert.EqualError(t, err, "insert failed")
}

func TestOrderGetAndList(t *testing.T) {
	f := newFixture()
	f.orders = testhelpers.NewOrderRepositoryStub(
		model.Order{ID: 1, Number: "A", Status: model.OrderStatusPaid},
		model.Order{ID: 2, Number: "B", Status: model.OrderStatusPending},
		model.Order{ID: 3, Number: "C", Status: model.OrderStatusPaid},
	)
	uc := f.ordersUseCase()
	ctx := context.Background()

	order, err := uc.Get(ctx, " B ")
	require.NoError(t, err)
	assert.Equal(t, int64(2), order.ID)

	_, err = uc.Get(ctx, "")
	assert.ErrorIs(t, err, domainErrors.ErrNotFound)

	paid, err := uc.List(ctx, "PAID", 0)
	require.NoError(t, err)
	require.Len(t, paid, 2)
	assert.Equal(t, "C", paid[0].Number)

	all, err := uc.List(ctx, "", 1)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = uc.List(ctx, "refunded", 10)
	assert.ErrorIs(t, err, domainErrors.ErrInvalidStatus)
}

func TestOrderUpdateStatus(t *testing.T) {
	f := newFixture()
	f.orders = testhelpers.NewOrderRepositoryStub(
		model.Order{ID: 1, Number: "A", Status: model.OrderStatusPaid},
		model.Order{ID: 2, Number: "B", Status: model.OrderStatusDelivered},
	)
	uc := f.ordersUseCase()
	ctx := context.Background()

	updated, err := uc.UpdateStatus(ctx, "A", "processing", nil)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusProcessing, updated.Status)

	tracking := " https://track.example/123 "
	updated, err = uc.UpdateStatus(ctx, "A", "shipped", &tracking)
	require.NoError(t, err)
	require.NotNil(t, updated.TrackingURL)
	assert.Equal(t, "https://track.example/123", *updated.TrackingURL)

	blank := "  "
	updated, err = uc.UpdateStatus(ctx, "A", "delivered", &blank)
	require.NoError(t, err)
	assert.Equal(t, "https://track.example/123", *updated.TrackingURL, "blank tracking url keeps the stored one")

	_, err = uc.UpdateStatus(ctx, "B", "cancelled", nil)
	assert.ErrorIs(t, err, domainErrors.ErrInvalidTransition)
	assert.Contains(t, err.Error(), "order B is already delivered")

	_, err = uc.UpdateStatus(ctx, "A", "lost", nil)
	assert.ErrorIs(t, err, domainErrors.ErrInvalidStatus)

	_, err = uc.UpdateStatus(ctx, "Z", "paid", nil)
	assert.ErrorIs(t, err, domainErrors.ErrNotFound)
}

func TestValidateStock(t *testing.T) {
	inactive := model.Product{ID: 3, Title: "Lily Vase", Status: model.ProductStatusInactive, Stock: 9}
	f := newFixture(rose(), tulips(), inactive)
	uc := f.ordersUseCase()
	ctx := context.Background()

	ok, err := uc.ValidateStock(ctx, roseItems())
	require.NoError(t, err)
	assert.True(t, ok.Valid)
	assert.Equal(t, "all items available", ok.Message)
	assert.Equal(t, 5, ok.Results[0].Available)

	id := int64(2)
	res, err := uc.ValidateStock(ctx, []model.LineItem{
		{Title: "Rose Bouquet", Quantity: 1},
		{ProductID: &id, Quantity: 4},
		{Title: "Lily Vase", Quantity: 1},
		{Title: "Sunflower Crate", Quantity: 1},
	})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, "Tulip Basket: only 1 left", res.Message)
	require.Len(t, res.Results, 4)
	assert.True(t, res.Results[0].OK)
	assert.Equal(t, "product unavailable", res.Results[2].Reason)
	assert.Equal(t, "product not found", res.Results[3].Reason)
	assert.Equal(t, 5, f.products.Stock(1), "validation never mutates stock")

	_, err = uc.ValidateStock(ctx, nil)
	assert.ErrorIs(t, err, domainErrors.ErrEmptyCart)

	f.products.Err = errors.New("db down")
	_, err = uc.ValidateStock(ctx, roseItems())
	assert.EqualError(t, err, "db down")
}

func TestPendingForReconciliation(t *testing.T) {
	f := newFixture()
	recent := fixedNow.Add(-time.Hour)
	f.orders = testhelpers.NewOrderRepositoryStub(
		model.Order{ID: 1, Number: "cs_1", Status: model.OrderStatusPending, ProviderSessionID: "cs_1", CreatedAt: recent},
		model.Order{ID: 2, Number: "BC-2", Status: model.OrderStatusPending, CreatedAt: recent},
		model.Order{ID: 3, Number: "cs_3", Status: model.OrderStatusPaid, ProviderSessionID: "cs_3", CreatedAt: recent},
		model.Order{ID: 4, Number: "cs_4", Status: model.OrderStatusPending, ProviderSessionID: "cs_4", CreatedAt: fixedNow.Add(-72 * time.Hour)},
	)

	orders, err := f.ordersUseCase().PendingForReconciliation(context.Background(), fixedNow, fixedNow.Add(-48*time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "cs_1", orders[0].Number)
}
