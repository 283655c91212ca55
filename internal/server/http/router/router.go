package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/bloomcart/internal/domain/model"
	"github.com/polkiloo/bloomcart/internal/metrics"
	"github.com/polkiloo/bloomcart/internal/server/http/handlers"
	"github.com/polkiloo/bloomcart/internal/server/http/middleware"
)

const maxRequestBody = 1 << 20

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.StorefrontFacade, m *metrics.Metrics, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.Metrics(m))
	engine.Use(middleware.DecompressRequest(maxRequestBody))
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	checkoutHandler := handlers.NewCheckoutHandler(facade)
	orderHandler := handlers.NewOrderHandler(facade)
	catalogHandler := handlers.NewCatalogHandler(facade)
	adminHandler := handlers.NewAdminHandler(facade)

	engine.GET("/metrics", gin.WrapH(m.Handler()))

	api := engine.Group("/api")

	payments := api.Group("/payments")
	for _, provider := range []model.Provider{model.ProviderStripe, model.ProviderPayMongo} {
		group := payments.Group("/" + string(provider))
		group.POST("/checkout", checkoutHandler.Start(provider))
		group.POST("/confirm", checkoutHandler.Confirm(provider))
	}

	api.POST("/order", orderHandler.Place)
	api.POST("/stock/validate", orderHandler.ValidateStock)
	api.GET("/orders/:number", orderHandler.Get)
	api.GET("/products", catalogHandler.List)
	api.GET("/products/:id", catalogHandler.Get)

	admin := api.Group("/admin")
	admin.POST("/login", adminHandler.Login)

	adminAuth := admin.Group("")
	adminAuth.Use(middleware.AuthRequired(facade))
	adminAuth.GET("/orders", adminHandler.Orders)
	adminAuth.PATCH("/orders/:number/status", adminHandler.UpdateStatus)
	adminAuth.POST("/products", adminHandler.CreateProduct)
	adminAuth.PUT("/products/:id", adminHandler.UpdateProduct)
	adminAuth.DELETE("/products/:id", adminHandler.DeleteProduct)
	adminAuth.POST("/products/:id/stock", adminHandler.AdjustStock)
	adminAuth.GET("/health", adminHandler.Health)

	return engine
}
