package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/bloomcart/internal/config"
	"github.com/polkiloo/bloomcart/internal/worker"
)

// Module provides the storefront facade, the public HTTP server and the
// pending order reconciler, and binds them to the fx lifecycle.
var Module = fx.Options(
	fx.Provide(
		NewStorefrontFacade,
		newHTTPServer,
		newPendingReconciler,
	),
	fx.Invoke(registerLifecycle),
)

const readHeaderTimeout = 10 * time.Second

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:              p.Config.RunAddress,
		Handler:           p.Router,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

type workerParams struct {
	fx.In

	Facade *StorefrontFacade
	Config *config.Config
	Logger *slog.Logger
}

func newPendingReconciler(p workerParams) *worker.PendingOrderReconciler {
	cfg := p.Config
	return worker.NewPendingOrderReconciler(p.Facade, cfg.ReconcileInterval, cfg.ReconcileMaxAge, cfg.ReconcileBatchSize, cfg.WorkerPoolSize, p.Logger)
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Worker     *worker.PendingOrderReconciler
	Config     *config.Config
}

// storefrontRuntime groups what the lifecycle hooks start and drain.
type storefrontRuntime struct {
	lifecycleParams
}

func registerLifecycle(p lifecycleParams) {
	rt := &storefrontRuntime{lifecycleParams: p}
	p.Lifecycle.Append(fx.Hook{OnStart: rt.start, OnStop: rt.stop})
}

func (rt *storefrontRuntime) start(ctx context.Context) error {
	rt.Worker.Start(ctx)
	rt.Logger.Info("pending order reconciler running",
		slog.Duration("interval", rt.Config.ReconcileInterval),
		slog.Duration("max_age", rt.Config.ReconcileMaxAge),
	)
	go rt.serve()
	return nil
}

// serve blocks until the listener closes; any failure other than a
// graceful close asks fx to stop the whole application.
func (rt *storefrontRuntime) serve() {
	rt.Logger.Info("storefront api listening", slog.String("addr", rt.Server.Addr))
	err := rt.Server.ListenAndServe()
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		return
	}
	rt.Logger.Error("storefront api listener failed", slog.String("addr", rt.Server.Addr), slog.String("error", err.Error()))
	if shutdownErr := rt.Shutdowner.Shutdown(); shutdownErr != nil {
		rt.Logger.Error("requesting shutdown failed", slog.String("error", shutdownErr.Error()))
	}
}

func (rt *storefrontRuntime) stop(ctx context.Context) error {
	rt.Worker.Stop()

	drainCtx, cancel := rt.drainContext(ctx)
	defer cancel()

	if err := rt.Server.Shutdown(drainCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		rt.Logger.Error("storefront api drain incomplete", slog.String("error", err.Error()))
		return err
	}
	rt.Logger.Info("storefront api drained")
	return nil
}

// drainContext bounds the HTTP drain by the configured shutdown timeout
// unless fx already supplied a deadline.
func (rt *storefrontRuntime) drainContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, rt.Config.ShutdownTimeout)
}
