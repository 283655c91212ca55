package worker

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/bloomcart/internal/domain/errors"
	"github.com/polkiloo/bloomcart/internal/domain/model"
)

// defaultMaxAge outlives the longest checkout session either provider allows.
const defaultMaxAge = 48 * time.Hour

// ReconcileFacade exposes the subset of application functionality required by the worker.
type ReconcileFacade interface {
	PendingOrders(ctx context.Context, updatedBefore, createdAfter time.Time, limit int) ([]model.Order, error)
	ReconcilePending(ctx context.Context, order model.Order) (model.PaymentStatus, error)
}

// PendingOrderReconciler re-checks pending provider orders so customers who
// never return to the success page still get their order confirmed. Orders
// older than maxAge are no longer polled.
type PendingOrderReconciler struct {
	facade       ReconcileFacade
	pollInterval time.Duration
	maxAge       time.Duration
	batchSize    int
	workers      int
	logger       *slog.Logger
	now          func() time.Time

	jobs   chan model.Order
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewPendingOrderReconciler constructs the worker pool.
func NewPendingOrderReconciler(facade ReconcileFacade, pollInterval, maxAge time.Duration, batchSize, workers int, logger *slog.Logger) *PendingOrderReconciler {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	if pollInterval <= 0 {
		pollInterval = time.Minute
	}
	if maxAge <= pollInterval {
		maxAge = defaultMaxAge
	}
	return &PendingOrderReconciler{
		facade:       facade,
		pollInterval: pollInterval,
		maxAge:       maxAge,
		batchSize:    batchSize,
		workers:      workers,
		logger:       logger,
		now:          time.Now,
		jobs:         make(chan model.Order, batchSize*workers),
	}
}

// Start launches background processing.
func (p *PendingOrderReconciler) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(runCtx)
	}

	p.wg.Add(1)
	go p.dispatch(runCtx)
}

// Stop waits for all workers to finish.
func (p *PendingOrderReconciler) Stop() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *PendingOrderReconciler) dispatch(ctx context.Context) {
	defer p.wg.Done()
	defer close(p.jobs)
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.fetchAndDispatch(ctx)
		}
	}
}

// fetchAndDispatch claims orders untouched for a full interval; the claim
// refreshes updated_at so the next tick skips them.
func (p *PendingOrderReconciler) fetchAndDispatch(ctx context.Context) {
	now := p.now()
	orders, err := p.facade.PendingOrders(ctx, now.Add(-p.pollInterval), now.Add(-p.maxAge), p.batchSize)
	if err != nil {
		p.logger.Error("fetch pending orders failed", slog.String("error", err.Error()))
		return
	}
	for _, order := range orders {
		select {
		case <-ctx.Done():
			return
		case p.jobs <- order:
		}
	}
}

func (p *PendingOrderReconciler) worker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case order, ok := <-p.jobs:
			if !ok {
				return
			}
			p.handleOrder(ctx, order)
		}
	}
}

func (p *PendingOrderReconciler) handleOrder(ctx context.Context, order model.Order) {
	logger := p.logger.With(slog.String("order", order.Number), slog.String("provider", string(order.Provider)))

	status, err := p.facade.ReconcilePending(ctx, order)
	if err == nil {
		logger.Debug("pending order reconciled", slog.String("payment_status", string(status)))
		return
	}

	var (
		providerErr domainErrors.ProviderError
		configErr   domainErrors.ConfigurationError
	)
	switch {
	case errors.As(err, &providerErr) && providerErr.StatusCode == http.StatusTooManyRequests:
		logger.Warn("provider rate limited", slog.Duration("backoff", p.pollInterval))
		select {
		case <-ctx.Done():
		case <-time.After(p.pollInterval):
		}
	case errors.As(err, &configErr):
		logger.Warn("provider not configured, order left pending", slog.String("setting", configErr.Setting))
	default:
		logger.Error("reconcile pending order failed", slog.String("error", err.Error()))
	}
}
