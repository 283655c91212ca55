package test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/polkiloo/bloomcart/internal/domain/model"
)

// WorkerFacadeStub mimics the worker's view of the application.
type WorkerFacadeStub struct {
	Orders      [][]model.Order
	OrdersFn    func(context.Context, time.Time, time.Time, int) ([]model.Order, error)
	ReconcileFn func(context.Context, model.Order) (model.PaymentStatus, error)

	mu              sync.Mutex
	reconciled      []model.Order
	lastCutoff      time.Time
	lastOldest      time.Time
	ordersCallCount int32
}

// PendingOrders returns batches from the configured queue.
func (s *WorkerFacadeStub) PendingOrders(ctx context.Context, updatedBefore, createdAfter time.Time, limit int) ([]model.Order, error) {
	s.mu.Lock()
	s.lastCutoff = updatedBefore
	s.lastOldest = createdAfter
	s.mu.Unlock()
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, updatedBefore, createdAfter, limit)
	}
	call := atomic.AddInt32(&s.ordersCallCount, 1)
	if int(call) <= len(s.Orders) {
		return s.Orders[call-1], nil
	}
	return nil, nil
}

// ReconcilePending records the order and reports it paid unless overridden.
func (s *WorkerFacadeStub) ReconcilePending(ctx context.Context, order model.Order) (model.PaymentStatus, error) {
	if s.ReconcileFn != nil {
		return s.ReconcileFn(ctx, order)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reconciled = append(s.reconciled, order)
	return model.PaymentStatusPaid, nil
}

// ReconciledOrders returns a snapshot of processed orders.
func (s *WorkerFacadeStub) ReconciledOrders() []model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Order(nil), s.reconciled...)
}

// LastCutoff returns the most recent updatedBefore argument.
func (s *WorkerFacadeStub) LastCutoff() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastCutoff
}

// LastOldest returns the most recent createdAfter argument.
func (s *WorkerFacadeStub) LastOldest() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastOldest
}
