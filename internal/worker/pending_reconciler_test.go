package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	domainErrors "github.com/polkiloo/bloomcart/internal/domain/errors"
	"github.com/polkiloo/bloomcart/internal/domain/model"
	testhelpers "github.com/polkiloo/bloomcart/internal/test"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestNewPendingOrderReconcilerDefaults(t *testing.T) {
	proc := NewPendingOrderReconciler(&testhelpers.WorkerFacadeStub{}, 0, 0, 0, 0, discardLogger())
	if proc.batchSize != 1 {
		t.Fatalf("expected batch size default to 1, got %d", proc.batchSize)
	}
	if proc.workers != 1 {
		t.Fatalf("expected workers default to 1, got %d", proc.workers)
	}
	if proc.pollInterval != time.Minute {
		t.Fatalf("expected poll interval default to 1m, got %s", proc.pollInterval)
	}
	if proc.maxAge != defaultMaxAge {
		t.Fatalf("expected max age default to %s, got %s", defaultMaxAge, proc.maxAge)
	}
}

func TestPendingOrderReconcilerBoundsOrderAge(t *testing.T) {
	now := time.Date(2026, 2, 14, 9, 30, 0, 0, time.UTC)
	facade := &testhelpers.WorkerFacadeStub{}
	proc := NewPendingOrderReconciler(facade, time.Minute, 6*time.Hour, 1, 1, discardLogger())
	proc.now = func() time.Time { return now }

	proc.fetchAndDispatch(context.Background())

	if got := facade.LastCutoff(); !got.Equal(now.Add(-time.Minute)) {
		t.Fatalf("unexpected cutoff %s", got)
	}
	if got := facade.LastOldest(); !got.Equal(now.Add(-6 * time.Hour)) {
		t.Fatalf("expected orders older than 6h to be skipped, got bound %s", got)
	}

	short := NewPendingOrderReconciler(facade, time.Hour, time.Minute, 1, 1, discardLogger())
	if short.maxAge != defaultMaxAge {
		t.Fatalf("max age below the poll interval must fall back to %s, got %s", defaultMaxAge, short.maxAge)
	}
}

func TestPendingOrderReconcilerProcessesOrders(t *testing.T) {
	facade := &testhelpers.WorkerFacadeStub{Orders: [][]model.Order{{
		{ID: 1, Number: "cs_1", Provider: model.ProviderStripe, ProviderSessionID: "cs_1"},
		{ID: 2, Number: "BC-2", Provider: model.ProviderPayMongo, ProviderSessionID: "cs_pm_2"},
	}}}
	proc := NewPendingOrderReconciler(facade, 10*time.Millisecond, time.Hour, 2, 2, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	proc.Start(ctx)

	deadline := time.After(time.Second)
	for {
		if len(facade.ReconciledOrders()) == 2 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timeout waiting for pending orders")
		case <-time.After(10 * time.Millisecond):
		}
	}
	proc.Stop()

	before := facade.LastCutoff()
	if before.IsZero() || !before.Before(time.Now()) {
		t.Fatalf("expected cutoff in the past, got %s", before)
	}
}

func TestPendingOrderReconcilerFetchError(t *testing.T) {
	facade := &testhelpers.WorkerFacadeStub{
		OrdersFn: func(context.Context, time.Time, time.Time, int) ([]model.Order, error) {
			return nil, errors.New("db down")
		},
	}
	proc := NewPendingOrderReconciler(facade, time.Second, time.Hour, 1, 1, discardLogger())
	proc.fetchAndDispatch(context.Background())
	if len(proc.jobs) != 0 {
		t.Fatalf("expected no jobs, got %d", len(proc.jobs))
	}
}

func TestPendingOrderReconcilerHandleErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		wait bool
	}{
		{"rate limited", domainErrors.ProviderError{Provider: "stripe", StatusCode: http.StatusTooManyRequests}, true},
		{"not configured", domainErrors.ConfigurationError{Setting: "STRIPE_SECRET_KEY"}, false},
		{"other", errors.New("timeout"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			facade := &testhelpers.WorkerFacadeStub{
				ReconcileFn: func(context.Context, model.Order) (model.PaymentStatus, error) {
					return "", tc.err
				},
			}
			proc := NewPendingOrderReconciler(facade, 30*time.Millisecond, time.Hour, 1, 1, discardLogger())

			start := time.Now()
			proc.handleOrder(context.Background(), model.Order{Number: "cs_1"})
			elapsed := time.Since(start)
			if tc.wait && elapsed < 30*time.Millisecond {
				t.Fatalf("expected backoff, returned after %s", elapsed)
			}
		})
	}
}

func TestPendingOrderReconcilerBackoffStopsOnCancel(t *testing.T) {
	facade := &testhelpers.WorkerFacadeStub{
		ReconcileFn: func(context.Context, model.Order) (model.PaymentStatus, error) {
			return "", domainErrors.ProviderError{StatusCode: http.StatusTooManyRequests}
		},
	}
	proc := NewPendingOrderReconciler(facade, time.Hour, 2*time.Hour, 1, 1, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	done := make(chan struct{})
	go func() {
		proc.handleOrder(ctx, model.Order{Number: "cs_1"})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("backoff ignored cancellation")
	}
}
