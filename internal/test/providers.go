package test

import (
	"context"
	"fmt"
	"sync"

	"github.com/polkiloo/bloomcart/internal/domain/model"
)

// GatewayStub fakes a hosted checkout provider.
type GatewayStub struct {
	ProviderVal model.Provider
	CreateFn    func(context.Context, model.CheckoutRequest) (*model.CheckoutSession, error)
	Sessions    map[string]*model.ProviderSession
	RetrieveErr error

	mu        sync.Mutex
	Created   []model.CheckoutRequest
	Retrieved []string
}

func (g *GatewayStub) Provider() model.Provider {
	return g.ProviderVal
}

// CreateSession records the request and returns a deterministic session.
func (g *GatewayStub) CreateSession(ctx context.Context, req model.CheckoutRequest) (*model.CheckoutSession, error) {
	g.mu.Lock()
	g.Created = append(g.Created, req)
	n := len(g.Created)
	g.mu.Unlock()
	if g.CreateFn != nil {
		return g.CreateFn(ctx, req)
	}
	id := fmt.Sprintf("cs_%s_%d", g.ProviderVal, n)
	return &model.CheckoutSession{ID: id, URL: "https://pay.example/" + id, Reference: req.Reference}, nil
}

// RetrieveSession returns a copy of the configured session.
func (g *GatewayStub) RetrieveSession(ctx context.Context, id string) (*model.ProviderSession, error) {
	g.mu.Lock()
	g.Retrieved = append(g.Retrieved, id)
	g.mu.Unlock()
	if g.RetrieveErr != nil {
		return nil, g.RetrieveErr
	}
	session, ok := g.Sessions[id]
	if !ok {
		return nil, fmt.Errorf("no such session %s", id)
	}
	clone := *session
	return &clone, nil
}

// NotifierStub records published events.
type NotifierStub struct {
	mu     sync.Mutex
	Err    error
	events []model.OrderEvent
}

func (n *NotifierStub) Publish(ctx context.Context, event model.OrderEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return n.Err
}

// Events returns a snapshot of published events.
func (n *NotifierStub) Events() []model.OrderEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]model.OrderEvent(nil), n.events...)
}

// MetricsStub counts recorded business metrics by "kind:label:label".
type MetricsStub struct {
	mu     sync.Mutex
	counts map[string]int
}

func (m *MetricsStub) inc(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counts == nil {
		m.counts = make(map[string]int)
	}
	m.counts[key]++
}

func (m *MetricsStub) CheckoutSession(provider, result string) {
	m.inc("checkout:" + provider + ":" + result)
}

func (m *MetricsStub) PaymentConfirmation(provider, status string) {
	m.inc("confirmation:" + provider + ":" + status)
}

func (m *MetricsStub) StockAdjustment(path, result string) {
	m.inc("stock:" + path + ":" + result)
}

// Count returns how often key was recorded.
func (m *MetricsStub) Count(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[key]
}
