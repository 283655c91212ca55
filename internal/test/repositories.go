package test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/bloomcart/internal/domain/errors"
	"github.com/polkiloo/bloomcart/internal/domain/model"
)

// OrderRepositoryStub keeps orders in memory and mirrors the compare-and-set
// semantics of the SQL repository.
type OrderRepositoryStub struct {
	mu        sync.Mutex
	orders    map[string]*model.Order
	next      int64
	Err       error
	PendingFn func(context.Context, time.Time, time.Time, int) ([]model.Order, error)
}

// NewOrderRepositoryStub seeds the stub with orders.
func NewOrderRepositoryStub(orders ...model.Order) *OrderRepositoryStub {
	s := &OrderRepositoryStub{orders: make(map[string]*model.Order)}
	for i := range orders {
		o := orders[i]
		if o.ID == 0 {
			s.next++
			o.ID = s.next
		} else if o.ID > s.next {
			s.next = o.ID
		}
		s.orders[o.Number] = &o
	}
	return s
}

// Count returns the number of stored orders.
func (s *OrderRepositoryStub) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (s *OrderRepositoryStub) insert(order *model.Order, status model.OrderStatus) int64 {
	s.next++
	stored := *order
	stored.ID = s.next
	stored.Status = status
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	s.orders[stored.Number] = &stored
	return stored.ID
}

// SaveDraft inserts a pending order unless the number is taken.
func (s *OrderRepositoryStub) SaveDraft(ctx context.Context, order *model.Order) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	if existing, ok := s.orders[order.Number]; ok {
		return existing.ID, nil
	}
	return s.insert(order, model.OrderStatusPending), nil
}

func (s *OrderRepositoryStub) upsert(order *model.Order, status model.OrderStatus) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, false, s.Err
	}
	existing, ok := s.orders[order.Number]
	if !ok {
		return s.insert(order, status), true, nil
	}
	if existing.Status != model.OrderStatusPending {
		return existing.ID, false, nil
	}
	existing.Status = status
	existing.Provider = order.Provider
	existing.ProviderSessionID = order.ProviderSessionID
	if order.CustomerEmail != "" {
		existing.CustomerEmail = order.CustomerEmail
	}
	if order.CustomerName != "" {
		existing.CustomerName = order.CustomerName
	}
	existing.Total = order.Total
	existing.Items = order.Items
	if order.UserID != nil {
		existing.UserID = order.UserID
	}
	existing.UpdatedAt = time.Now()
	return existing.ID, true, nil
}

// MarkPaid transitions a pending order or inserts a paid one.
func (s *OrderRepositoryStub) MarkPaid(ctx context.Context, order *model.Order) (int64, bool, error) {
	return s.upsert(order, model.OrderStatusPaid)
}

// SavePending refreshes a pending order or inserts one.
func (s *OrderRepositoryStub) SavePending(ctx context.Context, order *model.Order) (int64, error) {
	id, _, err := s.upsert(order, model.OrderStatusPending)
	return id, err
}

// GetByNumber returns a copy of the stored order.
func (s *OrderRepositoryStub) GetByNumber(ctx context.Context, number string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	o, ok := s.orders[number]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	clone := *o
	return &clone, nil
}

// List returns orders newest first.
func (s *OrderRepositoryStub) List(ctx context.Context, status model.OrderStatus, limit int) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var out []model.Order
	for _, o := range s.orders {
		if status == "" || o.Status == status {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// SelectPendingForReconciliation returns pending provider orders inside the window.
func (s *OrderRepositoryStub) SelectPendingForReconciliation(ctx context.Context, updatedBefore, createdAfter time.Time, limit int) ([]model.Order, error) {
	if s.PendingFn != nil {
		return s.PendingFn(ctx, updatedBefore, createdAfter, limit)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Order
	for _, o := range s.orders {
		if o.Status == model.OrderStatusPending && o.ProviderSessionID != "" &&
			o.UpdatedAt.Before(updatedBefore) && o.CreatedAt.After(createdAfter) {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// UpdateStatus applies the transition when the stored status still equals from.
func (s *OrderRepositoryStub) UpdateStatus(ctx context.Context, number string, from, to model.OrderStatus, trackingURL *string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	o, ok := s.orders[number]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	if o.Status != from {
		return nil, domainErrors.ErrInvalidTransition
	}
	o.Status = to
	if trackingURL != nil {
		o.TrackingURL = trackingURL
	}
	clone := *o
	return &clone, nil
}

// ProductRepositoryStub keeps products in memory.
type ProductRepositoryStub struct {
	mu       sync.Mutex
	products map[int64]*model.Product
	next     int64
	Err      error
}

// NewProductRepositoryStub seeds the stub with products.
func NewProductRepositoryStub(products ...model.Product) *ProductRepositoryStub {
	s := &ProductRepositoryStub{products: make(map[int64]*model.Product)}
	for i := range products {
		p := products[i]
		if p.ID == 0 {
			s.next++
			p.ID = s.next
		} else if p.ID > s.next {
			s.next = p.ID
		}
		s.products[p.ID] = &p
	}
	return s
}

// Stock returns the stored stock of a product, or -1 when it does not exist.
func (s *ProductRepositoryStub) Stock(id int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.products[id]; ok {
		return p.Stock
	}
	return -1
}

func (s *ProductRepositoryStub) Create(ctx context.Context, product *model.Product) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	s.next++
	stored := *product
	stored.ID = s.next
	s.products[stored.ID] = &stored
	clone := stored
	return &clone, nil
}

func (s *ProductRepositoryStub) Update(ctx context.Context, product *model.Product) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	existing, ok := s.products[product.ID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	stock := existing.Stock
	*existing = *product
	existing.Stock = stock
	clone := *existing
	return &clone, nil
}

func (s *ProductRepositoryStub) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.products[id]; !ok {
		return domainErrors.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *ProductRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	p, ok := s.products[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (s *ProductRepositoryStub) GetByTitle(ctx context.Context, title string) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var found *model.Product
	for _, p := range s.products {
		if p.Title == title && (found == nil || p.ID < found.ID) {
			found = p
		}
	}
	if found == nil {
		return nil, domainErrors.ErrNotFound
	}
	clone := *found
	return &clone, nil
}

func (s *ProductRepositoryStub) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	query := strings.ToLower(filter.Query)
	var out []model.Product
	for _, p := range s.products {
		if query != "" && !strings.Contains(strings.ToLower(p.Title+" "+p.Description), query) {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if filter.Offset >= len(out) {
		return nil, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// StockRepositoryStub adjusts stock held by a ProductRepositoryStub with the
// same floor and status rules as the database.
type StockRepositoryStub struct {
	mu                sync.Mutex
	Products          *ProductRepositoryStub
	AtomicUnsupported bool
	FailReason        string
	AtomicCalls       int
	FallbackCalls     int
	Movements         []model.StockAdjustment
}

func (s *StockRepositoryStub) AdjustStock(ctx context.Context, adj model.StockAdjustment) model.StockDecrementResult {
	s.mu.Lock()
	s.AtomicCalls++
	unsupported := s.AtomicUnsupported
	s.mu.Unlock()
	if unsupported {
		return model.StockAtomicUnsupported("function adjust_product_stock does not exist")
	}
	return s.apply(adj)
}

func (s *StockRepositoryStub) AdjustStockFallback(ctx context.Context, adj model.StockAdjustment) model.StockDecrementResult {
	s.mu.Lock()
	s.FallbackCalls++
	s.mu.Unlock()
	return s.apply(adj)
}

// Calls returns the atomic and fallback call counts.
func (s *StockRepositoryStub) Calls() (atomic, fallback int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.AtomicCalls, s.FallbackCalls
}

func (s *StockRepositoryStub) apply(adj model.StockAdjustment) model.StockDecrementResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailReason != "" {
		return model.StockFailed(s.FailReason)
	}

	s.Products.mu.Lock()
	defer s.Products.mu.Unlock()
	p, ok := s.Products.products[adj.ProductID]
	if !ok || p.Stock+adj.Delta < 0 {
		return model.StockOutOfStock()
	}
	p.Stock += adj.Delta
	switch {
	case p.Status == model.ProductStatusActive && p.Stock == 0:
		p.Status = model.ProductStatusOutOfStock
	case p.Status == model.ProductStatusOutOfStock && p.Stock > 0:
		p.Status = model.ProductStatusActive
	}
	s.Movements = append(s.Movements, adj)
	return model.StockApplied(p.Stock)
}
