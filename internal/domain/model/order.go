package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/bloomcart/internal/domain/errors"
)

// OrderStatus describes order lifecycle.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusPaid       OrderStatus = "paid"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:       {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
	OrderStatusDelivered:  nil,
	OrderStatusCancelled:  nil,
}

// ParseOrderStatus converts user input into a known status.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	status := OrderStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !status.Valid() {
		return "", domainErrors.ErrInvalidStatus
	}
	return status, nil
}

// Valid reports whether status belongs to the closed status set.
func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, candidate := range orderTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are allowed.
func (s OrderStatus) Terminal() bool {
	return s.Valid() && len(orderTransitions[s]) == 0
}

// Order is a single checkout attempt or purchase.
type Order struct {
	ID                int64
	Number            string
	Provider          Provider
	ProviderSessionID string
	CustomerEmail     string
	CustomerName      string
	CustomerPhone     string
	ShippingAddress   Address
	Total             decimal.Decimal
	Status            OrderStatus
	Items             []LineItem
	TrackingURL       *string
	UserID            *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Address is a free-form shipping address as entered by the customer.
type Address map[string]any
