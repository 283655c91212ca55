package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderEventType is the routing key of a published order event.
type OrderEventType string

const (
	OrderEventPlaced OrderEventType = "order.placed"
	OrderEventPaid   OrderEventType = "order.paid"
)

// OrderEvent notifies downstream consumers such as the confirmation mailer.
type OrderEvent struct {
	Type          OrderEventType  `json:"type"`
	OrderID       int64           `json:"orderId"`
	OrderNumber   string          `json:"orderNumber"`
	Status        OrderStatus     `json:"status"`
	CustomerEmail string          `json:"customerEmail"`
	CustomerName  string          `json:"customerName,omitempty"`
	Total         decimal.Decimal `json:"total"`
	Items         []LineItem      `json:"items"`
	OccurredAt    time.Time       `json:"occurredAt"`
}
