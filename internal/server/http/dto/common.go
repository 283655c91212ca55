package dto

import (
	"github.com/shopspring/decimal"

	"github.com/polkiloo/bloomcart/internal/domain/model"
)

// LineItem is a cart line as sent by the storefront.
type LineItem struct {
	ProductID *int64          `json:"productId,omitempty"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// ErrorResponse is the body of every non-2xx JSON answer.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ToLineItems converts request lines into domain line items.
func ToLineItems(items []LineItem) []model.LineItem {
	out := make([]model.LineItem, 0, len(items))
	for _, it := range items {
		out = append(out, model.LineItem{ProductID: it.ProductID, Title: it.Title, Price: it.Price, Quantity: it.Quantity})
	}
	return out
}

// FromLineItems converts domain line items into response lines.
func FromLineItems(items []model.LineItem) []LineItem {
	out := make([]LineItem, 0, len(items))
	for _, it := range items {
		out = append(out, LineItem{ProductID: it.ProductID, Title: it.Title, Price: it.Price, Quantity: it.Quantity})
	}
	return out
}
