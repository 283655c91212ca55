package model

import "github.com/shopspring/decimal"

// LineItem is a purchased product snapshot; it does not follow later catalog edits.
type LineItem struct {
	ProductID *int64          `json:"productId,omitempty"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// Amount returns price multiplied by quantity.
func (li LineItem) Amount() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Totals is the priced breakdown of an order.
type Totals struct {
	Subtotal decimal.Decimal
	Taxes    decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

// OrderSummary is the normalized result of a provider confirmation.
type OrderSummary struct {
	Number        string
	Provider      Provider
	SessionID     string
	Status        PaymentStatus
	CustomerEmail string
	CustomerName  string
	CustomerPhone string
	UserID        *string
	Items         []LineItem
	Totals
}
