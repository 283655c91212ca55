package dto

import (
	"github.com/shopspring/decimal"

	"github.com/polkiloo/bloomcart/internal/usecase"
)

// CheckoutRequest opens a hosted checkout session.
type CheckoutRequest struct {
	Items              []LineItem `json:"items"`
	CustomerEmail      string     `json:"customerEmail"`
	SuccessURL         string     `json:"successUrl"`
	CancelURL          string     `json:"cancelUrl"`
	PaymentMethodTypes []string   `json:"paymentMethodTypes,omitempty"`
	UserID             *string    `json:"user_id,omitempty"`
}

// CheckoutResponse points the browser at the provider.
type CheckoutResponse struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	Reference string `json:"reference,omitempty"`
}

// ConfirmRequest identifies the session returned to the success page.
type ConfirmRequest struct {
	SessionID string  `json:"session_id"`
	Reference string  `json:"reference"`
	UserID    *string `json:"user_id,omitempty"`
}

// OrderSummary is the confirmed order shown to the customer.
type OrderSummary struct {
	Number        string          `json:"orderNumber"`
	Provider      string          `json:"provider"`
	SessionID     string          `json:"sessionId"`
	Status        string          `json:"status"`
	CustomerEmail string          `json:"customerEmail"`
	CustomerName  string          `json:"customerName,omitempty"`
	CustomerPhone string          `json:"customerPhone,omitempty"`
	Items         []LineItem      `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Taxes         decimal.Decimal `json:"taxes"`
	Shipping      decimal.Decimal `json:"shipping"`
	Total         decimal.Decimal `json:"total"`
}

// StockLine is one line of a stock reconciliation report.
type StockLine struct {
	ProductID *int64 `json:"productId,omitempty"`
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	Outcome   string `json:"outcome"`
	NewStock  *int   `json:"newStock,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// ConfirmResponse reports provider truth plus secondary persistence diagnostics.
type ConfirmResponse struct {
	Order        OrderSummary `json:"order"`
	SavedID      *int64       `json:"savedId"`
	DBError      *string      `json:"dbError"`
	StockReduced bool         `json:"stockReduced"`
	StockError   *string      `json:"stockError,omitempty"`
	Stock        []StockLine  `json:"stock,omitempty"`
}

// NewConfirmResponse maps a confirmation result.
func NewConfirmResponse(res *usecase.ConfirmResult) ConfirmResponse {
	o := res.Order
	resp := ConfirmResponse{
		Order: OrderSummary{
			Number:        o.Number,
			Provider:      string(o.Provider),
			SessionID:     o.SessionID,
			Status:        string(o.Status),
			CustomerEmail: o.CustomerEmail,
			CustomerName:  o.CustomerName,
			CustomerPhone: o.CustomerPhone,
			Items:         FromLineItems(o.Items),
			Subtotal:      o.Subtotal,
			Taxes:         o.Taxes,
			Shipping:      o.Shipping,
			Total:         o.Total,
		},
		SavedID: res.SavedID,
	}
	if res.DBError != "" {
		msg := res.DBError
		resp.DBError = &msg
	}
	if res.Stock != nil {
		resp.StockReduced = res.Stock.Reduced
		if text := res.Stock.ErrorText(); text != "" {
			resp.StockError = &text
		}
		for _, item := range res.Stock.Items {
			line := StockLine{ProductID: item.ProductID, Title: item.Title, Quantity: item.Quantity, Outcome: string(item.Outcome), Reason: item.Reason}
			if item.Outcome == usecase.StockDecremented {
				stock := item.NewStock
				line.NewStock = &stock
			}
			resp.Stock = append(resp.Stock, line)
		}
	}
	return resp
}
