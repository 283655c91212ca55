package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/bloomcart/internal/domain/model"
	"github.com/polkiloo/bloomcart/internal/usecase"
)

// ManualOrderRequest is an email-only order.
type ManualOrderRequest struct {
	Email   string           `json:"email"`
	Name    string           `json:"name"`
	Phone   string           `json:"phone"`
	Address model.Address    `json:"address"`
	Items   []LineItem       `json:"items"`
	Total   *decimal.Decimal `json:"total"`
	UserID  *string          `json:"user_id,omitempty"`
}

// ManualOrderResponse reports the stored order and stock outcome.
type ManualOrderResponse struct {
	OK           bool    `json:"ok"`
	OrderNumber  string  `json:"orderNumber"`
	PreviewURL   string  `json:"previewUrl"`
	StockReduced bool    `json:"stockReduced"`
	StockError   *string `json:"stockError"`
}

// NewManualOrderResponse maps a manual order result.
func NewManualOrderResponse(res *usecase.ManualOrderResult) ManualOrderResponse {
	resp := ManualOrderResponse{OK: true, PreviewURL: res.PreviewURL, StockReduced: res.StockReduced}
	if res.Order != nil {
		resp.OrderNumber = res.Order.Number
	}
	if res.StockError != "" {
		msg := res.StockError
		resp.StockError = &msg
	}
	return resp
}

// StockValidateRequest asks whether a cart can be fulfilled.
type StockValidateRequest struct {
	Items []LineItem `json:"items"`
}

// StockCheck is the availability of one requested line.
type StockCheck struct {
	ProductID *int64 `json:"productId,omitempty"`
	Title     string `json:"title"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
	OK        bool   `json:"ok"`
	Reason    string `json:"reason,omitempty"`
}

// StockValidateResponse is the read-only availability answer.
type StockValidateResponse struct {
	Valid   bool         `json:"valid"`
	Results []StockCheck `json:"results"`
	Message string       `json:"message"`
}

// NewStockValidateResponse maps a stock validation.
func NewStockValidateResponse(v *usecase.StockValidation) StockValidateResponse {
	resp := StockValidateResponse{Valid: v.Valid, Message: v.Message, Results: make([]StockCheck, 0, len(v.Results))}
	for _, r := range v.Results {
		resp.Results = append(resp.Results, StockCheck{
			ProductID: r.ProductID,
			Title:     r.Title,
			Requested: r.Requested,
			Available: r.Available,
			OK:        r.OK,
			Reason:    r.Reason,
		})
	}
	return resp
}

// OrderResponse is a stored order.
type OrderResponse struct {
	Number          string          `json:"orderNumber"`
	Provider        string          `json:"provider"`
	Status          string          `json:"status"`
	CustomerEmail   string          `json:"customerEmail"`
	CustomerName    string          `json:"customerName,omitempty"`
	CustomerPhone   string          `json:"customerPhone,omitempty"`
	ShippingAddress model.Address   `json:"shippingAddress,omitempty"`
	Items           []LineItem      `json:"items"`
	Total           decimal.Decimal `json:"total"`
	TrackingURL     *string         `json:"trackingUrl,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// NewOrderResponse maps a stored order.
func NewOrderResponse(o model.Order) OrderResponse {
	return OrderResponse{
		Number:          o.Number,
		Provider:        string(o.Provider),
		Status:          string(o.Status),
		CustomerEmail:   o.CustomerEmail,
		CustomerName:    o.CustomerName,
		CustomerPhone:   o.CustomerPhone,
		ShippingAddress: o.ShippingAddress,
		Items:           FromLineItems(o.Items),
		Total:           o.Total,
		TrackingURL:     o.TrackingURL,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

// UpdateStatusRequest moves an order through its lifecycle.
type UpdateStatusRequest struct {
	Status      string  `json:"status"`
	TrackingURL *string `json:"trackingUrl"`
}
