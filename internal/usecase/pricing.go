package usecase

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/bloomcart/internal/domain/errors"
	"github.com/polkiloo/bloomcart/internal/domain/model"
)

var (
	// TaxRate applies to the whole subtotal; there are no regional rules.
	TaxRate = decimal.RequireFromString("0.12")
	// ShippingFee is charged once per non-empty order.
	ShippingFee = decimal.NewFromInt(150)
)

// ComputeTotals prices a list of line items.
func ComputeTotals(items []model.LineItem) model.Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Amount())
	}

	taxes := subtotal.Mul(TaxRate)
	shipping := decimal.Zero
	if subtotal.IsPositive() {
		shipping = ShippingFee
	}

	return model.Totals{
		Subtotal: subtotal.Round(2),
		Taxes:    taxes.Round(2),
		Shipping: shipping,
		Total:    subtotal.Add(taxes).Add(shipping).Round(2),
	}
}

// ValidateItems rejects carts the providers would refuse anyway.
func ValidateItems(items []model.LineItem) error {
	if len(items) == 0 {
		return domainErrors.ErrEmptyCart
	}
	for i, item := range items {
		switch {
		case strings.TrimSpace(item.Title) == "" && item.ProductID == nil:
			return fmt.Errorf("%w: item %d has no title", domainErrors.ErrInvalidItem, i)
		case item.Quantity <= 0:
			return fmt.Errorf("%w: item %d quantity must be positive", domainErrors.ErrInvalidItem, i)
		case item.Price.IsNegative():
			return fmt.Errorf("%w: item %d price must not be negative", domainErrors.ErrInvalidItem, i)
		}
	}
	return nil
}
