package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductStatus describes catalog visibility.
type ProductStatus string

const (
	ProductStatusActive     ProductStatus = "active"
	ProductStatusInactive   ProductStatus = "inactive"
	ProductStatusOutOfStock ProductStatus = "out-of-stock"
)

// Valid reports whether the status is known.
func (s ProductStatus) Valid() bool {
	switch s {
	case ProductStatusActive, ProductStatusInactive, ProductStatusOutOfStock:
		return true
	}
	return false
}

// Product is a catalog entry.
type Product struct {
	ID          int64
	Title       string
	Description string
	Price       decimal.Decimal
	Category    string
	Status      ProductStatus
	Stock       int
	Images      []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProductFilter narrows catalog listings.
type ProductFilter struct {
	Query    string
	Category string
	Status   ProductStatus
	Limit    int
	Offset   int
}
