package model

import "fmt"

// StockReason is recorded in the stock audit trail.
type StockReason string

const (
	StockReasonSale       StockReason = "sale"
	StockReasonRestock    StockReason = "restock"
	StockReasonAdjustment StockReason = "adjustment"
)

// StockAdjustment is a signed change to a product's stock.
type StockAdjustment struct {
	ProductID int64
	Delta     int
	Reason    StockReason
	Note      string
	Actor     string
}

// StockResultKind enumerates StockDecrementResult variants.
type StockResultKind int

const (
	StockResultOK StockResultKind = iota
	StockResultOutOfStock
	StockResultInsufficientAtomicSupport
	StockResultFailed
)

func (k StockResultKind) String() string {
	switch k {
	case StockResultOK:
		return "ok"
	case StockResultOutOfStock:
		return "out_of_stock"
	case StockResultInsufficientAtomicSupport:
		return "atomic_unsupported"
	case StockResultFailed:
		return "failed"
	}
	return fmt.Sprintf("StockResultKind(%d)", int(k))
}

// StockDecrementResult is the outcome of one stock adjustment attempt.
type StockDecrementResult struct {
	Kind     StockResultKind
	NewStock int
	Reason   string
}

// StockApplied builds an OK result.
func StockApplied(newStock int) StockDecrementResult {
	return StockDecrementResult{Kind: StockResultOK, NewStock: newStock}
}

// StockOutOfStock builds an OutOfStock result.
func StockOutOfStock() StockDecrementResult {
	return StockDecrementResult{Kind: StockResultOutOfStock, Reason: "insufficient stock"}
}

// StockAtomicUnsupported signals that the database function is unavailable.
func StockAtomicUnsupported(reason string) StockDecrementResult {
	return StockDecrementResult{Kind: StockResultInsufficientAtomicSupport, Reason: reason}
}

// StockFailed builds a Failed result carrying reason.
func StockFailed(reason string) StockDecrementResult {
	return StockDecrementResult{Kind: StockResultFailed, Reason: reason}
}

// OK reports whether the adjustment was applied.
func (r StockDecrementResult) OK() bool {
	return r.Kind == StockResultOK
}
