package model

import "strings"

// Provider identifies a payment provider.
type Provider string

const (
	ProviderStripe   Provider = "stripe"
	ProviderPayMongo Provider = "paymongo"
	ProviderManual   Provider = "manual"
)

// PaymentStatus is the normalized payment state shared by all providers.
type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "Paid"
	PaymentStatusPending PaymentStatus = "Pending"
)

var paidProviderStatuses = map[string]struct{}{
	"paid":      {},
	"succeeded": {},
	"paid_out":  {},
}

// NormalizePaymentStatus maps provider statuses to Paid when any of them is a
// recognised paid state. Everything else is Pending.
func NormalizePaymentStatus(raw ...string) PaymentStatus {
	for _, status := range raw {
		if _, ok := paidProviderStatuses[strings.ToLower(strings.TrimSpace(status))]; ok {
			return PaymentStatusPaid
		}
	}
	return PaymentStatusPending
}

// OrderStatus returns the order status persisted for the payment state.
func (s PaymentStatus) OrderStatus() OrderStatus {
	if s == PaymentStatusPaid {
		return OrderStatusPaid
	}
	return OrderStatusPending
}

// ValidSessionID reports whether id looks like a provider session id. Only
// letters, digits, underscores and dashes are accepted since the id becomes a
// path segment of the provider API.
func ValidSessionID(id string) bool {
	if id == "" || len(id) > 255 {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}

// CheckoutRequest describes a hosted checkout session to create.
type CheckoutRequest struct {
	Items              []LineItem
	CustomerEmail      string
	SuccessURL         string
	CancelURL          string
	Reference          string
	Currency           string
	PaymentMethodTypes []string
}

// CheckoutSession is the provider's answer to a CheckoutRequest.
type CheckoutSession struct {
	ID        string
	URL       string
	Reference string
}

// ProviderSession is the authoritative session state fetched from a provider.
type ProviderSession struct {
	ID            string
	Reference     string
	RawStatus     string
	PaymentStatus PaymentStatus
	// Expired is set when the provider closed the session without payment.
	Expired       bool
	CustomerEmail string
	CustomerName  string
	CustomerPhone string
	Items         []LineItem
}

// OrderStatus is the status the order should end up in. An unpaid session the
// provider has expired cancels a pending order.
func (s *ProviderSession) OrderStatus() OrderStatus {
	status := s.PaymentStatus.OrderStatus()
	if s.Expired && status == OrderStatusPending {
		return OrderStatusCancelled
	}
	return status
}
