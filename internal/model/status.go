package model

import "fmt"

// PaymentMethod is how an order will be paid. Payment is recorded, not processed.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "Cash"
	PaymentQRIS     PaymentMethod = "QRIS"
	PaymentTransfer PaymentMethod = "Transfer"
)

// PaymentMethods lists the accepted methods in display order.
var PaymentMethods = []PaymentMethod{PaymentQRIS, PaymentCash, PaymentTransfer}

// Valid reports whether m is an accepted method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentQRIS, PaymentTransfer:
		return true
	}
	return false
}

// ParsePaymentMethod accepts the stored spelling.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(s)
	if !m.Valid() {
		return "", fmt.Errorf("unknown payment method %q: must be one of %v", s, PaymentMethods)
	}
	return m, nil
}

// PaymentStatus tracks payment independently of fulfilment.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "Pending"
	PaymentPaid      PaymentStatus = "Paid"
	PaymentCancelled PaymentStatus = "Cancelled"
)

// CanTransition reports whether s may move to next.
// Pending is the only non-terminal payment status.
func (s PaymentStatus) CanTransition(next PaymentStatus) bool {
	return s == PaymentPending && (next == PaymentPaid || next == PaymentCancelled)
}

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusCompleted OrderStatus = "Completed"
	StatusCancelled OrderStatus = "Cancelled"
)

// CanTransition reports whether s may move to next.
// Completed and Cancelled are terminal.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	return s == StatusPending && (next == StatusCompleted || next == StatusCancelled)
}
