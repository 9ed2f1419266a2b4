package lifecycle

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Order is the purchase order aggregate tracked from draft through settlement.
// TotalAmount is in the source currency (RMB); shipping and extra costs are in
// local currency (BDT).
type Order struct {
	ID           int64     `json:"id"`
	Number       string    `json:"number"`
	SupplierID   int64     `json:"supplierId"`
	OrderDate    time.Time `json:"orderDate"`
	Status       Status    `json:"status"`
	ExchangeRate float64   `json:"exchangeRate"`
	TotalAmount  float64   `json:"totalAmount"`

	PaymentAccountID int64 `json:"paymentAccountId"`

	CourierName       string `json:"courierName"`
	TrackingNumber    string `json:"trackingNumber"`
	LotNumber         string `json:"lotNumber"`
	TransportType     string `json:"transportType"`
	BDCourierTracking string `json:"bdCourierTracking"`

	TotalWeight       float64 `json:"totalWeight"`
	ShippingCostPerKg float64 `json:"shippingCostPerKg"`
	TotalShippingCost float64 `json:"totalShippingCost"`
	ExtraCost         float64 `json:"extraCost"`
}

// OrderItem belongs to exactly one order. ReceivedQuantity and LostQuantity
// stay zero until receiving has occurred.
type OrderItem struct {
	ID               int64   `json:"id"`
	OrderID          int64   `json:"orderId"`
	ProductName      string  `json:"productName"`
	Quantity         float64 `json:"quantity"`
	UnitSourcePrice  float64 `json:"unitSourcePrice"`
	ReceivedQuantity float64 `json:"receivedQuantity"`
	LostQuantity     float64 `json:"lostQuantity"`
	ShippingCost     float64 `json:"shippingCost"`
	FinalUnitCost    float64 `json:"finalUnitCost"`
}

// HistoryPayload carries the status-specific fields captured at transition
// time. It is the mutable part of a history entry, stored as JSONB.
type HistoryPayload struct {
	ExchangeRate      float64 `json:"exchangeRate,omitempty"`
	PaymentAccountID  int64   `json:"paymentAccountId,omitempty"`
	CourierName       string  `json:"courierName,omitempty"`
	TrackingNumber    string  `json:"trackingNumber,omitempty"`
	LotNumber         string  `json:"lotNumber,omitempty"`
	TransportType     string  `json:"transportType,omitempty"`
	TotalWeight       float64 `json:"totalWeight,omitempty"`
	ShippingCostPerKg float64 `json:"shippingCostPerKg,omitempty"`
	BDCourierTracking string  `json:"bdCourierTracking,omitempty"`
	ExtraCost         float64 `json:"extraCost,omitempty"`
}

// StatusHistoryEntry records one transition. Identity fields (ID, OrderID,
// OldStatus, NewStatus, At, ActorID) are fixed at creation; Payload and
// Comments may be corrected later through EditHistoryEntry.
type StatusHistoryEntry struct {
	ID        uuid.UUID      `json:"id"`
	OrderID   int64          `json:"orderId"`
	OldStatus Status         `json:"oldStatus"`
	NewStatus Status         `json:"newStatus"`
	At        time.Time      `json:"at"`
	ActorID   int64          `json:"actorId"`
	Payload   HistoryPayload `json:"payload"`
	Comments  string         `json:"comments"`
}

// BankAccountView is the read-only projection of an external bank account.
// The engine computes a projected post-payment balance but never debits it.
type BankAccountView struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	AccountNumber  string  `json:"accountNumber"`
	CurrentBalance float64 `json:"currentBalance"`
}

var (
	// ErrNotFound indicates the order or history entry does not exist.
	ErrNotFound = errors.New("lifecycle: not found")
	// ErrConflict occurs when the stored status diverged from the expected
	// fromStatus; the caller must refetch and retry.
	ErrConflict = errors.New("lifecycle: order status changed concurrently")
	// ErrIllegalTransition occurs when the requested toStatus is not the
	// chain successor of fromStatus. Never coerced, always surfaced.
	ErrIllegalTransition = errors.New("lifecycle: illegal status transition")
	// ErrValidation indicates one or more field rules were violated.
	ErrValidation = errors.New("lifecycle: invalid input")
	// ErrInvariant indicates a receive quantity invariant was violated.
	ErrInvariant = errors.New("lifecycle: quantity invariant violated")
	// ErrReceivingRequired occurs when Advance is called on the transition
	// that must go through Receive instead.
	ErrReceivingRequired = errors.New("lifecycle: transition requires receiving")
	// ErrTerminal occurs when mutating an order that already reached a
	// terminal status.
	ErrTerminal = errors.New("lifecycle: order already settled")
)
