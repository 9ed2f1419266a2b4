package lifecycle

import (
	"math"
	"strings"
)

// TransitionFields is the input bag a caller submits with a transition.
// SupplierCredit is context read from the supplier collaborator, not user
// input; it drives the paymentAccountId requirement when leaving draft.
type TransitionFields struct {
	ExchangeRate      float64
	PaymentAccountID  int64
	SupplierCredit    float64
	CourierName       string
	TrackingNumber    string
	LotNumber         string
	TransportType     string
	TotalWeight       float64
	ShippingCostPerKg float64
	BDCourierTracking string
	Comments          string
}

// ValidateTransition checks the (from, to) pair against the status chain and
// the per-status required-field table consumed when leaving from.
//
// It is pure, and it collects every violated rule instead of failing fast so
// the caller can render all errors together. A non-nil error is returned only
// for an illegal pair (ErrIllegalTransition) or for the receiving transition,
// which is governed by ReconcileReceipt rather than this table
// (ErrReceivingRequired).
func ValidateTransition(from, to Status, f TransitionFields) ([]string, error) {
	next, ok := NextStatus(from)
	if !ok || next != to {
		return nil, ErrIllegalTransition
	}
	if KindOf(from, to) == TransitionRequiresReceiving {
		return nil, ErrReceivingRequired
	}
	return requiredFieldErrors(from, f), nil
}

// requiredFieldErrors applies the per-status field schema consumed when
// leaving from. Shared between transition validation and history edits, which
// re-run the same schema against a corrected payload.
func requiredFieldErrors(from Status, f TransitionFields) []string {
	var errs []string
	switch from {
	case StatusDraft:
		errs = appendPositiveNumber(errs, "exchangeRate", f.ExchangeRate)
		if f.SupplierCredit > 0 && f.PaymentAccountID == 0 {
			errs = append(errs, "paymentAccountId is required when supplier credit is available")
		}
	case StatusPaymentConfirmed:
		errs = appendRequiredString(errs, "courierName", f.CourierName)
		errs = appendRequiredString(errs, "trackingNumber", f.TrackingNumber)
	case StatusSupplierDispatched:
		// No fields beyond the defaults.
	case StatusWarehouseReceived:
		errs = appendRequiredString(errs, "lotNumber", f.LotNumber)
	case StatusShippedBD:
		errs = appendRequiredString(errs, "transportType", f.TransportType)
		errs = appendPositiveNumber(errs, "totalWeight", f.TotalWeight)
		errs = appendPositiveNumber(errs, "shippingCostPerKg", f.ShippingCostPerKg)
	case StatusArrivedBD:
		errs = appendRequiredString(errs, "bdCourierTracking", f.BDCourierTracking)
	}
	return errs
}

func appendRequiredString(errs []string, field, value string) []string {
	if strings.TrimSpace(value) == "" {
		return append(errs, field+" is required")
	}
	return errs
}

func appendPositiveNumber(errs []string, field string, value float64) []string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return append(errs, field+" must be a finite number")
	}
	if value <= 0 {
		return append(errs, field+" must be > 0")
	}
	return errs
}
