package lifecycle

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateTransitionDraft(t *testing.T) {
	errs, err := ValidateTransition(StatusDraft, StatusPaymentConfirmed, TransitionFields{ExchangeRate: 0})
	require.NoError(t, err)
	require.Equal(t, []string{"exchangeRate must be > 0"}, errs)

	errs, err = ValidateTransition(StatusDraft, StatusPaymentConfirmed, TransitionFields{ExchangeRate: 15.85})
	require.NoError(t, err)
	require.Empty(t, errs)
}

func TestValidateTransitionDraftPaymentAccount(t *testing.T) {
	// Supplier has wallet credit: the paying account must be named.
	errs, err := ValidateTransition(StatusDraft, StatusPaymentConfirmed, TransitionFields{
		ExchangeRate:   15.85,
		SupplierCredit: 500,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"paymentAccountId is required when supplier credit is available"}, errs)

	errs, err = ValidateTransition(StatusDraft, StatusPaymentConfirmed, TransitionFields{
		ExchangeRate:     15.85,
		SupplierCredit:   500,
		PaymentAccountID: 3,
	})
	require.NoError(t, err)
	require.Empty(t, errs)
}

func TestValidateTransitionCollectsAllViolations(t *testing.T) {
	errs, err := ValidateTransition(StatusShippedBD, StatusArrivedBD, TransitionFields{})
	require.NoError(t, err)
	require.Equal(t, []string{
		"transportType is required",
		"totalWeight must be > 0",
		"shippingCostPerKg must be > 0",
	}, errs)
}

func TestValidateTransitionNonFinite(t *testing.T) {
	errs, err := ValidateTransition(StatusShippedBD, StatusArrivedBD, TransitionFields{
		TransportType:     "air",
		TotalWeight:       math.NaN(),
		ShippingCostPerKg: math.Inf(1),
	})
	require.NoError(t, err)
	require.Equal(t, []string{
		"totalWeight must be a finite number",
		"shippingCostPerKg must be a finite number",
	}, errs)
}

func TestValidateTransitionTrimsStrings(t *testing.T) {
	errs, err := ValidateTransition(StatusPaymentConfirmed, StatusSupplierDispatched, TransitionFields{
		CourierName:    "   ",
		TrackingNumber: "SF123456789",
	})
	require.NoError(t, err)
	require.Equal(t, []string{"courierName is required"}, errs)
}

func TestValidateTransitionNoFieldStatuses(t *testing.T) {
	errs, err := ValidateTransition(StatusSupplierDispatched, StatusWarehouseReceived, TransitionFields{})
	require.NoError(t, err)
	require.Empty(t, errs)

	errs, err = ValidateTransition(StatusWarehouseReceived, StatusShippedBD, TransitionFields{LotNumber: "LOT-22"})
	require.NoError(t, err)
	require.Empty(t, errs)
}

func TestValidateTransitionIllegalPairs(t *testing.T) {
	cases := []struct {
		name string
		from Status
		to   Status
	}{
		{"skip", StatusDraft, StatusSupplierDispatched},
		{"backward", StatusArrivedBD, StatusShippedBD},
		{"self", StatusDraft, StatusDraft},
		{"out of terminal", StatusCompleted, StatusDraft},
		{"fork picked directly", StatusReceivedHub, StatusPartiallyCompleted},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateTransition(tc.from, tc.to, TransitionFields{})
			require.ErrorIs(t, err, ErrIllegalTransition)
		})
	}
}

func TestValidateTransitionReceivingGoverned(t *testing.T) {
	_, err := ValidateTransition(StatusInTransitBogura, StatusReceivedHub, TransitionFields{})
	require.ErrorIs(t, err, ErrReceivingRequired)
}
