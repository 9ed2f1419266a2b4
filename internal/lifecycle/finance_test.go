package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lotpilot/lotpilot/internal/money"
)

func TestSplitPayment(t *testing.T) {
	cases := []struct {
		name   string
		total  float64
		credit float64
		want   PaymentBreakdown
	}{
		{"credit covers part", 1000, 300, PaymentBreakdown{FromCredit: 300, FromBank: 700, Total: 1000}},
		{"credit covers all", 500, 800, PaymentBreakdown{FromCredit: 500, FromBank: 0, Total: 500}},
		{"no credit", 1000, 0, PaymentBreakdown{FromCredit: 0, FromBank: 1000, Total: 1000}},
		{"negative credit treated as zero", 1000, -50, PaymentBreakdown{FromCredit: 0, FromBank: 1000, Total: 1000}},
		{"zero total", 0, 300, PaymentBreakdown{FromCredit: 0, FromBank: 0, Total: 0}},
		{"cents", 99.99, 33.335, PaymentBreakdown{FromCredit: 33.34, FromBank: 66.65, Total: 99.99}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, SplitPayment(tc.total, tc.credit))
		})
	}
}

func TestSplitPaymentProperties(t *testing.T) {
	totals := []float64{0, 0.01, 1, 99.99, 1000, 12345.67, 1e6}
	credits := []float64{0, 0.01, 50, 99.99, 1000, 5e5, 2e6}
	for _, total := range totals {
		for _, credit := range credits {
			b := SplitPayment(total, credit)
			require.InDelta(t, b.Total, b.FromCredit+b.FromBank, 0.01,
				"T=%v C=%v", total, credit)
			require.GreaterOrEqual(t, b.FromCredit, 0.0)
			require.LessOrEqual(t, b.FromCredit, money.Round2(total))
			require.LessOrEqual(t, b.FromCredit, money.Max(0, credit))
		}
	}
}

func TestProjectedBankBalance(t *testing.T) {
	require.Equal(t, 250.00, ProjectedBankBalance(1000, 750))
	// A projected overdraft is reported, not blocked.
	require.Equal(t, -500.00, ProjectedBankBalance(500, 1000))
}

func TestShippingCost(t *testing.T) {
	require.Equal(t, 1000.00, ShippingCost(12.5, 80))
	require.Equal(t, 0.0, ShippingCost(0, 80))
	require.Equal(t, 103.63, ShippingCost(1.45, 71.47))
}

func TestGrandTotalStructuredFields(t *testing.T) {
	o := Order{ExchangeRate: 15, TotalShippingCost: 1200, ExtraCost: 300}
	items := []OrderItem{
		{ID: 1, Quantity: 10, UnitSourcePrice: 100}, // 1500 local each -> 15000
		{ID: 2, Quantity: 4, UnitSourcePrice: 25},   // 375 local each -> 1500
	}
	require.Equal(t, 19500.00, GrandTotal(o, items, nil))
}

func TestGrandTotalPerItemShippingFallback(t *testing.T) {
	o := Order{ExchangeRate: 10}
	items := []OrderItem{
		{ID: 1, Quantity: 2, UnitSourcePrice: 50, ShippingCost: 100},
		{ID: 2, Quantity: 1, UnitSourcePrice: 30, ShippingCost: 40},
	}
	// items 1000 + 300, shipping 140, no extra cost anywhere.
	require.Equal(t, 1440.00, GrandTotal(o, items, nil))
}

func TestGrandTotalHistoryFallback(t *testing.T) {
	o := Order{ExchangeRate: 10}
	items := []OrderItem{{ID: 1, Quantity: 1, UnitSourcePrice: 100}}
	history := []StatusHistoryEntry{
		{NewStatus: StatusArrivedBD, Comments: "Cleared customs. Shipping cost: 850.50 BDT"},
		{NewStatus: StatusReceivedHub, Comments: "2 items short-shipped. Extra cost: 120 BDT"},
	}
	// 1000 + 850.50 + 120.
	require.Equal(t, 1970.50, GrandTotal(o, items, history))
}

func TestGrandTotalStructuredWinsOverHistory(t *testing.T) {
	o := Order{ExchangeRate: 10, TotalShippingCost: 500}
	items := []OrderItem{{ID: 1, Quantity: 1, UnitSourcePrice: 100}}
	history := []StatusHistoryEntry{
		{NewStatus: StatusArrivedBD, Comments: "Shipping cost: 850.50 BDT"},
	}
	require.Equal(t, 1500.00, GrandTotal(o, items, history))
}

func TestLandedUnitCost(t *testing.T) {
	o := Order{ExchangeRate: 10, TotalShippingCost: 650}
	items := []OrderItem{
		{ID: 1, Quantity: 10, UnitSourcePrice: 100}, // value 10000
		{ID: 2, Quantity: 10, UnitSourcePrice: 30},  // value 3000
	}
	// Item 1 share of shipping: 650 * 10000/13000 = 500 -> 50 per unit.
	// (1000 + 50) * 1.10 = 1155.
	require.Equal(t, 1155.00, LandedUnitCost(o, items, items[0], nil, 10))
}

func TestLandedUnitCostNoShippingNoMarkup(t *testing.T) {
	o := Order{ExchangeRate: 12.5}
	it := OrderItem{ID: 1, Quantity: 4, UnitSourcePrice: 8}
	require.Equal(t, 100.00, LandedUnitCost(o, []OrderItem{it}, it, nil, 0))
}
