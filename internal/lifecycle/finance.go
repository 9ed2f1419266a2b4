package lifecycle

import "github.com/lotpilot/lotpilot/internal/money"

// PaymentBreakdown splits an order total between supplier wallet credit and
// bank funds.
type PaymentBreakdown struct {
	FromCredit float64 `json:"fromCredit"`
	FromBank   float64 `json:"fromBank"`
	Total      float64 `json:"total"`
}

// SplitPayment consumes supplier credit first and funds the remainder from
// the bank. For all totals T >= 0 and credits C >= 0:
// FromCredit + FromBank == round2(T) and 0 <= FromCredit <= min(T, C).
func SplitPayment(orderTotalLocal, supplierCredit float64) PaymentBreakdown {
	total := money.Round2(orderTotalLocal)
	fromCredit := money.Round2(money.Min(total, money.Max(0, supplierCredit)))
	fromBank := money.Round2(money.Max(0, money.Sub(total, fromCredit)))
	return PaymentBreakdown{FromCredit: fromCredit, FromBank: fromBank, Total: total}
}

// ProjectedBankBalance returns the balance an account would hold after the
// payment. It may go negative; whether that blocks the payment is the
// caller's decision, and the actual debit belongs to the external ledger.
func ProjectedBankBalance(currentBalance, paymentAmount float64) float64 {
	return money.Sub(currentBalance, paymentAmount)
}

// ShippingCost is total weight times the per-kilogram rate, to the cent.
func ShippingCost(totalWeight, costPerKg float64) float64 {
	return money.Mul(totalWeight, costPerKg)
}

// GrandTotal aggregates the order's landed total in local currency: item
// totals at the order exchange rate, plus shipping, plus extra cost. Shipping
// and extra cost each resolve through a three-tier fallback: the structured
// order field, then per-item values, then best-effort recovery from legacy
// history comments. Every aggregation boundary rounds to the cent.
func GrandTotal(o Order, items []OrderItem, history []StatusHistoryEntry) float64 {
	var total float64
	for _, it := range items {
		itemLocal := money.ToLocal(it.UnitSourcePrice, o.ExchangeRate)
		total = money.Round2(total + money.Mul(itemLocal, it.Quantity))
	}
	total = money.Round2(total + resolveShippingCost(o, items, history))
	total = money.Round2(total + resolveExtraCost(o, history))
	return total
}

func resolveShippingCost(o Order, items []OrderItem, history []StatusHistoryEntry) float64 {
	if o.TotalShippingCost > 0 {
		return money.Round2(o.TotalShippingCost)
	}
	var sum float64
	for _, it := range items {
		sum = money.Round2(sum + it.ShippingCost)
	}
	if sum > 0 {
		return sum
	}
	return ExtractAmount(history, StatusArrivedBD, shippingCostLabel)
}

func resolveExtraCost(o Order, history []StatusHistoryEntry) float64 {
	if o.ExtraCost > 0 {
		return money.Round2(o.ExtraCost)
	}
	return ExtractAmount(history, StatusReceivedHub, extraCostLabel)
}

// LandedUnitCost is the per-unit cost after converting the purchase price,
// apportioning the order's shipping cost across ordered units by value share,
// and applying the handling markup percentage.
func LandedUnitCost(o Order, items []OrderItem, item OrderItem, history []StatusHistoryEntry, markupPct float64) float64 {
	unitLocal := money.ToLocal(item.UnitSourcePrice, o.ExchangeRate)
	shipping := resolveShippingCost(o, items, history)
	if shipping > 0 {
		var orderValue float64
		for _, it := range items {
			itemLocal := money.ToLocal(it.UnitSourcePrice, o.ExchangeRate)
			orderValue = money.Round2(orderValue + money.Mul(itemLocal, it.Quantity))
		}
		if orderValue > 0 && item.Quantity > 0 {
			itemValue := money.Mul(unitLocal, item.Quantity)
			itemShipping := money.Round2(shipping * itemValue / orderValue)
			unitLocal = money.Round2(unitLocal + itemShipping/item.Quantity)
		}
	}
	return money.Round2(unitLocal * (1 + markupPct/100))
}
