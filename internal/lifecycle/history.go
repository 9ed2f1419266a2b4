package lifecycle

import (
	"regexp"
	"strconv"
)

// Labels under which legacy entries recorded amounts inside free-text
// comments, e.g. "Shipping cost: 10400.00 BDT".
const (
	shippingCostLabel = "Shipping cost"
	extraCostLabel    = "Extra cost"
)

var amountPatterns = map[string]*regexp.Regexp{
	shippingCostLabel: regexp.MustCompile(`(?i)shipping cost\s*:\s*([0-9]+(?:\.[0-9]+)?)`),
	extraCostLabel:    regexp.MustCompile(`(?i)extra cost\s*:\s*([0-9]+(?:\.[0-9]+)?)`),
}

// ExtractAmount recovers a numeric value recorded only as free text inside a
// legacy status-history comment. It scans entries that transitioned into the
// given status for "<label>: <number> <currency>".
//
// Best effort only: non-matching text, unknown labels, and absent entries all
// yield 0 and never an error. Callers try this only after the structured
// field came back absent or zero.
func ExtractAmount(history []StatusHistoryEntry, status Status, label string) float64 {
	re, ok := amountPatterns[label]
	if !ok {
		return 0
	}
	for _, e := range history {
		if e.NewStatus != status || e.Comments == "" {
			continue
		}
		m := re.FindStringSubmatch(e.Comments)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		return v
	}
	return 0
}

// LegacyShippingCost recovers a shipping cost recorded only in the free text
// of the arrived_bd entry.
func LegacyShippingCost(history []StatusHistoryEntry) float64 {
	return ExtractAmount(history, StatusArrivedBD, shippingCostLabel)
}

// LegacyExtraCost recovers an extra cost recorded only in the free text of
// the received_hub entry.
func LegacyExtraCost(history []StatusHistoryEntry) float64 {
	return ExtractAmount(history, StatusReceivedHub, extraCostLabel)
}
