package lifecycle

import (
	"fmt"
	"math"

	"github.com/lotpilot/lotpilot/internal/money"
)

// ReceiptLine is the submitted reconciliation for one order item.
type ReceiptLine struct {
	ItemID   int64
	Received float64
	Lost     float64
}

// ReceiptInput is everything receiving needs: the per-item split, the extra
// cost incurred at the hub, and an optional caller comment.
type ReceiptInput struct {
	Lines     []ReceiptLine
	ExtraCost float64
	Comments  string
}

// ReceiptDecision is the outcome of reconciling a receipt: the terminal
// status the order will take and the history comment to record.
type ReceiptDecision struct {
	Status       Status `json:"status"`
	Comment      string `json:"comment"`
	ShortShipped int    `json:"shortShipped"`
}

// ReconcileReceipt validates the received/lost split against the ordered
// quantities and decides the terminal status. A violated quantity invariant
// is reported, never silently clamped, and any violation rejects the whole
// receipt. Pure: the atomic commit happens in Engine.Receive.
func ReconcileReceipt(items []OrderItem, input ReceiptInput) (ReceiptDecision, []string) {
	byID := make(map[int64]OrderItem, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	var errs []string
	if math.IsNaN(input.ExtraCost) || math.IsInf(input.ExtraCost, 0) {
		errs = append(errs, "extraCost must be a finite number")
	} else if input.ExtraCost < 0 {
		errs = append(errs, "extraCost must not be negative")
	}

	seen := make(map[int64]bool, len(input.Lines))
	shortShipped := 0
	for _, line := range input.Lines {
		it, ok := byID[line.ItemID]
		if !ok {
			errs = append(errs, fmt.Sprintf("item %d does not belong to the order", line.ItemID))
			continue
		}
		if seen[line.ItemID] {
			errs = append(errs, fmt.Sprintf("item %d submitted more than once", line.ItemID))
			continue
		}
		seen[line.ItemID] = true
		if line.Received < 0 || line.Lost < 0 {
			errs = append(errs, fmt.Sprintf("item %d: received and lost quantities must not be negative", line.ItemID))
			continue
		}
		if line.Received+line.Lost > it.Quantity {
			errs = append(errs, fmt.Sprintf("item %d: received %v + lost %v exceeds ordered %v",
				line.ItemID, line.Received, line.Lost, it.Quantity))
			continue
		}
		if line.Lost > 0 {
			shortShipped++
		}
	}
	for _, it := range items {
		if !seen[it.ID] {
			errs = append(errs, fmt.Sprintf("item %d missing from receipt", it.ID))
		}
	}
	if len(errs) > 0 {
		return ReceiptDecision{}, errs
	}

	decision := ReceiptDecision{Status: StatusCompleted, ShortShipped: shortShipped}
	if shortShipped > 0 {
		decision.Status = StatusPartiallyCompleted
	}
	decision.Comment = input.Comments
	if decision.Comment == "" {
		decision.Comment = synthesizeReceiptComment(shortShipped, input.ExtraCost)
	}
	return decision, nil
}

// synthesizeReceiptComment keeps the "<label>: <number> <currency>" shape so
// ExtractAmount can recover the extra cost from the comment later.
func synthesizeReceiptComment(shortShipped int, extraCost float64) string {
	comment := "Received in full at hub."
	if shortShipped == 1 {
		comment = "1 item short-shipped."
	} else if shortShipped > 1 {
		comment = fmt.Sprintf("%d items short-shipped.", shortShipped)
	}
	if extraCost > 0 {
		comment = fmt.Sprintf("%s %s: %.2f BDT", comment, extraCostLabel, money.Round2(extraCost))
	}
	return comment
}
