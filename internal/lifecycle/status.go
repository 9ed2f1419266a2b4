package lifecycle

// Status is one stop on the fixed forward-only order chain.
type Status string

const (
	StatusDraft              Status = "draft"
	StatusPaymentConfirmed   Status = "payment_confirmed"
	StatusSupplierDispatched Status = "supplier_dispatched"
	StatusWarehouseReceived  Status = "warehouse_received"
	StatusShippedBD          Status = "shipped_bd"
	StatusArrivedBD          Status = "arrived_bd"
	StatusInTransitBogura    Status = "in_transit_bogura"
	StatusReceivedHub        Status = "received_hub"
	StatusCompleted          Status = "completed"
	StatusPartiallyCompleted Status = "partially_completed"
)

// chain is the strictly linear forward order. The fork after received_hub is
// not part of the chain: whether an order ends completed or
// partially_completed is decided by receiving reconciliation, never by
// NextStatus.
var chain = []Status{
	StatusDraft,
	StatusPaymentConfirmed,
	StatusSupplierDispatched,
	StatusWarehouseReceived,
	StatusShippedBD,
	StatusArrivedBD,
	StatusInTransitBogura,
	StatusReceivedHub,
	StatusCompleted,
}

// IsValid reports whether s is a member of the status chain or a terminal.
func IsValid(s Status) bool {
	if s == StatusPartiallyCompleted {
		return true
	}
	for _, c := range chain {
		if c == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func IsTerminal(s Status) bool {
	return s == StatusCompleted || s == StatusPartiallyCompleted
}

// NextStatus returns the single chain successor of current. ok is false for
// terminals and unknown statuses.
func NextStatus(current Status) (Status, bool) {
	if IsTerminal(current) {
		return "", false
	}
	for i, s := range chain {
		if s == current && i+1 < len(chain) {
			return chain[i+1], true
		}
	}
	return "", false
}

// ChainIndex returns the position of s in the forward chain.
// partially_completed shares the terminal index with completed.
func ChainIndex(s Status) (int, bool) {
	if s == StatusPartiallyCompleted {
		return len(chain) - 1, true
	}
	for i, c := range chain {
		if c == s {
			return i, true
		}
	}
	return 0, false
}

// StepsToTerminal returns how many forward transitions remain before a
// terminal status, and 0 for terminals.
func StepsToTerminal(s Status) int {
	idx, ok := ChainIndex(s)
	if !ok {
		return 0
	}
	return len(chain) - 1 - idx
}

// TransitionKind classifies a legal transition for the caller's benefit:
// most transitions collect a fixed field set, but leaving in_transit_bogura
// goes through receiving reconciliation instead.
type TransitionKind string

const (
	TransitionSimple            TransitionKind = "simple"
	TransitionRequiresReceiving TransitionKind = "requiresReceiving"
)

// KindOf returns the transition kind for a (from, to) pair. The pair must be
// legal; illegal pairs are reported by ValidateTransition, not here.
func KindOf(from, to Status) TransitionKind {
	if from == StatusInTransitBogura {
		return TransitionRequiresReceiving
	}
	return TransitionSimple
}
