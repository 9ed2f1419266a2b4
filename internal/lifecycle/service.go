package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lotpilot/lotpilot/internal/money"
	"github.com/lotpilot/lotpilot/internal/shared"
)

// RepositoryPort describes repository operations used by Engine.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetOrder(ctx context.Context, id int64) (Order, []OrderItem, []StatusHistoryEntry, error)
}

// TxRepository exposes the transactional writes of a single commit.
type TxRepository interface {
	// UpdateOrder persists the order conditionally on the stored status still
	// matching expected, and returns ErrConflict otherwise.
	UpdateOrder(ctx context.Context, o Order, expected Status) error
	InsertHistoryEntry(ctx context.Context, e StatusHistoryEntry) error
	UpdateHistoryEntry(ctx context.Context, e StatusHistoryEntry) error
	UpdateItemReceipt(ctx context.Context, item OrderItem) error
}

// SupplierPort reads the wallet balance of the external supplier record.
type SupplierPort interface {
	WalletBalance(ctx context.Context, supplierID int64) (float64, error)
}

// BankAccountPort lists active bank accounts for payment previews.
type BankAccountPort interface {
	ListActive(ctx context.Context) ([]BankAccountView, error)
}

// AuditPort reused from shared.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// IdempotencyPort guards the receive commit against double submission.
type IdempotencyPort interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// Engine is the order lifecycle façade. It holds no per-order state between
// calls: every operation loads the aggregate, computes, and commits once.
type Engine struct {
	repo        RepositoryPort
	suppliers   SupplierPort
	banks       BankAccountPort
	audit       AuditPort
	idempotency IdempotencyPort
	markupPct   float64
}

// NewEngine constructs the lifecycle engine. markupPct is the handling markup
// applied to landed unit costs at receiving time.
func NewEngine(repo RepositoryPort, suppliers SupplierPort, banks BankAccountPort, audit AuditPort, idem IdempotencyPort, markupPct float64) *Engine {
	return &Engine{repo: repo, suppliers: suppliers, banks: banks, audit: audit, idempotency: idem, markupPct: markupPct}
}

// Result is the outcome of every mutating operation.
type Result struct {
	OK     bool     `json:"ok"`
	Order  Order    `json:"order"`
	Errors []string `json:"errors,omitempty"`
}

// AdvanceInput carries one forward transition request. From is the status the
// caller computed against; a divergent stored status yields ErrConflict.
type AdvanceInput struct {
	OrderID int64
	From    Status
	To      Status
	ActorID int64
	Fields  TransitionFields
}

// Advance moves an order one step along the chain after validating the
// required fields for leaving From. Validation failure blocks the transition
// entirely; nothing is written.
func (e *Engine) Advance(ctx context.Context, in AdvanceInput) (Result, error) {
	order, _, _, err := e.repo.GetOrder(ctx, in.OrderID)
	if err != nil {
		return Result{}, err
	}
	if order.Status != in.From {
		return Result{}, fmt.Errorf("%w: have %s, expected %s", ErrConflict, order.Status, in.From)
	}

	fields := in.Fields
	if in.From == StatusDraft && e.suppliers != nil {
		credit, err := e.suppliers.WalletBalance(ctx, order.SupplierID)
		if err != nil {
			return Result{}, fmt.Errorf("lifecycle: read supplier credit: %w", err)
		}
		fields.SupplierCredit = credit
	}

	violations, err := ValidateTransition(in.From, in.To, fields)
	if err != nil {
		return Result{}, err
	}
	if len(violations) > 0 {
		return Result{Order: order, Errors: violations}, ErrValidation
	}

	updated := applyTransitionFields(order, in.From, fields)
	updated.Status = in.To
	entry := StatusHistoryEntry{
		ID:        uuid.New(),
		OrderID:   order.ID,
		OldStatus: in.From,
		NewStatus: in.To,
		At:        time.Now(),
		ActorID:   in.ActorID,
		Payload:   payloadFor(in.From, fields),
		Comments:  fields.Comments,
	}
	err = e.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.UpdateOrder(ctx, updated, in.From); err != nil {
			return err
		}
		return tx.InsertHistoryEntry(ctx, entry)
	})
	if err != nil {
		return Result{}, err
	}
	e.recordAudit(ctx, in.ActorID, "ORDER_ADVANCE", order.ID, map[string]any{
		"from": string(in.From), "to": string(in.To),
	})
	return Result{OK: true, Order: updated}, nil
}

// ReceiveInput reconciles the order at the Bogura hub.
type ReceiveInput struct {
	OrderID int64
	From    Status
	ActorID int64
	Receipt ReceiptInput
}

// Receive splits each ordered quantity into received and lost, decides the
// terminal status, and commits everything atomically: order status, extra
// cost, item quantities, landed unit costs, and the received_hub plus
// terminal history entries. Any invariant violation rejects the whole
// operation with no partial write.
func (e *Engine) Receive(ctx context.Context, in ReceiveInput) (Result, error) {
	order, items, history, err := e.repo.GetOrder(ctx, in.OrderID)
	if err != nil {
		return Result{}, err
	}
	if order.Status != in.From {
		return Result{}, fmt.Errorf("%w: have %s, expected %s", ErrConflict, order.Status, in.From)
	}
	if order.Status != StatusInTransitBogura {
		return Result{}, fmt.Errorf("%w: receive is only legal from %s", ErrIllegalTransition, StatusInTransitBogura)
	}

	decision, violations := ReconcileReceipt(items, in.Receipt)
	if len(violations) > 0 {
		return Result{Order: order, Errors: violations}, ErrInvariant
	}

	updated := order
	updated.ExtraCost = money.Round2(in.Receipt.ExtraCost)
	updated.Status = decision.Status

	byID := make(map[int64]ReceiptLine, len(in.Receipt.Lines))
	for _, line := range in.Receipt.Lines {
		byID[line.ItemID] = line
	}
	reconciled := make([]OrderItem, len(items))
	for i, it := range items {
		line := byID[it.ID]
		it.ReceivedQuantity = line.Received
		it.LostQuantity = line.Lost
		it.FinalUnitCost = LandedUnitCost(updated, items, it, history, e.markupPct)
		reconciled[i] = it
	}

	now := time.Now()
	hubEntry := StatusHistoryEntry{
		ID:        uuid.New(),
		OrderID:   order.ID,
		OldStatus: StatusInTransitBogura,
		NewStatus: StatusReceivedHub,
		At:        now,
		ActorID:   in.ActorID,
		Payload:   HistoryPayload{ExtraCost: updated.ExtraCost},
		Comments:  decision.Comment,
	}
	terminalEntry := StatusHistoryEntry{
		ID:        uuid.New(),
		OrderID:   order.ID,
		OldStatus: StatusReceivedHub,
		NewStatus: decision.Status,
		At:        now,
		ActorID:   in.ActorID,
	}

	idemKey := fmt.Sprintf("receive:order:%d", order.ID)
	inserted := false
	if e.idempotency != nil {
		if err := e.idempotency.CheckAndInsert(ctx, idemKey, "lifecycle.receive"); err != nil {
			return Result{}, err
		}
		inserted = true
	}
	err = e.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.UpdateOrder(ctx, updated, StatusInTransitBogura); err != nil {
			return err
		}
		for _, it := range reconciled {
			if err := tx.UpdateItemReceipt(ctx, it); err != nil {
				return err
			}
		}
		if err := tx.InsertHistoryEntry(ctx, hubEntry); err != nil {
			return err
		}
		return tx.InsertHistoryEntry(ctx, terminalEntry)
	})
	if err != nil {
		if inserted {
			_ = e.idempotency.Delete(ctx, idemKey)
		}
		return Result{}, err
	}
	e.recordAudit(ctx, in.ActorID, "ORDER_RECEIVE", order.ID, map[string]any{
		"status":       string(decision.Status),
		"shortShipped": decision.ShortShipped,
		"extraCost":    updated.ExtraCost,
	})
	return Result{OK: true, Order: updated}, nil
}

// ReceivePreview reconciles without committing, so the caller can show the
// resulting status and comment before the operator confirms.
func (e *Engine) ReceivePreview(ctx context.Context, orderID int64, receipt ReceiptInput) (ReceiptDecision, []string, error) {
	order, items, _, err := e.repo.GetOrder(ctx, orderID)
	if err != nil {
		return ReceiptDecision{}, nil, err
	}
	if order.Status != StatusInTransitBogura {
		return ReceiptDecision{}, nil, fmt.Errorf("%w: receive is only legal from %s", ErrIllegalTransition, StatusInTransitBogura)
	}
	decision, violations := ReconcileReceipt(items, receipt)
	return decision, violations, nil
}

// EditHistoryInput corrects a past history entry's mutable payload.
type EditHistoryInput struct {
	OrderID int64
	EntryID uuid.UUID
	Status  Status
	ActorID int64
	Fields  TransitionFields
}

// EditHistoryEntry overwrites the payload and comment of an entry the order
// has already passed through, re-running the same per-status field schema the
// original transition used. Identity fields stay fixed and no transition side
// effects are re-triggered: this is a correction channel, not a replay.
// Editing is refused once the order is terminal.
func (e *Engine) EditHistoryEntry(ctx context.Context, in EditHistoryInput) (Result, error) {
	order, _, history, err := e.repo.GetOrder(ctx, in.OrderID)
	if err != nil {
		return Result{}, err
	}
	if IsTerminal(order.Status) {
		return Result{}, ErrTerminal
	}

	var entry StatusHistoryEntry
	found := false
	for _, h := range history {
		if h.ID == in.EntryID {
			entry = h
			found = true
			break
		}
	}
	if !found || entry.OrderID != order.ID || entry.NewStatus != in.Status {
		return Result{}, fmt.Errorf("%w: history entry for status %s", ErrNotFound, in.Status)
	}

	fields := in.Fields
	if entry.OldStatus == StatusDraft && e.suppliers != nil {
		credit, err := e.suppliers.WalletBalance(ctx, order.SupplierID)
		if err != nil {
			return Result{}, fmt.Errorf("lifecycle: read supplier credit: %w", err)
		}
		fields.SupplierCredit = credit
	}
	if violations := requiredFieldErrors(entry.OldStatus, fields); len(violations) > 0 {
		return Result{Order: order, Errors: violations}, ErrValidation
	}

	entry.Payload = payloadFor(entry.OldStatus, fields)
	entry.Comments = fields.Comments
	err = e.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.UpdateHistoryEntry(ctx, entry)
	})
	if err != nil {
		return Result{}, err
	}
	e.recordAudit(ctx, in.ActorID, "HISTORY_EDIT", order.ID, map[string]any{
		"entry":  entry.ID.String(),
		"status": string(entry.NewStatus),
	})
	return Result{OK: true, Order: order}, nil
}

// AccountProjection pairs a bank account with its projected post-payment
// balance.
type AccountProjection struct {
	Account          BankAccountView `json:"account"`
	ProjectedBalance float64         `json:"projectedBalance"`
}

// PaymentPreviewResult is the approved breakdown plus projections; the actual
// debits belong to the external ledger collaborator.
type PaymentPreviewResult struct {
	Breakdown PaymentBreakdown    `json:"breakdown"`
	Accounts  []AccountProjection `json:"accounts"`
}

// PaymentPreview computes the credit/bank split for the order's grand total
// and the balance each active account would hold after funding the bank part.
func (e *Engine) PaymentPreview(ctx context.Context, orderID int64) (PaymentPreviewResult, error) {
	order, items, history, err := e.repo.GetOrder(ctx, orderID)
	if err != nil {
		return PaymentPreviewResult{}, err
	}
	var credit float64
	if e.suppliers != nil {
		credit, err = e.suppliers.WalletBalance(ctx, order.SupplierID)
		if err != nil {
			return PaymentPreviewResult{}, fmt.Errorf("lifecycle: read supplier credit: %w", err)
		}
	}
	breakdown := SplitPayment(GrandTotal(order, items, history), credit)
	result := PaymentPreviewResult{Breakdown: breakdown}
	if e.banks != nil {
		accounts, err := e.banks.ListActive(ctx)
		if err != nil {
			return PaymentPreviewResult{}, fmt.Errorf("lifecycle: list bank accounts: %w", err)
		}
		for _, acc := range accounts {
			result.Accounts = append(result.Accounts, AccountProjection{
				Account:          acc,
				ProjectedBalance: ProjectedBankBalance(acc.CurrentBalance, breakdown.FromBank),
			})
		}
	}
	return result, nil
}

// Get returns the full aggregate for read endpoints.
func (e *Engine) Get(ctx context.Context, orderID int64) (Order, []OrderItem, []StatusHistoryEntry, error) {
	return e.repo.GetOrder(ctx, orderID)
}

// TransitionKind reports whether a legal transition collects a plain field
// set or must go through receiving, so the caller can branch its UI without
// embedding that choice in validation logic.
func (e *Engine) TransitionKind(from, to Status) TransitionKind {
	return KindOf(from, to)
}

func (e *Engine) recordAudit(ctx context.Context, actorID int64, action string, orderID int64, meta map[string]any) {
	if e.audit == nil {
		return
	}
	_ = e.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "order",
		EntityID: fmt.Sprintf("%d", orderID),
		Meta:     meta,
	})
}

// applyTransitionFields copies the validated stage fields onto the order.
// Leaving shipped_bd also fixes the total shipping cost from weight and rate.
func applyTransitionFields(o Order, from Status, f TransitionFields) Order {
	switch from {
	case StatusDraft:
		o.ExchangeRate = f.ExchangeRate
		o.PaymentAccountID = f.PaymentAccountID
	case StatusPaymentConfirmed:
		o.CourierName = f.CourierName
		o.TrackingNumber = f.TrackingNumber
	case StatusWarehouseReceived:
		o.LotNumber = f.LotNumber
	case StatusShippedBD:
		o.TransportType = f.TransportType
		o.TotalWeight = f.TotalWeight
		o.ShippingCostPerKg = f.ShippingCostPerKg
		o.TotalShippingCost = ShippingCost(f.TotalWeight, f.ShippingCostPerKg)
	case StatusArrivedBD:
		o.BDCourierTracking = f.BDCourierTracking
	}
	return o
}

func payloadFor(from Status, f TransitionFields) HistoryPayload {
	switch from {
	case StatusDraft:
		return HistoryPayload{ExchangeRate: f.ExchangeRate, PaymentAccountID: f.PaymentAccountID}
	case StatusPaymentConfirmed:
		return HistoryPayload{CourierName: f.CourierName, TrackingNumber: f.TrackingNumber}
	case StatusWarehouseReceived:
		return HistoryPayload{LotNumber: f.LotNumber}
	case StatusShippedBD:
		return HistoryPayload{TransportType: f.TransportType, TotalWeight: f.TotalWeight, ShippingCostPerKg: f.ShippingCostPerKg}
	case StatusArrivedBD:
		return HistoryPayload{BDCourierTracking: f.BDCourierTracking}
	}
	return HistoryPayload{}
}
