package lifecycle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lotpilot/lotpilot/internal/platform/db"
)

// Repository provides PostgreSQL backed persistence for order aggregates.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx wraps the callback in a repeatable-read transaction so a lifecycle
// commit is all-or-nothing.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

const orderColumns = `id, number, supplier_id, order_date, status, exchange_rate, total_amount,
	payment_account_id, courier_name, tracking_number, lot_number, transport_type,
	bd_courier_tracking, total_weight, shipping_cost_per_kg, total_shipping_cost, extra_cost`

// GetOrder loads the aggregate: order row, items, and status history in
// transition order.
func (r *Repository) GetOrder(ctx context.Context, id int64) (Order, []OrderItem, []StatusHistoryEntry, error) {
	var o Order
	err := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id).Scan(
		&o.ID, &o.Number, &o.SupplierID, &o.OrderDate, &o.Status, &o.ExchangeRate, &o.TotalAmount,
		&o.PaymentAccountID, &o.CourierName, &o.TrackingNumber, &o.LotNumber, &o.TransportType,
		&o.BDCourierTracking, &o.TotalWeight, &o.ShippingCostPerKg, &o.TotalShippingCost, &o.ExtraCost,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, nil, nil, ErrNotFound
		}
		return Order{}, nil, nil, fmt.Errorf("lifecycle: get order: %w", err)
	}

	items, err := r.listItems(ctx, id)
	if err != nil {
		return Order{}, nil, nil, err
	}
	history, err := r.listHistory(ctx, id)
	if err != nil {
		return Order{}, nil, nil, err
	}
	return o, items, history, nil
}

func (r *Repository) listItems(ctx context.Context, orderID int64) ([]OrderItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, order_id, product_name, quantity, unit_source_price,
		received_quantity, lost_quantity, shipping_cost, final_unit_cost
		FROM order_items WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("lifecycle: list items: %w", err)
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductName, &it.Quantity, &it.UnitSourcePrice,
			&it.ReceivedQuantity, &it.LostQuantity, &it.ShippingCost, &it.FinalUnitCost); err != nil {
			return nil, fmt.Errorf("lifecycle: scan item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *Repository) listHistory(ctx context.Context, orderID int64) ([]StatusHistoryEntry, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, order_id, old_status, new_status, occurred_at, actor_id, payload, comments
		FROM order_status_history WHERE order_id = $1 ORDER BY occurred_at, new_status`, orderID)
	if err != nil {
		return nil, fmt.Errorf("lifecycle: list history: %w", err)
	}
	defer rows.Close()

	var history []StatusHistoryEntry
	for rows.Next() {
		var e StatusHistoryEntry
		var payload []byte
		if err := rows.Scan(&e.ID, &e.OrderID, &e.OldStatus, &e.NewStatus, &e.At, &e.ActorID, &payload, &e.Comments); err != nil {
			return nil, fmt.Errorf("lifecycle: scan history: %w", err)
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &e.Payload); err != nil {
				return nil, fmt.Errorf("lifecycle: decode history payload: %w", err)
			}
		}
		history = append(history, e)
	}
	return history, rows.Err()
}

// UpdateOrder writes the order conditionally on the stored status still being
// expected. Zero affected rows means another transition won the race.
func (t *txRepo) UpdateOrder(ctx context.Context, o Order, expected Status) error {
	tag, err := t.tx.Exec(ctx, `UPDATE orders SET
		status = $1, exchange_rate = $2, payment_account_id = $3, courier_name = $4,
		tracking_number = $5, lot_number = $6, transport_type = $7, bd_courier_tracking = $8,
		total_weight = $9, shipping_cost_per_kg = $10, total_shipping_cost = $11, extra_cost = $12
		WHERE id = $13 AND status = $14`,
		o.Status, o.ExchangeRate, o.PaymentAccountID, o.CourierName,
		o.TrackingNumber, o.LotNumber, o.TransportType, o.BDCourierTracking,
		o.TotalWeight, o.ShippingCostPerKg, o.TotalShippingCost, o.ExtraCost,
		o.ID, expected)
	if err != nil {
		return fmt.Errorf("lifecycle: update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}

func (t *txRepo) InsertHistoryEntry(ctx context.Context, e StatusHistoryEntry) error {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return fmt.Errorf("lifecycle: encode history payload: %w", err)
	}
	_, err = t.tx.Exec(ctx, `INSERT INTO order_status_history
		(id, order_id, old_status, new_status, occurred_at, actor_id, payload, comments)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.OrderID, e.OldStatus, e.NewStatus, e.At, e.ActorID, payload, e.Comments)
	if err != nil {
		return fmt.Errorf("lifecycle: insert history entry: %w", err)
	}
	return nil
}

// UpdateHistoryEntry overwrites only the mutable payload and comment; the
// identity columns never change after creation.
func (t *txRepo) UpdateHistoryEntry(ctx context.Context, e StatusHistoryEntry) error {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return fmt.Errorf("lifecycle: encode history payload: %w", err)
	}
	tag, err := t.tx.Exec(ctx, `UPDATE order_status_history SET payload = $1, comments = $2 WHERE id = $3`,
		payload, e.Comments, e.ID)
	if err != nil {
		return fmt.Errorf("lifecycle: update history entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *txRepo) UpdateItemReceipt(ctx context.Context, item OrderItem) error {
	tag, err := t.tx.Exec(ctx, `UPDATE order_items SET
		received_quantity = $1, lost_quantity = $2, final_unit_cost = $3
		WHERE id = $4 AND order_id = $5`,
		item.ReceivedQuantity, item.LostQuantity, item.FinalUnitCost, item.ID, item.OrderID)
	if err != nil {
		return fmt.Errorf("lifecycle: update item receipt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
