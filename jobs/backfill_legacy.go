package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lotpilot/lotpilot/internal/lifecycle"
)

// Backfiller promotes amounts trapped in legacy free-text history comments
// into the structured shipping and extra cost columns. New writes always fill
// the structured columns, so each order needs this at most once.
type Backfiller struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewBackfiller constructs the backfill task handler.
func NewBackfiller(pool *pgxpool.Pool, logger *slog.Logger) *Backfiller {
	return &Backfiller{pool: pool, logger: logger}
}

// HandleTask processes TaskBackfillLegacyAmounts tasks.
func (b *Backfiller) HandleTask(ctx context.Context, t *asynq.Task) error {
	var payload BackfillLegacyAmountsPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	rows, err := b.pool.Query(ctx, `SELECT id, total_shipping_cost, extra_cost FROM orders
		WHERE total_shipping_cost = 0 OR extra_cost = 0`)
	if err != nil {
		return fmt.Errorf("jobs: list backfill candidates: %w", err)
	}
	type candidate struct {
		id              int64
		shipping, extra float64
	}
	var candidates []candidate
	for rows.Next() {
		var c candidate
		if err := rows.Scan(&c.id, &c.shipping, &c.extra); err != nil {
			rows.Close()
			return fmt.Errorf("jobs: scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("jobs: list backfill candidates: %w", err)
	}

	updated := 0
	for _, c := range candidates {
		history, err := b.loadHistory(ctx, c.id)
		if err != nil {
			return err
		}
		shipping, extra := c.shipping, c.extra
		if shipping == 0 {
			shipping = lifecycle.LegacyShippingCost(history)
		}
		if extra == 0 {
			extra = lifecycle.LegacyExtraCost(history)
		}
		if shipping == c.shipping && extra == c.extra {
			continue
		}
		tag, err := b.pool.Exec(ctx, `UPDATE orders SET total_shipping_cost = $1, extra_cost = $2
			WHERE id = $3`, shipping, extra, c.id)
		if err != nil {
			return fmt.Errorf("jobs: backfill order %d: %w", c.id, err)
		}
		updated += int(tag.RowsAffected())
	}

	b.logger.Info("legacy amount backfill",
		slog.Int("candidates", len(candidates)),
		slog.Int("updated", updated))
	return nil
}

func (b *Backfiller) loadHistory(ctx context.Context, orderID int64) ([]lifecycle.StatusHistoryEntry, error) {
	rows, err := b.pool.Query(ctx, `SELECT new_status, COALESCE(comments, '')
		FROM order_status_history WHERE order_id = $1 ORDER BY occurred_at`, orderID)
	if err != nil {
		return nil, fmt.Errorf("jobs: load history for order %d: %w", orderID, err)
	}
	defer rows.Close()

	var history []lifecycle.StatusHistoryEntry
	for rows.Next() {
		var e lifecycle.StatusHistoryEntry
		if err := rows.Scan(&e.NewStatus, &e.Comments); err != nil {
			return nil, fmt.Errorf("jobs: scan history for order %d: %w", orderID, err)
		}
		history = append(history, e)
	}
	return history, rows.Err()
}
