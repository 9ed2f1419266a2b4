package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskBackfillLegacyAmounts extracts shipping and extra costs from
	// free-text history comments into the structured order columns.
	TaskBackfillLegacyAmounts = "lifecycle:backfill_legacy_amounts"
)

// BackfillLegacyAmountsPayload carries scheduling metadata.
type BackfillLegacyAmountsPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewBackfillLegacyAmountsTask constructs an Asynq task for the backfill.
func NewBackfillLegacyAmountsTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(BackfillLegacyAmountsPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBackfillLegacyAmounts, body, asynq.Queue(QueueDefault)), nil
}
