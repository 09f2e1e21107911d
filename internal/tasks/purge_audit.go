package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/foodgram/internal/logging"
)

// AuditPurger drops audit events past their retention period.
type AuditPurger interface {
	PurgeOldEvents(ctx context.Context) (int64, error)
}

// PurgeAuditEventsTask removes expired audit events.
type PurgeAuditEventsTask struct{}

// Config returns the queue configuration for audit purge tasks.
func (t PurgeAuditEventsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "purge_audit_events",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// PurgeAuditEventsProcessor creates a processor function for PurgeAuditEventsTask.
// A nil purger means auditing is disabled and the task is a no-op.
func PurgeAuditEventsProcessor(purger AuditPurger) backlite.QueueProcessor[PurgeAuditEventsTask] {
	return func(ctx context.Context, task PurgeAuditEventsTask) error {
		if purger == nil {
			return nil
		}

		purged, err := purger.PurgeOldEvents(ctx)
		if err != nil {
			return fmt.Errorf("purge audit events: %w", err)
		}

		logging.Ctx(ctx).Info().Int64("purged", purged).Msg("purged expired audit events")
		return nil
	}
}

// NewPurgeAuditEventsQueue creates a backlite queue for audit purge tasks.
func NewPurgeAuditEventsQueue(purger AuditPurger) backlite.Queue {
	return backlite.NewQueue(instrumented(PurgeAuditEventsProcessor(purger)))
}
