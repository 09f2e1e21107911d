package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/foodgram/internal/logging"
)

// TokenPurger clears API tokens past their expiry.
type TokenPurger interface {
	PurgeExpiredTokens(ctx context.Context) (int64, error)
}

// PurgeExpiredTokensTask revokes API tokens older than the configured expiry.
type PurgeExpiredTokensTask struct{}

// Config returns the queue configuration for token purge tasks.
func (t PurgeExpiredTokensTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "purge_expired_tokens",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// PurgeExpiredTokensProcessor creates a processor function for PurgeExpiredTokensTask.
func PurgeExpiredTokensProcessor(purger TokenPurger) backlite.QueueProcessor[PurgeExpiredTokensTask] {
	return func(ctx context.Context, task PurgeExpiredTokensTask) error {
		if purger == nil {
			return fmt.Errorf("token purger not configured")
		}

		purged, err := purger.PurgeExpiredTokens(ctx)
		if err != nil {
			return fmt.Errorf("purge expired tokens: %w", err)
		}

		logging.Ctx(ctx).Info().Int64("purged", purged).Msg("purged expired API tokens")
		return nil
	}
}

// NewPurgeExpiredTokensQueue creates a backlite queue for token purge tasks.
func NewPurgeExpiredTokensQueue(purger TokenPurger) backlite.Queue {
	return backlite.NewQueue(instrumented(PurgeExpiredTokensProcessor(purger)))
}
