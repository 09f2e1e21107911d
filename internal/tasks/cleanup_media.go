package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/foodgram/internal/logging"
)

// DefaultOrphanMinAge keeps freshly uploaded images whose recipe may still
// be in flight.
const DefaultOrphanMinAge = time.Hour

// ImageIndex lists the image paths referenced by recipes.
type ImageIndex interface {
	ImagePaths(ctx context.Context) (map[string]bool, error)
}

// OrphanStore finds and deletes unreferenced media files.
type OrphanStore interface {
	Orphans(inUse map[string]bool, minAge time.Duration, now time.Time) ([]string, error)
	Delete(relPath string) error
}

// CleanupOrphanMediaTask removes recipe images no recipe references.
type CleanupOrphanMediaTask struct {
	MinAgeMinutes int `json:"min_age_minutes"`
}

// Config returns the queue configuration for media cleanup tasks.
func (t CleanupOrphanMediaTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_orphan_media",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

func (t CleanupOrphanMediaTask) minAge() time.Duration {
	if t.MinAgeMinutes <= 0 {
		return DefaultOrphanMinAge
	}
	return time.Duration(t.MinAgeMinutes) * time.Minute
}

// CleanupOrphanMediaProcessor creates a processor function for CleanupOrphanMediaTask.
// A file that cannot be deleted is logged and skipped.
func CleanupOrphanMediaProcessor(index ImageIndex, store OrphanStore) backlite.QueueProcessor[CleanupOrphanMediaTask] {
	return func(ctx context.Context, task CleanupOrphanMediaTask) error {
		if index == nil || store == nil {
			return fmt.Errorf("media cleanup not configured")
		}

		inUse, err := index.ImagePaths(ctx)
		if err != nil {
			return fmt.Errorf("list recipe images: %w", err)
		}
		orphans, err := store.Orphans(inUse, task.minAge(), time.Now())
		if err != nil {
			return fmt.Errorf("find orphan media: %w", err)
		}

		deleted := 0
		for _, rel := range orphans {
			if err := store.Delete(rel); err != nil {
				logging.Ctx(ctx).Warn().Err(err).Str("path", rel).Msg("failed to delete orphan image")
				continue
			}
			deleted++
		}

		logging.Ctx(ctx).Info().Int("deleted", deleted).Int("found", len(orphans)).Msg("cleaned up orphan media")
		return nil
	}
}

// NewCleanupOrphanMediaQueue creates a backlite queue for media cleanup tasks.
func NewCleanupOrphanMediaQueue(index ImageIndex, store OrphanStore) backlite.Queue {
	return backlite.NewQueue(instrumented(CleanupOrphanMediaProcessor(index, store)))
}
