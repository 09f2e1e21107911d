package tasks

import (
	"context"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/foodgram/internal/metrics"
)

// instrumented counts every run of p by queue name and outcome.
func instrumented[T backlite.Task](p backlite.QueueProcessor[T]) backlite.QueueProcessor[T] {
	return func(ctx context.Context, task T) error {
		err := p(ctx, task)
		outcome := "success"
		if err != nil {
			outcome = "failure"
		}
		metrics.TasksProcessed.WithLabelValues(task.Config().Name, outcome).Inc()
		return err
	}
}
