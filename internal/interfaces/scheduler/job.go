package scheduler

import "context"

// Job is a unit of work executed by the worker pool.
type Job interface {
	// Execute must respect ctx cancellation.
	Execute(ctx context.Context) error

	UserID() string

	// Description is used for logging.
	Description() string
}
