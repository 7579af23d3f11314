// Package transport abstracts the external video-generation service.
package transport

import (
	"context"
	"fmt"

	"github.com/reelgate/reelgate/pkg/models"
)

// JobUpdate is one observation of a job's state.
type JobUpdate struct {
	Status    models.JobStatus
	OutputRef string
}

// Transport submits and tracks generation jobs. Poll is idempotent and safe
// to call repeatedly; Submit is not and must be called at most once per
// authorized entry.
type Transport interface {
	Submit(ctx context.Context, req models.GenerationRequest) (jobID string, err error)
	Poll(ctx context.Context, jobID string) (JobUpdate, error)
}

// Error wraps a failure talking to the generation service: network errors
// and non-2xx responses alike.
type Error struct {
	Op  string // "submit" or "poll"
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
