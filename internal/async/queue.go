// Package async runs invoice processing off a bounded in-process queue.
// Workers pull jobs and drive the pipeline; a full queue applies
// backpressure to the submitter rather than dropping work.
package async

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Job is one invoice PDF waiting to be processed.
type Job struct {
	ID          uuid.UUID
	Path        string // PDF location on disk
	Provider    string // vendor name; empty = auto-detect
	SubmittedAt time.Time
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
