package imagejob

import (
	"context"
	"errors"
	"time"
)

// RetentionWindow is how long job records are kept before the sweep
// deletes them. Long enough to cover a slow batch plus the client's
// polling ceiling.
const RetentionWindow = time.Hour

// ErrAlreadyExists is returned when creating a job whose id is taken.
var ErrAlreadyExists = errors.New("job already exists")

// Store is keyed persistence for job records, shared by the submitter
// (write on create), the callback receiver (write on each delivery) and
// the status endpoint (read on each poll).
//
// Get returns nil (not an error) for unknown or unparseable records: a
// single corrupted record must never take down the store. Update applies
// a read-modify-write and returns nil without invoking the updater when
// the job does not exist. Sweep deletes records older than the retention
// window and self-heals by deleting records that fail to parse.
type Store interface {
	Create(ctx context.Context, job *Job) error
	Get(ctx context.Context, id string) *Job
	Update(ctx context.Context, id string, fn func(*Job)) *Job
	Sweep(ctx context.Context)
}
