// Package pool provides the two worker-pool transports a
// grid runner routes tasks to: GoroutinePool (in-process) and ProcessPool
// (real OS subprocesses). Both satisfy TaskPool so a grid can treat every
// named pool identically regardless of how it actually executes work.
package pool

import (
	"context"
	"time"
)

// Job is the unit of work a TaskPool executes: a task number, a name for
// reporting, and an opaque payload the pool's execute function knows how
// to run.
type Job struct {
	TaskNo  int
	Name    string
	Payload any
}

// Result is what a TaskPool reports back for a submitted Job. DepKeys and
// DepCompares carry the task's target fingerprint when Err is nil, plain
// data the caller can persist without reaching back into the task's
// dependency objects.
type Result struct {
	TaskNo      int
	Name        string
	Err         error
	Elapsed     time.Duration
	DepKeys     []string
	DepCompares [][]string
}

// TaskPool is a named worker pool a grid runner can submit jobs to and
// collect results from. Implementations must be safe for concurrent
// Submit calls.
type TaskPool interface {
	Name() string
	Submit(ctx context.Context, job Job) error
	Results() <-chan Result
	Terminate()
}
