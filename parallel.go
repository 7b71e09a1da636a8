package flowdag

import (
	"context"
	"sync"
	"time"
)

// ParallelLocalRunner executes ready tasks concurrently in this process,
// capped at a fixed number of simultaneously in-flight tasks: a dispatch
// loop hands each ready task to its own goroutine, and a semaphore bounds
// how many of them run at once.
type ParallelLocalRunner struct {
	jobs int
}

// NewParallelLocalRunner builds a runner that executes up to jobs tasks
// concurrently. jobs < 1 is treated as 1.
func NewParallelLocalRunner(jobs int) *ParallelLocalRunner {
	if jobs < 1 {
		jobs = 1
	}
	return &ParallelLocalRunner{jobs: jobs}
}

func (r *ParallelLocalRunner) RunTasks(ctx context.Context, rc *RunContext) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	rc.bindCancel(cancel)

	deque := NewReadyDeque(rc.DAG.TopoOrder())
	sem := make(chan struct{}, r.jobs)
	var inflight sync.WaitGroup

	runReadyDeque(ctx, rc, deque, func(taskNo int) {
		task := rc.DAG.Tasks[taskNo]

		skip, serr := rc.shouldSkip(task)
		if serr != nil {
			rc.handleTaskResult(exceptionResult(task, time.Now(), serr))
			return
		}
		if skip {
			rc.handleTaskSkipped(taskNo, task.Name)
			return
		}

		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			rc.handleTaskResult(parentFailedResult(task))
			return
		}

		rc.handleTaskStarted(taskNo, task.Name)
		inflight.Add(1)
		go func(t *Task) {
			defer inflight.Done()
			defer func() { <-sem }()

			result := runTaskLocally(ctx, t)

			if !result.Failed() {
				if err := rc.recordFingerprint(t, result); err != nil {
					result.Err = err
				}
			}
			rc.handleTaskResult(result)
		}(task)
	})

	inflight.Wait()
	err := joinFailures(rc.Failures())
	rc.Reporter.RunFinished(err)
	return err
}
