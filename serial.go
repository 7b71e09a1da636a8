package flowdag

import (
	"context"
	"time"
)

// SerialLocalRunner executes one task at a time in the calling goroutine,
// in topological order. Like ParallelLocalRunner and goroutine-backed grid
// pools, it runs callable actions and TrackedFunction dependencies
// in-process, since nothing here needs to cross a process boundary — a
// single straight-line execution path that trades concurrency for
// simplicity.
type SerialLocalRunner struct{}

// NewSerialLocalRunner builds a SerialLocalRunner.
func NewSerialLocalRunner() *SerialLocalRunner { return &SerialLocalRunner{} }

func (r *SerialLocalRunner) RunTasks(ctx context.Context, rc *RunContext) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	rc.bindCancel(cancel)

	deque := NewReadyDeque(rc.DAG.TopoOrder())

	runReadyDeque(ctx, rc, deque, func(taskNo int) {
		task := rc.DAG.Tasks[taskNo]

		skip, err := rc.shouldSkip(task)
		if err != nil {
			rc.handleTaskResult(exceptionResult(task, time.Now(), err))
			return
		}
		if skip {
			rc.handleTaskSkipped(taskNo, task.Name)
			return
		}

		rc.handleTaskStarted(taskNo, task.Name)
		result := runTaskLocally(ctx, task)
		if !result.Failed() {
			if err := rc.recordFingerprint(task, result); err != nil {
				result.Err = err
			}
		}
		rc.handleTaskResult(result)
	})

	err := joinFailures(rc.Failures())
	rc.Reporter.RunFinished(err)
	return err
}
