package flowdag

import (
	"context"
	"sync"
	"time"
)

// Runner executes every task in a RunContext's DAG, honoring dependency
// order, skip decisions, and failure propagation, and returns a *RunFailed
// aggregating per-task errors (or nil if every task succeeded).
type Runner interface {
	RunTasks(ctx context.Context, rc *RunContext) error
}

// runReadyDeque drives the shared dispatch loop every Runner variant uses:
// pop the next ready task, gate it against its predecessors, and hand
// dispatchable tasks to dispatch. It returns once the deque itself is
// empty; dispatch may still have work in flight (a background goroutine
// or subprocess) that has not yet reported back through rc — the caller is
// responsible for waiting on that before reading rc.Failures().
//
// dispatch is expected to eventually call rc.handleTaskResult (directly,
// for synchronous runners, or from a worker goroutine/process for
// concurrent ones) for every task it accepts.
func runReadyDeque(ctx context.Context, rc *RunContext, deque *ReadyDeque, dispatch func(taskNo int)) {
	for {
		taskNo, ok := deque.PopBack()
		if !ok {
			break
		}

		switch rc.gate(taskNo) {
		case gateSynthesizeFailure:
			task := rc.DAG.Tasks[taskNo]
			rc.handleTaskResult(parentFailedResult(task))
		case gateDefer:
			deque.PushFront(taskNo)
			if deque.Len() == 1 {
				// Nothing else to try this pass; avoid spinning while we
				// wait for an in-flight predecessor to report back.
				time.Sleep(time.Millisecond)
			}
		case gateDispatch:
			select {
			case <-ctx.Done():
				task := rc.DAG.Tasks[taskNo]
				rc.handleTaskResult(parentFailedResult(task))
			default:
				dispatch(taskNo)
			}
		}
	}
}

// Default returns the Runner variant appropriate for jobs: SerialLocalRunner
// for jobs <= 1, ParallelLocalRunner otherwise.
func Default(jobs int) Runner {
	if jobs <= 1 {
		return NewSerialLocalRunner()
	}
	return NewParallelLocalRunner(jobs)
}

var (
	gridMu     sync.Mutex
	gridRunner *GridRunner
)

// CurrentGridRunner returns the process-wide GridRunner, constructing one
// on first use. Tests that need a clean slate between cases should call
// ResetGridRunner.
func CurrentGridRunner() *GridRunner {
	gridMu.Lock()
	defer gridMu.Unlock()
	if gridRunner == nil {
		gridRunner = NewGridRunner()
	}
	return gridRunner
}

// ResetGridRunner discards the process-wide GridRunner so the next call to
// CurrentGridRunner builds a fresh one. Intended for test teardown.
func ResetGridRunner() {
	gridMu.Lock()
	defer gridMu.Unlock()
	gridRunner = nil
}
