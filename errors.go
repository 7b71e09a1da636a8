package flowdag

import (
	"errors"
	"fmt"
)

const Namespace = "flowdag"

var (
	// ErrTargetMissing is returned when a task's action completed without
	// producing one of its declared targets.
	ErrTargetMissing = errors.New(Namespace + ": target missing after task execution")

	// ErrParentFailed marks a task that was never executed because a
	// predecessor in the dependency graph failed or was itself synthesized
	// as failed.
	ErrParentFailed = errors.New(Namespace + ": predecessor task failed")

	// ErrSerialization is returned when a task cannot be converted to a
	// Payload for shipment to a worker pool (a callable action, or a
	// dependency/target with no wire representation).
	ErrSerialization = errors.New(Namespace + ": task cannot be serialized for this runner")

	// ErrDeserialization is returned when a worker process cannot
	// reconstruct a task from a Payload it received.
	ErrDeserialization = errors.New(Namespace + ": payload could not be reconstructed")

	// ErrNoRoute is returned by a GridRunner when a task's route names a
	// pool that was never registered.
	ErrNoRoute = errors.New(Namespace + ": no pool registered for route")

	// ErrInvalidConfig guards RunContext/Runner construction.
	ErrInvalidConfig = errors.New(Namespace + ": invalid configuration")

	// ErrAlreadyRunning guards against starting a runner twice.
	ErrAlreadyRunning = errors.New(Namespace + ": runner already started")
)

// TaskFailedError tags an error with the number of the task that produced
// it, so callers can errors.As their way to the failing task without
// threading it through every return value by hand.
type TaskFailedError struct {
	taskNo int
	name   string
	err    error
}

func newTaskFailedError(taskNo int, name string, err error) error {
	if err == nil {
		return nil
	}
	return &TaskFailedError{taskNo: taskNo, name: name, err: err}
}

func (e *TaskFailedError) Error() string {
	return fmt.Sprintf("%s: task %d (%s) failed: %v", Namespace, e.taskNo, e.name, e.err)
}

func (e *TaskFailedError) Unwrap() error { return e.err }

// TaskNo returns the number of the task that failed.
func (e *TaskFailedError) TaskNo() int { return e.taskNo }

// TaskName returns the name of the task that failed.
func (e *TaskFailedError) TaskName() string { return e.name }

// AsTaskFailed extracts a *TaskFailedError from err, if present anywhere in
// its chain.
func AsTaskFailed(err error) (*TaskFailedError, bool) {
	var tfe *TaskFailedError
	if errors.As(err, &tfe) {
		return tfe, true
	}
	return nil, false
}

// RunFailed aggregates the per-task errors of a completed run. It is what
// Runner.RunTasks returns when one or more tasks failed.
type RunFailed struct {
	Failures []error
}

func (e *RunFailed) Error() string {
	return fmt.Sprintf("%s: %d task(s) failed: %v", Namespace, len(e.Failures), errors.Join(e.Failures...))
}

func (e *RunFailed) Unwrap() []error { return e.Failures }

// joinFailures returns nil if failures is empty and a *RunFailed holding
// every failure otherwise, a single one included.
func joinFailures(failures []error) error {
	if len(failures) == 0 {
		return nil
	}
	return &RunFailed{Failures: failures}
}
