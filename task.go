package flowdag

import (
	"context"
	"fmt"
	"time"

	"github.com/relaydag/flowdag/target"
)

// ActionFunc is an in-process callable action. Like a Python closure handed
// to anadama2, it cannot cross a process boundary: a Task whose Actions
// contain a non-nil Func runs under SerialLocalRunner, ParallelLocalRunner
// or a goroutine-backed grid pool; a process-backed pool rejects it, and
// DryRunner only lists it.
type ActionFunc func(ctx context.Context, depends []target.Dependency, targets []target.Dependency) error

// Action is one step of a task's work. Exactly one of Command or Func
// should be set; Command is a shell command template (may reference
// "{depends}" and "{targets}"), Func is a direct Go callable.
type Action struct {
	Command string
	Func    ActionFunc
}

func (a Action) isCallable() bool { return a.Func != nil }

// Task is one node of the graph: a set of actions to run once its
// predecessor tasks have finished, producing a set of targets. It is
// skipped instead when its targets compare unchanged since its last
// successful run; a change to Depends alone does not make it run again.
type Task struct {
	No        int
	Name      string
	Actions   []Action
	Depends   []target.Dependency
	Targets   []target.Dependency
	Preds     []int // predecessor task numbers, for DAG edges from TaskRef depends
	AlwaysRun bool  // run even if targets are unchanged (no skip check)
}

// toPayload converts a Task into a Payload suitable for shipping across a
// worker-pool boundary. It fails with ErrSerialization if the task contains
// a callable action or a dependency/target that has no wire representation.
func (t *Task) toPayload() (*Payload, error) {
	p := &Payload{No: t.No, Name: t.Name, AlwaysRun: t.AlwaysRun, Preds: append([]int(nil), t.Preds...)}

	for _, a := range t.Actions {
		if a.isCallable() {
			return nil, newTaskFailedError(t.No, t.Name, ErrSerialization)
		}
		p.Commands = append(p.Commands, a.Command)
	}

	deps, err := specAll(t.Depends)
	if err != nil {
		return nil, newTaskFailedError(t.No, t.Name, fmt.Errorf("%w: %v", ErrSerialization, err))
	}
	p.Depends = deps

	tgts, err := specAll(t.Targets)
	if err != nil {
		return nil, newTaskFailedError(t.No, t.Name, fmt.Errorf("%w: %v", ErrSerialization, err))
	}
	p.Targets = tgts

	return p, nil
}

func specAll(deps []target.Dependency) ([]depSpec, error) {
	out := make([]depSpec, 0, len(deps))
	for _, d := range deps {
		kind, params, err := target.Spec(d)
		if err != nil {
			return nil, err
		}
		out = append(out, depSpec{Kind: kind, Params: params})
	}
	return out, nil
}

// depSpec is the flat, gob-friendly wire shape of a Dependency.
type depSpec struct {
	Kind   string
	Params map[string]string
}

func (d depSpec) hydrate() (target.Dependency, error) {
	dep, err := target.FromSpec(d.Kind, d.Params)
	if err != nil {
		return nil, err
	}
	return dep, nil
}

// Payload is the plain-data shape of a Task that a process-backed worker
// pool receives (goroutine-backed pools get the *Task itself). Building one fails fast when the task isn't
// shippable instead of silently dropping the unshippable parts.
type Payload struct {
	No        int
	Name      string
	Commands  []string
	Depends   []depSpec
	Targets   []depSpec
	Preds     []int
	AlwaysRun bool
}

// TaskResult is what a run produces for one task, regardless of which
// Runner executed it. DepKeys/DepCompares are the task's target fingerprint
// as of this run — DepKeys[i] is Targets[i].Name() and DepCompares[i] is
// Targets[i].Compare() — set on every successful, non-skipped result so the
// skip backend has something to persist.
type TaskResult struct {
	TaskNo      int
	Name        string
	Skipped     bool
	Err         error
	Started     time.Time
	Elapsed     time.Duration
	DepKeys     []string
	DepCompares [][]string
}

func (r TaskResult) Failed() bool { return r.Err != nil }

// exceptionResult synthesizes a TaskResult for a task whose action raised.
func exceptionResult(t *Task, started time.Time, err error) TaskResult {
	return TaskResult{
		TaskNo:  t.No,
		Name:    t.Name,
		Err:     newTaskFailedError(t.No, t.Name, err),
		Started: started,
		Elapsed: time.Since(started),
	}
}

// parentFailedResult synthesizes a TaskResult for a task that is never
// executed because a predecessor failed.
func parentFailedResult(t *Task) TaskResult {
	return TaskResult{
		TaskNo: t.No,
		Name:   t.Name,
		Err:    newTaskFailedError(t.No, t.Name, ErrParentFailed),
	}
}
