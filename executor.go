package flowdag

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/relaydag/flowdag/internal/cmdparse"
	"github.com/relaydag/flowdag/internal/skipdb"
	"github.com/relaydag/flowdag/target"
)

// shouldSkip reports whether task's targets compare identically to the
// fingerprint recorded for its last successful run. A task with no targets,
// no skip backend, or AlwaysRun set is never skipped — there is nothing to
// compare a prior run against.
func (rc *RunContext) shouldSkip(task *Task) (bool, error) {
	if rc.Skip == nil || task.AlwaysRun || len(task.Targets) == 0 {
		return false, nil
	}

	prior, ok, err := rc.Skip.Load(task.Name)
	if err != nil {
		return false, fmt.Errorf("flowdag: load fingerprint for %s: %w", task.Name, err)
	}
	if !ok {
		return false, nil
	}

	current, err := compareAll(task.Targets)
	if err != nil {
		return false, err
	}
	return fingerprintsEqual(prior, skipdb.Record{DepKeys: depNames(task.Targets), DepCompares: current}), nil
}

// recordFingerprint persists the target fingerprint carried on result as the
// baseline for future skip checks, called after a successful, non-skipped
// run. It trusts result's DepKeys/DepCompares rather than recomparing the
// targets itself, since runTaskLocally (or the grid worker that produced
// result) already compared them once to confirm the run actually produced
// them.
func (rc *RunContext) recordFingerprint(task *Task, result TaskResult) error {
	if rc.Skip == nil || len(task.Targets) == 0 {
		return nil
	}
	return rc.Skip.Save(task.Name, skipdb.Record{DepKeys: result.DepKeys, DepCompares: result.DepCompares})
}

func depNames(deps []target.Dependency) []string {
	out := make([]string, len(deps))
	for i, d := range deps {
		out[i] = d.Name()
	}
	return out
}

func compareAll(deps []target.Dependency) ([][]string, error) {
	out := make([][]string, len(deps))
	for i, d := range deps {
		c, err := d.Compare()
		if err != nil {
			return nil, fmt.Errorf("flowdag: compare %s: %w", d.Name(), err)
		}
		out[i] = c
	}
	return out, nil
}

func fingerprintsEqual(a, b skipdb.Record) bool {
	if len(a.DepKeys) != len(b.DepKeys) || len(a.DepCompares) != len(b.DepCompares) {
		return false
	}
	for i := range a.DepKeys {
		if a.DepKeys[i] != b.DepKeys[i] {
			return false
		}
		if len(a.DepCompares[i]) != len(b.DepCompares[i]) {
			return false
		}
		for j := range a.DepCompares[i] {
			if a.DepCompares[i][j] != b.DepCompares[i][j] {
				return false
			}
		}
	}
	return true
}

// runTaskLocally executes every action of task in order, in the current
// process. Shell commands go through os/exec after {depends}/{targets}
// template expansion; callable actions run in-process behind a recover()
// that converts a panic into an error. On success it compares every target
// once and carries the result forward as the TaskResult's fingerprint, so
// callers never need to touch the targets again to persist it.
func runTaskLocally(ctx context.Context, task *Task) TaskResult {
	started := time.Now()

	for _, action := range task.Actions {
		if err := runAction(ctx, action, task); err != nil {
			return exceptionResult(task, started, err)
		}
	}

	keys := make([]string, len(task.Targets))
	compares := make([][]string, len(task.Targets))
	for i, tgt := range task.Targets {
		c, err := tgt.Compare()
		if err != nil {
			return exceptionResult(task, started, fmt.Errorf("%w: %s: %v", ErrTargetMissing, tgt.Name(), err))
		}
		keys[i] = tgt.Name()
		compares[i] = c
	}

	return TaskResult{
		TaskNo:      task.No,
		Name:        task.Name,
		Started:     started,
		Elapsed:     time.Since(started),
		DepKeys:     keys,
		DepCompares: compares,
	}
}

func runAction(ctx context.Context, action Action, task *Task) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("flowdag: action panicked: %v", p)
		}
	}()

	if action.isCallable() {
		return action.Func(ctx, task.Depends, task.Targets)
	}

	expanded := cmdparse.Expand(action.Command, depNames(task.Depends), depNames(task.Targets))
	cmd := exec.CommandContext(ctx, "sh", "-c", expanded)
	out, runErr := cmd.CombinedOutput()
	if runErr != nil {
		return fmt.Errorf("command %q: %w: %s", expanded, runErr, out)
	}
	return nil
}
