package flowdag

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/relaydag/flowdag/target"
)

// dryTypeLabel maps a dependency/target concrete type to the short label
// DryRunner prints, a direct port of the original's _typemap table.
var dryTypeLabel = map[string]string{
	"*target.TrackedFile":        "file",
	"*target.HugeTrackedFile":    "big_file",
	"*target.TrackedDirectory":   "directory",
	"*target.TrackedFilePattern": "glob",
	"*target.TrackedExecutable":  "executable",
	"*target.TrackedString":      "string",
	"*target.TrackedFunction":    "function",
	"*target.TaskRef":            "task",
}

// DryRunner prints what a run would do — task order, actions, and typed
// dependency/target listings — without executing anything or touching the
// skip backend.
type DryRunner struct {
	Out io.Writer
}

// NewDryRunner builds a DryRunner writing to w (os.Stdout if w is nil).
func NewDryRunner(w io.Writer) *DryRunner {
	if w == nil {
		w = os.Stdout
	}
	return &DryRunner{Out: w}
}

func (r *DryRunner) RunTasks(_ context.Context, rc *RunContext) error {
	for _, taskNo := range rc.DAG.TopoOrder() {
		task := rc.DAG.Tasks[taskNo]
		fmt.Fprintf(r.Out, "Task %d: %s\n", task.No, task.Name)

		for _, a := range task.Actions {
			if a.isCallable() {
				fmt.Fprintln(r.Out, "  action: <callable>")
			} else {
				fmt.Fprintf(r.Out, "  action: %s\n", a.Command)
			}
		}

		r.printDeps(task.Depends, "depends")
		r.printDeps(task.Targets, "targets")
	}
	rc.Reporter.RunFinished(nil)
	return nil
}

func (r *DryRunner) printDeps(deps []target.Dependency, label string) {
	for _, d := range deps {
		kind := dryTypeLabel[fmt.Sprintf("%T", d)]
		if kind == "" {
			kind = fmt.Sprintf("%T", d)
		}
		fmt.Fprintf(r.Out, "  %s (%s): %s\n", label, kind, d.Name())
	}
}
