package flowdag

import (
	"context"
	"fmt"
	"time"
)

// hydrate rebuilds a *Task from a Payload, for a worker process that
// received it over the wire. Every dependency/target must carry a
// wire representation (callable actions and TrackedFunction dependencies
// never reach a Payload in the first place, see Task.toPayload).
func (p *Payload) hydrate() (*Task, error) {
	t := &Task{No: p.No, Name: p.Name, Preds: p.Preds, AlwaysRun: p.AlwaysRun}

	for _, c := range p.Commands {
		t.Actions = append(t.Actions, Action{Command: c})
	}
	for _, ds := range p.Depends {
		dep, err := ds.hydrate()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDeserialization, err)
		}
		t.Depends = append(t.Depends, dep)
	}
	for _, ds := range p.Targets {
		tgt, err := ds.hydrate()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDeserialization, err)
		}
		t.Targets = append(t.Targets, tgt)
	}

	return t, nil
}

// RunPayload rehydrates and executes a Payload in the current process. It
// is exported for the "flowdag worker" subcommand, which is the process
// side of a GridRunner's process-backed pool: the parent ships a Payload,
// this runs it and reports a TaskResult back.
func RunPayload(ctx context.Context, p *Payload) TaskResult {
	started := time.Now()
	task, err := p.hydrate()
	if err != nil {
		return TaskResult{TaskNo: p.No, Name: p.Name, Err: err, Started: started, Elapsed: time.Since(started)}
	}
	return runTaskLocally(ctx, task)
}
