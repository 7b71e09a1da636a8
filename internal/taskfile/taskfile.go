// Package taskfile loads a declarative YAML description of a task graph,
// the on-disk format the flowdag CLI accepts so a graph doesn't have to be
// built by hand in Go source.
package taskfile

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/relaydag/flowdag"
	"github.com/relaydag/flowdag/target"
)

// Document is the root of a task-file: an ordered list of tasks. A task's
// position in the list is its task number, and Depends entries of kind
// "task_ref" refer to other tasks by that position.
type Document struct {
	Tasks []taskDecl `yaml:"tasks"`
}

type taskDecl struct {
	Name      string    `yaml:"name"`
	Actions   []string  `yaml:"actions"`
	Depends   []depDecl `yaml:"depends"`
	Targets   []depDecl `yaml:"targets"`
	AlwaysRun bool      `yaml:"always_run"`
}

type depDecl struct {
	Kind   string            `yaml:"type"`
	Params map[string]string `yaml:",inline"`
}

// Load parses raw YAML into a *flowdag.DAG.
func Load(raw []byte) (*flowdag.DAG, error) {
	var doc Document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("taskfile: parse: %w", err)
	}
	return build(doc)
}

func build(doc Document) (*flowdag.DAG, error) {
	tasks := make([]*flowdag.Task, len(doc.Tasks))

	for i, td := range doc.Tasks {
		task := &flowdag.Task{No: i, Name: td.Name, AlwaysRun: td.AlwaysRun}

		for _, cmd := range td.Actions {
			task.Actions = append(task.Actions, flowdag.Action{Command: cmd})
		}

		deps, err := resolveDeps(td.Depends)
		if err != nil {
			return nil, fmt.Errorf("taskfile: task %q depends: %w", td.Name, err)
		}
		task.Depends = deps

		targets, err := resolveDeps(td.Targets)
		if err != nil {
			return nil, fmt.Errorf("taskfile: task %q targets: %w", td.Name, err)
		}
		task.Targets = targets

		tasks[i] = task
	}

	return flowdag.NewDAG(tasks)
}

func resolveDeps(decls []depDecl) ([]target.Dependency, error) {
	out := make([]target.Dependency, 0, len(decls))
	for _, d := range decls {
		dep, err := target.FromSpec(d.Kind, d.Params)
		if err != nil {
			return nil, err
		}
		out = append(out, dep)
	}
	return out, nil
}
