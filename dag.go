package flowdag

import (
	"fmt"

	"github.com/relaydag/flowdag/internal/graph"
	"github.com/relaydag/flowdag/target"
)

// DAG is the built, validated task graph a Runner executes. Build it with
// NewDAG rather than constructing it directly: NewDAG wires TaskRef
// dependencies into graph edges and deduplicates dependency objects that
// share a Name() so two tasks tracking the same file compare the same
// fingerprint.
type DAG struct {
	Tasks []*Task
	g     *graph.Graph
}

// NewDAG validates tasks (no cycles, no dangling TaskRef) and returns a
// ready-to-run DAG. tasks must already have ascending, 0-based No fields
// matching their index.
func NewDAG(tasks []*Task) (*DAG, error) {
	for i, t := range tasks {
		if t.No != i {
			return nil, fmt.Errorf("flowdag: task %q has No=%d, expected %d", t.Name, t.No, i)
		}
	}

	arena := newDependencyArena()
	for _, t := range tasks {
		arena.intern(t.Depends)
		arena.intern(t.Targets)
	}

	g := graph.New(len(tasks))
	for _, t := range tasks {
		preds := map[int]struct{}{}
		for _, dep := range t.Depends {
			if ref, ok := dep.(*target.TaskRef); ok {
				if ref.TaskNo() < 0 || ref.TaskNo() >= len(tasks) {
					return nil, fmt.Errorf("flowdag: task %q depends on out-of-range task %d", t.Name, ref.TaskNo())
				}
				preds[ref.TaskNo()] = struct{}{}
			}
		}
		for p := range preds {
			g.AddEdge(p, t.No)
			t.Preds = append(t.Preds, p)
		}
	}

	if _, err := g.TopoOrder(); err != nil {
		return nil, err
	}

	return &DAG{Tasks: tasks, g: g}, nil
}

// TopoOrder returns the task numbers in an order where every task runs
// after all of its predecessors.
func (d *DAG) TopoOrder() []int {
	order, _ := d.g.TopoOrder() // validated acyclic at construction
	return order
}

// Successors returns the task numbers that directly depend on taskNo.
func (d *DAG) Successors(taskNo int) []int { return d.g.Successors(taskNo) }

// dependencyArena deduplicates Dependency objects by Name() so that two
// tasks tracking, say, the same file share one fingerprint source instead
// of hashing it twice with potentially divergent Compare() results.
type dependencyArena struct {
	byName map[string]target.Dependency
}

func newDependencyArena() *dependencyArena {
	return &dependencyArena{byName: make(map[string]target.Dependency)}
}

func (a *dependencyArena) intern(deps []target.Dependency) {
	for i, d := range deps {
		if existing, ok := a.byName[d.Name()]; ok {
			deps[i] = existing
			continue
		}
		a.byName[d.Name()] = d
	}
}
