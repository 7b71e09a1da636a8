package flowdag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/relaydag/flowdag/target"
)

func TestSerialLocalRunner_RunsTasksInTopoOrder(t *testing.T) {
	var order []string

	record := func(name string) ActionFunc {
		return func(context.Context, []target.Dependency, []target.Dependency) error {
			order = append(order, name)
			return nil
		}
	}

	tasks := []*Task{
		{No: 0, Name: "a", Actions: []Action{{Func: record("a")}}},
		{No: 1, Name: "b", Actions: []Action{{Func: record("b")}}, Depends: []target.Dependency{target.NewTaskRef(0, "a")}},
	}
	dag, err := NewDAG(tasks)
	require.NoError(t, err)

	rc := NewRunContext(dag)
	err = NewSerialLocalRunner().RunTasks(context.Background(), rc)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, order)
}

func TestSerialLocalRunner_PropagatesFailureToDependents(t *testing.T) {
	failing := ActionFunc(func(context.Context, []target.Dependency, []target.Dependency) error {
		return ErrTargetMissing
	})
	ran := false
	dependent := ActionFunc(func(context.Context, []target.Dependency, []target.Dependency) error {
		ran = true
		return nil
	})

	tasks := []*Task{
		{No: 0, Name: "a", Actions: []Action{{Func: failing}}},
		{No: 1, Name: "b", Actions: []Action{{Func: dependent}}, Depends: []target.Dependency{target.NewTaskRef(0, "a")}},
	}
	dag, err := NewDAG(tasks)
	require.NoError(t, err)

	rc := NewRunContext(dag)
	err = NewSerialLocalRunner().RunTasks(context.Background(), rc)
	require.Error(t, err)
	require.False(t, ran, "dependent task must not run after its predecessor failed")
}
