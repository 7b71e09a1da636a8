package flowdag

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestRunContext(t *testing.T, tasks []*Task) *RunContext {
	t.Helper()
	dag, err := NewDAG(tasks)
	require.NoError(t, err)
	return NewRunContext(dag)
}

func TestRunContext_GateDispatchesRootTask(t *testing.T) {
	rc := newTestRunContext(t, []*Task{{No: 0, Name: "a"}})
	require.Equal(t, gateDispatch, rc.gate(0))
}

func TestRunContext_GateDefersUntilPredecessorFinishes(t *testing.T) {
	rc := newTestRunContext(t, []*Task{
		{No: 0, Name: "a"},
		{No: 1, Name: "b", Preds: []int{0}},
	})

	require.Equal(t, gateDefer, rc.gate(1))

	rc.handleTaskResult(TaskResult{TaskNo: 0, Name: "a"})
	require.Equal(t, gateDispatch, rc.gate(1))
}

func TestRunContext_GateSynthesizesFailureWhenPredecessorFailed(t *testing.T) {
	rc := newTestRunContext(t, []*Task{
		{No: 0, Name: "a"},
		{No: 1, Name: "b", Preds: []int{0}},
	})

	rc.handleTaskResult(exceptionResult(rc.DAG.Tasks[0], time.Now(), ErrTargetMissing))
	require.Equal(t, gateSynthesizeFailure, rc.gate(1))
}

func TestRunContext_FailuresCollectsOnlyFailedResults(t *testing.T) {
	rc := newTestRunContext(t, []*Task{
		{No: 0, Name: "a"},
		{No: 1, Name: "b"},
	})

	rc.handleTaskResult(TaskResult{TaskNo: 0, Name: "a"})
	rc.handleTaskResult(exceptionResult(rc.DAG.Tasks[1], time.Now(), ErrTargetMissing))

	failures := rc.Failures()
	require.Len(t, failures, 1)
	require.ErrorIs(t, failures[0], ErrTargetMissing)
}

func TestRunContext_QuitEarlyCancelsOnFirstFailure(t *testing.T) {
	rc := newTestRunContext(t, []*Task{{No: 0, Name: "a"}})
	rc.quitEarly = true

	canceled := false
	rc.bindCancel(func() { canceled = true })

	rc.handleTaskResult(exceptionResult(rc.DAG.Tasks[0], time.Now(), ErrTargetMissing))
	require.True(t, canceled)
}

func TestRunContext_HandleTaskSkippedMarksFinished(t *testing.T) {
	rc := newTestRunContext(t, []*Task{
		{No: 0, Name: "a"},
		{No: 1, Name: "b", Preds: []int{0}},
	})

	rc.handleTaskSkipped(0, "a")
	require.Equal(t, gateDispatch, rc.gate(1))
}
