package flowdag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/relaydag/flowdag/internal/skipdb"
	"github.com/relaydag/flowdag/target"
)

type fakeSkipBackend struct {
	records map[string]skipdb.Record
}

func newFakeSkipBackend() *fakeSkipBackend {
	return &fakeSkipBackend{records: make(map[string]skipdb.Record)}
}

func (f *fakeSkipBackend) Load(taskName string) (skipdb.Record, bool, error) {
	rec, ok := f.records[taskName]
	return rec, ok, nil
}

func (f *fakeSkipBackend) Save(taskName string, rec skipdb.Record) error {
	f.records[taskName] = rec
	return nil
}

func TestRunTaskLocally_RunsShellCommand(t *testing.T) {
	task := &Task{No: 0, Name: "echo", Actions: []Action{{Command: "echo hi"}}}
	result := runTaskLocally(context.Background(), task)
	require.False(t, result.Failed())
}

func TestRunTaskLocally_FailsOnNonZeroExit(t *testing.T) {
	task := &Task{No: 0, Name: "fail", Actions: []Action{{Command: "exit 1"}}}
	result := runTaskLocally(context.Background(), task)
	require.True(t, result.Failed())
}

func TestRunTaskLocally_RecoversFromPanic(t *testing.T) {
	task := &Task{No: 0, Name: "panics", Actions: []Action{{Func: func(context.Context, []target.Dependency, []target.Dependency) error {
		panic("boom")
	}}}}
	result := runTaskLocally(context.Background(), task)
	require.True(t, result.Failed())
}

func TestRunTaskLocally_FailsWhenTargetMissing(t *testing.T) {
	task := &Task{
		No:      0,
		Name:    "notouch",
		Actions: []Action{{Command: "true"}},
		Targets: []target.Dependency{target.NewTrackedFile("/no/such/path/flowdag-test-missing")},
	}
	result := runTaskLocally(context.Background(), task)
	require.True(t, result.Failed())
	require.ErrorIs(t, result.Err, ErrTargetMissing)
}

func TestShouldSkip_FalseWithoutSkipBackend(t *testing.T) {
	rc := &RunContext{}
	skip, err := rc.shouldSkip(&Task{Targets: []target.Dependency{target.NewTrackedString("k", "v")}})
	require.NoError(t, err)
	require.False(t, skip)
}

func TestShouldSkip_FalseWhenAlwaysRun(t *testing.T) {
	rc := &RunContext{Skip: newFakeSkipBackend()}
	skip, err := rc.shouldSkip(&Task{AlwaysRun: true, Targets: []target.Dependency{target.NewTrackedString("k", "v")}})
	require.NoError(t, err)
	require.False(t, skip)
}

func TestShouldSkip_FalseWithNoTargets(t *testing.T) {
	rc := &RunContext{Skip: newFakeSkipBackend()}
	task := &Task{Name: "touch", Depends: []target.Dependency{target.NewTrackedString("env", "prod")}}
	require.NoError(t, rc.recordFingerprint(task, TaskResult{}))

	skip, err := rc.shouldSkip(task)
	require.NoError(t, err)
	require.False(t, skip)
}

func TestShouldSkip_TrueAfterMatchingRecordedFingerprint(t *testing.T) {
	rc := &RunContext{Skip: newFakeSkipBackend()}
	task := &Task{Name: "build", Targets: []target.Dependency{target.NewTrackedString("env", "prod")}}

	result := runTaskLocally(context.Background(), task)
	require.False(t, result.Failed())
	require.NoError(t, rc.recordFingerprint(task, result))

	skip, err := rc.shouldSkip(task)
	require.NoError(t, err)
	require.True(t, skip)
}

func TestShouldSkip_FalseAfterTargetChanges(t *testing.T) {
	rc := &RunContext{Skip: newFakeSkipBackend()}
	task := &Task{Name: "build", Targets: []target.Dependency{target.NewTrackedString("env", "prod")}}
	result := runTaskLocally(context.Background(), task)
	require.NoError(t, rc.recordFingerprint(task, result))

	task.Targets = []target.Dependency{target.NewTrackedString("env", "staging")}
	skip, err := rc.shouldSkip(task)
	require.NoError(t, err)
	require.False(t, skip)
}

func TestShouldSkip_TrueForNoDependsTouchTarget(t *testing.T) {
	rc := &RunContext{Skip: newFakeSkipBackend()}
	path := t.TempDir() + "/out.txt"
	task := &Task{
		Name:    "touch",
		Actions: []Action{{Command: "touch " + path}},
		Targets: []target.Dependency{target.NewTrackedFile(path)},
	}

	result := runTaskLocally(context.Background(), task)
	require.False(t, result.Failed())
	require.NoError(t, rc.recordFingerprint(task, result))

	skip, err := rc.shouldSkip(task)
	require.NoError(t, err)
	require.True(t, skip)
}
