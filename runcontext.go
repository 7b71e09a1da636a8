package flowdag

import (
	"context"
	"sync"

	"github.com/relaydag/flowdag/internal/skipdb"
	"github.com/relaydag/flowdag/metrics"
)

// SkipBackend persists target fingerprints across runs so a task whose
// targets compare unchanged since its last successful run can be skipped
// instead of re-executed. A task's Depends are not fingerprinted.
type SkipBackend interface {
	Load(taskName string) (skipdb.Record, bool, error)
	Save(taskName string, rec skipdb.Record) error
}

// RunContext coordinates one execution of a DAG: it owns the skip
// decision, failure bookkeeping, and result collection that every Runner
// variant (serial, parallel-local, grid) shares, mirroring how the
// teacher's root type centralizes state that its FIFO/pooled executors
// both rely on rather than duplicating it per-variant.
type RunContext struct {
	DAG      *DAG
	Skip     SkipBackend
	Reporter Reporter
	Metrics  metrics.Provider

	quitEarly bool

	mu       sync.Mutex
	finished map[int]bool
	failed   map[int]bool
	results  map[int]TaskResult

	cancel context.CancelFunc
}

// NewRunContext builds a coordinator for dag. Options that are left out, or
// given nil, keep the defaults (no skip persistence, a no-op reporter, a
// no-op metrics provider).
func NewRunContext(dag *DAG, opts ...RunContextOption) *RunContext {
	rc := &RunContext{
		DAG:      dag,
		Reporter: noopReporter{},
		Metrics:  metrics.NewNoopProvider(),
		finished: make(map[int]bool, len(dag.Tasks)),
		failed:   make(map[int]bool, len(dag.Tasks)),
		results:  make(map[int]TaskResult, len(dag.Tasks)),
	}
	for _, o := range opts {
		o(rc)
	}
	return rc
}

// RunContextOption configures a RunContext at construction time.
type RunContextOption func(*RunContext)

func WithSkipBackend(s SkipBackend) RunContextOption {
	return func(rc *RunContext) { rc.Skip = s }
}

func WithReporter(r Reporter) RunContextOption {
	return func(rc *RunContext) {
		if r != nil {
			rc.Reporter = r
		}
	}
}

func WithMetricsProvider(p metrics.Provider) RunContextOption {
	return func(rc *RunContext) {
		if p != nil {
			rc.Metrics = p
		}
	}
}

// WithQuitEarly makes the run cancel remaining dispatch as soon as the
// first task fails, rather than letting independent branches of the graph
// keep running to completion.
func WithQuitEarly() RunContextOption {
	return func(rc *RunContext) { rc.quitEarly = true }
}

func (rc *RunContext) bindCancel(cancel context.CancelFunc) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.cancel = cancel
}

// gateDecision is what the pre-dispatch gate decides for a candidate task.
type gateDecision int

const (
	gateDispatch gateDecision = iota
	gateDefer
	gateSynthesizeFailure
)

// gate inspects taskNo's predecessors and decides whether it can be
// dispatched now, must wait (some predecessor hasn't finished), or should
// be synthesized as failed without running (a predecessor failed).
func (rc *RunContext) gate(taskNo int) gateDecision {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	task := rc.DAG.Tasks[taskNo]
	for _, p := range task.Preds {
		if rc.failed[p] {
			return gateSynthesizeFailure
		}
		if !rc.finished[p] {
			return gateDefer
		}
	}
	return gateDispatch
}

func (rc *RunContext) handleTaskStarted(taskNo int, name string) {
	rc.Reporter.TaskStarted(taskNo, name)
}

func (rc *RunContext) handleTaskSkipped(taskNo int, name string) {
	rc.mu.Lock()
	rc.finished[taskNo] = true
	rc.mu.Unlock()
	rc.Reporter.TaskSkipped(taskNo, name)
	rc.Metrics.Counter("flowdag_tasks_skipped_total").Add(1)
}

// handleTaskResult records result, tagging the task failed/finished for
// the gate, and cancels the run if quitEarly is set and this is the first
// failure.
func (rc *RunContext) handleTaskResult(result TaskResult) {
	rc.mu.Lock()
	rc.finished[result.TaskNo] = true
	rc.results[result.TaskNo] = result
	firstFailure := false
	if result.Failed() {
		if !rc.failed[result.TaskNo] {
			firstFailure = true
		}
		rc.failed[result.TaskNo] = true
	}
	cancel := rc.cancel
	quitEarly := rc.quitEarly
	rc.mu.Unlock()

	rc.Reporter.TaskFinished(result)
	if result.Failed() {
		rc.Metrics.Counter("flowdag_tasks_failed_total").Add(1)
	} else {
		rc.Metrics.Counter("flowdag_tasks_run_total").Add(1)
	}
	rc.Metrics.Histogram("flowdag_task_duration_seconds").Record(result.Elapsed.Seconds())

	if firstFailure && quitEarly && cancel != nil {
		cancel()
	}
}

// Results returns a copy of every TaskResult recorded so far, keyed by
// task number.
func (rc *RunContext) Results() map[int]TaskResult {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	out := make(map[int]TaskResult, len(rc.results))
	for k, v := range rc.results {
		out[k] = v
	}
	return out
}

// Failures returns the errors of every failed task, in task-number order.
func (rc *RunContext) Failures() []error {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	var out []error
	for i := 0; i < len(rc.DAG.Tasks); i++ {
		if r, ok := rc.results[i]; ok && r.Failed() {
			out = append(out, r.Err)
		}
	}
	return out
}
