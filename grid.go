package flowdag

import (
	"context"
	"encoding/gob"
	"fmt"
	"sync"
	"time"

	"github.com/relaydag/flowdag/pool"
)

func init() {
	gob.Register(Payload{})
}

// RouteFunc assigns a task to the name of the pool that should run it. A
// GridRunner from NewGridRunner routes every task to "default" until
// SetRoute replaces the route.
type RouteFunc func(taskNo int, name string) (poolName string)

func defaultRoute(int, string) string { return "default" }

// GridRunner generalizes ParallelLocalRunner to N named pools, each a
// pool.TaskPool (goroutine-backed or process-backed), and fans results
// back in with fair round-robin polling rather than always draining
// whichever pool answers first, since with several pools to choose from
// a single-pool dispatch loop's implicit fairness no longer holds.
type GridRunner struct {
	mu    sync.Mutex
	pools map[string]pool.TaskPool
	order []string // registration order, for round-robin
	route RouteFunc
}

// NewGridRunner builds an empty GridRunner; register pools with AddPool
// before calling RunTasks.
func NewGridRunner() *GridRunner {
	return &GridRunner{pools: make(map[string]pool.TaskPool), route: defaultRoute}
}

// NewGoroutineGridPool builds a goroutine-backed pool.TaskPool ready to
// register with a GridRunner via AddPool. Its jobs carry a *Task directly
// (see GridRunner.RunTasks), so it can run callable actions and
// TrackedFunction dependencies that a ProcessPool cannot.
func NewGoroutineGridPool(name string, workers int) *pool.GoroutinePool {
	return pool.NewGoroutinePool(name, workers, func(ctx context.Context, job pool.Job) pool.Result {
		task, ok := job.Payload.(*Task)
		if !ok {
			return pool.Result{TaskNo: job.TaskNo, Name: job.Name, Err: fmt.Errorf("%s: goroutine pool received non-task payload", Namespace)}
		}
		started := time.Now()
		result := runTaskLocally(ctx, task)
		return pool.Result{
			TaskNo:      result.TaskNo,
			Name:        result.Name,
			Err:         result.Err,
			Elapsed:     time.Since(started),
			DepKeys:     result.DepKeys,
			DepCompares: result.DepCompares,
		}
	})
}

// NewProcessGridPool spawns n "flowdag worker" child processes (running
// executablePath with the hidden "worker" subcommand appended to
// extraArgs) and returns them as a single named pool.TaskPool, ready to
// register with a GridRunner via AddPool. Tasks
// routed here must be fully shippable: their dependencies/targets all
// implement a wire Spec and their actions are shell commands, not
// callables — see Task.toPayload.
func NewProcessGridPool(name string, n int, executablePath string, extraArgs ...string) (*pool.ProcessPool, error) {
	args := append(append([]string(nil), extraArgs...), "worker")
	return pool.NewProcessPool(name, n, executablePath, args...)
}

// AddPool registers a named pool. Calling it again with a name already in
// use replaces the previous pool without terminating it — callers that
// need that should Terminate the old pool themselves first.
func (g *GridRunner) AddPool(name string, p pool.TaskPool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.pools[name]; !exists {
		g.order = append(g.order, name)
	}
	g.pools[name] = p
}

// SetRoute overrides how tasks are assigned to pools. The default routes
// every task to the pool named "default".
func (g *GridRunner) SetRoute(route RouteFunc) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.route = route
}

func (g *GridRunner) poolFor(taskNo int, name string) (pool.TaskPool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	poolName := g.route(taskNo, name)
	p, ok := g.pools[poolName]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoRoute, poolName)
	}
	return p, nil
}

func (g *GridRunner) allPools() []pool.TaskPool {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]pool.TaskPool, 0, len(g.order))
	for _, n := range g.order {
		out = append(out, g.pools[n])
	}
	return out
}

func (g *GridRunner) RunTasks(ctx context.Context, rc *RunContext) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	rc.bindCancel(cancel)

	deque := NewReadyDeque(rc.DAG.TopoOrder())

	var pending sync.WaitGroup
	stopCollecting := make(chan struct{})
	var collectWG sync.WaitGroup
	collectWG.Add(1)
	go func() {
		defer collectWG.Done()
		g.collectResults(rc, &pending, stopCollecting)
	}()
	shutdown := newShutdownSequence(func() {}, &pending, stopCollecting, &collectWG)

	runReadyDeque(ctx, rc, deque, func(taskNo int) {
		task := rc.DAG.Tasks[taskNo]

		skip, serr := rc.shouldSkip(task)
		if serr != nil {
			rc.handleTaskResult(exceptionResult(task, time.Now(), serr))
			return
		}
		if skip {
			rc.handleTaskSkipped(taskNo, task.Name)
			return
		}

		p, perr := g.poolFor(taskNo, task.Name)
		if perr != nil {
			rc.handleTaskResult(exceptionResult(task, time.Now(), perr))
			return
		}

		job := pool.Job{TaskNo: task.No, Name: task.Name}
		if _, isProcess := p.(*pool.ProcessPool); isProcess {
			// Only the wire transport needs plain-data Payload; a
			// goroutine-backed pool runs in this process and can execute
			// a *Task directly, callable actions included.
			payload, serr := task.toPayload()
			if serr != nil {
				rc.handleTaskResult(exceptionResult(task, time.Now(), serr))
				return
			}
			job.Payload = *payload
		} else {
			job.Payload = task
		}

		rc.handleTaskStarted(taskNo, task.Name)
		pending.Add(1)
		if err := p.Submit(ctx, job); err != nil {
			pending.Done()
			rc.handleTaskResult(exceptionResult(task, time.Now(), err))
		}
	})

	shutdown.Close()

	err := joinFailures(rc.Failures())
	rc.Reporter.RunFinished(err)
	return err
}

// collectResults fans in every pool's results channel with a fair
// round-robin poll: cycle through pools, take at most one result per pool
// per pass, and sleep briefly when a full pass yields nothing, mirroring
// the original's itertools.cycle-plus-Queue.Empty-backoff polling loop.
func (g *GridRunner) collectResults(rc *RunContext, pending *sync.WaitGroup, stop <-chan struct{}) {
	for {
		pools := g.allPools()
		gotAny := false

		for _, p := range pools {
			select {
			case r := <-p.Results():
				gotAny = true
				pending.Done()
				if r.Err != nil {
					task := taskByNo(rc, r.TaskNo)
					rc.handleTaskResult(exceptionResult(task, time.Now(), r.Err))
					continue
				}
				task := taskByNo(rc, r.TaskNo)
				result := TaskResult{
					TaskNo:      r.TaskNo,
					Name:        r.Name,
					Started:     time.Now().Add(-r.Elapsed),
					Elapsed:     r.Elapsed,
					DepKeys:     r.DepKeys,
					DepCompares: r.DepCompares,
				}
				if err := rc.recordFingerprint(task, result); err != nil {
					result.Err = err
				}
				rc.handleTaskResult(result)
			default:
			}
		}

		select {
		case <-stop:
			return
		default:
		}

		if !gotAny {
			time.Sleep(50 * time.Millisecond)
		}
	}
}

func taskByNo(rc *RunContext, no int) *Task {
	for _, t := range rc.DAG.Tasks {
		if t.No == no {
			return t
		}
	}
	return &Task{No: no}
}
