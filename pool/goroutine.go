package pool

import (
	"context"
	"sync"
)

// ExecuteFunc runs one Job and produces its Result. The pool package has
// no knowledge of what a Job actually contains; the caller supplies this
// function so pool stays free of any dependency on the task-graph types
// it serves.
type ExecuteFunc func(ctx context.Context, job Job) Result

// GoroutinePool is a fixed-size, in-process worker pool: N goroutines pull
// from a shared jobs channel and push to a shared results channel,
// parameterized over an injected execute function instead of a concrete
// task type.
type GoroutinePool struct {
	name    string
	jobs    chan Job
	results chan Result
	wg      sync.WaitGroup

	closeOnce sync.Once
	done      chan struct{}
}

// NewGoroutinePool starts workers goroutines under name, each running jobs
// through execute.
func NewGoroutinePool(name string, workers int, execute ExecuteFunc) *GoroutinePool {
	if workers < 1 {
		workers = 1
	}
	p := &GoroutinePool{
		name:    name,
		jobs:    make(chan Job, workers*2),
		results: make(chan Result, workers*2),
		done:    make(chan struct{}),
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer p.wg.Done()
			for {
				select {
				case job, ok := <-p.jobs:
					if !ok {
						return
					}
					p.results <- execute(context.Background(), job)
				case <-p.done:
					return
				}
			}
		}()
	}

	return p
}

func (p *GoroutinePool) Name() string { return p.name }

func (p *GoroutinePool) Submit(ctx context.Context, job Job) error {
	select {
	case <-p.done:
		return context.Canceled
	default:
	}
	select {
	case p.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.done:
		return context.Canceled
	}
}

func (p *GoroutinePool) Results() <-chan Result { return p.results }

// Terminate stops accepting new jobs and signals every worker goroutine to
// exit once it finishes whatever it is currently running.
func (p *GoroutinePool) Terminate() {
	p.closeOnce.Do(func() { close(p.done) })
	p.wg.Wait()
}
