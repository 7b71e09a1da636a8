package pool

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"
)

// wireResult is the gob-friendly shape a worker process actually writes to
// its stdout: error is an interface and most concrete error types carry
// unexported fields gob cannot encode, so the error text crosses the wire
// as a plain string and is rehydrated into a generic error locally.
type wireResult struct {
	TaskNo      int
	Name        string
	ErrMsg      string
	Elapsed     time.Duration
	DepKeys     []string
	DepCompares [][]string
}

func (w wireResult) toResult() Result {
	r := Result{TaskNo: w.TaskNo, Name: w.Name, Elapsed: w.Elapsed, DepKeys: w.DepKeys, DepCompares: w.DepCompares}
	if w.ErrMsg != "" {
		r.Err = errors.New(w.ErrMsg)
	}
	return r
}

// EncodeResult is used by a worker subcommand to write its outcome back to
// the parent process.
func EncodeResult(enc *gob.Encoder, r Result) error {
	msg := ""
	if r.Err != nil {
		msg = r.Err.Error()
	}
	return enc.Encode(wireResult{
		TaskNo:      r.TaskNo,
		Name:        r.Name,
		ErrMsg:      msg,
		Elapsed:     r.Elapsed,
		DepKeys:     r.DepKeys,
		DepCompares: r.DepCompares,
	})
}

// ProcessPool runs its workers as real child OS processes (via os/exec),
// giving the grid a genuinely isolated transport alongside GoroutinePool:
// a bug or panic in one worker process cannot take down the runner. Jobs
// and results cross the process boundary as gob-encoded values over each
// child's stdin/stdout, so Job.Payload must be a concrete, gob-registered
// type (see flowdag.Payload) — a callable action or an unspecable
// dependency never reaches this pool because Task.toPayload rejects it
// before Submit is ever called.
type ProcessPool struct {
	name    string
	workers []*processWorker
	next    int
	mu      sync.Mutex
	results chan Result
}

type processWorker struct {
	cmd *exec.Cmd
	enc *gob.Encoder
	dec *gob.Decoder
	mu  sync.Mutex
}

// NewProcessPool spawns n child processes by running command (and args),
// expected to be the same binary's hidden "worker" subcommand, reading
// gob-encoded Jobs from stdin and writing gob-encoded Results to stdout.
func NewProcessPool(name string, n int, command string, args ...string) (*ProcessPool, error) {
	if n < 1 {
		n = 1
	}
	p := &ProcessPool{name: name, results: make(chan Result, n*2)}

	for i := 0; i < n; i++ {
		w, err := spawnProcessWorker(command, args...)
		if err != nil {
			p.Terminate()
			return nil, fmt.Errorf("pool: spawn worker %d for %s: %w", i, name, err)
		}
		p.workers = append(p.workers, w)
		go p.collect(w)
	}

	return p, nil
}

func spawnProcessWorker(command string, args ...string) (*processWorker, error) {
	cmd := exec.Command(command, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &processWorker{cmd: cmd, enc: gob.NewEncoder(stdin), dec: gob.NewDecoder(stdout)}, nil
}

func (p *ProcessPool) collect(w *processWorker) {
	for {
		var wr wireResult
		if err := w.dec.Decode(&wr); err != nil {
			if !errors.Is(err, io.EOF) {
				p.results <- Result{Err: fmt.Errorf("pool: decode result from %s worker: %w", p.name, err)}
			}
			return
		}
		p.results <- wr.toResult()
	}
}

func (p *ProcessPool) Name() string { return p.name }

func (p *ProcessPool) Submit(ctx context.Context, job Job) error {
	p.mu.Lock()
	w := p.workers[p.next%len(p.workers)]
	p.next++
	p.mu.Unlock()

	w.mu.Lock()
	defer w.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- w.enc.Encode(job) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *ProcessPool) Results() <-chan Result { return p.results }

// Terminate kills every worker process and waits for them to exit.
func (p *ProcessPool) Terminate() {
	for _, w := range p.workers {
		if w.cmd.Process != nil {
			_ = w.cmd.Process.Kill()
		}
	}
	for _, w := range p.workers {
		_ = w.cmd.Wait()
	}
}
