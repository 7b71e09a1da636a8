package main

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/relaydag/flowdag"
	"github.com/relaydag/flowdag/pool"
)

// workerCmd is the child-process entrypoint a GridRunner's process-backed
// pool spawns: it reads gob-encoded pool.Job values from stdin, executes
// each as a flowdag.Payload, and writes a gob-encoded pool.Result to
// stdout. It is never meant to be invoked by a person.
var workerCmd = &cobra.Command{
	Use:    "worker",
	Hidden: true,
	Short:  "Internal: process-pool worker entrypoint. Do not run directly.",
	RunE:   runWorker,
}

func runWorker(_ *cobra.Command, _ []string) error {
	dec := gob.NewDecoder(os.Stdin)
	enc := gob.NewEncoder(os.Stdout)
	ctx := context.Background()

	for {
		var job pool.Job
		if err := dec.Decode(&job); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("worker: decode job: %w", err)
		}

		payload, ok := job.Payload.(flowdag.Payload)
		if !ok {
			if err := pool.EncodeResult(enc, pool.Result{TaskNo: job.TaskNo, Name: job.Name, Err: fmt.Errorf("worker: job payload is not a flowdag.Payload")}); err != nil {
				return fmt.Errorf("worker: encode result: %w", err)
			}
			continue
		}

		result := flowdag.RunPayload(ctx, &payload)
		wr := pool.Result{
			TaskNo:      result.TaskNo,
			Name:        result.Name,
			Err:         result.Err,
			Elapsed:     result.Elapsed,
			DepKeys:     result.DepKeys,
			DepCompares: result.DepCompares,
		}
		if err := pool.EncodeResult(enc, wr); err != nil {
			return fmt.Errorf("worker: encode result: %w", err)
		}
	}
}
