// Package report implements a console Reporter backed by log/slog:
// structured key/value lines to stderr for every lifecycle event, so a run
// can be piped into a log aggregator the same way the commands it wraps
// already are.
package report

import (
	"log/slog"

	"github.com/relaydag/flowdag"
)

// Console logs task lifecycle events via a slog.Logger. It implements
// flowdag.Reporter.
type Console struct {
	logger *slog.Logger
}

// New builds a Console reporter. A nil logger falls back to slog.Default().
func New(logger *slog.Logger) *Console {
	if logger == nil {
		logger = slog.Default()
	}
	return &Console{logger: logger}
}

func (c *Console) TaskStarted(taskNo int, name string) {
	c.logger.Info("task started", "task_no", taskNo, "name", name)
}

func (c *Console) TaskSkipped(taskNo int, name string) {
	c.logger.Info("task skipped", "task_no", taskNo, "name", name, "reason", "unchanged")
}

func (c *Console) TaskFinished(result flowdag.TaskResult) {
	if result.Failed() {
		c.logger.Error("task failed", "task_no", result.TaskNo, "name", result.Name, "error", result.Err, "elapsed_s", result.Elapsed.Seconds())
		return
	}
	c.logger.Info("task finished", "task_no", result.TaskNo, "name", result.Name, "elapsed_s", result.Elapsed.Seconds())
}

func (c *Console) RunFinished(err error) {
	if err != nil {
		c.logger.Error("run finished with failures", "error", err)
		return
	}
	c.logger.Info("run finished")
}
