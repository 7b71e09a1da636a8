package flowdag

// Reporter receives lifecycle notifications from a running DAG so a caller
// can surface progress without the runner itself knowing whether that
// means a log line, a terminal UI, or a metrics counter.
type Reporter interface {
	TaskStarted(taskNo int, name string)
	TaskSkipped(taskNo int, name string)
	TaskFinished(result TaskResult)
	RunFinished(err error)
}

// noopReporter discards every notification; it is the default when a
// caller doesn't supply one.
type noopReporter struct{}

func (noopReporter) TaskStarted(int, string) {}
func (noopReporter) TaskSkipped(int, string) {}
func (noopReporter) TaskFinished(TaskResult) {}
func (noopReporter) RunFinished(error)       {}
