package taskrunner

// Reporter receives task lifecycle notifications. Omitted tasks are never reported.
type Reporter interface {
	TaskStarted(title string)
	TaskCompleted(title string)
	TaskSkipped(title string, reason string)
	TaskFailed(title string, failure error)
}

type noopReporter struct{}

func (noopReporter) TaskStarted(string) {}

func (noopReporter) TaskCompleted(string) {}

func (noopReporter) TaskSkipped(string, string) {}

func (noopReporter) TaskFailed(string, error) {}
