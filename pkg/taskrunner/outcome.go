package taskrunner

import "time"

// Status describes how a task was processed.
type Status string

// Task statuses.
const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusSkipped   Status = "skipped"
	StatusOmitted   Status = "omitted"
	StatusFailed    Status = "failed"
)

// TaskResult records the processing of a single task.
type TaskResult struct {
	Title      string
	Status     Status
	SkipReason string
	Error      error
}

// Outcome records the processing of every task in a run, in list order.
type Outcome struct {
	Results   []TaskResult
	StartTime time.Time
	EndTime   time.Time
}

// Result returns the first result with the provided title.
func (outcome Outcome) Result(title string) (TaskResult, bool) {
	for _, result := range outcome.Results {
		if result.Title == title {
			return result, true
		}
	}
	return TaskResult{}, false
}

// Count returns the number of tasks that ended with the provided status.
func (outcome Outcome) Count(status Status) int {
	count := 0
	for _, result := range outcome.Results {
		if result.Status == status {
			count++
		}
	}
	return count
}

// Duration returns the elapsed wall time of the run.
func (outcome Outcome) Duration() time.Duration {
	if outcome.EndTime.Before(outcome.StartTime) {
		return 0
	}
	return outcome.EndTime.Sub(outcome.StartTime)
}
