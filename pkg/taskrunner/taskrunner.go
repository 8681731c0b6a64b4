package taskrunner

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	taskOmittedMessageConstant   = "task omitted"
	taskSkippedMessageConstant   = "task skipped"
	taskStartedMessageConstant   = "task started"
	taskCompletedMessageConstant = "task completed"
	taskFailedMessageConstant    = "task failed"
	taskTitleFieldConstant       = "task"
	taskIndexFieldConstant       = "index"
	skipReasonFieldConstant      = "reason"
)

// Runner executes tasks strictly in order, stopping at the first failure.
type Runner struct {
	logger   *zap.Logger
	reporter Reporter
	clock    func() time.Time
}

// NewRunner constructs a Runner. Nil collaborators are replaced with no-op implementations.
func NewRunner(logger *zap.Logger, reporter Reporter) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if reporter == nil {
		reporter = noopReporter{}
	}
	return &Runner{logger: logger, reporter: reporter, clock: time.Now}
}

// Run processes the tasks in order. A task whose Enabled predicate returns false is omitted
// without consulting Skip or Action; a non-empty skip reason bypasses the action. The first
// action failure is returned as a TaskFailedError and leaves every later task pending.
func (runner *Runner) Run(executionContext context.Context, tasks []Task) (Outcome, error) {
	if executionContext == nil {
		executionContext = context.Background()
	}

	outcome := Outcome{
		Results:   make([]TaskResult, len(tasks)),
		StartTime: runner.clock(),
	}
	for taskIndex := range tasks {
		outcome.Results[taskIndex] = TaskResult{Title: tasks[taskIndex].Title, Status: StatusPending}
	}

	for taskIndex := range tasks {
		task := tasks[taskIndex]
		result := &outcome.Results[taskIndex]

		if !task.enabled() {
			result.Status = StatusOmitted
			runner.logger.Debug(taskOmittedMessageConstant,
				zap.String(taskTitleFieldConstant, task.Title),
				zap.Int(taskIndexFieldConstant, taskIndex),
			)
			continue
		}

		if reason := task.skipReason(); len(reason) > 0 {
			result.Status = StatusSkipped
			result.SkipReason = reason
			runner.logger.Debug(taskSkippedMessageConstant,
				zap.String(taskTitleFieldConstant, task.Title),
				zap.String(skipReasonFieldConstant, reason),
			)
			runner.reporter.TaskSkipped(task.Title, reason)
			continue
		}

		runner.logger.Debug(taskStartedMessageConstant, zap.String(taskTitleFieldConstant, task.Title))
		runner.reporter.TaskStarted(task.Title)

		actionError := runner.invoke(executionContext, task)
		if actionError != nil {
			result.Status = StatusFailed
			result.Error = actionError
			runner.logger.Debug(taskFailedMessageConstant,
				zap.String(taskTitleFieldConstant, task.Title),
				zap.Error(actionError),
			)
			runner.reporter.TaskFailed(task.Title, actionError)
			outcome.EndTime = runner.clock()
			return outcome, TaskFailedError{Title: task.Title, Cause: actionError}
		}

		result.Status = StatusCompleted
		runner.logger.Debug(taskCompletedMessageConstant, zap.String(taskTitleFieldConstant, task.Title))
		runner.reporter.TaskCompleted(task.Title)
	}

	outcome.EndTime = runner.clock()
	return outcome, nil
}

func (runner *Runner) invoke(executionContext context.Context, task Task) error {
	if task.Action == nil {
		return ErrTaskActionMissing
	}
	return task.Action(executionContext)
}
