package taskrunner

import (
	"context"
	"errors"
	"fmt"
)

const (
	taskActionMissingMessageConstant  = "task action not configured"
	taskFailedMessageTemplateConstant = "task %q failed: %v"
	taskFailedNoCauseTemplateConstant = "task %q failed"
)

// ErrTaskActionMissing indicates a task reached execution without an action.
var ErrTaskActionMissing = errors.New(taskActionMissingMessageConstant)

// Action performs the work of a task.
type Action func(executionContext context.Context) error

// SkipPredicate returns a non-empty reason when the task should be skipped.
type SkipPredicate func() string

// EnabledPredicate reports whether the task participates in the run at all.
type EnabledPredicate func() bool

// Task is a titled unit of work with optional skip and enable predicates.
type Task struct {
	Title   string
	Action  Action
	Skip    SkipPredicate
	Enabled EnabledPredicate
}

// TaskFailedError wraps the failure returned by a task action.
type TaskFailedError struct {
	Title string
	Cause error
}

// Error describes the failing task.
func (failure TaskFailedError) Error() string {
	if failure.Cause == nil {
		return fmt.Sprintf(taskFailedNoCauseTemplateConstant, failure.Title)
	}
	return fmt.Sprintf(taskFailedMessageTemplateConstant, failure.Title, failure.Cause)
}

// Unwrap exposes the action failure.
func (failure TaskFailedError) Unwrap() error {
	return failure.Cause
}

func (task Task) enabled() bool {
	if task.Enabled == nil {
		return true
	}
	return task.Enabled()
}

func (task Task) skipReason() string {
	if task.Skip == nil {
		return ""
	}
	return task.Skip()
}
