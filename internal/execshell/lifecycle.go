package execshell

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	structuredStartedMessageConstant   = "command started"
	structuredSucceededMessageConstant = "command succeeded"
	structuredExitedMessageConstant    = "command exited with non-zero status"
	structuredCrashedMessageConstant   = "command could not run"
	commandFieldConstant               = "command"
	argumentsFieldConstant             = "arguments"
	workingDirectoryFieldConstant      = "working_directory"
	exitCodeFieldConstant              = "exit_code"
	standardErrorFieldConstant         = "stderr"
	readableStartedTemplateConstant    = "Running %s"
	readableSucceededTemplateConstant  = "Completed %s"
	readableExitedTemplateConstant     = "%s failed with exit code %d"
	readableExitedDetailTemplate       = "%s failed with exit code %d: %s"
	readableCrashedTemplateConstant    = "%s failed: %v"
	readableDirectoryTemplateConstant  = "%s (in %s)"
)

// commandObserver receives the lifecycle of every command the executor runs.
type commandObserver interface {
	started(command ShellCommand)
	succeeded(command ShellCommand)
	exited(command ShellCommand, result ExecutionResult)
	crashed(command ShellCommand, failure error)
}

type structuredObserver struct {
	logger *zap.Logger
}

func (observer structuredObserver) started(command ShellCommand) {
	observer.logger.Info(structuredStartedMessageConstant,
		zap.String(commandFieldConstant, string(command.Name)),
		zap.Strings(argumentsFieldConstant, command.Details.Arguments),
		zap.String(workingDirectoryFieldConstant, command.Details.WorkingDirectory),
	)
}

func (observer structuredObserver) succeeded(command ShellCommand) {
	observer.logger.Info(structuredSucceededMessageConstant, zap.String(commandFieldConstant, string(command.Name)))
}

func (observer structuredObserver) exited(command ShellCommand, result ExecutionResult) {
	observer.logger.Warn(structuredExitedMessageConstant,
		zap.String(commandFieldConstant, string(command.Name)),
		zap.Int(exitCodeFieldConstant, result.ExitCode),
		zap.String(standardErrorFieldConstant, strings.TrimSpace(result.StandardError)),
	)
}

func (observer structuredObserver) crashed(command ShellCommand, failure error) {
	observer.logger.Error(structuredCrashedMessageConstant,
		zap.String(commandFieldConstant, string(command.Name)),
		zap.Error(failure),
	)
}

type readableObserver struct {
	logger *zap.Logger
}

func (observer readableObserver) started(command ShellCommand) {
	observer.logger.Info(fmt.Sprintf(readableStartedTemplateConstant, describeCommand(command)))
}

func (observer readableObserver) succeeded(command ShellCommand) {
	observer.logger.Info(fmt.Sprintf(readableSucceededTemplateConstant, describeCommand(command)))
}

func (observer readableObserver) exited(command ShellCommand, result ExecutionResult) {
	summary := summarizeOutput(result)
	if len(summary) == 0 {
		observer.logger.Warn(fmt.Sprintf(readableExitedTemplateConstant, describeCommand(command), result.ExitCode))
		return
	}
	observer.logger.Warn(fmt.Sprintf(readableExitedDetailTemplate, describeCommand(command), result.ExitCode, summary[0]))
}

func (observer readableObserver) crashed(command ShellCommand, failure error) {
	observer.logger.Error(fmt.Sprintf(readableCrashedTemplateConstant, describeCommand(command), failure))
}

// describeCommand renders "name arg1 arg2 (in dir)".
func describeCommand(command ShellCommand) string {
	description := strings.Join(append([]string{string(command.Name)}, command.Details.Arguments...), " ")
	if workingDirectory := strings.TrimSpace(command.Details.WorkingDirectory); len(workingDirectory) > 0 {
		return fmt.Sprintf(readableDirectoryTemplateConstant, description, workingDirectory)
	}
	return description
}
