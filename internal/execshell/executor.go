// Package execshell runs the external programs kickstart depends on and logs each run.
package execshell

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	loggerNotConfiguredMessageConstant        = "shell executor logger not configured"
	commandRunnerNotConfiguredMessageConstant = "shell executor command runner not configured"
	commandNameMissingMessageConstant         = "shell command name not provided"
	exitCodeErrorTemplateConstant             = "%s exited with code %d"
	argumentsSuffixTemplateConstant           = "%s (%s)"
	outputSuffixTemplateConstant              = "%s: %s"
	outputLineSeparatorConstant               = " | "
	startFailureErrorTemplateConstant         = "%s could not be started"
	outputSummaryLineLimitConstant            = 3
)

// CommandName identifies an executable kickstart is allowed to run.
type CommandName string

// Executables used while scaffolding.
const (
	CommandGit  CommandName = "git"
	CommandYarn CommandName = "yarn"
	CommandNpm  CommandName = "npm"
	CommandPnpm CommandName = "pnpm"
)

// CommandDetails describes how an executable is invoked.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
}

// ShellCommand pairs an executable with its invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures what a finished process produced.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner starts a process and waits for it. A non-zero exit is a result, not an error.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

var (
	// ErrLoggerNotConfigured indicates the logger dependency was missing.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
	// ErrCommandRunnerNotConfigured indicates the command runner dependency was missing.
	ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)
	// ErrCommandNameMissing indicates the command name was not provided.
	ErrCommandNameMissing = errors.New(commandNameMissingMessageConstant)
)

// CommandFailedError reports a process that ran but exited with a non-zero code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

func (commandError CommandFailedError) Error() string {
	message := fmt.Sprintf(exitCodeErrorTemplateConstant, commandError.Command.Name, commandError.Result.ExitCode)
	if len(commandError.Command.Details.Arguments) > 0 {
		message = fmt.Sprintf(argumentsSuffixTemplateConstant, message, strings.Join(commandError.Command.Details.Arguments, " "))
	}
	if summary := summarizeOutput(commandError.Result); len(summary) > 0 {
		message = fmt.Sprintf(outputSuffixTemplateConstant, message, strings.Join(summary, outputLineSeparatorConstant))
	}
	return message
}

// CommandExecutionError reports a process the runner could not start or wait for.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

func (executionError CommandExecutionError) Error() string {
	return fmt.Sprintf(startFailureErrorTemplateConstant, executionError.Command.Name)
}

// Unwrap exposes the runner failure.
func (executionError CommandExecutionError) Unwrap() error {
	return executionError.Cause
}

// ShellExecutor runs commands through a CommandRunner and reports every run to a logger.
type ShellExecutor struct {
	commandRunner CommandRunner
	observer      commandObserver
}

// NewShellExecutor builds an executor. humanReadableLogging selects sentence-style log messages
// over structured fields.
func NewShellExecutor(logger *zap.Logger, commandRunner CommandRunner, humanReadableLogging bool) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if commandRunner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}

	var observer commandObserver = structuredObserver{logger: logger}
	if humanReadableLogging {
		observer = readableObserver{logger: logger}
	}
	return &ShellExecutor{commandRunner: commandRunner, observer: observer}, nil
}

// Execute runs command. Exit codes other than zero become CommandFailedError, runner failures
// become CommandExecutionError; in both cases the returned result is empty.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	if len(strings.TrimSpace(string(command.Name))) == 0 {
		return ExecutionResult{}, ErrCommandNameMissing
	}

	executor.observer.started(command)
	result, runnerError := executor.commandRunner.Run(executionContext, command)
	switch {
	case runnerError != nil:
		executor.observer.crashed(command, runnerError)
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: runnerError}
	case result.ExitCode != 0:
		executor.observer.exited(command, result)
		return ExecutionResult{}, CommandFailedError{Command: command, Result: result}
	default:
		executor.observer.succeeded(command)
		return result, nil
	}
}

// ExecuteGit runs git.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandGit, Details: details})
}

// ExecutePackageManager runs the given package manager.
func (executor *ShellExecutor) ExecutePackageManager(executionContext context.Context, packageManager CommandName, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: packageManager, Details: details})
}

// summarizeOutput keeps the first non-blank lines of stderr, or stdout when stderr is empty.
func summarizeOutput(result ExecutionResult) []string {
	output := strings.TrimSpace(result.StandardError)
	if len(output) == 0 {
		output = strings.TrimSpace(result.StandardOutput)
	}

	summary := make([]string, 0, outputSummaryLineLimitConstant)
	for _, line := range strings.Split(output, "\n") {
		if len(summary) == outputSummaryLineLimitConstant {
			break
		}
		if trimmed := strings.TrimSpace(line); len(trimmed) > 0 {
			summary = append(summary, trimmed)
		}
	}
	return summary
}
