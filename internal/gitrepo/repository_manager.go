// Package gitrepo clones boilerplate repositories and initializes new ones through git.
package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tyemirov/kickstart/internal/execshell"
)

const (
	executorNotConfiguredMessageConstant = "git executor not configured"
	valueRequiredMessageConstant         = "value required"
	inputErrorTemplateConstant           = "%s: %s"
	operationErrorTemplateConstant       = "git %s failed"
	operationCauseErrorTemplateConstant  = "git %s failed: %v"
	terminalPromptVariableConstant       = "GIT_TERMINAL_PROMPT"
	terminalPromptDisabledConstant       = "0"
	workingDirectoryFieldConstant        = "working_directory"
	repositoryURLFieldConstant           = "repository_url"
	destinationFieldConstant             = "destination"
	repositoryPathFieldConstant          = "repository_path"
)

// RepositoryOperationName names a git subcommand run by RepositoryManager.
type RepositoryOperationName string

// Operations performed by RepositoryManager.
const (
	OperationClone RepositoryOperationName = "clone"
	OperationInit  RepositoryOperationName = "init"
)

// ErrGitExecutorNotConfigured indicates the RepositoryManager was constructed without a git executor.
var ErrGitExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// GitCommandExecutor runs git with the given details.
type GitCommandExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// InvalidRepositoryInputError reports a blank required argument. No git process is started.
type InvalidRepositoryInputError struct {
	FieldName string
	Message   string
}

func (inputError InvalidRepositoryInputError) Error() string {
	return fmt.Sprintf(inputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// RepositoryOperationError wraps a failed git invocation.
type RepositoryOperationError struct {
	Operation RepositoryOperationName
	Cause     error
}

func (operationError RepositoryOperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationCauseErrorTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the executor failure.
func (operationError RepositoryOperationError) Unwrap() error {
	return operationError.Cause
}

// RepositoryManager runs the git operations of a scaffold.
type RepositoryManager struct {
	executor GitCommandExecutor
}

// NewRepositoryManager constructs a RepositoryManager.
func NewRepositoryManager(executor GitCommandExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor}, nil
}

// Clone runs `git clone <repositoryURL> <destination>` inside workingDirectory with terminal
// prompts disabled, so a missing credential fails instead of blocking.
func (manager *RepositoryManager) Clone(executionContext context.Context, workingDirectory string, repositoryURL string, destination string) error {
	values, inputError := requireValues(
		[2]string{workingDirectoryFieldConstant, workingDirectory},
		[2]string{repositoryURLFieldConstant, repositoryURL},
		[2]string{destinationFieldConstant, destination},
	)
	if inputError != nil {
		return inputError
	}

	return manager.run(executionContext, OperationClone, execshell.CommandDetails{
		Arguments:            []string{string(OperationClone), values[1], values[2]},
		WorkingDirectory:     values[0],
		EnvironmentVariables: map[string]string{terminalPromptVariableConstant: terminalPromptDisabledConstant},
	})
}

// Init runs `git init` inside repositoryPath.
func (manager *RepositoryManager) Init(executionContext context.Context, repositoryPath string) error {
	values, inputError := requireValues([2]string{repositoryPathFieldConstant, repositoryPath})
	if inputError != nil {
		return inputError
	}

	return manager.run(executionContext, OperationInit, execshell.CommandDetails{
		Arguments:        []string{string(OperationInit)},
		WorkingDirectory: values[0],
	})
}

func (manager *RepositoryManager) run(executionContext context.Context, operation RepositoryOperationName, details execshell.CommandDetails) error {
	if _, executionError := manager.executor.ExecuteGit(executionContext, details); executionError != nil {
		return RepositoryOperationError{Operation: operation, Cause: executionError}
	}
	return nil
}

// requireValues trims each (field, value) pair and fails on the first blank value.
func requireValues(fields ...[2]string) ([]string, error) {
	trimmed := make([]string, 0, len(fields))
	for _, field := range fields {
		value := strings.TrimSpace(field[1])
		if len(value) == 0 {
			return nil, InvalidRepositoryInputError{FieldName: field[0], Message: valueRequiredMessageConstant}
		}
		trimmed = append(trimmed, value)
	}
	return trimmed, nil
}
