package execshell

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"sort"
)

// OSCommandRunner executes commands as operating system processes.
type OSCommandRunner struct{}

// NewOSCommandRunner constructs an OSCommandRunner.
func NewOSCommandRunner() OSCommandRunner {
	return OSCommandRunner{}
}

// Run starts the process, waits for it to exit, and captures its output. A non-zero exit is
// reported through ExecutionResult.ExitCode rather than as an error.
func (runner OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	if executionContext == nil {
		executionContext = context.Background()
	}

	process := exec.CommandContext(executionContext, string(command.Name), command.Details.Arguments...)
	process.Dir = command.Details.WorkingDirectory
	if len(command.Details.EnvironmentVariables) > 0 {
		process.Env = mergeEnvironment(os.Environ(), command.Details.EnvironmentVariables)
	}

	var standardOutput bytes.Buffer
	var standardError bytes.Buffer
	process.Stdout = &standardOutput
	process.Stderr = &standardError

	runError := process.Run()
	result := ExecutionResult{
		StandardOutput: standardOutput.String(),
		StandardError:  standardError.String(),
	}
	if runError == nil {
		return result, nil
	}

	var exitError *exec.ExitError
	if errors.As(runError, &exitError) {
		result.ExitCode = exitError.ExitCode()
		return result, nil
	}
	return ExecutionResult{}, runError
}

func mergeEnvironment(base []string, overrides map[string]string) []string {
	keys := make([]string, 0, len(overrides))
	for key := range overrides {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	merged := make([]string, 0, len(base)+len(keys))
	merged = append(merged, base...)
	for _, key := range keys {
		merged = append(merged, key+"="+overrides[key])
	}
	return merged
}
