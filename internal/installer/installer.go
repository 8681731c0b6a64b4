package installer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/tyemirov/kickstart/internal/execshell"
)

const (
	installSubcommandConstant                 = "install"
	yarnLockFileNameConstant                  = "yarn.lock"
	pnpmLockFileNameConstant                  = "pnpm-lock.yaml"
	npmLockFileNameConstant                   = "package-lock.json"
	executorNotConfiguredMessageConstant      = "package manager executor not configured"
	workingDirectoryRequiredMessageConstant   = "installation working directory required"
	unsupportedPackageManagerTemplateConstant = "unsupported package manager %q"
	installationFailedMessageTemplateConstant = "%s install failed: %v"
)

var (
	// ErrExecutorNotConfigured indicates the Installer was constructed without an executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
	// ErrWorkingDirectoryRequired indicates Install was called without a working directory.
	ErrWorkingDirectoryRequired = errors.New(workingDirectoryRequiredMessageConstant)
)

// PackageManagerExecutor runs package manager executables.
type PackageManagerExecutor interface {
	ExecutePackageManager(executionContext context.Context, packageManager execshell.CommandName, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// ExecutableLocator resolves an executable name on the search path.
type ExecutableLocator func(name string) (string, error)

// FileInspector reports file information for lockfile detection.
type FileInspector interface {
	Stat(path string) (fs.FileInfo, error)
}

// Dependencies describes the collaborators required by Installer.
type Dependencies struct {
	Executor          PackageManagerExecutor
	ExecutableLocator ExecutableLocator
	FileInspector     FileInspector
}

// UnsupportedPackageManagerError reports a preferred package manager outside the supported set.
type UnsupportedPackageManagerError struct {
	Name string
}

// Error describes the unsupported package manager.
func (unsupportedError UnsupportedPackageManagerError) Error() string {
	return fmt.Sprintf(unsupportedPackageManagerTemplateConstant, unsupportedError.Name)
}

// InstallationError wraps a failed dependency installation.
type InstallationError struct {
	PackageManager execshell.CommandName
	Cause          error
}

// Error describes the failed installation.
func (installationError InstallationError) Error() string {
	return fmt.Sprintf(installationFailedMessageTemplateConstant, installationError.PackageManager, installationError.Cause)
}

// Unwrap exposes the underlying failure.
func (installationError InstallationError) Unwrap() error {
	return installationError.Cause
}

// Installer installs project dependencies with the package manager the project expects.
type Installer struct {
	executor          PackageManagerExecutor
	executableLocator ExecutableLocator
	fileInspector     FileInspector
}

// NewInstaller constructs an Installer, defaulting the locator to exec.LookPath and the
// inspector to the host filesystem.
func NewInstaller(dependencies Dependencies) (*Installer, error) {
	if dependencies.Executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	locator := dependencies.ExecutableLocator
	if locator == nil {
		locator = exec.LookPath
	}
	inspector := dependencies.FileInspector
	if inspector == nil {
		inspector = osFileInspector{}
	}
	return &Installer{
		executor:          dependencies.Executor,
		executableLocator: locator,
		fileInspector:     inspector,
	}, nil
}

// Install runs "<package manager> install" in workingDirectory.
func (installer *Installer) Install(executionContext context.Context, workingDirectory string, preferred string) error {
	trimmedDirectory := strings.TrimSpace(workingDirectory)
	if len(trimmedDirectory) == 0 {
		return ErrWorkingDirectoryRequired
	}

	packageManager, resolveError := installer.ResolvePackageManager(trimmedDirectory, preferred)
	if resolveError != nil {
		return resolveError
	}

	details := execshell.CommandDetails{
		Arguments:        []string{installSubcommandConstant},
		WorkingDirectory: trimmedDirectory,
	}
	if _, executionError := installer.executor.ExecutePackageManager(executionContext, packageManager, details); executionError != nil {
		return InstallationError{PackageManager: packageManager, Cause: executionError}
	}
	return nil
}

// ResolvePackageManager chooses the package manager for workingDirectory. A lockfile decides
// first; otherwise the preferred manager is used when it is installed; npm is the fallback.
func (installer *Installer) ResolvePackageManager(workingDirectory string, preferred string) (execshell.CommandName, error) {
	preferredManager, preferredKnown := parsePackageManager(preferred)
	if len(strings.TrimSpace(preferred)) > 0 && !preferredKnown {
		return "", UnsupportedPackageManagerError{Name: preferred}
	}

	lockFiles := []struct {
		fileName       string
		packageManager execshell.CommandName
	}{
		{fileName: yarnLockFileNameConstant, packageManager: execshell.CommandYarn},
		{fileName: pnpmLockFileNameConstant, packageManager: execshell.CommandPnpm},
		{fileName: npmLockFileNameConstant, packageManager: execshell.CommandNpm},
	}
	for _, lockFile := range lockFiles {
		if info, statError := installer.fileInspector.Stat(filepath.Join(workingDirectory, lockFile.fileName)); statError == nil && !info.IsDir() {
			return lockFile.packageManager, nil
		}
	}

	if preferredKnown {
		if _, lookupError := installer.executableLocator(string(preferredManager)); lookupError == nil {
			return preferredManager, nil
		}
	}

	return execshell.CommandNpm, nil
}

// SupportedPackageManagers lists the package manager names accepted as a preference.
func SupportedPackageManagers() []string {
	return []string{string(execshell.CommandYarn), string(execshell.CommandNpm), string(execshell.CommandPnpm)}
}

func parsePackageManager(raw string) (execshell.CommandName, bool) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	for _, supported := range SupportedPackageManagers() {
		if normalized == supported {
			return execshell.CommandName(supported), true
		}
	}
	return "", false
}

type osFileInspector struct{}

func (osFileInspector) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}
