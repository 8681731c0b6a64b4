// Package scaffold creates new projects by cloning the boilerplate repository and running the
// follow-up tasks the caller asked for.
package scaffold

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/tyemirov/kickstart/pkg/taskrunner"
)

const (
	// TaskTitleCloneRepository clones the boilerplate repository.
	TaskTitleCloneRepository = "Clone Repo"
	// TaskTitleCopyTemplate copies template files into the project.
	TaskTitleCopyTemplate = "Copy project files"
	// TaskTitleDeleteGitDirectory removes the cloned version-control history.
	TaskTitleDeleteGitDirectory = "Delete Git folder"
	// TaskTitleInstallDependencies installs the project dependencies.
	TaskTitleInstallDependencies = "Install dependencies"
	// TaskTitleInitializeGit creates a fresh repository in the project.
	TaskTitleInitializeGit = "Initialize git"

	// InstallSkipReason is reported when dependency installation was not requested.
	InstallSkipReason = "Pass --install to automatically install dependencies"

	gitDirectoryNameConstant             = ".git"
	gitInitializationFailedMessage       = "failed to initialize git"
	repositoryClientMissingMessage       = "repository client not configured"
	dependencyInstallerMissingMessage    = "dependency installer not configured"
	fileSystemMissingMessage             = "filesystem not configured"
	logFieldTemplateConstant             = "template"
	logFieldTemplateDirectoryConstant    = "template_directory"
	logFieldProjectDirectoryConstant     = "project_directory"
	logFieldRepositoryURLConstant        = "repository_url"
	logMessageTemplateRejectedConstant   = "template rejected"
	logMessageProjectStartedConstant     = "creating project"
	logMessageProjectCreatedConstant     = "project created"
	logMessageProjectFailedConstant      = "project creation failed"
	logFieldErrorConstant                = "error"
	configurationInvalidTemplateConstant = "invalid scaffold configuration: %w"
)

var (
	// ErrGitInitializationFailed marks a failed repository initialization.
	ErrGitInitializationFailed = errors.New(gitInitializationFailedMessage)
	// ErrRepositoryClientNotConfigured indicates the service was built without a repository client.
	ErrRepositoryClientNotConfigured = errors.New(repositoryClientMissingMessage)
	// ErrDependencyInstallerNotConfigured indicates the service was built without an installer.
	ErrDependencyInstallerNotConfigured = errors.New(dependencyInstallerMissingMessage)
	// ErrFileSystemNotConfigured indicates the service was built without filesystem access.
	ErrFileSystemNotConfigured = errors.New(fileSystemMissingMessage)
)

// RepositoryClient clones and initializes repositories.
type RepositoryClient interface {
	Clone(executionContext context.Context, workingDirectory string, repositoryURL string, destination string) error
	Init(executionContext context.Context, repositoryPath string) error
}

// DependencyInstaller installs project dependencies.
type DependencyInstaller interface {
	Install(executionContext context.Context, workingDirectory string, preferred string) error
}

// FileSystem captures the filesystem operations used while scaffolding.
type FileSystem interface {
	CheckReadableDirectory(path string) error
	RemoveAll(path string) error
	CopyTree(source string, destination string) error
}

// PipelineRunner executes the task list.
type PipelineRunner interface {
	Run(executionContext context.Context, tasks []taskrunner.Task) (taskrunner.Outcome, error)
}

// Dependencies groups the collaborators required by Service.
type Dependencies struct {
	Repository RepositoryClient
	Installer  DependencyInstaller
	FileSystem FileSystem
	Runner     PipelineRunner
	Logger     *zap.Logger
}

// Result describes a finished project creation.
type Result struct {
	ProjectDirectory string
	Outcome          taskrunner.Outcome
}

// Service builds and runs the project creation pipeline.
type Service struct {
	configuration Configuration
	repository    RepositoryClient
	installer     DependencyInstaller
	fileSystem    FileSystem
	runner        PipelineRunner
	logger        *zap.Logger
}

// NewService validates dependencies and configuration and constructs a Service.
func NewService(configuration Configuration, dependencies Dependencies) (*Service, error) {
	if dependencies.Repository == nil {
		return nil, ErrRepositoryClientNotConfigured
	}
	if dependencies.Installer == nil {
		return nil, ErrDependencyInstallerNotConfigured
	}
	if dependencies.FileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}

	sanitized := configuration.Sanitize()
	if validationError := sanitized.Validate(); validationError != nil {
		return nil, fmt.Errorf(configurationInvalidTemplateConstant, validationError)
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	runner := dependencies.Runner
	if runner == nil {
		runner = taskrunner.NewRunner(logger, nil)
	}

	return &Service{
		configuration: sanitized,
		repository:    dependencies.Repository,
		installer:     dependencies.Installer,
		fileSystem:    dependencies.FileSystem,
		runner:        runner,
		logger:        logger,
	}, nil
}

// ProjectDirectory returns the directory the boilerplate is cloned into for options.
func (service *Service) ProjectDirectory(options Options) string {
	return filepath.Join(options.TargetDirectory, service.configuration.CloneDirectory)
}

// CreateProject verifies the template directory and runs the creation pipeline. An unusable
// template directory returns InvalidTemplateError before any task runs.
func (service *Service) CreateProject(executionContext context.Context, options Options) (Result, error) {
	if accessError := service.fileSystem.CheckReadableDirectory(options.TemplateDirectory); accessError != nil {
		service.logger.Warn(
			logMessageTemplateRejectedConstant,
			zap.String(logFieldTemplateConstant, options.Template),
			zap.String(logFieldTemplateDirectoryConstant, options.TemplateDirectory),
			zap.Error(accessError),
		)
		return Result{}, InvalidTemplateError{Template: options.Template, Directory: options.TemplateDirectory, Cause: accessError}
	}

	projectDirectory := service.ProjectDirectory(options)
	service.logger.Info(
		logMessageProjectStartedConstant,
		zap.String(logFieldTemplateConstant, options.Template),
		zap.String(logFieldProjectDirectoryConstant, projectDirectory),
		zap.String(logFieldRepositoryURLConstant, service.configuration.RepositoryURL),
	)

	outcome, runError := service.runner.Run(executionContext, service.buildTasks(options, projectDirectory))
	result := Result{ProjectDirectory: projectDirectory, Outcome: outcome}
	if runError != nil {
		service.logger.Error(
			logMessageProjectFailedConstant,
			zap.String(logFieldProjectDirectoryConstant, projectDirectory),
			zap.String(logFieldErrorConstant, runError.Error()),
		)
		return result, runError
	}

	service.logger.Info(logMessageProjectCreatedConstant, zap.String(logFieldProjectDirectoryConstant, projectDirectory))
	return result, nil
}

func (service *Service) buildTasks(options Options, projectDirectory string) []taskrunner.Task {
	return []taskrunner.Task{
		{
			Title: TaskTitleCloneRepository,
			Action: func(executionContext context.Context) error {
				return service.repository.Clone(executionContext, options.TargetDirectory, service.configuration.RepositoryURL, service.configuration.CloneDirectory)
			},
		},
		{
			Title: TaskTitleCopyTemplate,
			Action: func(context.Context) error {
				return service.fileSystem.CopyTree(options.TemplateDirectory, options.TargetDirectory)
			},
			Enabled: func() bool { return options.CopyTemplate },
		},
		{
			Title: TaskTitleDeleteGitDirectory,
			Action: func(context.Context) error {
				return service.fileSystem.RemoveAll(filepath.Join(projectDirectory, gitDirectoryNameConstant))
			},
		},
		{
			Title: TaskTitleInstallDependencies,
			Action: func(executionContext context.Context) error {
				return service.installer.Install(executionContext, options.TargetDirectory, service.configuration.PreferredPackageManager)
			},
			Skip: func() string {
				if options.RunInstall {
					return ""
				}
				return InstallSkipReason
			},
		},
		{
			Title: TaskTitleInitializeGit,
			Action: func(executionContext context.Context) error {
				if initError := service.repository.Init(executionContext, options.TargetDirectory); initError != nil {
					return fmt.Errorf("%w: %w", ErrGitInitializationFailed, initError)
				}
				return nil
			},
			Enabled: func() bool { return options.Git },
		},
	}
}
