package scaffold

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tyemirov/kickstart/internal/console"
	"github.com/tyemirov/kickstart/internal/execshell"
	"github.com/tyemirov/kickstart/internal/filesystem"
	"github.com/tyemirov/kickstart/internal/gitrepo"
	"github.com/tyemirov/kickstart/internal/installer"
	flagutils "github.com/tyemirov/kickstart/internal/utils/flags"
	"github.com/tyemirov/kickstart/pkg/taskrunner"
)

const (
	commandUseNameConstant          = "create"
	commandUsageTemplateConstant    = commandUseNameConstant + " <template>"
	commandAliasConstant            = "new"
	commandExampleTemplateConstant  = "kickstart create react --git --install"
	commandShortDescriptionConstant = "Create a project from a template"
	commandLongDescriptionConstant  = "create clones the boilerplate repository into the target directory, removes its git history, optionally copies template files, installs dependencies, and initializes a fresh git repository."
	invalidTemplateConsoleMessage   = "Invalid template name"
	projectReadyConsoleMessage      = "Project ready"
	projectDirectoryDetailTemplate  = "Project directory: "
	templateRequiredMessageConstant = "template name is required; provide it as the first argument"
	summaryLogMessageConstant       = "pipeline summary"
	summaryLogFieldConstant         = "summary"
)

// ErrTemplateArgumentMissing indicates the command was invoked without a template name.
var ErrTemplateArgumentMissing = errors.New(templateRequiredMessageConstant)

// LoggerProvider yields a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the create command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() Configuration
	CommandRunner                execshell.CommandRunner
	ExecutableLocator            installer.ExecutableLocator
	WorkingDirectoryProvider     func() (string, error)
}

// Build constructs the create command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     commandUsageTemplateConstant,
		Aliases: []string{commandAliasConstant},
		Short:   commandShortDescriptionConstant,
		Long:    commandLongDescriptionConstant,
		Args:    cobra.MaximumNArgs(1),
		Example: commandExampleTemplateConstant,
		RunE:    builder.Run,

		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flagutils.BindExecutionFlags(command, flagutils.ExecutionDefaults{})

	return command, nil
}

// Run creates the project named by the first argument. Flags that were not supplied fall back
// to the configuration. Failures already printed to the user return console.ReportedError.
func (builder *CommandBuilder) Run(command *cobra.Command, arguments []string) error {
	if len(arguments) == 0 {
		_ = command.Help()
		return ErrTemplateArgumentMissing
	}

	configuration := builder.resolveConfiguration()
	logger := builder.resolveLogger()
	reporter := console.NewReporter(command.OutOrStdout(), command.ErrOrStderr())

	options := Options{
		Template:     arguments[0],
		RunInstall:   configuration.RunInstall,
		Git:          configuration.InitializeGit,
		CopyTemplate: configuration.CopyTemplate,
	}
	if executionFlags, available := flagutils.ResolveExecutionFlags(command); available {
		if executionFlags.InitializeGitSet {
			options.Git = executionFlags.InitializeGit
		}
		if executionFlags.RunInstallSet {
			options.RunInstall = executionFlags.RunInstall
		}
		if executionFlags.CopyTemplateSet {
			options.CopyTemplate = executionFlags.CopyTemplate
		}
		if executionFlags.TargetDirectorySet {
			options.TargetDirectory = executionFlags.TargetDirectory
		}
	}

	workingDirectory, workingDirectoryError := builder.resolveWorkingDirectory()
	if workingDirectoryError != nil {
		return workingDirectoryError
	}

	fileSystem := filesystem.OSFileSystem{}
	resolvedOptions, resolveError := ResolveOptions(options, configuration, workingDirectory, fileSystem)
	if resolveError != nil {
		return builder.reportFailure(reporter, resolveError)
	}

	service, serviceError := builder.buildService(configuration, fileSystem, logger, reporter)
	if serviceError != nil {
		return serviceError
	}

	result, createError := service.CreateProject(command.Context(), resolvedOptions)
	if len(result.Outcome.Results) > 0 {
		logger.Debug(summaryLogMessageConstant, zap.String(summaryLogFieldConstant, taskrunner.RenderSummaryLine(result.Outcome)))
	}
	if createError != nil {
		return builder.reportFailure(reporter, createError)
	}

	reporter.PrintDone(projectReadyConsoleMessage)
	reporter.PrintDetail(projectDirectoryDetailTemplate + result.ProjectDirectory)
	return nil
}

func (builder *CommandBuilder) reportFailure(reporter *console.Reporter, failure error) error {
	var templateError InvalidTemplateError
	if errors.As(failure, &templateError) {
		reporter.PrintError(invalidTemplateConsoleMessage)
		return console.ReportedError{Cause: failure}
	}
	var taskError taskrunner.TaskFailedError
	if errors.As(failure, &taskError) {
		return console.ReportedError{Cause: failure}
	}
	return failure
}

func (builder *CommandBuilder) buildService(configuration Configuration, fileSystem filesystem.OSFileSystem, logger *zap.Logger, reporter taskrunner.Reporter) (*Service, error) {
	commandRunner := builder.CommandRunner
	if commandRunner == nil {
		commandRunner = execshell.NewOSCommandRunner()
	}

	humanReadableLogging := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadableLogging = builder.HumanReadableLoggingProvider()
	}

	shellExecutor, executorError := execshell.NewShellExecutor(logger, commandRunner, humanReadableLogging)
	if executorError != nil {
		return nil, executorError
	}

	repositoryManager, managerError := gitrepo.NewRepositoryManager(shellExecutor)
	if managerError != nil {
		return nil, managerError
	}

	dependencyInstaller, installerError := installer.NewInstaller(installer.Dependencies{
		Executor:          shellExecutor,
		ExecutableLocator: builder.ExecutableLocator,
		FileInspector:     fileSystem,
	})
	if installerError != nil {
		return nil, installerError
	}

	return NewService(configuration, Dependencies{
		Repository: repositoryManager,
		Installer:  dependencyInstaller,
		FileSystem: fileSystem,
		Runner:     taskrunner.NewRunner(logger, reporter),
		Logger:     logger,
	})
}

func (builder *CommandBuilder) resolveConfiguration() Configuration {
	if builder.ConfigurationProvider == nil {
		return DefaultConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveWorkingDirectory() (string, error) {
	if builder.WorkingDirectoryProvider != nil {
		return builder.WorkingDirectoryProvider()
	}
	return os.Getwd()
}
