package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tyemirov/kickstart/internal/execshell"
	"github.com/tyemirov/kickstart/internal/scaffold"
	"github.com/tyemirov/kickstart/internal/utils"
	flagutils "github.com/tyemirov/kickstart/internal/utils/flags"
	"github.com/tyemirov/kickstart/internal/version"
)

const (
	applicationNameConstant             = "kickstart"
	applicationUsageConstant            = applicationNameConstant + " [template]"
	applicationShortDescriptionConstant = "Scaffold new projects from a boilerplate repository"
	applicationLongDescriptionConstant  = "kickstart clones the boilerplate repository, strips its git history, and optionally installs dependencies and initializes a fresh repository. Run it with a template name or use the create command."
	applicationExampleConstant          = "kickstart react --git --install"
	configFlagNameConstant              = "config"
	configFlagUsageConstant             = "Optional path to a configuration file (YAML)."
	logLevelFlagNameConstant            = "log-level"
	logLevelFlagUsageConstant           = "Override the configured log level."
	logFormatFlagNameConstant           = "log-format"
	logFormatFlagUsageConstant          = "Override the configured log format (structured or console)."
	versionFlagNameConstant             = "version"
	versionFlagUsageConstant            = "Print the application version and exit"
	versionCommandNameConstant          = "version"
	versionCommandShortConstant         = "Print the kickstart version"
	versionOutputTemplateConstant       = "kickstart version: %s\n"
	environmentPrefixConstant           = "KICKSTART"
	configurationNameConstant           = "config"
	configurationTypeConstant           = "yaml"
	configurationFileNameConstant       = configurationNameConstant + "." + configurationTypeConstant
	defaultTemplatesDirectoryConstant   = "templates"
	configurationLoadErrorTemplate      = "unable to load configuration: %w"
	loggerCreationErrorTemplate         = "unable to create logger: %w"
	loggerFlushErrorTemplate            = "unable to flush logger: %w"
	templatesRootErrorTemplate          = "unable to resolve templates root: %w"
	configurationReadyMessage           = "configuration initialized"
	configurationReadyConsoleTemplate   = "%s | log level=%s | log format=%s | config file=%s | templates root=%s"
	logLevelFieldConstant               = "log_level"
	logFormatFieldConstant              = "log_format"
	configFileFieldConstant             = "config_file"
	templatesRootFieldConstant          = "templates_root"
)

// linkedVersion is set at link time with -ldflags "-X github.com/tyemirov/kickstart/cmd/cli.linkedVersion=<version>".
var linkedVersion string

type loggerOutputsFactory interface {
	CreateLoggerOutputs(logLevel utils.LogLevel, logFormat utils.LogFormat) (utils.LoggerOutputs, error)
}

// persistentOptions holds the values bound to the root command's persistent flags.
type persistentOptions struct {
	configurationFile string
	logLevel          string
	logFormat         string
	initScope         string
	force             bool
	version           bool
}

// Application owns the kickstart command tree together with the configuration and loggers it runs with.
type Application struct {
	rootCommand            *cobra.Command
	configurationLoader    *utils.ConfigurationLoader
	loggerFactory          loggerOutputsFactory
	logger                 *zap.Logger
	consoleLogger          *zap.Logger
	configuration          ApplicationConfiguration
	loadedConfiguration    utils.LoadedConfiguration
	options                persistentOptions
	versionResolver        func(context.Context) string
	exitFunction           func(int)
	executablePathResolver func() (string, error)
	createBuilder          *scaffold.CommandBuilder
}

// NewApplication builds the command tree with production collaborators.
func NewApplication() *Application {
	application := &Application{
		loggerFactory:          utils.NewLoggerFactory(),
		logger:                 zap.NewNop(),
		consoleLogger:          zap.NewNop(),
		exitFunction:           os.Exit,
		executablePathResolver: os.Executable,
	}
	application.versionResolver = application.resolveVersion

	application.configurationLoader = utils.NewConfigurationLoader(configurationNameConstant, configurationTypeConstant, environmentPrefixConstant, configurationSearchPaths())
	application.configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	rootCommand := &cobra.Command{
		Use:               applicationUsageConstant,
		Short:             applicationShortDescriptionConstant,
		Long:              applicationLongDescriptionConstant,
		Example:           applicationExampleConstant,
		Args:              cobra.MaximumNArgs(1),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: application.prepareCommand,
		RunE:              application.runRootCommand,
	}
	rootCommand.SetContext(context.Background())

	persistentFlags := rootCommand.PersistentFlags()
	persistentFlags.StringVar(&application.options.configurationFile, configFlagNameConstant, "", configFlagUsageConstant)
	persistentFlags.StringVar(&application.options.logLevel, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	persistentFlags.StringVar(&application.options.logFormat, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)
	persistentFlags.StringVar(&application.options.initScope, initFlagNameConstant, initScopeLocalConstant, initFlagUsageConstant)
	persistentFlags.BoolVar(&application.options.force, forceFlagNameConstant, false, forceFlagUsageConstant)
	persistentFlags.BoolVar(&application.options.version, versionFlagNameConstant, false, versionFlagUsageConstant)
	flagutils.BindExecutionFlags(rootCommand, flagutils.ExecutionDefaults{})

	rootCommand.AddCommand(&cobra.Command{
		Use:   versionCommandNameConstant,
		Short: versionCommandShortConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			application.printVersion(command.Context(), command.OutOrStdout())
			return nil
		},
	})

	application.registerCommands(rootCommand)
	application.rootCommand = rootCommand
	return application
}

// Execute runs the root command with os.Args and flushes both loggers afterwards.
func (application *Application) Execute() error {
	application.rootCommand.SetArgs(normalizeInitializationScopeArguments(os.Args[1:]))

	executionError := application.rootCommand.Execute()
	if flushError := application.flushLoggers(); flushError != nil {
		return fmt.Errorf(loggerFlushErrorTemplate, flushError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) prepareCommand(command *cobra.Command, _ []string) error {
	if initializationError := application.initializeConfiguration(command); initializationError != nil {
		return initializationError
	}

	printRequested := application.options.version
	if flagValue, flagChanged, flagError := flagutils.BoolFlag(command, versionFlagNameConstant); flagError == nil && flagChanged {
		printRequested = flagValue
	}
	if printRequested {
		application.printVersion(command.Context(), command.OutOrStdout())
		application.exitFunction(0)
	}
	return nil
}

func configurationDefaults() map[string]any {
	defaults := scaffold.DefaultConfiguration()
	return map[string]any{
		"common.log_level":         string(utils.LogLevelError),
		"common.log_format":        string(utils.LogFormatStructured),
		"scaffold.templates_root":  "",
		"scaffold.repository_url":  defaults.RepositoryURL,
		"scaffold.clone_directory": defaults.CloneDirectory,
		"scaffold.package_manager": defaults.PreferredPackageManager,
		"scaffold.git":             false,
		"scaffold.install":         false,
		"scaffold.copy_template":   false,
	}
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	loaded, loadError := application.configurationLoader.LoadConfiguration(application.options.configurationFile, configurationDefaults(), &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplate, loadError)
	}
	application.loadedConfiguration = loaded

	common := &application.configuration.Common
	if flagChanged(command, logLevelFlagNameConstant) {
		common.LogLevel = application.options.logLevel
	}
	if flagChanged(command, logFormatFlagNameConstant) {
		common.LogFormat = application.options.logFormat
	}

	outputs, loggerError := application.loggerFactory.CreateLoggerOutputs(utils.LogLevel(common.LogLevel), utils.LogFormat(common.LogFormat))
	if loggerError != nil {
		return fmt.Errorf(loggerCreationErrorTemplate, loggerError)
	}
	application.logger = nopIfNil(outputs.DiagnosticLogger)
	application.consoleLogger = nopIfNil(outputs.ConsoleLogger)

	scaffoldConfiguration := application.configuration.Scaffold.Sanitize()
	templatesRoot, rootError := application.resolveTemplatesRoot(scaffoldConfiguration.TemplatesRoot)
	if rootError != nil {
		return fmt.Errorf(templatesRootErrorTemplate, rootError)
	}
	scaffoldConfiguration.TemplatesRoot = templatesRoot
	application.configuration.Scaffold = scaffoldConfiguration

	application.logConfigurationInitialization()

	if command == nil {
		return nil
	}
	invocationContext := utils.WithInvocation(command.Context(), utils.Invocation{
		ConfigurationFile: loaded.ConfigFileUsed,
		Flags:             flagutils.CollectExecutionFlags(command),
	})
	command.SetContext(invocationContext)
	if root := command.Root(); root != nil {
		root.SetContext(invocationContext)
	}
	return nil
}

func nopIfNil(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// resolveTemplatesRoot makes a configured root absolute and falls back to a templates
// directory next to the executable when nothing is configured.
func (application *Application) resolveTemplatesRoot(configuredRoot string) (string, error) {
	if trimmedRoot := strings.TrimSpace(configuredRoot); len(trimmedRoot) > 0 {
		return filepath.Abs(trimmedRoot)
	}

	executablePath, executableError := application.executablePathResolver()
	if executableError != nil {
		return "", executableError
	}
	if resolvedPath, symlinkError := filepath.EvalSymlinks(executablePath); symlinkError == nil {
		executablePath = resolvedPath
	}
	return filepath.Join(filepath.Dir(executablePath), defaultTemplatesDirectoryConstant), nil
}

// InitializeForCommand loads configuration and loggers as if commandUse were about to run.
func (application *Application) InitializeForCommand(commandUse string) error {
	command := &cobra.Command{Use: commandUse}
	command.SetContext(context.Background())
	return application.initializeConfiguration(command)
}

// ConfigFileUsed reports the configuration file that was read, if any.
func (application *Application) ConfigFileUsed() string {
	return application.loadedConfiguration.ConfigFileUsed
}

// Configuration returns the effective configuration after initialization.
func (application *Application) Configuration() ApplicationConfiguration {
	return application.configuration
}

func (application *Application) humanReadableLoggingEnabled() bool {
	return strings.EqualFold(strings.TrimSpace(application.configuration.Common.LogFormat), string(utils.LogFormatConsole))
}

func (application *Application) logConfigurationInitialization() {
	common := application.configuration.Common
	if !strings.EqualFold(strings.TrimSpace(common.LogLevel), string(utils.LogLevelDebug)) {
		return
	}

	configurationFile := application.loadedConfiguration.ConfigFileUsed
	templatesRoot := application.configuration.Scaffold.TemplatesRoot
	if application.humanReadableLoggingEnabled() {
		application.consoleLogger.Debug(fmt.Sprintf(configurationReadyConsoleTemplate, configurationReadyMessage, common.LogLevel, common.LogFormat, configurationFile, templatesRoot))
		return
	}
	application.logger.Debug(
		configurationReadyMessage,
		zap.String(logLevelFieldConstant, common.LogLevel),
		zap.String(logFormatFieldConstant, common.LogFormat),
		zap.String(configFileFieldConstant, configurationFile),
		zap.String(templatesRootFieldConstant, templatesRoot),
	)
}

// resolveVersion prefers the linked version and otherwise asks git from the executable's directory.
func (application *Application) resolveVersion(executionContext context.Context) string {
	dependencies := version.Dependencies{LinkedVersion: linkedVersion}
	if executablePath, executableError := application.executablePathResolver(); executableError == nil {
		dependencies.WorkingDirectory = filepath.Dir(executablePath)
	}
	if shellExecutor, executorError := execshell.NewShellExecutor(application.logger, execshell.NewOSCommandRunner(), application.humanReadableLoggingEnabled()); executorError == nil {
		dependencies.GitExecutor = shellExecutor
	}
	return strings.TrimSpace(version.Detect(executionContext, dependencies))
}

func (application *Application) printVersion(executionContext context.Context, output io.Writer) {
	fmt.Fprintf(output, versionOutputTemplateConstant, application.versionResolver(executionContext))
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	if flagChanged(command, initFlagNameConstant) {
		return application.writeEmbeddedConfiguration()
	}
	if len(arguments) == 0 {
		return command.Help()
	}
	return application.createBuilder.Run(command, arguments)
}

func (application *Application) writeEmbeddedConfiguration() error {
	target, targetError := resolveConfigurationFileTarget(application.options.initScope)
	if targetError != nil {
		return targetError
	}
	content, _ := EmbeddedDefaultConfiguration()
	if writeError := target.write(content, application.options.force); writeError != nil {
		return writeError
	}
	application.logger.Info(configurationWrittenMessage, zap.String(configFileFieldConstant, target.file))
	return nil
}

func (application *Application) flushLoggers() error {
	for _, logger := range []*zap.Logger{application.logger, application.consoleLogger} {
		if logger == nil {
			continue
		}
		if syncError := logger.Sync(); syncError != nil && !ignorableSyncError(syncError) {
			return syncError
		}
	}
	return nil
}

// ignorableSyncError matches the errors fsync returns for terminals and pipes.
func ignorableSyncError(syncError error) bool {
	for _, errno := range []syscall.Errno{syscall.ENOTSUP, syscall.EINVAL, syscall.EBADF, syscall.ENOTTY} {
		if errors.Is(syncError, errno) {
			return true
		}
	}
	return false
}

func flagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}
	if command.Flags().Changed(flagName) || command.InheritedFlags().Changed(flagName) {
		return true
	}
	root := command.Root()
	return root != nil && root.PersistentFlags().Changed(flagName)
}
