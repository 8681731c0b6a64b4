// Package version resolves the version string reported by the kickstart binary.
package version

import (
	"context"
	"os"
	"runtime/debug"
	"strings"

	"go.uber.org/zap"

	"github.com/tyemirov/kickstart/internal/execshell"
)

const (
	unknownVersionFallbackConstant            = "unknown"
	buildInfoDevelVersionValue                = "(devel)"
	buildSettingRevisionKeyConstant           = "vcs.revision"
	buildSettingModifiedKeyConstant           = "vcs.modified"
	buildSettingModifiedTrueConstant          = "true"
	revisionPrefixConstant                    = "dev-"
	dirtySuffixConstant                       = "-dirty"
	shortRevisionLengthConstant               = 7
	gitDescribeSubcommandConstant             = "describe"
	gitTagsFlagConstant                       = "--tags"
	gitAlwaysFlagConstant                     = "--always"
	gitDirtyFlagConstant                      = "--dirty"
	gitTerminalPromptEnvironmentNameConstant  = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptEnvironmentValueConstant = "0"
)

// BuildInfoProvider exposes runtime build metadata.
type BuildInfoProvider interface {
	Read() (*debug.BuildInfo, bool)
}

// GitExecutor runs git commands.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Dependencies describes the collaborators required for version detection. LinkedVersion
// carries a value injected at link time and wins over every other source.
type Dependencies struct {
	LinkedVersion     string
	BuildInfoProvider BuildInfoProvider
	GitExecutor       GitExecutor
	WorkingDirectory  string
}

// Detector resolves application version strings.
type Detector struct {
	linkedVersion     string
	buildInfoProvider BuildInfoProvider
	gitExecutor       GitExecutor
	workingDirectory  string
}

// NewDetector constructs a Detector with the supplied dependencies or host defaults.
func NewDetector(dependencies Dependencies) (*Detector, error) {
	provider := dependencies.BuildInfoProvider
	if provider == nil {
		provider = runtimeBuildInfoProvider{}
	}

	executor := dependencies.GitExecutor
	if executor == nil {
		shellExecutor, creationError := execshell.NewShellExecutor(zap.NewNop(), execshell.NewOSCommandRunner(), false)
		if creationError != nil {
			return nil, creationError
		}
		executor = shellExecutor
	}

	workingDirectory := strings.TrimSpace(dependencies.WorkingDirectory)
	if len(workingDirectory) == 0 {
		if currentDirectory, workingDirectoryError := os.Getwd(); workingDirectoryError == nil {
			workingDirectory = currentDirectory
		}
	}

	return &Detector{
		linkedVersion:     strings.TrimSpace(dependencies.LinkedVersion),
		buildInfoProvider: provider,
		gitExecutor:       executor,
		workingDirectory:  workingDirectory,
	}, nil
}

// Detect resolves the application version using the supplied dependencies.
func Detect(executionContext context.Context, dependencies Dependencies) string {
	detector, detectorError := NewDetector(dependencies)
	if detectorError != nil {
		return unknownVersionFallbackConstant
	}
	return detector.Version(executionContext)
}

// Version returns the first available of: the linked version, the module version, the VCS
// revision recorded at build time, and git describe output for the working directory.
func (detector *Detector) Version(executionContext context.Context) string {
	if detector == nil {
		return unknownVersionFallbackConstant
	}
	if len(detector.linkedVersion) > 0 {
		return detector.linkedVersion
	}

	buildInfo, buildInfoAvailable := detector.buildInfoProvider.Read()
	if buildInfoAvailable && buildInfo != nil {
		if moduleVersion := strings.TrimSpace(buildInfo.Main.Version); len(moduleVersion) > 0 && moduleVersion != buildInfoDevelVersionValue {
			return moduleVersion
		}
		if revisionVersion := versionFromRevision(buildInfo.Settings); len(revisionVersion) > 0 {
			return revisionVersion
		}
	}

	if describedVersion := detector.describeVersion(executionContext); len(describedVersion) > 0 {
		return describedVersion
	}
	return unknownVersionFallbackConstant
}

func versionFromRevision(settings []debug.BuildSetting) string {
	revision := ""
	modified := false
	for _, setting := range settings {
		switch setting.Key {
		case buildSettingRevisionKeyConstant:
			revision = strings.TrimSpace(setting.Value)
		case buildSettingModifiedKeyConstant:
			modified = setting.Value == buildSettingModifiedTrueConstant
		}
	}
	if len(revision) == 0 {
		return ""
	}
	if len(revision) > shortRevisionLengthConstant {
		revision = revision[:shortRevisionLengthConstant]
	}
	if modified {
		return revisionPrefixConstant + revision + dirtySuffixConstant
	}
	return revisionPrefixConstant + revision
}

func (detector *Detector) describeVersion(executionContext context.Context) string {
	if detector.gitExecutor == nil || len(detector.workingDirectory) == 0 {
		return ""
	}
	executionResult, executionError := detector.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            []string{gitDescribeSubcommandConstant, gitTagsFlagConstant, gitAlwaysFlagConstant, gitDirtyFlagConstant},
		WorkingDirectory:     detector.workingDirectory,
		EnvironmentVariables: map[string]string{gitTerminalPromptEnvironmentNameConstant: gitTerminalPromptEnvironmentValueConstant},
	})
	if executionError != nil {
		return ""
	}
	return strings.TrimSpace(executionResult.StandardOutput)
}

type runtimeBuildInfoProvider struct{}

func (runtimeBuildInfoProvider) Read() (*debug.BuildInfo, bool) {
	return debug.ReadBuildInfo()
}
