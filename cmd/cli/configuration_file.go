package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

const (
	initFlagNameConstant              = "init"
	initFlagUsageConstant             = "Write the embedded default configuration to local (./config.yaml) or user ($HOME/.kickstart/config.yaml)."
	forceFlagNameConstant             = "force"
	forceFlagUsageConstant            = "Overwrite an existing configuration file when initializing."
	initScopeLocalConstant            = "local"
	initScopeUserConstant             = "user"
	unsupportedInitScopeTemplate      = "unsupported initialization scope %q"
	workingDirectoryUnknownTemplate   = "unable to determine working directory: %w"
	homeDirectoryUnknownTemplate      = "unable to determine user home directory: %w"
	embeddedConfigurationMissingError = "embedded configuration content is unavailable"
	configurationDirectoryTemplate    = "unable to ensure configuration directory %s: %w"
	configurationExistsTemplate       = "configuration file already exists at %s (use --force to overwrite)"
	configurationIsDirectoryTemplate  = "configuration path %s is a directory"
	configurationWriteTemplate        = "unable to write configuration file %s: %w"
	configurationWrittenMessage       = "configuration file created"
	configurationDirectoryPermission  = 0o755
	configurationFilePermission       = 0o600
	searchPathOverrideVariable        = "KICKSTART_CONFIG_SEARCH_PATH"
	xdgConfigHomeVariable             = "XDG_CONFIG_HOME"
	workingDirectorySearchPath        = "."
	userConfigurationDirectoryName    = ".kickstart"
)

// normalizeInitializationScopeArguments rewrites a bare --init (or --init=) into --init=local
// unless the following argument names a scope, since pflag cannot express an optional value.
func normalizeInitializationScopeArguments(arguments []string) []string {
	if len(arguments) == 0 {
		return nil
	}

	bareFlag := "--" + initFlagNameConstant
	defaultedFlag := bareFlag + "=" + initScopeLocalConstant

	normalized := make([]string, len(arguments))
	for index, argument := range arguments {
		normalized[index] = argument
		switch {
		case strings.HasPrefix(argument, bareFlag+"=") && len(strings.TrimSpace(argument[len(bareFlag)+1:])) == 0:
			normalized[index] = defaultedFlag
		case argument == bareFlag:
			if index+1 < len(arguments) && isInitializationScope(arguments[index+1]) {
				continue
			}
			normalized[index] = defaultedFlag
		}
	}
	return normalized
}

func isInitializationScope(candidate string) bool {
	switch strings.ToLower(strings.TrimSpace(candidate)) {
	case initScopeLocalConstant, initScopeUserConstant:
		return true
	default:
		return false
	}
}

// configurationSearchPaths lists directories probed for config.yaml. A non-empty
// KICKSTART_CONFIG_SEARCH_PATH replaces the working directory and user locations.
func configurationSearchPaths() []string {
	if override := strings.TrimSpace(os.Getenv(searchPathOverrideVariable)); len(override) > 0 {
		var paths []string
		for _, entry := range filepath.SplitList(override) {
			if trimmed := strings.TrimSpace(entry); len(trimmed) > 0 {
				paths = append(paths, trimmed)
			}
		}
		if len(paths) > 0 {
			return paths
		}
		return []string{workingDirectorySearchPath}
	}

	bases := []string{os.Getenv(xdgConfigHomeVariable)}
	if userConfigDirectory, userConfigError := os.UserConfigDir(); userConfigError == nil {
		bases = append(bases, userConfigDirectory)
	}
	if homeDirectory, homeError := os.UserHomeDir(); homeError == nil {
		bases = append(bases, homeDirectory)
	}

	paths := []string{workingDirectorySearchPath}
	for _, base := range bases {
		base = strings.TrimSpace(base)
		if len(base) == 0 {
			continue
		}
		candidate := filepath.Join(base, userConfigurationDirectoryName)
		if !slices.Contains(paths, candidate) {
			paths = append(paths, candidate)
		}
	}
	return paths
}

// configurationFileTarget is the destination of an --init write.
type configurationFileTarget struct {
	directory string
	file      string
}

func resolveConfigurationFileTarget(scope string) (configurationFileTarget, error) {
	var directory string
	switch strings.ToLower(strings.TrimSpace(scope)) {
	case "", initScopeLocalConstant:
		workingDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return configurationFileTarget{}, fmt.Errorf(workingDirectoryUnknownTemplate, workingDirectoryError)
		}
		directory = workingDirectory
	case initScopeUserConstant:
		homeDirectory, homeError := os.UserHomeDir()
		if homeError != nil {
			return configurationFileTarget{}, fmt.Errorf(homeDirectoryUnknownTemplate, homeError)
		}
		directory = filepath.Join(homeDirectory, userConfigurationDirectoryName)
	default:
		return configurationFileTarget{}, fmt.Errorf(unsupportedInitScopeTemplate, strings.TrimSpace(scope))
	}
	return configurationFileTarget{directory: directory, file: filepath.Join(directory, configurationFileNameConstant)}, nil
}

// write stores content at the target. An existing file is replaced only when overwrite is set.
func (target configurationFileTarget) write(content []byte, overwrite bool) error {
	if len(content) == 0 {
		return errors.New(embeddedConfigurationMissingError)
	}
	if mkdirError := os.MkdirAll(target.directory, configurationDirectoryPermission); mkdirError != nil {
		return fmt.Errorf(configurationDirectoryTemplate, target.directory, mkdirError)
	}

	existing, statError := os.Stat(target.file)
	if statError != nil && !errors.Is(statError, os.ErrNotExist) {
		return fmt.Errorf(configurationWriteTemplate, target.file, statError)
	}
	if statError == nil {
		if existing.IsDir() {
			return fmt.Errorf(configurationIsDirectoryTemplate, target.file)
		}
		if !overwrite {
			return fmt.Errorf(configurationExistsTemplate, target.file)
		}
	}

	if writeError := os.WriteFile(target.file, content, configurationFilePermission); writeError != nil {
		return fmt.Errorf(configurationWriteTemplate, target.file, writeError)
	}
	return nil
}
