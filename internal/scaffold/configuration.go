package scaffold

import (
	"strings"

	"github.com/tyemirov/kickstart/internal/installer"
)

const (
	// DefaultRepositoryURL is the boilerplate repository cloned for every template.
	DefaultRepositoryURL = "git@github.com:DiegoBousfield/vanilla-boilerplate.git"
	// DefaultCloneDirectory is the directory the boilerplate is cloned into.
	DefaultCloneDirectory = "vanilla-boilerplate"
	// DefaultPackageManager is the package manager preferred when the project has no lockfile.
	DefaultPackageManager = "yarn"
)

// Configuration describes the persisted scaffolding settings.
type Configuration struct {
	TemplatesRoot           string `mapstructure:"templates_root"`
	RepositoryURL           string `mapstructure:"repository_url"`
	CloneDirectory          string `mapstructure:"clone_directory"`
	PreferredPackageManager string `mapstructure:"package_manager"`
	InitializeGit           bool   `mapstructure:"git"`
	RunInstall              bool   `mapstructure:"install"`
	CopyTemplate            bool   `mapstructure:"copy_template"`
}

// DefaultConfiguration returns the settings used when nothing is configured.
func DefaultConfiguration() Configuration {
	return Configuration{
		RepositoryURL:           DefaultRepositoryURL,
		CloneDirectory:          DefaultCloneDirectory,
		PreferredPackageManager: DefaultPackageManager,
	}
}

// Sanitize trims every string setting and restores defaults for blank values.
func (configuration Configuration) Sanitize() Configuration {
	sanitized := configuration
	sanitized.TemplatesRoot = strings.TrimSpace(configuration.TemplatesRoot)
	sanitized.RepositoryURL = strings.TrimSpace(configuration.RepositoryURL)
	sanitized.CloneDirectory = strings.TrimSpace(configuration.CloneDirectory)
	sanitized.PreferredPackageManager = strings.ToLower(strings.TrimSpace(configuration.PreferredPackageManager))

	defaults := DefaultConfiguration()
	if len(sanitized.RepositoryURL) == 0 {
		sanitized.RepositoryURL = defaults.RepositoryURL
	}
	if len(sanitized.CloneDirectory) == 0 {
		sanitized.CloneDirectory = defaults.CloneDirectory
	}
	if len(sanitized.PreferredPackageManager) == 0 {
		sanitized.PreferredPackageManager = defaults.PreferredPackageManager
	}
	return sanitized
}

// Validate reports settings that cannot produce a working pipeline.
func (configuration Configuration) Validate() error {
	for _, supported := range installer.SupportedPackageManagers() {
		if configuration.PreferredPackageManager == supported {
			return nil
		}
	}
	return installer.UnsupportedPackageManagerError{Name: configuration.PreferredPackageManager}
}
