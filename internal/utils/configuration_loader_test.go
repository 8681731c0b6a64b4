package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/kickstart/internal/utils"
)

const (
	loaderEnvironmentPrefixConstant = "LOADERTEST"
	loaderConfigurationNameConstant = "config"
	loaderConfigurationTypeConstant = "yaml"
	loaderConfigurationFileConstant = "config.yaml"
	embeddedLoaderContentConstant   = "scaffold:\n  clone_directory: embedded-clone\n  package_manager: yarn\n"
)

type loaderFixture struct {
	Scaffold loaderScaffoldFixture `mapstructure:"scaffold"`
}

type loaderScaffoldFixture struct {
	CloneDirectory string `mapstructure:"clone_directory"`
	PackageManager string `mapstructure:"package_manager"`
	Install        bool   `mapstructure:"install"`
}

func loaderDefaults() map[string]any {
	return map[string]any{
		"scaffold.clone_directory": "default-clone",
		"scaffold.package_manager": "npm",
		"scaffold.install":         false,
	}
}

func writeLoaderFile(testInstance *testing.T, directory string, content string) string {
	testInstance.Helper()
	configurationPath := filepath.Join(directory, loaderConfigurationFileConstant)
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(content), 0o600))
	return configurationPath
}

func TestConfigurationLoaderLayering(testInstance *testing.T) {
	testCases := []struct {
		name                   string
		embedded               string
		fileContent            string
		environment            map[string]string
		expected               loaderScaffoldFixture
		expectConfigurationUse bool
	}{
		{
			name:     "defaults_only",
			expected: loaderScaffoldFixture{CloneDirectory: "default-clone", PackageManager: "npm"},
		},
		{
			name:     "embedded_over_defaults",
			embedded: embeddedLoaderContentConstant,
			expected: loaderScaffoldFixture{CloneDirectory: "embedded-clone", PackageManager: "yarn"},
		},
		{
			name:                   "file_over_embedded",
			embedded:               embeddedLoaderContentConstant,
			fileContent:            "scaffold:\n  package_manager: pnpm\n",
			expected:               loaderScaffoldFixture{CloneDirectory: "embedded-clone", PackageManager: "pnpm"},
			expectConfigurationUse: true,
		},
		{
			name:        "environment_over_file",
			embedded:    embeddedLoaderContentConstant,
			fileContent: "scaffold:\n  clone_directory: file-clone\n  install: false\n",
			environment: map[string]string{
				"LOADERTEST_SCAFFOLD_CLONE_DIRECTORY": "environment-clone",
				"LOADERTEST_SCAFFOLD_INSTALL":         "true",
			},
			expected:               loaderScaffoldFixture{CloneDirectory: "environment-clone", PackageManager: "yarn", Install: true},
			expectConfigurationUse: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			searchDirectory := testInstance.TempDir()
			expectedConfigurationPath := ""
			if len(testCase.fileContent) > 0 {
				expectedConfigurationPath = writeLoaderFile(testInstance, searchDirectory, testCase.fileContent)
			}
			for environmentName, environmentValue := range testCase.environment {
				testInstance.Setenv(environmentName, environmentValue)
			}

			loader := utils.NewConfigurationLoader(loaderConfigurationNameConstant, loaderConfigurationTypeConstant, loaderEnvironmentPrefixConstant, []string{searchDirectory})
			if len(testCase.embedded) > 0 {
				loader.SetEmbeddedConfiguration([]byte(testCase.embedded), loaderConfigurationTypeConstant)
			}

			var loaded loaderFixture
			metadata, loadError := loader.LoadConfiguration("", loaderDefaults(), &loaded)
			require.NoError(testInstance, loadError)
			require.Equal(testInstance, testCase.expected, loaded.Scaffold)
			require.Equal(testInstance, expectedConfigurationPath, metadata.ConfigFileUsed)
		})
	}
}

func TestConfigurationLoaderSearchOrder(testInstance *testing.T) {
	firstDirectory := testInstance.TempDir()
	secondDirectory := testInstance.TempDir()
	thirdDirectory := testInstance.TempDir()

	require.NoError(testInstance, os.Mkdir(filepath.Join(firstDirectory, loaderConfigurationFileConstant), 0o755))
	secondPath := writeLoaderFile(testInstance, secondDirectory, "scaffold:\n  clone_directory: second\n")
	writeLoaderFile(testInstance, thirdDirectory, "scaffold:\n  clone_directory: third\n")

	loader := utils.NewConfigurationLoader(loaderConfigurationNameConstant, loaderConfigurationTypeConstant, loaderEnvironmentPrefixConstant, []string{" ", firstDirectory, secondDirectory, thirdDirectory})

	var loaded loaderFixture
	metadata, loadError := loader.LoadConfiguration("", loaderDefaults(), &loaded)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, "second", loaded.Scaffold.CloneDirectory)
	require.Equal(testInstance, secondPath, metadata.ConfigFileUsed)
}

func TestConfigurationLoaderExplicitFile(testInstance *testing.T) {
	searchDirectory := testInstance.TempDir()
	writeLoaderFile(testInstance, searchDirectory, "scaffold:\n  clone_directory: searched\n")
	explicitPath := writeLoaderFile(testInstance, testInstance.TempDir(), "scaffold:\n  clone_directory: explicit\n")

	loader := utils.NewConfigurationLoader(loaderConfigurationNameConstant, loaderConfigurationTypeConstant, loaderEnvironmentPrefixConstant, []string{searchDirectory})

	var loaded loaderFixture
	metadata, loadError := loader.LoadConfiguration(explicitPath, loaderDefaults(), &loaded)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, "explicit", loaded.Scaffold.CloneDirectory)
	require.Equal(testInstance, explicitPath, metadata.ConfigFileUsed)
}

func TestConfigurationLoaderFailures(testInstance *testing.T) {
	malformedDirectory := testInstance.TempDir()
	malformedPath := writeLoaderFile(testInstance, malformedDirectory, "scaffold: [unterminated\n")

	testCases := []struct {
		name         string
		explicitPath string
		embedded     string
		target       any
		fragment     string
	}{
		{
			name:         "missing_explicit_file",
			explicitPath: filepath.Join(testInstance.TempDir(), "absent.yaml"),
			target:       &loaderFixture{},
			fragment:     "does not exist",
		},
		{
			name:         "malformed_file",
			explicitPath: malformedPath,
			target:       &loaderFixture{},
			fragment:     "unable to read configuration file",
		},
		{
			name:     "malformed_embedded",
			embedded: "scaffold: [unterminated\n",
			target:   &loaderFixture{},
			fragment: "unable to read embedded configuration",
		},
		{
			name:     "missing_target",
			fragment: utils.ErrConfigurationTargetMissing.Error(),
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			loader := utils.NewConfigurationLoader(loaderConfigurationNameConstant, loaderConfigurationTypeConstant, loaderEnvironmentPrefixConstant, []string{testInstance.TempDir()})
			if len(testCase.embedded) > 0 {
				loader.SetEmbeddedConfiguration([]byte(testCase.embedded), loaderConfigurationTypeConstant)
			}

			_, loadError := loader.LoadConfiguration(testCase.explicitPath, loaderDefaults(), testCase.target)
			require.ErrorContains(testInstance, loadError, testCase.fragment)
		})
	}
}
