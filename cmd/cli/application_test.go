package cli_test

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/tyemirov/kickstart/cmd/cli"
	"github.com/tyemirov/kickstart/internal/scaffold"
	"github.com/tyemirov/kickstart/internal/utils"
)

const (
	configFileName           = "config.yaml"
	searchPathVariable       = "KICKSTART_CONFIG_SEARCH_PATH"
	userDirectoryName        = ".kickstart"
	quietStructuredCommon    = "common:\n  log_level: error\n  log_format: structured\n"
	initializedMessage       = "configuration initialized"
	preexistingConfiguration = "common:\n  log_level: error\n"
)

func commonSection(logLevel utils.LogLevel, logFormat utils.LogFormat) string {
	return "common:\n  log_level: " + string(logLevel) + "\n  log_format: " + string(logFormat) + "\n"
}

func scaffoldSection(templatesRoot string) string {
	return "scaffold:\n  templates_root: " + templatesRoot + "\n  clone_directory: my-app\n"
}

func TestInitializationLogsOnlyAtDebugLevel(testInstance *testing.T) {
	testCases := []struct {
		name      string
		logLevel  utils.LogLevel
		logFormat utils.LogFormat
		verify    func(testInstance *testing.T, output string, configurationPath string, templatesRoot string)
	}{
		{
			name:      "structured error level is silent",
			logLevel:  utils.LogLevelError,
			logFormat: utils.LogFormatStructured,
			verify: func(testInstance *testing.T, output string, _ string, _ string) {
				require.Empty(testInstance, strings.TrimSpace(output))
			},
		},
		{
			name:      "console error level is silent",
			logLevel:  utils.LogLevelError,
			logFormat: utils.LogFormatConsole,
			verify: func(testInstance *testing.T, output string, _ string, _ string) {
				require.Empty(testInstance, strings.TrimSpace(output))
			},
		},
		{
			name:      "structured debug emits one entry",
			logLevel:  utils.LogLevelDebug,
			logFormat: utils.LogFormatStructured,
			verify: func(testInstance *testing.T, output string, configurationPath string, templatesRoot string) {
				lines := strings.Split(strings.TrimSpace(output), "\n")
				require.Len(testInstance, lines, 1)

				var entry map[string]any
				require.NoError(testInstance, json.Unmarshal([]byte(lines[0]), &entry))
				require.Equal(testInstance, map[string]any{
					"level":          "debug",
					"msg":            initializedMessage,
					"log_level":      "debug",
					"log_format":     "structured",
					"config_file":    configurationPath,
					"templates_root": templatesRoot,
				}, withoutKeys(entry, "ts", "caller"))
			},
		},
		{
			name:      "console debug prints a banner",
			logLevel:  utils.LogLevelDebug,
			logFormat: utils.LogFormatConsole,
			verify: func(testInstance *testing.T, output string, configurationPath string, templatesRoot string) {
				expected := initializedMessage + " | log level=debug | log format=console | config file=" + configurationPath + " | templates root=" + templatesRoot
				var banner string
				for _, line := range strings.Split(output, "\n") {
					if strings.Contains(line, expected) {
						banner = strings.TrimSpace(line)
					}
				}
				require.NotEmpty(testInstance, banner, "banner missing from %q", output)
				require.True(testInstance, strings.HasPrefix(banner, "DEBUG"))
				require.NotContains(testInstance, output, `"log_level"`)
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			configurationDirectory := testInstance.TempDir()
			templatesRoot := testInstance.TempDir()
			configurationPath := filepath.Join(configurationDirectory, configFileName)
			writeConfigurationFile(testInstance, configurationPath, commonSection(testCase.logLevel, testCase.logFormat)+scaffoldSection(templatesRoot))
			testInstance.Setenv(searchPathVariable, configurationDirectory)

			application := cli.NewApplication()
			capture := captureStream(testInstance, &os.Stderr)
			initializationError := application.InitializeForCommand("create")
			output := capture.finish(testInstance)

			require.NoError(testInstance, initializationError)
			require.Equal(testInstance, evaluatedPath(testInstance, configurationPath), evaluatedPath(testInstance, application.ConfigFileUsed()))
			testCase.verify(testInstance, output, application.ConfigFileUsed(), templatesRoot)
		})
	}
}

func TestConfigurationLayersOverrideEmbeddedDefaults(testInstance *testing.T) {
	testCases := []struct {
		name        string
		fileContent string
		environment map[string]string
		expected    scaffold.Configuration
	}{
		{
			name:        "embedded defaults",
			fileContent: quietStructuredCommon,
			expected:    scaffold.DefaultConfiguration(),
		},
		{
			name:        "file values",
			fileContent: quietStructuredCommon + "scaffold:\n  repository_url: https://example.com/boilerplate.git\n  package_manager: pnpm\n  git: true\n",
			expected: scaffold.Configuration{
				RepositoryURL:           "https://example.com/boilerplate.git",
				CloneDirectory:          scaffold.DefaultCloneDirectory,
				PreferredPackageManager: "pnpm",
				InitializeGit:           true,
			},
		},
		{
			name:        "environment beats file",
			fileContent: quietStructuredCommon + "scaffold:\n  clone_directory: from-file\n",
			environment: map[string]string{
				"KICKSTART_SCAFFOLD_CLONE_DIRECTORY": "from-environment",
				"KICKSTART_SCAFFOLD_PACKAGE_MANAGER": "npm",
				"KICKSTART_SCAFFOLD_INSTALL":         "true",
			},
			expected: scaffold.Configuration{
				RepositoryURL:           scaffold.DefaultRepositoryURL,
				CloneDirectory:          "from-environment",
				PreferredPackageManager: "npm",
				RunInstall:              true,
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			configurationDirectory := testInstance.TempDir()
			writeConfigurationFile(testInstance, filepath.Join(configurationDirectory, configFileName), testCase.fileContent)
			testInstance.Setenv(searchPathVariable, configurationDirectory)
			for name, value := range testCase.environment {
				testInstance.Setenv(name, value)
			}

			application := cli.NewApplication()
			require.NoError(testInstance, application.InitializeForCommand("create"))

			effective := application.Configuration().Scaffold
			require.True(testInstance, filepath.IsAbs(effective.TemplatesRoot))
			effective.TemplatesRoot = ""
			require.Equal(testInstance, testCase.expected, effective)
		})
	}
}

func TestInitFlagWritesEmbeddedConfiguration(testInstance *testing.T) {
	embedded, _ := cli.EmbeddedDefaultConfiguration()
	require.NotEmpty(testInstance, embedded)

	testInstance.Run("local scope", func(testInstance *testing.T) {
		workingDirectory := testInstance.TempDir()
		testInstance.Chdir(workingDirectory)
		testInstance.Setenv(searchPathVariable, testInstance.TempDir())
		replaceArguments(testInstance, "--init")

		require.NoError(testInstance, cli.NewApplication().Execute())
		requireFileContent(testInstance, filepath.Join(workingDirectory, configFileName), embedded)
	})

	testInstance.Run("user scope", func(testInstance *testing.T) {
		testInstance.Chdir(testInstance.TempDir())
		homeDirectory := testInstance.TempDir()
		testInstance.Setenv("HOME", homeDirectory)
		testInstance.Setenv(searchPathVariable, testInstance.TempDir())
		replaceArguments(testInstance, "--init=user")

		require.NoError(testInstance, cli.NewApplication().Execute())
		requireFileContent(testInstance, filepath.Join(homeDirectory, userDirectoryName, configFileName), embedded)
	})

	testInstance.Run("existing file needs force", func(testInstance *testing.T) {
		workingDirectory := testInstance.TempDir()
		testInstance.Chdir(workingDirectory)
		testInstance.Setenv(searchPathVariable, testInstance.TempDir())
		configurationPath := filepath.Join(workingDirectory, configFileName)
		writeConfigurationFile(testInstance, configurationPath, preexistingConfiguration)

		replaceArguments(testInstance, "--init")
		executionError := cli.NewApplication().Execute()
		require.ErrorContains(testInstance, executionError, "already exists")
		requireFileContent(testInstance, configurationPath, []byte(preexistingConfiguration))

		replaceArguments(testInstance, "--init", "--force")
		require.NoError(testInstance, cli.NewApplication().Execute())
		requireFileContent(testInstance, configurationPath, embedded)
	})

	testInstance.Run("unknown scope", func(testInstance *testing.T) {
		testInstance.Chdir(testInstance.TempDir())
		testInstance.Setenv(searchPathVariable, testInstance.TempDir())
		replaceArguments(testInstance, "--init=system")

		require.ErrorContains(testInstance, cli.NewApplication().Execute(), `unsupported initialization scope "system"`)
	})
}

func TestConfigurationSearchOrder(testInstance *testing.T) {
	testCases := []struct {
		name     string
		present  []string
		expected string
	}{
		{name: "working directory first", present: []string{"working", "xdg", "home"}, expected: "working"},
		{name: "xdg before home", present: []string{"xdg", "home"}, expected: "xdg"},
		{name: "home last", present: []string{"home"}, expected: "home"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			homeDirectory := testInstance.TempDir()
			xdgDirectory := filepath.Join(homeDirectory, "config")
			locations := map[string]string{
				"working": testInstance.TempDir(),
				"xdg":     filepath.Join(xdgDirectory, userDirectoryName),
				"home":    filepath.Join(homeDirectory, userDirectoryName),
			}
			testInstance.Setenv("HOME", homeDirectory)
			testInstance.Setenv("XDG_CONFIG_HOME", xdgDirectory)
			testInstance.Setenv(searchPathVariable, "")
			testInstance.Chdir(locations["working"])

			for _, role := range testCase.present {
				require.NoError(testInstance, os.MkdirAll(locations[role], 0o755))
				writeConfigurationFile(testInstance, filepath.Join(locations[role], configFileName), quietStructuredCommon)
			}

			application := cli.NewApplication()
			capture := captureStream(testInstance, &os.Stderr)
			initializationError := application.InitializeForCommand("create")
			output := capture.finish(testInstance)

			require.NoError(testInstance, initializationError)
			require.Empty(testInstance, strings.TrimSpace(output))
			expectedPath := filepath.Join(locations[testCase.expected], configFileName)
			require.Equal(testInstance, evaluatedPath(testInstance, expectedPath), evaluatedPath(testInstance, application.ConfigFileUsed()))
		})
	}
}

func TestExplicitConfigurationFlag(testInstance *testing.T) {
	testInstance.Run("selects the given file", func(testInstance *testing.T) {
		templatesRoot := testInstance.TempDir()
		configurationPath := filepath.Join(testInstance.TempDir(), "custom.yaml")
		writeConfigurationFile(testInstance, configurationPath, quietStructuredCommon+scaffoldSection(templatesRoot))
		testInstance.Setenv(searchPathVariable, testInstance.TempDir())
		replaceArguments(testInstance, "--config", configurationPath, "templates")

		capture := captureStream(testInstance, &os.Stdout)
		executionError := cli.NewApplication().Execute()
		output := capture.finish(testInstance)

		require.NoError(testInstance, executionError)
		require.Equal(testInstance, "no templates found in "+templatesRoot+"\n", output)
	})

	testInstance.Run("fails when the file is missing", func(testInstance *testing.T) {
		testInstance.Setenv(searchPathVariable, testInstance.TempDir())
		replaceArguments(testInstance, "--config", filepath.Join(testInstance.TempDir(), "missing.yaml"), "version")

		require.ErrorContains(testInstance, cli.NewApplication().Execute(), "unable to load configuration")
	})
}

func TestEmbeddedDefaultConfigurationMatchesScaffoldDefaults(testInstance *testing.T) {
	data, format := cli.EmbeddedDefaultConfiguration()
	reader := viper.New()
	reader.SetConfigType(format)
	require.NoError(testInstance, reader.ReadConfig(bytes.NewReader(data)))

	var configuration cli.ApplicationConfiguration
	require.NoError(testInstance, reader.Unmarshal(&configuration))
	require.Equal(testInstance, cli.ApplicationCommonConfiguration{
		LogLevel:  string(utils.LogLevelError),
		LogFormat: string(utils.LogFormatStructured),
	}, configuration.Common)
	require.Equal(testInstance, scaffold.DefaultConfiguration(), configuration.Scaffold)
}

func withoutKeys(entry map[string]any, keys ...string) map[string]any {
	for _, key := range keys {
		delete(entry, key)
	}
	return entry
}

func evaluatedPath(testInstance testing.TB, path string) string {
	testInstance.Helper()
	if len(strings.TrimSpace(path)) == 0 {
		return ""
	}
	resolved, resolveError := filepath.EvalSymlinks(path)
	require.NoError(testInstance, resolveError)
	return resolved
}

func writeConfigurationFile(testInstance testing.TB, path string, content string) {
	testInstance.Helper()
	require.NoError(testInstance, os.WriteFile(path, []byte(content), 0o600))
}

func requireFileContent(testInstance testing.TB, path string, expected []byte) {
	testInstance.Helper()
	content, readError := os.ReadFile(path)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, string(expected), string(content))
}

func replaceArguments(testInstance testing.TB, arguments ...string) {
	testInstance.Helper()
	original := os.Args
	os.Args = append([]string{"kickstart"}, arguments...)
	testInstance.Cleanup(func() { os.Args = original })
}

// streamCapture redirects one of the process standard streams into a pipe.
type streamCapture struct {
	target   **os.File
	original *os.File
	reader   *os.File
	writer   *os.File
}

func captureStream(testInstance testing.TB, target **os.File) *streamCapture {
	testInstance.Helper()
	reader, writer, pipeError := os.Pipe()
	require.NoError(testInstance, pipeError)

	capture := &streamCapture{target: target, original: *target, reader: reader, writer: writer}
	*target = writer
	return capture
}

func (capture *streamCapture) finish(testInstance testing.TB) string {
	testInstance.Helper()
	*capture.target = capture.original
	require.NoError(testInstance, capture.writer.Close())

	captured, readError := io.ReadAll(capture.reader)
	require.NoError(testInstance, readError)
	require.NoError(testInstance, capture.reader.Close())
	return string(captured)
}
