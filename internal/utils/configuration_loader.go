package utils

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	environmentKeySeparatorConstant               = "_"
	configurationKeySeparatorConstant             = "."
	embeddedConfigurationReadErrorTemplate        = "unable to read embedded configuration: %w"
	configurationFileReadErrorTemplate            = "unable to read configuration file %s: %w"
	configurationDecodeErrorTemplate              = "unable to decode configuration: %w"
	configurationTargetMissingMessageConstant     = "configuration target must be provided"
	configurationFileMissingErrorTemplateConstant = "configuration file %s does not exist"
)

// ErrConfigurationTargetMissing indicates LoadConfiguration was called without a decode target.
var ErrConfigurationTargetMissing = errors.New(configurationTargetMissingMessageConstant)

// LoadedConfiguration describes where the effective configuration came from.
type LoadedConfiguration struct {
	ConfigFileUsed string
}

// ConfigurationLoader layers embedded defaults, configuration files, and environment overrides.
type ConfigurationLoader struct {
	configurationName     string
	configurationType     string
	environmentPrefix     string
	searchPaths           []string
	embeddedConfiguration []byte
	embeddedType          string
}

// NewConfigurationLoader constructs a loader that searches the provided directories in order.
func NewConfigurationLoader(configurationName string, configurationType string, environmentPrefix string, searchPaths []string) *ConfigurationLoader {
	copiedSearchPaths := make([]string, 0, len(searchPaths))
	for _, searchPath := range searchPaths {
		trimmedSearchPath := strings.TrimSpace(searchPath)
		if len(trimmedSearchPath) == 0 {
			continue
		}
		copiedSearchPaths = append(copiedSearchPaths, trimmedSearchPath)
	}
	return &ConfigurationLoader{
		configurationName: configurationName,
		configurationType: configurationType,
		environmentPrefix: environmentPrefix,
		searchPaths:       copiedSearchPaths,
	}
}

// SetEmbeddedConfiguration registers configuration content merged beneath any configuration file.
func (loader *ConfigurationLoader) SetEmbeddedConfiguration(data []byte, configurationType string) {
	loader.embeddedConfiguration = append([]byte(nil), data...)
	loader.embeddedType = configurationType
}

// LoadConfiguration decodes the layered configuration into target. Precedence from lowest to
// highest: defaults, embedded configuration, the configuration file, environment variables.
// An explicit configuration path replaces the search paths.
func (loader *ConfigurationLoader) LoadConfiguration(explicitConfigurationPath string, defaultValues map[string]any, target any) (LoadedConfiguration, error) {
	if target == nil {
		return LoadedConfiguration{}, ErrConfigurationTargetMissing
	}

	viperInstance := viper.New()
	for key, value := range defaultValues {
		viperInstance.SetDefault(key, value)
	}

	if len(loader.embeddedConfiguration) > 0 {
		embeddedType := loader.embeddedType
		if len(embeddedType) == 0 {
			embeddedType = loader.configurationType
		}
		viperInstance.SetConfigType(embeddedType)
		if mergeError := viperInstance.MergeConfig(bytes.NewReader(loader.embeddedConfiguration)); mergeError != nil {
			return LoadedConfiguration{}, fmt.Errorf(embeddedConfigurationReadErrorTemplate, mergeError)
		}
	}

	configurationFilePath, locateError := loader.locateConfigurationFile(explicitConfigurationPath)
	if locateError != nil {
		return LoadedConfiguration{}, locateError
	}

	if len(configurationFilePath) > 0 {
		viperInstance.SetConfigFile(configurationFilePath)
		viperInstance.SetConfigType(loader.configurationType)
		if mergeError := viperInstance.MergeInConfig(); mergeError != nil {
			return LoadedConfiguration{}, fmt.Errorf(configurationFileReadErrorTemplate, configurationFilePath, mergeError)
		}
	}

	if len(loader.environmentPrefix) > 0 {
		viperInstance.SetEnvPrefix(loader.environmentPrefix)
	}
	viperInstance.SetEnvKeyReplacer(strings.NewReplacer(configurationKeySeparatorConstant, environmentKeySeparatorConstant))
	viperInstance.AutomaticEnv()
	for key := range defaultValues {
		_ = viperInstance.BindEnv(key)
	}

	decodeError := viperInstance.Unmarshal(target, func(decoderConfiguration *mapstructure.DecoderConfig) {
		decoderConfiguration.TagName = "mapstructure"
		decoderConfiguration.WeaklyTypedInput = true
		decoderConfiguration.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	})
	if decodeError != nil {
		return LoadedConfiguration{}, fmt.Errorf(configurationDecodeErrorTemplate, decodeError)
	}

	return LoadedConfiguration{ConfigFileUsed: configurationFilePath}, nil
}

func (loader *ConfigurationLoader) locateConfigurationFile(explicitConfigurationPath string) (string, error) {
	trimmedExplicitPath := strings.TrimSpace(explicitConfigurationPath)
	if len(trimmedExplicitPath) > 0 {
		if _, statError := os.Stat(trimmedExplicitPath); statError != nil {
			return "", fmt.Errorf(configurationFileMissingErrorTemplateConstant, trimmedExplicitPath)
		}
		return trimmedExplicitPath, nil
	}

	fileName := loader.configurationName + configurationKeySeparatorConstant + loader.configurationType
	for _, searchPath := range loader.searchPaths {
		candidatePath := filepath.Join(searchPath, fileName)
		fileInfo, statError := os.Stat(candidatePath)
		if statError != nil || fileInfo.IsDir() {
			continue
		}
		return candidatePath, nil
	}
	return "", nil
}
