package cli

import (
	_ "embed"

	"github.com/tyemirov/kickstart/internal/scaffold"
)

const embeddedConfigurationTypeConstant = "yaml"

//go:embed default_config.yaml
var embeddedDefaultConfiguration []byte

// EmbeddedDefaultConfiguration returns the configuration shipped with the binary and its format.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	return append([]byte(nil), embeddedDefaultConfiguration...), embeddedConfigurationTypeConstant
}

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common   ApplicationCommonConfiguration `mapstructure:"common"`
	Scaffold scaffold.Configuration         `mapstructure:"scaffold"`
}

// ApplicationCommonConfiguration stores logging defaults shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}
