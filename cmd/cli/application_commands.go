package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tyemirov/kickstart/internal/filesystem"
	"github.com/tyemirov/kickstart/internal/scaffold"
	"github.com/tyemirov/kickstart/internal/templates"
)

func (application *Application) registerCommands(cobraCommand *cobra.Command) {
	application.createBuilder = &scaffold.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		ConfigurationProvider:        application.scaffoldConfiguration,
	}
	if createCommand, createBuildError := application.createBuilder.Build(); createBuildError == nil {
		cobraCommand.AddCommand(createCommand)
	}

	templatesBuilder := templates.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		RootProvider: func() string {
			return application.configuration.Scaffold.TemplatesRoot
		},
		FileSystem: filesystem.OSFileSystem{},
	}
	if templatesCommand, templatesBuildError := templatesBuilder.Build(); templatesBuildError == nil {
		cobraCommand.AddCommand(templatesCommand)
	}
}

func (application *Application) scaffoldConfiguration() scaffold.Configuration {
	return application.configuration.Scaffold
}
