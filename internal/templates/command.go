package templates

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	commandUseNameConstant          = "templates"
	commandAliasConstant            = "ls"
	commandShortDescriptionConstant = "List the available templates"
	commandLongDescriptionConstant  = "templates lists the template directories found under the configured templates root together with their manifest descriptions."
	emptyCatalogTemplateConstant    = "no templates found in %s\n"
	entryWithDescriptionTemplate    = "%-*s  %s\n"
	entryTemplateConstant           = "%s\n"
	listedLogMessageConstant        = "templates listed"
	logFieldRootConstant            = "templates_root"
	logFieldCountConstant           = "count"
)

// CommandBuilder assembles the templates command.
type CommandBuilder struct {
	LoggerProvider func() *zap.Logger
	RootProvider   func() string
	FileSystem     FileSystem
}

// Build constructs the templates command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	return &cobra.Command{
		Use:     commandUseNameConstant,
		Aliases: []string{commandAliasConstant},
		Short:   commandShortDescriptionConstant,
		Long:    commandLongDescriptionConstant,
		Args:    cobra.NoArgs,
		RunE:    builder.run,
	}, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, _ []string) error {
	root := ""
	if builder.RootProvider != nil {
		root = builder.RootProvider()
	}

	catalog, catalogError := NewCatalog(root, builder.FileSystem)
	if catalogError != nil {
		return catalogError
	}

	discovered, listError := catalog.List()
	if listError != nil {
		return listError
	}

	logger := zap.NewNop()
	if builder.LoggerProvider != nil {
		if provided := builder.LoggerProvider(); provided != nil {
			logger = provided
		}
	}
	logger.Debug(listedLogMessageConstant, zap.String(logFieldRootConstant, catalog.Root()), zap.Int(logFieldCountConstant, len(discovered)))

	output := command.OutOrStdout()
	if len(discovered) == 0 {
		fmt.Fprintf(output, emptyCatalogTemplateConstant, catalog.Root())
		return nil
	}

	nameWidth := 0
	for _, template := range discovered {
		if width := len(filepath.Base(template.Directory)); width > nameWidth {
			nameWidth = width
		}
	}
	for _, template := range discovered {
		directoryName := filepath.Base(template.Directory)
		if len(template.Description) == 0 {
			fmt.Fprintf(output, entryTemplateConstant, directoryName)
			continue
		}
		fmt.Fprintf(output, entryWithDescriptionTemplate, nameWidth, directoryName, template.Description)
	}
	return nil
}
