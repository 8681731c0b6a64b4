// Package flags binds the scaffolding flags to Cobra commands and reads them back.
package flags

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	// GitFlagName toggles repository initialization.
	GitFlagName = "git"
	// GitFlagShorthand is the shorthand for GitFlagName.
	GitFlagShorthand = "g"
	// GitFlagUsage describes GitFlagName.
	GitFlagUsage = "Initialize a git repository in the new project"
	// InstallFlagName toggles dependency installation.
	InstallFlagName = "install"
	// InstallFlagShorthand is the shorthand for InstallFlagName.
	InstallFlagShorthand = "i"
	// InstallFlagUsage describes InstallFlagName.
	InstallFlagUsage = "Install dependencies after cloning"
	// CopyFlagName toggles copying template files into the project.
	CopyFlagName  = "copy"
	CopyFlagUsage = "Copy template files into the project without overwriting cloned files"
	// TargetFlagName selects the directory the project is created in.
	TargetFlagName  = "target"
	TargetFlagUsage = "Directory to create the project in (defaults to the working directory)"
)

// ExecutionDefaults describes default flag values.
type ExecutionDefaults struct {
	InitializeGit   bool
	RunInstall      bool
	CopyTemplate    bool
	TargetDirectory string
}

// BindExecutionFlags attaches the scaffolding flags to command's local flag set.
func BindExecutionFlags(command *cobra.Command, defaults ExecutionDefaults) {
	if command == nil {
		return
	}

	flagSet := command.Flags()
	bindToggleFlag(flagSet, GitFlagName, GitFlagShorthand, defaults.InitializeGit, GitFlagUsage)
	bindToggleFlag(flagSet, InstallFlagName, InstallFlagShorthand, defaults.RunInstall, InstallFlagUsage)
	bindToggleFlag(flagSet, CopyFlagName, "", defaults.CopyTemplate, CopyFlagUsage)
	if flagSet.Lookup(TargetFlagName) == nil {
		flagSet.String(TargetFlagName, defaults.TargetDirectory, TargetFlagUsage)
	}
}

func bindToggleFlag(flagSet *pflag.FlagSet, name string, shorthand string, defaultValue bool, usage string) {
	if flagSet.Lookup(name) != nil {
		return
	}
	if len(shorthand) > 0 {
		flagSet.BoolP(name, shorthand, defaultValue, usage)
		return
	}
	flagSet.Bool(name, defaultValue, usage)
}
