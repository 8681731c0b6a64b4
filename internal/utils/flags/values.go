package flags

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tyemirov/kickstart/internal/utils"
)

// ErrFlagNotDefined indicates that the requested flag is not present on the command.
var ErrFlagNotDefined = errors.New("flag not defined")

// BoolFlag returns the flag value and whether it was supplied explicitly.
func BoolFlag(command *cobra.Command, name string) (bool, bool, error) {
	return lookupValue(command, name, (*pflag.FlagSet).GetBool)
}

// StringFlag returns the flag value and whether it was supplied explicitly.
func StringFlag(command *cobra.Command, name string) (string, bool, error) {
	return lookupValue(command, name, (*pflag.FlagSet).GetString)
}

func lookupValue[Value any](command *cobra.Command, name string, read func(*pflag.FlagSet, string) (Value, error)) (Value, bool, error) {
	var zero Value
	if command == nil {
		return zero, false, ErrFlagNotDefined
	}

	// Local flags first, then anything inherited from parents.
	for _, flagSet := range []*pflag.FlagSet{command.Flags(), command.InheritedFlags()} {
		flag := flagSet.Lookup(name)
		if flag == nil {
			continue
		}
		value, readError := read(flagSet, name)
		if readError != nil {
			return zero, false, readError
		}
		return value, flag.Changed, nil
	}
	return zero, false, ErrFlagNotDefined
}

// CollectExecutionFlags reads the scaffolding flags bound to command. Flags that are not
// defined leave their fields at the zero value.
func CollectExecutionFlags(command *cobra.Command) utils.ExecutionFlags {
	var executionFlags utils.ExecutionFlags

	executionFlags.InitializeGit, executionFlags.InitializeGitSet, _ = BoolFlag(command, GitFlagName)
	executionFlags.RunInstall, executionFlags.RunInstallSet, _ = BoolFlag(command, InstallFlagName)
	executionFlags.CopyTemplate, executionFlags.CopyTemplateSet, _ = BoolFlag(command, CopyFlagName)

	targetDirectory, targetSet, _ := StringFlag(command, TargetFlagName)
	executionFlags.TargetDirectory = strings.TrimSpace(targetDirectory)
	executionFlags.TargetDirectorySet = targetSet

	return executionFlags
}

// ResolveExecutionFlags prefers the flags captured in the command context by the root command
// and falls back to parsing the command's own flags. The boolean reports whether the result
// carries any explicit override.
func ResolveExecutionFlags(command *cobra.Command) (utils.ExecutionFlags, bool) {
	if command != nil {
		if invocation, available := utils.InvocationFromContext(command.Context()); available {
			return invocation.Flags, true
		}
	}

	executionFlags := CollectExecutionFlags(command)
	return executionFlags, executionFlags.AnySet()
}
