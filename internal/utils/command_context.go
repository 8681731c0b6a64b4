package utils

import (
	"context"
	"strings"
)

type invocationContextKey struct{}

// ExecutionFlags captures scaffolding modifiers derived from CLI flags. Each Set field records
// whether the matching flag was supplied explicitly.
type ExecutionFlags struct {
	InitializeGit      bool
	InitializeGitSet   bool
	RunInstall         bool
	RunInstallSet      bool
	CopyTemplate       bool
	CopyTemplateSet    bool
	TargetDirectory    string
	TargetDirectorySet bool
}

// AnySet reports whether at least one flag was supplied explicitly.
func (flags ExecutionFlags) AnySet() bool {
	return flags.InitializeGitSet || flags.RunInstallSet || flags.CopyTemplateSet || flags.TargetDirectorySet
}

// Invocation holds what the root command resolved before a subcommand runs.
type Invocation struct {
	ConfigurationFile string
	Flags             ExecutionFlags
}

// WithInvocation returns a child of parentContext carrying invocation.
func WithInvocation(parentContext context.Context, invocation Invocation) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	invocation.ConfigurationFile = strings.TrimSpace(invocation.ConfigurationFile)
	invocation.Flags.TargetDirectory = strings.TrimSpace(invocation.Flags.TargetDirectory)
	return context.WithValue(parentContext, invocationContextKey{}, invocation)
}

// InvocationFromContext returns the invocation stored by WithInvocation.
func InvocationFromContext(executionContext context.Context) (Invocation, bool) {
	if executionContext == nil {
		return Invocation{}, false
	}
	invocation, available := executionContext.Value(invocationContextKey{}).(Invocation)
	return invocation, available
}
