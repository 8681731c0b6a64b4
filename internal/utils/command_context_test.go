package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWithInvocationStoresTrimmedValues(t *testing.T) {
	enriched := WithInvocation(context.Background(), Invocation{
		ConfigurationFile: " /etc/kickstart/config.yaml ",
		Flags:             ExecutionFlags{InitializeGit: true, InitializeGitSet: true, TargetDirectory: " /tmp/projects ", TargetDirectorySet: true},
	})

	invocation, exists := InvocationFromContext(enriched)
	require.True(t, exists)
	require.Equal(t, "/etc/kickstart/config.yaml", invocation.ConfigurationFile)
	require.True(t, invocation.Flags.InitializeGit)
	require.Equal(t, "/tmp/projects", invocation.Flags.TargetDirectory)
	require.True(t, invocation.Flags.AnySet())
}

func TestInvocationFromContextWithoutValue(t *testing.T) {
	_, exists := InvocationFromContext(context.Background())
	require.False(t, exists)
}

func TestExecutionFlagsAnySet(t *testing.T) {
	testCases := []struct {
		name     string
		flags    ExecutionFlags
		expected bool
	}{
		{name: "values_without_set_markers", flags: ExecutionFlags{RunInstall: true, TargetDirectory: "/tmp"}, expected: false},
		{name: "install_set", flags: ExecutionFlags{RunInstallSet: true}, expected: true},
		{name: "copy_set", flags: ExecutionFlags{CopyTemplateSet: true}, expected: true},
		{name: "target_set", flags: ExecutionFlags{TargetDirectorySet: true}, expected: true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			require.Equal(t, testCase.expected, testCase.flags.AnySet())
		})
	}
}
