package console_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/kickstart/internal/console"
	"github.com/tyemirov/kickstart/pkg/taskrunner"
)

var _ taskrunner.Reporter = (*console.Reporter)(nil)

func TestReporterTaskLines(testInstance *testing.T) {
	testCases := []struct {
		name           string
		report         func(reporter *console.Reporter)
		expectedOutput string
		expectedErrors string
	}{
		{
			name:           "started",
			report:         func(reporter *console.Reporter) { reporter.TaskStarted("Clone Repo") },
			expectedOutput: "… Clone Repo\n",
		},
		{
			name:           "completed",
			report:         func(reporter *console.Reporter) { reporter.TaskCompleted("Clone Repo") },
			expectedOutput: "✔ Clone Repo\n",
		},
		{
			name: "skipped",
			report: func(reporter *console.Reporter) {
				reporter.TaskSkipped("Install dependencies", "Pass --install to automatically install dependencies")
			},
			expectedOutput: "↓ Install dependencies [skipped: Pass --install to automatically install dependencies]\n",
		},
		{
			name:           "failed",
			report:         func(reporter *console.Reporter) { reporter.TaskFailed("Initialize git", errors.New("failed to initialize git")) },
			expectedErrors: "✖ Initialize git\n  → failed to initialize git\n",
		},
		{
			name:           "failed_without_cause",
			report:         func(reporter *console.Reporter) { reporter.TaskFailed("Initialize git", nil) },
			expectedErrors: "✖ Initialize git\n",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			output := &bytes.Buffer{}
			errorOutput := &bytes.Buffer{}
			reporter := console.NewReporter(output, errorOutput)

			testCase.report(reporter)

			require.Equal(testInstance, testCase.expectedOutput, output.String())
			require.Equal(testInstance, testCase.expectedErrors, errorOutput.String())
		})
	}
}

func TestReporterLabels(testInstance *testing.T) {
	output := &bytes.Buffer{}
	errorOutput := &bytes.Buffer{}
	reporter := console.NewReporter(output, errorOutput)

	reporter.PrintError("Invalid template name")
	reporter.PrintDone("Project ready")

	require.Equal(testInstance, "ERROR Invalid template name\n", errorOutput.String())
	require.Equal(testInstance, "DONE Project ready\n", output.String())
}
