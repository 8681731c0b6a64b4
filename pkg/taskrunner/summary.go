package taskrunner

import (
	"fmt"
	"strings"
)

// RenderSummaryLine returns a single key=value line describing a finished run.
func RenderSummaryLine(outcome Outcome) string {
	statuses := []Status{StatusCompleted, StatusSkipped, StatusOmitted, StatusFailed, StatusPending}

	parts := []string{fmt.Sprintf("Summary: total.tasks=%d", len(outcome.Results))}
	for _, status := range statuses {
		parts = append(parts, fmt.Sprintf("%s=%d", status, outcome.Count(status)))
	}

	duration := outcome.Duration()
	parts = append(parts, fmt.Sprintf("duration_human=%s", duration.String()))
	parts = append(parts, fmt.Sprintf("duration_ms=%d", duration.Milliseconds()))

	return strings.Join(parts, " ")
}
