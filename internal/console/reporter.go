// Package console renders task progress and final status lines for terminal users.
package console

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

const (
	completedGlyphConstant        = "✔"
	skippedGlyphConstant          = "↓"
	failedGlyphConstant           = "✖"
	startedGlyphConstant          = "…"
	errorLabelConstant            = "ERROR"
	doneLabelConstant             = "DONE"
	skippedLineTemplateConstant   = "%s %s [skipped: %s]\n"
	taskLineTemplateConstant      = "%s %s\n"
	failureDetailTemplateConstant = "  → %v\n"
	labelLineTemplateConstant     = "%s %s\n"
	redColorConstant              = "9"
	greenColorConstant            = "10"
	yellowColorConstant           = "11"
	grayColorConstant             = "8"
)

type styles struct {
	completed  lipgloss.Style
	skipped    lipgloss.Style
	failed     lipgloss.Style
	dim        lipgloss.Style
	errorLabel lipgloss.Style
	doneLabel  lipgloss.Style
}

func newStyles(renderer *lipgloss.Renderer) styles {
	return styles{
		completed:  renderer.NewStyle().Foreground(lipgloss.Color(greenColorConstant)),
		skipped:    renderer.NewStyle().Foreground(lipgloss.Color(yellowColorConstant)),
		failed:     renderer.NewStyle().Foreground(lipgloss.Color(redColorConstant)),
		dim:        renderer.NewStyle().Foreground(lipgloss.Color(grayColorConstant)),
		errorLabel: renderer.NewStyle().Bold(true).Reverse(true).Foreground(lipgloss.Color(redColorConstant)),
		doneLabel:  renderer.NewStyle().Bold(true).Reverse(true).Foreground(lipgloss.Color(greenColorConstant)),
	}
}

// Reporter prints one line per task transition. Progress goes to the output writer and
// failures to the error writer.
type Reporter struct {
	output       io.Writer
	errorOutput  io.Writer
	outputStyles styles
	errorStyles  styles
}

// NewReporter constructs a Reporter. Nil writers default to standard output and standard error.
// Colors are enabled only when the writer is a terminal that supports them.
func NewReporter(output io.Writer, errorOutput io.Writer) *Reporter {
	if output == nil {
		output = os.Stdout
	}
	if errorOutput == nil {
		errorOutput = os.Stderr
	}
	return &Reporter{
		output:       output,
		errorOutput:  errorOutput,
		outputStyles: newStyles(lipgloss.NewRenderer(output)),
		errorStyles:  newStyles(lipgloss.NewRenderer(errorOutput)),
	}
}

// TaskStarted prints the task title as in progress.
func (reporter *Reporter) TaskStarted(title string) {
	fmt.Fprintf(reporter.output, taskLineTemplateConstant, reporter.outputStyles.dim.Render(startedGlyphConstant), title)
}

// TaskCompleted prints the task as finished.
func (reporter *Reporter) TaskCompleted(title string) {
	fmt.Fprintf(reporter.output, taskLineTemplateConstant, reporter.outputStyles.completed.Render(completedGlyphConstant), title)
}

// TaskSkipped prints the task with its skip reason.
func (reporter *Reporter) TaskSkipped(title string, reason string) {
	fmt.Fprintf(reporter.output, skippedLineTemplateConstant, reporter.outputStyles.skipped.Render(skippedGlyphConstant), title, reason)
}

// TaskFailed prints the task and the failure beneath it.
func (reporter *Reporter) TaskFailed(title string, failure error) {
	fmt.Fprintf(reporter.errorOutput, taskLineTemplateConstant, reporter.errorStyles.failed.Render(failedGlyphConstant), title)
	if failure != nil {
		fmt.Fprintf(reporter.errorOutput, failureDetailTemplateConstant, failure)
	}
}

// PrintError prints an ERROR labelled message to the error writer.
func (reporter *Reporter) PrintError(message string) {
	fmt.Fprintf(reporter.errorOutput, labelLineTemplateConstant, reporter.errorStyles.errorLabel.Render(errorLabelConstant), message)
}

// PrintDone prints a DONE labelled message to the output writer.
func (reporter *Reporter) PrintDone(message string) {
	fmt.Fprintf(reporter.output, labelLineTemplateConstant, reporter.outputStyles.doneLabel.Render(doneLabelConstant), message)
}

// PrintLine prints an unstyled line to the output writer.
func (reporter *Reporter) PrintLine(message string) {
	fmt.Fprintln(reporter.output, message)
}

// PrintDetail prints a dimmed line to the output writer.
func (reporter *Reporter) PrintDetail(message string) {
	fmt.Fprintln(reporter.output, reporter.outputStyles.dim.Render(message))
}
