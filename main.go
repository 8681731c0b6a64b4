package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/tyemirov/kickstart/cmd/cli"
	"github.com/tyemirov/kickstart/internal/console"
)

const (
	exitErrorTemplateConstant = "%v\n"
)

// main executes the kickstart command-line application.
func main() {
	if executionError := cli.Execute(); executionError != nil {
		var reportedError console.ReportedError
		if !errors.As(executionError, &reportedError) {
			fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
		}
		os.Exit(1)
	}
}
