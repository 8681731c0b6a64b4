package scaffold

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tyemirov/kickstart/internal/templates"
)

const (
	invalidTemplateMessageTemplateConstant = "invalid template name %q: %v"
	resolveTargetErrorTemplateConstant     = "unable to resolve target directory %s: %w"
	workingDirectoryMissingMessageConstant = "working directory required when no target directory is provided"
)

// ErrWorkingDirectoryRequired indicates neither a target nor a working directory was supplied.
var ErrWorkingDirectoryRequired = errors.New(workingDirectoryMissingMessageConstant)

// Options describes a single project creation request.
type Options struct {
	Template          string
	TargetDirectory   string
	TemplateDirectory string
	RunInstall        bool
	Git               bool
	CopyTemplate      bool
}

// InvalidTemplateError reports a template that cannot be used for scaffolding.
type InvalidTemplateError struct {
	Template  string
	Directory string
	Cause     error
}

// Error describes the invalid template.
func (templateError InvalidTemplateError) Error() string {
	return fmt.Sprintf(invalidTemplateMessageTemplateConstant, templateError.Template, templateError.Cause)
}

// Unwrap exposes the underlying failure.
func (templateError InvalidTemplateError) Unwrap() error {
	return templateError.Cause
}

// PathResolver converts relative paths into absolute ones.
type PathResolver interface {
	Abs(path string) (string, error)
}

// ResolveOptions fills the target directory from workingDirectory when it is empty, makes it
// absolute, and derives the template directory from the configured templates root.
func ResolveOptions(options Options, configuration Configuration, workingDirectory string, pathResolver PathResolver) (Options, error) {
	resolved := options
	resolved.Template = strings.TrimSpace(options.Template)

	targetDirectory := strings.TrimSpace(options.TargetDirectory)
	if len(targetDirectory) == 0 {
		targetDirectory = strings.TrimSpace(workingDirectory)
	}
	if len(targetDirectory) == 0 {
		return Options{}, ErrWorkingDirectoryRequired
	}
	absoluteTarget, absoluteError := pathResolver.Abs(targetDirectory)
	if absoluteError != nil {
		return Options{}, fmt.Errorf(resolveTargetErrorTemplateConstant, targetDirectory, absoluteError)
	}
	resolved.TargetDirectory = filepath.Clean(absoluteTarget)

	catalog, catalogError := templates.NewCatalog(configuration.TemplatesRoot, nil)
	if catalogError != nil {
		return Options{}, catalogError
	}
	templateDirectory, templateError := catalog.Resolve(resolved.Template)
	if templateError != nil {
		return Options{}, InvalidTemplateError{Template: resolved.Template, Cause: templateError}
	}
	resolved.TemplateDirectory = templateDirectory

	return resolved, nil
}
