// Package filesystem provides the operating-system filesystem used by project scaffolding.
package filesystem

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	pathRequiredMessageConstant         = "path required"
	notDirectoryMessageTemplateConstant = "%s is not a directory"
	unreadableMessageTemplateConstant   = "%s is not readable: %w"
	missingMessageTemplateConstant      = "%s does not exist"
	inspectMessageTemplateConstant      = "unable to inspect %s: %w"
	copySourceMessageTemplateConstant   = "copy source %s: %w"
	copyEntryMessageTemplateConstant    = "copy %s: %w"
	removeMessageTemplateConstant       = "remove %s: %w"
	ownerDirectoryPermissionsConstant   = 0o700
)

var (
	// ErrPathRequired indicates an empty path argument.
	ErrPathRequired = errors.New(pathRequiredMessageConstant)
	// ErrNotDirectory indicates the path exists but is not a directory.
	ErrNotDirectory = errors.New("not a directory")
	// ErrDirectoryMissing indicates the path does not exist.
	ErrDirectoryMissing = errors.New("directory missing")
)

// OSFileSystem implements filesystem operations against the host operating system.
type OSFileSystem struct{}

// Stat returns file information for path.
func (OSFileSystem) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// Abs returns an absolute representation of path.
func (OSFileSystem) Abs(path string) (string, error) {
	return filepath.Abs(path)
}

// MkdirAll creates path and any missing parents.
func (OSFileSystem) MkdirAll(path string, permissions fs.FileMode) error {
	return os.MkdirAll(path, permissions)
}

// ReadFile reads the named file.
func (OSFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// ReadDir lists the entries of the named directory.
func (OSFileSystem) ReadDir(path string) ([]fs.DirEntry, error) {
	return os.ReadDir(path)
}

// RemoveAll deletes path and everything beneath it and returns once the removal finished.
// A missing path is not an error.
func (OSFileSystem) RemoveAll(path string) error {
	trimmedPath := strings.TrimSpace(path)
	if len(trimmedPath) == 0 {
		return ErrPathRequired
	}
	if removeError := os.RemoveAll(trimmedPath); removeError != nil {
		return fmt.Errorf(removeMessageTemplateConstant, trimmedPath, removeError)
	}
	return nil
}

// CheckReadableDirectory verifies path exists, is a directory, and can be opened for reading.
func (OSFileSystem) CheckReadableDirectory(path string) error {
	trimmedPath := strings.TrimSpace(path)
	if len(trimmedPath) == 0 {
		return ErrPathRequired
	}

	info, statError := os.Stat(trimmedPath)
	if statError != nil {
		if errors.Is(statError, fs.ErrNotExist) {
			return fmt.Errorf("%w: "+missingMessageTemplateConstant, ErrDirectoryMissing, trimmedPath)
		}
		return fmt.Errorf(inspectMessageTemplateConstant, trimmedPath, statError)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: "+notDirectoryMessageTemplateConstant, ErrNotDirectory, trimmedPath)
	}

	directory, openError := os.Open(trimmedPath)
	if openError != nil {
		return fmt.Errorf(unreadableMessageTemplateConstant, trimmedPath, openError)
	}
	defer directory.Close()

	if _, readError := directory.Readdirnames(1); readError != nil && !errors.Is(readError, io.EOF) {
		return fmt.Errorf(unreadableMessageTemplateConstant, trimmedPath, readError)
	}
	return nil
}

// CopyTree copies the contents of source into destination. Files that already exist in
// destination are left untouched.
func (fileSystem OSFileSystem) CopyTree(source string, destination string) error {
	sourceInfo, statError := os.Stat(source)
	if statError != nil {
		return fmt.Errorf(copySourceMessageTemplateConstant, source, statError)
	}
	if !sourceInfo.IsDir() {
		return fmt.Errorf("%w: "+notDirectoryMessageTemplateConstant, ErrNotDirectory, source)
	}

	return filepath.WalkDir(source, func(entryPath string, entry fs.DirEntry, walkError error) error {
		if walkError != nil {
			return walkError
		}

		relativePath, relativeError := filepath.Rel(source, entryPath)
		if relativeError != nil {
			return relativeError
		}
		targetPath := filepath.Join(destination, relativePath)

		entryInfo, infoError := entry.Info()
		if infoError != nil {
			return fmt.Errorf(copyEntryMessageTemplateConstant, entryPath, infoError)
		}

		switch {
		case entry.IsDir():
			// Copied directories stay owner-writable so their files can be created.
			return os.MkdirAll(targetPath, entryInfo.Mode().Perm()|ownerDirectoryPermissionsConstant)
		case entryInfo.Mode()&fs.ModeSymlink != 0:
			return copySymlink(entryPath, targetPath)
		case entryInfo.Mode().IsRegular():
			return copyFile(entryPath, targetPath, entryInfo.Mode().Perm())
		default:
			return nil
		}
	})
}

func copyFile(sourcePath string, targetPath string, permissions fs.FileMode) error {
	targetFile, openError := os.OpenFile(targetPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, permissions)
	if openError != nil {
		if errors.Is(openError, fs.ErrExist) {
			return nil
		}
		return fmt.Errorf(copyEntryMessageTemplateConstant, sourcePath, openError)
	}

	sourceFile, sourceError := os.Open(sourcePath)
	if sourceError != nil {
		targetFile.Close()
		return fmt.Errorf(copyEntryMessageTemplateConstant, sourcePath, sourceError)
	}
	defer sourceFile.Close()

	if _, copyError := io.Copy(targetFile, sourceFile); copyError != nil {
		targetFile.Close()
		return fmt.Errorf(copyEntryMessageTemplateConstant, sourcePath, copyError)
	}
	return targetFile.Close()
}

func copySymlink(sourcePath string, targetPath string) error {
	if _, existingError := os.Lstat(targetPath); existingError == nil {
		return nil
	}
	linkTarget, readError := os.Readlink(sourcePath)
	if readError != nil {
		return fmt.Errorf(copyEntryMessageTemplateConstant, sourcePath, readError)
	}
	return os.Symlink(linkTarget, targetPath)
}
