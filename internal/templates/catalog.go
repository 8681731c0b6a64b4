package templates

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// ManifestFileName names the optional per-template metadata file.
	ManifestFileName                     = "template.yaml"
	templatesRootRequiredMessageConstant = "templates root must be provided"
	templateNameRequiredMessageConstant  = "template name must be provided"
	templateNameInvalidMessageConstant   = "template name must be a single directory name"
	parentDirectoryNameConstant          = ".."
	listTemplatesErrorTemplateConstant   = "unable to list templates in %s: %w"
	manifestDecodeErrorTemplateConstant  = "unable to decode %s: %w"
	hiddenEntryPrefixConstant            = "."
)

var (
	// ErrTemplatesRootRequired indicates the catalog was built without a templates root.
	ErrTemplatesRootRequired = errors.New(templatesRootRequiredMessageConstant)
	// ErrTemplateNameRequired indicates Resolve received an empty template name.
	ErrTemplateNameRequired = errors.New(templateNameRequiredMessageConstant)
	// ErrTemplateNameInvalid indicates a template name that would leave the templates root.
	ErrTemplateNameInvalid = errors.New(templateNameInvalidMessageConstant)
)

// FileSystem exposes the directory operations the catalog needs.
type FileSystem interface {
	ReadDir(path string) ([]fs.DirEntry, error)
	ReadFile(path string) ([]byte, error)
}

// Template describes one entry of the catalog.
type Template struct {
	Name        string
	Description string
	Directory   string
}

type manifest struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Catalog enumerates the template directories beneath a templates root.
type Catalog struct {
	root       string
	fileSystem FileSystem
}

// NewCatalog constructs a Catalog rooted at root. A nil fileSystem uses the host filesystem.
func NewCatalog(root string, fileSystem FileSystem) (*Catalog, error) {
	trimmedRoot := strings.TrimSpace(root)
	if len(trimmedRoot) == 0 {
		return nil, ErrTemplatesRootRequired
	}
	if fileSystem == nil {
		fileSystem = osFileSystem{}
	}
	return &Catalog{root: filepath.Clean(trimmedRoot), fileSystem: fileSystem}, nil
}

// Root returns the templates root directory.
func (catalog *Catalog) Root() string {
	return catalog.root
}

// Resolve returns the directory a template name maps to. The name is lowercased and the
// directory is not required to exist. Names with path separators or parent references are
// rejected so the result always stays beneath the root.
func (catalog *Catalog) Resolve(name string) (string, error) {
	normalizedName := NormalizeName(name)
	if len(normalizedName) == 0 {
		return "", ErrTemplateNameRequired
	}
	if strings.ContainsAny(normalizedName, `/\`) || strings.Contains(normalizedName, parentDirectoryNameConstant) || normalizedName == hiddenEntryPrefixConstant {
		return "", ErrTemplateNameInvalid
	}
	return filepath.Join(catalog.root, normalizedName), nil
}

// List returns the templates found under the root ordered by directory name. Hidden
// directories are ignored. A malformed manifest fails the listing.
func (catalog *Catalog) List() ([]Template, error) {
	entries, readError := catalog.fileSystem.ReadDir(catalog.root)
	if readError != nil {
		return nil, fmt.Errorf(listTemplatesErrorTemplateConstant, catalog.root, readError)
	}

	discovered := make([]Template, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), hiddenEntryPrefixConstant) {
			continue
		}

		templateDirectory := filepath.Join(catalog.root, entry.Name())
		template := Template{Name: entry.Name(), Directory: templateDirectory}

		manifestPath := filepath.Join(templateDirectory, ManifestFileName)
		manifestContent, manifestError := catalog.fileSystem.ReadFile(manifestPath)
		if manifestError == nil {
			var decoded manifest
			if decodeError := yaml.Unmarshal(manifestContent, &decoded); decodeError != nil {
				return nil, fmt.Errorf(manifestDecodeErrorTemplateConstant, manifestPath, decodeError)
			}
			if trimmedName := strings.TrimSpace(decoded.Name); len(trimmedName) > 0 {
				template.Name = trimmedName
			}
			template.Description = strings.TrimSpace(decoded.Description)
		}

		discovered = append(discovered, template)
	}

	sort.SliceStable(discovered, func(leftIndex int, rightIndex int) bool {
		return filepath.Base(discovered[leftIndex].Directory) < filepath.Base(discovered[rightIndex].Directory)
	})
	return discovered, nil
}

// NormalizeName trims and lowercases a template name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

type osFileSystem struct{}

func (osFileSystem) ReadDir(path string) ([]fs.DirEntry, error) {
	return os.ReadDir(path)
}

func (osFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}
