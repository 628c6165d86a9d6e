// loader.go resolves template names to files in a theme directory.
package tpl

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	// DefaultFormat is the output format used when none is requested.
	DefaultFormat = "html"
	// Extension sits between the template name and its format: index.tpl.html
	Extension = "tpl"
)

// ErrTemplateNotFound is returned when a template file does not exist.
var ErrTemplateNotFound = errors.New("template not found")

// Filename returns the file name for a template in the given format.
func Filename(name, format string) string {
	if format == "" {
		format = DefaultFormat
	}
	return name + "." + Extension + "." + format
}

// Loader reads template files from a theme directory.
type Loader struct {
	fsys fs.FS
}

// NewLoader creates a loader reading from fsys.
func NewLoader(fsys fs.FS) *Loader {
	return &Loader{fsys: fsys}
}

// NewDirLoader creates a loader reading from a directory on disk.
func NewDirLoader(dir string) *Loader {
	return NewLoader(os.DirFS(dir))
}

// Load reads the named template and returns a fresh Template over its text.
func (l *Loader) Load(name, format string) (*Template, error) {
	filename := Filename(name, format)
	data, err := fs.ReadFile(l.fsys, filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, filename)
		}
		return nil, fmt.Errorf("failed to read template %s: %w", filename, err)
	}
	return New(string(data)), nil
}

// Exists reports whether the named template exists in the given format.
func (l *Loader) Exists(name, format string) bool {
	info, err := fs.Stat(l.fsys, Filename(name, format))
	return err == nil && !info.IsDir()
}

// List returns the names of all templates available in the given format,
// including those in subdirectories, sorted.
func (l *Loader) List(format string) ([]string, error) {
	if format == "" {
		format = DefaultFormat
	}
	suffix := "." + Extension + "." + format

	matches, err := doublestar.Glob(l.fsys, "**/*"+suffix, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(path.Clean(m), suffix))
	}
	sort.Strings(names)
	return names, nil
}
