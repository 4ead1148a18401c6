// Package loader reads editor configuration files.
//
// TOML (.toml) and YAML (.yaml, .yml, .json) files are parsed into a
// generic map and decoded into config.File. A relative "data" path is
// resolved against the configuration file's directory and decoded as the
// initial document.
package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/dshills/blockedit/internal/config"
	"github.com/dshills/blockedit/internal/document"
)

// ErrUnsupportedFormat is returned for file extensions no parser handles.
var ErrUnsupportedFormat = errors.New("unsupported configuration format")

// FileSystem abstracts file reads so tests can use an in-memory tree.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Parser turns raw file content into a generic map.
type Parser interface {
	Parse(source string, data []byte) (map[string]any, error)
}

// ParseError represents an error while parsing a configuration file.
type ParseError struct {
	// Path is the file path that failed to parse.
	Path string
	// Line is the line number where the error occurred (if available).
	Line int
	// Column is the column number where the error occurred (if available).
	Column int
	// Message describes the parse error.
	Message string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Loader loads configuration files.
type Loader struct {
	fs      FileSystem
	parsers map[string]Parser
}

// New creates a loader reading from the OS file system.
func New() *Loader {
	return NewWithFS(OSFS{})
}

// NewWithFS creates a loader with a custom file system.
func NewWithFS(fsys FileSystem) *Loader {
	yml := YAMLParser{}
	return &Loader{
		fs: fsys,
		parsers: map[string]Parser{
			".toml": TOMLParser{},
			".yaml": yml,
			".yml":  yml,
			".json": yml,
		},
	}
}

// ParserFor returns the parser for path's extension.
func (l *Loader) ParserFor(path string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(path))
	p, ok := l.parsers[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return p, nil
}

// LoadFile reads, parses and decodes the configuration file at path.
func (l *Loader) LoadFile(path string) (*config.File, error) {
	p, err := l.ParserFor(path)
	if err != nil {
		return nil, err
	}

	data, err := l.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	raw, err := p.Parse(path, data)
	if err != nil {
		return nil, err
	}
	return Decode(raw)
}

// Load reads the configuration file at path together with the document it
// references and returns the editor configuration. The result still needs
// config.Normalize.
func (l *Loader) Load(path string) (*config.Config, error) {
	f, err := l.LoadFile(path)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	for name, t := range f.Tools {
		if isScriptPath(t.Script) && !filepath.IsAbs(t.Script) {
			t.Script = filepath.Join(dir, t.Script)
			f.Tools[name] = t
		}
	}

	var data *document.Output
	if f.Data != "" {
		docPath := f.Data
		if !filepath.IsAbs(docPath) {
			docPath = filepath.Join(dir, docPath)
		}
		raw, err := l.fs.ReadFile(docPath)
		if err != nil {
			return nil, fmt.Errorf("reading document %s: %w", docPath, err)
		}
		out, err := document.Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", docPath, err)
		}
		data = &out
	}

	return f.Config(data), nil
}

// isScriptPath reports whether a tool script names a file rather than
// holding inline source.
func isScriptPath(s string) bool {
	return s != "" && !strings.Contains(s, "\n") && strings.HasSuffix(s, ".lua")
}

// Decode converts a parsed map into a config.File. Numbers and booleans
// written as strings are accepted.
func Decode(raw map[string]any) (*config.File, error) {
	var f config.File
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &f,
		WeaklyTypedInput: true,
		ErrorUnused:      false,
	})
	if err != nil {
		return nil, fmt.Errorf("creating decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}
	return &f, nil
}
