// Copyright (c) 2019 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package registry implements a registry of the variables available to
// templates and the loaders of data files.
package registry

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/Linhanmic/tester-template-engine/native"
)

// ErrUnsupportedFormat is returned when a file has an unsupported format.
var ErrUnsupportedFormat = errors.New("registry: unsupported format")

// Formats of data files.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatHCL  = "hcl"
)

// Options contains the options of a registry.
type Options struct {

	// CSV contains the options used to load CSV files.
	CSV *CSVOptions

	// Logger is the logger. If nil, nothing is logged.
	Logger *slog.Logger
}

// Registry is a registry of variables. It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	vars   map[string]interface{}
	csv    *CSVOptions
	logger *slog.Logger
}

// New returns a new empty registry.
func New(opts *Options) *Registry {
	r := &Registry{vars: map[string]interface{}{}}
	if opts != nil {
		r.csv = opts.CSV
		r.logger = opts.Logger
	}
	if r.logger == nil {
		r.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return r
}

// Set sets the variable name to value. value is normalized with
// native.Normalize.
func (r *Registry) Set(name string, value interface{}) error {
	if name == "" {
		return errors.New("registry: empty variable name")
	}
	v, err := native.Normalize(value)
	if err != nil {
		return fmt.Errorf("registry: variable %q: %w", name, err)
	}
	r.mu.Lock()
	r.vars[name] = v
	r.mu.Unlock()
	return nil
}

// Get returns the value of the variable name and true, or nil and false if
// the variable does not exist.
func (r *Registry) Get(name string) (interface{}, bool) {
	r.mu.RLock()
	v, ok := r.vars[name]
	r.mu.RUnlock()
	return v, ok
}

// Delete deletes the variable name.
func (r *Registry) Delete(name string) {
	r.mu.Lock()
	delete(r.vars, name)
	r.mu.Unlock()
}

// Names returns the sorted names of the variables.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.vars))
	for name := range r.vars {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Snapshot returns a new map with the variables. Values are shared with
// the registry and must not be modified.
func (r *Registry) Snapshot() map[string]interface{} {
	r.mu.RLock()
	vars := make(map[string]interface{}, len(r.vars))
	for name, v := range r.vars {
		vars[name] = v
	}
	r.mu.RUnlock()
	return vars
}

// Load decodes data in the given format from src and sets the variable
// name with the decoded value. filename is used in the error messages.
func (r *Registry) Load(name, format, filename string, src io.Reader) error {
	v, err := decode(format, filename, src, r.csv)
	if err != nil {
		return err
	}
	if err = r.Set(name, v); err != nil {
		return err
	}
	r.logger.Info("variable loaded", "name", name, "format", format, "file", filename)
	return nil
}

// Decode decodes data in the given format from src. CSV data is decoded
// with the default options. filename is used in the error messages.
func Decode(format, filename string, src io.Reader) (interface{}, error) {
	return decode(format, filename, src, nil)
}

func decode(format, filename string, src io.Reader, csvOpts *CSVOptions) (interface{}, error) {
	var v interface{}
	var err error
	switch format {
	case FormatCSV:
		v, err = DecodeCSV(src, csvOpts)
	case FormatJSON:
		v, err = DecodeJSON(src)
	case FormatYAML:
		v, err = DecodeYAML(src)
	case FormatHCL:
		v, err = DecodeHCL(src, filename)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("registry: %s: %w", filename, err)
	}
	return v, nil
}

// FormatOf returns the format of a file from the extension of its name.
// It returns the empty string if the extension is not known.
func FormatOf(name string) string {
	switch strings.ToLower(path.Ext(filepath.ToSlash(name))) {
	case ".csv":
		return FormatCSV
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".hcl":
		return FormatHCL
	}
	return ""
}

// VarName returns the name of the variable of a data file, that is the base
// name of the file without the extension.
func VarName(name string) string {
	base := path.Base(filepath.ToSlash(name))
	return strings.TrimSuffix(base, path.Ext(base))
}

// LoadFile loads the named file and sets the variable with name the base
// name of the file without the extension. The format depends on the file
// extension: ".csv", ".json", ".yaml", ".yml" or ".hcl".
func (r *Registry) LoadFile(name string) error {
	return r.loadFile(name, func() (io.ReadCloser, error) { return os.Open(name) })
}

// LoadFS is like LoadFile but reads the named file from fsys.
func (r *Registry) LoadFS(fsys fs.FS, name string) error {
	return r.loadFile(name, func() (io.ReadCloser, error) { return fsys.Open(name) })
}

func (r *Registry) loadFile(name string, open func() (io.ReadCloser, error)) error {
	format := FormatOf(name)
	if format == "" {
		return fmt.Errorf("%w %q", ErrUnsupportedFormat, path.Ext(filepath.ToSlash(name)))
	}
	f, err := open()
	if err != nil {
		return err
	}
	defer f.Close()
	return r.Load(VarName(name), format, name, f)
}
