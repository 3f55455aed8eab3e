// Copyright (c) 2019 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tester

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"sort"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/Linhanmic/tester-template-engine/internal/compiler"
	"github.com/Linhanmic/tester-template-engine/internal/runtime"
	"github.com/Linhanmic/tester-template-engine/native"
	"github.com/Linhanmic/tester-template-engine/validator"
)

// Options contains the options of an Engine.
type Options struct {

	// Logger is the logger used to log builds and renderings at the debug
	// level. If nil, nothing is logged.
	Logger *slog.Logger

	// Validator validates the scripts generated by the Generate method of
	// Template. If nil, validator.Default() is used.
	Validator *validator.Validator
}

// Engine builds templates. Each engine has its own functions, initially the
// built-in functions. It is safe for concurrent use.
type Engine struct {
	mu        sync.RWMutex
	funcs     map[string]interface{}
	templates map[string]*Template
	logger    *slog.Logger
	validator *validator.Validator
}

// New returns a new engine.
func New(opts *Options) *Engine {
	e := &Engine{
		funcs:     runtime.Builtins(),
		templates: map[string]*Template{},
	}
	if opts != nil {
		e.logger = opts.Logger
		e.validator = opts.Validator
	}
	if e.logger == nil {
		e.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if e.validator == nil {
		e.validator = validator.Default()
	}
	return e
}

// keywords contains the keywords that cannot be used as function names.
var keywords = map[string]bool{
	"and": true, "elif": true, "else": true, "endfor": true, "endif": true,
	"false": true, "False": true, "for": true, "if": true, "in": true,
	"not": true, "or": true, "true": true, "True": true,
}

// RegisterFunction registers the function f with the given name. f must be
// a native.Function, a native.EnvFunction or a function with one of their
// underlying types. A function with the same name, also a built-in one, is
// replaced. Templates already built are not affected.
func (e *Engine) RegisterFunction(name string, f interface{}) error {
	if !isIdentifier(name) || keywords[name] {
		return fmt.Errorf("tester: invalid function name %q", name)
	}
	switch f.(type) {
	case native.Function, native.EnvFunction,
		func(...interface{}) (interface{}, error),
		func(native.Env, ...interface{}) (interface{}, error):
	default:
		return fmt.Errorf("tester: cannot register %s: type %T is not a function type", name, f)
	}
	fn, err := native.Normalize(f)
	if err != nil {
		return fmt.Errorf("tester: cannot register %s: %w", name, err)
	}
	e.mu.Lock()
	e.funcs[name] = fn
	e.mu.Unlock()
	return nil
}

// Functions returns the sorted names of the functions of e.
func (e *Engine) Functions() []string {
	e.mu.RLock()
	names := make([]string, 0, len(e.funcs))
	for name := range e.funcs {
		names = append(names, name)
	}
	e.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Build builds the template with the given name and source. The template
// can then be retrieved with the Template method.
//
// If a syntax error occurs, it returns a *TemplateSyntaxError.
func (e *Engine) Build(name, src string) (*Template, error) {
	tree, err := compiler.ParseTemplateSource(name, []byte(src))
	if err != nil {
		if se, ok := err.(*compiler.SyntaxError); ok {
			err = &TemplateSyntaxError{err: se}
		}
		e.logger.Debug("template build failed", "name", name, "error", err)
		return nil, err
	}
	e.mu.Lock()
	funcs := make(map[string]interface{}, len(e.funcs))
	for n, f := range e.funcs {
		funcs[n] = f
	}
	t := &Template{
		tree:      tree,
		src:       src,
		funcs:     funcs,
		logger:    e.logger,
		validator: e.validator,
	}
	e.templates[name] = t
	e.mu.Unlock()
	e.logger.Debug("template built", "name", name, "nodes", len(tree.Nodes))
	return t, nil
}

// BuildFile builds the named template file read from fsys. The template
// name is the file name.
//
// If the file does not exist, BuildFile returns an error satisfying
// errors.Is(err, fs.ErrNotExist). If a syntax error occurs, it returns a
// *TemplateSyntaxError.
func (e *Engine) BuildFile(fsys fs.FS, name string) (*Template, error) {
	src, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}
	return e.Build(name, string(src))
}

// Template returns the template built with the given name, and true, or
// nil and false if there is no such template.
func (e *Engine) Template(name string) (*Template, bool) {
	e.mu.RLock()
	t, ok := e.templates[name]
	e.mu.RUnlock()
	return t, ok
}

// isIdentifier reports whether s is an identifier.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == utf8.RuneError {
			return false
		}
		if r == '_' || unicode.IsLetter(r) || i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}
