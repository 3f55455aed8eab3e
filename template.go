// Copyright (c) 2019 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tester

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	goruntime "runtime"
	"sort"

	"github.com/Linhanmic/tester-template-engine/ast"
	"github.com/Linhanmic/tester-template-engine/ast/astutil"
	"github.com/Linhanmic/tester-template-engine/internal/runtime"
	"github.com/Linhanmic/tester-template-engine/native"
	"github.com/Linhanmic/tester-template-engine/validator"
)

// Template is a template built with the Build or BuildFile methods of
// Engine. A template is immutable and can be rendered concurrently.
type Template struct {
	tree      *ast.Tree
	src       string
	funcs     map[string]interface{}
	logger    *slog.Logger
	validator *validator.Validator
}

// Script is a generated script.
type Script struct {
	Text     string              // text of the script.
	Warnings []validator.Warning // validation warnings.
}

// WriteFile writes the text of the script to the named file, creating the
// parent directories if they do not exist.
func (s *Script) WriteFile(name string) error {
	if dir := filepath.Dir(name); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(name, []byte(s.Text), 0o644)
}

// renderKey is the context key of a rendering.
type renderKey struct{}

// Name returns the name of the template.
func (t *Template) Name() string {
	return t.tree.Path
}

// Tree returns the tree of the template. It must not be modified.
func (t *Template) Tree() *ast.Tree {
	return t.tree
}

// Render renders the template with the variables vars and writes the
// result to w. Values of vars are normalized with native.Normalize. Nothing
// is written to w if an error occurs.
//
// If the evaluation of an expression fails, Render returns an
// *ExpressionError. If a statement cannot be rendered, it returns a
// *RenderError. If Render is called during the rendering of a template, it
// returns ErrNestedRender. If ctx is canceled, it returns ctx.Err().
func (t *Template) Render(ctx context.Context, w io.Writer, vars map[string]interface{}) error {
	var b bytes.Buffer
	if err := t.render(ctx, &b, vars); err != nil {
		return err
	}
	_, err := w.Write(b.Bytes())
	return err
}

// Generate renders the template with the variables vars, like Render, and
// validates the result.
func (t *Template) Generate(ctx context.Context, vars map[string]interface{}) (*Script, error) {
	var b bytes.Buffer
	if err := t.render(ctx, &b, vars); err != nil {
		return nil, err
	}
	script := &Script{Text: b.String()}
	script.Warnings = t.validator.Validate(script.Text)
	if len(script.Warnings) > 0 {
		t.logger.Debug("script validated with warnings", "name", t.Name(), "warnings", len(script.Warnings))
	}
	return script, nil
}

func (t *Template) render(ctx context.Context, w *bytes.Buffer, vars map[string]interface{}) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if ctx.Value(renderKey{}) != nil || renderingOnStack() {
		return ErrNestedRender
	}
	globals := make(map[string]interface{}, len(vars))
	for name, v := range vars {
		n, err := native.Normalize(v)
		if err != nil {
			return fmt.Errorf("tester: variable %q: %w", name, err)
		}
		globals[name] = n
	}
	ctx = context.WithValue(ctx, renderKey{}, t.Name())
	err := runtime.Render(w, t.tree, globals, &runtime.Options{Context: ctx, Funcs: t.funcs})
	if err != nil {
		t.logger.Debug("template rendering failed", "name", t.Name(), "error", err)
		return convertError(err)
	}
	t.logger.Debug("template rendered", "name", t.Name(), "bytes", w.Len())
	return nil
}

// renderFunc is the name of the render method in the stack frames.
var renderFunc = reflect.TypeOf(Template{}).PkgPath() + ".(*Template).render"

// renderingOnStack reports whether the render method is called more than
// once in the stack of the current goroutine, that is if render has been
// called, directly or not, by a function called during a rendering.
func renderingOnStack() bool {
	pc := make([]uintptr, 64)
	n := goruntime.Callers(1, pc)
	for n == len(pc) {
		pc = make([]uintptr, 2*len(pc))
		n = goruntime.Callers(1, pc)
	}
	frames := goruntime.CallersFrames(pc[:n])
	calls := 0
	for {
		frame, more := frames.Next()
		if frame.Function == renderFunc {
			calls++
			if calls > 1 {
				return true
			}
		}
		if !more {
			return false
		}
	}
}

// Variables returns the sorted names of the global variables referenced by
// the template. Loop variables and called functions are not included.
func (t *Template) Variables() []string {
	v := &varsVisitor{
		bound: map[string]bool{},
		funcs: t.funcs,
		names: map[string]struct{}{},
	}
	astutil.Walk(v, t.tree)
	names := make([]string, 0, len(v.names))
	for name := range v.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// varsVisitor collects the names of the global variables.
type varsVisitor struct {
	bound map[string]bool
	funcs map[string]interface{}
	names map[string]struct{}
}

func (v *varsVisitor) Visit(node ast.Node) astutil.Visitor {
	switch n := node.(type) {
	case *ast.For:
		astutil.Walk(v, n.Expr)
		bound := make(map[string]bool, len(v.bound)+2)
		for name := range v.bound {
			bound[name] = true
		}
		bound[n.Ident.Name] = true
		if n.Ident2 != nil {
			bound[n.Ident2.Name] = true
		}
		inner := &varsVisitor{bound: bound, funcs: v.funcs, names: v.names}
		for _, node := range n.Body {
			astutil.Walk(inner, node)
		}
		return nil
	case *ast.Call:
		if ident, ok := n.Func.(*ast.Identifier); ok && !v.bound[ident.Name] {
			if _, ok := v.funcs[ident.Name]; ok {
				for _, arg := range n.Args {
					astutil.Walk(v, arg)
				}
				return nil
			}
		}
	case *ast.Identifier:
		if !v.bound[n.Name] {
			v.names[n.Name] = struct{}{}
		}
	}
	return v
}
