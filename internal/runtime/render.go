// Copyright (c) 2019 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package runtime implements the rendering of a parsed template tree.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Linhanmic/tester-template-engine/ast"
	"github.com/Linhanmic/tester-template-engine/native"
)

// Options contains the rendering options.
type Options struct {

	// Context is the context of the rendering. It is checked before every
	// node and every loop iteration and it is returned by the Context method
	// of the Env passed to the EnvFunction functions. If nil,
	// context.Background() is used.
	Context context.Context

	// Funcs contains the functions callable from the template. Values must
	// be native.Function or native.EnvFunction values. If nil, the built-in
	// functions are used.
	Funcs map[string]interface{}
}

// scope contains the variables of a scope.
type scope map[string]interface{}

// env implements the native.Env interface.
type env struct {
	ctx  context.Context
	path string
}

func (e *env) Context() context.Context { return e.ctx }
func (e *env) Path() string             { return e.path }

// state represents the state of a rendering.
type state struct {
	ctx  context.Context
	env  *env
	path string
	vars []scope
}

// Render renders tree and writes the result to w. globals contains the
// global variables; its values must be template values as returned by
// native.Normalize. Loop variables shadow globals and globals shadow
// functions.
//
// A returned error can be an *ExpressionError, a *RenderError, the error
// of the context or an error returned by w.
func Render(w io.Writer, tree *ast.Tree, globals map[string]interface{}, opts *Options) error {

	if w == nil {
		return errors.New("runtime: w is nil")
	}
	if tree == nil {
		return errors.New("runtime: tree is nil")
	}

	ctx := context.Background()
	funcs := builtins
	if opts != nil {
		if opts.Context != nil {
			ctx = opts.Context
		}
		if opts.Funcs != nil {
			funcs = opts.Funcs
		}
	}

	s := &state{
		ctx:  ctx,
		env:  &env{ctx: ctx, path: tree.Path},
		path: tree.Path,
		vars: []scope{funcs, globals},
	}

	return s.render(w, tree.Nodes)
}

// errorf builds and returns a rendering error for node.
func (s *state) errorf(node ast.Node, format string, args ...interface{}) *RenderError {
	return &RenderError{
		Path: s.path,
		Pos:  *node.Pos(),
		Err:  fmt.Errorf(format, args...),
	}
}

// render renders nodes.
func (s *state) render(w io.Writer, nodes []ast.Node) error {

	for _, n := range nodes {

		if err := s.ctx.Err(); err != nil {
			return err
		}

		switch node := n.(type) {

		case *ast.Text:

			if _, err := w.Write(node.Text); err != nil {
				return err
			}

		case *ast.Comment:

		case *ast.Show:

			v, err := s.eval(node.Expr)
			if err != nil {
				return err
			}
			text, err := native.Format(v)
			if err != nil {
				return s.errorf(node, "cannot show %s: %s", node.Expr, err)
			}
			if _, err = io.WriteString(w, text); err != nil {
				return err
			}

		case *ast.If:

			var body []ast.Node
			matched := false
			for _, branch := range node.Branches {
				c, err := s.eval(branch.Condition)
				if err != nil {
					return err
				}
				if native.Truth(c) {
					body = branch.Body
					matched = true
					break
				}
			}
			if !matched {
				body = node.Else
			}
			if len(body) > 0 {
				if err := s.render(w, body); err != nil {
					return err
				}
			}

		case *ast.For:

			if err := s.renderFor(w, node); err != nil {
				return err
			}

		default:

			return s.errorf(n, "unexpected node %T", n)

		}

	}

	return nil
}

// renderFor renders a for statement.
func (s *state) renderFor(w io.Writer, node *ast.For) error {

	v, err := s.eval(node.Expr)
	if err != nil {
		return err
	}

	var items native.List
	switch v := v.(type) {
	case native.List:
		items = v
	case *native.Record:
		items = v.Values()
	default:
		return s.errorf(node, "cannot range over %s (type %s)", node.Expr, native.TypeOf(v))
	}

	s.vars = append(s.vars, nil)
	defer func() {
		s.vars = s.vars[:len(s.vars)-1]
	}()

	for _, item := range items {
		if err := s.ctx.Err(); err != nil {
			return err
		}
		if node.Ident2 == nil {
			s.vars[len(s.vars)-1] = scope{node.Ident.Name: item}
		} else {
			v1, v2, err := unpack(item)
			if err != nil {
				return s.errorf(node, "cannot assign to %s, %s: %s", node.Ident, node.Ident2, err)
			}
			s.vars[len(s.vars)-1] = scope{node.Ident.Name: v1, node.Ident2.Name: v2}
		}
		if err := s.render(w, node.Body); err != nil {
			return err
		}
	}

	return nil
}

// unpack returns the two values of v. v must be a list with two elements
// or a record with two fields.
func unpack(v interface{}) (interface{}, interface{}, error) {
	switch v := v.(type) {
	case native.List:
		if len(v) == 2 {
			return v[0], v[1], nil
		}
		return nil, nil, fmt.Errorf("list has %d elements, expecting 2", len(v))
	case *native.Record:
		if v.Len() == 2 {
			return v.At(0), v.At(1), nil
		}
		return nil, nil, fmt.Errorf("record has %d fields, expecting 2", v.Len())
	}
	return nil, nil, fmt.Errorf("cannot unpack %s, expecting a list or a record", native.TypeOf(v))
}

// variable returns the value of the variable name searching from the
// innermost scope.
func (s *state) variable(name string) (interface{}, bool) {
	for i := len(s.vars) - 1; i >= 0; i-- {
		if v, ok := s.vars[i][name]; ok {
			return v, true
		}
	}
	return nil, false
}
