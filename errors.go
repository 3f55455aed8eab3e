// Copyright (c) 2019 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tester

import (
	"errors"
	"strconv"

	"github.com/Linhanmic/tester-template-engine/ast"
	"github.com/Linhanmic/tester-template-engine/internal/compiler"
	"github.com/Linhanmic/tester-template-engine/internal/runtime"
)

// ErrNestedRender is returned by the Render and Generate methods of Template
// when they are called during the rendering of a template, for example
// from a function called by the template. Nesting is detected even when
// the function does not pass on the context of the rendering.
var ErrNestedRender = errors.New("tester: nested template rendering is not supported")

// Position is a position in a template.
type Position struct {
	Line   int // line starting from 1
	Column int // column in characters starting from 1
	Start  int // index of the first byte
	End    int // index of the last byte
}

// String returns line and column separated by a colon, for example "37:18".
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

func position(pos ast.Position) Position {
	return Position{Line: pos.Line, Column: pos.Column, Start: pos.Start, End: pos.End}
}

// TemplateSyntaxError represents a syntax error occurred building a
// template.
type TemplateSyntaxError struct {
	err *compiler.SyntaxError
}

// Error returns a string representation of the error.
func (err *TemplateSyntaxError) Error() string {
	return err.err.Error()
}

// Path returns the path of the template where the error occurred.
func (err *TemplateSyntaxError) Path() string {
	return err.err.Path
}

// Position returns the position in the template where the error occurred.
func (err *TemplateSyntaxError) Position() Position {
	return position(err.err.Pos)
}

// Message returns the error message.
func (err *TemplateSyntaxError) Message() string {
	return err.err.Message()
}

// ExpressionError represents an error occurred evaluating an expression.
// An error returned by a called function, as a *signal.EncodingError
// returned by encode_signal, can be retrieved with errors.As.
type ExpressionError struct {
	err *runtime.ExpressionError
}

// Error returns a string representation of the error.
func (err *ExpressionError) Error() string {
	return err.err.Error()
}

// Path returns the path of the template where the error occurred.
func (err *ExpressionError) Path() string {
	return err.err.Path
}

// Position returns the position of the expression.
func (err *ExpressionError) Position() Position {
	return position(err.err.Pos)
}

// Message returns the error message.
func (err *ExpressionError) Message() string {
	return err.err.Err.Error()
}

// Expr returns the source of the expression.
func (err *ExpressionError) Expr() string {
	return err.err.Expr
}

func (err *ExpressionError) Unwrap() error {
	return err.err.Err
}

// RenderError represents an error occurred rendering a statement.
type RenderError struct {
	err *runtime.RenderError
}

// Error returns a string representation of the error.
func (err *RenderError) Error() string {
	return err.err.Error()
}

// Path returns the path of the template where the error occurred.
func (err *RenderError) Path() string {
	return err.err.Path
}

// Position returns the position of the statement.
func (err *RenderError) Position() Position {
	return position(err.err.Pos)
}

// Message returns the error message.
func (err *RenderError) Message() string {
	return err.err.Err.Error()
}

func (err *RenderError) Unwrap() error {
	return err.err.Err
}

// convertError converts an error returned by the runtime.
func convertError(err error) error {
	switch e := err.(type) {
	case *runtime.ExpressionError:
		return &ExpressionError{e}
	case *runtime.RenderError:
		return &RenderError{e}
	}
	return err
}
