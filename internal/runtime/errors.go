// Copyright (c) 2019 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runtime

import (
	"fmt"

	"github.com/Linhanmic/tester-template-engine/ast"
)

// ExpressionError is returned when the evaluation of an expression fails.
type ExpressionError struct {
	Path string       // path of the template.
	Pos  ast.Position // position of the expression.
	Expr string       // source of the expression.
	Err  error        // error.
}

func (e *ExpressionError) Error() string {
	return fmt.Sprintf("%s:%s: %s", e.Path, e.Pos, e.Err)
}

func (e *ExpressionError) Unwrap() error {
	return e.Err
}

// RenderError is returned when a statement cannot be rendered, for example
// when a for statement ranges over a value that is not a list.
type RenderError struct {
	Path string       // path of the template.
	Pos  ast.Position // position of the statement.
	Err  error        // error.
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("%s:%s: %s", e.Path, e.Pos, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
