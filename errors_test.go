// Copyright (c) 2019 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tester

import (
	"bytes"
	"context"
	"testing"
)

// positionError is implemented by the errors with a position.
type positionError interface {
	error
	Path() string
	Position() Position
	Message() string
}

var errorTests = []struct {
	src     string
	kind    string
	pos     string
	message string
}{
	{"{% for x in %}", "syntax", "1:13", "unexpected %}, expecting expression"},
	{"{% endif %}", "syntax", "1:4", "unexpected endif without a matching statement"},
	{"{{ x }}", "expression", "1:4", "undefined: x"},
	{"a\n{{ 1 / 0 }}", "expression", "2:6", "division by zero"},
	{"{{ [1][3] }}", "expression", "1:7", "index out of range [3] with length 1"},
	{"{{ len }}", "render", "1:1", "cannot show len: cannot format a function"},
	{"\n\n{% for x in 3 %}{% endfor %}", "render", "3:1", "cannot range over 3 (type int)"},
}

func TestErrors(t *testing.T) {
	e := New(nil)
	for _, test := range errorTests {
		var err error
		tmpl, err := e.Build("err.tpl", test.src)
		if err == nil {
			err = tmpl.Render(context.Background(), &bytes.Buffer{}, nil)
		}
		if err == nil {
			t.Errorf("source %q: expecting error, got no error", test.src)
			continue
		}
		var kind string
		switch err.(type) {
		case *TemplateSyntaxError:
			kind = "syntax"
		case *ExpressionError:
			kind = "expression"
		case *RenderError:
			kind = "render"
		default:
			t.Errorf("source %q: unexpected error type %T", test.src, err)
			continue
		}
		if kind != test.kind {
			t.Errorf("source %q: expecting %s error, got %s error", test.src, test.kind, kind)
			continue
		}
		pe := err.(positionError)
		if pe.Path() != "err.tpl" {
			t.Errorf("source %q: expecting path %q, got %q", test.src, "err.tpl", pe.Path())
		}
		if got := pe.Position().String(); got != test.pos {
			t.Errorf("source %q: expecting position %s, got %s", test.src, test.pos, got)
		}
		if pe.Message() != test.message {
			t.Errorf("source %q: expecting message %q, got %q", test.src, test.message, pe.Message())
		}
	}
}

func TestExpressionErrorExpr(t *testing.T) {
	tmpl, err := New(nil).Build("expr.tpl", "{{ 2 * hex(-1) }}")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	err = tmpl.Render(context.Background(), &bytes.Buffer{}, nil)
	ee, ok := err.(*ExpressionError)
	if !ok {
		t.Fatalf("expecting *ExpressionError, got %T", err)
	}
	if ee.Expr() != "hex(-1)" {
		t.Fatalf("expecting expression %q, got %q", "hex(-1)", ee.Expr())
	}
}
