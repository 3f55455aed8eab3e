// Copyright (c) 2019 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ast

import (
	"testing"
)

var n1 = NewBasicLiteral(nil, IntLiteral, "1")
var n2 = NewBasicLiteral(nil, IntLiteral, "2")
var n3 = NewBasicLiteral(nil, IntLiteral, "3")

var expressionStringTests = []struct {
	str  string
	expr Expression
}{
	{"1", n1},
	{"3.59", NewBasicLiteral(nil, FloatLiteral, "3.59")},
	{`"abc"`, NewBasicLiteral(nil, StringLiteral, `"abc"`)},
	{"true", NewBasicLiteral(nil, BoolLiteral, "true")},
	{"x", NewIdentifier(nil, "x")},
	{"-1", NewUnaryOperator(nil, OperatorSubtraction, n1)},
	{"not x", NewUnaryOperator(nil, OperatorNot, NewIdentifier(nil, "x"))},
	{"1 + 2", NewBinaryOperator(nil, OperatorAddition, n1, n2)},
	{"1 // 2", NewBinaryOperator(nil, OperatorFloorDivision, n1, n2)},
	{"f()", NewCall(nil, NewIdentifier(nil, "f"), []Expression{})},
	{"f(a)", NewCall(nil, NewIdentifier(nil, "f"), []Expression{NewIdentifier(nil, "a")})},
	{"f(a, b)", NewCall(nil, NewIdentifier(nil, "f"), []Expression{NewIdentifier(nil, "a"), NewIdentifier(nil, "b")})},
	{"a[2]", NewIndex(nil, NewIdentifier(nil, "a"), n2)},
	{"a.b", NewSelector(nil, NewIdentifier(nil, "a"), "b")},
	{"[1, 2]", NewListLiteral(nil, []Expression{n1, n2})},
	{"[]", NewListLiteral(nil, nil)},
	{"-(1 + 2)", NewUnaryOperator(nil, OperatorSubtraction, NewBinaryOperator(nil, OperatorAddition, n1, n2))},
	{"-(+1)", NewUnaryOperator(nil, OperatorSubtraction, NewUnaryOperator(nil, OperatorAddition, n1))},
	{"1 * 2 + -3", NewBinaryOperator(nil, OperatorAddition,
		NewBinaryOperator(nil, OperatorMultiplication, n1, n2),
		NewUnaryOperator(nil, OperatorSubtraction, n3))},
	{"1 - 2 - 3", NewBinaryOperator(nil, OperatorSubtraction,
		NewBinaryOperator(nil, OperatorSubtraction, n1, n2), n3)},
	{"1 - (2 - 3)", NewBinaryOperator(nil, OperatorSubtraction,
		n1, NewBinaryOperator(nil, OperatorSubtraction, n2, n3))},
	{"(1 + 2) * 3", NewBinaryOperator(nil, OperatorMultiplication,
		NewBinaryOperator(nil, OperatorAddition, n1, n2), n3)},
	{"not a and b", NewBinaryOperator(nil, OperatorAnd,
		NewUnaryOperator(nil, OperatorNot, NewIdentifier(nil, "a")), NewIdentifier(nil, "b"))},
	{"not (a or b)", NewUnaryOperator(nil, OperatorNot,
		NewBinaryOperator(nil, OperatorOr, NewIdentifier(nil, "a"), NewIdentifier(nil, "b")))},
	{"f() - 2", NewBinaryOperator(nil, OperatorSubtraction, NewCall(nil, NewIdentifier(nil, "f"), []Expression{}), n2)},
	{"-a.b", NewUnaryOperator(nil, OperatorSubtraction, NewSelector(nil, NewIdentifier(nil, "a"), "b"))},
	{"a if c else b", NewConditional(nil, NewIdentifier(nil, "a"), NewIdentifier(nil, "c"), NewIdentifier(nil, "b"))},
}

func TestExpressionString(t *testing.T) {
	for _, e := range expressionStringTests {
		if e.expr.String() != e.str {
			t.Errorf("unexpected %q, expecting %q\n", e.expr.String(), e.str)
		}
	}
}

func TestPositionString(t *testing.T) {
	p := Position{Line: 37, Column: 18, Start: 100, End: 104}
	if s := p.String(); s != "37:18" {
		t.Errorf("unexpected %q, expecting %q\n", s, "37:18")
	}
	e := p.WithEnd(120)
	if e.End != 120 || p.End != 104 {
		t.Errorf("unexpected end %d (original %d), expecting 120 (original 104)\n", e.End, p.End)
	}
}

func TestNodeString(t *testing.T) {
	x := NewIdentifier(nil, "x")
	rows := NewIdentifier(nil, "rows")
	tests := []struct {
		str  string
		node interface{ String() string }
	}{
		{"{{ x }}", NewShow(nil, x)},
		{"for x in rows", NewFor(nil, x, nil, rows, nil)},
		{"for k, x in rows", NewFor(nil, NewIdentifier(nil, "k"), x, rows, nil)},
		{"if x", NewIf(nil, x, nil)},
	}
	for _, test := range tests {
		if got := test.node.String(); got != test.str {
			t.Errorf("unexpected %q, expecting %q\n", got, test.str)
		}
	}
}
