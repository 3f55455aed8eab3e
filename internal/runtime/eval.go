// Copyright (c) 2019 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runtime

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Linhanmic/tester-template-engine/ast"
	"github.com/Linhanmic/tester-template-engine/native"
)

// maxLength is the maximum length of a string, in bytes, or of a list
// built by an operator or a builtin function.
const maxLength = 1 << 24

var (
	errDivisionByZero = errors.New("division by zero")
	errTooLong        = fmt.Errorf("result is longer than %d", maxLength)
)

// exprErrorf builds and returns an expression error for expr.
func (s *state) exprErrorf(expr ast.Expression, format string, args ...interface{}) *ExpressionError {
	return &ExpressionError{
		Path: s.path,
		Pos:  *expr.Pos(),
		Expr: expr.String(),
		Err:  fmt.Errorf(format, args...),
	}
}

// eval evaluates an expression by returning its value.
func (s *state) eval(expr ast.Expression) (value interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(*ExpressionError); ok {
				err = e
			} else {
				panic(r)
			}
		}
	}()
	return s.evalExpression(expr), nil
}

// evalExpression evaluates an expression and returns its value.
// In the event of an error, calls panic with the error as parameter.
func (s *state) evalExpression(expr ast.Expression) interface{} {
	switch e := expr.(type) {
	case *ast.BasicLiteral:
		return s.evalBasicLiteral(e)
	case *ast.Identifier:
		v, ok := s.variable(e.Name)
		if !ok {
			panic(s.exprErrorf(e, "undefined: %s", e.Name))
		}
		return v
	case *ast.ListLiteral:
		list := make(native.List, len(e.Elements))
		for i, element := range e.Elements {
			list[i] = s.evalExpression(element)
		}
		return list
	case *ast.UnaryOperator:
		return s.evalUnaryOperator(e)
	case *ast.BinaryOperator:
		return s.evalBinaryOperator(e)
	case *ast.Conditional:
		if native.Truth(s.evalExpression(e.Cond)) {
			return s.evalExpression(e.Then)
		}
		return s.evalExpression(e.Else)
	case *ast.Selector:
		return s.evalSelector(e)
	case *ast.Index:
		return s.evalIndex(e)
	case *ast.Call:
		return s.evalCall(e)
	}
	panic(s.exprErrorf(expr, "unexpected expression %T", expr))
}

// evalBasicLiteral evaluates a basic literal.
func (s *state) evalBasicLiteral(node *ast.BasicLiteral) interface{} {
	switch node.Type {
	case ast.StringLiteral:
		v, err := strconv.Unquote(node.Value)
		if err != nil {
			panic(s.exprErrorf(node, "invalid string literal %s", node.Value))
		}
		return v
	case ast.IntLiteral:
		n, err := parseInt(node.Value)
		if err != nil {
			panic(s.exprErrorf(node, "integer literal %s overflows int", node.Value))
		}
		return n
	case ast.FloatLiteral:
		f, err := strconv.ParseFloat(node.Value, 64)
		if err != nil {
			panic(s.exprErrorf(node, "invalid float literal %s", node.Value))
		}
		return f
	case ast.BoolLiteral:
		return node.Value == "true" || node.Value == "True"
	}
	panic(s.exprErrorf(node, "unexpected literal %s", node.Value))
}

// evalUnaryOperator evaluates a unary operator and returns its value.
// On error it calls panic with the error as parameter.
func (s *state) evalUnaryOperator(node *ast.UnaryOperator) interface{} {
	v := s.evalExpression(node.Expr)
	switch node.Op {
	case ast.OperatorNot:
		return !native.Truth(v)
	case ast.OperatorAddition:
		switch v.(type) {
		case int, float64:
			return v
		}
	case ast.OperatorSubtraction:
		switch n := v.(type) {
		case int:
			return -n
		case float64:
			return -n
		}
	}
	panic(s.exprErrorf(node, "invalid operation: %s %s", node.Op, native.TypeOf(v)))
}

// evalBinaryOperator evaluates a binary operator and returns its value.
// On error it calls panic with the error as parameter.
func (s *state) evalBinaryOperator(node *ast.BinaryOperator) interface{} {
	v1 := s.evalExpression(node.Expr1)
	switch node.Op {
	case ast.OperatorAnd:
		if !native.Truth(v1) {
			return false
		}
		return native.Truth(s.evalExpression(node.Expr2))
	case ast.OperatorOr:
		if native.Truth(v1) {
			return true
		}
		return native.Truth(s.evalExpression(node.Expr2))
	}
	v2 := s.evalExpression(node.Expr2)
	v, err := binaryOp(node.Op, v1, v2)
	if err != nil {
		panic(&ExpressionError{Path: s.path, Pos: *node.Pos(), Expr: node.String(), Err: err})
	}
	return v
}

// binaryOp applies the binary operator op, that is not "and" nor "or", to
// the operands v1 and v2.
func binaryOp(op ast.OperatorType, v1, v2 interface{}) (interface{}, error) {
	switch op {
	case ast.OperatorEqual, ast.OperatorNotEqual:
		eq, err := equal(v1, v2)
		if err != nil {
			return nil, fmt.Errorf("invalid operation: %s %s %s (%s)", native.TypeOf(v1), op, native.TypeOf(v2), err)
		}
		if op == ast.OperatorNotEqual {
			return !eq, nil
		}
		return eq, nil
	case ast.OperatorLess, ast.OperatorLessEqual, ast.OperatorGreater, ast.OperatorGreaterEqual:
		c, ok := compare(v1, v2)
		if !ok {
			return nil, fmt.Errorf("invalid operation: %s %s %s", native.TypeOf(v1), op, native.TypeOf(v2))
		}
		switch op {
		case ast.OperatorLess:
			return c < 0, nil
		case ast.OperatorLessEqual:
			return c <= 0, nil
		case ast.OperatorGreater:
			return c > 0, nil
		}
		return c >= 0, nil
	case ast.OperatorAddition:
		switch a := v1.(type) {
		case string:
			if b, ok := v2.(string); ok {
				return a + b, nil
			}
		case native.List:
			if b, ok := v2.(native.List); ok {
				list := make(native.List, 0, len(a)+len(b))
				list = append(list, a...)
				return append(list, b...), nil
			}
		}
	case ast.OperatorMultiplication:
		if n, ok := v2.(int); ok {
			if v, ok, err := repeat(v1, n); ok {
				return v, err
			}
		}
		if n, ok := v1.(int); ok {
			if v, ok, err := repeat(v2, n); ok {
				return v, err
			}
		}
	}
	return arithmetic(op, v1, v2)
}

// arithmetic applies an arithmetic operator to two numbers. If an operand is
// a float, the other one is converted to float. The division "/" always
// returns a float, the floor division "//" and the modulo "%" round towards
// negative infinity, so the modulo has the sign of the divisor.
func arithmetic(op ast.OperatorType, v1, v2 interface{}) (interface{}, error) {
	switch a := v1.(type) {
	case int:
		switch b := v2.(type) {
		case int:
			return intOp(op, a, b)
		case float64:
			return floatOp(op, float64(a), b)
		}
	case float64:
		switch b := v2.(type) {
		case int:
			return floatOp(op, a, float64(b))
		case float64:
			return floatOp(op, a, b)
		}
	}
	return nil, fmt.Errorf("invalid operation: %s %s %s", native.TypeOf(v1), op, native.TypeOf(v2))
}

func intOp(op ast.OperatorType, a, b int) (interface{}, error) {
	switch op {
	case ast.OperatorAddition:
		return a + b, nil
	case ast.OperatorSubtraction:
		return a - b, nil
	case ast.OperatorMultiplication:
		return a * b, nil
	case ast.OperatorDivision:
		if b == 0 {
			return nil, errDivisionByZero
		}
		return float64(a) / float64(b), nil
	case ast.OperatorFloorDivision:
		if b == 0 {
			return nil, errDivisionByZero
		}
		q := a / b
		if a%b != 0 && (a < 0) != (b < 0) {
			q--
		}
		return q, nil
	case ast.OperatorModulo:
		if b == 0 {
			return nil, errDivisionByZero
		}
		r := a % b
		if r != 0 && (r < 0) != (b < 0) {
			r += b
		}
		return r, nil
	}
	return nil, fmt.Errorf("invalid operation: int %s int", op)
}

func floatOp(op ast.OperatorType, a, b float64) (interface{}, error) {
	switch op {
	case ast.OperatorAddition:
		return a + b, nil
	case ast.OperatorSubtraction:
		return a - b, nil
	case ast.OperatorMultiplication:
		return a * b, nil
	case ast.OperatorDivision:
		if b == 0 {
			return nil, errDivisionByZero
		}
		return a / b, nil
	case ast.OperatorFloorDivision:
		if b == 0 {
			return nil, errDivisionByZero
		}
		return math.Floor(a / b), nil
	case ast.OperatorModulo:
		if b == 0 {
			return nil, errDivisionByZero
		}
		r := math.Mod(a, b)
		if r != 0 && (r < 0) != (b < 0) {
			r += b
		}
		return r, nil
	}
	return nil, fmt.Errorf("invalid operation: float %s float", op)
}

// repeat repeats the string or list v n times. It returns false if v is not
// a string or a list. If n is not positive, it returns an empty value.
// It returns an error if the result would be longer than maxLength.
func repeat(v interface{}, n int) (interface{}, bool, error) {
	if n < 0 {
		n = 0
	}
	switch v := v.(type) {
	case string:
		if n > 0 && len(v) > maxLength/n {
			return nil, true, errTooLong
		}
		return strings.Repeat(v, n), true, nil
	case native.List:
		if n > 0 && len(v) > maxLength/n {
			return nil, true, errTooLong
		}
		list := make(native.List, 0, len(v)*n)
		for i := 0; i < n; i++ {
			list = append(list, v...)
		}
		return list, true, nil
	}
	return nil, false, nil
}

// equal reports whether v1 and v2 are equal. It returns an error if the
// values have different kinds, unless they are both numbers, or if they
// are functions.
func equal(v1, v2 interface{}) (bool, error) {
	switch a := v1.(type) {
	case int:
		switch b := v2.(type) {
		case int:
			return a == b, nil
		case float64:
			return float64(a) == b, nil
		}
	case float64:
		switch b := v2.(type) {
		case int:
			return a == float64(b), nil
		case float64:
			return a == b, nil
		}
	case string:
		if b, ok := v2.(string); ok {
			return a == b, nil
		}
	case bool:
		if b, ok := v2.(bool); ok {
			return a == b, nil
		}
	case native.List:
		if b, ok := v2.(native.List); ok {
			if len(a) != len(b) {
				return false, nil
			}
			for i := range a {
				eq, err := equal(a[i], b[i])
				if err != nil || !eq {
					return false, err
				}
			}
			return true, nil
		}
	case *native.Record:
		if b, ok := v2.(*native.Record); ok {
			if a.Len() != b.Len() {
				return false, nil
			}
			ka, kb := a.Keys(), b.Keys()
			for i := range ka {
				if ka[i] != kb[i] {
					return false, nil
				}
				eq, err := equal(a.At(i), b.At(i))
				if err != nil || !eq {
					return false, err
				}
			}
			return true, nil
		}
	case native.Function, native.EnvFunction:
		return false, errors.New("functions cannot be compared")
	}
	return false, errors.New("mismatched types")
}

// compare compares two numbers or two strings. It returns -1, 0 or +1 and
// true, or false if the values cannot be compared.
func compare(v1, v2 interface{}) (int, bool) {
	switch a := v1.(type) {
	case int:
		switch b := v2.(type) {
		case int:
			return cmpInt(a, b), true
		case float64:
			return cmpFloat(float64(a), b), true
		}
	case float64:
		switch b := v2.(type) {
		case int:
			return cmpFloat(a, float64(b)), true
		case float64:
			return cmpFloat(a, b), true
		}
	case string:
		if b, ok := v2.(string); ok {
			return strings.Compare(a, b), true
		}
	}
	return 0, false
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// evalSelector evaluates a selector expression.
func (s *state) evalSelector(node *ast.Selector) interface{} {
	v := s.evalExpression(node.Expr)
	r, ok := v.(*native.Record)
	if !ok {
		panic(s.exprErrorf(node, "%s.%s undefined (type %s has no fields)", node.Expr, node.Ident, native.TypeOf(v)))
	}
	field, ok := r.Get(node.Ident)
	if !ok {
		panic(s.exprErrorf(node, "record has no field %q", node.Ident))
	}
	return field
}

// evalIndex evaluates an index expression. Negative indexes count from the
// end.
func (s *state) evalIndex(node *ast.Index) interface{} {
	v := s.evalExpression(node.Expr)
	index := s.evalExpression(node.Index)
	if r, ok := v.(*native.Record); ok {
		if key, ok := index.(string); ok {
			field, ok := r.Get(key)
			if !ok {
				panic(s.exprErrorf(node, "record has no field %q", key))
			}
			return field
		}
	}
	var length int
	switch v := v.(type) {
	case native.List:
		length = len(v)
	case *native.Record:
		length = v.Len()
	case string:
		length = len([]rune(v))
	default:
		panic(s.exprErrorf(node, "invalid operation: cannot index %s (type %s)", node.Expr, native.TypeOf(v)))
	}
	i, ok := index.(int)
	if !ok {
		panic(s.exprErrorf(node, "invalid index %s (type %s)", node.Index, native.TypeOf(index)))
	}
	j := i
	if j < 0 {
		j += length
	}
	if j < 0 || j >= length {
		panic(s.exprErrorf(node, "index out of range [%d] with length %d", i, length))
	}
	switch v := v.(type) {
	case native.List:
		return v[j]
	case *native.Record:
		return v.At(j)
	}
	return string([]rune(v.(string))[j])
}

// evalCall evaluates a call expression.
func (s *state) evalCall(node *ast.Call) interface{} {

	var f interface{}
	if ident, ok := node.Func.(*ast.Identifier); ok {
		v, ok := s.variable(ident.Name)
		if !ok {
			panic(s.exprErrorf(node, "undefined function: %s", ident.Name))
		}
		f = v
	} else {
		f = s.evalExpression(node.Func)
	}

	args := make([]interface{}, len(node.Args))
	for i, arg := range node.Args {
		args[i] = s.evalExpression(arg)
	}

	var v interface{}
	var err error
	switch f := f.(type) {
	case native.Function:
		v, err = f(args...)
	case native.EnvFunction:
		v, err = f(s.env, args...)
	default:
		panic(s.exprErrorf(node, "cannot call non-function %s (type %s)", node.Func, native.TypeOf(f)))
	}
	if err != nil {
		panic(s.exprErrorf(node, "%s: %w", node.Func, err))
	}

	v, err = native.Normalize(v)
	if err != nil {
		panic(s.exprErrorf(node, "%s returned an invalid value: %w", node.Func, err))
	}

	return v
}

// parseInt parses an integer literal in decimal or, with prefix "0x" or
// "0X", in hexadecimal.
func parseInt(s string) (int, error) {
	var n int64
	var err error
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		n, err = strconv.ParseInt(s[2:], 16, strconv.IntSize)
	} else {
		n, err = strconv.ParseInt(s, 10, strconv.IntSize)
	}
	return int(n), err
}
