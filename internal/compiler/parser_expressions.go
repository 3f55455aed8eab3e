// Copyright (c) 2019 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compiler

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Linhanmic/tester-template-engine/ast"
)

// parseExpr parses an expression and returns its tree and the last read token
// that does not belong to the expression. It panics on error.
//
// tok is the first token of the expression. If tok can not start an
// expression, parseExpr returns nil and tok.
func (p *parsing) parseExpr(tok token) (ast.Expression, token) {
	expr, tok := p.parseOperation(tok)
	if expr == nil || tok.typ != tokenIf {
		return expr, tok
	}
	// expr if cond else expr
	var cond, els ast.Expression
	cond, tok = p.parseOperation(p.next())
	if cond == nil {
		panic(syntaxError(tok.pos, "unexpected %s, expecting expression", tok))
	}
	if tok.typ != tokenElse {
		panic(syntaxError(tok.pos, "unexpected %s, expecting else", tok))
	}
	els, tok = p.parseExpr(p.next())
	if els == nil {
		panic(syntaxError(tok.pos, "unexpected %s, expecting expression", tok))
	}
	pos := &ast.Position{
		Line:   expr.Pos().Line,
		Column: expr.Pos().Column,
		Start:  expr.Pos().Start,
		End:    els.Pos().End,
	}
	return ast.NewConditional(pos, expr, cond, els), tok
}

// parseOperation parses an expression without conditional expressions at
// the top level.
func (p *parsing) parseOperation(tok token) (ast.Expression, token) {

	// path is the tree path that starts from the root operator and ends with
	// the leaf operator.
	var path []ast.Operator

	for {

		var operand ast.Expression
		var operator ast.Operator

		switch tok.typ {
		case tokenLeftParenthesis: // ( e )
			// Call parseExpr recursively to parse the expression in
			// parenthesis and then handle it as a single operand.
			pos := tok.pos
			var expr ast.Expression
			expr, tok = p.parseExpr(p.next())
			if expr == nil {
				panic(syntaxError(tok.pos, "unexpected %s, expecting expression", tok))
			}
			if tok.typ != tokenRightParenthesis {
				panic(syntaxError(tok.pos, "unexpected %s, expecting )", tok))
			}
			expr.SetParenthesis(expr.Parenthesis() + 1)
			operand = expr
			operand.Pos().Start = pos.Start
			operand.Pos().End = tok.pos.End
			tok = p.next()
		case tokenLeftBracket: // [e1, e2, ...]
			pos := tok.pos
			var elements []ast.Expression
			elements, tok = p.parseExprList(p.next(), tokenRightBracket)
			pos.End = tok.pos.End
			operand = ast.NewListLiteral(pos, elements)
			tok = p.next()
		case
			tokenAddition,    // +e
			tokenSubtraction, // -e
			tokenNot:         // not e
			var op ast.OperatorType
			switch tok.typ {
			case tokenAddition:
				op = ast.OperatorAddition
			case tokenSubtraction:
				op = ast.OperatorSubtraction
			default:
				op = ast.OperatorNot
			}
			operator = ast.NewUnaryOperator(tok.pos, op, nil)
			tok = p.next()
		case tokenInt:
			if _, err := parseInt(string(tok.txt)); err != nil {
				panic(syntaxError(tok.pos, "integer literal %s overflows int", tok.txt))
			}
			operand = ast.NewBasicLiteral(tok.pos, ast.IntLiteral, string(tok.txt))
			tok = p.next()
		case tokenFloat:
			if _, err := strconv.ParseFloat(string(tok.txt), 64); err != nil {
				panic(syntaxError(tok.pos, "floating-point literal %s out of range", tok.txt))
			}
			operand = ast.NewBasicLiteral(tok.pos, ast.FloatLiteral, string(tok.txt))
			tok = p.next()
		case tokenString:
			s, err := unquote(tok.txt)
			if err != nil {
				panic(syntaxError(tok.pos, "invalid escape sequence in string literal %s", tok.txt))
			}
			operand = ast.NewBasicLiteral(tok.pos, ast.StringLiteral, strconv.Quote(s))
			tok = p.next()
		case tokenTrue, tokenFalse:
			operand = ast.NewBasicLiteral(tok.pos, ast.BoolLiteral, tok.typ.String())
			tok = p.next()
		case tokenIdentifier:
			operand = ast.NewIdentifier(tok.pos, string(tok.txt))
			tok = p.next()
		default:
			if len(path) > 0 {
				panic(syntaxError(tok.pos, "unexpected %s, expecting expression", tok))
			}
			return nil, tok
		}

		for operator == nil {

			switch tok.typ {

			case tokenLeftParenthesis: // e(...)
				pos := &ast.Position{Line: tok.pos.Line, Column: tok.pos.Column, Start: operand.Pos().Start}
				var args []ast.Expression
				args, tok = p.parseExprList(p.next(), tokenRightParenthesis)
				pos.End = tok.pos.End
				operand = ast.NewCall(pos, operand, args)
				tok = p.next()
			case tokenLeftBracket: // e[...]
				pos := &ast.Position{Line: tok.pos.Line, Column: tok.pos.Column, Start: operand.Pos().Start}
				var index ast.Expression
				index, tok = p.parseExpr(p.next())
				if index == nil {
					panic(syntaxError(tok.pos, "unexpected %s, expecting expression", tok))
				}
				if tok.typ != tokenRightBracket {
					panic(syntaxError(tok.pos, "unexpected %s, expecting ]", tok))
				}
				pos.End = tok.pos.End
				operand = ast.NewIndex(pos, operand, index)
				tok = p.next()
			case tokenPeriod: // e.
				pos := &ast.Position{Line: tok.pos.Line, Column: tok.pos.Column, Start: operand.Pos().Start}
				tok = p.next()
				if !isName(tok) {
					panic(syntaxError(tok.pos, "unexpected %s, expecting name", tok))
				}
				pos.End = tok.pos.End
				operand = ast.NewSelector(pos, operand, string(tok.txt))
				tok = p.next()
			case
				tokenEqual,          // e ==
				tokenNotEqual,       // e !=
				tokenLess,           // e <
				tokenLessOrEqual,    // e <=
				tokenGreater,        // e >
				tokenGreaterOrEqual, // e >=
				tokenAnd,            // e and
				tokenOr,             // e or
				tokenAddition,       // e +
				tokenSubtraction,    // e -
				tokenMultiplication, // e *
				tokenDivision,       // e /
				tokenFloorDivision,  // e //
				tokenModulo:         // e %
				op, _ := operatorType(tok)
				operator = ast.NewBinaryOperator(tok.pos, op, nil, nil)
				tok = p.next()
			default:
				if len(path) > 0 {
					operand = addLastOperand(operand, path)
				}
				return operand, tok
			}

		}

		// Add the operator to the expression tree.

		switch op := operator.(type) {

		case *ast.UnaryOperator:
			// An unary operator becomes the new leaf operator as its operand
			// is always the next parsed operand.

			if len(path) > 0 {
				// operator becomes a child of the leaf operator.
				switch leaf := path[len(path)-1].(type) {
				case *ast.UnaryOperator:
					leaf.Expr = op
				case *ast.BinaryOperator:
					leaf.Expr2 = op
				}
			}
			// operator becomes the new leaf operator.
			path = append(path, op)

		case *ast.BinaryOperator:
			// For a binary operator ("*", "/", "+", "-", "<", ">", ...),
			// start from the leaf operator (last operator of the path) and
			// go up to the root (first operator of the path) stopping if an
			// operator with lower precedence is found.

			// For all unary operators, set the start at the end of the path.
			start := operand.Pos().Start
			for i := len(path) - 1; i >= 0; i-- {
				if o, ok := path[i].(*ast.UnaryOperator); ok {
					o.Position.Start = start
				} else {
					break
				}
			}

			// p is the position in the path where to add the operator.
			var p = len(path)
			for p > 0 && op.Precedence() <= path[p-1].Precedence() {
				p--
			}
			if p > 0 {
				// operator becomes the child of the operator with lower
				// precedence found going up the path.
				switch o := path[p-1].(type) {
				case *ast.UnaryOperator:
					o.Expr = op
				case *ast.BinaryOperator:
					o.Expr2 = op
				}
			}
			if p < len(path) {
				// operand becomes the child of the leaf operator.
				switch o := path[len(path)-1].(type) {
				case *ast.UnaryOperator:
					o.Expr = operand
				case *ast.BinaryOperator:
					o.Expr2 = operand
				}
				// Set the end for all the operators in the path from p onwards.
				for i := p; i < len(path); i++ {
					switch o := path[i].(type) {
					case *ast.UnaryOperator:
						o.Position.End = operand.Pos().End
					case *ast.BinaryOperator:
						o.Position.End = operand.Pos().End
					}
				}
				// operator becomes the new leaf operator.
				op.Expr1 = path[p]
				op.Position.Start = path[p].Pos().Start
				path[p] = op
				path = path[0 : p+1]
			} else {
				// operator becomes the new leaf operator.
				op.Expr1 = operand
				op.Position.Start = operand.Pos().Start
				path = append(path, op)
			}

		}

	}

}

// parseExprList parses a list of comma separated expressions, with an
// optional trailing comma, terminated by a token of type end. It returns the
// expressions and the end token.
func (p *parsing) parseExprList(tok token, end tokenTyp) ([]ast.Expression, token) {
	var exprs []ast.Expression
	for {
		var expr ast.Expression
		expr, tok = p.parseExpr(tok)
		if expr == nil {
			if tok.typ != end {
				panic(syntaxError(tok.pos, "unexpected %s, expecting expression or %s", tok, end))
			}
			return exprs, tok
		}
		exprs = append(exprs, expr)
		switch tok.typ {
		case tokenComma:
			tok = p.next()
		case end:
			return exprs, tok
		default:
			panic(syntaxError(tok.pos, "unexpected %s, expecting comma or %s", tok, end))
		}
	}
}

// addLastOperand adds the last operand to the expression parsing path and
// returns the operand resulting from the parsing of the entire expression.
func addLastOperand(op ast.Expression, path []ast.Operator) ast.Expression {
	// Add the operand as a child of the leaf operator.
	switch leaf := path[len(path)-1].(type) {
	case *ast.UnaryOperator:
		leaf.Expr = op
	case *ast.BinaryOperator:
		leaf.Expr2 = op
	}
	// Set the end for all the operators in path.
	end := op.Pos().End
	for _, op := range path {
		switch o := op.(type) {
		case *ast.UnaryOperator:
			o.Position.End = end
		case *ast.BinaryOperator:
			o.Position.End = end
		}
	}
	// The operand is the root of the expression tree.
	return path[0]
}

// isName reports whether tok can be used as a field name after a period.
// Keywords are allowed so that fields as "in" or "not" can be selected.
func isName(tok token) bool {
	switch tok.typ {
	case tokenIdentifier, tokenFor, tokenIn, tokenIf, tokenElif, tokenElse,
		tokenEndFor, tokenEndIf, tokenAnd, tokenOr, tokenNot:
		return true
	}
	return false
}

// parseInt parses an integer literal, decimal or hexadecimal with prefix
// "0x" or "0X".
func parseInt(s string) (int64, error) {
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return strconv.ParseInt(s[2:], 16, 64)
	}
	return strconv.ParseInt(s, 10, 64)
}

// unquote interprets the string literal lit, quoted with single or double
// quotes, and returns its value. Both quotes can be escaped in both literals.
func unquote(lit []byte) (string, error) {
	s := string(lit[1 : len(lit)-1])
	var b strings.Builder
	for len(s) > 0 {
		if len(s) > 1 && s[0] == '\\' && (s[1] == '\'' || s[1] == '"') {
			b.WriteByte(s[1])
			s = s[2:]
			continue
		}
		c, multibyte, tail, err := strconv.UnquoteChar(s, 0)
		if err != nil {
			return "", err
		}
		if c < utf8.RuneSelf || !multibyte {
			b.WriteByte(byte(c))
		} else {
			b.WriteRune(c)
		}
		s = tail
	}
	return b.String(), nil
}
