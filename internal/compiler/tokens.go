// Copyright (c) 2019 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compiler

import (
	"fmt"

	"github.com/Linhanmic/tester-template-engine/ast"
)

// Token type.
type tokenTyp int

const (
	tokenText              tokenTyp = iota
	tokenStartStatement             // {%
	tokenEndStatement               // %}
	tokenLeftBraces                 // {{
	tokenRightBraces                // }}
	tokenComment                    // {# ... #}
	tokenFor                        // for
	tokenIn                         // in
	tokenIf                         // if
	tokenElif                       // elif
	tokenElse                       // else
	tokenEndFor                     // endfor
	tokenEndIf                      // endif
	tokenAnd                        // and
	tokenOr                         // or
	tokenNot                        // not
	tokenTrue                       // true
	tokenFalse                      // false
	tokenIdentifier                 // rows
	tokenInt                        // 5
	tokenFloat                      // 2.7
	tokenString                     // "abc"
	tokenPeriod                     // .
	tokenComma                      // ,
	tokenLeftParenthesis            // (
	tokenRightParenthesis           // )
	tokenLeftBracket                // [
	tokenRightBracket               // ]
	tokenAddition                   // +
	tokenSubtraction                // -
	tokenMultiplication             // *
	tokenDivision                   // /
	tokenFloorDivision              // //
	tokenModulo                     // %
	tokenEqual                      // ==
	tokenNotEqual                   // !=
	tokenLess                       // <
	tokenLessOrEqual                // <=
	tokenGreater                    // >
	tokenGreaterOrEqual             // >=
	tokenEOF                        // eof
)

var tokenStrings = map[tokenTyp]string{
	tokenText:             "text",
	tokenStartStatement:   "{%",
	tokenEndStatement:     "%}",
	tokenLeftBraces:       "{{",
	tokenRightBraces:      "}}",
	tokenComment:          "comment",
	tokenFor:              "for",
	tokenIn:               "in",
	tokenIf:               "if",
	tokenElif:             "elif",
	tokenElse:             "else",
	tokenEndFor:           "endfor",
	tokenEndIf:            "endif",
	tokenAnd:              "and",
	tokenOr:               "or",
	tokenNot:              "not",
	tokenTrue:             "true",
	tokenFalse:            "false",
	tokenIdentifier:       "identifier",
	tokenInt:              "integer",
	tokenFloat:            "float",
	tokenString:           "string",
	tokenPeriod:           ".",
	tokenComma:            ",",
	tokenLeftParenthesis:  "(",
	tokenRightParenthesis: ")",
	tokenLeftBracket:      "[",
	tokenRightBracket:     "]",
	tokenAddition:         "+",
	tokenSubtraction:      "-",
	tokenMultiplication:   "*",
	tokenDivision:         "/",
	tokenFloorDivision:    "//",
	tokenModulo:           "%",
	tokenEqual:            "==",
	tokenNotEqual:         "!=",
	tokenLess:             "<",
	tokenLessOrEqual:      "<=",
	tokenGreater:          ">",
	tokenGreaterOrEqual:   ">=",
	tokenEOF:              "EOF",
}

func (tt tokenTyp) String() string {
	if s, ok := tokenStrings[tt]; ok {
		return s
	}
	panic("invalid token type")
}

// Information about a token to return.
type token struct {
	typ tokenTyp      // type
	pos *ast.Position // position in the buffer
	txt []byte        // token text
}

// String returns the string that represents the token.
func (tok token) String() string {
	switch tok.typ {
	case tokenText:
		return fmt.Sprintf("%q", tok.txt)
	case tokenIdentifier, tokenInt, tokenFloat, tokenString:
		return string(tok.txt)
	}
	return tok.typ.String()
}

// operatorType returns the binary operator type of the token tok and true.
// If tok is not a binary operator token returns 0 and false.
func operatorType(tok token) (ast.OperatorType, bool) {
	switch tok.typ {
	case tokenEqual:
		return ast.OperatorEqual, true
	case tokenNotEqual:
		return ast.OperatorNotEqual, true
	case tokenLess:
		return ast.OperatorLess, true
	case tokenLessOrEqual:
		return ast.OperatorLessEqual, true
	case tokenGreater:
		return ast.OperatorGreater, true
	case tokenGreaterOrEqual:
		return ast.OperatorGreaterEqual, true
	case tokenAnd:
		return ast.OperatorAnd, true
	case tokenOr:
		return ast.OperatorOr, true
	case tokenAddition:
		return ast.OperatorAddition, true
	case tokenSubtraction:
		return ast.OperatorSubtraction, true
	case tokenMultiplication:
		return ast.OperatorMultiplication, true
	case tokenDivision:
		return ast.OperatorDivision, true
	case tokenFloorDivision:
		return ast.OperatorFloorDivision, true
	case tokenModulo:
		return ast.OperatorModulo, true
	}
	return 0, false
}
