// Copyright (c) 2019 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compiler

import (
	"bytes"
	"unicode"
	"unicode/utf8"

	"github.com/Linhanmic/tester-template-engine/ast"
)

// scanTemplate scans a template source and returns a lexer. The whole source
// is scanned before scanTemplate returns.
func scanTemplate(text []byte) *lexer {
	lex := &lexer{
		text:   text,
		src:    text,
		line:   1,
		column: 1,
	}
	lex.scan()
	return lex
}

// Tokens returns the scanned tokens. If no error occurred, the last token
// has type tokenEOF.
func (l *lexer) Tokens() []token {
	return l.tokens
}

// error returns the occurred error or nil if no error occurred.
func (l *lexer) error() error {
	return l.err
}

// lexer maintains the scanner status.
type lexer struct {
	text   []byte  // text on which the scans are performed
	src    []byte  // slice of the text used during the scan
	line   int     // current line starting from 1
	column int     // current column starting from 1
	tokens []token // scanned tokens
	err    error   // error, reports whether there was an error
}

func (l *lexer) newline() {
	l.line++
	l.column = 1
}

func (l *lexer) errorf(format string, a ...interface{}) *SyntaxError {
	pos := ast.Position{
		Line:   l.line,
		Column: l.column,
		Start:  len(l.text) - len(l.src),
		End:    len(l.text) - len(l.src),
	}
	return syntaxError(&pos, format, a...)
}

// emit emits a token of type typ and length length at the current line and
// column.
func (l *lexer) emit(typ tokenTyp, length int) {
	l.emitAtLineColumn(l.line, l.column, typ, length)
}

// emitAtLineColumn emits a token of type typ and length length at a specific
// line and column.
func (l *lexer) emitAtLineColumn(line, column int, typ tokenTyp, length int) {
	var txt []byte
	if length > 0 {
		txt = l.src[0:length]
	}
	start := len(l.text) - len(l.src)
	end := start + length - 1
	if length == 0 {
		end = start
	}
	l.tokens = append(l.tokens, token{
		typ: typ,
		pos: &ast.Position{
			Line:   line,
			Column: column,
			Start:  start,
			End:    end,
		},
		txt: txt,
	})
	l.src = l.src[length:]
}

// scan scans the text appending the tokens to l.tokens. If an error occurs,
// it puts the error in err and returns.
func (l *lexer) scan() {

	p := 0 // token length in bytes

	lin := l.line   // token line
	col := l.column // token column

	for p < len(l.src) {

		c := l.src[p]

		if c == '{' && p+1 < len(l.src) {
			var lex func() error
			switch l.src[p+1] {
			case '{':
				lex = l.lexShow
			case '%':
				lex = l.lexStatement
			case '#':
				lex = l.lexComment
			}
			if lex != nil {
				if p > 0 {
					l.emitAtLineColumn(lin, col, tokenText, p)
					p = 0
				}
				if err := lex(); err != nil {
					l.err = err
					return
				}
				lin = l.line
				col = l.column
				continue
			}
		}

		if c == '\n' {
			l.newline()
		} else if isStartChar(c) {
			l.column++
		}
		p++

	}

	if p > 0 {
		l.emitAtLineColumn(lin, col, tokenText, p)
	}
	l.emit(tokenEOF, 0)
}

// lexShow emits the tokens of a show statement knowing that src starts
// with '{{'.
func (l *lexer) lexShow() error {
	l.emit(tokenLeftBraces, 2)
	l.column += 2
	err := l.lexCode(tokenRightBraces)
	if err != nil {
		return err
	}
	l.emit(tokenRightBraces, 2)
	l.column += 2
	return nil
}

// lexStatement emits the tokens of a statement knowing that src starts
// with '{%'.
func (l *lexer) lexStatement() error {
	l.emit(tokenStartStatement, 2)
	l.column += 2
	err := l.lexCode(tokenEndStatement)
	if err != nil {
		return err
	}
	l.emit(tokenEndStatement, 2)
	l.column += 2
	return nil
}

// lexComment emits a comment token knowing that src starts with '{#'.
func (l *lexer) lexComment() error {
	i := bytes.Index(l.src[2:], []byte("#}"))
	if i == -1 {
		return l.errorf("comment not terminated")
	}
	p := i + 4
	line := l.line
	column := l.column
	for _, c := range l.src[:p] {
		if c == '\n' {
			l.newline()
		} else if isStartChar(c) {
			l.column++
		}
	}
	l.emitAtLineColumn(line, column, tokenComment, p)
	return nil
}

// lexCode emits the tokens of the code inside a tag. end is the type of the
// token that closes the tag, it is not emitted.
func (l *lexer) lexCode(end tokenTyp) error {
	for len(l.src) > 0 {
		switch c := l.src[0]; c {
		case '"', '\'':
			err := l.lexString(c)
			if err != nil {
				return err
			}
		case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			err := l.lexNumber()
			if err != nil {
				return err
			}
		case '.':
			l.emit(tokenPeriod, 1)
			l.column++
		case ',':
			l.emit(tokenComma, 1)
			l.column++
		case '(':
			l.emit(tokenLeftParenthesis, 1)
			l.column++
		case ')':
			l.emit(tokenRightParenthesis, 1)
			l.column++
		case '[':
			l.emit(tokenLeftBracket, 1)
			l.column++
		case ']':
			l.emit(tokenRightBracket, 1)
			l.column++
		case '+':
			l.emit(tokenAddition, 1)
			l.column++
		case '-':
			l.emit(tokenSubtraction, 1)
			l.column++
		case '*':
			l.emit(tokenMultiplication, 1)
			l.column++
		case '/':
			if len(l.src) > 1 && l.src[1] == '/' {
				l.emit(tokenFloorDivision, 2)
				l.column += 2
			} else {
				l.emit(tokenDivision, 1)
				l.column++
			}
		case '%':
			if len(l.src) > 1 && l.src[1] == '}' {
				if end == tokenEndStatement {
					return nil
				}
				return l.errorf("unexpected %%}, expecting %s", end)
			}
			l.emit(tokenModulo, 1)
			l.column++
		case '}':
			if len(l.src) > 1 && l.src[1] == '}' {
				if end == tokenRightBraces {
					return nil
				}
				return l.errorf("unexpected }}, expecting %s", end)
			}
			return l.errorf("invalid character '}'")
		case '=':
			if len(l.src) > 1 && l.src[1] == '=' {
				l.emit(tokenEqual, 2)
				l.column += 2
				continue
			}
			return l.errorf("unexpected =, expecting ==")
		case '!':
			if len(l.src) > 1 && l.src[1] == '=' {
				l.emit(tokenNotEqual, 2)
				l.column += 2
				continue
			}
			return l.errorf("unexpected !, expecting !=")
		case '<':
			if len(l.src) > 1 && l.src[1] == '=' {
				l.emit(tokenLessOrEqual, 2)
				l.column += 2
			} else {
				l.emit(tokenLess, 1)
				l.column++
			}
		case '>':
			if len(l.src) > 1 && l.src[1] == '=' {
				l.emit(tokenGreaterOrEqual, 2)
				l.column += 2
			} else {
				l.emit(tokenGreater, 1)
				l.column++
			}
		case ' ', '\t', '\r':
			l.src = l.src[1:]
			l.column++
		case '\n':
			l.newline()
			l.src = l.src[1:]
		case '\x00':
			return l.errorf("unexpected NUL in input")
		default:
			// Lex keyword or identifier.
			if c == '_' || c < utf8.RuneSelf && unicode.IsLetter(rune(c)) {
				l.lexIdentifierOrKeyword(1)
				continue
			}
			r, s := utf8.DecodeRune(l.src)
			if !unicode.IsLetter(r) {
				if unicode.IsDigit(r) {
					return l.errorf("identifier cannot begin with digit %U '%c'", r, r)
				}
				if unicode.IsPrint(r) {
					return l.errorf("invalid character %U '%c'", r, r)
				}
				return l.errorf("invalid character %#U", r)
			}
			l.lexIdentifierOrKeyword(s)
		}
	}
	return l.errorf("unexpected EOF, expecting %s", end)
}

// isStartChar reports whether b is the first byte of an UTF-8 encoded
// character.
func isStartChar(b byte) bool {
	return b < 128 || 191 < b
}

func isDecDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isHexDigit(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

// lexIdentifierOrKeyword reads an identifier or keyword, knowing that src
// starts with a character with a length of s bytes, and returns the type of
// the emitted token.
func (l *lexer) lexIdentifierOrKeyword(s int) tokenTyp {
	// Stops only when a character can not be part
	// of the identifier or keyword.
	cols := 1
	p := s
	for p < len(l.src) {
		r, s := utf8.DecodeRune(l.src[p:])
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		p += s
		cols++
	}
	typ := tokenIdentifier
	switch string(l.src[0:p]) {
	case "for":
		typ = tokenFor
	case "in":
		typ = tokenIn
	case "if":
		typ = tokenIf
	case "elif":
		typ = tokenElif
	case "else":
		typ = tokenElse
	case "endfor":
		typ = tokenEndFor
	case "endif":
		typ = tokenEndIf
	case "and":
		typ = tokenAnd
	case "or":
		typ = tokenOr
	case "not":
		typ = tokenNot
	case "true", "True":
		typ = tokenTrue
	case "false", "False":
		typ = tokenFalse
	}
	l.emit(typ, p)
	l.column += cols
	return typ
}

// lexNumber reads an integer or a floating-point number.
func (l *lexer) lexNumber() error {
	typ := tokenInt
	p := 0
	if len(l.src) > 1 && l.src[0] == '0' && (l.src[1] == 'x' || l.src[1] == 'X') {
		p = 2
		for p < len(l.src) && isHexDigit(l.src[p]) {
			p++
		}
		if p == 2 {
			return l.errorf("hexadecimal literal has no digits")
		}
	} else {
		for p < len(l.src) && isDecDigit(l.src[p]) {
			p++
		}
		if p+1 < len(l.src) && l.src[p] == '.' && isDecDigit(l.src[p+1]) {
			typ = tokenFloat
			p++
			for p < len(l.src) && isDecDigit(l.src[p]) {
				p++
			}
		}
		if p < len(l.src) && (l.src[p] == 'e' || l.src[p] == 'E') {
			q := p + 1
			if q < len(l.src) && (l.src[q] == '+' || l.src[q] == '-') {
				q++
			}
			if q < len(l.src) && isDecDigit(l.src[q]) {
				typ = tokenFloat
				for q < len(l.src) && isDecDigit(l.src[q]) {
					q++
				}
				p = q
			}
		}
	}
	if p < len(l.src) {
		if r, _ := utf8.DecodeRune(l.src[p:]); r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			return l.errorf("invalid character %q in numeric literal", r)
		}
	}
	l.emit(typ, p)
	l.column += p
	return nil
}

// lexString reads a string knowing that src starts with quote, that is '"'
// or '\''. Escape sequences are validated by the parser.
func (l *lexer) lexString(quote byte) error {
	cols := 1
	p := 1
LOOP:
	for {
		if p == len(l.src) {
			return l.errorf("string not terminated")
		}
		switch c := l.src[p]; c {
		case quote:
			break LOOP
		case '\\':
			if p+1 == len(l.src) {
				return l.errorf("string not terminated")
			}
			if l.src[p+1] == '\n' {
				return l.errorf("newline in string")
			}
			if l.src[p+1] >= utf8.RuneSelf {
				return l.errorf("unknown escape")
			}
			p += 2
			cols += 2
		case '\n':
			return l.errorf("newline in string")
		default:
			r, s := utf8.DecodeRune(l.src[p:])
			if r == utf8.RuneError && s == 1 {
				return l.errorf("invalid UTF-8 encoding")
			}
			p += s
			cols++
		}
	}
	l.emit(tokenString, p+1)
	l.column += cols + 1
	return nil
}
