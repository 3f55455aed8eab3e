// Copyright (c) 2019 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package compiler implements the parsing of template sources.
package compiler

import (
	"fmt"

	"github.com/Linhanmic/tester-template-engine/ast"
)

// SyntaxError records a parsing error with the path and the position where the
// error occurred.
type SyntaxError struct {
	Path string
	Pos  ast.Position
	Err  error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%s: syntax error: %s", e.Path, e.Pos, e.Err)
}

// Message returns the error message without the path and the position.
func (e *SyntaxError) Message() string {
	return e.Err.Error()
}

// syntaxError returns a SyntaxError error with position pos.
func syntaxError(pos *ast.Position, format string, a ...interface{}) *SyntaxError {
	return &SyntaxError{"", *pos, fmt.Errorf(format, a...)}
}

// parsing is a parsing state.
type parsing struct {

	// Lexer.
	lex *lexer

	// Index of the next token to read.
	index int

	// Ancestors from the root up to the parent.
	ancestors []ast.Node
}

// next returns the next token from the lexer. Panics with the lexer error if
// there are no more tokens.
func (p *parsing) next() token {
	tokens := p.lex.Tokens()
	if p.index == len(tokens) {
		if err := p.lex.error(); err != nil {
			panic(err)
		}
		panic("next called after EOF")
	}
	tok := tokens[p.index]
	p.index++
	return tok
}

// parent returns the parent of the node that is currently parsed.
func (p *parsing) parent() ast.Node {
	return p.ancestors[len(p.ancestors)-1]
}

// ParseTemplateSource parses the template source src and returns its tree.
// path is only used in the returned tree and in the errors.
//
// If a syntax error occurs, the returned error has type *SyntaxError.
func ParseTemplateSource(path string, src []byte) (tree *ast.Tree, err error) {

	tree = ast.NewTree(path, nil)

	var p = &parsing{
		lex:       scanTemplate(src),
		ancestors: []ast.Node{tree},
	}

	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(*SyntaxError); ok {
				e.Path = path
				tree = nil
				err = e
			} else {
				panic(r)
			}
		}
	}()

	for {
		tok := p.next()
		switch tok.typ {
		case tokenText:
			p.addChild(ast.NewText(tok.pos, tok.txt))
		case tokenComment:
			p.addChild(ast.NewComment(tok.pos, string(tok.txt[2:len(tok.txt)-2])))
		case tokenLeftBraces:
			p.parseShow(tok)
		case tokenStartStatement:
			p.parseStatement(tok)
		case tokenEOF:
			if len(p.ancestors) > 1 {
				switch n := p.parent().(type) {
				case *ast.For:
					panic(syntaxError(tok.pos, "unexpected EOF, expecting {%% endfor %%} for the for statement at %s", n.Pos()))
				case *ast.If:
					panic(syntaxError(tok.pos, "unexpected EOF, expecting {%% endif %%} for the if statement at %s", n.Pos()))
				}
			}
			tree.Position.End = tok.pos.End
			return tree, nil
		default:
			panic(syntaxError(tok.pos, "unexpected %s", tok))
		}
	}

}

// parseShow parses a show statement. tok is the '{{' token.
func (p *parsing) parseShow(tok token) {
	pos := tok.pos
	expr, tok := p.parseExpr(p.next())
	if expr == nil {
		panic(syntaxError(tok.pos, "unexpected %s, expecting expression", tok))
	}
	if tok.typ != tokenRightBraces {
		panic(syntaxError(tok.pos, "unexpected %s, expecting }}", tok))
	}
	pos.End = tok.pos.End
	p.addChild(ast.NewShow(pos, expr))
}

// parseStatement parses a statement. tok is the '{%' token.
func (p *parsing) parseStatement(tok token) {

	pos := tok.pos

	tok = p.next()

	switch tok.typ {

	// for
	case tokenFor:
		tok = p.next()
		if tok.typ != tokenIdentifier {
			panic(syntaxError(tok.pos, "unexpected %s, expecting loop variable", tok))
		}
		ident := ast.NewIdentifier(tok.pos, string(tok.txt))
		var ident2 *ast.Identifier
		tok = p.next()
		if tok.typ == tokenComma {
			tok = p.next()
			if tok.typ != tokenIdentifier {
				panic(syntaxError(tok.pos, "unexpected %s, expecting loop variable", tok))
			}
			if string(tok.txt) == ident.Name {
				panic(syntaxError(tok.pos, "%s repeated in for statement", ident.Name))
			}
			ident2 = ast.NewIdentifier(tok.pos, string(tok.txt))
			tok = p.next()
		}
		if tok.typ != tokenIn {
			panic(syntaxError(tok.pos, "unexpected %s, expecting in", tok))
		}
		var expr ast.Expression
		expr, tok = p.parseExpr(p.next())
		if expr == nil {
			panic(syntaxError(tok.pos, "unexpected %s, expecting expression", tok))
		}
		p.expectEndStatement(tok)
		pos.End = tok.pos.End
		node := ast.NewFor(pos, ident, ident2, expr, nil)
		p.addChild(node)
		p.ancestors = append(p.ancestors, node)

	// if
	case tokenIf:
		var expr ast.Expression
		expr, tok = p.parseExpr(p.next())
		if expr == nil {
			panic(syntaxError(tok.pos, "unexpected %s, expecting expression", tok))
		}
		p.expectEndStatement(tok)
		pos.End = tok.pos.End
		node := ast.NewIf(pos, expr, nil)
		node.Branches[0].Position = pos.WithEnd(pos.End)
		p.addChild(node)
		p.ancestors = append(p.ancestors, node)

	// elif
	case tokenElif:
		node, ok := p.parent().(*ast.If)
		if !ok {
			panic(syntaxError(tok.pos, "unexpected elif outside of if statement"))
		}
		if node.Else != nil {
			panic(syntaxError(tok.pos, "unexpected elif after else"))
		}
		var expr ast.Expression
		expr, tok = p.parseExpr(p.next())
		if expr == nil {
			panic(syntaxError(tok.pos, "unexpected %s, expecting expression", tok))
		}
		p.expectEndStatement(tok)
		pos.End = tok.pos.End
		node.Branches = append(node.Branches, ast.NewBranch(pos, expr, nil))

	// else
	case tokenElse:
		node, ok := p.parent().(*ast.If)
		if !ok {
			panic(syntaxError(tok.pos, "unexpected else outside of if statement"))
		}
		if node.Else != nil {
			panic(syntaxError(tok.pos, "unexpected else after else"))
		}
		p.expectEndStatement(p.next())
		node.Else = []ast.Node{}

	// endfor
	case tokenEndFor:
		node, ok := p.parent().(*ast.For)
		if !ok {
			p.unexpectedEnd(tok)
		}
		tok = p.next()
		p.expectEndStatement(tok)
		node.Pos().End = tok.pos.End
		p.ancestors = p.ancestors[:len(p.ancestors)-1]

	// endif
	case tokenEndIf:
		node, ok := p.parent().(*ast.If)
		if !ok {
			p.unexpectedEnd(tok)
		}
		tok = p.next()
		p.expectEndStatement(tok)
		node.Pos().End = tok.pos.End
		p.ancestors = p.ancestors[:len(p.ancestors)-1]

	case tokenIdentifier:
		switch string(tok.txt) {
		case "include", "extends", "import", "macro", "render":
			panic(syntaxError(tok.pos, "template inclusion is not supported"))
		}
		panic(syntaxError(tok.pos, "unknown statement %s", tok))

	case tokenEndStatement:
		panic(syntaxError(tok.pos, "unexpected %%}, expecting statement"))

	default:
		panic(syntaxError(tok.pos, "unexpected %s, expecting statement", tok))

	}

}

// expectEndStatement panics if tok is not '%}'.
func (p *parsing) expectEndStatement(tok token) {
	if tok.typ != tokenEndStatement {
		panic(syntaxError(tok.pos, "unexpected %s, expecting %%}", tok))
	}
}

// unexpectedEnd panics with an error for the end statement tok that does not
// close the current block.
func (p *parsing) unexpectedEnd(tok token) {
	switch n := p.parent().(type) {
	case *ast.For:
		panic(syntaxError(tok.pos, "unexpected %s, expecting endfor for the for statement at %s", tok, n.Pos()))
	case *ast.If:
		panic(syntaxError(tok.pos, "unexpected %s, expecting endif for the if statement at %s", tok, n.Pos()))
	}
	panic(syntaxError(tok.pos, "unexpected %s without a matching statement", tok))
}

// addChild adds a child to the current parent node.
func (p *parsing) addChild(child ast.Node) {
	switch n := p.parent().(type) {
	case *ast.Tree:
		n.Nodes = append(n.Nodes, child)
	case *ast.For:
		n.Body = append(n.Body, child)
	case *ast.If:
		if n.Else != nil {
			n.Else = append(n.Else, child)
		} else {
			branch := n.Branches[len(n.Branches)-1]
			branch.Body = append(branch.Body, child)
		}
	default:
		panic("compiler: unexpected parent node")
	}
}
