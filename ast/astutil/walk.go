// Copyright (c) 2019 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package astutil

import (
	"fmt"

	"github.com/Linhanmic/tester-template-engine/ast"
)

// Visitor's visit method is invoked for every node encountered by Walk.
type Visitor interface {
	Visit(node ast.Node) (w Visitor)
}

// Walk visits a tree in depth. Initially it calls v.Visit(node),
// where node must not be nil. If the value w returned by v.Visit(node)
// is different from nil, Walk is called recursively using w as the Visitor
// on all children other than nil of the tree. Finally, call w.Visit(nil).
func Walk(v Visitor, node ast.Node) {

	if v == nil {
		panic("v can't be nil")
	}

	if node == nil {
		panic("node can't be nil")
	}

	v = v.Visit(node)

	if v == nil {
		return
	}

	switch n := node.(type) {

	case *ast.Tree:
		walkNodes(v, n.Nodes)

	case *ast.Show:
		Walk(v, n.Expr)

	case *ast.For:
		Walk(v, n.Ident)
		if n.Ident2 != nil {
			Walk(v, n.Ident2)
		}
		Walk(v, n.Expr)
		walkNodes(v, n.Body)

	case *ast.If:
		for _, branch := range n.Branches {
			Walk(v, branch)
		}
		walkNodes(v, n.Else)

	case *ast.Branch:
		Walk(v, n.Condition)
		walkNodes(v, n.Body)

	case *ast.UnaryOperator:
		Walk(v, n.Expr)

	case *ast.BinaryOperator:
		Walk(v, n.Expr1)
		Walk(v, n.Expr2)

	case *ast.Conditional:
		Walk(v, n.Then)
		Walk(v, n.Cond)
		Walk(v, n.Else)

	case *ast.Call:
		Walk(v, n.Func)
		for _, arg := range n.Args {
			Walk(v, arg)
		}

	case *ast.Index:
		Walk(v, n.Expr)
		Walk(v, n.Index)

	case *ast.Selector:
		Walk(v, n.Expr)

	case *ast.ListLiteral:
		for _, elem := range n.Elements {
			Walk(v, elem)
		}

	case *ast.Text, *ast.Comment, *ast.BasicLiteral, *ast.Identifier:
		// Nothing to do.

	default:
		panic(fmt.Sprintf("unsupported node type %T", node))

	}

	v.Visit(nil)
}

func walkNodes(v Visitor, nodes []ast.Node) {
	for _, node := range nodes {
		Walk(v, node)
	}
}

// inspector implements Visitor for Inspect.
type inspector func(ast.Node) bool

func (f inspector) Visit(node ast.Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Inspect traverses an AST in depth-first order: it starts by calling
// f(node); node must not be nil. If f returns true, Inspect invokes f
// recursively for each of the non-nil children of node, followed by a
// call of f(nil).
func Inspect(node ast.Node, f func(ast.Node) bool) {
	Walk(inspector(f), node)
}
