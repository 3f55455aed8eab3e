// Copyright (c) 2019 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ast declares the types used to define template trees.
//
// For example, the source in a template file named "steps.tpl":
//
//	{% for step in steps %}
//	tcans {{ step.id }}
//	{% endfor %}
//
// is represented with the tree:
//
//	ast.NewTree("steps.tpl", []ast.Node{
//		ast.NewFor(
//			&ast.Position{Line: 1, Column: 1, Start: 0, End: 53},
//			ast.NewIdentifier(&ast.Position{Line: 1, Column: 8, Start: 7, End: 10}, "step"),
//			nil,
//			ast.NewIdentifier(&ast.Position{Line: 1, Column: 16, Start: 15, End: 19}, "steps"),
//			[]ast.Node{
//				ast.NewText(&ast.Position{Line: 1, Column: 24, Start: 23, End: 29}, []byte("\ntcans ")),
//				ast.NewShow(
//					&ast.Position{Line: 2, Column: 7, Start: 30, End: 42},
//					ast.NewSelector(
//						&ast.Position{Line: 2, Column: 14, Start: 33, End: 39},
//						ast.NewIdentifier(&ast.Position{Line: 2, Column: 10, Start: 33, End: 36}, "step"),
//						"id"),
//				),
//				ast.NewText(&ast.Position{Line: 2, Column: 20, Start: 43, End: 43}, []byte("\n")),
//			},
//		),
//	})
package ast

import (
	"strconv"
	"strings"
)

// OperatorType represents an operator type in a unary and binary expression.
type OperatorType int

const (
	OperatorEqual          OperatorType = iota // ==
	OperatorNotEqual                           // !=
	OperatorLess                               // <
	OperatorLessEqual                          // <=
	OperatorGreater                            // >
	OperatorGreaterEqual                       // >=
	OperatorNot                                // not
	OperatorAnd                                // and
	OperatorOr                                 // or
	OperatorAddition                           // +
	OperatorSubtraction                        // -
	OperatorMultiplication                     // *
	OperatorDivision                           // /
	OperatorModulo                             // %
	OperatorFloorDivision                      // //
)

var operatorsString = [...]string{"==", "!=", "<", "<=", ">", ">=", "not",
	"and", "or", "+", "-", "*", "/", "%", "//"}

// String returns the string representation of the operator type.
func (op OperatorType) String() string {
	return operatorsString[op]
}

// LiteralType represents the type of a literal.
type LiteralType int

const (
	StringLiteral LiteralType = iota
	IntLiteral
	FloatLiteral
	BoolLiteral
)

// Node is a node of the tree.
type Node interface {
	Pos() *Position // position in the original source
}

// Position is a position of a node in the source.
type Position struct {
	Line   int // line starting from 1
	Column int // column in characters starting from 1
	Start  int // index of the first byte
	End    int // index of the last byte
}

// Pos returns the position p.
func (p *Position) Pos() *Position {
	return p
}

// String returns the line and column separated by a colon, for example "37:18".
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// WithEnd returns a copy of the position but with the given end index.
func (p *Position) WithEnd(end int) *Position {
	pp := *p
	pp.End = end
	return &pp
}

// Operator represents an operator expression. It is implemented by the
// UnaryOperator and BinaryOperator nodes.
type Operator interface {
	Expression
	Operator() OperatorType
	Precedence() int
}

// Expression node represents an expression.
type Expression interface {
	Parenthesis() int
	SetParenthesis(int)
	Node
	String() string
}

// expression represents an expression.
type expression struct {
	parenthesis int
}

// Parenthesis returns the number of parenthesis around the expression.
func (e *expression) Parenthesis() int {
	return e.parenthesis
}

// SetParenthesis sets the number of parenthesis around the expression.
func (e *expression) SetParenthesis(n int) {
	e.parenthesis = n
}

// Tree node represents a tree.
type Tree struct {
	*Position
	Path  string // path of the tree.
	Nodes []Node // nodes of the first level of the tree.
}

// NewTree returns a new Tree node.
func NewTree(path string, nodes []Node) *Tree {
	if nodes == nil {
		nodes = []Node{}
	}
	tree := &Tree{
		Position: &Position{1, 1, 0, 0},
		Path:     path,
		Nodes:    nodes,
	}
	return tree
}

// Text node represents a text in the source. The text is rendered as is.
type Text struct {
	*Position        // position in the source.
	Text      []byte // text.
}

// NewText returns a new Text node.
func NewText(pos *Position, text []byte) *Text {
	return &Text{pos, text}
}

// String returns the string representation of n.
func (n *Text) String() string {
	return string(n.Text)
}

// Show node represents the statement {{ expr }}.
type Show struct {
	*Position            // position in the source.
	Expr      Expression // expression that once evaluated returns the value to show.
}

// NewShow returns a new Show node.
func NewShow(pos *Position, expr Expression) *Show {
	return &Show{pos, expr}
}

// String returns the string representation of n.
func (n *Show) String() string {
	return "{{ " + n.Expr.String() + " }}"
}

// Comment node represents a comment statement in the form {# ... #}.
type Comment struct {
	*Position        // position in the source.
	Text      string // comment text.
}

// NewComment returns a new Comment node.
func NewComment(pos *Position, text string) *Comment {
	return &Comment{pos, text}
}

// For node represents the statement
//
//	{% for ident in expr %}...{% endfor %}
//
// or, when Ident2 is not nil, the statement
//
//	{% for ident, ident2 in expr %}...{% endfor %}
type For struct {
	*Position             // position in the source.
	Ident     *Identifier // loop variable.
	Ident2    *Identifier // second loop variable, can be nil.
	Expr      Expression  // iterated expression.
	Body      []Node      // nodes of the body.
}

// NewFor returns a new For node.
func NewFor(pos *Position, ident, ident2 *Identifier, expr Expression, body []Node) *For {
	if body == nil {
		body = []Node{}
	}
	return &For{pos, ident, ident2, expr, body}
}

// String returns the string representation of n.
func (n *For) String() string {
	s := "for " + n.Ident.Name
	if n.Ident2 != nil {
		s += ", " + n.Ident2.Name
	}
	return s + " in " + n.Expr.String()
}

// Branch is a conditional branch of an If node, the "if" branch or an
// "elif" branch.
type Branch struct {
	*Position             // position in the source.
	Condition Expression  // condition that once evaluated returns true or false.
	Body      []Node      // nodes to render if Condition is true.
}

// NewBranch returns a new Branch node.
func NewBranch(pos *Position, cond Expression, body []Node) *Branch {
	if body == nil {
		body = []Node{}
	}
	return &Branch{pos, cond, body}
}

// If node represents the statement
//
//	{% if cond %}...{% elif cond %}...{% else %}...{% endif %}
//
// Else is nil if there is no else branch.
type If struct {
	*Position           // position in the source.
	Branches  []*Branch // if and elif branches, in source order.
	Else      []Node    // nodes of the else branch, nil if there is no else.
}

// NewIf returns a new If node.
func NewIf(pos *Position, cond Expression, then []Node) *If {
	return &If{pos, []*Branch{NewBranch(pos, cond, then)}, nil}
}

// String returns the string representation of n.
func (n *If) String() string {
	return "if " + n.Branches[0].Condition.String()
}

// BasicLiteral represents integer, floating-point, boolean and string
// literals.
type BasicLiteral struct {
	expression
	*Position             // position in the source.
	Type      LiteralType // type.
	Value     string      // value as written in the source.
}

// NewBasicLiteral returns a new BasicLiteral node.
func NewBasicLiteral(pos *Position, typ LiteralType, value string) *BasicLiteral {
	return &BasicLiteral{expression{}, pos, typ, value}
}

// String returns the string representation of n.
func (n *BasicLiteral) String() string {
	return n.Value
}

// Identifier node represents an identifier expression.
type Identifier struct {
	expression
	*Position        // position in the source.
	Name      string // name.
}

// NewIdentifier returns a new Identifier node.
func NewIdentifier(pos *Position, name string) *Identifier {
	return &Identifier{expression{}, pos, name}
}

// String returns the string representation of n.
func (n *Identifier) String() string {
	return n.Name
}

// ListLiteral node represents a list literal [e1, e2, ...].
type ListLiteral struct {
	expression
	*Position              // position in the source.
	Elements  []Expression // elements.
}

// NewListLiteral returns a new ListLiteral node.
func NewListLiteral(pos *Position, elements []Expression) *ListLiteral {
	return &ListLiteral{expression{}, pos, elements}
}

// String returns the string representation of n.
func (n *ListLiteral) String() string {
	return "[" + joinExpressions(n.Elements) + "]"
}

// UnaryOperator node represents a unary operator expression.
type UnaryOperator struct {
	expression
	*Position              // position in the source.
	Op        OperatorType // operator.
	Expr      Expression   // expression.
}

// NewUnaryOperator returns a new UnaryOperator node.
func NewUnaryOperator(pos *Position, op OperatorType, expr Expression) *UnaryOperator {
	return &UnaryOperator{expression{}, pos, op, expr}
}

// String returns the string representation of n.
func (n *UnaryOperator) String() string {
	s := n.Op.String()
	if n.Op == OperatorNot {
		s += " "
	}
	if _, ok := n.Expr.(Operator); ok {
		s += "(" + n.Expr.String() + ")"
	} else {
		s += n.Expr.String()
	}
	return s
}

// Operator returns the operator type of the expression.
func (n *UnaryOperator) Operator() OperatorType {
	return n.Op
}

// Precedence returns a number that represents the precedence of the
// expression.
func (n *UnaryOperator) Precedence() int {
	if n.Op == OperatorNot {
		return 3
	}
	return 7
}

// BinaryOperator node represents a binary operator expression.
type BinaryOperator struct {
	expression
	*Position              // position in the source.
	Op        OperatorType // operator.
	Expr1     Expression   // first expression.
	Expr2     Expression   // second expression.
}

// NewBinaryOperator returns a new binary operator.
func NewBinaryOperator(pos *Position, op OperatorType, expr1, expr2 Expression) *BinaryOperator {
	return &BinaryOperator{expression{}, pos, op, expr1, expr2}
}

// String returns the string representation of n.
func (n *BinaryOperator) String() string {
	var s string
	if e, ok := n.Expr1.(Operator); ok && e.Precedence() < n.Precedence() {
		s += "(" + n.Expr1.String() + ")"
	} else {
		s += n.Expr1.String()
	}
	s += " " + n.Op.String() + " "
	if e, ok := n.Expr2.(Operator); ok && e.Precedence() <= n.Precedence() {
		s += "(" + n.Expr2.String() + ")"
	} else {
		s += n.Expr2.String()
	}
	return s
}

// Operator returns the operator type of the expression.
func (n *BinaryOperator) Operator() OperatorType {
	return n.Op
}

// Precedence returns a number that represents the precedence of the
// expression.
func (n *BinaryOperator) Precedence() int {
	switch n.Op {
	case OperatorMultiplication, OperatorDivision, OperatorModulo, OperatorFloorDivision:
		return 6
	case OperatorAddition, OperatorSubtraction:
		return 5
	case OperatorEqual, OperatorNotEqual, OperatorLess, OperatorLessEqual,
		OperatorGreater, OperatorGreaterEqual:
		return 4
	case OperatorAnd:
		return 2
	case OperatorOr:
		return 1
	}
	panic("invalid operator type")
}

// Conditional node represents the conditional expression
//
//	expr1 if cond else expr2
type Conditional struct {
	expression
	*Position            // position in the source.
	Then      Expression // value if Cond is true.
	Cond      Expression // condition.
	Else      Expression // value if Cond is false.
}

// NewConditional returns a new Conditional node.
func NewConditional(pos *Position, then, cond, els Expression) *Conditional {
	return &Conditional{expression{}, pos, then, cond, els}
}

// String returns the string representation of n.
func (n *Conditional) String() string {
	return n.Then.String() + " if " + n.Cond.String() + " else " + n.Else.String()
}

// Selector node represents a selector expression.
type Selector struct {
	expression
	*Position            // position in the source.
	Expr      Expression // expression.
	Ident     string     // identifier.
}

// NewSelector returns a new Selector node.
func NewSelector(pos *Position, expr Expression, ident string) *Selector {
	return &Selector{expression{}, pos, expr, ident}
}

// String returns the string representation of n.
func (n *Selector) String() string {
	return n.Expr.String() + "." + n.Ident
}

// Index node represents an index expression.
type Index struct {
	expression
	*Position            // position in the source.
	Expr      Expression // expression.
	Index     Expression // index.
}

// NewIndex returns a new Index node.
func NewIndex(pos *Position, expr Expression, index Expression) *Index {
	return &Index{expression{}, pos, expr, index}
}

// String returns the string representation of n.
func (n *Index) String() string {
	return n.Expr.String() + "[" + n.Index.String() + "]"
}

// Call node represents a function call expression.
type Call struct {
	expression
	*Position              // position in the source.
	Func      Expression   // function.
	Args      []Expression // arguments.
}

// NewCall returns a new Call node.
func NewCall(pos *Position, fun Expression, args []Expression) *Call {
	return &Call{expression{}, pos, fun, args}
}

// String returns the string representation of n.
func (n *Call) String() string {
	return n.Func.String() + "(" + joinExpressions(n.Args) + ")"
}

func joinExpressions(exprs []Expression) string {
	var b strings.Builder
	for i, e := range exprs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(e.String())
	}
	return b.String()
}
