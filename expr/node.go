// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expr

import (
	"fmt"
	"strings"

	"github.com/peekdbg/peek/symbol"
)

// A Node is one node of a parsed expression tree. The hierarchy is
// closed; the evaluator dispatches on the concrete types below.
type Node interface {
	// Pos returns the byte offset of the node's first token.
	Pos() int
	dump(b *strings.Builder, depth int)
}

// A CastKind says which cast syntax produced a CastNode.
type CastKind int

const (
	CastCStyle CastKind = iota // (Type)x
	CastStatic
	CastReinterpret
	CastConst
	CastRust // x as Type
)

func (k CastKind) String() string {
	switch k {
	case CastStatic:
		return "static_cast"
	case CastReinterpret:
		return "reinterpret_cast"
	case CastConst:
		return "const_cast"
	case CastRust:
		return "as"
	}
	return "cast"
}

type (
	// An IdentifierNode names a variable, member, type or other symbol,
	// resolved when the expression is evaluated.
	IdentifierNode struct {
		Ident ParsedIdentifier
		pos   int
	}

	// A LiteralNode holds a number, string, char or bool token. Its
	// value and type are worked out at evaluation.
	LiteralNode struct {
		Token Token
	}

	// A UnaryNode applies a prefix operator: - + * & ! ~.
	UnaryNode struct {
		Op      Token
		Operand Node
	}

	// A BinaryNode applies an infix operator, including assignments
	// and the comma operator.
	BinaryNode struct {
		Op    Token
		Left  Node
		Right Node
	}

	// A MemberAccessNode is object.member or object->member.
	MemberAccessNode struct {
		Object Node
		Op     Token // TokenDot or TokenArrow
		Member IdentifierComponent
	}

	// A SubscriptNode is object[index].
	SubscriptNode struct {
		Object Node
		Index  Node
		pos    int
	}

	// A TypeNode is a type written in source, already resolved by the
	// parser. It appears under casts and sizeof; as a value it is an
	// evaluation error.
	TypeNode struct {
		Type symbol.Type
		pos  int
	}

	// A CastNode converts From to the named type.
	CastNode struct {
		Kind CastKind
		To   *TypeNode
		From Node
		pos  int
	}

	// A SizeofNode is sizeof(type) or sizeof expr.
	SizeofNode struct {
		Arg Node
		pos int
	}

	// A BlockNode is a braced statement sequence. With TrailingSemi set
	// the block's value is void, otherwise it is the value of the last
	// statement.
	BlockNode struct {
		Stmts        []Node
		TrailingSemi bool
		pos          int
	}

	// A VariableDeclNode declares an evaluator-local variable: Rust
	// "let x = e" or C++ "auto x = e". Slot indexes the evaluator's
	// local slot stack. Type is the optional let annotation; nil means
	// the initializer's type is taken as is.
	VariableDeclNode struct {
		Name string
		Slot int
		Type symbol.Type
		Init Node
		pos  int
	}

	// A LocalVarNode reads a declared evaluator-local variable.
	LocalVarNode struct {
		Name string
		Slot int
		pos  int
	}

	// An IfNode evaluates Then or Else depending on Cond. Else may be
	// nil, and is a nested IfNode for else-if chains.
	IfNode struct {
		Cond Node
		Then Node
		Else Node
		pos  int
	}

	// A LoopNode is a while, do-while, for or Rust loop. Init, Cond and
	// Incr may be nil depending on Kind.
	LoopNode struct {
		Kind TokenKind
		Init Node
		Cond Node
		Incr Node
		Body Node
		pos  int
	}

	// A BreakNode exits the innermost loop. The parser only accepts it
	// inside one.
	BreakNode struct {
		pos int
	}
)

func (n *IdentifierNode) Pos() int   { return n.pos }
func (n *LiteralNode) Pos() int      { return n.Token.Pos }
func (n *UnaryNode) Pos() int        { return n.Op.Pos }
func (n *BinaryNode) Pos() int       { return n.Left.Pos() }
func (n *MemberAccessNode) Pos() int { return n.Object.Pos() }
func (n *SubscriptNode) Pos() int    { return n.pos }
func (n *TypeNode) Pos() int         { return n.pos }
func (n *CastNode) Pos() int         { return n.pos }
func (n *SizeofNode) Pos() int       { return n.pos }
func (n *BlockNode) Pos() int        { return n.pos }
func (n *VariableDeclNode) Pos() int { return n.pos }
func (n *LocalVarNode) Pos() int     { return n.pos }
func (n *IfNode) Pos() int           { return n.pos }
func (n *LoopNode) Pos() int         { return n.pos }
func (n *BreakNode) Pos() int        { return n.pos }

// dumpNode renders the tree one node per line, indented two spaces per
// level. Parser tests compare against these strings.
func dumpNode(n Node) string {
	var b strings.Builder
	n.dump(&b, 0)
	return b.String()
}

func indent(b *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteString("  ")
	}
}

func dumpLine(b *strings.Builder, depth int, format string, args ...interface{}) {
	indent(b, depth)
	fmt.Fprintf(b, format, args...)
	b.WriteByte('\n')
}

func (n *IdentifierNode) dump(b *strings.Builder, depth int) {
	dumpLine(b, depth, "IDENT(%q)", n.Ident.FullName())
}

func (n *LiteralNode) dump(b *strings.Builder, depth int) {
	dumpLine(b, depth, "LITERAL(%s)", n.Token.Text)
}

func (n *UnaryNode) dump(b *strings.Builder, depth int) {
	dumpLine(b, depth, "UNARY(%s)", n.Op.Text)
	n.Operand.dump(b, depth+1)
}

func (n *BinaryNode) dump(b *strings.Builder, depth int) {
	dumpLine(b, depth, "BINARY(%s)", n.Op.Text)
	n.Left.dump(b, depth+1)
	n.Right.dump(b, depth+1)
}

func (n *MemberAccessNode) dump(b *strings.Builder, depth int) {
	dumpLine(b, depth, "MEMBER(%s, %q)", n.Op.Text, n.Member.FullName())
	n.Object.dump(b, depth+1)
}

func (n *SubscriptNode) dump(b *strings.Builder, depth int) {
	dumpLine(b, depth, "SUBSCRIPT")
	n.Object.dump(b, depth+1)
	n.Index.dump(b, depth+1)
}

func (n *TypeNode) dump(b *strings.Builder, depth int) {
	dumpLine(b, depth, "TYPE(%s)", n.Type.String())
}

func (n *CastNode) dump(b *strings.Builder, depth int) {
	dumpLine(b, depth, "CAST(%s, %s)", n.Kind, n.To.Type.String())
	n.From.dump(b, depth+1)
}

func (n *SizeofNode) dump(b *strings.Builder, depth int) {
	dumpLine(b, depth, "SIZEOF")
	n.Arg.dump(b, depth+1)
}

func (n *BlockNode) dump(b *strings.Builder, depth int) {
	if n.TrailingSemi {
		dumpLine(b, depth, "BLOCK(;)")
	} else {
		dumpLine(b, depth, "BLOCK")
	}
	for _, s := range n.Stmts {
		s.dump(b, depth+1)
	}
}

func (n *VariableDeclNode) dump(b *strings.Builder, depth int) {
	if n.Type != nil {
		dumpLine(b, depth, "DECL(%q, slot %d, %s)", n.Name, n.Slot, n.Type.String())
	} else {
		dumpLine(b, depth, "DECL(%q, slot %d)", n.Name, n.Slot)
	}
	if n.Init != nil {
		n.Init.dump(b, depth+1)
	}
}

func (n *LocalVarNode) dump(b *strings.Builder, depth int) {
	dumpLine(b, depth, "LOCAL(%q, slot %d)", n.Name, n.Slot)
}

func (n *IfNode) dump(b *strings.Builder, depth int) {
	dumpLine(b, depth, "IF")
	n.Cond.dump(b, depth+1)
	n.Then.dump(b, depth+1)
	if n.Else != nil {
		n.Else.dump(b, depth+1)
	}
}

func (n *LoopNode) dump(b *strings.Builder, depth int) {
	switch n.Kind {
	case TokenDo:
		dumpLine(b, depth, "LOOP(do)")
	case TokenFor:
		dumpLine(b, depth, "LOOP(for)")
	case TokenLoop:
		dumpLine(b, depth, "LOOP(loop)")
	default:
		dumpLine(b, depth, "LOOP(while)")
	}
	for _, c := range []Node{n.Init, n.Cond, n.Incr, n.Body} {
		if c != nil {
			c.dump(b, depth+1)
		}
	}
}

func (n *BreakNode) dump(b *strings.Builder, depth int) {
	dumpLine(b, depth, "BREAK")
}
