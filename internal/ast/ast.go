// Package ast defines the Aster abstract syntax tree: one tagged family of
// nodes per syntactic category (terms, types, patterns, statements,
// modifiers, and the template plumbing), each carrying an Origin that
// records where in the input the node came from.
//
// Nodes are produced bottom-up by the parser and never mutated after their
// Origin is assigned.
package ast

import (
	"github.com/orizon-lang/aster/internal/source"
)

// Origin records the provenance of a node: the input buffer, the dialect
// name it was parsed under, the trimmed source span, and the token index
// range [StartToken, EndToken) that produced the node.
type Origin struct {
	Input      *source.Input
	Dialect    string
	Span       source.Span
	StartToken int
	EndToken   int
}

// Tree is the interface implemented by every AST node.
type Tree interface {
	Origin() Origin
	Span() source.Span
}

// TreeBase carries the Origin for every concrete node type.
type TreeBase struct {
	Orig Origin
}

// Origin returns the node's origin.
func (b *TreeBase) Origin() Origin { return b.Orig }

// Span returns the node's trimmed source span.
func (b *TreeBase) Span() source.Span { return b.Orig.Span }

// SetOrigin assigns the node's origin. The parser calls this exactly once
// per node, immediately after construction.
func (b *TreeBase) SetOrigin(o Origin) { b.Orig = o }

// Stat is any statement: definitions, declarations, imports, terms.
type Stat interface {
	Tree
	statNode()
}

// Term is an expression. Every term is also a statement.
type Term interface {
	Stat
	termNode()
}

// Type is a type expression.
type Type interface {
	Tree
	typeNode()
}

// Pat is a pattern.
type Pat interface {
	Tree
	patNode()
}

// Mod is a modifier or annotation.
type Mod interface {
	Tree
	modNode()
}

// Enumerator is a for-comprehension clause.
type Enumerator interface {
	Tree
	enumeratorNode()
}

// Importee is one selector inside an import/export clause.
type Importee interface {
	Tree
	importeeNode()
}

// Ctor is a constructor (primary or secondary).
type Ctor interface {
	Tree
	ctorNode()
}

// Name is an identifier reference shared by several families: init names,
// self names, private/protected qualifiers. An empty Value means anonymous.
type Name struct {
	TreeBase
	Value string
}

// IsAnonymous reports whether the name is the anonymous placeholder.
func (n *Name) IsAnonymous() bool { return n.Value == "" }

// LitKind discriminates literal values.
type LitKind int

const (
	LitInt LitKind = iota
	LitLong
	LitFloat
	LitDouble
	LitChar
	LitString
	LitSymbol
	LitBool
	LitNull
	LitUnit
)

func (k LitKind) String() string {
	switch k {
	case LitInt:
		return "Int"
	case LitLong:
		return "Long"
	case LitFloat:
		return "Float"
	case LitDouble:
		return "Double"
	case LitChar:
		return "Char"
	case LitString:
		return "String"
	case LitSymbol:
		return "Symbol"
	case LitBool:
		return "Bool"
	case LitNull:
		return "Null"
	case LitUnit:
		return "Unit"
	}
	return "Unknown"
}

// Lit is a literal. It is valid in term, pattern, and (when the dialect
// allows literal types) type position.
type Lit struct {
	TreeBase
	Kind  LitKind
	Value any
}

func (*Lit) statNode() {}
func (*Lit) termNode() {}
func (*Lit) patNode()  {}
func (*Lit) typeNode() {}

// Quasi is a quasiquote hole: an unquote escape standing in for a node of
// any family. Rank 0 is $x or ${...}; rank 2 is ..$x; rank 3 is ...$x
// (the rank counts the leading dots).
type Quasi struct {
	TreeBase
	Rank int
	Body string // the unquote escape body, re-parsed by the expander
}

func (*Quasi) statNode()       {}
func (*Quasi) termNode()       {}
func (*Quasi) typeNode()       {}
func (*Quasi) patNode()        {}
func (*Quasi) modNode()        {}
func (*Quasi) enumeratorNode() {}
func (*Quasi) importeeNode()   {}
func (*Quasi) ctorNode()       {}
