package pcre

import (
	"fmt"
	"strings"
)

// Op identifies the variant of a syntax tree node.
type Op int

const (
	OpEmpty        Op = iota // matches the empty string
	OpLiteral                // a single character
	OpClass                  // a set of character ranges
	OpConcat                 // subexpressions in sequence
	OpAlternate              // alternative subexpressions
	OpGroup                  // (...), (?:...), (?P<name>...)
	OpRepeat                 // *, +, ?, {m,n}
	OpBeginLine              // ^ under the m modifier
	OpEndLine                // $ under the m modifier
	OpBeginText              // ^ otherwise, \A
	OpEndText                // $ otherwise, \z
	OpWordBoundary           // \b, \B
)

func (op Op) String() string {
	switch op {
	case OpEmpty:
		return "empty"
	case OpLiteral:
		return "literal"
	case OpClass:
		return "class"
	case OpConcat:
		return "concatenation"
	case OpAlternate:
		return "alternation"
	case OpGroup:
		return "group"
	case OpRepeat:
		return "repetition"
	case OpBeginLine:
		return "begin-line"
	case OpEndLine:
		return "end-line"
	case OpBeginText:
		return "begin-text"
	case OpEndText:
		return "end-text"
	case OpWordBoundary:
		return "word-boundary"
	default:
		return "unknown"
	}
}

// ClassRange is an inclusive range of Unicode scalar values inside a
// character class.
type ClassRange struct {
	Lo, Hi rune
}

// Node is one node of a translated regex body. Nodes form a tree in which
// every node exclusively owns its children; nothing is shared or rewritten
// after translation.
//
// Which fields carry meaning depends on Op. Sub holds the children of
// OpConcat and OpAlternate, and exactly one child for OpGroup and OpRepeat.
// Rune is the OpLiteral character. Ranges holds the OpClass ranges, sorted,
// non-overlapping and non-adjacent. Index and Name describe an OpGroup:
// capturing groups number from 1 in order of their opening parenthesis,
// non-capturing groups have Index 0, and Name is empty unless the group was
// named. Min, Max and Greedy describe OpRepeat bounds, with Max -1 standing
// for an unbounded upper end.
type Node struct {
	Op     Op
	Sub    []*Node
	Rune   rune
	Ranges []ClassRange
	Index  int
	Name   string
	Min    int
	Max    int
	Greedy bool
}

// Capturing reports whether n is a group that captures.
func (n *Node) Capturing() bool {
	return n.Op == OpGroup && n.Index > 0
}

// FindGroup returns the first group node carrying the capture index,
// searching depth first in child order, or nil if the tree holds none.
// Non-capturing groups never match themselves but are still descended
// into, as are repetitions.
func (n *Node) FindGroup(index int) *Node {
	switch n.Op {
	case OpConcat, OpAlternate:
		for _, sub := range n.Sub {
			if g := sub.FindGroup(index); g != nil {
				return g
			}
		}
	case OpGroup:
		if n.Index != 0 && n.Index == index {
			return n
		}
		if len(n.Sub) == 1 {
			return n.Sub[0].FindGroup(index)
		}
	case OpRepeat:
		if len(n.Sub) == 1 {
			return n.Sub[0].FindGroup(index)
		}
	}
	// Literals, classes, anchors and the empty node have no children.
	return nil
}

// String renders a compact structural dump of the tree, meant for debug
// logging and test failure output rather than round-tripping.
func (n *Node) String() string {
	var b strings.Builder
	n.dump(&b)
	return b.String()
}

func (n *Node) dump(b *strings.Builder) {
	switch n.Op {
	case OpEmpty:
		b.WriteString("emp{}")
	case OpLiteral:
		fmt.Fprintf(b, "lit{%q}", n.Rune)
	case OpClass:
		b.WriteString("cls{")
		for i, r := range n.Ranges {
			if i > 0 {
				b.WriteByte(' ')
			}
			if r.Lo == r.Hi {
				fmt.Fprintf(b, "%#x", r.Lo)
			} else {
				fmt.Fprintf(b, "%#x-%#x", r.Lo, r.Hi)
			}
		}
		b.WriteByte('}')
	case OpConcat:
		n.dumpSubs(b, "cat")
	case OpAlternate:
		n.dumpSubs(b, "alt")
	case OpGroup:
		switch {
		case n.Name != "":
			fmt.Fprintf(b, "grp(%d:%s){", n.Index, n.Name)
		case n.Index > 0:
			fmt.Fprintf(b, "grp(%d){", n.Index)
		default:
			b.WriteString("grp{")
		}
		for _, sub := range n.Sub {
			sub.dump(b)
		}
		b.WriteByte('}')
	case OpRepeat:
		if n.Max < 0 {
			fmt.Fprintf(b, "rep(%d,)", n.Min)
		} else {
			fmt.Fprintf(b, "rep(%d,%d)", n.Min, n.Max)
		}
		if !n.Greedy {
			b.WriteByte('?')
		}
		b.WriteByte('{')
		for _, sub := range n.Sub {
			sub.dump(b)
		}
		b.WriteByte('}')
	case OpBeginLine:
		b.WriteString("bol{}")
	case OpEndLine:
		b.WriteString("eol{}")
	case OpBeginText:
		b.WriteString("bot{}")
	case OpEndText:
		b.WriteString("eot{}")
	case OpWordBoundary:
		b.WriteString("wb{}")
	default:
		fmt.Fprintf(b, "op%d{}", int(n.Op))
	}
}

func (n *Node) dumpSubs(b *strings.Builder, name string) {
	b.WriteString(name)
	b.WriteByte('{')
	for i, sub := range n.Sub {
		if i > 0 {
			b.WriteByte(' ')
		}
		sub.dump(b)
	}
	b.WriteByte('}')
}
