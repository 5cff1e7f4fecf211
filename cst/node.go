// Copyright (C) 2017 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cst

import (
	"strings"

	"github.com/pkg/errors"
)

// ZombieTag is the reserved node name for synthetic nodes that carry
// skipped/recovered text produced during error recovery (spec §3.3, §4.6).
const ZombieTag = "ZOMBIE__"

// attr is one entry of a Node's lazily-created, insertion-ordered attribute
// mapping.
type attr struct {
	name  string
	value string
}

// Node is the CST node produced by a parse: it either carries a leaf string
// (content) or an ordered sequence of children, never both (spec §3.2).
type Node struct {
	name     string
	isLeaf   bool
	leaf     string
	children []*Node
	attrs    []attr
	pos      Position
	frozen   bool // true only for EmptyNode; guards against accidental mutation
}

// NewLeaf builds a leaf Node carrying content verbatim. Position is
// Unassigned until SetPos is called.
func NewLeaf(name, content string) *Node {
	return &Node{name: name, isLeaf: true, leaf: content, pos: Unassigned}
}

// NewBranch builds a branch Node from an ordered list of children. Position
// is Unassigned until SetPos is called.
func NewBranch(name string, children []*Node) *Node {
	cp := make([]*Node, len(children))
	copy(cp, children)
	return &Node{name: name, children: cp, pos: Unassigned}
}

// EmptyNode is a shared, immutable, anonymous empty leaf used as a
// performance surrogate whenever a parser matches empty text and is
// disposable or drops content (spec §3.3). No code path may mutate it;
// calling SetPos on it panics.
var EmptyNode = &Node{name: ":Empty", isLeaf: true, leaf: "", pos: Unassigned, frozen: true}

// Name returns the node's tag name.
func (n *Node) Name() string { return n.name }

// IsLeaf reports whether this Node carries inline text rather than children.
func (n *Node) IsLeaf() bool { return n.isLeaf }

// Disposable reports whether this Node's name marks it anonymous
// (conventionally prefixed with ":"), making it subject to elimination by
// tree reduction and AST transformation (spec §3.2).
func (n *Node) Disposable() bool {
	return strings.HasPrefix(n.name, ":")
}

// Children returns the node's children in order. For a leaf, it is nil.
// The returned slice must not be mutated by callers.
func (n *Node) Children() []*Node { return n.children }

// Content returns the node's full text: the leaf string for a leaf, or the
// concatenation of all children's Content for a branch (spec §3.2: content
// of a branch is derived, not stored).
func (n *Node) Content() string {
	if n.isLeaf {
		return n.leaf
	}
	if len(n.children) == 0 {
		return ""
	}
	var b strings.Builder
	for _, c := range n.children {
		b.WriteString(c.Content())
	}
	return b.String()
}

// Len returns len(n.Content()) without necessarily materializing it for a
// leaf (branches still need the concatenation).
func (n *Node) Len() int {
	if n.isLeaf {
		return len(n.leaf)
	}
	total := 0
	for _, c := range n.children {
		total += c.Len()
	}
	return total
}

// Pos returns the node's absolute source position, or Unassigned if not yet set.
func (n *Node) Pos() Position { return n.pos }

// SetPos assigns pos to this node if unassigned, then recursively assigns
// positions to descendants whose position is still Unassigned, using the
// lengths of preceding siblings to compute each child's offset (spec §3.2).
// Reassigning an already-assigned node to a *different* position is a
// programming error and panics; reassigning to the same value is a no-op.
// Calling SetPos on EmptyNode always panics: EmptyNode is shared and must
// never carry a position.
func (n *Node) SetPos(pos Position) {
	if n.frozen {
		panic(errors.New("cst: cannot assign a position to the shared EmptyNode"))
	}
	if n.pos != Unassigned {
		if n.pos != pos {
			panic(errors.Errorf("cst: node %q position already set to %d, cannot reassign to %d", n.name, n.pos, pos))
		}
		return
	}
	n.pos = pos
	offset := pos
	for _, c := range n.children {
		if c.pos == Unassigned {
			c.SetPos(offset)
		}
		offset += Position(c.Len())
	}
}

// Attr returns the value of attribute name and whether it was present.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.attrs {
		if a.name == name {
			return a.value, true
		}
	}
	return "", false
}

// SetAttr sets (or overwrites) an attribute, creating the attribute mapping
// lazily (spec §3.2: "created lazily").
func (n *Node) SetAttr(name, value string) {
	if n.frozen {
		panic(errors.New("cst: cannot set an attribute on the shared EmptyNode"))
	}
	for i, a := range n.attrs {
		if a.name == name {
			n.attrs[i].value = value
			return
		}
	}
	n.attrs = append(n.attrs, attr{name, value})
}

// AttrNames returns attribute names in insertion order.
func (n *Node) AttrNames() []string {
	names := make([]string, len(n.attrs))
	for i, a := range n.attrs {
		names[i] = a.name
	}
	return names
}

// Equals reports structural equality by (name, attributes, content/children),
// modulo attribute order when ignoreAttrOrder is set (spec §6.4).
func (n *Node) Equals(other *Node, ignoreAttrOrder bool) bool {
	if n == nil || other == nil {
		return n == other
	}
	if n.name != other.name || n.isLeaf != other.isLeaf {
		return false
	}
	if !equalAttrs(n.attrs, other.attrs, ignoreAttrOrder) {
		return false
	}
	if n.isLeaf {
		return n.leaf == other.leaf
	}
	if len(n.children) != len(other.children) {
		return false
	}
	for i := range n.children {
		if !n.children[i].Equals(other.children[i], ignoreAttrOrder) {
			return false
		}
	}
	return true
}

func equalAttrs(a, b []attr, ignoreOrder bool) bool {
	if len(a) != len(b) {
		return false
	}
	if !ignoreOrder {
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
		return true
	}
	for _, x := range a {
		v, ok := lookupAttr(b, x.name)
		if !ok || v != x.value {
			return false
		}
	}
	return true
}

func lookupAttr(attrs []attr, name string) (string, bool) {
	for _, a := range attrs {
		if a.name == name {
			return a.value, true
		}
	}
	return "", false
}

// Select walks the subtree rooted at n (n included) in document order,
// calling visit on every node for which predicate returns true. It is the Go
// analogue of the original implementation's Node.select_if/select
// (syntaxtree.py); supplemented per SPEC_FULL.md since spec.md's CST-
// serialization contract (§6.4) only demands "sufficient structure", and
// downstream AST-transformation clients need a way to walk that structure.
func (n *Node) Select(predicate func(*Node) bool, visit func(*Node)) {
	if predicate(n) {
		visit(n)
	}
	for _, c := range n.children {
		c.Select(predicate, visit)
	}
}

// Pick returns the first node in document order (n included) for which
// predicate returns true.
func (n *Node) Pick(predicate func(*Node) bool) (*Node, bool) {
	var found *Node
	n.Select(predicate, func(m *Node) {
		if found == nil {
			found = m
		}
	})
	return found, found != nil
}

// Locate returns the deepest node in the subtree rooted at n whose span
// [Pos, Pos+Len) covers pos, or nil if pos falls outside n's span or n's
// position has not been assigned.
func (n *Node) Locate(pos Position) *Node {
	if n.pos == Unassigned || pos < n.pos || pos >= n.pos+Position(n.Len()) {
		if n.Len() == 0 && pos == n.pos {
			// fall through: an empty node still "covers" its own position
		} else {
			return nil
		}
	}
	for _, c := range n.children {
		if found := c.Locate(pos); found != nil {
			return found
		}
	}
	return n
}

// Sexpr renders n as a parenthesized S-expression: (name "content") for a
// leaf, (name (child) (child) …) for a branch. This is the cheap,
// deterministic serialization this module's own tests use to assert tree
// shape (spec §6.4 names S-expression output as an allowed secondary
// format).
func (n *Node) Sexpr() string {
	var b strings.Builder
	n.writeSexpr(&b)
	return b.String()
}

func (n *Node) writeSexpr(b *strings.Builder) {
	b.WriteByte('(')
	b.WriteString(n.name)
	if n.isLeaf {
		b.WriteString(" \"")
		b.WriteString(strings.ReplaceAll(n.leaf, "\"", "\\\""))
		b.WriteByte('"')
	} else {
		for _, c := range n.children {
			b.WriteByte(' ')
			c.writeSexpr(b)
		}
	}
	b.WriteByte(')')
}
