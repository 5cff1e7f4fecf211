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

package parse

import (
	"fmt"

	"github.com/google/dhparse/cst"
)

// synonymParser wraps a single sub-parser under a new public name without
// otherwise changing its behavior (spec §4.4 Synonym — the standard way an
// EBNF-compiler-generated grammar gives a symbol its own rule name when the
// right-hand side is just a reference to another rule).
type synonymParser struct{ base }

// Synonym returns a parser identical to p except that its own NodeName is
// name rather than p's.
func Synonym(name string, p Parser) Parser {
	s := &synonymParser{base: newBase(":Synonym", p)}
	s.self = s
	s.name = name
	return s
}

func (s *synonymParser) parseImpl(loc cst.Position) (*cst.Node, cst.Position, *ParserError) {
	node, newLoc, perr := s.sub[0].ParseEntry(loc)
	if perr != nil {
		return nil, loc, perr
	}
	if node == nil {
		return nil, loc, nil
	}
	if node == cst.EmptyNode || s.dropContent {
		return cst.EmptyNode, newLoc, nil
	}
	branch := cst.NewBranch(s.NodeName(), []*cst.Node{node})
	return reduceTree(s, branch), newLoc, nil
}

// dropParser runs its sub-parser for the side effect (position advance,
// variable-stack mutation) but always discards the resulting node (spec
// §4.4 Drop — used to match and throw away delimiters a grammar author
// never wants in the tree, distinct from ":"-prefixed anonymity because
// Drop reports DropContent, which the capture-drops-content static-analysis
// check looks at, while an anonymous-but-kept parser does not).
type dropParser struct{ base }

// Drop returns a parser that matches exactly what p matches but always
// contributes EMPTY_NODE to its parent.
func Drop(p Parser) Parser {
	d := &dropParser{base: newBase(":Drop", p)}
	d.self = d
	d.dropContent = true
	return d
}

func (d *dropParser) parseImpl(loc cst.Position) (*cst.Node, cst.Position, *ParserError) {
	node, newLoc, perr := d.sub[0].ParseEntry(loc)
	if perr != nil {
		return nil, loc, perr
	}
	if node == nil {
		return nil, loc, nil
	}
	return cst.EmptyNode, newLoc, nil
}

// CustomFunc is a grammar author's hand-written matcher (spec §4.4 Custom):
// given the remaining text from the current location, return the number of
// bytes matched, or ok=false for no match.
type CustomFunc func(remaining string) (length int, ok bool)

// customParser wraps a CustomFunc as an ordinary Parser, recovering from
// any panic the function raises and turning it into a FATAL diagnostic
// instead of crashing the parse (spec §5's cancellation-hook language: a
// grammar-author-supplied callback must not be able to bring down the
// whole parse).
type customParser struct {
	base
	fn CustomFunc
}

// Custom returns a parser whose match logic is entirely supplied by fn.
func Custom(fn CustomFunc) Parser {
	c := &customParser{base: newBase(":Custom"), fn: fn}
	c.self = c
	c.nonMemo = true
	return c
}

func (c *customParser) parseImpl(loc cst.Position) (node *cst.Node, newLoc cst.Position, perr *ParserError) {
	newLoc = loc
	defer func() {
		if r := recover(); r != nil {
			zombie := cst.NewBranch(cst.ZombieTag, nil)
			c.g.addError(zombie, cst.Error{
				Message:  fmt.Sprintf("custom parser %s panicked: %v", c.NodeName(), r),
				Position: loc,
				Code:     cst.CustomParserFailure,
			})
			node, newLoc, perr = zombie, loc, nil
		}
	}()

	view := c.g.view.At(loc)
	n, ok := c.fn(view.Text())
	if !ok {
		return nil, loc, nil
	}
	matched := view.Prefix(n)
	if c.dropContent {
		return cst.EmptyNode, loc + cst.Position(n), nil
	}
	return cst.NewLeaf(c.NodeName(), matched), loc + cst.Position(n), nil
}
