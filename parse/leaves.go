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
	"regexp"
	"strings"

	"github.com/google/dhparse/cst"
)

// Leaf parsers are O(1) amortized and never benefit from memoization
// (spec §4.3 "Leaf parsers may short-circuit memoization"), so every
// constructor in this file sets nonMemo.

// alwaysParser matches empty text, never fails (spec §3.5 Always).
type alwaysParser struct{ base }

// Always returns a parser that matches the empty string unconditionally.
func Always() Parser {
	p := &alwaysParser{base: newBase(":Always")}
	p.self, p.nonMemo = p, true
	return p
}

func (p *alwaysParser) parseImpl(loc cst.Position) (*cst.Node, cst.Position, *ParserError) {
	return leafResult(p, ""), loc, nil
}

// neverParser never matches (spec §3.5 Never).
type neverParser struct{ base }

// Never returns a parser that always fails.
func Never() Parser {
	p := &neverParser{base: newBase(":Never")}
	p.self, p.nonMemo = p, true
	return p
}

func (p *neverParser) parseImpl(loc cst.Position) (*cst.Node, cst.Position, *ParserError) {
	return nil, loc, nil
}

// anyCharParser consumes exactly one character, failing at EOF.
type anyCharParser struct{ base }

// AnyChar returns a parser that matches any single character.
func AnyChar() Parser {
	p := &anyCharParser{base: newBase(":AnyChar")}
	p.self, p.nonMemo = p, true
	return p
}

func (p *anyCharParser) parseImpl(loc cst.Position) (*cst.Node, cst.Position, *ParserError) {
	g := p.g
	view := g.view.At(loc)
	if view.IsEOF() {
		return nil, loc, nil
	}
	r := []rune(view.Text())[0]
	n := len(string(r))
	return leafResult(p, view.Prefix(n)), loc + cst.Position(n), nil
}

// textParser matches a literal string exactly (spec §3.5 Text).
type textParser struct {
	base
	literal string
}

// Text returns a parser matching the literal string s at the current
// location.
func Text(s string) Parser {
	p := &textParser{base: newBase(":Text"), literal: s}
	p.self, p.nonMemo = p, true
	return p
}

func (p *textParser) parseImpl(loc cst.Position) (*cst.Node, cst.Position, *ParserError) {
	view := p.g.view.At(loc)
	if !view.HasPrefix(p.literal) {
		return nil, loc, nil
	}
	return leafResult(p, p.literal), loc + cst.Position(len(p.literal)), nil
}

// ignoreCaseParser matches a literal string case-insensitively.
type ignoreCaseParser struct {
	base
	literal string
	lower   string
}

// IgnoreCase returns a parser matching s case-insensitively.
func IgnoreCase(s string) Parser {
	p := &ignoreCaseParser{base: newBase(":IgnoreCase"), literal: s, lower: strings.ToLower(s)}
	p.self, p.nonMemo = p, true
	return p
}

func (p *ignoreCaseParser) parseImpl(loc cst.Position) (*cst.Node, cst.Position, *ParserError) {
	view := p.g.view.At(loc)
	if len(view.Text()) < len(p.literal) {
		return nil, loc, nil
	}
	candidate := view.Prefix(len(p.literal))
	if strings.ToLower(candidate) != p.lower {
		return nil, loc, nil
	}
	return leafResult(p, candidate), loc + cst.Position(len(candidate)), nil
}

// regexpParser matches a regular expression anchored at the current
// location (spec §3.5 RegExp). The pattern is compiled lazily on first use
// (and cached) so a grammar with many unused branches does not pay
// compilation cost for rules it never exercises; in practice grammars here
// are built once at startup, so "lazily" only saves the first Parse call.
type regexpParser struct {
	base
	pattern string
	re      *regexp.Regexp
}

// RegExp returns a parser matching pattern (a Go regexp source, without
// the caller needing to anchor it — anchoring at the current offset is
// this parser's job, via source.View.Match).
func RegExp(pattern string) Parser {
	p := &regexpParser{base: newBase(":RegExp"), pattern: pattern}
	p.self, p.nonMemo = p, true
	return p
}

func (p *regexpParser) compiled() *regexp.Regexp {
	if p.re == nil {
		p.re = regexp.MustCompile(`\A(?:` + p.pattern + `)`)
	}
	return p.re
}

func (p *regexpParser) parseImpl(loc cst.Position) (*cst.Node, cst.Position, *ParserError) {
	view := p.g.view.At(loc)
	matched, ok := view.Match(p.compiled())
	if !ok {
		return nil, loc, nil
	}
	return leafResult(p, matched), loc + cst.Position(len(matched)), nil
}

// whitespaceParser is a RegExp that never fails (spec §3.5, §4.3
// Whitespace): a non-match yields EMPTY_NODE at the unchanged location
// rather than None. When dropContent and keepComments are both set,
// matched text that contains anything other than whitespace is treated as
// a comment and kept under the name "comment__" instead of being dropped.
type whitespaceParser struct {
	base
	pattern      string
	re           *regexp.Regexp
	keepComments bool
}

// Whitespace returns a parser matching pattern (typically an optional
// run of whitespace/comments) that always succeeds.
func Whitespace(pattern string) *whitespaceParser {
	p := &whitespaceParser{base: newBase(":Whitespace"), pattern: pattern}
	p.self, p.nonMemo = p, true
	return p
}

// Dropping makes matched whitespace contribute nothing to the tree — the
// usual setting for insignificant whitespace in EBNF-generated grammars.
func (p *whitespaceParser) Dropping() *whitespaceParser {
	p.dropContent = true
	return p
}

// KeepComments enables comment__ preservation when Dropping is set:
// matched text containing anything beyond whitespace is kept under the
// name "comment__" instead of being discarded with the spaces around it.
func (p *whitespaceParser) KeepComments() *whitespaceParser {
	p.keepComments = true
	return p
}

func (p *whitespaceParser) compiled() *regexp.Regexp {
	if p.re == nil {
		p.re = regexp.MustCompile(`\A(?:` + p.pattern + `)`)
	}
	return p.re
}

func (p *whitespaceParser) parseImpl(loc cst.Position) (*cst.Node, cst.Position, *ParserError) {
	view := p.g.view.At(loc)
	matched, _ := view.Match(p.compiled())
	newLoc := loc + cst.Position(len(matched))
	if matched == "" {
		return cst.EmptyNode, loc, nil
	}
	if p.dropContent {
		if p.keepComments && strings.TrimSpace(matched) != "" {
			return cst.NewLeaf("comment__", matched), newLoc, nil
		}
		return cst.EmptyNode, newLoc, nil
	}
	return cst.NewLeaf(p.NodeName(), matched), newLoc, nil
}

// smartREParser runs one regex with named/positional capture groups and
// produces a branch with one child leaf per group (spec §3.5, §4.3
// SmartRE), then subjects that branch to ordinary tree reduction.
type smartREParser struct {
	base
	pattern string
	re      *regexp.Regexp
}

// SmartRE returns a parser that matches pattern (which should contain one
// or more capture groups) and yields a child leaf per captured group,
// named after the group (Go named groups) or ":RegExp" for positional ones.
func SmartRE(pattern string) Parser {
	p := &smartREParser{base: newBase(":SmartRE"), pattern: pattern}
	p.self = p
	p.nonMemo = true
	return p
}

func (p *smartREParser) compiled() *regexp.Regexp {
	if p.re == nil {
		p.re = regexp.MustCompile(`\A(?:` + p.pattern + `)`)
	}
	return p.re
}

func (p *smartREParser) parseImpl(loc cst.Position) (*cst.Node, cst.Position, *ParserError) {
	re := p.compiled()
	view := p.g.view.At(loc)
	text := view.Text()
	idx := re.FindStringSubmatchIndex(text)
	if idx == nil || idx[0] != 0 {
		return nil, loc, nil
	}
	names := re.SubexpNames()
	var children []*cst.Node
	for i := 1; i < len(idx)/2; i++ {
		s, e := idx[2*i], idx[2*i+1]
		if s < 0 {
			continue
		}
		name := ":RegExp"
		if i < len(names) && names[i] != "" {
			name = names[i]
		}
		children = append(children, cst.NewLeaf(name, text[s:e]))
	}
	branch := cst.NewBranch(p.NodeName(), children)
	newLoc := loc + cst.Position(idx[1])
	return reduceTree(p, branch), newLoc, nil
}

// leafResult builds the result node for a matched leaf-matcher, honoring
// the EMPTY_NODE shortcut spec §4.3 describes for Text: drop-content
// matches, and disposable parsers matching empty text, both return the
// shared EMPTY_NODE rather than allocating.
func leafResult(p Parser, matched string) *cst.Node {
	if p.DropContent() {
		return cst.EmptyNode
	}
	if matched == "" && p.Disposable() {
		return cst.EmptyNode
	}
	return cst.NewLeaf(p.NodeName(), matched)
}
