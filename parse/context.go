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

import "github.com/google/dhparse/cst"

// captureParser runs its sub-parser and, on success, pushes the matched
// text onto a named variable stack, depositing a rollback entry so
// backtracking past this point undoes the push (spec §4.5 Capture).
type captureParser struct {
	base
	varName string
}

// Capture returns a parser that runs p and, on success, pushes p's matched
// text onto the named variable stack. name should match p's own name for
// the static-analysis check in spec §4.11 ("capture without parser name")
// to recognize it as well-formed.
func Capture(name string, p Parser) Parser {
	c := &captureParser{base: newBase(":Capture", p), varName: name}
	c.self = c
	c.ctxSensitive = true
	c.nonMemo = true
	return c
}

func (c *captureParser) parseImpl(loc cst.Position) (*cst.Node, cst.Position, *ParserError) {
	node, newLoc, perr := c.sub[0].ParseEntry(loc)
	if perr != nil {
		return nil, loc, perr
	}
	if node == nil {
		return nil, loc, nil
	}
	text := node.Content()
	consumed := newLoc != loc
	c.g.pushVariable(c.varName, text, loc, consumed)

	if c.dropContent {
		return cst.EmptyNode, newLoc, nil
	}
	branch := cst.NewBranch(c.NodeName(), []*cst.Node{node})
	return reduceTree(c, branch), newLoc, nil
}

// MatchFunc decides whether candidate, the text at the current location,
// satisfies a Retrieve against stored, the value on top of the named
// variable's stack (spec §4.5 Retrieve: "an arbitrary match function").
type MatchFunc func(stored, candidate string) (matchLen int, ok bool)

// LastValue is the default MatchFunc: candidate must start with stored
// verbatim.
func LastValue(stored, candidate string) (int, bool) {
	if len(candidate) < len(stored) || candidate[:len(stored)] != stored {
		return 0, false
	}
	return len(stored), true
}

// OptionalLastValue behaves like LastValue but also matches the empty
// string when stored is empty — used for delimiters that are
// allowed to have been omitted on their opening occurrence (spec §4.5
// "optional_last_value").
func OptionalLastValue(stored, candidate string) (int, bool) {
	if stored == "" {
		return 0, true
	}
	return LastValue(stored, candidate)
}

// bracketPairs maps an opening bracket to its closer, for MatchingBracket.
var bracketPairs = map[string]string{
	"(": ")", "[": "]", "{": "}", "<": ">",
}

// MatchingBracket is a MatchFunc for the common "retrieve the bracket that
// closes whatever was captured" idiom (spec §4.5 "matching_bracket"):
// stored is the opening bracket text captured earlier, and candidate must
// begin with its closing counterpart.
func MatchingBracket(stored, candidate string) (int, bool) {
	closer, ok := bracketPairs[stored]
	if !ok {
		return 0, false
	}
	if len(candidate) < len(closer) || candidate[:len(closer)] != closer {
		return 0, false
	}
	return len(closer), true
}

// retrieveParser reads (without consuming the variable stack) the named
// variable's top value and tries match against the text at the current
// location (spec §4.5 Retrieve).
type retrieveParser struct {
	base
	varName string
	match   MatchFunc
}

// Retrieve returns a parser that matches iff match accepts the text at the
// current location against the named variable's current top value. A nil
// match defaults to LastValue.
func Retrieve(name string, match MatchFunc) Parser {
	if match == nil {
		match = LastValue
	}
	r := &retrieveParser{base: newBase(":Retrieve"), varName: name, match: match}
	r.self = r
	r.ctxSensitive = true
	r.nonMemo = true
	return r
}

func (r *retrieveParser) parseImpl(loc cst.Position) (*cst.Node, cst.Position, *ParserError) {
	// A Retrieve deposits a no-op rollback whether or not it matches, so
	// that no enclosing parser memoizes a result that depends on the
	// variable state it read (spec §4.5 "in all cases deposit a no-op
	// rollback entry").
	r.g.depositNoopRollback(loc)
	stored, ok := r.g.topVariable(r.varName)
	if !ok {
		// spec §4.5: an empty stack triggers auto-capture before giving up.
		ok = r.g.autoCapture(r.varName, loc)
		if ok {
			stored, ok = r.g.topVariable(r.varName)
		}
	}
	if !ok {
		r.g.addError(cst.EmptyNode, cst.Error{
			Message:  "retrieve from undefined or empty variable stack: " + r.varName,
			Position: loc,
			Code:     cst.UndefinedRetrieve,
		})
		return nil, loc, nil
	}
	view := r.g.view.At(loc)
	n, matched := r.match(stored, view.Text())
	if !matched {
		return nil, loc, nil
	}
	matchedText := view.Prefix(n)
	newLoc := loc + cst.Position(n)
	if r.dropContent {
		return cst.EmptyNode, newLoc, nil
	}
	return cst.NewLeaf(symbolNodeName(&r.base, r.varName), matchedText), newLoc, nil
}

// symbolNodeName is the tag for a Retrieve/Pop result: the parser's own
// name if it was given one, else the retrieved symbol's name (spec §4.5
// "produce a leaf node of the symbol's name").
func symbolNodeName(b *base, varName string) string {
	if b.name != "" {
		return b.name
	}
	return varName
}

// popParser behaves like retrieveParser but additionally removes the
// matched entry from the variable stack on success (spec §4.5 Pop).
type popParser struct {
	base
	varName string
	match   MatchFunc
}

// Pop returns a parser like Retrieve, except a successful match also pops
// the named variable's stack.
func Pop(name string, match MatchFunc) Parser {
	if match == nil {
		match = LastValue
	}
	p := &popParser{base: newBase(":Pop"), varName: name, match: match}
	p.self = p
	p.ctxSensitive = true
	p.nonMemo = true
	return p
}

func (p *popParser) parseImpl(loc cst.Position) (*cst.Node, cst.Position, *ParserError) {
	p.g.depositNoopRollback(loc)
	stored, ok := p.g.topVariable(p.varName)
	if !ok {
		ok = p.g.autoCapture(p.varName, loc)
		if ok {
			stored, ok = p.g.topVariable(p.varName)
		}
	}
	if !ok {
		p.g.addError(cst.EmptyNode, cst.Error{
			Message:  "pop from undefined or empty variable stack: " + p.varName,
			Position: loc,
			Code:     cst.UndefinedRetrieve,
		})
		return nil, loc, nil
	}
	view := p.g.view.At(loc)
	n, matched := p.match(stored, view.Text())
	if !matched {
		return nil, loc, nil
	}
	p.g.popVariable(p.varName, loc)
	matchedText := view.Prefix(n)
	newLoc := loc + cst.Position(n)
	if p.dropContent {
		return cst.EmptyNode, newLoc, nil
	}
	return cst.NewLeaf(symbolNodeName(&p.base, p.varName), matchedText), newLoc, nil
}
