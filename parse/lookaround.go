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
	"strings"

	"github.com/google/dhparse/cst"
)

// lookaroundParser implements the four lookaround variants (spec §4.4):
// ahead/behind selects which direction the sub-parser is tried in, negate
// inverts the success test. A lookaround never consumes input — on success
// it returns EMPTY_NODE at the unchanged location — and a negative
// lookaround's farthest-fail contribution is suppressed, since a farther
// position found by a sub-parser that was SUPPOSED to fail is not useful
// diagnostic information (spec §4.4 "negative lookaheads invert the
// farthest-fail").
type lookaroundParser struct {
	base
	behind bool
	negate bool
}

// Lookahead returns a parser that succeeds (consuming nothing) iff p
// matches at the current location.
func Lookahead(p Parser) Parser { return newLookaround(p, false, false, ":Lookahead") }

// NegativeLookahead returns a parser that succeeds (consuming nothing) iff
// p does NOT match at the current location.
func NegativeLookahead(p Parser) Parser { return newLookaround(p, false, true, ":NegativeLookahead") }

// Lookbehind returns a parser that succeeds iff p matches ending exactly at
// the current location, when read backwards. p must itself be built to
// match against reversed text (spec §4.4 Lookbehind).
func Lookbehind(p Parser) Parser { return newLookaround(p, true, false, ":Lookbehind") }

// NegativeLookbehind returns a parser that succeeds iff p does NOT match
// ending at the current location read backwards.
func NegativeLookbehind(p Parser) Parser { return newLookaround(p, true, true, ":NegativeLookbehind") }

func newLookaround(p Parser, behind, negate bool, tag string) Parser {
	l := &lookaroundParser{base: newBase(tag, p), behind: behind, negate: negate}
	l.self = l
	l.nonMemo = true
	return l
}

func (l *lookaroundParser) parseImpl(loc cst.Position) (*cst.Node, cst.Position, *ParserError) {
	if l.behind {
		// Lookbehind/NegativeLookbehind match against the text to the left
		// of loc, read backwards (spec §4.4), so the sub-parser cannot be
		// run through the grammar's own forward-oriented view via
		// ParseEntry: there is no document location a reversed scan could
		// be re-entered at. Instead the sub-parser's own pattern (built by
		// the grammar author to match already-reversed text, per this
		// variant's doc comment) is matched directly against
		// View.Reversed() — the same "assert the wrapped parser is a
		// RegExp and match its pattern against grammar.reversed__" shape
		// the original implementation uses.
		matched := l.matchBehind(loc)
		if matched == l.negate {
			return nil, loc, nil
		}
		return cst.EmptyNode, loc, nil
	}

	var savedFFPos cst.Position
	var savedFFParser Parser
	var savedFFInLookahead bool
	if l.negate {
		// A NegativeLookahead is expected to have its sub-parser fail; that
		// expected failure (and any deeper failures the sub-parser's own
		// sub-parsers hit while probing) is not a real parse failure and
		// must not overwrite the genuine farthest-fail position (spec §4.4
		// "negative lookaheads invert the farthest-fail to avoid
		// contaminating diagnostics").
		savedFFPos, savedFFParser, savedFFInLookahead = l.g.ffPos, l.g.ffParser, l.g.ffInLookahead
	}

	node, probeEnd, perr := l.sub[0].ParseEntry(loc)
	if perr != nil {
		return nil, loc, perr
	}

	if l.negate {
		l.g.ffPos, l.g.ffParser, l.g.ffInLookahead = savedFFPos, savedFFParser, savedFFInLookahead
	} else if node != nil && int(probeEnd) >= len(l.g.doc) {
		// The probe reached the end of the document; if the parse later
		// stops right here, it "matched with lookahead" rather than failed
		// (spec §4.9 step 3's PARSER_LOOKAHEAD_MATCH_ONLY).
		l.g.lookaheadMatchAt = loc
	}

	matched := node != nil
	if matched == l.negate {
		return nil, loc, nil
	}
	return cst.EmptyNode, loc, nil
}

// matchBehind reports whether l's sub-parser's pattern matches the reversed
// text to the left of loc. Only RegExp and Text sub-parsers (optionally
// wrapped in a Synonym) are supported, mirroring the original
// implementation's own restriction to RegExp-shaped Lookbehind operands.
func (l *lookaroundParser) matchBehind(loc cst.Position) bool {
	reversed := l.g.view.At(loc).Reversed()
	switch t := unwrapSynonym(l.sub[0]).(type) {
	case *regexpParser:
		return t.compiled().MatchString(reversed)
	case *textParser:
		return strings.HasPrefix(reversed, t.literal)
	default:
		return false
	}
}

// unwrapSynonym follows a chain of Synonym wrappers down to the underlying
// matcher, the way the original implementation's Lookbehind constructor
// does before asserting the wrapped parser is a RegExp.
func unwrapSynonym(p Parser) Parser {
	for {
		s, ok := p.(*synonymParser)
		if !ok {
			return p
		}
		p = s.sub[0]
	}
}
