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

// optionParser matches its sub-parser zero or one times, never failing
// (spec §4.4 Option).
type optionParser struct{ base }

// Option returns a parser that tries p once; on failure it still succeeds,
// matching nothing.
func Option(p Parser) Parser {
	o := &optionParser{base: newBase(":Option", p)}
	o.self = o
	return o
}

func (o *optionParser) parseImpl(loc cst.Position) (*cst.Node, cst.Position, *ParserError) {
	node, newLoc, perr := o.sub[0].ParseEntry(loc)
	if perr != nil {
		return nil, loc, perr
	}
	if node == nil {
		return cst.EmptyNode, loc, nil
	}
	branch := cst.NewBranch(o.NodeName(), []*cst.Node{node})
	return reduceTree(o, branch), newLoc, nil
}

// repetitionParser implements ZeroOrMore/OneOrMore/Counted as one type
// parameterized by (min, max) repetitions (spec §4.4).
type repetitionParser struct {
	base
	min, max int // max == Infinite means unbounded
}

// ZeroOrMore returns a parser matching p zero or more times, greedily.
func ZeroOrMore(p Parser) Parser { return newRepetition(p, 0, Infinite, ":ZeroOrMore") }

// OneOrMore returns a parser matching p one or more times, greedily.
func OneOrMore(p Parser) Parser { return newRepetition(p, 1, Infinite, ":OneOrMore") }

// Counted returns a parser matching p at least min and at most max times
// (max == Infinite for no upper bound), per spec §4.4 Counted.
func Counted(p Parser, min, max int) Parser { return newRepetition(p, min, max, ":Counted") }

func newRepetition(p Parser, min, max int, tag string) Parser {
	r := &repetitionParser{base: newBase(tag, p), min: min, max: max}
	r.self = r
	return r
}

func (r *repetitionParser) parseImpl(loc cst.Position) (*cst.Node, cst.Position, *ParserError) {
	var children []*cst.Node
	cur := loc
	count := 0
	for r.max == Infinite || count < r.max {
		node, newLoc, perr := r.sub[0].ParseEntry(cur)
		if perr != nil {
			return nil, loc, perr
		}
		if node == nil {
			break
		}
		if node != cst.EmptyNode {
			children = append(children, node)
		}
		count++
		if newLoc <= cur {
			// A zero-length match that consumed no text would repeat forever.
			r.g.infiniteLoopWarning(r.self, cur)
			break
		}
		cur = newLoc
	}
	if count < r.min {
		return nil, loc, nil
	}
	if len(children) == 0 {
		return cst.EmptyNode, cur, nil
	}
	branch := cst.NewBranch(r.NodeName(), children)
	return reduceTree(r, branch), cur, nil
}

// infiniteLoopWarning records the runtime diagnostic for a repeating parser
// whose body matched without consuming anything (spec §3.5 ZeroOrMore
// "breaks infinite loop with warning"). No warning at the end of the input,
// where an empty match is the expected way out of the loop.
func (g *Grammar) infiniteLoopWarning(p Parser, loc cst.Position) {
	if int(loc) >= len(g.doc) {
		return
	}
	g.addError(g.rootNode.AsNode(), cst.Error{
		Message: "repeating parser " + p.NodeName() +
			" did not make any progress; was its inner parser really intended to match empty text?",
		Position: loc,
		Code:     cst.InfiniteLoopWarning,
	})
}

// seriesParser matches its sub-parsers in order, with an optional mandatory
// index: a failure of sub-parsers[mandatory:] raises a ParserError instead
// of a plain non-match (spec §4.4 Series, §4.6).
type seriesParser struct {
	base
	mandatory int
}

// Series returns a parser matching every element of parsers in order.
// mandatory is the index of the first element whose failure should be
// treated as a recoverable error rather than an ordinary non-match; pass
// NoMandatory to disable mandatory-element handling entirely.
func Series(mandatory int, parsers ...Parser) Parser {
	s := &seriesParser{base: newBase(":Series", parsers...), mandatory: mandatory}
	s.self = s
	return s
}

func (s *seriesParser) parseImpl(loc cst.Position) (*cst.Node, cst.Position, *ParserError) {
	var children []*cst.Node
	cur := loc
	for i := 0; i < len(s.sub); i++ {
		node, newLoc, perr := s.sub[i].ParseEntry(cur)
		if perr != nil {
			return nil, loc, perr
		}
		if node == nil {
			if s.mandatory == NoMandatory || i < s.mandatory {
				return nil, loc, nil
			}
			// Mandatory violation (spec §4.6 steps 1–4): record the error,
			// then try this Series' own skip rules. On a reentry point, the
			// failed element is retried once right after the gap; if it
			// still fails, the gap node itself stands in for it.
			verr, reloc, gap := s.g.mandatoryViolation(s.self, cur, expectedName(s.sub[i]))
			if reloc < 0 {
				// The raised error's catcher appends its own gap node to the
				// partial (recoverFromError), so the empty placeholder gap is
				// not carried along.
				partial := cst.NewBranch(s.NodeName(), children)
				return nil, loc, s.g.raiseMandatory(verr, partial, loc)
			}
			cur += cst.Position(reloc)
			children = append(children, gap)
			retried, retriedLoc, perr2 := s.sub[i].ParseEntry(cur)
			if perr2 != nil {
				return nil, loc, perr2
			}
			if retried != nil {
				if retried != cst.EmptyNode {
					children = append(children, retried)
				}
				cur = retriedLoc
			}
			continue
		}
		if node != cst.EmptyNode {
			children = append(children, node)
		}
		cur = newLoc
	}
	if len(children) == 0 {
		return cst.EmptyNode, cur, nil
	}
	branch := cst.NewBranch(s.NodeName(), children)
	return reduceTree(s, branch), cur, nil
}

// expectedName renders the element a mandatory violation was waiting for.
// Text literals read better quoted than as their anonymous type tag.
func expectedName(p Parser) string {
	if t, ok := p.(*textParser); ok && p.Name() == "" {
		return "»" + t.literal + "«"
	}
	return p.NodeName()
}

// alternativeParser matches the first of its sub-parsers to succeed (spec
// §4.4 Alternative). A child's ParserError propagates immediately without
// trying any further alternative, since a mandatory violation inside one
// branch is not an ordinary non-match the next branch could paper over.
type alternativeParser struct{ base }

// Alternative returns a parser trying each of parsers in order, succeeding
// with the first match.
func Alternative(parsers ...Parser) Parser {
	a := &alternativeParser{base: newBase(":Alternative", parsers...)}
	a.self = a
	return a
}

func (a *alternativeParser) parseImpl(loc cst.Position) (*cst.Node, cst.Position, *ParserError) {
	for _, sub := range a.sub {
		node, newLoc, perr := sub.ParseEntry(loc)
		if perr != nil {
			return nil, loc, perr
		}
		if node != nil {
			if node == cst.EmptyNode {
				return cst.EmptyNode, newLoc, nil
			}
			branch := cst.NewBranch(a.NodeName(), []*cst.Node{node})
			return reduceTree(a, branch), newLoc, nil
		}
	}
	return nil, loc, nil
}

// interleaveEntry pairs a sub-parser with its repetition bounds for
// Interleave (spec §4.4: "any order, each within its own min/max count").
type interleaveEntry struct {
	p        Parser
	min, max int // max == Infinite for unbounded
}

// interleaveParser matches its sub-parsers in any order, each the number of
// times its own bounds allow, until no sub-parser can match. mandatory is
// an index, exactly as for Series: entries before it may be left unmet (a
// plain non-match results); an unmet entry at or past it is a recoverable
// mandatory violation.
type interleaveParser struct {
	base
	entries   []interleaveEntry
	mandatory int
}

// Interleave returns a parser matching entries in any order, round-robin,
// respecting each entry's own repetition bounds (spec §4.4 Interleave).
// mandatory is the index from which on an unmet minimum raises a
// recoverable error instead of an ordinary non-match, once every entry
// before that index has met its own minimum; pass NoMandatory to disable.
func Interleave(mandatory int, entries ...interleaveEntry) Parser {
	subs := make([]Parser, len(entries))
	for i, e := range entries {
		subs[i] = e.p
	}
	ip := &interleaveParser{base: newBase(":Interleave", subs...), entries: entries, mandatory: mandatory}
	ip.self = ip
	return ip
}

// InterleaveEntry builds one Interleave operand.
func InterleaveEntry(p Parser, min, max int) interleaveEntry {
	return interleaveEntry{p: p, min: min, max: max}
}

func (ip *interleaveParser) parseImpl(loc cst.Position) (*cst.Node, cst.Position, *ParserError) {
	counts := make([]int, len(ip.entries))
	var children []*cst.Node
	cur := loc

	for {
		progressed := false
		stuck := false
		for i, e := range ip.entries {
			if e.max != Infinite && counts[i] >= e.max {
				continue
			}
			node, newLoc, perr := e.p.ParseEntry(cur)
			if perr != nil {
				return nil, loc, perr
			}
			if node == nil {
				continue
			}
			if node != cst.EmptyNode {
				children = append(children, node)
			}
			counts[i]++
			progressed = true
			if newLoc <= cur {
				// A zero-advance match would repeat forever; give up on the
				// round-robin with whatever has been collected so far.
				ip.g.infiniteLoopWarning(ip.self, cur)
				stuck = true
			}
			cur = newLoc
			break
		}
		if stuck {
			break
		}
		if progressed {
			continue
		}

		// Stalled: decide between success, plain non-match, and a mandatory
		// violation, per the entry indices relative to the mandatory index.
		firstUnmet := -1
		for i, e := range ip.entries {
			if counts[i] >= e.min {
				continue
			}
			if ip.mandatory == NoMandatory || i < ip.mandatory {
				return nil, loc, nil
			}
			if firstUnmet < 0 {
				firstUnmet = i
			}
		}
		if firstUnmet < 0 {
			break
		}

		verr, reloc, gap := ip.g.mandatoryViolation(ip.self, cur, ip.expectedNames(counts))
		if reloc <= 0 {
			// reloc == 0 cannot make progress here: unlike Series, there is
			// no single designated "failed element" to retry in place, so a
			// zero-width reentry would stall the loop forever. The catcher
			// appends its own gap node, so the empty placeholder is dropped.
			partial := cst.NewBranch(ip.NodeName(), children)
			return nil, loc, ip.g.raiseMandatory(verr, partial, loc)
		}
		children = append(children, gap)
		cur += cst.Position(reloc)
	}

	if len(children) == 0 {
		return cst.EmptyNode, cur, nil
	}
	branch := cst.NewBranch(ip.NodeName(), children)
	return reduceTree(ip, branch), cur, nil
}

// expectedNames lists the still-unmet entries for a violation diagnostic.
func (ip *interleaveParser) expectedNames(counts []int) string {
	var names []string
	for i, e := range ip.entries {
		if counts[i] < e.min {
			names = append(names, expectedName(e.p))
		}
	}
	return strings.Join(names, " ° ")
}
