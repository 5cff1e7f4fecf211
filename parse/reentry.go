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
	"github.com/google/dhparse/source"
)

// ReentryRule is one rule in a symbol's skip-list or resume-list (spec
// §4.7): a literal prefix, a compiled regex, a callable, or a sub-parser.
type ReentryRule interface{ isReentryRule() }

// LiteralRule searches for the next occurrence of this exact string.
type LiteralRule string

func (LiteralRule) isReentryRule() {}

// RegexRule searches for the first match of Re.
type RegexRule struct{ Re *regexp.Regexp }

func (RegexRule) isReentryRule() {}

// FuncRule is a caller-supplied search function: given the remaining text
// and a [start, end) window, it returns the relative offset and length of
// a candidate match.
type FuncRule func(text string, start, end int) (offset, length int, ok bool)

func (FuncRule) isReentryRule() {}

// ParserRule invokes a sub-parser at each candidate offset; the reentry
// point is the end of the first successful match.
type ParserRule struct{ P Parser }

func (ParserRule) isReentryRule() {}

// reentryCandidate is one match found while scanning a single rule.
type reentryCandidate struct {
	offset int
	length int
}

// end returns the offset just past the candidate's matched text — the
// actual reentry point: parsing resumes AFTER whatever the rule matched,
// so the matched text itself belongs to the skipped gap.
func (c reentryCandidate) end() int { return c.offset + c.length }

// reentryPoint implements spec §4.7: find the closest reentry offset
// (relative to view) at which parsing can resume, skipping over any rule
// match whose interval touches a comment. symbol names the synthetic gap
// node. History recording is suspended for the duration of the search, so
// probe parses inside ParserRules do not pollute the trace. Returns
// (-1, empty node) if no rule in rules produced a candidate.
func reentryPoint(g *Grammar, view source.View, rules []ReentryRule, symbol string) (int, *cst.Node) {
	text := view.Text()
	window := g.Config.ReentrySearchWindow
	if window <= 0 || window > len(text) {
		window = len(text)
	}
	comments := g.findComments(text[:window])

	saveHistory := g.suppressHistory
	g.suppressHistory = true
	defer func() { g.suppressHistory = saveHistory }()

	best := -1
	for _, rule := range rules {
		cand, ok := firstMatchOutsideComments(g, view, rule, text, window, comments)
		if !ok {
			continue
		}
		if best < 0 || cand.end() < best {
			best = cand.end()
		}
	}

	if best < 0 {
		node := cst.NewBranch(cst.ZombieTag, nil)
		return -1, node
	}
	gap := cst.NewLeaf(cst.ZombieTag, text[:best])
	gap.SetAttr("symbol", symbol)
	return best, gap
}

// firstMatchOutsideComments walks a single rule's candidates forward,
// restarting the search just past any comment whose interior the candidate
// starts or ends in (spec §4.7 "reject any candidate whose match interval
// intersects a comment").
func firstMatchOutsideComments(g *Grammar, view source.View, rule ReentryRule, text string, window int, comments []reentryCandidate) (reentryCandidate, bool) {
	start := 0
	for start <= window {
		cand, ok := ruleMatch(g, view, rule, text, start, window)
		if !ok || cand.offset < start {
			return reentryCandidate{}, false
		}
		if c, inside := enclosingComment(cand, comments); inside {
			start = c.end()
			continue
		}
		return cand, true
	}
	return reentryCandidate{}, false
}

func ruleMatch(g *Grammar, view source.View, rule ReentryRule, text string, start, window int) (reentryCandidate, bool) {
	switch r := rule.(type) {
	case LiteralRule:
		idx := strings.Index(text[start:window], string(r))
		if idx < 0 {
			return reentryCandidate{}, false
		}
		return reentryCandidate{offset: start + idx, length: len(r)}, true
	case RegexRule:
		loc := r.Re.FindStringIndex(text[start:window])
		if loc == nil {
			return reentryCandidate{}, false
		}
		return reentryCandidate{offset: start + loc[0], length: loc[1] - loc[0]}, true
	case FuncRule:
		off, length, ok := r(text, start, window)
		if !ok {
			return reentryCandidate{}, false
		}
		return reentryCandidate{offset: off, length: length}, true
	case ParserRule:
		for i := start; i <= window; i++ {
			node, newLoc, perr := r.P.ParseEntry(view.Base() + cst.Position(i))
			if perr != nil {
				g.addError(g.rootNode.AsNode(), cst.Error{
					Message:  "error while searching reentry point with parser " + r.P.NodeName() + ": " + perr.Err.Message,
					Position: view.Base() + cst.Position(i),
					Code:     cst.ErrorWhileRecoveringFromError,
				})
				return reentryCandidate{}, false
			}
			if node != nil {
				return reentryCandidate{offset: i, length: int(newLoc) - (int(view.Base()) + i)}, true
			}
		}
		return reentryCandidate{}, false
	default:
		return reentryCandidate{}, false
	}
}

// enclosingComment reports whether cand's start or end falls strictly
// inside a comment, returning that comment.
func enclosingComment(cand reentryCandidate, comments []reentryCandidate) (reentryCandidate, bool) {
	for _, c := range comments {
		if (c.offset < cand.offset && cand.offset < c.end()) ||
			(c.offset < cand.end() && cand.end() < c.end()) {
			return c, true
		}
	}
	return reentryCandidate{}, false
}

// findComments scans text (bounded to the search window) for every match of
// the grammar's comment regex, per §4.7 "comments found by the comment
// regex iterator in lockstep".
func (g *Grammar) findComments(text string) []reentryCandidate {
	re := g.Config.Comment
	if re == nil {
		return nil
	}
	var out []reentryCandidate
	offset := 0
	for offset <= len(text) {
		loc := re.FindStringIndex(text[offset:])
		if loc == nil {
			break
		}
		out = append(out, reentryCandidate{offset: offset + loc[0], length: loc[1] - loc[0]})
		next := offset + loc[1]
		if next <= offset {
			next = offset + 1
		}
		offset = next
	}
	return out
}
