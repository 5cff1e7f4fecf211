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
	"regexp"
	"strings"

	"github.com/google/dhparse/cst"
)

// ErrorTemplate is one entry of a symbol's custom error-message table (spec
// §4.6 step 3): when a mandatory violation occurs inside the symbol and
// Match accepts the remaining text at the failure location (a nil Match
// accepts unconditionally), Template replaces the default diagnostic.
// Within Template, "{0}" stands for the expected element and "{1}" for the
// text actually found.
type ErrorTemplate struct {
	Match    *regexp.Regexp
	Template string
}

// placeholderRx recognizes format placeholders left over after "{0}"/"{1}"
// substitution; any remainder means the template referenced an argument
// that does not exist.
var placeholderRx = regexp.MustCompile(`\{[^{}]*\}`)

// mandatoryViolation is the single bookkeeping point for a Series or
// Interleave that failed at or past its mandatory index (spec §4.6 steps
// 1–4). It always records exactly one MANDATORY_CONTINUATION-class error on
// the RootNode — whether or not recovery succeeds afterwards — and then
// runs the symbol's skip rules over the tail of the input.
//
// Returns the recorded error, the reentry offset relative to failLoc (−1 if
// the skip-list found nothing), and the ZOMBIE gap node covering the text
// up to the reentry point.
func (g *Grammar) mandatoryViolation(self Parser, failLoc cst.Position, expected string) (cst.Error, int, *cst.Node) {
	symbol := self.NodeName()
	atEOF := int(failLoc) >= len(g.doc)
	found := foundText(g.doc, failLoc)

	reloc, gap := -1, cst.NewBranch(cst.ZombieTag, nil)
	if rules := g.Config.SkipRules[symbol]; len(rules) > 0 {
		reloc, gap = reentryPoint(g, g.view.At(failLoc), rules, symbol+"_skip")
	}

	msg := g.violationMessage(symbol, expected, found, failLoc)

	code := cst.MandatoryContinuation
	if atEOF {
		if g.startParser == g.root {
			code = cst.MandatoryContinuationAtEOF
		} else {
			code = cst.MandatoryContinuationAtEOFNonRoot
		}
	}
	length := 1
	if int(g.ffPos)-int(failLoc) > 1 {
		length = int(g.ffPos) - int(failLoc)
	}
	err := cst.Error{Message: msg, Position: failLoc, Code: code, Length: length}
	g.addError(gap, err)

	if reloc >= 0 && g.Config.ResumeNotices {
		g.addError(gap, cst.Error{
			Message:  fmt.Sprintf("Skipping %d characters to resume parsing of %s", reloc, symbol),
			Position: failLoc,
			Code:     cst.ResumeNotice,
		})
		g.log.Infof("parse: skipping %d characters after mandatory violation in %s", reloc, symbol)
	}
	return err, reloc, gap
}

// violationMessage renders the diagnostic text for a mandatory violation:
// the first matching template from the symbol's error-message table, or the
// default "<expected> expected by <symbol>, but <found> found" wording. A
// template with unresolvable placeholders is itself reported as a
// MALFORMED_ERROR_STRING diagnostic, and the default message is used.
func (g *Grammar) violationMessage(symbol, expected, found string, failLoc cst.Position) string {
	tail := g.doc[failLoc:]
	for _, tpl := range g.Config.ErrorMessages[symbol] {
		if tpl.Match != nil {
			loc := tpl.Match.FindStringIndex(tail)
			if loc == nil || loc[0] != 0 {
				continue
			}
		}
		msg := strings.ReplaceAll(tpl.Template, "{0}", expected)
		msg = strings.ReplaceAll(msg, "{1}", found)
		if left := placeholderRx.FindString(msg); left != "" {
			g.addError(g.rootNode.AsNode(), cst.Error{
				Message:  fmt.Sprintf("malformed error format string %q: unresolved placeholder %q", tpl.Template, left),
				Position: failLoc,
				Code:     cst.MalformedErrorString,
			})
			break
		}
		return msg
	}
	return fmt.Sprintf("%s expected by %s, but %s found", expected, symbol, found)
}

// foundText quotes the next few characters after loc for a diagnostic, or
// names the end of the input.
func foundText(doc string, loc cst.Position) string {
	if int(loc) >= len(doc) {
		return "end of input"
	}
	tail := doc[loc:]
	if len(tail) > 10 {
		tail = tail[:10] + "..."
	}
	return "»" + strings.ReplaceAll(tail, "\n", `\n`) + "«"
}

// raiseMandatory packages an already-recorded violation into the ParserError
// channel (spec §4.6 step 5). partial is the raising parser's in-progress
// node; origin is where it began matching. The call stack is snapshotted
// only on the original throw, and only when tracing is on.
func (g *Grammar) raiseMandatory(err cst.Error, partial *cst.Node, origin cst.Position) *ParserError {
	if partial == nil {
		partial = cst.NewBranch(cst.ZombieTag, nil)
	}
	pe := &ParserError{Err: err, Partial: partial, Origin: origin, FirstThrow: true}
	if g.Config.History {
		pe.Stack = g.snapshotStack()
	}
	return pe
}

// recoverFromError implements spec §4.6 step 5, generically, for every
// parser's ParseEntry: the parser whose own parseImpl returned perr (the
// originating Series/Interleave on the first pass, or any enclosing parser
// on a later pass) gets one attempt to resolve it using ITS OWN resume-rule
// table, keyed by its own NodeName. The violation itself was already
// recorded on the RootNode when it was raised, so no error is re-added
// here; recovery only decides what tree fragment stands in for the gap. The
// start parser of the current parse always resolves (the root materializes
// an unresolved error rather than ever propagating it out of Parse).
func (g *Grammar) recoverFromError(self Parser, callLoc cst.Position, perr *ParserError) (*cst.Node, cst.Position, *ParserError) {
	symbol := self.NodeName()
	rules := g.Config.ResumeRules[symbol]
	failLoc := perr.Err.Position

	reloc := -1
	if len(rules) > 0 {
		view := g.view.At(failLoc)
		reloc, _ = reentryPoint(g, view, rules, symbol+"_resume")
	}
	isStart := self == g.startParser

	if reloc >= 0 {
		skipText := g.textBetween(failLoc, failLoc+cst.Position(reloc))
		skip := cst.NewLeaf(cst.ZombieTag, skipText)
		resumeLoc := failLoc + cst.Position(reloc)
		if g.Config.ResumeNotices {
			g.addError(skip, cst.Error{
				Message:  fmt.Sprintf("Resuming parsing of %s at offset %d", symbol, resumeLoc),
				Position: failLoc,
				Code:     cst.ResumeNotice,
			})
			g.log.Infof("parse: resuming %s at offset %d after mandatory violation", symbol, resumeLoc)
		}

		var result *cst.Node
		if perr.FirstThrow {
			result = perr.Partial
			if skipText != "" {
				result = appendChild(result, skip)
			}
		} else {
			children := make([]*cst.Node, 0, 3)
			if before := g.textBetween(callLoc, perr.Origin); before != "" {
				children = append(children, cst.NewLeaf(cst.ZombieTag, before))
			}
			children = append(children, perr.Partial)
			if skipText != "" {
				children = append(children, skip)
			}
			result = cst.NewBranch(self.NodeName(), children)
		}
		result.SetPos(callLoc)
		return result, resumeLoc, nil
	}

	if perr.FirstThrow && !isStart {
		return nil, callLoc, &ParserError{Err: perr.Err, Partial: perr.Partial, Origin: perr.Origin, FirstThrow: false}
	}

	// A violation at the end of the input can never be resumed past, and
	// the start parser has nowhere left to propagate to; either way, build
	// as faithful a tree as possible instead of unwinding any further.
	atEOF := perr.Err.Code == cst.MandatoryContinuationAtEOF ||
		perr.Err.Code == cst.MandatoryContinuationAtEOFNonRoot
	if atEOF || isStart {
		result := perr.Partial
		if !perr.FirstThrow {
			result = cst.NewBranch(self.NodeName(), []*cst.Node{perr.Partial})
		}
		result.SetPos(callLoc)
		return result, failLoc, nil
	}

	// Already re-thrown once with no recovery found at this level either:
	// fold this level's gap into the carried partial and keep propagating.
	children := make([]*cst.Node, 0, 2)
	if before := g.textBetween(callLoc, perr.Origin); before != "" {
		children = append(children, cst.NewLeaf(cst.ZombieTag, before))
	}
	children = append(children, perr.Partial)
	wrapped := cst.NewBranch(self.NodeName(), children)
	wrapped.SetPos(callLoc)
	return nil, callLoc, &ParserError{Err: perr.Err, Partial: wrapped, Origin: callLoc, FirstThrow: false}
}

func (g *Grammar) textBetween(from, to cst.Position) string {
	if to <= from || int(to) > len(g.doc) {
		return ""
	}
	return g.doc[from:to]
}

// appendChild returns a branch containing parent's existing children plus
// extra, preserving parent's name. parent is always a branch here: it is
// either the ZOMBIE_TAG placeholder built when a Series matched nothing
// before failing, or the in-progress Series/Interleave node.
func appendChild(parent *cst.Node, extra *cst.Node) *cst.Node {
	if parent == nil {
		return cst.NewBranch(cst.ZombieTag, []*cst.Node{extra})
	}
	return cst.NewBranch(parent.Name(), append(append([]*cst.Node{}, parent.Children()...), extra))
}
