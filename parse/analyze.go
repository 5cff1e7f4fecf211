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

// Finding is one static-analysis diagnostic produced at Grammar
// construction (spec §4.11). Severity follows from Code via cst.ClassOf,
// the same classification parse-time Errors use, so a Finding can be
// carried into the RootNode's own Errors list uniformly (see
// Grammar.rootNodeFinding / findingToError in grammar.go).
type Finding struct {
	Parser  string
	Message string
	Code    cst.Code
}

// Severity reports the finding's severity class.
func (f Finding) Severity() cst.Severity { return cst.ClassOf(f.Code) }

// computeContextSensitivity propagates the IsContextSensitive flag (spec
// §4.8's closing sentence: "any parser that can reach a Capture, Retrieve,
// or Pop is itself context-sensitive") to a fixed point over the whole
// parser graph. Capture/Retrieve/Pop already set their own flag at
// construction (see context.go); this only needs to propagate it upward
// through SubParsers.
func computeContextSensitivity(parsers []Parser) {
	changed := true
	for changed {
		changed = false
		for _, p := range parsers {
			if p.IsContextSensitive() {
				continue
			}
			for _, sub := range p.SubParsers() {
				if sub != nil && sub.IsContextSensitive() {
					markContextSensitive(p)
					changed = true
					break
				}
			}
		}
	}
}

// contextSensitiveSetter is implemented by base, letting analyze.go flip
// the flag without every concrete parser type needing its own setter.
type contextSensitiveSetter interface {
	setContextSensitive()
}

func (b *base) setContextSensitive() { b.ctxSensitive = true }

func markContextSensitive(p Parser) {
	if s, ok := p.(contextSensitiveSetter); ok {
		s.setContextSensitive()
	}
}

// analyze runs every static check from spec §4.11 over g's parser graph,
// returning every Finding in no particular priority order; Grammar.New
// decides which ones are severe enough to fail construction outright.
func analyze(g *Grammar) []Finding {
	var findings []Finding
	findings = append(findings, checkNeverTouchesDocument(g)...)
	findings = append(findings, checkCaptureWithoutName(g)...)
	findings = append(findings, checkCaptureDropsContent(g)...)
	findings = append(findings, checkZeroLengthCapture(g)...)
	findings = append(findings, checkRedundantlyNestedOptional(g)...)
	findings = append(findings, checkBadlyNestedOptional(g)...)
	findings = append(findings, checkBadMandatorySetup(g)...)
	findings = append(findings, checkBadRepetitionCount(g)...)
	findings = append(findings, checkDuplicateAlternatives(g)...)
	findings = append(findings, checkBadOrderOfAlternatives(g)...)
	findings = append(findings, checkLookaheadWithOptional(g)...)
	return findings
}

// checkNeverTouchesDocument flags a named parser from which no leaf
// matcher is reachable at all — an entirely cyclic definition that can
// never consume (or even inspect) any document content — plus the
// degenerate Text("") literal (spec §4.11 "Parser never touches the
// document"). Reachability is computed as a fixed point over the graph, so
// cycles through Forward resolve correctly.
func checkNeverTouchesDocument(g *Grammar) []Finding {
	grounded := func(p Parser) bool {
		return len(p.SubParsers()) == 0 && !isForward(p)
	}
	touches := make(map[Parser]bool, len(g.parsers))
	for _, p := range g.parsers {
		touches[p] = grounded(p)
	}
	changed := true
	for changed {
		changed = false
		for _, p := range g.parsers {
			if touches[p] {
				continue
			}
			for _, sub := range p.SubParsers() {
				if sub != nil && touches[sub] {
					touches[p] = true
					changed = true
					break
				}
			}
		}
	}

	var out []Finding
	for _, p := range g.parsers {
		if t, ok := p.(*textParser); ok && t.literal == "" {
			out = append(out, Finding{
				Parser:  p.NodeName(),
				Message: fmt.Sprintf("%s: Text(\"\") never touches the document", p.NodeName()),
				Code:    cst.ParserNeverTouchesDocument,
			})
			continue
		}
		if p.Name() != "" && !touches[p] {
			out = append(out, Finding{
				Parser:  p.NodeName(),
				Message: fmt.Sprintf("%s: no leaf parser is reachable; this definition can never touch the document", p.NodeName()),
				Code:    cst.ParserNeverTouchesDocument,
			})
		}
	}
	return out
}

func isForward(p Parser) bool {
	_, ok := p.(*forwardParser)
	return ok
}

// checkCaptureWithoutName flags a Capture whose stored variable name does
// not match any named parser in the grammar, a common copy-paste mistake
// that silently breaks the corresponding Retrieve/Pop (spec §4.11 "Capture
// without matching parser name").
func checkCaptureWithoutName(g *Grammar) []Finding {
	named := make(map[string]bool)
	for _, p := range g.parsers {
		if p.Name() != "" {
			named[p.Name()] = true
		}
	}
	var out []Finding
	for _, p := range g.parsers {
		if c, ok := p.(*captureParser); ok && !named[c.varName] {
			out = append(out, Finding{
				Parser:  p.NodeName(),
				Message: fmt.Sprintf("Capture(%q, ...): no parser in the grammar is named %q", c.varName, c.varName),
				Code:    cst.CaptureWithoutParserName,
			})
		}
	}
	return out
}

// checkCaptureDropsContent flags a Capture wrapping a parser that drops its
// own content, which would always push the empty string (spec §4.11
// "Capture drops content").
func checkCaptureDropsContent(g *Grammar) []Finding {
	var out []Finding
	for _, p := range g.parsers {
		if c, ok := p.(*captureParser); ok {
			if len(c.sub) > 0 && c.sub[0].DropContent() {
				out = append(out, Finding{
					Parser:  p.NodeName(),
					Message: fmt.Sprintf("Capture(%q, ...): wrapped parser drops its own content", c.varName),
					Code:    cst.CaptureDropsContentWarning,
				})
			}
		}
	}
	return out
}

// checkZeroLengthCapture flags a Capture wrapping a parser that can match
// zero-length text (an Option, a ZeroOrMore, or Always), since the
// resulting captured value may be the empty string (spec §4.11
// "Zero-length capture possible").
func checkZeroLengthCapture(g *Grammar) []Finding {
	var out []Finding
	for _, p := range g.parsers {
		c, ok := p.(*captureParser)
		if !ok || len(c.sub) == 0 {
			continue
		}
		zeroLength := false
		switch s := c.sub[0].(type) {
		case *optionParser, *alwaysParser:
			zeroLength = true
		case *repetitionParser:
			zeroLength = s.min == 0
		}
		if zeroLength {
			out = append(out, Finding{
				Parser:  p.NodeName(),
				Message: fmt.Sprintf("Capture(%q, ...): wrapped parser can match zero-length text", c.varName),
				Code:    cst.ZeroLengthCaptureWarning,
			})
		}
	}
	return out
}

// checkRedundantlyNestedOptional flags Option(Option(x)) and
// ZeroOrMore(Option(x)) — the inner Option never changes the outer's
// behavior (spec §4.11 "Redundantly nested optional").
func checkRedundantlyNestedOptional(g *Grammar) []Finding {
	var out []Finding
	for _, p := range g.parsers {
		switch o := p.(type) {
		case *optionParser:
			if _, ok := o.sub[0].(*optionParser); ok {
				out = append(out, redundantOptionalFinding(p))
			}
		case *repetitionParser:
			if o.min == 0 {
				if _, ok := o.sub[0].(*optionParser); ok {
					out = append(out, redundantOptionalFinding(p))
				}
			}
		}
	}
	return out
}

func redundantOptionalFinding(p Parser) Finding {
	return Finding{
		Parser:  p.NodeName(),
		Message: fmt.Sprintf("%s: nested Option is redundant", p.NodeName()),
		Code:    cst.OptionalRedundantlyNestedWarning,
	}
}

// isOptionalParser reports whether p succeeds on any input without
// consuming anything — the property that makes it illegal inside a
// required repetition (the repetition could then loop forever on empty
// matches). The check is shallow: it looks at p's own shape, not at
// arbitrary compositions, matching what grammar authors actually write.
func isOptionalParser(p Parser) bool {
	switch t := p.(type) {
	case *optionParser, *alwaysParser, *whitespaceParser:
		return true
	case *repetitionParser:
		return t.min == 0
	case *interleaveParser:
		for _, e := range t.entries {
			if e.min > 0 {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// checkBadlyNestedOptional flags an optional parser nested where a match
// is required to make progress: inside a OneOrMore/Counted with a lower
// bound of at least one, or as an Interleave entry with a required minimum
// (spec §4.11 "Badly nested optional ... error"). An Option wrapping an
// already-optional repetition is merely redundant and gets a warning.
func checkBadlyNestedOptional(g *Grammar) []Finding {
	var out []Finding
	for _, p := range g.parsers {
		switch t := p.(type) {
		case *repetitionParser:
			if t.min >= 1 && isOptionalParser(t.sub[0]) {
				out = append(out, Finding{
					Parser:  p.NodeName(),
					Message: fmt.Sprintf("%s: required repetition wraps a parser that can match empty text", p.NodeName()),
					Code:    cst.BadlyNestedOptionalParser,
				})
			}
		case *interleaveParser:
			for _, e := range t.entries {
				if _, isFlow := e.p.(*lookaroundParser); (e.min >= 1 && isOptionalParser(e.p)) || isFlow {
					out = append(out, Finding{
						Parser:  p.NodeName(),
						Message: fmt.Sprintf("%s: optional and flow parsers are neither allowed nor needed in an interleave", p.NodeName()),
						Code:    cst.BadlyNestedOptionalParser,
					})
				}
			}
		case *optionParser:
			if r, ok := t.sub[0].(*repetitionParser); ok && r.min == 0 {
				out = append(out, Finding{
					Parser:  p.NodeName(),
					Message: fmt.Sprintf("%s: Option wrapping an already-optional repetition is redundant", p.NodeName()),
					Code:    cst.RedundantParserWarning,
				})
			}
		}
	}
	return out
}

// checkBadMandatorySetup flags a Series or Interleave whose mandatory index
// is out of range for its own sub-parser count (spec §4.11 "Bad mandatory
// setup").
func checkBadMandatorySetup(g *Grammar) []Finding {
	var out []Finding
	for _, p := range g.parsers {
		var mandatory, count int
		switch t := p.(type) {
		case *seriesParser:
			mandatory, count = t.mandatory, len(t.sub)
		case *interleaveParser:
			mandatory, count = t.mandatory, len(t.entries)
		default:
			continue
		}
		if count == 0 {
			out = append(out, Finding{
				Parser:  p.NodeName(),
				Message: fmt.Sprintf("%s: needs at least one sub-parser", p.NodeName()),
				Code:    cst.BadMandatorySetup,
			})
			continue
		}
		if mandatory != NoMandatory && (mandatory < 0 || mandatory >= count) {
			out = append(out, Finding{
				Parser:  p.NodeName(),
				Message: fmt.Sprintf("%s: mandatory index %d out of range for %d sub-parsers", p.NodeName(), mandatory, count),
				Code:    cst.BadMandatorySetup,
			})
		}
	}
	return out
}

// checkBadRepetitionCount flags a Counted/repetition whose max is less
// than its min, which can never match (spec §4.11 "Bad repetition count").
func checkBadRepetitionCount(g *Grammar) []Finding {
	var out []Finding
	for _, p := range g.parsers {
		switch t := p.(type) {
		case *repetitionParser:
			if t.min < 0 || (t.max != Infinite && t.max < t.min) {
				out = append(out, Finding{
					Parser:  p.NodeName(),
					Message: fmt.Sprintf("%s: repetition bounds (%d, %d) are unsatisfiable", p.NodeName(), t.min, t.max),
					Code:    cst.BadRepetitionCount,
				})
			}
		case *interleaveParser:
			for i, e := range t.entries {
				if e.min < 0 || (e.max != Infinite && e.max < e.min) {
					out = append(out, Finding{
						Parser:  p.NodeName(),
						Message: fmt.Sprintf("%s: entry %d has unsatisfiable repetition bounds (%d, %d)", p.NodeName(), i, e.min, e.max),
						Code:    cst.BadRepetitionCount,
					})
				}
			}
		}
	}
	return out
}

// checkDuplicateAlternatives flags an Alternative with the same sub-parser
// identity listed twice — the second occurrence is always unreachable
// (spec §4.11 "Duplicate parsers in alternative").
func checkDuplicateAlternatives(g *Grammar) []Finding {
	var out []Finding
	for _, p := range g.parsers {
		a, ok := p.(*alternativeParser)
		if !ok {
			continue
		}
		seen := make(map[Parser]bool, len(a.sub))
		for _, sub := range a.sub {
			if seen[sub] {
				out = append(out, Finding{
					Parser:  p.NodeName(),
					Message: fmt.Sprintf("%s: sub-parser %s listed more than once", p.NodeName(), sub.NodeName()),
					Code:    cst.DuplicateParsersInAlternative,
				})
			}
			seen[sub] = true
		}
	}
	return out
}

// checkBadOrderOfAlternatives flags an Alternative where a Text literal
// appears after another Text literal it is a prefix of — the shorter
// literal earlier always wins, making the longer one unreachable (spec
// §4.11 "Bad order of alternatives").
func checkBadOrderOfAlternatives(g *Grammar) []Finding {
	var out []Finding
	for _, p := range g.parsers {
		a, ok := p.(*alternativeParser)
		if !ok {
			continue
		}
		for i := 0; i < len(a.sub)-1; i++ {
			if isOptionalParser(a.sub[i]) {
				out = append(out, Finding{
					Parser:  p.NodeName(),
					Message: fmt.Sprintf("%s: alternative %d always succeeds, making every later alternative unreachable", p.NodeName(), i),
					Code:    cst.BadOrderOfAlternatives,
				})
			}
		}
		for i := 0; i < len(a.sub); i++ {
			ti, ok := a.sub[i].(*textParser)
			if !ok {
				continue
			}
			for j := i + 1; j < len(a.sub); j++ {
				tj, ok := a.sub[j].(*textParser)
				if !ok {
					continue
				}
				if len(ti.literal) > 0 && len(ti.literal) < len(tj.literal) && tj.literal[:len(ti.literal)] == ti.literal {
					out = append(out, Finding{
						Parser:  p.NodeName(),
						Message: fmt.Sprintf("%s: Text(%q) before Text(%q) makes the latter unreachable", p.NodeName(), ti.literal, tj.literal),
						Code:    cst.BadOrderOfAlternatives,
					})
				}
			}
		}
	}
	return out
}

// checkLookaheadWithOptional flags Lookahead(Option(x)) / similar — a
// lookahead wrapping a parser that always succeeds is itself unconditional
// and therefore pointless (spec §4.11 "Lookahead combined with optional
// parser").
func checkLookaheadWithOptional(g *Grammar) []Finding {
	var out []Finding
	for _, p := range g.parsers {
		l, ok := p.(*lookaroundParser)
		if !ok || l.behind {
			continue
		}
		switch l.sub[0].(type) {
		case *optionParser, *alwaysParser:
			out = append(out, Finding{
				Parser:  p.NodeName(),
				Message: fmt.Sprintf("%s: wraps a parser that always succeeds", p.NodeName()),
				Code:    cst.LookaheadWithOptionalParser,
			})
		case *repetitionParser:
			if r := l.sub[0].(*repetitionParser); r.min == 0 {
				out = append(out, Finding{
					Parser:  p.NodeName(),
					Message: fmt.Sprintf("%s: wraps a parser that always succeeds", p.NodeName()),
					Code:    cst.LookaheadWithOptionalParser,
				})
			}
		}
	}
	return out
}
