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

	"github.com/pkg/errors"

	"github.com/google/dhparse/cst"
	"github.com/google/dhparse/diaglog"
	"github.com/google/dhparse/source"
)

// AnalysisMode selects when (if ever) static analysis runs at grammar
// construction (spec §4.11). Early and Late both run inside New — the
// EBNF-compiler distinction between analyzing a grammar class and
// analyzing an instance collapses when construction is a single call —
// but both values are accepted so generated configurations port over
// unchanged.
type AnalysisMode int

const (
	AnalysisOff AnalysisMode = iota
	AnalysisEarly
	AnalysisLate
)

// Config holds the directives an EBNF-compiler-generated Grammar subclass
// would carry as class attributes (spec §6.1): whitespace/comment
// patterns, limits, the static-analysis mode, the default reduction level,
// and the per-symbol skip/resume/error-message tables used by mandatory-
// element error recovery (spec §4.6).
type Config struct {
	Whitespace *regexp.Regexp
	Comment    *regexp.Regexp

	MaxDocLength int
	MaxDropouts  int

	MaxRecursionDepth   int
	ReentrySearchWindow int

	StaticAnalysis AnalysisMode
	Reduction      ReductionLevel

	SkipRules     map[string][]ReentryRule
	ResumeRules   map[string][]ReentryRule
	ErrorMessages map[string][]ErrorTemplate

	History       bool
	ResumeNotices bool
	Logger        diaglog.Logger
}

// DefaultConfig returns a Config with the limits and reduction policy the
// rest of this package assumes when a caller does not override them.
func DefaultConfig() Config {
	return Config{
		MaxDocLength:        64 << 20,
		MaxDropouts:         3,
		MaxRecursionDepth:   2000,
		ReentrySearchWindow: 10000,
		StaticAnalysis:      AnalysisEarly,
		Reduction:           Flatten,
	}
}

// Grammar is the coordinator (spec §3.5 "weak back-reference to its
// Grammar", §5 "Global mutable state within a parse → fields on Grammar").
// One Grammar parses one document at a time; its tables are reset at the
// start of every call to Parse.
type Grammar struct {
	Config Config

	root     Parser
	parsers  []Parser
	forwards []*forwardParser

	doc  string
	view source.View

	variables       map[string][]string
	rollback        []rollbackEntry
	lastRollbackLoc cst.Position
	suspendMemo     bool
	captures        map[string]*captureParser

	ffPos         cst.Position
	ffParser      Parser
	ffInLookahead bool

	// lookaheadMatchAt is the location of the most recent positive
	// lookahead whose probe reached the end of the document; the dropout
	// loop uses it to tell "stopped, but matched with lookahead" apart
	// from a genuine premature stop (spec §4.9 step 3).
	lookaheadMatchAt cst.Position

	startParser Parser

	history         []HistoryRecord
	callStack       []breadcrumb
	suppressHistory bool

	rootNode *cst.RootNode
	log      diaglog.Logger

	constructionWarnings []Finding
}

// New walks root's parser graph (following Forward referents, guarding
// against cycles), binds every reachable parser to this Grammar, computes
// the transitive IsContextSensitive flag (spec §4.8), and — unless
// cfg.StaticAnalysis is AnalysisOff — runs static analysis (spec §4.11),
// returning a *GrammarError aggregating every finding if any is at error
// severity.
func New(root Parser, cfg Config) (*Grammar, error) {
	g := &Grammar{Config: cfg, root: root, startParser: root, log: cfg.Logger}
	if g.log == nil {
		g.log = diaglog.Discard
	}

	seen := make(map[Parser]bool)
	g.walk(root, seen)
	// Parsers used as reentry rules are probed during error recovery, so
	// they are bound like any parser reachable from root.
	for _, table := range []map[string][]ReentryRule{cfg.SkipRules, cfg.ResumeRules} {
		for _, rules := range table {
			for _, rule := range rules {
				if pr, ok := rule.(ParserRule); ok && pr.P != nil {
					g.walk(pr.P, seen)
				}
			}
		}
	}

	computeContextSensitivity(g.parsers)
	for _, p := range g.parsers {
		if p.IsContextSensitive() {
			if d, ok := p.(memoDisabler); ok {
				d.disableMemo()
			}
		}
	}

	if cfg.StaticAnalysis != AnalysisOff {
		findings := analyze(g)
		var errorLevel []Finding
		for _, f := range findings {
			g.rootNodeFinding(f)
			if f.Severity() >= cst.ErrorSeverity {
				errorLevel = append(errorLevel, f)
			}
		}
		if len(errorLevel) > 0 {
			return nil, newGrammarError(errorLevel)
		}
	}

	return g, nil
}

// rootNodeFinding is a placeholder sink for warning-level static-analysis
// findings discovered before any RootNode exists; Grammar.Parse replays
// them onto the fresh RootNode of every parse, since static-analysis
// warnings are a property of the grammar, not of any one document.
func (g *Grammar) rootNodeFinding(f Finding) {
	g.constructionWarnings = append(g.constructionWarnings, f)
}

func (g *Grammar) walk(p Parser, seen map[Parser]bool) {
	if seen[p] {
		return
	}
	seen[p] = true
	p.bind(g)
	g.parsers = append(g.parsers, p)
	if fw, ok := p.(*forwardParser); ok {
		g.forwards = append(g.forwards, fw)
	}
	if c, ok := p.(*captureParser); ok {
		if g.captures == nil {
			g.captures = make(map[string]*captureParser)
		}
		g.captures[c.varName] = c
	}
	for _, sub := range p.SubParsers() {
		if sub != nil {
			g.walk(sub, seen)
		}
	}
}

// Parse implements spec §4.9. It returns a non-nil error only for the
// construction-style refusal in spec §8.3 ("document larger than the
// configured maximum length"); every ordinary parse-time diagnostic is
// recorded on the returned RootNode's Errors instead, never returned here
// (spec §6.2 "Errors are on root.errors […] thrown only for static-analysis
// failures at construction").
func (g *Grammar) Parse(document string, start Parser, sourceMapping func(cst.Position) cst.SourceLocation, completeMatch bool) (*cst.RootNode, error) {
	if g.Config.MaxDocLength > 0 && len(document) > g.Config.MaxDocLength {
		return nil, errors.Errorf("parse: document of %d bytes exceeds configured maximum of %d", len(document), g.Config.MaxDocLength)
	}
	if start == nil {
		start = g.root
	}

	document = strings.TrimPrefix(document, "\xef\xbb\xbf")

	g.doc = document
	g.view = source.New(document)
	g.variables = make(map[string][]string)
	g.rollback = nil
	g.lastRollbackLoc = Unassigned
	g.suspendMemo = false
	g.ffPos = Unassigned
	g.ffParser = nil
	g.ffInLookahead = false
	g.lookaheadMatchAt = Unassigned
	g.startParser = start
	g.history = nil
	g.callStack = nil
	g.suppressHistory = false
	for _, p := range g.parsers {
		resetParserMemo(p)
	}
	for _, fw := range g.forwards {
		fw.resetRecursion()
	}

	root := cst.NewRootNode(document)
	if sourceMapping != nil {
		root.SourceMapping = sourceMapping
	}
	g.rootNode = root
	for _, f := range g.constructionWarnings {
		root.AddError(root.AsNode(), findingToError(f))
	}

	result, newLoc, _ := start.ParseEntry(0)

	if len(document) == 0 && result == nil {
		// spec §8.3: an empty document yields either a full match (for a
		// nullable start parser) or exactly one diagnostic explaining the
		// non-match.
		code := cst.ParserStoppedBeforeEnd
		msg := "parser " + start.NodeName() + " did not match the empty document"
		if g.ffInLookahead {
			code = cst.ParserLookaheadFailureOnlyNotice
			msg += ", but only because of a lookahead"
		}
		root.AddError(root.AsNode(), cst.Error{Message: msg, Position: 0, Code: code})
	}

	if completeMatch && int(newLoc) < len(document) {
		result, newLoc = g.dropoutLoop(start, result, newLoc)
	}

	if !g.variableStacksEmpty() {
		code := cst.CaptureStackNotEmptyError
		if g.onlyZeroLengthCapturesPossible() {
			code = cst.CaptureStackNotEmptyWarning
		}
		root.AddError(root.AsNode(), cst.Error{
			Message:  "one or more variable stacks is non-empty after parsing",
			Position: newLoc,
			Code:     code,
		})
	}

	root.Swallow(result)
	root.ApplySourceMapping()
	return root, nil
}

// dropoutLoop implements spec §4.9 step 3: on an incomplete match, skip one
// line at a time, stitching a ZOMBIE_TAG gap into the result and retrying
// the start parser, until max_dropouts is exhausted or EOF is reached. The
// first dropout carries PARSER_STOPPED_BEFORE_END (or one of the lookahead
// notices when the stop is an artifact of a trailing lookahead); every
// later one carries PARSER_STOPPED_ON_RETRY. A diagnostic is suppressed if
// an error-severity diagnostic already sits at the same position, so a
// mandatory violation that already explains the stop is not drowned out.
func (g *Grammar) dropoutLoop(start Parser, result *cst.Node, loc cst.Position) (*cst.Node, cst.Position) {
	attempts := 0
	for int(loc) < len(g.doc) && attempts < g.Config.MaxDropouts {
		attempts++

		code := cst.ParserStoppedBeforeEnd
		errPos := loc
		if g.ffPos > errPos {
			errPos = g.ffPos
		}
		msg := "parser " + start.NodeName() + " stopped before end, at: " + foundText(g.doc, loc)
		switch {
		case g.lookaheadMatchAt != Unassigned && g.lookaheadMatchAt >= loc:
			code = cst.ParserLookaheadMatchOnlyNotice
			msg = "parser stopped before end, but matched with lookahead"
			errPos = loc
			attempts = g.Config.MaxDropouts // no retry can get past a matching lookahead
		case g.ffInLookahead && g.ffPos >= loc:
			code = cst.ParserLookaheadFailureOnlyNotice
			msg = "parser stopped before end; the only failure was inside a lookahead"
			errPos = loc
		case attempts > 1:
			code = cst.ParserStoppedOnRetry
			msg = fmt.Sprintf("error after reentry %d: %s", attempts-1, msg)
		}
		if cst.ClassOf(code) < cst.ErrorSeverity || !g.rootNode.HasErrorAt(errPos) {
			g.rootNode.AddError(g.rootNode.AsNode(), cst.Error{
				Message:  msg,
				Position: errPos,
				Code:     code,
			})
		}

		next := g.view.At(loc)
		nlIdx, found := next.Find("\n", 0, -1)
		skipTo := len(g.doc)
		if found {
			skipTo = int(loc) + nlIdx + 1
		}
		gap := cst.NewLeaf(cst.ZombieTag, g.doc[loc:skipTo])
		gap.SetPos(loc)

		retried, retriedLoc, _ := start.ParseEntry(cst.Position(skipTo))
		if retried != nil {
			result = stitchDropout(result, gap, retried)
			loc = retriedLoc
		} else {
			result = stitchDropout(result, gap, nil)
			loc = cst.Position(skipTo)
		}
	}
	return result, loc
}

func stitchDropout(result *cst.Node, gap *cst.Node, retried *cst.Node) *cst.Node {
	children := []*cst.Node{gap}
	if retried != nil {
		children = append(children, retried)
	}
	if result == nil {
		return cst.NewBranch(cst.ZombieTag, children)
	}
	prior := result.Children()
	if result.IsLeaf() {
		prior = []*cst.Node{result}
	}
	return cst.NewBranch(result.Name(), append(append([]*cst.Node{}, prior...), children...))
}

// onlyZeroLengthCapturesPossible is a conservative approximation used to
// decide between CAPTURE_STACK_NOT_EMPTY_ERROR and its warning-level
// sibling: without tracking, per-Capture, whether every push it ever did
// during this parse was zero-length, it always reports false, so a
// non-empty variable stack is always classified as an error. No other part
// of the package downgrades this diagnostic to the warning-level code.
func (g *Grammar) onlyZeroLengthCapturesPossible() bool {
	return false
}

func resetParserMemo(p Parser) {
	if r, ok := p.(interface{ resetMemo() }); ok {
		r.resetMemo()
	}
}

// forgetAllAt discards every parser's memo entry at loc. Forward's
// seed-and-grow loop (forward.go) calls this before each growth iteration:
// a combinator sitting between the Forward and its own left-recursive
// reference would otherwise keep serving the memo entry it recorded during
// the previous, smaller-seed iteration instead of re-evaluating against the
// grown seed (spec §4.8: "roll back any variable changes deposited by the
// rejected iteration and trim the history log" — the memo-table analogue of
// that same per-iteration invalidation).
func (g *Grammar) forgetAllAt(loc cst.Position) {
	for _, p := range g.parsers {
		if f, ok := p.(forgettableAt); ok {
			f.forgetAt(loc)
		}
	}
}

func findingToError(f Finding) cst.Error {
	return cst.Error{Message: f.Message, Position: Unassigned, Code: f.Code}
}
