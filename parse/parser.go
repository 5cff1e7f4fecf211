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

// Package parse is the parser-combinator runtime: packrat memoization,
// left-recursion resolution by seed-and-grow, context-sensitive
// capture/retrieve/pop parsing with rollback, mandatory-element error
// recovery via reentry points, tree reduction, and static analysis of the
// parser graph (spec §3.5–3.8, §4.2–4.12, §5, §7).
//
// The parser variants form a closed set (spec §9 "sum types + vtable"): a
// concrete parser type embeds base and is reachable only through the
// Parser interface, whose parseImpl method is unexported — a type outside
// this package cannot satisfy Parser, which is intentional. Dynamic
// dispatch from the shared ParseEntry wrapper down to a variant's own
// matching logic uses the self-referencing-base pattern: base.self holds
// the outer concrete value, assigned once at construction, exactly the way
// google-gapid's core/text/parse.Parser hierarchy fakes virtual dispatch
// from a common struct.
package parse

import "github.com/google/dhparse/cst"

// ReductionLevel selects a tree-reduction policy applied to a combinator's
// branch result (spec §4.10).
type ReductionLevel int

const (
	NoReduction ReductionLevel = iota
	Flatten
	MergeTreetops
	MergeLeaves
)

// NoMandatory marks a Series/Interleave that never raises a ParserError
// (spec §8.1 "A parser with mandatory = NO_MANDATORY never raises a
// ParserError").
const NoMandatory = -1

// Infinite is the "no upper bound" sentinel for Counted/Interleave
// repetition bounds.
const Infinite = -1

// Parser is the combinator interface (spec §3.5, §4.2). ParseEntry is the
// public, uniformly-implemented contract; parseImpl is variant-specific
// and unexported, which is what keeps the set of implementations closed to
// this package.
type Parser interface {
	// Name returns the parser's public name, or "" if anonymous.
	Name() string
	// Named assigns a public name and returns the same parser (fluent, per
	// spec §6.1 "named parsers get their name via a fluent name() method").
	// Naming a parser also makes it non-disposable, since Disposable is
	// derived from whether NodeName starts with ":".
	Named(name string) Parser
	// NodeName is the tag used when constructing output Nodes: the public
	// name if set, else the variant's own disposable type-tag (e.g. ":Series").
	NodeName() string
	// TypeTag is the variant's class-name tag (e.g. ":Series", ":Text").
	TypeTag() string
	// Disposable reports whether NodeName is anonymous (":"-prefixed).
	Disposable() bool
	// DropContent reports whether this parser's matches contribute no text.
	DropContent() bool
	// IsContextSensitive reports the transitively-computed flag from
	// spec §4.8: true for Capture/Retrieve/Pop and anything that reaches one.
	IsContextSensitive() bool
	// SubParsers returns the parser's immediate sub-parsers, for static
	// analysis and arena construction.
	SubParsers() []Parser
	// Reduction returns this parser's tree-reduction policy.
	Reduction() ReductionLevel

	// ParseEntry is the public contract (spec §4.2): rollback, memoization,
	// recursion-limit handling, farthest-fail update, position assignment,
	// and history recording around the variant-specific parseImpl.
	//
	// The third return value is an implementation seam, not part of the
	// conceptual (Option<Node>, new_location) contract spec §4.2 describes:
	// Go has no exception to carry a recoverable ParserError out of a call
	// that also wants to return a value, so a non-nil *ParserError here is
	// how a still-unresolved mandatory-violation (spec §4.6 step 5) travels
	// from a failing sub-parser up through every enclosing combinator's own
	// parseImpl, each of which gets one attempt (via its own ParseEntry) to
	// resolve it before passing it further up. It is non-nil only
	// transiently, between the parser that raised it and whichever
	// enclosing parser's resume rules finally catch it (or the root, which
	// always catches).
	ParseEntry(loc cst.Position) (*cst.Node, cst.Position, *ParserError)

	parseImpl(loc cst.Position) (*cst.Node, cst.Position, *ParserError)
	bind(g *Grammar)
	grammar() *Grammar
}

// memoEntry is one packrat memo record (spec §3.6).
type memoEntry struct {
	node   *cst.Node
	newLoc cst.Position
}

// base is embedded by every concrete parser type. It implements every
// Parser method except parseImpl, which each variant supplies itself;
// self makes that single missing method reachable from ParseEntry.
type base struct {
	self Parser
	g    *Grammar

	name           string
	typeTag        string
	dropContent    bool
	ctxSensitive   bool // computed once, at Grammar construction (§4.8)
	nonMemo        bool // leaf matchers and context-sensitive parsers (§3.6)
	reduceLevel    ReductionLevel
	reduceLevelSet bool

	sub []Parser

	memo map[cst.Position]memoEntry
}

func newBase(typeTag string, sub ...Parser) base {
	return base{typeTag: typeTag, sub: sub}
}

func (b *base) Name() string { return b.name }

func (b *base) Named(name string) Parser {
	b.name = name
	return b.self
}

func (b *base) NodeName() string {
	if b.name != "" {
		return b.name
	}
	return b.typeTag
}

func (b *base) TypeTag() string { return b.typeTag }

func (b *base) Disposable() bool {
	n := b.NodeName()
	return len(n) > 0 && n[0] == ':'
}

func (b *base) DropContent() bool { return b.dropContent }

func (b *base) IsContextSensitive() bool { return b.ctxSensitive }

func (b *base) SubParsers() []Parser { return b.sub }

func (b *base) Reduction() ReductionLevel {
	if !b.reduceLevelSet && b.g != nil {
		return b.g.Config.Reduction
	}
	return b.reduceLevel
}

func (b *base) bind(g *Grammar) { b.g = g }

func (b *base) grammar() *Grammar { return b.g }

// SetReduction overrides this parser's reduction policy; combinator
// constructors call it when the grammar author requests a specific level
// for one rule instead of the grammar-wide default.
func (b *base) SetReduction(level ReductionLevel) {
	b.reduceLevel = level
	b.reduceLevelSet = true
}

// ParseEntry implements spec §4.2 uniformly for every variant.
func (b *base) ParseEntry(loc cst.Position) (*cst.Node, cst.Position, *ParserError) {
	g := b.g
	self := b.self

	// 1. Roll back variable operations deposited at or after loc.
	if loc <= g.lastRollbackLoc {
		g.rollbackTo(loc)
	}

	// 2. Memo lookup.
	if !b.nonMemo {
		if entry, ok := b.memo[loc]; ok {
			g.recordMemoHit(self, loc, entry)
			return entry.node, entry.newLoc, nil
		}
	}

	if !g.enterCall(self, loc) {
		// Recursion-depth exhaustion: synthesize a zombie, record a fatal
		// error, unwind to EOF (spec §4.2 step 4, §5).
		zombie := cst.NewBranch(cst.ZombieTag, nil)
		eof := cst.Position(len(g.doc))
		zombie.SetPos(loc)
		g.addError(zombie, cst.Error{
			Message:  "recursion depth limit exceeded",
			Position: loc,
			Code:     cst.RecursionDepthLimitHit,
		})
		g.recordHistory(self, loc, zombie, eof)
		return zombie, eof, nil
	}

	savedSuspend := g.suspendMemo
	g.suspendMemo = false

	node, newLoc, perr := self.parseImpl(loc)
	g.exitCall()

	if perr != nil {
		// One resolution attempt at this parser's own level (spec §4.6
		// step 5); may resolve the error here or hand back a re-thrown one.
		var outErr *ParserError
		node, newLoc, outErr = g.recoverFromError(self, loc, perr)
		if outErr != nil {
			g.suspendMemo = savedSuspend
			return nil, loc, outErr
		}
	}

	if node == nil {
		if loc > g.ffPos {
			g.ffPos = loc
			g.ffParser = self
			g.ffInLookahead = g.stackHasLookahead()
		}
	} else if node.Pos() == cst.Unassigned && node != cst.EmptyNode {
		node.SetPos(loc)
	}

	g.recordHistory(self, loc, node, newLoc)

	// The suspension flag deliberately stays set on the way out when a
	// Capture/Retrieve deposited during this call: every enclosing parser
	// on the current path must skip its own memo write too, since its
	// result also depends on the mutated variable state (spec §5
	// "Memoization is suspended ... whenever any rollback was triggered on
	// this call path"). Only a call that stayed clean restores the saved
	// flag.
	if !g.suspendMemo {
		if !b.nonMemo {
			if b.memo == nil {
				b.memo = make(map[cst.Position]memoEntry)
			}
			b.memo[loc] = memoEntry{node, newLoc}
		}
		g.suspendMemo = savedSuspend
	}

	return node, newLoc, nil
}

// resetMemo clears this parser's memo table; called by Grammar.Parse
// before each fresh parse of a new document.
func (b *base) resetMemo() {
	if len(b.memo) > 0 {
		b.memo = nil
	}
}

// forgetAt discards just the memo entry at loc, if any. Grammar.forgetAllAt
// (forward.go's seed-and-grow loop) calls this on every parser in the
// grammar before each growth iteration: without it, a combinator between
// the Forward and its own left-recursive reference (e.g. the Alternative
// and Series in `expr := expr "+" digit | digit`) would serve the stale
// memo entry recorded during the previous, smaller-seed iteration instead
// of re-evaluating against the grown seed.
func (b *base) forgetAt(loc cst.Position) {
	if b.memo != nil {
		delete(b.memo, loc)
	}
}

// disableMemo marks this parser non-memoizing. Grammar construction calls
// it on every parser the context-sensitivity propagation flagged: a parser
// whose result depends on the variable stacks must bypass memoization
// everywhere, not merely suppress individual writes (spec §4.8's closing
// sentence).
func (b *base) disableMemo() { b.nonMemo = true }

type memoDisabler interface {
	disableMemo()
}

// forgettableAt is implemented by base, letting Grammar.forgetAllAt discard
// one location's memo entry on every parser without each concrete type
// needing its own forwarding method.
type forgettableAt interface {
	forgetAt(loc cst.Position)
}
