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

// recursionState tracks one in-progress seed-and-grow cycle for a single
// (parser, location) pair (spec §4.8): the best match found so far and how
// many growth iterations it took to find it.
type recursionState struct {
	seed    *cst.Node
	seedEnd cst.Position
	depth   int
}

// forwardParser resolves direct and indirect left recursion through
// seed-and-grow (spec §4.8): declared with Forward() before the grammar's
// recursive rules are built, then pointed at its real referent with Set
// once the whole rule graph exists — the same two-phase "declare, then
// wire up" pattern EBNF-compiler-generated grammars need for mutually
// recursive rules, mirrored here as an explicit constructor split instead
// of Python's assign-after-the-fact attribute trick.
type forwardParser struct {
	base
	referent Parser
	inFlight map[cst.Position]*recursionState
}

// Forward declares a parser whose real definition will be supplied later
// via Set. Using it before Set fails with errForwardUnset wrapped into a
// ParserError at parse time (not a Go panic), since an unset Forward
// reachable at all is a grammar-construction bug that should surface as an
// ordinary diagnostic, not crash the process.
func Forward() *forwardParser {
	f := &forwardParser{base: newBase(":Forward")}
	f.self = f
	f.nonMemo = true
	return f
}

// Set supplies the parser this Forward stands in for. Calling it twice
// replaces the referent, which EBNF-compiler-style grammar builders rely on
// when a rule's right-hand side is constructed in multiple passes.
func (f *forwardParser) Set(p Parser) *forwardParser {
	f.referent = p
	f.sub = []Parser{p}
	return f
}

// resetRecursion clears all in-flight seed-and-grow state; called by
// Grammar.Parse before every fresh document (spec §5: left-recursion state
// is per-parse, not long-lived).
func (f *forwardParser) resetRecursion() {
	f.inFlight = nil
}

func (f *forwardParser) NodeName() string {
	if f.name != "" {
		return f.name
	}
	if f.referent != nil {
		return f.referent.NodeName()
	}
	return f.typeTag
}

func (f *forwardParser) Reduction() ReductionLevel {
	if f.referent != nil {
		return f.referent.Reduction()
	}
	return f.base.Reduction()
}

// parseImpl implements seed-and-grow left-recursion resolution (spec
// §4.8):
//
//  1. First call at (self, loc): seed with failure (node=nil), remember
//     we are "growing" at this location, then invoke the referent. Any
//     recursive call back to this same Forward at the same loc during that
//     invocation hits the inFlight guard below and returns the current seed
//     instead of re-entering — this is what turns infinite left-recursive
//     descent into a fixed-point iteration.
//  2. If the referent's result is better than the current seed (matches
//     further), adopt it as the new seed and retry from step 1's referent
//     call again ("grow"). Otherwise the previous seed was the fixed point:
//     return it.
//  3. If even the very first seed attempt fails, this location has no
//     match at all.
func (f *forwardParser) parseImpl(loc cst.Position) (*cst.Node, cst.Position, *ParserError) {
	if f.referent == nil {
		zombie := cst.NewBranch(cst.ZombieTag, nil)
		err := cst.Error{
			Message:  errForwardUnset.Error(),
			Position: loc,
			Code:     cst.CustomParserFailure,
		}
		f.g.addError(zombie, err)
		return nil, loc, &ParserError{Err: err, Partial: zombie, Origin: loc, FirstThrow: true}
	}

	if f.inFlight == nil {
		f.inFlight = make(map[cst.Position]*recursionState)
	}

	if state, ok := f.inFlight[loc]; ok {
		// Recursive re-entry during growth: hand back the current seed
		// without recursing further.
		return state.seed, state.seedEnd, nil
	}

	state := &recursionState{seed: nil, seedEnd: loc}
	f.inFlight[loc] = state
	defer delete(f.inFlight, loc)

	historyMark := len(f.g.history)
	var acceptedHistory []HistoryRecord

	for {
		// Drop the previous iteration's trace records before re-parsing; the
		// records of whichever iteration ends up accepted are restored on
		// the way out, so the final history reflects only the kept result
		// (spec §4.8 "trim the history log").
		f.g.history = f.g.history[:historyMark]
		rollbackMark := len(f.g.rollback)

		node, newLoc, perr := f.referent.ParseEntry(loc)
		if perr != nil {
			return nil, loc, perr
		}
		if node == nil {
			if state.seed == nil {
				return nil, loc, nil
			}
			f.g.trimRollback(rollbackMark)
			f.g.history = f.g.history[:historyMark]
			f.g.history = append(f.g.history, acceptedHistory...)
			return state.seed, state.seedEnd, nil
		}
		if state.seed != nil && newLoc <= state.seedEnd {
			// No further growth possible: the previous seed is the fixed
			// point. Variable deposits made by this rejected iteration are
			// undone along with its trace (spec §4.8 "roll back any variable
			// changes deposited by the rejected iteration").
			f.g.trimRollback(rollbackMark)
			f.g.history = f.g.history[:historyMark]
			f.g.history = append(f.g.history, acceptedHistory...)
			return state.seed, state.seedEnd, nil
		}
		state.seed = node
		state.seedEnd = newLoc
		state.depth++
		if len(f.g.history) > historyMark {
			acceptedHistory = append([]HistoryRecord(nil), f.g.history[historyMark:]...)
		}
		if state.depth > f.g.Config.MaxRecursionDepth {
			return state.seed, state.seedEnd, nil
		}
		// Invalidate every parser's memo entry at loc before growing again:
		// anything between this Forward and its own recursive reference
		// would otherwise keep answering from the smaller seed's memoized
		// result (spec §4.8).
		f.g.forgetAllAt(loc)
	}
}
