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

// rollbackEntry is one deposit in the rollback log (spec §3.7): a location
// and the function that undoes whatever variable-stack mutation happened
// at that location.
type rollbackEntry struct {
	loc  cst.Position
	undo func()
}

// pushVariable pushes value onto the named variable's stack and deposits a
// matching rollback entry, per §4.5's Capture rule: the deposit location is
// start if the capture consumed text, else start-1, so a zero-length
// capture never rolls itself back on the very next call at the same
// position.
func (g *Grammar) pushVariable(name, value string, start cst.Position, consumed bool) {
	g.variables[name] = append(g.variables[name], value)
	depositLoc := start
	if !consumed {
		depositLoc = start - 1
	}
	g.depositRollback(depositLoc, func() {
		stack := g.variables[name]
		g.variables[name] = stack[:len(stack)-1]
	})
}

// popVariable pops the top of the named variable's stack, returning it, and
// deposits a rollback entry that pushes it back on retraction (spec §4.5
// Pop).
func (g *Grammar) popVariable(name string, start cst.Position) (string, bool) {
	stack := g.variables[name]
	if len(stack) == 0 {
		return "", false
	}
	value := stack[len(stack)-1]
	g.variables[name] = stack[:len(stack)-1]
	g.depositRollback(start, func() {
		g.variables[name] = append(g.variables[name], value)
	})
	return value, true
}

// topVariable reads the top of the named variable's stack without popping.
func (g *Grammar) topVariable(name string) (string, bool) {
	stack := g.variables[name]
	if len(stack) == 0 {
		return "", false
	}
	return stack[len(stack)-1], true
}

// autoCapture implements spec §4.5's Retrieve/Pop fallback: "If the stack is
// empty, auto-capture by running the referenced Capture's sub-parser at the
// current location." It looks up the Capture registered under name (by
// Grammar.walk, keyed on the same varName a Retrieve/Pop was built with) and
// runs it at loc, which pushes a value if it matches. It reports whether a
// value is now available, not whether the Capture's own match succeeded as
// a node (callers only care about the stack afterward).
func (g *Grammar) autoCapture(name string, loc cst.Position) bool {
	c, ok := g.captures[name]
	if !ok {
		return false
	}
	c.ParseEntry(loc)
	_, ok = g.topVariable(name)
	return ok
}

// depositNoopRollback blocks memoization at loc without mutating any
// variable — Retrieve deposits one of these even on a read-only hit,
// per spec §4.5 ("in all cases deposit a no-op rollback entry to block
// memoization at the rollback-location").
func (g *Grammar) depositNoopRollback(loc cst.Position) {
	g.depositRollback(loc, func() {})
}

func (g *Grammar) depositRollback(loc cst.Position, undo func()) {
	g.rollback = append(g.rollback, rollbackEntry{loc: loc, undo: undo})
	if loc > g.lastRollbackLoc {
		g.lastRollbackLoc = loc
	}
	g.suspendMemo = true
}

// rollbackTo undoes, in last-in-first-out order, every rollback entry
// deposited at a location >= loc, per spec §5's ordering guarantee.
func (g *Grammar) rollbackTo(loc cst.Position) {
	if len(g.rollback) == 0 {
		// lastRollbackLoc claimed a deposit exists but the log is empty; an
		// internal invariant is broken. Recorded as fatal, parse continues
		// on a best-effort basis (spec §7 "Internal invariants errors").
		g.addError(g.rootNode.AsNode(), cst.Error{
			Message:  errRollbackUnknownLocation.Error(),
			Position: loc,
			Code:     cst.ErrorWhileRecoveringFromError,
		})
		g.lastRollbackLoc = Unassigned
		return
	}
	i := len(g.rollback)
	for i > 0 && g.rollback[i-1].loc >= loc {
		i--
	}
	for j := len(g.rollback) - 1; j >= i; j-- {
		g.rollback[j].undo()
	}
	g.rollback = g.rollback[:i]
	g.lastRollbackLoc = Unassigned
	for _, e := range g.rollback {
		if e.loc > g.lastRollbackLoc {
			g.lastRollbackLoc = e.loc
		}
	}
}

// trimRollback undoes, newest first, every rollback entry deposited after
// the log had mark entries. Forward's seed-and-grow loop uses it to retract
// the variable deposits of a rejected growth iteration, which ordinary
// backtracking would never reach because parsing continues from the seed's
// end rather than re-entering at the recursion location.
func (g *Grammar) trimRollback(mark int) {
	for len(g.rollback) > mark {
		e := g.rollback[len(g.rollback)-1]
		g.rollback = g.rollback[:len(g.rollback)-1]
		e.undo()
	}
	g.lastRollbackLoc = Unassigned
	for _, e := range g.rollback {
		if e.loc > g.lastRollbackLoc {
			g.lastRollbackLoc = e.loc
		}
	}
}

// Unassigned mirrors cst.Unassigned for use as the rollback tracker's reset
// value (no deposits yet).
const Unassigned = cst.Unassigned

// variableStacksEmpty reports whether every named variable stack is empty,
// used by Grammar.Parse's post-parse check (spec §4.9 step 4).
func (g *Grammar) variableStacksEmpty() bool {
	for _, stack := range g.variables {
		if len(stack) > 0 {
			return false
		}
	}
	return true
}
