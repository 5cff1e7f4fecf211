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

// breadcrumb is one frame of the call-stack recorded alongside a history
// entry (spec §4.12: "the call-stack breadcrumb (list of (parser_name,
// location))").
type breadcrumb struct {
	name string
	tag  string
	loc  cst.Position
}

// HistoryRecord is one entry of the optional parse trace (spec §4.12).
// MemoHit is true when this record was produced by a memo-table hit rather
// than a fresh parseImpl call — the tracer records the event without
// re-executing anything, by construction (memo hits never call parseImpl).
type HistoryRecord struct {
	Stack   []string
	Node    *cst.Node
	Start   cst.Position
	End     cst.Position
	MemoHit bool
}

// enterCall pushes a breadcrumb and enforces the recursion-depth limit. It
// returns false if the limit was hit, in which case the caller must not
// proceed into parseImpl (spec §4.2 step 4, §5 "recursion-depth exhaustion
// path").
func (g *Grammar) enterCall(p Parser, loc cst.Position) bool {
	if g.Config.MaxRecursionDepth > 0 && len(g.callStack) >= g.Config.MaxRecursionDepth {
		return false
	}
	g.callStack = append(g.callStack, breadcrumb{name: p.NodeName(), tag: p.TypeTag(), loc: loc})
	return true
}

// stackHasLookahead reports whether the current call path runs inside a
// lookahead probe. The farthest-fail tracker stores this alongside each
// advance, so the dropout loop can tell a genuine premature stop from one
// whose deepest failure was an expected lookahead miss (spec §4.9 step 3's
// PARSER_LOOKAHEAD_FAILURE_ONLY).
func (g *Grammar) stackHasLookahead() bool {
	for _, f := range g.callStack {
		if f.tag == ":Lookahead" || f.tag == ":NegativeLookahead" {
			return true
		}
	}
	return false
}

func (g *Grammar) exitCall() {
	g.callStack = g.callStack[:len(g.callStack)-1]
}

func (g *Grammar) snapshotStack() []string {
	if len(g.callStack) == 0 {
		return nil
	}
	out := make([]string, len(g.callStack))
	for i, f := range g.callStack {
		out[i] = f.name
	}
	return out
}

func (g *Grammar) recordHistory(p Parser, start cst.Position, node *cst.Node, end cst.Position) {
	if !g.Config.History || g.suppressHistory {
		return
	}
	g.history = append(g.history, HistoryRecord{
		Stack: g.snapshotStack(),
		Node:  node,
		Start: start,
		End:   end,
	})
	if g.log != nil {
		g.log.Debugf("parse: %s @%d -> %d", p.NodeName(), start, end)
	}
}

func (g *Grammar) recordMemoHit(p Parser, loc cst.Position, entry memoEntry) {
	if !g.Config.History || g.suppressHistory {
		return
	}
	g.history = append(g.history, HistoryRecord{
		Stack:   g.snapshotStack(),
		Node:    entry.node,
		Start:   loc,
		End:     entry.newLoc,
		MemoHit: true,
	})
}

// addError appends a diagnostic to the in-progress RootNode, keyed to node.
func (g *Grammar) addError(node *cst.Node, err cst.Error) {
	g.rootNode.AddError(node, err)
}
