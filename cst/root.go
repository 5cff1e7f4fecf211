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

package cst

import "sort"

// SourceLocation is a human-facing line/column pair, produced by mapping an
// absolute Position back through any preprocessing that happened before the
// parser ever saw the text (spec §3.4 "source_mapping").
type SourceLocation struct {
	Line   int
	Column int
}

// RootNode is a Node specialization that additionally owns the parse's
// accumulated errors, an error-location index, and the information needed to
// turn a Position back into a line/column (spec §3.4). It is constructed
// before parsing begins and populated by Swallow once the root parser has
// produced (or failed to produce) a result.
type RootNode struct {
	Node

	Errors ErrorList

	errorNodes     map[*Node]ErrorList
	errorPositions map[Position]map[*Node]bool
	errorFlag      Severity

	Source string
	// SourceMapping, if set, maps a Position in the (possibly preprocessed)
	// text the parser ran over back to a SourceLocation in the original
	// document. If nil, ApplySourceMapping falls back to counting newlines
	// in Source directly.
	SourceMapping func(Position) SourceLocation

	lineBreaks []int // sorted start offsets of lines 2, 3, … (line 1 starts at 0)
}

// NewRootNode constructs an empty RootNode over source, ready to receive a
// parse result via Swallow.
func NewRootNode(source string) *RootNode {
	r := &RootNode{
		Node:           Node{name: ":ROOT", pos: Unassigned},
		errorNodes:     make(map[*Node]ErrorList),
		errorPositions: make(map[Position]map[*Node]bool),
		Source:         source,
		lineBreaks:     computeLineBreaks(source),
	}
	return r
}

func computeLineBreaks(source string) []int {
	breaks := make([]int, 0, 16)
	for i, r := range source {
		if r == '\n' {
			breaks = append(breaks, i+1)
		}
	}
	return breaks
}

// Swallow adopts result as the RootNode's own content: the root's name,
// leaf/branch status, content and position become result's. If result is
// nil (the root parser produced no result at all), a defensive empty ZOMBIE_TAG
// branch takes its place so the RootNode's content is never simply missing.
func (r *RootNode) Swallow(result *Node) {
	if result == nil {
		result = NewBranch(ZombieTag, nil)
		result.SetPos(0)
	}
	r.name = result.name
	r.isLeaf = result.isLeaf
	r.leaf = result.leaf
	r.children = result.children
	r.attrs = result.attrs
	if r.pos == Unassigned {
		r.pos = result.pos
	}
}

// AsNode returns the RootNode's own identity as a plain *Node, for APIs
// (error attachment, navigation) that are keyed by node pointer identity.
func (r *RootNode) AsNode() *Node { return &r.Node }

// AddError appends err to the RootNode's error list and indexes it against
// node (which may be r.AsNode() itself, for diagnostics about the parse as a
// whole rather than about any specific matched fragment).
func (r *RootNode) AddError(node *Node, err Error) {
	r.Errors = append(r.Errors, err)
	if sev := err.Severity(); sev > r.errorFlag {
		r.errorFlag = sev
	}
	r.errorNodes[node] = append(r.errorNodes[node], err)
	bucket, ok := r.errorPositions[err.Position]
	if !ok {
		bucket = make(map[*Node]bool)
		r.errorPositions[err.Position] = bucket
	}
	bucket[node] = true
}

// ErrorFlag returns the most severe Severity seen so far.
func (r *RootNode) ErrorFlag() Severity { return r.errorFlag }

// ErrorsFor returns every Error attached to node, in the order they were added.
func (r *RootNode) ErrorsFor(node *Node) ErrorList {
	return r.errorNodes[node]
}

// NodesAtPosition returns every node identity that has at least one Error
// attached at pos.
func (r *RootNode) NodesAtPosition(pos Position) []*Node {
	bucket := r.errorPositions[pos]
	if len(bucket) == 0 {
		return nil
	}
	out := make([]*Node, 0, len(bucket))
	for n := range bucket {
		out = append(out, n)
	}
	return out
}

// HasErrorAt reports whether an error-severity diagnostic is already
// recorded at pos. The dropout loop uses it to avoid piling a generic
// "stopped before end" on top of a specific error that already explains
// the stop.
func (r *RootNode) HasErrorAt(pos Position) bool {
	for _, e := range r.Errors {
		if e.Position == pos && e.Severity() >= ErrorSeverity {
			return true
		}
	}
	return false
}

// ApplySourceMapping fills in Line/Column on every accumulated Error, using
// r.SourceMapping if set, or a direct newline count over r.Source otherwise.
// It is idempotent: calling it twice recomputes but does not duplicate
// entries.
func (r *RootNode) ApplySourceMapping() {
	for i := range r.Errors {
		pos := r.Errors[i].Position
		var loc SourceLocation
		if r.SourceMapping != nil {
			loc = r.SourceMapping(pos)
		} else {
			loc.Line, loc.Column = r.lineColumn(pos)
		}
		r.Errors[i].Line = loc.Line
		r.Errors[i].Column = loc.Column
	}
}

// lineColumn computes a 1-based line/column pair for an offset into r.Source
// using the precomputed line-break table.
func (r *RootNode) lineColumn(pos Position) (line, column int) {
	offset := int(pos)
	if offset < 0 {
		offset = 0
	}
	// index of the first line-break offset strictly greater than offset
	idx := sort.SearchInts(r.lineBreaks, offset+1)
	line = idx + 1
	lineStart := 0
	if idx > 0 {
		lineStart = r.lineBreaks[idx-1]
	}
	column = offset - lineStart + 1
	return line, column
}
