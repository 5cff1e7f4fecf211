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

package parse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/dhparse/parse"
)

func grammarWithReduction(t *testing.T, root parse.Parser, level parse.ReductionLevel) *parse.Grammar {
	t.Helper()
	cfg := parse.DefaultConfig()
	cfg.StaticAnalysis = parse.AnalysisOff
	cfg.Reduction = level
	g, err := parse.New(root, cfg)
	require.NoError(t, err)
	return g
}

// TestNoReductionKeepsNestedDisposableBranch exercises spec §4.10's
// NoReduction policy: an inner, anonymous Series survives as its own branch
// node instead of being spliced into the outer result.
func TestNoReductionKeepsNestedDisposableBranch(t *testing.T) {
	inner := parse.Series(parse.NoMandatory, parse.Text("a"), parse.Text("b"))
	root := parse.Series(parse.NoMandatory, inner, parse.Text("c")).Named("document")
	g := grammarWithReduction(t, root, parse.NoReduction)
	r, err := g.Parse("abc", nil, nil, false)
	require.NoError(t, err)
	require.Len(t, r.Children(), 2)
	assert.False(t, r.Children()[0].IsLeaf())
	assert.Equal(t, "abc", r.Content())
}

// TestFlattenSplicesDisposableBranchChildren exercises spec §4.10's Flatten
// policy (the grammar-wide default): the same inner Series is spliced away,
// leaving only its own children directly under the outer result.
func TestFlattenSplicesDisposableBranchChildren(t *testing.T) {
	inner := parse.Series(parse.NoMandatory, parse.Text("a"), parse.Text("b"))
	root := parse.Series(parse.NoMandatory, inner, parse.Text("c")).Named("document")
	g := grammarWithReduction(t, root, parse.Flatten)
	r, err := g.Parse("abc", nil, nil, false)
	require.NoError(t, err)
	require.Len(t, r.Children(), 3)
	for _, c := range r.Children() {
		assert.True(t, c.IsLeaf())
	}
}

// TestMergeTreetopsConcatenatesAllAnonymousLeafChildren exercises spec
// §4.10's MergeTreetops policy: once flattening leaves only anonymous leaf
// children, their text collapses into a single leaf under the parent's name.
func TestMergeTreetopsConcatenatesAllAnonymousLeafChildren(t *testing.T) {
	root := parse.Series(parse.NoMandatory, parse.Text("a"), parse.Text("b"), parse.Text("c")).Named("document")
	g := grammarWithReduction(t, root, parse.MergeTreetops)
	r, err := g.Parse("abc", nil, nil, false)
	require.NoError(t, err)
	assert.True(t, r.IsLeaf())
	assert.Equal(t, "abc", r.Content())
}

// TestMergeTreetopsLeavesMixedChildrenAlone exercises the case where not
// every remaining child is an anonymous leaf: MergeTreetops must fall back
// to plain Flatten behavior instead of collapsing.
func TestMergeTreetopsLeavesMixedChildrenAlone(t *testing.T) {
	root := parse.Series(parse.NoMandatory, parse.Text("a"), parse.Text("b").Named("kept")).Named("document")
	g := grammarWithReduction(t, root, parse.MergeTreetops)
	r, err := g.Parse("ab", nil, nil, false)
	require.NoError(t, err)
	require.Len(t, r.Children(), 2)
}

// TestMergeLeavesCollapsesAdjacentAnonymousRuns exercises spec §4.10's
// MergeLeaves policy: runs of adjacent anonymous leaves merge into a single
// :Merged leaf, but a named leaf between two runs stays intact and breaks
// the run.
func TestMergeLeavesCollapsesAdjacentAnonymousRuns(t *testing.T) {
	root := parse.Series(parse.NoMandatory,
		parse.Text("a"), parse.Text("b"),
		parse.Text("x").Named("kept"),
		parse.Text("c"), parse.Text("d"),
	).Named("document")
	g := grammarWithReduction(t, root, parse.MergeLeaves)
	r, err := g.Parse("abxcd", nil, nil, false)
	require.NoError(t, err)
	require.Len(t, r.Children(), 3)
	assert.Equal(t, "ab", r.Children()[0].Content())
	assert.Equal(t, "kept", r.Children()[1].Name())
	assert.Equal(t, "x", r.Children()[1].Content())
	assert.Equal(t, "cd", r.Children()[2].Content())
}

// TestMergeLeavesLeavesSingleRunUntouched confirms a lone anonymous leaf
// child (a "run" of length one) is not wrapped in a :Merged node.
func TestMergeLeavesLeavesSingleRunUntouched(t *testing.T) {
	root := parse.Series(parse.NoMandatory,
		parse.Text("a").Named("first"),
		parse.Text("b"),
		parse.Text("c").Named("third"),
	).Named("document")
	g := grammarWithReduction(t, root, parse.MergeLeaves)
	r, err := g.Parse("abc", nil, nil, false)
	require.NoError(t, err)
	require.Len(t, r.Children(), 3)
	assert.Equal(t, "b", r.Children()[1].Content())
}
