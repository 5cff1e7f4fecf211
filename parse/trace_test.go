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

	"github.com/google/dhparse/cst"
	"github.com/google/dhparse/parse"
)

func deeplyNestedSeries(depth int) parse.Parser {
	p := parse.Text("a")
	for i := 0; i < depth; i++ {
		p = parse.Series(parse.NoMandatory, p)
	}
	return p
}

// TestRecursionDepthLimitSynthesizesZombie exercises spec §4.2 step 4: once
// the call stack would exceed Config.MaxRecursionDepth, ParseEntry must stop
// descending, synthesize a zombie node, and record a fatal diagnostic rather
// than overflow the Go stack.
func TestRecursionDepthLimitSynthesizesZombie(t *testing.T) {
	root := deeplyNestedSeries(50).Named("document")
	cfg := parse.DefaultConfig()
	cfg.StaticAnalysis = parse.AnalysisOff
	cfg.MaxRecursionDepth = 5
	g, err := parse.New(root, cfg)
	require.NoError(t, err)

	r, err := g.Parse("a", nil, nil, false)
	require.NoError(t, err)
	assert.Equal(t, cst.Fatal, r.Errors.MaxSeverity())
}

// TestHistoryFlagDoesNotAffectParseResult confirms enabling the optional
// trace (spec §4.12) only adds bookkeeping, never changes what is parsed.
func TestHistoryFlagDoesNotAffectParseResult(t *testing.T) {
	root := parse.Series(parse.NoMandatory, parse.Text("a"), parse.Text("b")).Named("document")

	cfgOff := parse.DefaultConfig()
	cfgOff.StaticAnalysis = parse.AnalysisOff
	cfgOff.History = false
	gOff, err := parse.New(root, cfgOff)
	require.NoError(t, err)
	rOff, err := gOff.Parse("ab", nil, nil, false)
	require.NoError(t, err)

	root2 := parse.Series(parse.NoMandatory, parse.Text("a"), parse.Text("b")).Named("document")
	cfgOn := parse.DefaultConfig()
	cfgOn.StaticAnalysis = parse.AnalysisOff
	cfgOn.History = true
	gOn, err := parse.New(root2, cfgOn)
	require.NoError(t, err)
	rOn, err := gOn.Parse("ab", nil, nil, false)
	require.NoError(t, err)

	assert.Equal(t, rOff.Content(), rOn.Content())
}

// TestMemoHitReturnsIdenticalNodeWithoutReexecution exercises the memo-hit
// path (spec §3.6): a combinator reached twice at the same location via
// Alternative is memoized (unlike the leaf matchers, which opt out of
// memoization entirely), so its second probe must serve the exact same
// result its first probe produced rather than re-matching.
func TestMemoHitReturnsIdenticalNodeWithoutReexecution(t *testing.T) {
	calls := 0
	letters := parse.Custom(func(remaining string) (int, bool) {
		calls++
		n := 0
		for n < len(remaining) && remaining[n] >= 'a' && remaining[n] <= 'z' {
			n++
		}
		return n, n > 0
	})
	shared := parse.Series(parse.NoMandatory, letters).Named("word")
	root := parse.Alternative(
		parse.Series(parse.NoMandatory, shared, parse.Text("!")),
		shared,
	).Named("document")
	g := newTestGrammar(t, root)
	r, err := g.Parse("abc", nil, nil, false)
	require.NoError(t, err)
	assert.Equal(t, "abc", r.Content())
	assert.Equal(t, 1, calls)
}
