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

// TestLookbehindMatchesReversedPrefix exercises spec §4.4's Lookbehind:
// the sub-parser's pattern is written to match the document reversed, so a
// lookbehind for "preceded by AB" is spelled as a RegExp matching "BA".
func TestLookbehindMatchesReversedPrefix(t *testing.T) {
	root := parse.Series(parse.NoMandatory,
		parse.Text("AB"),
		parse.Lookbehind(parse.RegExp(`BA`)),
		parse.Text("C"),
	).Named("document")
	g := newTestGrammar(t, root)
	r, err := g.Parse("ABC", nil, nil, true)
	require.NoError(t, err)
	assert.Equal(t, "ABC", r.Content())
	assert.False(t, r.Errors.HasErrors())
}

func TestLookbehindFailsWhenPrecedingTextDiffers(t *testing.T) {
	root := parse.Series(parse.NoMandatory,
		parse.Text("XY"),
		parse.Lookbehind(parse.RegExp(`BA`)),
		parse.Text("C"),
	).Named("document")
	g := newTestGrammar(t, root)
	r, err := g.Parse("XYC", nil, nil, true)
	require.NoError(t, err)
	assert.True(t, r.Errors.HasErrors())
}

func TestNegativeLookbehindRejectsMatchingPrefix(t *testing.T) {
	root := parse.Series(parse.NoMandatory,
		parse.Text("AB"),
		parse.NegativeLookbehind(parse.RegExp(`BA`)),
		parse.Text("C"),
	).Named("document")
	g := newTestGrammar(t, root)
	r, err := g.Parse("ABC", nil, nil, true)
	require.NoError(t, err)
	assert.True(t, r.Errors.HasErrors())
}

// TestLookbehindThroughSynonymUnwraps exercises matchBehind's Synonym-chain
// unwrapping: a Lookbehind wrapping a Synonym-renamed RegExp must still
// read through to the underlying pattern.
func TestLookbehindThroughSynonymUnwraps(t *testing.T) {
	root := parse.Series(parse.NoMandatory,
		parse.Text("AB"),
		parse.Lookbehind(parse.Synonym("reversedMarker", parse.RegExp(`BA`))),
		parse.Text("C"),
	).Named("document")
	g := newTestGrammar(t, root)
	r, err := g.Parse("ABC", nil, nil, true)
	require.NoError(t, err)
	assert.Equal(t, "ABC", r.Content())
	assert.False(t, r.Errors.HasErrors())
}

func TestLookbehindWithTextLiteral(t *testing.T) {
	root := parse.Series(parse.NoMandatory,
		parse.Text("AB"),
		parse.Lookbehind(parse.Text("BA")),
		parse.Text("C"),
	).Named("document")
	g := newTestGrammar(t, root)
	r, err := g.Parse("ABC", nil, nil, true)
	require.NoError(t, err)
	assert.Equal(t, "ABC", r.Content())
	assert.False(t, r.Errors.HasErrors())
}
