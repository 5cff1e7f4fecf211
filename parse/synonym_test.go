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

func TestSynonymPropagatesFailure(t *testing.T) {
	root := parse.Series(parse.NoMandatory, parse.Synonym("greeting", parse.Text("hi"))).Named("document")
	g := newTestGrammar(t, root)
	r, err := g.Parse("bye", nil, nil, true)
	require.NoError(t, err)
	assert.True(t, r.Errors.HasErrors())
}

func TestDropStillAdvancesLocation(t *testing.T) {
	root := parse.Series(parse.NoMandatory,
		parse.Drop(parse.Text("skip-me")),
		parse.Text("keep").Named("kept"),
	).Named("document")
	g := newTestGrammar(t, root)
	r, err := g.Parse("skip-mekeep", nil, nil, true)
	require.NoError(t, err)
	require.Len(t, r.Children(), 1)
	assert.Equal(t, "keep", r.Children()[0].Content())
}

func TestDropFailsWhenSubParserFails(t *testing.T) {
	root := parse.Series(parse.NoMandatory, parse.Drop(parse.Text("x"))).Named("document")
	g := newTestGrammar(t, root)
	r, err := g.Parse("y", nil, nil, true)
	require.NoError(t, err)
	assert.True(t, r.Errors.HasErrors())
}

func TestCustomParserMatchesAndAdvances(t *testing.T) {
	root := parse.Custom(func(remaining string) (int, bool) {
		if len(remaining) >= 3 && remaining[:3] == "abc" {
			return 3, true
		}
		return 0, false
	}).Named("document")
	g := newTestGrammar(t, root)
	r, err := g.Parse("abcdef", nil, nil, false)
	require.NoError(t, err)
	assert.Equal(t, "abc", r.Content())
}

func TestCustomParserNoMatch(t *testing.T) {
	root := parse.Series(parse.NoMandatory, parse.Custom(func(remaining string) (int, bool) {
		return 0, false
	})).Named("document")
	g := newTestGrammar(t, root)
	r, err := g.Parse("xyz", nil, nil, true)
	require.NoError(t, err)
	assert.True(t, r.Errors.HasErrors())
}
