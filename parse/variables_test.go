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

// TestBacktrackedCaptureIsRolledBack exercises spec §5's rollback-log
// guarantee: when an Alternative abandons a branch that pushed a captured
// value, re-entering the grammar at the branch's own start location must
// undo that push before the next branch runs, so a Retrieve in the sibling
// branch cannot see a value the abandoned branch only provisionally pushed.
func TestBacktrackedCaptureIsRolledBack(t *testing.T) {
	root := parse.Alternative(
		parse.Series(parse.NoMandatory, parse.Capture("x", parse.Text("a")), parse.Text("Z")),
		parse.Series(parse.NoMandatory, parse.Text("a"), parse.Retrieve("x", nil)),
	).Named("document")
	g := newTestGrammar(t, root)

	r, err := g.Parse("aa", nil, nil, true)
	require.NoError(t, err)
	assert.Equal(t, "aa", r.Content())
}

// TestRetrieveAutoCapturesFromRegisteredCapture exercises spec §4.5's
// fallback: a Retrieve against a variable whose stack is empty runs the
// matching Capture (found by name among the grammar's own parsers) at the
// current location instead of failing outright.
func TestRetrieveAutoCapturesFromRegisteredCapture(t *testing.T) {
	tag := parse.Capture("tag", parse.RegExp(`[a-z]+`)).Named("tag")
	root := parse.Alternative(
		parse.Series(parse.NoMandatory, parse.Retrieve("tag", nil)),
		tag,
	).Named("document")
	g := newTestGrammar(t, root)

	r, err := g.Parse("abc", nil, nil, false)
	require.NoError(t, err)
	assert.Equal(t, "abc", r.Content())
}

func TestOptionalLastValueAcceptsEmptyStoredValue(t *testing.T) {
	n, ok := parse.OptionalLastValue("", "anything")
	assert.True(t, ok)
	assert.Equal(t, 0, n)

	n, ok = parse.OptionalLastValue("tag", "tagged")
	assert.True(t, ok)
	assert.Equal(t, 3, n)

	_, ok = parse.OptionalLastValue("tag", "other")
	assert.False(t, ok)
}
