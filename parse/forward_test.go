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

// TestDirectLeftRecursionResolvesBySeedAndGrow builds the textbook direct
// left-recursive rule `expr := expr "+" digit | digit` through a Forward,
// and checks that seed-and-grow finds the maximal left-associative parse
// instead of looping forever or only matching a single digit.
func TestDirectLeftRecursionResolvesBySeedAndGrow(t *testing.T) {
	expr := parse.Forward()
	digit := parse.RegExp(`[0-9]`).Named("digit")
	sum := parse.Series(parse.NoMandatory, expr, parse.Text("+"), digit).Named("sum")
	expr.Set(parse.Alternative(sum, digit)).Named("expr")

	g := newTestGrammar(t, expr)
	r, err := g.Parse("1+2+3", nil, nil, true)
	require.NoError(t, err)
	assert.Equal(t, "1+2+3", r.Content())
	assert.False(t, r.Errors.HasErrors())
}

func TestForwardUnsetRaisesRecoverableError(t *testing.T) {
	f := parse.Forward().Named("unset")
	g := newTestGrammar(t, f)
	r, err := g.Parse("x", nil, nil, false)
	require.NoError(t, err)
	assert.True(t, r.Errors.HasErrors())
}
