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

package source_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/dhparse/cst"
	"github.com/google/dhparse/source"
)

func TestAdvancePreservesAbsoluteOffset(t *testing.T) {
	v := source.New("hello world")
	v2 := v.Advance(6)
	assert.Equal(t, cst.Position(6), v2.Base())
	assert.Equal(t, "world", v2.Text())
}

func TestAtJumpsToAbsoluteOffset(t *testing.T) {
	v := source.New("hello world")
	v2 := v.Advance(6)
	back := v2.At(0)
	assert.Equal(t, "hello world", back.Text())
}

func TestFindBounded(t *testing.T) {
	v := source.New("aaa bbb ccc")
	idx, ok := v.Find("ccc", 0, -1)
	require.True(t, ok)
	assert.Equal(t, 8, idx)

	_, ok = v.Find("ccc", 0, 5)
	assert.False(t, ok)
}

func TestMatchRequiresAnchoredStart(t *testing.T) {
	v := source.New("123abc")
	re := regexp.MustCompile(`\A[0-9]+`)
	m, ok := v.Match(re)
	require.True(t, ok)
	assert.Equal(t, "123", m)

	v2 := v.Advance(3)
	_, ok = v2.Match(re)
	assert.False(t, ok)
}

func TestReversedForLookbehind(t *testing.T) {
	v := source.New("abcdef").Advance(3)
	assert.Equal(t, "cba", v.Reversed())
}

func TestIsEOF(t *testing.T) {
	v := source.New("x")
	assert.False(t, v.IsEOF())
	assert.True(t, v.Advance(1).IsEOF())
}
