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

package cst_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/dhparse/cst"
)

func TestLeafContent(t *testing.T) {
	n := cst.NewLeaf("word", "hello")
	assert.True(t, n.IsLeaf())
	assert.Equal(t, "hello", n.Content())
	assert.Equal(t, 5, n.Len())
}

func TestBranchContentIsDerived(t *testing.T) {
	a := cst.NewLeaf(":a", "foo")
	b := cst.NewLeaf(":b", "bar")
	branch := cst.NewBranch("pair", []*cst.Node{a, b})
	assert.False(t, branch.IsLeaf())
	assert.Equal(t, "foobar", branch.Content())
	assert.Equal(t, 6, branch.Len())
}

func TestDisposableNaming(t *testing.T) {
	assert.True(t, cst.NewLeaf(":Series", "x").Disposable())
	assert.False(t, cst.NewLeaf("expression", "x").Disposable())
}

func TestSetPosPropagatesToChildren(t *testing.T) {
	a := cst.NewLeaf(":a", "foo")
	b := cst.NewLeaf(":b", "bar")
	branch := cst.NewBranch("pair", []*cst.Node{a, b})
	branch.SetPos(10)
	assert.Equal(t, cst.Position(10), branch.Pos())
	assert.Equal(t, cst.Position(10), a.Pos())
	assert.Equal(t, cst.Position(13), b.Pos())
}

func TestSetPosIsWriteOnce(t *testing.T) {
	n := cst.NewLeaf("x", "a")
	n.SetPos(5)
	assert.NotPanics(t, func() { n.SetPos(5) }, "re-setting to the same value is a no-op")
	assert.Panics(t, func() { n.SetPos(6) }, "re-setting to a different value is a programming error")
}

func TestEmptyNodeIsFrozen(t *testing.T) {
	assert.Panics(t, func() { cst.EmptyNode.SetPos(0) })
	assert.Panics(t, func() { cst.EmptyNode.SetAttr("x", "y") })
}

func TestEmptyLeafDistinctFromNoMatch(t *testing.T) {
	// An empty leaf is a real, present Node; it is simply zero-length.
	n := cst.NewLeaf(":ws", "")
	require.NotNil(t, n)
	assert.Equal(t, "", n.Content())
	assert.Equal(t, 0, n.Len())
}

func TestAttributesLazyAndOrdered(t *testing.T) {
	n := cst.NewLeaf("x", "a")
	assert.Empty(t, n.AttrNames())
	n.SetAttr("b", "2")
	n.SetAttr("a", "1")
	assert.Equal(t, []string{"b", "a"}, n.AttrNames())
	v, ok := n.Attr("a")
	require.True(t, ok)
	assert.Equal(t, "1", v)
}

func TestEqualsModuloAttrOrder(t *testing.T) {
	a := cst.NewLeaf("x", "v")
	a.SetAttr("k1", "1")
	a.SetAttr("k2", "2")
	b := cst.NewLeaf("x", "v")
	b.SetAttr("k2", "2")
	b.SetAttr("k1", "1")
	assert.True(t, a.Equals(b, true))
	assert.False(t, a.Equals(b, false))
}

func TestSelectAndPick(t *testing.T) {
	a := cst.NewLeaf("num", "1")
	b := cst.NewLeaf("num", "2")
	c := cst.NewLeaf("op", "+")
	branch := cst.NewBranch("sum", []*cst.Node{a, c, b})

	var nums []*cst.Node
	branch.Select(func(n *cst.Node) bool { return n.Name() == "num" }, func(n *cst.Node) {
		nums = append(nums, n)
	})
	assert.Len(t, nums, 2)

	first, ok := branch.Pick(func(n *cst.Node) bool { return n.Name() == "op" })
	require.True(t, ok)
	assert.Equal(t, "+", first.Content())
}

func TestLocate(t *testing.T) {
	a := cst.NewLeaf(":a", "foo")
	b := cst.NewLeaf(":b", "bar")
	branch := cst.NewBranch("pair", []*cst.Node{a, b})
	branch.SetPos(0)

	found := branch.Locate(4)
	require.NotNil(t, found)
	assert.Equal(t, "bar", found.Content())
}

func TestSexpr(t *testing.T) {
	a := cst.NewLeaf(":a", "foo")
	branch := cst.NewBranch("pair", []*cst.Node{a})
	assert.Equal(t, `(pair (:a "foo"))`, branch.Sexpr())
}
