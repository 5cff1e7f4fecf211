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

func TestSwallowAdoptsResult(t *testing.T) {
	root := cst.NewRootNode("foo")
	leaf := cst.NewLeaf("document", "foo")
	leaf.SetPos(0)
	root.Swallow(leaf)
	assert.Equal(t, "document", root.Name())
	assert.Equal(t, "foo", root.Content())
}

func TestSwallowNilProducesZombie(t *testing.T) {
	root := cst.NewRootNode("")
	root.Swallow(nil)
	assert.Equal(t, cst.ZombieTag, root.Name())
}

func TestAddErrorIndexesByNodeAndPosition(t *testing.T) {
	root := cst.NewRootNode("abc")
	n := cst.NewLeaf("x", "a")
	root.AddError(n, cst.Error{Message: "boom", Position: 1, Code: cst.MandatoryContinuation})

	assert.Equal(t, cst.ErrorSeverity, root.ErrorFlag())
	require.Len(t, root.ErrorsFor(n), 1)
	assert.Equal(t, []*cst.Node{n}, root.NodesAtPosition(1))
}

func TestApplySourceMappingDefault(t *testing.T) {
	root := cst.NewRootNode("ab\ncd\nef")
	root.AddError(root.AsNode(), cst.Error{Message: "x", Position: 4, Code: cst.ParserStoppedBeforeEnd})
	root.ApplySourceMapping()
	require.Len(t, root.Errors, 1)
	assert.Equal(t, 2, root.Errors[0].Line)
	assert.Equal(t, 2, root.Errors[0].Column)
}

func TestApplySourceMappingCustom(t *testing.T) {
	root := cst.NewRootNode("whatever")
	root.SourceMapping = func(p cst.Position) cst.SourceLocation {
		return cst.SourceLocation{Line: 99, Column: int(p)}
	}
	root.AddError(root.AsNode(), cst.Error{Message: "x", Position: 3, Code: cst.ParserStoppedBeforeEnd})
	root.ApplySourceMapping()
	assert.Equal(t, 99, root.Errors[0].Line)
	assert.Equal(t, 3, root.Errors[0].Column)
}
