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

package parse

import "github.com/google/dhparse/cst"

// reduceTree applies p's reduction policy (spec §4.10) to branch, a
// freshly-built combinator result whose children are already fully
// reduced (reduction is applied bottom-up, once per combinator result, as
// each ParseEntry call returns). branch's own name is preserved; its list
// of children may be rewritten, MergeTreetops may turn it into a single
// leaf under that name, and a drop-content parser yields EMPTY_NODE.
func reduceTree(p Parser, branch *cst.Node) *cst.Node {
	if p.DropContent() {
		return cst.EmptyNode
	}
	switch p.Reduction() {
	case Flatten:
		return flattenChildren(branch)
	case MergeTreetops:
		return mergeTreetops(branch)
	case MergeLeaves:
		return mergeLeaves(branch)
	default:
		return branch
	}
}

// flattenChildren splices the children of each disposable, childful branch
// child directly into branch in that child's place (spec §4.10 Flatten).
// It works one level deep; deeper levels were already flattened when the
// child itself was reduced. A disposable leaf child is left alone — flattening only ever removes
// branch nodes, never collapses leaves into their parent's text.
func flattenChildren(branch *cst.Node) *cst.Node {
	children := branch.Children()
	if len(children) == 0 {
		return branch
	}
	var out []*cst.Node
	changed := false
	for _, c := range children {
		if c.Disposable() && !c.IsLeaf() && len(c.Children()) > 0 {
			out = append(out, c.Children()...)
			changed = true
		} else {
			out = append(out, c)
		}
	}
	if !changed {
		return branch
	}
	return cst.NewBranch(branch.Name(), out)
}

// mergeTreetops is Flatten, plus one more step: if every child remaining
// after flattening is an anonymous leaf, their text is concatenated into a
// single leaf under branch's own name (spec §4.10 MergeTreetops — "if after
// flattening the parent has children that are all anonymous leaves,
// concatenate their text into a single leaf under the parent's name").
func mergeTreetops(branch *cst.Node) *cst.Node {
	flattened := flattenChildren(branch)
	children := flattened.Children()
	if len(children) == 0 {
		return flattened
	}
	for _, c := range children {
		if !c.IsLeaf() || !c.Disposable() {
			return flattened
		}
	}
	var text string
	for _, c := range children {
		text += c.Content()
	}
	return cst.NewLeaf(flattened.Name(), text)
}

// mergeLeaves additionally collapses any run of adjacent disposable leaf
// children into a single leaf carrying their concatenated text (spec
// §4.10 MergeLeaves — used for grammars that do not care about the
// internal structure of, say, a sequence of digit leaves making up a
// number literal). The merged leaf is named ":Merged"; the names of the
// leaves it replaces are lost.
func mergeLeaves(branch *cst.Node) *cst.Node {
	flattened := flattenChildren(branch)
	children := flattened.Children()
	if len(children) == 0 {
		return flattened
	}
	var out []*cst.Node
	i := 0
	changed := false
	for i < len(children) {
		if children[i].IsLeaf() && children[i].Disposable() {
			j := i
			var text string
			for j < len(children) && children[j].IsLeaf() && children[j].Disposable() {
				text += children[j].Content()
				j++
			}
			if j-i > 1 {
				out = append(out, cst.NewLeaf(":Merged", text))
				changed = true
			} else {
				out = append(out, children[i])
			}
			i = j
			continue
		}
		out = append(out, children[i])
		i++
	}
	if !changed {
		return flattened
	}
	return cst.NewBranch(flattened.Name(), out)
}
