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

// Package cst implements the concrete-syntax-tree data model that the
// dhparse parser combinator core produces: positions, nodes, root nodes and
// their accumulated diagnostics.
package cst

// Position is an absolute byte offset into the original document a Node was
// matched at.
type Position int

// Unassigned marks a Node whose position has not yet been set. Positions are
// write-once: once a Node's position has been set to a value other than
// Unassigned, setting it again to a different value is a programming error
// (see Node.SetPos).
const Unassigned Position = -1
