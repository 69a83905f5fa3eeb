// Copyright (c) 2024 The physcfg Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package scopetree builds and manipulates the per-function tree of dump.Scope values, ordered by
// nesting. The Dump-to-AST stage consumes one of these trees destructively (popping children as it
// recognizes if/while/for/switch constructs), so Build always hands out a tree the caller owns
// exclusively; Copy lets a caller retain an immutable original before handing a consumable copy on.
package scopetree

import "github.com/squareslab/physcfg/dump"

// Node is one scope in the tree: it owns a reference to its dump.Scope and an ordered (by source
// position) list of children.
type Node struct {
	Scope    *dump.Scope
	Children []*Node
	Parent   *Node
}

// Build constructs the scope tree rooted at root by recursively collecting, for every scope,
// children whose nesting-parent ID equals the scope's ID.
//
// Before recursing, scopes of type Else are given a documented, deliberate quirk: the upstream
// dump format emits every Else scope twice - once as the real Else scope, and again immediately
// after as a vestigial "Try" scope with the same source extent. We compensate by overwriting the
// Else scope's ID with the ID of the scope that immediately follows it in the configuration's
// scope list, and severing that next scope's parent link (ParentID) so Build never reaches it as
// a child of anything. This is a known oddity of the upstream tool; it is preserved verbatim
// because the Dump-to-AST stage matches tokens to a scope by comparing each token's ScopeID with
// the (possibly rewritten) scope ID (ast's trailingBreakOrContinue), not by list position.
func Build(scopes []*dump.Scope, root *dump.Scope) *Node {
	if root == nil {
		return nil
	}

	for i, s := range scopes {
		if s.Type == dump.ScopeElse && i+1 < len(scopes) {
			next := scopes[i+1]
			s.ID = next.ID
			next.ParentID = ""
		}
	}

	return build(scopes, root)
}

func build(scopes []*dump.Scope, scope *dump.Scope) *Node {
	node := &Node{Scope: scope}
	for _, s := range scopes {
		if s == scope {
			continue
		}
		if s.ParentID == scope.ID {
			child := build(scopes, s)
			child.Parent = node
			node.Children = append(node.Children, child)
		}
	}
	return node
}

// RemoveByID performs a DFS for the first node (by ID) in the tree rooted at n, excluding n
// itself, removes it from its parent's children, and reports whether a removal occurred.
func (n *Node) RemoveByID(id dump.ID) bool {
	for i, child := range n.Children {
		if child.Scope.ID == id {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			return true
		}
		if child.RemoveByID(id) {
			return true
		}
	}
	return false
}

// FindByID performs a DFS over the tree rooted at n (including n) and returns the matching node,
// or nil.
func (n *Node) FindByID(id dump.ID) *Node {
	if n == nil {
		return nil
	}
	if n.Scope.ID == id {
		return n
	}
	for _, child := range n.Children {
		if found := child.FindByID(id); found != nil {
			return found
		}
	}
	return nil
}

// ChildByType returns the first direct child of n whose Scope.Type matches typ, or nil.
func (n *Node) ChildByType(typ string) *Node {
	for _, child := range n.Children {
		if child.Scope.Type == typ {
			return child
		}
	}
	return nil
}

// PopFirstChild removes and returns n's first child, or nil if n has no children.
func (n *Node) PopFirstChild() *Node {
	if len(n.Children) == 0 {
		return nil
	}
	child := n.Children[0]
	n.Children = n.Children[1:]
	return child
}

// Copy returns a structural deep copy of the tree rooted at n, preserving child ordering. Scope
// values themselves are not copied (they are shared with the dump.Document), only
// the tree structure around them.
func (n *Node) Copy() *Node {
	if n == nil {
		return nil
	}
	cp := &Node{Scope: n.Scope}
	for _, child := range n.Children {
		childCopy := child.Copy()
		childCopy.Parent = cp
		cp.Children = append(cp.Children, childCopy)
	}
	return cp
}
