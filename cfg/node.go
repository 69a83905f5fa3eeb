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

// Package cfg lowers a normalized statement tree (package ast) into a control-flow graph. Node
// identity is pointer identity: a *Node is the Go-native equivalent of the arena-plus-stable-index
// design note in this project's design notes - no reference-counting cycles (the graph is
// genuinely cyclic once loops are linked), O(1) identity comparison via ==, and predecessor/
// successor sets that are just slices of pointers instead of sorted index vectors.
package cfg

import "github.com/squareslab/physcfg/dump"

// Kind discriminates the six CFG node shapes; every node is a *Node whose Kind field says which
// shape it has.
type Kind int

const (
	KindEntry Kind = iota
	KindExit
	KindBasic
	KindConditional
	KindJoin
	KindEmpty
)

func (k Kind) String() string {
	switch k {
	case KindEntry:
		return "Entry"
	case KindExit:
		return "Exit"
	case KindBasic:
		return "Basic"
	case KindConditional:
		return "Conditional"
	case KindJoin:
		return "Join"
	case KindEmpty:
		return "Empty"
	default:
		return "Unknown"
	}
}

// Node is one control-flow-graph node. Once linked by build, a node's Prev/Next are only ever
// appended to, never rewritten - per the design note's state machine, nodes are never relinked.
type Node struct {
	Kind Kind

	// Root is the statement root token for a Basic node, or the condition token for a Conditional
	// node. Nil for Entry, Exit, Join, and Empty.
	Root *dump.Token

	Prev []*Node
	Next []*Node
}

func newNode(kind Kind) *Node {
	return &Node{Kind: kind}
}

// link records an edge a -> b exactly once (build never needs to link the same pair twice, but
// guards against it anyway since Join nodes accumulate predecessors from multiple callers).
func link(a, b *Node) {
	if a == nil || b == nil {
		return
	}
	for _, n := range a.Next {
		if n == b {
			return
		}
	}
	a.Next = append(a.Next, b)
	b.Prev = append(b.Prev, a)
}

// FunctionCFG is one function's complete control-flow graph.
type FunctionCFG struct {
	Name  string
	Entry *Node
	Exit  *Node
}

// Reachable returns every node reachable from fn.Entry, visited by BFS (each node exactly once).
func (fn *FunctionCFG) Reachable() []*Node {
	if fn.Entry == nil {
		return nil
	}
	seen := map[*Node]bool{fn.Entry: true}
	queue := []*Node{fn.Entry}
	var order []*Node
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		order = append(order, n)
		for _, succ := range n.Next {
			if !seen[succ] {
				seen[succ] = true
				queue = append(queue, succ)
			}
		}
	}
	return order
}
