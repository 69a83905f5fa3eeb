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

// Package depgraph builds the variable-level data-dependency graph from a function's reaching
// definitions: a directed edge d -> u on variable v exists whenever v is defined at d, used at u,
// not redefined at u, and d's definition reaches u.
package depgraph

import (
	"github.com/squareslab/physcfg/cfg"
	"github.com/squareslab/physcfg/defuse"
	"github.com/squareslab/physcfg/dump"
	"github.com/squareslab/physcfg/reach"
)

// Node is one (defining-node, variable) pair materialized for every node n with v in define[n].
type Node struct {
	CFGNode *cfg.Node
	Var     *dump.Variable

	// Prev and Next mirror each other: edges are bidirectional per spec, so traversal can walk
	// either direction without a second index.
	Prev []*Node
	Next []*Node
}

// Graph is one function's dependency graph.
type Graph struct {
	Nodes []*Node
}

// Build materializes Graph from fn's reach result and per-node def/use sets.
func Build(fn *cfg.FunctionCFG, sets map[*cfg.Node]*defuse.Sets, rd *reach.Result) *Graph {
	g := &Graph{}
	index := make(map[reach.Def]*Node)

	for _, n := range fn.Reachable() {
		s := sets[n]
		if s == nil {
			continue
		}
		for _, v := range s.Define {
			dn := &Node{CFGNode: n, Var: v}
			index[reach.Def{Node: n, Var: v}] = dn
			g.Nodes = append(g.Nodes, dn)
		}
	}

	for _, n := range fn.Reachable() {
		s := sets[n]
		if s == nil || len(s.Define) == 0 {
			continue
		}
		defined := make(map[*dump.Variable]bool, len(s.Define))
		for _, v := range s.Define {
			defined[v] = true
		}

		for _, use := range s.Use {
			if defined[use] {
				continue
			}
			for d := range rd.In[n] {
				if d.Var != use {
					continue
				}
				src, ok := index[d]
				if !ok {
					continue
				}
				for _, v := range s.Define {
					dst := index[reach.Def{Node: n, Var: v}]
					link(src, dst)
				}
			}
		}
	}

	return g
}

func link(a, b *Node) {
	for _, n := range a.Next {
		if n == b {
			return
		}
	}
	a.Next = append(a.Next, b)
	b.Prev = append(b.Prev, a)
}

// ConnectedComponents returns a component id per Node (indices stable within one call) over the
// undirected projection of the dependency edges, computed with union-find so the repair stage can
// ask "can these two definitions possibly influence each other" in near-constant time.
func ConnectedComponents(g *Graph) map[*Node]int {
	parent := make(map[*Node]*Node, len(g.Nodes))
	for _, n := range g.Nodes {
		parent[n] = n
	}

	var find func(*Node) *Node
	find = func(n *Node) *Node {
		for parent[n] != n {
			parent[n] = parent[parent[n]]
			n = parent[n]
		}
		return n
	}
	union := func(a, b *Node) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}

	for _, n := range g.Nodes {
		for _, next := range n.Next {
			union(n, next)
		}
	}

	ids := make(map[*Node]int, len(g.Nodes))
	nextID := 0
	rootID := make(map[*Node]int)
	for _, n := range g.Nodes {
		root := find(n)
		id, ok := rootID[root]
		if !ok {
			id = nextID
			nextID++
			rootID[root] = id
		}
		ids[n] = id
	}
	return ids
}
