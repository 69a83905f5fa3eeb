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

// Package reach computes reaching definitions over a function's control-flow graph: a classical
// forward, monotone dataflow problem solved with a worklist. Pop order is unconstrained - the
// transfer function is monotone and the lattice (subsets of a finite ReachDef universe) is finite,
// so any set-plus-queue hybrid that avoids re-enqueueing already-pending nodes terminates at the
// unique fixed point.
package reach

import (
	"container/list"

	"github.com/squareslab/physcfg/cfg"
	"github.com/squareslab/physcfg/defuse"
	"github.com/squareslab/physcfg/dump"
)

// Def is one reaching-definition pair: the node that defines variable Var.
type Def struct {
	Node *cfg.Node
	Var  *dump.Variable
}

// Result holds reach_in/reach_out for every node of a function, keyed by node identity.
type Result struct {
	In  map[*cfg.Node]map[Def]bool
	Out map[*cfg.Node]map[Def]bool
}

// Build runs the worklist to a fixed point over fn, given its per-node def/use sets.
func Build(fn *cfg.FunctionCFG, sets map[*cfg.Node]*defuse.Sets) *Result {
	nodes := fn.Reachable()

	res := &Result{In: make(map[*cfg.Node]map[Def]bool), Out: make(map[*cfg.Node]map[Def]bool)}
	for _, n := range nodes {
		res.In[n] = map[Def]bool{}
		res.Out[n] = map[Def]bool{}
	}

	worklist := list.New()
	pending := make(map[*cfg.Node]bool, len(nodes))
	for _, n := range nodes {
		worklist.PushBack(n)
		pending[n] = true
	}

	for worklist.Len() > 0 {
		front := worklist.Front()
		worklist.Remove(front)
		n := front.Value.(*cfg.Node)
		pending[n] = false

		in := meet(n, res.Out)
		res.In[n] = in

		out := transfer(n, sets[n], in)
		if !equalSets(out, res.Out[n]) {
			res.Out[n] = out
			for _, succ := range n.Next {
				if !pending[succ] {
					worklist.PushBack(succ)
					pending[succ] = true
				}
			}
		}
	}

	return res
}

// meet is the union of every predecessor's reach_out.
func meet(n *cfg.Node, out map[*cfg.Node]map[Def]bool) map[Def]bool {
	result := map[Def]bool{}
	for _, p := range n.Prev {
		for d := range out[p] {
			result[d] = true
		}
	}
	return result
}

// transfer computes reach_out[n] = gen[n] ∪ (reach_in[n] \ kill[n]), where gen[n] is {(n,v) : v ∈
// define[n]} and kill[n] removes any existing def of a variable n redefines. When define[n] is
// empty, reach_out[n] = reach_in[n] exactly (no gen, nothing killed).
func transfer(n *cfg.Node, s *defuse.Sets, in map[Def]bool) map[Def]bool {
	if s == nil || len(s.Define) == 0 {
		out := make(map[Def]bool, len(in))
		for d := range in {
			out[d] = true
		}
		return out
	}

	killed := make(map[*dump.Variable]bool, len(s.Define))
	for _, v := range s.Define {
		killed[v] = true
	}

	out := map[Def]bool{}
	for d := range in {
		if !killed[d.Var] {
			out[d] = true
		}
	}
	for _, v := range s.Define {
		out[Def{Node: n, Var: v}] = true
	}
	return out
}

func equalSets(a, b map[Def]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for d := range a {
		if !b[d] {
			return false
		}
	}
	return true
}
