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

// Package defuse computes, for every node of a function's control-flow graph, the set of
// variables it defines and the set it uses - the per-node inputs to the reaching-definitions
// dataflow in package reach.
package defuse

import (
	"github.com/squareslab/physcfg/ast"
	"github.com/squareslab/physcfg/cfg"
	"github.com/squareslab/physcfg/dump"
	"github.com/squareslab/physcfg/dump/tokenutil"
)

// Sets holds the define and use sets for one CFG node. Both are nil for Join/Empty/Exit nodes.
type Sets struct {
	Define []*dump.Variable
	Use    []*dump.Variable
}

// Build computes Sets for every reachable node of fn, given the FunctionDecl it was lowered from
// (for the Entry node's parameter-seeded define set - the CFG alone does not carry the function's
// formal parameter list).
func Build(fn *cfg.FunctionCFG, decl *ast.FunctionDecl) map[*cfg.Node]*Sets {
	out := make(map[*cfg.Node]*Sets)
	queue := []*cfg.Node{fn.Entry}
	seen := map[*cfg.Node]bool{fn.Entry: true}

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		out[n] = nodeSets(n, decl)
		for _, succ := range n.Next {
			if !seen[succ] {
				seen[succ] = true
				queue = append(queue, succ)
			}
		}
	}
	return out
}

func nodeSets(n *cfg.Node, decl *ast.FunctionDecl) *Sets {
	switch n.Kind {
	case cfg.KindEntry:
		return &Sets{Define: append([]*dump.Variable(nil), decl.Params...)}

	case cfg.KindBasic:
		tokens := tokenutil.InOrder(n.Root)
		return &Sets{
			Define: tokenutil.Variables(tokenutil.LHSOf(tokens)),
			Use:    tokenutil.Variables(tokenutil.RHSOf(tokens)),
		}

	case cfg.KindConditional:
		return &Sets{Use: tokenutil.Variables(tokenutil.InOrder(n.Root))}

	default: // Join, Empty, Exit
		return &Sets{}
	}
}
