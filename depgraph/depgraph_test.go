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

package depgraph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/squareslab/physcfg/ast"
	"github.com/squareslab/physcfg/cfg"
	"github.com/squareslab/physcfg/defuse"
	"github.com/squareslab/physcfg/dump"
	"github.com/squareslab/physcfg/reach"
)

// buildStraightLine constructs "v = 0; v = 1; w = v;" - a straight-line function where the second
// assignment kills the first's reaching definition before the third statement's use of v.
func buildStraightLine(t *testing.T) (*cfg.FunctionCFG, map[*cfg.Node]*defuse.Sets, *reach.Result, *dump.Variable, *dump.Variable) {
	t.Helper()

	vVar := &dump.Variable{ID: "v"}
	wVar := &dump.Variable{ID: "w"}

	assign0 := &dump.Token{ID: "assign0", Str: "=",
		Op1: &dump.Token{ID: "v0", Str: "v", Variable: vVar},
		Op2: &dump.Token{ID: "lit0", Str: "0"},
	}
	assign1 := &dump.Token{ID: "assign1", Str: "=",
		Op1: &dump.Token{ID: "v1", Str: "v", Variable: vVar},
		Op2: &dump.Token{ID: "lit1", Str: "1"},
	}
	assign2 := &dump.Token{ID: "assign2", Str: "=",
		Op1: &dump.Token{ID: "w0", Str: "w", Variable: wVar},
		Op2: &dump.Token{ID: "v2", Str: "v", Variable: vVar},
	}

	decl := &ast.FunctionDecl{Name: "f", Body: []ast.Statement{
		&ast.Block{Root: assign0},
		&ast.Block{Root: assign1},
		&ast.Block{Root: assign2},
	}}

	fn, err := cfg.Build(decl)
	require.NoError(t, err)
	sets := defuse.Build(fn, decl)
	rd := reach.Build(fn, sets)
	return fn, sets, rd, vVar, wVar
}

// TestStraightLineDependencyEdgeSkipsKilledDefinition is property 9 (straight-line dependency
// edges) combined with property 10 (kill semantics): only the second, surviving definition of v
// gets an edge into w's definition - the first is killed before the use and must not appear.
func TestStraightLineDependencyEdgeSkipsKilledDefinition(t *testing.T) {
	t.Parallel()

	fn, sets, rd, vVar, wVar := buildStraightLine(t)
	g := Build(fn, sets, rd)

	basic0 := fn.Entry.Next[0]
	basic1 := basic0.Next[0]
	basic2 := basic1.Next[0]

	var def0, def1, def2 *Node
	for _, n := range g.Nodes {
		switch {
		case n.CFGNode == basic0 && n.Var == vVar:
			def0 = n
		case n.CFGNode == basic1 && n.Var == vVar:
			def1 = n
		case n.CFGNode == basic2 && n.Var == wVar:
			def2 = n
		}
	}
	require.NotNil(t, def0)
	require.NotNil(t, def1)
	require.NotNil(t, def2)

	require.Empty(t, def0.Next, "the killed definition of v must not reach any use")
	require.Equal(t, []*Node{def2}, def1.Next, "the surviving definition of v must reach w's definition")
	require.Equal(t, []*Node{def1}, def2.Prev)
}

// TestConnectedComponentsSeparatesUnreachedDefinition checks that a definition with no outgoing
// dependency edge (def0 above) lands in its own component, distinct from the component joining the
// definitions that do depend on each other.
func TestConnectedComponentsSeparatesUnreachedDefinition(t *testing.T) {
	t.Parallel()

	fn, sets, rd, vVar, wVar := buildStraightLine(t)
	g := Build(fn, sets, rd)

	basic0 := fn.Entry.Next[0]
	basic1 := basic0.Next[0]
	basic2 := basic1.Next[0]

	var def0, def1, def2 *Node
	for _, n := range g.Nodes {
		switch {
		case n.CFGNode == basic0 && n.Var == vVar:
			def0 = n
		case n.CFGNode == basic1 && n.Var == vVar:
			def1 = n
		case n.CFGNode == basic2 && n.Var == wVar:
			def2 = n
		}
	}

	ids := ConnectedComponents(g)
	require.Equal(t, ids[def1], ids[def2])
	require.NotEqual(t, ids[def0], ids[def1])
}
