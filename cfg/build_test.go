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

package cfg

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/squareslab/physcfg/ast"
	"github.com/squareslab/physcfg/dump"
)

func rootOf(ts []*Node) map[*dump.Token]*Node {
	out := make(map[*dump.Token]*Node)
	for _, n := range ts {
		if n.Root != nil {
			out[n.Root] = n
		}
	}
	return out
}

// TestStraightLineCFG is scenario A: a straight-line function with no branches produces a single
// Entry -> Basic -> Basic -> Exit chain.
func TestStraightLineCFG(t *testing.T) {
	t.Parallel()

	t1 := &dump.Token{ID: "t1", Str: "S1"}
	t2 := &dump.Token{ID: "t2", Str: "S2"}

	decl := &ast.FunctionDecl{Name: "f", Body: []ast.Statement{
		&ast.Block{Root: t1},
		&ast.Block{Root: t2},
	}}

	fn, err := Build(decl)
	require.NoError(t, err)

	reachable := fn.Reachable()
	byRoot := rootOf(reachable)
	require.Len(t, reachable, 4, "Entry, Basic(t1), Basic(t2), Exit")

	n1, n2 := byRoot[t1], byRoot[t2]
	require.NotNil(t, n1)
	require.NotNil(t, n2)

	require.Equal(t, []*Node{n1}, fn.Entry.Next)
	require.Equal(t, []*Node{n2}, n1.Next)
	require.Equal(t, []*Node{fn.Exit}, n2.Next)
}

// TestIfWithoutElseJoinsBothArms is scenario B: an if with no else produces a Conditional whose
// true arm is the body and whose false arm is a materialized Empty node, both joining before Exit.
func TestIfWithoutElseJoinsBothArms(t *testing.T) {
	t.Parallel()

	cond := &dump.Token{ID: "cond", Str: "C"}
	body := &dump.Token{ID: "body", Str: "B"}

	decl := &ast.FunctionDecl{Name: "f", Body: []ast.Statement{
		&ast.If{Cond: cond, True: []ast.Statement{&ast.Block{Root: body}}},
	}}

	fn, err := Build(decl)
	require.NoError(t, err)

	reachable := fn.Reachable()
	require.Len(t, reachable, 6, "Entry, Conditional, Basic, Empty, Join, Exit")

	condNode := fn.Entry.Next[0]
	require.Equal(t, KindConditional, condNode.Kind)
	require.Len(t, condNode.Next, 2)

	var basicNode, emptyNode *Node
	for _, n := range condNode.Next {
		switch n.Kind {
		case KindBasic:
			basicNode = n
		case KindEmpty:
			emptyNode = n
		}
	}
	require.NotNil(t, basicNode, "true arm must be a Basic node")
	require.NotNil(t, emptyNode, "false arm must be a materialized Empty node")
	require.Equal(t, body, basicNode.Root)

	require.Len(t, basicNode.Next, 1)
	require.Len(t, emptyNode.Next, 1)
	joinNode := basicNode.Next[0]
	require.Equal(t, KindJoin, joinNode.Kind)
	require.Equal(t, joinNode, emptyNode.Next[0])
	require.Equal(t, []*Node{fn.Exit}, joinNode.Next)
}

// TestWhileWithBreakMakesTrailingStatementUnreachable is scenario D: a while loop whose body ends
// in an unconditional break links straight to the loop's join, and any statement placed after the
// break within the same statement list is never lowered into a node at all.
func TestWhileWithBreakMakesTrailingStatementUnreachable(t *testing.T) {
	t.Parallel()

	cond := &dump.Token{ID: "cond", Str: "C"}
	brk := &dump.Token{ID: "brk", Str: "break"}
	dead := &dump.Token{ID: "dead", Str: "DEAD"}
	after := &dump.Token{ID: "after", Str: "AFTER"}

	decl := &ast.FunctionDecl{Name: "f", Body: []ast.Statement{
		&ast.While{Cond: cond, Body: []ast.Statement{
			&ast.Block{Root: brk},
			&ast.Block{Root: dead},
		}},
		&ast.Block{Root: after},
	}}

	fn, err := Build(decl)
	require.NoError(t, err)

	reachable := fn.Reachable()
	byRoot := rootOf(reachable)

	require.Contains(t, byRoot, brk)
	require.NotContains(t, byRoot, dead, "statement after an unconditional break must not be lowered")
	require.Contains(t, byRoot, after, "control resumes after the loop's join once the loop body breaks out")

	breakNode := byRoot[brk]
	// The while's Join node is break's sole successor - break jumps straight past the loop, not
	// back to the condition.
	require.Len(t, breakNode.Next, 1)
	require.Equal(t, KindJoin, breakNode.Next[0].Kind)
}
