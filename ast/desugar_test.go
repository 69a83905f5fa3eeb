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

package ast

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/squareslab/physcfg/dump"
	"github.com/squareslab/physcfg/dump/scopetree"
)

// chainTokens links toks[i].Next/toks[i+1].Prev for every adjacent pair, modeling the dump's total
// source-order linked list.
func chainTokens(toks ...*dump.Token) {
	for i := 0; i+1 < len(toks); i++ {
		toks[i].Next = toks[i+1]
		toks[i+1].Prev = toks[i]
	}
}

// TestForLoopDesugarsToInitThenWhile exercises property 6: `for (I; C; U) B` lowers to
// `I; while (C) { B; U; }`.
func TestForLoopDesugarsToInitThenWhile(t *testing.T) {
	t.Parallel()

	init := &dump.Token{ID: "init", Str: "INIT"}
	pred := &dump.Token{ID: "pred", Str: "PRED"}
	update := &dump.Token{ID: "update", Str: "UPD"}
	rest := &dump.Token{ID: "rest", Op1: pred, Op2: update}
	forCond := &dump.Token{ID: "forCond", Op1: init, Op2: rest}
	kwFor := &dump.Token{ID: "kwFor", Str: "for"}
	tFor := &dump.Token{ID: "tFor", Op1: kwFor, Op2: forCond, Line: 1}

	body := &dump.Token{ID: "body", Str: "BODY", Line: 2, ScopeID: "forS"}
	end := &dump.Token{ID: "end"}
	chainTokens(tFor, body, end)

	funcScope := &dump.Scope{ID: "fn", Type: dump.ScopeFunction, Start: tFor, End: end}
	forScope := &dump.Scope{ID: "forS", Type: dump.ScopeFor, ParentID: "fn", Start: body, End: end}

	cfgDoc := &dump.Configuration{Scopes: []*dump.Scope{funcScope, forScope}}
	fn := &dump.Function{Name: "f", Start: tFor, End: end, Scope: funcScope}

	decl, err := BuildFunctionDecl(cfgDoc, fn)
	require.NoError(t, err)
	require.Len(t, decl.Body, 2)

	block, ok := decl.Body[0].(*Block)
	require.True(t, ok, "first lowered statement must be the initializer Block")
	require.Equal(t, init, block.Root)

	while, ok := decl.Body[1].(*While)
	require.True(t, ok, "second lowered statement must be the While loop")
	require.Equal(t, pred, while.Cond)
	require.Len(t, while.Body, 2)

	bodyBlock, ok := while.Body[0].(*Block)
	require.True(t, ok)
	require.Equal(t, body, bodyBlock.Root)

	updateBlock, ok := while.Body[1].(*Block)
	require.True(t, ok)
	require.Equal(t, update, updateBlock.Root)
}

// TestSwitchFallthroughMergesIntoLeadingCase exercises property 7:
// switch(x){ case 1: A; case 2: B; break; case 3: C; break; } lowers to a nested if where the
// x==1 branch's body is A followed by B, not C.
func TestSwitchFallthroughMergesIntoLeadingCase(t *testing.T) {
	t.Parallel()

	x := &dump.Token{ID: "x", Str: "x"}

	caseTok1 := &dump.Token{ID: "case1", Str: "case", ScopeID: "swS"}
	matchTok1 := &dump.Token{ID: "m1", Str: "1", ScopeID: "swS"}
	bodyA := &dump.Token{ID: "a", Str: "A", ScopeID: "swS"}
	caseTok2 := &dump.Token{ID: "case2", Str: "case", ScopeID: "swS"}
	matchTok2 := &dump.Token{ID: "m2", Str: "2", ScopeID: "swS"}
	bodyB := &dump.Token{ID: "b", Str: "B", ScopeID: "swS"}
	breakTok1 := &dump.Token{ID: "brk1", Str: "break", ScopeID: "swS"}
	caseTok3 := &dump.Token{ID: "case3", Str: "case", ScopeID: "swS"}
	matchTok3 := &dump.Token{ID: "m3", Str: "3", ScopeID: "swS"}
	bodyC := &dump.Token{ID: "c", Str: "C", ScopeID: "swS"}
	breakTok2 := &dump.Token{ID: "brk2", Str: "break", ScopeID: "swS"}
	end := &dump.Token{ID: "end"}

	chainTokens(caseTok1, matchTok1, bodyA, caseTok2, matchTok2, bodyB, breakTok1, caseTok3, matchTok3, bodyC, breakTok2, end)

	switchScope := &dump.Scope{ID: "swS", Type: dump.ScopeSwitch, Start: caseTok1, End: end}
	tree := &scopetree.Node{Scope: switchScope}

	bodyTokens := []*dump.Token{bodyA, bodyB, breakTok1, bodyC, breakTok2}

	chain, err := buildSwitchChain(x, switchScope, bodyTokens, tree)
	require.NoError(t, err)

	result := desugarSwitch(chain)
	require.Len(t, result, 1)

	ifStmt, ok := result[0].(*If)
	require.True(t, ok)
	require.Equal(t, matchTok1, ifStmt.Cond.Op2)
	require.Len(t, ifStmt.True, 2)

	first, ok := ifStmt.True[0].(*Block)
	require.True(t, ok)
	require.Equal(t, bodyA, first.Root)

	second, ok := ifStmt.True[1].(*Block)
	require.True(t, ok)
	require.Equal(t, bodyB, second.Root)

	falseIf, ok := ifStmt.False[0].(*If)
	require.True(t, ok, "non-matching cases fall through to a nested comparison, not case 3's body directly")
	require.Equal(t, matchTok2, falseIf.Cond.Op2)
}
