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

package tokenutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/squareslab/physcfg/dump"
)

func TestInOrderWalksOperandTreeLeftRootRight(t *testing.T) {
	t.Parallel()

	left := &dump.Token{Str: "a"}
	right := &dump.Token{Str: "b"}
	root := &dump.Token{Str: "+", Op1: left, Op2: right}

	require.Equal(t, []*dump.Token{left, root, right}, InOrder(root))
	require.Nil(t, InOrder(nil))
}

func TestLHSAndRHSSplitAtFirstAssignToken(t *testing.T) {
	t.Parallel()

	x := &dump.Token{Str: "x"}
	assign := &dump.Token{Str: "="}
	one := &dump.Token{Str: "1"}
	tokens := []*dump.Token{x, assign, one}

	require.Equal(t, []*dump.Token{x}, LHSOf(tokens))
	require.Equal(t, []*dump.Token{assign, one}, RHSOf(tokens))
}

func TestLHSAndRHSOfNoAssignmentAreEmpty(t *testing.T) {
	t.Parallel()

	tokens := []*dump.Token{{Str: "x"}, {Str: "+"}, {Str: "1"}}
	require.Nil(t, LHSOf(tokens))
	require.Nil(t, RHSOf(tokens))
}

func TestVariablesProjectsOnlyBoundTokensInOrder(t *testing.T) {
	t.Parallel()

	vx := &dump.Variable{ID: "x"}
	x := &dump.Token{Str: "x", Variable: vx}
	plus := &dump.Token{Str: "+"}
	one := &dump.Token{Str: "1"}

	tokens := []*dump.Token{x, plus, one}
	require.Equal(t, []*dump.Token{x}, VariablesIn(tokens))
	require.Equal(t, []*dump.Variable{vx}, Variables(tokens))
}

func TestRootOfWalksToTopOfOperandTree(t *testing.T) {
	t.Parallel()

	leaf := &dump.Token{Str: "x"}
	mid := &dump.Token{Str: "+", Op1: leaf}
	leaf.Parent = mid
	top := &dump.Token{Str: "=", Op1: mid}
	mid.Parent = top

	require.Same(t, top, RootOf(leaf))
	require.Same(t, top, RootOf(top))
	require.Nil(t, RootOf(nil))
}
