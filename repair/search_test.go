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

package repair

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/squareslab/physcfg/dump"
	"github.com/squareslab/physcfg/units"
)

// TestSearchFindsShallowestCandidate is property 12 (shallow half): a one-step fix is found at
// depth 1 and reported as a single-variable Multiply candidate.
func TestSearchFindsShallowestCandidate(t *testing.T) {
	t.Parallel()

	varA := &dump.Variable{ID: "a"}
	cur := units.Map{}
	target := units.Map{"m": big.NewRat(1, 1)}
	reaching := []ReachingVar{{Var: varA, Unit: units.Map{"m": big.NewRat(1, 1)}}}

	candidates := Search(cur, target, reaching, 5)
	require.Len(t, candidates, 1)
	require.Equal(t, []*dump.Variable{varA}, candidates[0].Multiply)
	require.Empty(t, candidates[0].Divide)
}

// TestSearchRespectsMaxDepth is property 12 (bound half): a fix needing two steps is invisible to
// a one-step search and found once the bound allows it, and Search never searches past maxDepth.
func TestSearchRespectsMaxDepth(t *testing.T) {
	t.Parallel()

	varA := &dump.Variable{ID: "a"}
	cur := units.Map{}
	target := units.Map{"m": big.NewRat(2, 1)}
	reaching := []ReachingVar{{Var: varA, Unit: units.Map{"m": big.NewRat(1, 1)}}}

	require.Nil(t, Search(cur, target, reaching, 1), "a two-step fix must not be found within depth 1")

	candidates := Search(cur, target, reaching, 2)
	require.Len(t, candidates, 1)
	require.Equal(t, []*dump.Variable{varA, varA}, candidates[0].Multiply)
}

// TestSearchReturnsNilNotErrorWhenUnreachable covers the case where no combination within the
// bound closes the gap: Search reports this as an empty result, not a panic or error.
func TestSearchReturnsNilNotErrorWhenUnreachable(t *testing.T) {
	t.Parallel()

	cur := units.Map{}
	target := units.Map{"kg": big.NewRat(1, 1)}

	require.Nil(t, Search(cur, target, nil, 5))
}
