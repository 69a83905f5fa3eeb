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
	"sort"

	"github.com/squareslab/physcfg/dump"
	"github.com/squareslab/physcfg/units"
)

// ReachingVar is one candidate variable Search may multiply or divide by: a variable whose
// definition reaches the error's CFG node and whose unit the oracle reported.
type ReachingVar struct {
	Var  *dump.Variable
	Unit units.Map
}

// Candidate is one minimal-depth rewrite found by Search: the set of reaching variables to
// multiply and divide by to turn cur into target.
type Candidate struct {
	Multiply []*dump.Variable
	Divide   []*dump.Variable
	Unit     units.Map
}

type searchState struct {
	mult, div []*dump.Variable
	unit      units.Map
}

// Search performs a bounded-depth BFS (mirroring the original heuristic's
// apply_unit_multiplication candidate search) over combinations of multiplying/dividing cur by
// reaching variables, looking for a combination whose resulting unit equals target. It stops and
// returns every matching combination as soon as the shallowest matching depth is found - never
// searching deeper than maxDepth - and returns nil (not an error) if no combination within that
// bound closes the gap. Candidates are sorted by number of variables used, fewest first.
func Search(cur, target units.Map, reaching []ReachingVar, maxDepth int) []Candidate {
	queue := []searchState{{unit: cur}}

	for depth := 0; depth < maxDepth; depth++ {
		var next []searchState
		for _, s := range queue {
			for _, r := range reaching {
				if !containsVar(s.div, r.Var) {
					next = append(next, searchState{
						mult: appendVar(s.mult, r.Var),
						div:  s.div,
						unit: Multiply(s.unit, r.Unit),
					})
				}
				if !containsVar(s.mult, r.Var) {
					next = append(next, searchState{
						mult: s.mult,
						div:  appendVar(s.div, r.Var),
						unit: Divide(s.unit, r.Unit),
					})
				}
			}
		}
		queue = next

		var matches []Candidate
		for _, s := range queue {
			if Equal(s.unit, target) {
				matches = append(matches, Candidate{Multiply: s.mult, Divide: s.div, Unit: s.unit})
			}
		}
		if len(matches) > 0 {
			sort.SliceStable(matches, func(i, j int) bool {
				return len(matches[i].Multiply)+len(matches[i].Divide) < len(matches[j].Multiply)+len(matches[j].Divide)
			})
			return matches
		}
	}

	return nil
}

func containsVar(vs []*dump.Variable, v *dump.Variable) bool {
	for _, existing := range vs {
		if existing == v {
			return true
		}
	}
	return false
}

func appendVar(vs []*dump.Variable, v *dump.Variable) []*dump.Variable {
	out := append([]*dump.Variable(nil), vs...)
	return append(out, v)
}
