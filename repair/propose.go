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
	"github.com/squareslab/physcfg/cfg"
	"github.com/squareslab/physcfg/dump"
	"github.com/squareslab/physcfg/errs"
	"github.com/squareslab/physcfg/reach"
	"github.com/squareslab/physcfg/units"
)

// RewriteProposal is a structured, serializable rewrite plan: multiply and divide Token's subtree
// by the named variables (in order) to make it dimensionally consistent. physcfg never mutates the
// read-only dump model, so this is the repair stage's entire output - no token tree is spliced.
type RewriteProposal struct {
	Token    *dump.Token
	Multiply []*dump.Variable
	Divide   []*dump.Variable
}

// Propose finds every minimal-depth rewrite for one reported unit error, given:
//   - errorNode: the CFG node containing errorToken (used to restrict candidate variables to
//     those whose definitions actually reach the error, via rd.In)
//   - lhsUnit: the enclosing assignment's left-hand variable's unit
//   - varUnits/tokenUnits: the oracle's per-variable and per-token unit maps
//   - maxDepth: the search bound (config.RepairSearchDepth)
//
// It returns no proposals (not an error) when the error token isn't a binary +/- operator whose
// operands it can locate, or when Search exhausts maxDepth without finding a match - a repair
// heuristic that cannot propose a fix is a normal outcome, not a failure.
func Propose(errorToken *dump.Token, errorNode *cfg.Node, lhsUnit units.Map, varUnits map[*dump.Variable]units.Map, tokenUnits map[dump.ID]units.Map, rd *reach.Result, maxDepth int) ([]RewriteProposal, error) {
	target, curUnit, wantUnit, err := LocateFixTarget(errorToken, lhsUnit, varUnits, tokenUnits)
	if err != nil {
		if e, ok := err.(*errs.Error); ok && e.Kind == errs.KindMalformedDump {
			return nil, nil
		}
		return nil, err
	}

	reaching := reachingVars(errorNode, varUnits, rd)
	candidates := Search(curUnit, wantUnit, reaching, maxDepth)

	proposals := make([]RewriteProposal, 0, len(candidates))
	for _, c := range candidates {
		proposals = append(proposals, RewriteProposal{Token: target, Multiply: c.Multiply, Divide: c.Divide})
	}
	return proposals, nil
}

// reachingVars projects rd's reach_in set at n down to the variables the units oracle actually
// reported a unit for - Search only ever considers rescaling by a variable whose unit is known.
func reachingVars(n *cfg.Node, varUnits map[*dump.Variable]units.Map, rd *reach.Result) []ReachingVar {
	var out []ReachingVar
	seen := map[*dump.Variable]bool{}
	for d := range rd.In[n] {
		if seen[d.Var] {
			continue
		}
		if u, ok := varUnits[d.Var]; ok {
			seen[d.Var] = true
			out = append(out, ReachingVar{Var: d.Var, Unit: u})
		}
	}
	return out
}
