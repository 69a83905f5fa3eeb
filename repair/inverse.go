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

	"github.com/squareslab/physcfg/dump"
	"github.com/squareslab/physcfg/units"
)

// InverseUnit walks from token up its AST-parent chain, applying the inverse of each */÷/sqrt
// ancestor operation to lhsUnit, to recover what unit token's subtree should have had for the
// enclosing statement to be dimensionally consistent. It mirrors the original heuristic's
// inverse_unit, generalized to exact rational exponents.
//
// Division and sqrt inversion do not distinguish which operand position token occupies (a known
// simplification carried over from the original heuristic): dividing always applies the
// same inverse regardless of whether token is the numerator or denominator, and sqrt always scales
// by 2 regardless of nesting depth. This is adequate for the common case this heuristic targets -
// the reported operand is a direct child of the arithmetic statement's dominant */÷ chain - but can
// misattribute the target unit for deeply nested divisions.
func InverseUnit(lhsUnit units.Map, token *dump.Token, varUnits map[*dump.Variable]units.Map, tokenUnits map[dump.ID]units.Map) units.Map {
	result := lhsUnit
	cur := token

	for cur != nil && cur.Parent != nil {
		parent := cur.Parent
		switch parent.Str {
		case "*":
			other := otherOperand(parent, cur)
			if other != nil {
				result = Divide(result, unitOf(other, varUnits, tokenUnits))
			}
		case "/":
			other := otherOperand(parent, cur)
			if other != nil {
				result = Multiply(result, unitOf(other, varUnits, tokenUnits))
			}
		case "(":
			if parent.Op1 != nil && parent.Op1.Str == "sqrt" {
				result = Expt(result, big.NewRat(2, 1))
			}
		}
		cur = parent
	}

	return result
}

// otherOperand returns parent's operand that is not cur.
func otherOperand(parent, cur *dump.Token) *dump.Token {
	if parent.Op1 == cur {
		return parent.Op2
	}
	return parent.Op1
}

// unitOf looks up a token's unit: a variable-bound token resolves through varUnits, otherwise
// through the oracle's per-token report.
func unitOf(t *dump.Token, varUnits map[*dump.Variable]units.Map, tokenUnits map[dump.ID]units.Map) units.Map {
	if t.Variable != nil {
		if m, ok := varUnits[t.Variable]; ok {
			return m
		}
	}
	if m, ok := tokenUnits[t.ID]; ok {
		return m
	}
	return units.Map{}
}
