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
	"github.com/squareslab/physcfg/dump"
	"github.com/squareslab/physcfg/errs"
	"github.com/squareslab/physcfg/units"
)

// LocateFixTarget finds the subtree Search should try to rescale, and the target unit it must
// reach, for one reported unit error on an addition/subtraction token. errorToken is the "+"/"-"
// token the oracle flagged; lhsUnit is the enclosing assignment's left-hand variable's unit.
//
// It mirrors fix_addition_subtraction's token-to-fix walk: whichever side of errorToken doesn't
// already carry the unit InverseUnit says the whole expression needs, that side is descended
// (through further +/- chains) until a variable, a parenthesized subexpression, or a */÷ node is
// found - that is the token a rewrite will rescale.
func LocateFixTarget(errorToken *dump.Token, lhsUnit units.Map, varUnits map[*dump.Variable]units.Map, tokenUnits map[dump.ID]units.Map) (target *dump.Token, curUnit, targetUnit units.Map, err error) {
	if errorToken.Op1 == nil || errorToken.Op2 == nil {
		return nil, nil, nil, errs.New(errs.KindMalformedDump, "unit error token %q is not a binary +/- operator", errorToken.ID)
	}

	correct := InverseUnit(lhsUnit, errorToken, varUnits, tokenUnits)

	leftUnit := unitOf(errorToken.Op1, varUnits, tokenUnits)
	rightUnit := unitOf(errorToken.Op2, varUnits, tokenUnits)

	var cur *dump.Token
	var curU units.Map
	descendLeft := true
	if !Equal(rightUnit, correct) {
		cur, curU = errorToken.Op2, rightUnit
		descendLeft = false
	} else {
		cur, curU = errorToken.Op1, leftUnit
	}

	for cur != nil {
		switch {
		case cur.Variable != nil, cur.Str == "(", cur.Str == "*", cur.Str == "/":
			return cur, curU, correct, nil
		case cur.Str == "+", cur.Str == "-":
			if descendLeft {
				cur = cur.Op1
			} else {
				cur = cur.Op2
			}
			if cur != nil {
				curU = unitOf(cur, varUnits, tokenUnits)
			}
		default:
			return cur, curU, correct, nil
		}
	}

	return nil, nil, nil, errs.New(errs.KindMalformedDump, "could not locate a fix target walking from unit error token %q", errorToken.ID)
}
