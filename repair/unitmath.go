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

// Package repair proposes local rewrites for statements whose operands carry physically
// inconsistent units, given a units.Report and a function's reaching definitions (reach.Result). It never mutates the
// read-only dump/ast model; Propose returns a structured rewrite plan, never a spliced token tree.
package repair

import (
	"math/big"

	"github.com/squareslab/physcfg/units"
)

// Multiply combines two unit maps by adding matching dimensions' exponents (mirrors the original
// heuristic's multiply_units, generalized from int/float exponents to exact big.Rat).
func Multiply(a, b units.Map) units.Map {
	out := cloneMap(a)
	for dim, exp := range b {
		if cur, ok := out[dim]; ok {
			out[dim] = new(big.Rat).Add(cur, exp)
		} else {
			out[dim] = new(big.Rat).Set(exp)
		}
	}
	return normalize(out)
}

// Divide combines two unit maps by subtracting b's exponents from a's (mirrors divide_units).
func Divide(a, b units.Map) units.Map {
	out := cloneMap(a)
	for dim, exp := range b {
		if cur, ok := out[dim]; ok {
			out[dim] = new(big.Rat).Sub(cur, exp)
		} else {
			out[dim] = new(big.Rat).Neg(exp)
		}
	}
	return normalize(out)
}

// Expt scales every dimension's exponent by power (mirrors expt_units). InverseUnit calls it with
// power 2 to undo a sqrt, which halves every exponent.
func Expt(a units.Map, power *big.Rat) units.Map {
	out := make(units.Map, len(a))
	for dim, exp := range a {
		out[dim] = new(big.Rat).Mul(exp, power)
	}
	return normalize(out)
}

// Diff reports what unit b's definer would need to be multiplied by to reach target t, mirroring
// unit_diff's original (dimension-asymmetric) behavior exactly: only t's dimensions are considered,
// so a dimension present in b but absent from t is not cancelled out. This is preserved rather than
// "fixed" since Search already restricts candidates to whole Map equality, not to this diff alone.
func Diff(b, t units.Map) units.Map {
	diff := units.Map{}
	for dim, texp := range t {
		bexp, ok := b[dim]
		if !ok {
			diff[dim] = new(big.Rat).Set(texp)
			continue
		}
		d := new(big.Rat).Sub(texp, bexp)
		if d.Sign() != 0 {
			diff[dim] = d
		}
	}
	return diff
}

// Equal reports whether a and b have the same non-zero exponent in every dimension either mentions.
func Equal(a, b units.Map) bool {
	for dim, exp := range a {
		other, ok := b[dim]
		if !ok {
			if exp.Sign() != 0 {
				return false
			}
			continue
		}
		if exp.Cmp(other) != 0 {
			return false
		}
	}
	for dim, exp := range b {
		if _, ok := a[dim]; !ok && exp.Sign() != 0 {
			return false
		}
	}
	return true
}

func cloneMap(m units.Map) units.Map {
	out := make(units.Map, len(m))
	for dim, exp := range m {
		out[dim] = new(big.Rat).Set(exp)
	}
	return out
}

// normalize drops dimensions whose exponent has reduced to zero, keeping Map comparisons and
// iteration cheap.
func normalize(m units.Map) units.Map {
	for dim, exp := range m {
		if exp.Sign() == 0 {
			delete(m, dim)
		}
	}
	return m
}
